package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/models"
	"github.com/webnovauz/paint-management-backend/utils"
)

// RegisterRoutes mounts every endpoint under /api.
func RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	categories := api.Group("/categories")
	categories.GET("", listPaintCategoriesHandler())
	categories.POST("", createPaintCategoryHandler())
	categories.GET("/:id", getPaintCategoryHandler())
	categories.PUT("/:id", updatePaintCategoryHandler())
	categories.DELETE("/:id", deletePaintCategoryHandler())

	paints := api.Group("/paints")
	paints.GET("", listPaintsHandler())
	paints.POST("", createPaintHandler())
	paints.GET("/low_stock", listLowStockPaintsHandler())
	paints.GET("/:id", getPaintHandler())
	paints.PUT("/:id", updatePaintHandler())
	paints.DELETE("/:id", deletePaintHandler())
	paints.GET("/:id/stock", getPaintStockHandler())
	paints.POST("/:id/adjust_stock", adjustStockHandler())
	paints.POST("/:id/prices", changePaintPricesHandler())
	paints.GET("/:id/price_history", listPaintPriceHistoriesHandler())

	movements := api.Group("/stock-movements")
	movements.GET("", listStockMovementsHandler())
	movements.POST("", recordMovementHandler())
	movements.GET("/:id", getStockMovementHandler())

	priceHistory := api.Group("/price-history")
	priceHistory.GET("", listPriceHistoriesHandler())
	priceHistory.POST("", createPriceHistoryHandler())

	sales := api.Group("/sales")
	sales.GET("", listSalesHandler())
	sales.POST("", createSaleHandler())
	sales.GET("/:id", getSaleHandler())

	suppliers := api.Group("/suppliers")
	suppliers.GET("", listSuppliersHandler())
	suppliers.POST("", createSupplierHandler())
	suppliers.GET("/:id", getSupplierHandler())
	suppliers.PUT("/:id", updateSupplierHandler())
	suppliers.DELETE("/:id", deleteSupplierHandler())

	purchases := api.Group("/purchases")
	purchases.GET("", listPurchasesHandler())
	purchases.POST("", createPurchaseHandler())
	purchases.GET("/:id", getPurchaseHandler())

	customers := api.Group("/customers")
	customers.GET("", listCustomersHandler())
	customers.POST("", createCustomerHandler())
	customers.GET("/debtors", listDebtorsHandler())
	customers.GET("/with_prepayment", listCustomersWithPrepaymentHandler())
	customers.GET("/:id", getCustomerHandler())
	customers.PUT("/:id", updateCustomerHandler())
	customers.DELETE("/:id", deleteCustomerHandler())
	customers.GET("/:id/balance", getCustomerBalanceHandler())

	payments := api.Group("/payments")
	payments.GET("", listPaymentsHandler())
	payments.POST("", createPaymentHandler())
	payments.GET("/by_customer", listPaymentsByCustomerHandler())
	payments.GET("/:id", getPaymentHandler())
	payments.PUT("/:id", updatePaymentHandler())
	payments.DELETE("/:id", deletePaymentHandler())

	api.GET("/reconciliation/latest", latestReconciliationHandler())
}

// StatusFor maps the model error taxonomy to an HTTP status.
func StatusFor(err error) int {
	var validationErr *utils.ValidationError
	var notFoundErr *utils.NotFoundError
	var integrityErr *utils.IntegrityError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr), errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &integrityErr):
		return http.StatusConflict
	case errors.Is(err, models.ErrStockMovementImmutable), errors.Is(err, models.ErrPriceHistoryImmutable):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func renderError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	body := gin.H{"error": err.Error()}
	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) {
		body["error"] = validationErr.Message
		if len(validationErr.Details) > 0 {
			body["details"] = validationErr.Details
		}
	}
	c.JSON(status, body)
}

func render(c *gin.Context, status int, data any, err error) {
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(status, data)
}

// pathId reads a positive integer path parameter; it writes the 400 itself.
func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// queryId reads an optional positive integer query parameter (0 when absent).
func queryId(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		config.LogError(config.GetLogger(), "handlers", "bindJSON", c.FullPath(), nil, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": gin.H{"body": err.Error()}})
		return false
	}
	return true
}
