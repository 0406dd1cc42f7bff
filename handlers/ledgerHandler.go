package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/webnovauz/paint-management-backend/metrics"
	"github.com/webnovauz/paint-management-backend/models"
)

func countDocument(kind string) {
	metrics.DocumentsCreatedTotal.WithLabelValues(kind).Inc()
}

func listStockMovementsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		paintId, ok := queryId(c, "paint_id")
		if !ok {
			return
		}
		results, err := models.ListStockMovements(c.Request.Context(), paintId)
		render(c, http.StatusOK, results, err)
	}
}

func recordMovementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStockMovement
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.RecordMovement(c.Request.Context(), &input)
		if err == nil {
			countDocument("movement")
		}
		render(c, http.StatusCreated, result, err)
	}
}

func getStockMovementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetStockMovement(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func listSalesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := models.ParseSaleDateRange(c.Query("from"), c.Query("to"))
		if err != nil {
			renderError(c, err)
			return
		}
		results, err := models.ListSales(c.Request.Context(), from, to)
		render(c, http.StatusOK, results, err)
	}
}

func createSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSale
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.CreateSale(c.Request.Context(), &input)
		if err == nil {
			countDocument("sale")
		}
		render(c, http.StatusCreated, result, err)
	}
}

func getSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetSale(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func listPurchasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListPurchases(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func createPurchaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPurchase
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.CreatePurchase(c.Request.Context(), &input)
		if err == nil {
			countDocument("purchase")
		}
		render(c, http.StatusCreated, result, err)
	}
}

func getPurchaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetPurchase(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func listSuppliersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListSuppliers(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func createSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSupplier
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.CreateSupplier(c.Request.Context(), &input)
		render(c, http.StatusCreated, result, err)
	}
}

func getSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetSupplier(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func updateSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewSupplier
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.UpdateSupplier(c.Request.Context(), id, &input)
		render(c, http.StatusOK, result, err)
	}
}

func deleteSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.DeleteSupplier(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func latestReconciliationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := models.LatestReconciliation(c.Request.Context())
		render(c, http.StatusOK, result, err)
	}
}
