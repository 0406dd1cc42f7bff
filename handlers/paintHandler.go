package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/webnovauz/paint-management-backend/models"
)

func listPaintCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListPaintCategories(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func createPaintCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPaintCategory
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.CreatePaintCategory(c.Request.Context(), &input)
		render(c, http.StatusCreated, result, err)
	}
}

func getPaintCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetPaintCategory(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func updatePaintCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewPaintCategory
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.UpdatePaintCategory(c.Request.Context(), id, &input)
		render(c, http.StatusOK, result, err)
	}
}

func deletePaintCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.DeletePaintCategory(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func listPaintsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListPaints(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func listLowStockPaintsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListLowStockPaints(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func createPaintHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPaint
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.CreatePaint(c.Request.Context(), &input)
		render(c, http.StatusCreated, result, err)
	}
}

func getPaintHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetPaint(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func updatePaintHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewPaint
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.UpdatePaint(c.Request.Context(), id, &input)
		render(c, http.StatusOK, result, err)
	}
}

func deletePaintHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.DeletePaint(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func getPaintStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		stock, err := models.GetCurrentStock(ctx, id)
		if err != nil {
			renderError(c, err)
			return
		}
		low, err := models.IsLowStock(ctx, id)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"paint_id":      id,
			"current_stock": stock,
			"is_low_stock":  low,
		})
	}
}

type adjustStockRequest struct {
	Quantity json.RawMessage `json:"quantity"`
	Notes    string          `json:"notes"`
}

// parseAdjustQuantity accepts the quantity as a JSON number or a numeric string.
func parseAdjustQuantity(raw json.RawMessage) (*decimal.Decimal, string) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return nil, "quantity is required"
	}
	var quantity decimal.Decimal
	if err := quantity.UnmarshalJSON(raw); err != nil {
		return nil, "invalid quantity"
	}
	return &quantity, ""
}

func adjustStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req adjustStockRequest
		if !bindJSON(c, &req) {
			return
		}
		quantity, msg := parseAdjustQuantity(req.Quantity)
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		result, err := models.AdjustStock(c.Request.Context(), id, &models.NewStockAdjustment{
			Quantity: quantity,
			Notes:    req.Notes,
		})
		if err == nil {
			countDocument("adjustment")
		}
		render(c, http.StatusCreated, result, err)
	}
}

func changePaintPricesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewPriceChange
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.ChangePaintPrices(c.Request.Context(), id, &input)
		render(c, http.StatusCreated, result, err)
	}
}

func listPaintPriceHistoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		results, err := models.ListPriceHistories(c.Request.Context(), id)
		render(c, http.StatusOK, results, err)
	}
}

func listPriceHistoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		paintId, ok := queryId(c, "paint_id")
		if !ok {
			return
		}
		results, err := models.ListPriceHistories(c.Request.Context(), paintId)
		render(c, http.StatusOK, results, err)
	}
}

func createPriceHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPriceHistory
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.CreatePriceHistory(c.Request.Context(), &input)
		render(c, http.StatusCreated, result, err)
	}
}
