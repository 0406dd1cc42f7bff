package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
	"gorm.io/gorm"
)

var ErrPriceHistoryImmutable = errors.New("price history is append-only")

// PriceHistory is an audit row for one price change of a paint.
type PriceHistory struct {
	ID              int              `gorm:"primary_key" json:"id"`
	PaintId         int              `gorm:"index;not null" json:"paint_id"`
	OldCostPrice    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"old_cost_price"`
	NewCostPrice    decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"new_cost_price"`
	OldSellingPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"old_selling_price"`
	NewSellingPrice decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"new_selling_price"`
	ChangedBy       string           `gorm:"size:100" json:"changed_by"`
	Reason          string           `gorm:"type:text" json:"reason"`
	CreatedAt       time.Time        `gorm:"autoCreateTime;<-:create" json:"created_at"`

	CostPriceChangePercent    decimal.Decimal `gorm:"-" json:"cost_price_change_percent"`
	SellingPriceChangePercent decimal.Decimal `gorm:"-" json:"selling_price_change_percent"`
}

type NewPriceHistory struct {
	PaintId         int              `json:"paint_id" validate:"required"`
	OldCostPrice    *decimal.Decimal `json:"old_cost_price"`
	NewCostPrice    decimal.Decimal  `json:"new_cost_price"`
	OldSellingPrice *decimal.Decimal `json:"old_selling_price"`
	NewSellingPrice decimal.Decimal  `json:"new_selling_price"`
	ChangedBy       string           `json:"changed_by" validate:"max=100"`
	Reason          string           `json:"reason"`
}

// NewPriceChange updates a paint's prices; a nil price keeps the current one.
type NewPriceChange struct {
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	Reason       string           `json:"reason"`
}

func (h *PriceHistory) applyDerived() {
	h.CostPriceChangePercent = utils.PercentChange(h.OldCostPrice, h.NewCostPrice)
	h.SellingPriceChangePercent = utils.PercentChange(h.OldSellingPrice, h.NewSellingPrice)
}

func (input *NewPriceHistory) validate(ctx context.Context) error {
	input.Reason = strings.TrimSpace(input.Reason)
	input.ChangedBy = strings.TrimSpace(input.ChangedBy)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if err := utils.NewDetailedValidationError("invalid price history", validatePrices(input.NewCostPrice, input.NewSellingPrice)); err != nil {
		return err
	}
	return utils.ValidateResourceId[Paint](ctx, input.PaintId)
}

// CreatePriceHistory appends an audit row. It does not change the paint.
func CreatePriceHistory(ctx context.Context, input *NewPriceHistory) (*PriceHistory, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	history := PriceHistory{
		PaintId:         input.PaintId,
		OldCostPrice:    input.OldCostPrice,
		NewCostPrice:    input.NewCostPrice,
		OldSellingPrice: input.OldSellingPrice,
		NewSellingPrice: input.NewSellingPrice,
		ChangedBy:       input.ChangedBy,
		Reason:          input.Reason,
	}
	if history.ChangedBy == "" {
		history.ChangedBy = actorFromContext(ctx, "")
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&history).Error; err != nil {
		config.LogError(config.GetLogger(), "PriceHistory", "CreatePriceHistory", "Create", input, err)
		return nil, utils.MapDBError(err, "PriceHistory", 0)
	}
	history.applyDerived()
	return &history, nil
}

// ChangePaintPrices sets new prices and records the change in one transaction.
func ChangePaintPrices(ctx context.Context, paintId int, input *NewPriceChange) (*PriceHistory, error) {
	if input.CostPrice == nil && input.SellingPrice == nil {
		return nil, utils.NewValidationError("cost_price or selling_price is required")
	}
	reason := strings.TrimSpace(input.Reason)

	var history PriceHistory
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paint, err := utils.FetchModelForUpdate[Paint](tx, paintId)
		if err != nil {
			return err
		}
		newCost := utils.DereferencePtr(input.CostPrice, paint.CostPrice)
		newSelling := utils.DereferencePtr(input.SellingPrice, paint.SellingPrice)
		if err := utils.NewDetailedValidationError("invalid prices", validatePrices(newCost, newSelling)); err != nil {
			return err
		}
		if newCost.Equal(paint.CostPrice) && newSelling.Equal(paint.SellingPrice) {
			return utils.NewValidationError("prices are unchanged")
		}

		history, err = repricePaint(tx, paint, newCost, newSelling)
		if err != nil {
			return err
		}
		history.ChangedBy = actorFromContext(ctx, "")
		history.Reason = reason
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		history.applyDerived()
		return WriteOutboxEvent(ctx, tx, EventPaintPricesChanged, OutboxReferencePaint, paintId, history)
	})
	if err != nil {
		config.LogError(config.GetLogger(), "PriceHistory", "ChangePaintPrices", "Transaction", input, err)
		return nil, utils.MapDBError(err, "Paint", paintId)
	}
	return &history, nil
}

// repricePaint writes the new prices and returns an unsaved history row
// carrying the prices paint held before the write.
func repricePaint(tx *gorm.DB, paint *Paint, newCost, newSelling decimal.Decimal) (PriceHistory, error) {
	oldCost, oldSelling := paint.CostPrice, paint.SellingPrice
	err := tx.Model(&Paint{}).Where("id = ?", paint.ID).Updates(map[string]interface{}{
		"cost_price":    newCost,
		"selling_price": newSelling,
	}).Error
	if err != nil {
		return PriceHistory{}, err
	}
	return PriceHistory{
		PaintId:         paint.ID,
		OldCostPrice:    &oldCost,
		NewCostPrice:    newCost,
		OldSellingPrice: &oldSelling,
		NewSellingPrice: newSelling,
	}, nil
}

// ListPriceHistories returns newest first; paintId 0 lists every paint.
func ListPriceHistories(ctx context.Context, paintId int) ([]*PriceHistory, error) {
	if paintId > 0 {
		if err := utils.ValidateResourceId[Paint](ctx, paintId); err != nil {
			return nil, err
		}
		return utils.FetchAllModels[PriceHistory](ctx, "paint_id = ?", paintId)
	}
	return utils.FetchAllModels[PriceHistory](ctx, "")
}
