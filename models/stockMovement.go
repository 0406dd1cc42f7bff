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

var ErrStockMovementImmutable = errors.New("stock movements are immutable; record a correcting adjustment instead")

// StockMovement is one signed entry of a paint's stock ledger.
// The sum of a paint's quantities is its current stock; nothing else stores stock.
type StockMovement struct {
	ID            int              `gorm:"primary_key" json:"id"`
	PaintId       int              `gorm:"index;not null" json:"paint_id"`
	Paint         *Paint           `gorm:"foreignKey:PaintId;constraint:OnDelete:RESTRICT" json:"paint,omitempty"`
	MovementType  MovementType     `gorm:"type:enum('in','out','adjustment');not null" json:"movement_type"`
	Quantity      decimal.Decimal  `gorm:"type:decimal(10,3);not null" json:"quantity"`
	PricePerUnit  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_per_unit"`
	TotalCost     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_cost"`
	Notes         string           `gorm:"type:text" json:"notes"`
	CreatedBy     string           `gorm:"size:100" json:"created_by"`
	ReferenceType string           `gorm:"size:20;index:idx_movement_reference,priority:1" json:"reference_type,omitempty"`
	ReferenceId   int              `gorm:"index:idx_movement_reference,priority:2" json:"reference_id,omitempty"`
	CreatedAt     time.Time        `gorm:"autoCreateTime;<-:create" json:"created_at"`
}

type NewStockMovement struct {
	PaintId      int              `json:"paint_id" validate:"required"`
	MovementType MovementType     `json:"movement_type" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
	Notes        string           `json:"notes"`
	CreatedBy    string           `json:"created_by" validate:"max=100"`
}

type NewStockAdjustment struct {
	Quantity *decimal.Decimal `json:"quantity"`
	Notes    string           `json:"notes"`
}

// Normalize applies the ledger sign rule and the write-time cost.
// An out quantity is always stored negative; total cost is price x |quantity|
// and is only set when both are non-zero.
func (m *StockMovement) Normalize() {
	if m.MovementType == MovementTypeOut && m.Quantity.IsPositive() {
		m.Quantity = m.Quantity.Neg()
	}
	m.TotalCost = nil
	if m.PricePerUnit != nil && !m.PricePerUnit.IsZero() && !m.Quantity.IsZero() {
		total := roundMoney(m.PricePerUnit.Mul(m.Quantity.Abs()))
		m.TotalCost = &total
	}
}

func (input *NewStockMovement) validate(ctx context.Context) error {
	input.Notes = strings.TrimSpace(input.Notes)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	details := map[string]string{}
	if !input.MovementType.IsValid() {
		details["movement_type"] = "invalid movement type"
	}
	switch {
	case input.Quantity.IsZero():
		details["quantity"] = "must not be zero"
	case !hasScale(input.Quantity, 3):
		details["quantity"] = "at most 3 decimal places"
	}
	if input.PricePerUnit != nil && (input.PricePerUnit.IsNegative() || !hasScale(*input.PricePerUnit, 2)) {
		details["price_per_unit"] = "must be a non-negative amount with at most 2 decimal places"
	}
	if err := utils.NewDetailedValidationError("invalid stock movement", details); err != nil {
		return err
	}
	return utils.ValidateResourceId[Paint](ctx, input.PaintId)
}

// RecordMovement appends a manual ledger entry. It never checks availability,
// corrections may take stock below zero.
func RecordMovement(ctx context.Context, input *NewStockMovement) (*StockMovement, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	createdBy := strings.TrimSpace(input.CreatedBy)
	if createdBy == "" {
		createdBy = actorFromContext(ctx, defaultManualActor)
	}
	movement := StockMovement{
		PaintId:      input.PaintId,
		MovementType: input.MovementType,
		Quantity:     input.Quantity,
		PricePerUnit: input.PricePerUnit,
		Notes:        input.Notes,
		CreatedBy:    createdBy,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
		return WriteOutboxEvent(ctx, tx, EventStockMovementRecorded, OutboxReferenceMovement, movement.ID, movement)
	})
	if err != nil {
		config.LogError(config.GetLogger(), "StockMovement", "RecordMovement", "Transaction", input, err)
		return nil, utils.MapDBError(err, "StockMovement", 0)
	}
	return &movement, nil
}

// AdjustStock records a corrective adjustment with the sign as entered.
func AdjustStock(ctx context.Context, paintId int, input *NewStockAdjustment) (*StockMovement, error) {
	if input.Quantity == nil {
		return nil, utils.NewValidationError("quantity is required")
	}
	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		notes = defaultAdjustNotes
	}
	return RecordMovement(ctx, &NewStockMovement{
		PaintId:      paintId,
		MovementType: MovementTypeAdjustment,
		Quantity:     *input.Quantity,
		Notes:        notes,
	})
}

func GetStockMovement(ctx context.Context, id int) (*StockMovement, error) {
	return utils.FetchModel[StockMovement](ctx, id)
}

// ListStockMovements returns newest first; paintId 0 lists every paint.
func ListStockMovements(ctx context.Context, paintId int) ([]*StockMovement, error) {
	if paintId > 0 {
		if err := utils.ValidateResourceId[Paint](ctx, paintId); err != nil {
			return nil, err
		}
		return utils.FetchAllModels[StockMovement](ctx, "paint_id = ?", paintId)
	}
	return utils.FetchAllModels[StockMovement](ctx, "")
}

// GetCurrentStock sums the paint's whole movement history.
func GetCurrentStock(ctx context.Context, paintId int) (decimal.Decimal, error) {
	if err := utils.ValidateResourceId[Paint](ctx, paintId); err != nil {
		return decimal.Zero, err
	}
	return sumStock(config.GetDB().WithContext(ctx), paintId)
}

func IsLowStock(ctx context.Context, paintId int) (bool, error) {
	paint, err := utils.FetchModel[Paint](ctx, paintId)
	if err != nil {
		return false, err
	}
	stock, err := sumStock(config.GetDB().WithContext(ctx), paintId)
	if err != nil {
		return false, err
	}
	return StockIsLow(stock, paint.MinStockLevel), nil
}

func sumStock(db *gorm.DB, paintId int) (decimal.Decimal, error) {
	var row struct {
		Stock decimal.Decimal
	}
	err := db.Model(&StockMovement{}).
		Select("COALESCE(SUM(quantity), 0) AS stock").
		Where("paint_id = ?", paintId).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Stock, nil
}

func currentStockByPaint(db *gorm.DB, paintIds []int) (map[int]decimal.Decimal, error) {
	var rows []struct {
		PaintId int
		Stock   decimal.Decimal
	}
	err := db.Model(&StockMovement{}).
		Select("paint_id, COALESCE(SUM(quantity), 0) AS stock").
		Where("paint_id IN ?", paintIds).
		Group("paint_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[int]decimal.Decimal, len(paintIds))
	for _, id := range paintIds {
		result[id] = decimal.Zero
	}
	for _, r := range rows {
		result[r.PaintId] = r.Stock
	}
	return result, nil
}

// appendMovement is used by document lines; the caller owns the transaction.
func appendMovement(tx *gorm.DB, movement *StockMovement) error {
	return tx.Create(movement).Error
}
