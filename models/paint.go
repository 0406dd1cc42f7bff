package models

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
	"gorm.io/gorm"
)

type Paint struct {
	ID            int              `gorm:"primary_key" json:"id"`
	Name          string           `gorm:"size:200;not null;uniqueIndex:idx_paint_identity,priority:1" json:"name"`
	CategoryId    int              `gorm:"index;not null" json:"category_id"`
	Category      *PaintCategory   `gorm:"foreignKey:CategoryId;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Color         string           `gorm:"size:50;not null;uniqueIndex:idx_paint_identity,priority:2" json:"color"`
	Brand         string           `gorm:"size:100;not null;uniqueIndex:idx_paint_identity,priority:3" json:"brand"`
	Unit          PaintUnit        `gorm:"type:enum('g','kg','l','ml','pcs','pack','set','m','m2');not null;default:'kg'" json:"unit"`
	ProductType   ProductType      `gorm:"type:enum('piece','measured','volume');not null;default:'measured'" json:"product_type"`
	CostPrice     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"cost_price"`
	SellingPrice  decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"selling_price"`
	Density       *decimal.Decimal `gorm:"type:decimal(6,3)" json:"density"`
	Description   string           `gorm:"type:text" json:"description"`
	Sku           string           `gorm:"size:50;not null;uniqueIndex" json:"sku"`
	MinStockLevel decimal.Decimal  `gorm:"type:decimal(10,3);not null;default:0" json:"min_stock_level"`
	IsActive      *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	CurrentStock  decimal.Decimal `gorm:"-" json:"current_stock"`
	IsLowStock    bool            `gorm:"-" json:"is_low_stock"`
	ProfitMargin  decimal.Decimal `gorm:"-" json:"profit_margin"`
	ProfitPerUnit decimal.Decimal `gorm:"-" json:"profit_per_unit"`
}

type NewPaint struct {
	Name          string           `json:"name" validate:"required,max=200"`
	CategoryId    int              `json:"category_id" validate:"required"`
	Color         string           `json:"color" validate:"required,max=50"`
	Brand         string           `json:"brand" validate:"required,max=100"`
	Unit          PaintUnit        `json:"unit"`
	ProductType   ProductType      `json:"product_type"`
	CostPrice     decimal.Decimal  `json:"cost_price"`
	SellingPrice  decimal.Decimal  `json:"selling_price"`
	Density       *decimal.Decimal `json:"density"`
	Description   string           `json:"description"`
	Sku           string           `json:"sku" validate:"required,max=50"`
	MinStockLevel decimal.Decimal  `json:"min_stock_level"`
	IsActive      *bool            `json:"is_active"`
}

// CalculateProfitMargin is (selling-cost)/selling*100 rounded to 2 places, 0 without a selling price.
func CalculateProfitMargin(costPrice, sellingPrice decimal.Decimal) decimal.Decimal {
	if !sellingPrice.IsPositive() {
		return decimal.Zero
	}
	return sellingPrice.Sub(costPrice).Div(sellingPrice).Mul(hundred).Round(2)
}

func CalculateProfitPerUnit(costPrice, sellingPrice decimal.Decimal) decimal.Decimal {
	return roundMoney(sellingPrice.Sub(costPrice))
}

// StockIsLow is true at or below the threshold, so a zero threshold flags empty stock.
func StockIsLow(currentStock, minStockLevel decimal.Decimal) bool {
	return currentStock.LessThanOrEqual(minStockLevel)
}

func (p *Paint) applyDerived(currentStock decimal.Decimal) {
	p.CurrentStock = currentStock
	p.IsLowStock = StockIsLow(currentStock, p.MinStockLevel)
	p.ProfitMargin = CalculateProfitMargin(p.CostPrice, p.SellingPrice)
	p.ProfitPerUnit = CalculateProfitPerUnit(p.CostPrice, p.SellingPrice)
}

func (p *Paint) active() bool {
	return utils.DereferencePtr(p.IsActive, true)
}

func (input *NewPaint) normalize() {
	input.Name = strings.TrimSpace(input.Name)
	input.Color = strings.TrimSpace(input.Color)
	input.Brand = strings.TrimSpace(input.Brand)
	input.Sku = strings.TrimSpace(input.Sku)
	if input.Unit == "" {
		input.Unit = PaintUnitKilogram
	}
	if input.ProductType == "" {
		input.ProductType = ProductTypeMeasured
	}
}

// validatePrices is shared by catalog edits and price changes.
func validatePrices(costPrice, sellingPrice decimal.Decimal) map[string]string {
	details := map[string]string{}
	if costPrice.LessThan(minPrice) {
		details["cost_price"] = "must be at least 0.01"
	} else if !hasScale(costPrice, 2) {
		details["cost_price"] = "at most 2 decimal places"
	}
	if sellingPrice.LessThan(minPrice) {
		details["selling_price"] = "must be at least 0.01"
	} else if !hasScale(sellingPrice, 2) {
		details["selling_price"] = "at most 2 decimal places"
	}
	return details
}

func (input *NewPaint) validate(ctx context.Context, id int) error {
	input.normalize()
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	details := validatePrices(input.CostPrice, input.SellingPrice)
	if !input.Unit.IsValid() {
		details["unit"] = "invalid unit"
	}
	if !input.ProductType.IsValid() {
		details["product_type"] = "invalid product type"
	}
	if input.MinStockLevel.IsNegative() {
		details["min_stock_level"] = "must not be negative"
	} else if !hasScale(input.MinStockLevel, 3) {
		details["min_stock_level"] = "at most 3 decimal places"
	}
	if input.Density != nil && !input.Density.IsPositive() {
		details["density"] = "must be positive"
	}
	if err := utils.NewDetailedValidationError("invalid paint", details); err != nil {
		return err
	}

	if err := utils.ValidateResourceId[PaintCategory](ctx, input.CategoryId); err != nil {
		return err
	}
	if err := utils.ValidateUnique[Paint](ctx, "sku", input.Sku, id); err != nil {
		return err
	}
	var query string
	args := []interface{}{input.Name, input.Color, input.Brand}
	if id > 0 {
		query = "name = ? AND color = ? AND brand = ? AND NOT id = ?"
		args = append(args, id)
	} else {
		query = "name = ? AND color = ? AND brand = ?"
	}
	count, err := utils.ResourceCountWhere[Paint](ctx, query, args...)
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.NewValidationError("paint %q with color %q and brand %q already exists", input.Name, input.Color, input.Brand)
	}
	return nil
}

func CreatePaint(ctx context.Context, input *NewPaint) (*Paint, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	paint := Paint{
		Name:          input.Name,
		CategoryId:    input.CategoryId,
		Color:         input.Color,
		Brand:         input.Brand,
		Unit:          input.Unit,
		ProductType:   input.ProductType,
		CostPrice:     input.CostPrice,
		SellingPrice:  input.SellingPrice,
		Density:       input.Density,
		Description:   input.Description,
		Sku:           input.Sku,
		MinStockLevel: input.MinStockLevel,
		IsActive:      utils.NewTrue(),
	}
	if input.IsActive != nil {
		paint.IsActive = input.IsActive
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&paint).Error; err != nil {
		config.LogError(config.GetLogger(), "Paint", "CreatePaint", "Create", input, err)
		return nil, utils.MapDBError(err, "Paint", 0)
	}
	paint.applyDerived(decimal.Zero)
	return &paint, nil
}

// UpdatePaint edits catalog attributes. Price history is not written here;
// use ChangePaintPrices when the audit row is wanted.
func UpdatePaint(ctx context.Context, id int, input *NewPaint) (*Paint, error) {
	paint, err := utils.FetchModel[Paint](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	isActive := paint.IsActive
	if input.IsActive != nil {
		isActive = input.IsActive
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(paint).Updates(map[string]interface{}{
		"name":            input.Name,
		"category_id":     input.CategoryId,
		"color":           input.Color,
		"brand":           input.Brand,
		"unit":            input.Unit,
		"product_type":    input.ProductType,
		"cost_price":      input.CostPrice,
		"selling_price":   input.SellingPrice,
		"density":         input.Density,
		"description":     input.Description,
		"sku":             input.Sku,
		"min_stock_level": input.MinStockLevel,
		"is_active":       isActive,
	}).Error
	if err != nil {
		config.LogError(config.GetLogger(), "Paint", "UpdatePaint", "Updates", input, err)
		return nil, utils.MapDBError(err, "Paint", id)
	}
	return GetPaint(ctx, id)
}

// DeletePaint removes a paint that never moved. Anything with ledger history
// must be deactivated instead so movements and document lines stay intact.
func DeletePaint(ctx context.Context, id int) (*Paint, error) {
	paint, err := utils.FetchModel[Paint](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ref := range []struct {
			model any
			what  string
		}{
			{&StockMovement{}, "stock movements"},
			{&SaleItem{}, "sale items"},
			{&PurchaseItem{}, "purchase items"},
		} {
			var count int64
			if err := tx.Model(ref.model).Where("paint_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return utils.NewValidationError("paint is referenced by %d %s; set is_active=false instead", count, ref.what)
			}
		}
		// history rows refuse deletion through their hooks; they go with the paint
		if err := tx.Session(&gorm.Session{SkipHooks: true}).Where("paint_id = ?", id).Delete(&PriceHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(paint).Error
	})
	if err != nil {
		config.LogError(config.GetLogger(), "Paint", "DeletePaint", "Transaction", id, err)
		return nil, err
	}
	return paint, nil
}

func GetPaint(ctx context.Context, id int) (*Paint, error) {
	paint, err := utils.FetchModel[Paint](ctx, id, "Category")
	if err != nil {
		return nil, err
	}
	stock, err := GetCurrentStock(ctx, id)
	if err != nil {
		return nil, err
	}
	paint.applyDerived(stock)
	return paint, nil
}

func ListPaints(ctx context.Context) ([]*Paint, error) {
	var paints []*Paint
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Category").Order("name, color").Find(&paints).Error; err != nil {
		return nil, err
	}
	if err := fillCurrentStock(db.WithContext(ctx), paints); err != nil {
		return nil, err
	}
	return paints, nil
}

// ListLowStockPaints returns active paints at or below their minimum level.
func ListLowStockPaints(ctx context.Context) ([]*Paint, error) {
	var paints []*Paint
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Category").Where("is_active = ?", true).Order("name, color").Find(&paints).Error; err != nil {
		return nil, err
	}
	if err := fillCurrentStock(db.WithContext(ctx), paints); err != nil {
		return nil, err
	}
	low := make([]*Paint, 0)
	for _, p := range paints {
		if p.IsLowStock {
			low = append(low, p)
		}
	}
	return low, nil
}

// fillCurrentStock computes derived fields for a batch with one grouped query.
func fillCurrentStock(db *gorm.DB, paints []*Paint) error {
	if len(paints) == 0 {
		return nil
	}
	ids := make([]int, 0, len(paints))
	for _, p := range paints {
		ids = append(ids, p.ID)
	}
	stocks, err := currentStockByPaint(db, ids)
	if err != nil {
		return err
	}
	for _, p := range paints {
		p.applyDerived(stocks[p.ID])
	}
	return nil
}
