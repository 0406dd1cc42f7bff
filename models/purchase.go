package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const purchaseNumberPrefix = "P"

type Purchase struct {
	ID             int             `gorm:"primary_key" json:"id"`
	PurchaseNumber string          `gorm:"size:50;not null;uniqueIndex;<-:create" json:"purchase_number"`
	SupplierId     int             `gorm:"index;not null" json:"supplier_id"`
	Supplier       *Supplier       `gorm:"foreignKey:SupplierId;constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedBy      string          `gorm:"size:100" json:"created_by"`
	Items          []PurchaseItem  `gorm:"foreignKey:PurchaseId" json:"items"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseItem struct {
	ID         int             `gorm:"primary_key" json:"id"`
	PurchaseId int             `gorm:"index;not null" json:"purchase_id"`
	PaintId    int             `gorm:"index;not null" json:"paint_id"`
	Paint      *Paint          `gorm:"foreignKey:PaintId;constraint:OnDelete:RESTRICT" json:"paint,omitempty"`
	Quantity   decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"quantity"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_cost"`
	TotalCost  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_cost"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPurchase struct {
	SupplierId int               `json:"supplier_id" validate:"required"`
	Notes      string            `json:"notes"`
	Items      []NewPurchaseItem `json:"items" validate:"required,min=1,dive"`
}

type NewPurchaseItem struct {
	PaintId  int             `json:"paint_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

func (input *NewPurchase) validate(ctx context.Context) error {
	input.Notes = strings.TrimSpace(input.Notes)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	details := map[string]string{}
	paintIds := make([]int, 0, len(input.Items))
	for i, item := range input.Items {
		if !item.Quantity.IsPositive() {
			details[fmt.Sprintf("items[%d].quantity", i)] = "quantity must be greater than zero"
		} else if !hasScale(item.Quantity, 3) {
			details[fmt.Sprintf("items[%d].quantity", i)] = "quantity supports at most 3 decimal places"
		}
		if item.UnitCost.IsNegative() || !hasScale(item.UnitCost, 2) {
			details[fmt.Sprintf("items[%d].unit_cost", i)] = "must be a non-negative amount with at most 2 decimal places"
		}
		paintIds = append(paintIds, item.PaintId)
	}
	if err := utils.NewDetailedValidationError("invalid purchase items", details); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
		return err
	}
	return utils.ValidateResourcesId[Paint](ctx, utils.UniqueSlice(paintIds))
}

func purchaseNumberTaken(tx *gorm.DB) func(string) (bool, error) {
	return func(number string) (bool, error) {
		var count int64
		err := tx.Model(&Purchase{}).Where("purchase_number = ?", number).Count(&count).Error
		return count > 0, err
	}
}

// CreatePurchase books received goods: the header, one line per item and an
// in movement per line, in one transaction.
func CreatePurchase(ctx context.Context, input *NewPurchase) (purchase *Purchase, err error) {
	ctx, span := tracer.Start(ctx, "models.CreatePurchase")
	defer func() { endSpan(span, err) }()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("purchase.items", len(input.Items)))

	var purchaseId int
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := utils.NextDocumentNumber(ctx, purchaseNumberPrefix, time.Now(), purchaseNumberTaken(tx))
		if err != nil {
			return err
		}
		header := Purchase{
			PurchaseNumber: number,
			SupplierId:     input.SupplierId,
			TotalAmount:    decimal.Zero,
			Notes:          input.Notes,
			CreatedBy:      actorFromContext(ctx, ""),
		}
		if err := tx.Omit("Items").Create(&header).Error; err != nil {
			return err
		}
		total := decimal.Zero
		for _, line := range input.Items {
			item := PurchaseItem{
				PurchaseId: header.ID,
				PaintId:    line.PaintId,
				Quantity:   line.Quantity,
				UnitCost:   line.UnitCost,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			total = total.Add(item.TotalCost)
		}
		header.TotalAmount = total
		if err := WriteOutboxEvent(ctx, tx, EventPurchaseCreated, OutboxReferencePurchase, header.ID, header); err != nil {
			return err
		}
		purchaseId = header.ID
		return nil
	})
	if err != nil {
		config.LogError(config.GetLogger(), "Purchase", "CreatePurchase", "Transaction", input, err)
		return nil, utils.MapDBError(err, "Purchase", 0)
	}
	return GetPurchase(ctx, purchaseId)
}

func recomputePurchaseTotal(tx *gorm.DB, purchaseId int) error {
	var row struct {
		Total decimal.Decimal
	}
	err := tx.Model(&PurchaseItem{}).
		Select("COALESCE(SUM(total_cost), 0) AS total").
		Where("purchase_id = ?", purchaseId).
		Scan(&row).Error
	if err != nil {
		return err
	}
	return tx.Model(&Purchase{}).Where("id = ?", purchaseId).UpdateColumn("total_amount", row.Total).Error
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	return utils.FetchModel[Purchase](ctx, id, "Items")
}

func ListPurchases(ctx context.Context) ([]*Purchase, error) {
	var results []*Purchase
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Items").Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
