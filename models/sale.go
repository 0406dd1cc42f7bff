package models

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	saleNumberPrefix  = "S"
	customerPhoneLock = 10 * time.Second
)

type Sale struct {
	ID            int             `gorm:"primary_key" json:"id"`
	SaleNumber    string          `gorm:"size:50;not null;uniqueIndex;<-:create" json:"sale_number"`
	CustomerId    *int            `gorm:"index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerId;constraint:OnDelete:SET NULL" json:"customer,omitempty"`
	CustomerName  string          `gorm:"size:200" json:"customer_name"`
	CustomerPhone string          `gorm:"size:20" json:"customer_phone"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	PaymentType   SalePaymentType `gorm:"type:enum('cash','transfer','card','debt');not null;default:'cash'" json:"payment_type"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     string          `gorm:"size:100" json:"created_by"`
	Items         []SaleItem      `gorm:"foreignKey:SaleId" json:"items"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	DebtAmount    decimal.Decimal `gorm:"-" json:"debt_amount"`
	IsFullyPaid   bool            `gorm:"-" json:"is_fully_paid"`
	PaymentStatus PaymentStatus   `gorm:"-" json:"payment_status"`
}

// SaleItem snapshots the unit price at sale time; later catalog price edits do not touch it.
type SaleItem struct {
	ID         int             `gorm:"primary_key" json:"id"`
	SaleId     int             `gorm:"index;not null" json:"sale_id"`
	PaintId    int             `gorm:"index;not null" json:"paint_id"`
	Paint      *Paint          `gorm:"foreignKey:PaintId;constraint:OnDelete:RESTRICT" json:"paint,omitempty"`
	Quantity   decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewSale struct {
	CustomerId    *int             `json:"customer_id"`
	CustomerName  string           `json:"customer_name" validate:"max=200"`
	CustomerPhone string           `json:"customer_phone" validate:"max=20"`
	PaymentType   SalePaymentType  `json:"payment_type"`
	PaidAmount    *decimal.Decimal `json:"paid_amount"`
	Notes         string           `json:"notes"`
	Items         []NewSaleItem    `json:"items" validate:"required,min=1,dive"`
}

type NewSaleItem struct {
	PaintId   int             `json:"paint_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleDebtAmount is the unpaid part of a sale, never negative.
func SaleDebtAmount(total, paid decimal.Decimal) decimal.Decimal {
	return maxDecimal(total.Sub(paid), decimal.Zero)
}

func SalePaymentStatus(total, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// ResolvePaidAmount applies the paid-in-full default: anything but a debt sale
// with no (or zero) paid amount is considered paid in full.
// It runs once the total is known so multi-line sales get the whole total.
func ResolvePaidAmount(paymentType SalePaymentType, paid *decimal.Decimal, total decimal.Decimal) decimal.Decimal {
	if paymentType != SalePaymentTypeDebt && (paid == nil || paid.IsZero()) {
		return total
	}
	return utils.DereferencePtr(paid, decimal.Zero)
}

func LineTotal(unitPrice, quantity decimal.Decimal) decimal.Decimal {
	return roundMoney(unitPrice.Mul(quantity))
}

func (s *Sale) applyDerived() {
	s.DebtAmount = SaleDebtAmount(s.TotalAmount, s.PaidAmount)
	s.IsFullyPaid = s.PaidAmount.GreaterThanOrEqual(s.TotalAmount)
	s.PaymentStatus = SalePaymentStatus(s.TotalAmount, s.PaidAmount)
}

// validateLineQuantity checks one requested quantity against the paint's type.
func validateLineQuantity(productType ProductType, quantity decimal.Decimal) string {
	switch {
	case !quantity.IsPositive():
		return "quantity must be greater than zero"
	case !hasScale(quantity, 3):
		return "quantity supports at most 3 decimal places"
	case productType == ProductTypePiece && !utils.IsIntegral(quantity):
		return "piece items must be sold in whole units"
	}
	return ""
}

func (input *NewSale) validate(ctx context.Context) error {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerPhone = strings.TrimSpace(input.CustomerPhone)
	input.Notes = strings.TrimSpace(input.Notes)
	if input.PaymentType == "" {
		input.PaymentType = SalePaymentTypeCash
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	details := map[string]string{}
	if !input.PaymentType.IsValid() {
		details["payment_type"] = "invalid payment type"
	}
	if input.PaidAmount != nil && (input.PaidAmount.IsNegative() || !hasScale(*input.PaidAmount, 2)) {
		details["paid_amount"] = "must be a non-negative amount with at most 2 decimal places"
	}
	for i, item := range input.Items {
		if !item.Quantity.IsPositive() {
			details[fmt.Sprintf("items[%d].quantity", i)] = "quantity must be greater than zero"
		}
		if item.UnitPrice.IsNegative() || !hasScale(item.UnitPrice, 2) {
			details[fmt.Sprintf("items[%d].unit_price", i)] = "must be a non-negative amount with at most 2 decimal places"
		}
	}
	if input.CustomerPhone != "" {
		phone, err := utils.NormalizePhoneNumber(input.CustomerPhone, config.PhoneRegion())
		if err != nil {
			details["customer_phone"] = err.Error()
		} else {
			input.CustomerPhone = phone
		}
	}
	if err := utils.NewDetailedValidationError("invalid sale", details); err != nil {
		return err
	}

	if input.CustomerId != nil {
		if err := utils.ValidateResourceId[Customer](ctx, *input.CustomerId); err != nil {
			return err
		}
	}
	return nil
}

// createsCustomer reports whether the sale may register a walk-in customer by phone.
func (input *NewSale) createsCustomer() bool {
	return input.CustomerId == nil && input.CustomerName != "" && input.CustomerPhone != ""
}

// lockSalePaints locks every referenced paint in id order and checks each line
// against its type and against current stock. All failing lines are reported together.
// It returns the stock of each paint before the sale.
func lockSalePaints(tx *gorm.DB, items []NewSaleItem) (map[int]*Paint, map[int]decimal.Decimal, error) {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.PaintId)
	}
	ids = utils.UniqueSlice(ids)
	sort.Ints(ids)

	var paints []*Paint
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id IN ?", ids).Order("id").Find(&paints).Error; err != nil {
		return nil, nil, err
	}
	paintMap := make(map[int]*Paint, len(paints))
	for _, p := range paints {
		paintMap[p.ID] = p
	}
	stocks, err := currentStockByPaint(tx, ids)
	if err != nil {
		return nil, nil, err
	}

	details := map[string]string{}
	requested := make(map[int]decimal.Decimal, len(ids))
	for i, item := range items {
		key := fmt.Sprintf("items[%d]", i)
		paint, ok := paintMap[item.PaintId]
		if !ok {
			details[key+".paint_id"] = fmt.Sprintf("paint %d not found", item.PaintId)
			continue
		}
		if !paint.active() {
			details[key+".paint_id"] = fmt.Sprintf("paint %q is inactive", paint.Name)
			continue
		}
		if msg := validateLineQuantity(paint.ProductType, item.Quantity); msg != "" {
			details[key+".quantity"] = msg
			continue
		}
		requested[item.PaintId] = requested[item.PaintId].Add(item.Quantity)
		if available := stocks[item.PaintId]; requested[item.PaintId].GreaterThan(available) {
			details[key+".quantity"] = fmt.Sprintf("insufficient stock for %q: available %s %s", paint.Name, available.String(), paint.Unit)
		}
	}
	if err := utils.NewDetailedValidationError("invalid sale items", details); err != nil {
		return nil, nil, err
	}
	return paintMap, stocks, nil
}

// resolveSaleCustomer picks the explicit customer, or reuses/creates one by phone.
func resolveSaleCustomer(tx *gorm.DB, input *NewSale) (*Customer, error) {
	if input.CustomerId != nil {
		var customer Customer
		if err := tx.First(&customer, *input.CustomerId).Error; err != nil {
			return nil, utils.MapDBError(err, "Customer", *input.CustomerId)
		}
		return &customer, nil
	}
	if input.createsCustomer() {
		return findOrCreateCustomerByPhone(tx, input.CustomerName, input.CustomerPhone)
	}
	return nil, nil
}

func saleNumberTaken(tx *gorm.DB) func(string) (bool, error) {
	return func(number string) (bool, error) {
		var count int64
		err := tx.Model(&Sale{}).Where("sale_number = ?", number).Count(&count).Error
		return count > 0, err
	}
}

// CreateSale validates, writes the header, its lines and their stock movements,
// and books any unpaid part on the customer, all in one transaction.
func CreateSale(ctx context.Context, input *NewSale) (sale *Sale, err error) {
	ctx, span := tracer.Start(ctx, "models.CreateSale")
	defer func() { endSpan(span, err) }()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("sale.items", len(input.Items)), attribute.String("sale.payment_type", string(input.PaymentType)))

	// two walk-in sales for a new phone must not both create the customer
	if input.createsCustomer() {
		release, err := utils.ObtainLock(ctx, "customer-phone:"+input.CustomerPhone, customerPhoneLock)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var saleId int
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paints, stockBefore, err := lockSalePaints(tx, input.Items)
		if err != nil {
			return err
		}
		customer, err := resolveSaleCustomer(tx, input)
		if err != nil {
			return err
		}

		number, err := utils.NextDocumentNumber(ctx, saleNumberPrefix, time.Now(), saleNumberTaken(tx))
		if err != nil {
			return err
		}
		header := Sale{
			SaleNumber:    number,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			TotalAmount:   decimal.Zero,
			PaidAmount:    decimal.Zero,
			PaymentType:   input.PaymentType,
			Notes:         input.Notes,
			CreatedBy:     actorFromContext(ctx, ""),
		}
		if customer != nil {
			header.CustomerId = &customer.ID
			if header.CustomerName == "" {
				header.CustomerName = customer.Name
			}
			if header.CustomerPhone == "" {
				header.CustomerPhone = customer.Phone
			}
		}
		if err := tx.Omit("Items").Create(&header).Error; err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range input.Items {
			item := SaleItem{
				SaleId:    header.ID,
				PaintId:   line.PaintId,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			}
			// hooks append the out movement and refresh the header total
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			total = total.Add(item.TotalPrice)
		}

		paid := ResolvePaidAmount(input.PaymentType, input.PaidAmount, total)
		err = tx.Model(&header).UpdateColumns(map[string]interface{}{
			"total_amount": total,
			"paid_amount":  paid,
		}).Error
		if err != nil {
			return err
		}
		header.TotalAmount = total
		header.PaidAmount = paid

		if shortfall := total.Sub(paid); customer != nil && shortfall.IsPositive() {
			if err := applyBalanceDelta(tx, customer.ID, shortfall); err != nil {
				return err
			}
		}

		if err := WriteOutboxEvent(ctx, tx, EventSaleCreated, OutboxReferenceSale, header.ID, header); err != nil {
			return err
		}
		if err := writeLowStockEvents(ctx, tx, input.Items, paints, stockBefore); err != nil {
			return err
		}
		saleId = header.ID
		return nil
	})
	if err != nil {
		config.LogError(config.GetLogger(), "Sale", "CreateSale", "Transaction", input, err)
		return nil, utils.MapDBError(err, "Sale", 0)
	}
	return GetSale(ctx, saleId)
}

// writeLowStockEvents emits one event per paint that this sale took from above
// its minimum level to at or below it.
func writeLowStockEvents(ctx context.Context, tx *gorm.DB, items []NewSaleItem, paints map[int]*Paint, stockBefore map[int]decimal.Decimal) error {
	if !config.LowStockEventsEnabled() {
		return nil
	}
	sold := map[int]decimal.Decimal{}
	for _, item := range items {
		sold[item.PaintId] = sold[item.PaintId].Add(item.Quantity)
	}
	ids := make([]int, 0, len(sold))
	for id := range sold {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		paint := paints[id]
		before := stockBefore[id]
		after := before.Sub(sold[id])
		if StockIsLow(before, paint.MinStockLevel) || !StockIsLow(after, paint.MinStockLevel) {
			continue
		}
		err := WriteOutboxEvent(ctx, tx, EventPaintLowStock, OutboxReferencePaint, id, map[string]interface{}{
			"paint_id":        id,
			"sku":             paint.Sku,
			"current_stock":   after,
			"min_stock_level": paint.MinStockLevel,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// recomputeSaleTotal sets the header total to the sum of its line totals.
func recomputeSaleTotal(tx *gorm.DB, saleId int) error {
	var row struct {
		Total decimal.Decimal
	}
	err := tx.Model(&SaleItem{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Where("sale_id = ?", saleId).
		Scan(&row).Error
	if err != nil {
		return err
	}
	return tx.Model(&Sale{}).Where("id = ?", saleId).UpdateColumn("total_amount", row.Total).Error
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	return utils.FetchModel[Sale](ctx, id, "Items")
}

const saleDateLayout = "2006-01-02"

// ParseSaleDateRange reads optional YYYY-MM-DD bounds; to is inclusive.
func ParseSaleDateRange(from, to string) (*time.Time, *time.Time, error) {
	details := map[string]string{}
	var fromDate, toDate *time.Time
	if from != "" {
		t, err := time.Parse(saleDateLayout, from)
		if err != nil {
			details["from"] = "expected YYYY-MM-DD"
		} else {
			fromDate = &t
		}
	}
	if to != "" {
		t, err := time.Parse(saleDateLayout, to)
		if err != nil {
			details["to"] = "expected YYYY-MM-DD"
		} else {
			end := t.AddDate(0, 0, 1)
			toDate = &end
		}
	}
	if fromDate != nil && toDate != nil && !fromDate.Before(*toDate) {
		details["from"] = "must not be after to"
	}
	if err := utils.NewDetailedValidationError("invalid date range", details); err != nil {
		return nil, nil, err
	}
	return fromDate, toDate, nil
}

// ListSales returns newest first, optionally within [from, to).
func ListSales(ctx context.Context, from, to *time.Time) ([]*Sale, error) {
	var results []*Sale
	db := config.GetDB()
	q := db.WithContext(ctx).Preload("Items")
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}
	if err := q.Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
