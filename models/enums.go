package models

import (
	"errors"
)

type PaintUnit string

const (
	PaintUnitGram        PaintUnit = "g"
	PaintUnitKilogram    PaintUnit = "kg"
	PaintUnitLitre       PaintUnit = "l"
	PaintUnitMillilitre  PaintUnit = "ml"
	PaintUnitPiece       PaintUnit = "pcs"
	PaintUnitPack        PaintUnit = "pack"
	PaintUnitSet         PaintUnit = "set"
	PaintUnitMetre       PaintUnit = "m"
	PaintUnitSquareMetre PaintUnit = "m2"
)

func (t PaintUnit) IsValid() bool {
	switch t {
	case PaintUnitGram, PaintUnitKilogram, PaintUnitLitre, PaintUnitMillilitre, PaintUnitPiece,
		PaintUnitPack, PaintUnitSet, PaintUnitMetre, PaintUnitSquareMetre:
		return true
	}
	return false
}

// convert input to enum type
func (t *PaintUnit) UnmarshalText(b []byte) error {
	v := PaintUnit(b)
	if !v.IsValid() {
		return errors.New("invalid unit")
	}
	*t = v
	return nil
}

type ProductType string

const (
	ProductTypePiece    ProductType = "piece"
	ProductTypeMeasured ProductType = "measured"
	ProductTypeVolume   ProductType = "volume"
)

func (t ProductType) IsValid() bool {
	return t == ProductTypePiece || t == ProductTypeMeasured || t == ProductTypeVolume
}

func (t *ProductType) UnmarshalText(b []byte) error {
	v := ProductType(b)
	if !v.IsValid() {
		return errors.New("invalid product type")
	}
	*t = v
	return nil
}

type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
)

func (t MovementType) IsValid() bool {
	return t == MovementTypeIn || t == MovementTypeOut || t == MovementTypeAdjustment
}

func (t *MovementType) UnmarshalText(b []byte) error {
	v := MovementType(b)
	if !v.IsValid() {
		return errors.New("invalid movement type")
	}
	*t = v
	return nil
}

// SalePaymentType is how a sale was settled; debt leaves the shortfall on the customer.
type SalePaymentType string

const (
	SalePaymentTypeCash     SalePaymentType = "cash"
	SalePaymentTypeTransfer SalePaymentType = "transfer"
	SalePaymentTypeCard     SalePaymentType = "card"
	SalePaymentTypeDebt     SalePaymentType = "debt"
)

func (t SalePaymentType) IsValid() bool {
	switch t {
	case SalePaymentTypeCash, SalePaymentTypeTransfer, SalePaymentTypeCard, SalePaymentTypeDebt:
		return true
	}
	return false
}

func (t *SalePaymentType) UnmarshalText(b []byte) error {
	v := SalePaymentType(b)
	if !v.IsValid() {
		return errors.New("invalid payment type")
	}
	*t = v
	return nil
}

type PaymentType string

const (
	PaymentTypeCash     PaymentType = "cash"
	PaymentTypeTransfer PaymentType = "transfer"
	PaymentTypeCard     PaymentType = "card"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeCash || t == PaymentTypeTransfer || t == PaymentTypeCard
}

func (t *PaymentType) UnmarshalText(b []byte) error {
	v := PaymentType(b)
	if !v.IsValid() {
		return errors.New("invalid payment type")
	}
	*t = v
	return nil
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

// outbox events
const (
	EventSaleCreated           = "sale.created"
	EventPurchaseCreated       = "purchase.created"
	EventStockMovementRecorded = "stock.movement_recorded"
	EventPaintLowStock         = "paint.low_stock"
	EventPaintPricesChanged    = "paint.prices_changed"
	EventPaymentCreated        = "payment.created"
	EventPaymentUpdated        = "payment.updated"
	EventPaymentDeleted        = "payment.deleted"
)

const (
	OutboxReferenceSale     = "sale"
	OutboxReferencePurchase = "purchase"
	OutboxReferenceMovement = "stock_movement"
	OutboxReferencePaint    = "paint"
	OutboxReferencePayment  = "payment"
)

// source line of an automatic stock movement
const (
	MovementReferenceSaleItem     = "sale_item"
	MovementReferencePurchaseItem = "purchase_item"
)
