package models

import (
	"fmt"

	"gorm.io/gorm"
)

func (m *StockMovement) BeforeCreate(tx *gorm.DB) (err error) {
	m.Normalize()
	if m.CreatedBy == "" {
		m.CreatedBy = actorFromContext(statementContext(tx), "")
	}
	return nil
}

func (m *StockMovement) BeforeUpdate(tx *gorm.DB) (err error) {
	return ErrStockMovementImmutable
}

func (m *StockMovement) BeforeDelete(tx *gorm.DB) (err error) {
	return ErrStockMovementImmutable
}

func (s *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	s.TotalPrice = LineTotal(s.UnitPrice, s.Quantity)
	return nil
}

// every sale line takes its quantity out of stock at the snapshotted price
func (s *SaleItem) AfterCreate(tx *gorm.DB) (err error) {
	var sale Sale
	if err := tx.Select("id", "sale_number").First(&sale, s.SaleId).Error; err != nil {
		return err
	}
	unitPrice := s.UnitPrice
	movement := StockMovement{
		PaintId:       s.PaintId,
		MovementType:  MovementTypeOut,
		Quantity:      s.Quantity,
		PricePerUnit:  &unitPrice,
		Notes:         fmt.Sprintf("Sale %s", sale.SaleNumber),
		ReferenceType: MovementReferenceSaleItem,
		ReferenceId:   s.ID,
	}
	if err := appendMovement(tx, &movement); err != nil {
		return err
	}
	return recomputeSaleTotal(tx, s.SaleId)
}

func (s *SaleItem) BeforeDelete(tx *gorm.DB) (err error) {
	return fmt.Errorf("sale items cannot be deleted; record a return instead")
}

func (p *PurchaseItem) BeforeCreate(tx *gorm.DB) (err error) {
	p.TotalCost = LineTotal(p.UnitCost, p.Quantity)
	return nil
}

func (p *PurchaseItem) AfterCreate(tx *gorm.DB) (err error) {
	var purchase Purchase
	if err := tx.Select("id", "purchase_number").First(&purchase, p.PurchaseId).Error; err != nil {
		return err
	}
	unitCost := p.UnitCost
	movement := StockMovement{
		PaintId:       p.PaintId,
		MovementType:  MovementTypeIn,
		Quantity:      p.Quantity,
		PricePerUnit:  &unitCost,
		Notes:         fmt.Sprintf("Purchase %s", purchase.PurchaseNumber),
		ReferenceType: MovementReferencePurchaseItem,
		ReferenceId:   p.ID,
	}
	if err := appendMovement(tx, &movement); err != nil {
		return err
	}
	return recomputePurchaseTotal(tx, p.PurchaseId)
}

func (p *PurchaseItem) BeforeDelete(tx *gorm.DB) (err error) {
	return fmt.Errorf("purchase items cannot be deleted")
}

func (p *Payment) AfterCreate(tx *gorm.DB) (err error) {
	return applyBalanceDelta(tx, p.CustomerId, p.Amount.Neg())
}

func (p *Payment) AfterDelete(tx *gorm.DB) (err error) {
	return applyBalanceDelta(tx, p.CustomerId, p.Amount)
}

func (h *PriceHistory) BeforeUpdate(tx *gorm.DB) (err error) {
	return ErrPriceHistoryImmutable
}

func (h *PriceHistory) BeforeDelete(tx *gorm.DB) (err error) {
	return ErrPriceHistoryImmutable
}

func (h *PriceHistory) AfterFind(tx *gorm.DB) (err error) {
	h.applyDerived()
	return nil
}

func (c *Customer) AfterFind(tx *gorm.DB) (err error) {
	c.applyDerived()
	return nil
}

func (s *Sale) AfterFind(tx *gorm.DB) (err error) {
	s.applyDerived()
	return nil
}
