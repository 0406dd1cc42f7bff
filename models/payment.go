package models

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Payment reduces a customer's balance by Amount.
// Creating, editing and deleting a payment keep the balance in step through hooks.
type Payment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CustomerId  int             `gorm:"index;not null;<-:create" json:"customer_id"`
	Customer    *Customer       `gorm:"foreignKey:CustomerId;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentType PaymentType     `gorm:"type:enum('cash','transfer','card');not null;default:'cash'" json:"payment_type"`
	PaymentDate time.Time       `gorm:"not null;index;<-:create" json:"payment_date"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedBy   string          `gorm:"size:100" json:"created_by"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	CustomerId  int             `json:"customer_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType PaymentType     `json:"payment_type"`
	Notes       string          `json:"notes"`
}

func (input *NewPayment) validate(ctx context.Context) error {
	input.Notes = strings.TrimSpace(input.Notes)
	if input.PaymentType == "" {
		input.PaymentType = PaymentTypeCash
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	details := map[string]string{}
	if !input.Amount.IsPositive() {
		details["amount"] = "payment amount must be greater than zero"
	} else if !hasScale(input.Amount, 2) {
		details["amount"] = "at most 2 decimal places"
	}
	if !input.PaymentType.IsValid() {
		details["payment_type"] = "invalid payment type"
	}
	if err := utils.NewDetailedValidationError("invalid payment", details); err != nil {
		return err
	}
	return utils.ValidateResourceId[Customer](ctx, input.CustomerId)
}

func CreatePayment(ctx context.Context, input *NewPayment) (*Payment, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	payment := Payment{
		CustomerId:  input.CustomerId,
		Amount:      input.Amount,
		PaymentType: input.PaymentType,
		PaymentDate: time.Now().UTC(),
		Notes:       input.Notes,
		CreatedBy:   actorFromContext(ctx, ""),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// AfterCreate applies the balance change
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return WriteOutboxEvent(ctx, tx, EventPaymentCreated, OutboxReferencePayment, payment.ID, payment)
	})
	if err != nil {
		config.LogError(config.GetLogger(), "Payment", "CreatePayment", "Transaction", input, err)
		return nil, utils.MapDBError(err, "Payment", 0)
	}
	return &payment, nil
}

// UpdatePayment changes amount, type or notes. The customer and the payment
// date are fixed; the balance moves by the difference between the amounts.
func UpdatePayment(ctx context.Context, id int, input *NewPayment) (*Payment, error) {
	existing, err := utils.FetchModel[Payment](ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CustomerId == 0 {
		input.CustomerId = existing.CustomerId
	}
	if input.CustomerId != existing.CustomerId {
		return nil, utils.NewValidationError("payment customer cannot be changed; delete the payment and record a new one")
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	var updated Payment
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := utils.FetchModelForUpdate[Payment](tx, id)
		if err != nil {
			return err
		}
		delta, err := updatePaymentRow(tx, old, input)
		if err != nil {
			return err
		}
		if err := applyBalanceDelta(tx, old.CustomerId, delta); err != nil {
			return err
		}
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}
		return WriteOutboxEvent(ctx, tx, EventPaymentUpdated, OutboxReferencePayment, id, map[string]interface{}{
			"old": old.Amount,
			"new": updated,
		})
	})
	if err != nil {
		config.LogError(config.GetLogger(), "Payment", "UpdatePayment", "Transaction", input, err)
		return nil, utils.MapDBError(err, "Payment", id)
	}
	return &updated, nil
}

// updatePaymentRow writes the edit without touching old, so old.Amount still
// holds the pre-edit amount, and returns the balance delta.
func updatePaymentRow(tx *gorm.DB, old *Payment, input *NewPayment) (decimal.Decimal, error) {
	err := tx.Model(&Payment{}).Where("id = ?", old.ID).Updates(map[string]interface{}{
		"amount":       input.Amount,
		"payment_type": input.PaymentType,
		"notes":        input.Notes,
	}).Error
	if err != nil {
		return decimal.Zero, err
	}
	return PaymentUpdateDelta(old.Amount, input.Amount), nil
}

// PaymentUpdateDelta is the balance change for editing a payment from oldAmount to newAmount.
func PaymentUpdateDelta(oldAmount, newAmount decimal.Decimal) decimal.Decimal {
	return newAmount.Sub(oldAmount).Neg()
}

func DeletePayment(ctx context.Context, id int) (*Payment, error) {
	var payment Payment
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, id).Error; err != nil {
			return utils.MapDBError(err, "Payment", id)
		}
		// AfterDelete adds the amount back
		if err := tx.Delete(&payment).Error; err != nil {
			return err
		}
		return WriteOutboxEvent(ctx, tx, EventPaymentDeleted, OutboxReferencePayment, id, payment)
	})
	if err != nil {
		config.LogError(config.GetLogger(), "Payment", "DeletePayment", "Transaction", id, err)
		return nil, err
	}
	return &payment, nil
}

func GetPayment(ctx context.Context, id int) (*Payment, error) {
	return utils.FetchModel[Payment](ctx, id)
}

func ListPayments(ctx context.Context) ([]*Payment, error) {
	return utils.FetchAllModels[Payment](ctx, "")
}

func ListPaymentsByCustomer(ctx context.Context, customerId int) ([]*Payment, error) {
	if customerId <= 0 {
		return nil, utils.NewValidationError("customer_id is required")
	}
	if err := utils.ValidateResourceId[Customer](ctx, customerId); err != nil {
		return nil, err
	}
	return utils.FetchAllModels[Payment](ctx, "customer_id = ?", customerId)
}
