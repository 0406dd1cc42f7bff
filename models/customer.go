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

// Customer.Balance is positive when the customer owes the shop and negative
// when they paid ahead. It only changes through sales and payments.
type Customer struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:200;not null" json:"name"`
	Phone     string          `gorm:"size:20;index" json:"phone"`
	Email     string          `gorm:"size:254" json:"email"`
	Address   string          `gorm:"type:text" json:"address"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	HasDebt          bool            `gorm:"-" json:"has_debt"`
	HasPrepayment    bool            `gorm:"-" json:"has_prepayment"`
	DebtAmount       decimal.Decimal `gorm:"-" json:"debt_amount"`
	PrepaymentAmount decimal.Decimal `gorm:"-" json:"prepayment_amount"`
}

type NewCustomer struct {
	Name     string `json:"name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"max=20"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

type CustomerBalance struct {
	CustomerId       int             `json:"customer_id"`
	Name             string          `json:"name"`
	Balance          decimal.Decimal `json:"balance"`
	DebtAmount       decimal.Decimal `json:"debt_amount"`
	PrepaymentAmount decimal.Decimal `json:"prepayment_amount"`
	HasDebt          bool            `json:"has_debt"`
	HasPrepayment    bool            `json:"has_prepayment"`
}

func DebtAmountOf(balance decimal.Decimal) decimal.Decimal {
	return maxDecimal(balance, decimal.Zero)
}

func PrepaymentAmountOf(balance decimal.Decimal) decimal.Decimal {
	return maxDecimal(balance.Neg(), decimal.Zero)
}

func (c *Customer) applyDerived() {
	c.HasDebt = c.Balance.IsPositive()
	c.HasPrepayment = c.Balance.IsNegative()
	c.DebtAmount = DebtAmountOf(c.Balance)
	c.PrepaymentAmount = PrepaymentAmountOf(c.Balance)
}

func (input *NewCustomer) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	phone, err := utils.NormalizePhoneNumber(input.Phone, config.PhoneRegion())
	if err != nil {
		return &utils.ValidationError{Message: "invalid customer", Details: map[string]string{"phone": err.Error()}}
	}
	input.Phone = phone
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	customer := Customer{
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		Address:  input.Address,
		Balance:  decimal.Zero,
		IsActive: utils.NewTrue(),
	}
	if input.IsActive != nil {
		customer.IsActive = input.IsActive
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		config.LogError(config.GetLogger(), "Customer", "CreateCustomer", "Create", input, err)
		return nil, utils.MapDBError(err, "Customer", 0)
	}
	customer.applyDerived()
	return &customer, nil
}

// UpdateCustomer never touches balance.
func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	isActive := customer.IsActive
	if input.IsActive != nil {
		isActive = input.IsActive
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"name":      input.Name,
		"phone":     input.Phone,
		"email":     input.Email,
		"address":   input.Address,
		"is_active": isActive,
	}).Error
	if err != nil {
		config.LogError(config.GetLogger(), "Customer", "UpdateCustomer", "Updates", input, err)
		return nil, utils.MapDBError(err, "Customer", id)
	}
	return utils.FetchModel[Customer](ctx, id)
}

// DeleteCustomer only removes customers with a settled balance and no payments.
// Their sales keep the name/phone snapshot and lose the link.
func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}
	if !customer.Balance.IsZero() {
		return nil, utils.NewValidationError("customer balance is %s; settle it or deactivate the customer", customer.Balance.StringFixed(2))
	}
	count, err := utils.ResourceCountWhere[Payment](ctx, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewValidationError("customer has %d payments; deactivate the customer instead", count)
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Sale{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(customer).Error
	})
	if err != nil {
		config.LogError(config.GetLogger(), "Customer", "DeleteCustomer", "Transaction", id, err)
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id)
}

func ListCustomers(ctx context.Context) ([]*Customer, error) {
	return listCustomersWhere(ctx, "name", "")
}

// ListDebtors returns active customers who owe money, largest debt first.
func ListDebtors(ctx context.Context) ([]*Customer, error) {
	return listCustomersWhere(ctx, "balance DESC, name", "is_active = ? AND balance > 0", true)
}

// ListCustomersWithPrepayment returns active customers holding credit, largest credit first.
func ListCustomersWithPrepayment(ctx context.Context) ([]*Customer, error) {
	return listCustomersWhere(ctx, "balance ASC, name", "is_active = ? AND balance < 0", true)
}

func listCustomersWhere(ctx context.Context, order string, condition string, values ...interface{}) ([]*Customer, error) {
	var results []*Customer
	db := config.GetDB()
	q := db.WithContext(ctx)
	if condition != "" {
		q = q.Where(condition, values...)
	}
	if err := q.Order(order).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetCustomerBalance(ctx context.Context, id int) (*CustomerBalance, error) {
	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomerBalance{
		CustomerId:       customer.ID,
		Name:             customer.Name,
		Balance:          customer.Balance,
		DebtAmount:       customer.DebtAmount,
		PrepaymentAmount: customer.PrepaymentAmount,
		HasDebt:          customer.HasDebt,
		HasPrepayment:    customer.HasPrepayment,
	}, nil
}

// applyBalanceDelta adds delta to the customer's balance under a row lock.
// The increment is done by the database so concurrent writers cannot lose updates.
func applyBalanceDelta(tx *gorm.DB, customerId int, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	var locked Customer
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&locked, customerId).Error; err != nil {
		return utils.MapDBError(err, "Customer", customerId)
	}
	return tx.Model(&Customer{}).Where("id = ?", customerId).UpdateColumns(map[string]interface{}{
		"balance":    gorm.Expr("balance + ?", delta),
		"updated_at": time.Now(),
	}).Error
}

// findOrCreateCustomerByPhone reuses the oldest customer with this exact phone.
func findOrCreateCustomerByPhone(tx *gorm.DB, name string, phone string) (*Customer, error) {
	var existing Customer
	err := tx.Where("phone = ?", phone).Order("id").Limit(1).Find(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing.ID > 0 {
		return &existing, nil
	}
	customer := Customer{
		Name:     name,
		Phone:    phone,
		Balance:  decimal.Zero,
		IsActive: utils.NewTrue(),
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
