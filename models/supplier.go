package models

import (
	"context"
	"strings"
	"time"

	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
)

type Supplier struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	ContactPerson string    `gorm:"size:100" json:"contact_person"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Email         string    `gorm:"size:254" json:"email"`
	Address       string    `gorm:"type:text" json:"address"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Phone         string `json:"phone" validate:"max=20"`
	Email         string `json:"email" validate:"omitempty,email,max=254"`
	Address       string `json:"address"`
	IsActive      *bool  `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewSupplier) validate(ctx context.Context, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	input.ContactPerson = strings.TrimSpace(input.ContactPerson)
	input.Email = strings.TrimSpace(input.Email)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	phone, err := utils.NormalizePhoneNumber(input.Phone, config.PhoneRegion())
	if err != nil {
		return &utils.ValidationError{Message: "invalid supplier", Details: map[string]string{"phone": err.Error()}}
	}
	input.Phone = phone
	return utils.ValidateUnique[Supplier](ctx, "name", input.Name, id)
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	supplier := Supplier{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		IsActive:      utils.NewTrue(),
	}
	if input.IsActive != nil {
		supplier.IsActive = input.IsActive
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		config.LogError(config.GetLogger(), "Supplier", "CreateSupplier", "Create", input, err)
		return nil, utils.MapDBError(err, "Supplier", 0)
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	isActive := supplier.IsActive
	if input.IsActive != nil {
		isActive = input.IsActive
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(supplier).Updates(map[string]interface{}{
		"name":           input.Name,
		"contact_person": input.ContactPerson,
		"phone":          input.Phone,
		"email":          input.Email,
		"address":        input.Address,
		"is_active":      isActive,
	}).Error
	if err != nil {
		config.LogError(config.GetLogger(), "Supplier", "UpdateSupplier", "Updates", input, err)
		return nil, utils.MapDBError(err, "Supplier", id)
	}
	return utils.FetchModel[Supplier](ctx, id)
}

// Don't delete if used in purchases
func DeleteSupplier(ctx context.Context, id int) (*Supplier, error) {
	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := utils.ResourceCountWhere[Purchase](ctx, "supplier_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewValidationError("supplier has %d purchases; set is_active=false instead", count)
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(supplier).Error; err != nil {
		config.LogError(config.GetLogger(), "Supplier", "DeleteSupplier", "Delete", id, err)
		return nil, err
	}
	return supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return utils.FetchModel[Supplier](ctx, id)
}

func ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	return utils.FetchAllModels[Supplier](ctx, "")
}
