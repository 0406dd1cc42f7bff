package models

import (
	"context"
	"strings"
	"time"

	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
)

type PaintCategory struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPaintCategory struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

func (input *NewPaintCategory) validate(ctx context.Context, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	return utils.ValidateUnique[PaintCategory](ctx, "name", input.Name, id)
}

func CreatePaintCategory(ctx context.Context, input *NewPaintCategory) (*PaintCategory, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	category := PaintCategory{
		Name:        input.Name,
		Description: input.Description,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		config.LogError(config.GetLogger(), "PaintCategory", "CreatePaintCategory", "Create", input, err)
		return nil, utils.MapDBError(err, "PaintCategory", 0)
	}
	return &category, nil
}

func UpdatePaintCategory(ctx context.Context, id int, input *NewPaintCategory) (*PaintCategory, error) {
	category, err := utils.FetchModel[PaintCategory](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(category).Updates(map[string]interface{}{
		"name":        input.Name,
		"description": input.Description,
	}).Error
	if err != nil {
		config.LogError(config.GetLogger(), "PaintCategory", "UpdatePaintCategory", "Updates", input, err)
		return nil, utils.MapDBError(err, "PaintCategory", id)
	}
	return category, nil
}

// DeletePaintCategory refuses while any paint still belongs to the category.
func DeletePaintCategory(ctx context.Context, id int) (*PaintCategory, error) {
	category, err := utils.FetchModel[PaintCategory](ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := utils.ResourceCountWhere[Paint](ctx, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewValidationError("category has %d paints; move or deactivate them first", count)
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(category).Error; err != nil {
		config.LogError(config.GetLogger(), "PaintCategory", "DeletePaintCategory", "Delete", id, err)
		return nil, err
	}
	return category, nil
}

func GetPaintCategory(ctx context.Context, id int) (*PaintCategory, error) {
	return utils.FetchModel[PaintCategory](ctx, id)
}

func ListPaintCategories(ctx context.Context) ([]*PaintCategory, error) {
	var results []*PaintCategory
	db := config.GetDB()
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
