package utils

import (
	"context"

	"github.com/webnovauz/paint-management-backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/* DB fetching */

// fetch model from db
// (returns NotFoundError when the id does not exist)
func FetchModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		return nil, MapDBError(err, GetTypeName[T](), id)
	}
	return &result, nil
}

// fetch model inside tx holding a row lock until commit
func FetchModelForUpdate[T any](tx *gorm.DB, id int) (*T, error) {
	var result T
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&result, id).Error
	if err != nil {
		return nil, MapDBError(err, GetTypeName[T](), id)
	}
	return &result, nil
}

// fetch all models matching condition, newest first
func FetchAllModels[T any](ctx context.Context, condition string, values ...interface{}) ([]*T, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if condition != "" {
		dbCtx = dbCtx.Where(condition, values...)
	}
	var results []*T
	if err := dbCtx.Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
