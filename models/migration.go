package models

import (
	"github.com/webnovauz/paint-management-backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&PaintCategory{}, &Paint{}, &PriceHistory{},
		&StockMovement{},
		&Customer{}, &Payment{},
		&Sale{}, &SaleItem{},
		&Supplier{}, &Purchase{}, &PurchaseItem{},
		&OutboxRecord{},
	)
	if err != nil {
		config.GetLogger().WithField("Module", "Migration").Fatal(err)
	}
}
