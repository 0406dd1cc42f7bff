package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB builds statements against the mysql dialector without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "root:secret@tcp(127.0.0.1:1)/paint_test?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestUpdatePaymentRowKeepsOldAmount(t *testing.T) {
	db := dryRunDB(t)
	old := &Payment{ID: 7, CustomerId: 3, Amount: decimal.RequireFromString("150"), PaymentType: PaymentTypeCash}
	input := &NewPayment{CustomerId: 3, Amount: decimal.RequireFromString("200"), PaymentType: PaymentTypeCard}

	delta, err := updatePaymentRow(db, old, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !delta.Equal(decimal.RequireFromString("-50")) {
		t.Fatalf("expected delta -50, got %s", delta)
	}
	if !old.Amount.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("old amount overwritten: %s", old.Amount)
	}

	lower := &NewPayment{CustomerId: 3, Amount: decimal.RequireFromString("100"), PaymentType: PaymentTypeCash}
	delta, err = updatePaymentRow(db, old, lower)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !delta.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected delta 50, got %s", delta)
	}
}

func TestRepricePaintRecordsPreviousPrices(t *testing.T) {
	db := dryRunDB(t)
	paint := &Paint{ID: 4, CostPrice: decimal.RequireFromString("80"), SellingPrice: decimal.RequireFromString("100")}

	history, err := repricePaint(db, paint, decimal.RequireFromString("90"), decimal.RequireFromString("120"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history.PaintId != 4 {
		t.Fatalf("expected paint 4, got %d", history.PaintId)
	}
	if history.OldCostPrice == nil || !history.OldCostPrice.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("expected old cost 80, got %v", history.OldCostPrice)
	}
	if history.OldSellingPrice == nil || !history.OldSellingPrice.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected old selling 100, got %v", history.OldSellingPrice)
	}
	if !history.NewCostPrice.Equal(decimal.RequireFromString("90")) || !history.NewSellingPrice.Equal(decimal.RequireFromString("120")) {
		t.Fatalf("unexpected new prices %s/%s", history.NewCostPrice, history.NewSellingPrice)
	}

	history.applyDerived()
	if !history.CostPriceChangePercent.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected cost change 12.5, got %s", history.CostPriceChangePercent)
	}
	if !history.SellingPriceChangePercent.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected selling change 20, got %s", history.SellingPriceChangePercent)
	}
}
