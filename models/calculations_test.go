package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/webnovauz/paint-management-backend/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateProfitMargin(t *testing.T) {
	cases := []struct {
		cost, selling, expected string
	}{
		{"80", "100", "20"},
		{"10", "15", "33.33"},
		{"100", "80", "-25"},
		{"10", "0", "0"},
	}
	for _, tc := range cases {
		got := models.CalculateProfitMargin(d(tc.cost), d(tc.selling))
		if !got.Equal(d(tc.expected)) {
			t.Fatalf("margin(%s, %s) expected %s, got %s", tc.cost, tc.selling, tc.expected, got)
		}
	}
}

func TestCalculateProfitPerUnit(t *testing.T) {
	if got := models.CalculateProfitPerUnit(d("45.50"), d("60")); !got.Equal(d("14.50")) {
		t.Fatalf("expected 14.50, got %s", got)
	}
}

func TestStockIsLow_InclusiveThreshold(t *testing.T) {
	if !models.StockIsLow(d("5"), d("5")) {
		t.Fatalf("stock equal to the threshold should be low")
	}
	if models.StockIsLow(d("5.001"), d("5")) {
		t.Fatalf("stock above the threshold should not be low")
	}
	if !models.StockIsLow(d("0"), d("0")) {
		t.Fatalf("empty stock with a zero threshold should be low")
	}
}

func TestCustomerBalanceSplit(t *testing.T) {
	if got := models.DebtAmountOf(d("400")); !got.Equal(d("400")) {
		t.Fatalf("debt of 400 expected 400, got %s", got)
	}
	if got := models.PrepaymentAmountOf(d("400")); !got.IsZero() {
		t.Fatalf("prepayment of 400 expected 0, got %s", got)
	}
	if got := models.DebtAmountOf(d("-75")); !got.IsZero() {
		t.Fatalf("debt of -75 expected 0, got %s", got)
	}
	if got := models.PrepaymentAmountOf(d("-75")); !got.Equal(d("75")) {
		t.Fatalf("prepayment of -75 expected 75, got %s", got)
	}
}

func TestSalePaymentStatus(t *testing.T) {
	cases := []struct {
		total, paid string
		expected    models.PaymentStatus
	}{
		{"500", "500", models.PaymentStatusPaid},
		{"500", "600", models.PaymentStatusPaid},
		{"500", "100", models.PaymentStatusPartial},
		{"500", "0", models.PaymentStatusUnpaid},
	}
	for _, tc := range cases {
		if got := models.SalePaymentStatus(d(tc.total), d(tc.paid)); got != tc.expected {
			t.Fatalf("status(%s, %s) expected %s, got %s", tc.total, tc.paid, tc.expected, got)
		}
	}
	if got := models.SaleDebtAmount(d("500"), d("600")); !got.IsZero() {
		t.Fatalf("overpaid sale should carry no debt, got %s", got)
	}
	if got := models.SaleDebtAmount(d("500"), d("100")); !got.Equal(d("400")) {
		t.Fatalf("expected debt 400, got %s", got)
	}
}

func TestResolvePaidAmount(t *testing.T) {
	total := d("350")
	zero := decimal.Zero
	partial := d("100")

	if got := models.ResolvePaidAmount(models.SalePaymentTypeCash, nil, total); !got.Equal(total) {
		t.Fatalf("cash sale without paid amount should be paid in full, got %s", got)
	}
	if got := models.ResolvePaidAmount(models.SalePaymentTypeCard, &zero, total); !got.Equal(total) {
		t.Fatalf("card sale with zero paid amount should be paid in full, got %s", got)
	}
	if got := models.ResolvePaidAmount(models.SalePaymentTypeCash, &partial, total); !got.Equal(partial) {
		t.Fatalf("explicit paid amount should be kept, got %s", got)
	}
	if got := models.ResolvePaidAmount(models.SalePaymentTypeDebt, nil, total); !got.IsZero() {
		t.Fatalf("debt sale without paid amount should be unpaid, got %s", got)
	}
	if got := models.ResolvePaidAmount(models.SalePaymentTypeDebt, &partial, total); !got.Equal(partial) {
		t.Fatalf("debt sale should keep its deposit, got %s", got)
	}
}

func TestResolvePaidAmount_UsesWholeMultiLineTotal(t *testing.T) {
	total := models.LineTotal(d("100"), d("2")).Add(models.LineTotal(d("50"), d("3")))
	if got := models.ResolvePaidAmount(models.SalePaymentTypeTransfer, nil, total); !got.Equal(d("350")) {
		t.Fatalf("expected 350 for both lines, got %s", got)
	}
}

func TestLineTotal_RoundsToCents(t *testing.T) {
	if got := models.LineTotal(d("12.99"), d("1.255")); !got.Equal(d("16.30")) {
		t.Fatalf("expected 16.30, got %s", got.StringFixed(2))
	}
}

func TestStockMovementNormalize(t *testing.T) {
	price := d("20")

	out := models.StockMovement{MovementType: models.MovementTypeOut, Quantity: d("5"), PricePerUnit: &price}
	out.Normalize()
	if !out.Quantity.Equal(d("-5")) {
		t.Fatalf("out movement should be stored negative, got %s", out.Quantity)
	}
	if out.TotalCost == nil || !out.TotalCost.Equal(d("100")) {
		t.Fatalf("expected total cost 100, got %v", out.TotalCost)
	}

	already := models.StockMovement{MovementType: models.MovementTypeOut, Quantity: d("-5")}
	already.Normalize()
	if !already.Quantity.Equal(d("-5")) {
		t.Fatalf("negative out movement should stay -5, got %s", already.Quantity)
	}
	if already.TotalCost != nil {
		t.Fatalf("total cost needs a price, got %s", already.TotalCost)
	}

	adjustment := models.StockMovement{MovementType: models.MovementTypeAdjustment, Quantity: d("-2")}
	adjustment.Normalize()
	if !adjustment.Quantity.Equal(d("-2")) {
		t.Fatalf("adjustment keeps its sign, got %s", adjustment.Quantity)
	}

	reversal := models.StockMovement{MovementType: models.MovementTypeIn, Quantity: d("-1")}
	reversal.Normalize()
	if !reversal.Quantity.Equal(d("-1")) {
		t.Fatalf("in movement keeps its sign, got %s", reversal.Quantity)
	}

	zeroPrice := decimal.Zero
	in := models.StockMovement{MovementType: models.MovementTypeIn, Quantity: d("3"), PricePerUnit: &zeroPrice}
	in.Normalize()
	if in.TotalCost != nil {
		t.Fatalf("zero price should leave total cost unset, got %s", in.TotalCost)
	}
}

func TestPaymentUpdateDelta(t *testing.T) {
	if got := models.PaymentUpdateDelta(d("150"), d("200")); !got.Equal(d("-50")) {
		t.Fatalf("raising a payment should lower the balance, got %s", got)
	}
	if got := models.PaymentUpdateDelta(d("150"), d("100")); !got.Equal(d("50")) {
		t.Fatalf("lowering a payment should raise the balance, got %s", got)
	}
}

func TestEnumsRejectUnknownValues(t *testing.T) {
	var pt models.ProductType
	if err := pt.UnmarshalText([]byte("liquid")); err == nil {
		t.Fatalf("expected error for unknown product type")
	}
	var st models.SalePaymentType
	if err := st.UnmarshalText([]byte("debt")); err != nil || st != models.SalePaymentTypeDebt {
		t.Fatalf("expected debt payment type, got %q (%v)", st, err)
	}
	var payment models.PaymentType
	if err := payment.UnmarshalText([]byte("debt")); err == nil {
		t.Fatalf("debt is not a payment type")
	}
}

func TestParseSaleDateRange(t *testing.T) {
	from, to, err := models.ParseSaleDateRange("2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("ParseSaleDateRange error: %v", err)
	}
	if from.Format("2006-01-02") != "2024-03-01" || to.Format("2006-01-02") != "2024-04-01" {
		t.Fatalf("unexpected range %s - %s", from, to)
	}

	from, to, err = models.ParseSaleDateRange("", "")
	if err != nil || from != nil || to != nil {
		t.Fatalf("empty bounds should be open, got %v %v %v", from, to, err)
	}

	for _, tc := range [][2]string{{"03/01/2024", ""}, {"", "yesterday"}, {"2024-04-02", "2024-04-01"}} {
		if _, _, err := models.ParseSaleDateRange(tc[0], tc[1]); err == nil {
			t.Fatalf("expected error for %v", tc)
		}
	}
}
