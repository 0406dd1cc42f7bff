package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPercentChange(t *testing.T) {
	old := decimal.RequireFromString("80")
	zero := decimal.Zero
	cases := []struct {
		name     string
		old      *decimal.Decimal
		new      string
		expected string
	}{
		{"increase", &old, "100", "25"},
		{"decrease", &old, "60", "-25"},
		{"missing old", nil, "100", "0"},
		{"zero old", &zero, "100", "0"},
	}
	for _, tc := range cases {
		got := PercentChange(tc.old, decimal.RequireFromString(tc.new))
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.expected, got)
		}
	}
}

func TestPercentChange_RoundsToTwoPlaces(t *testing.T) {
	old := decimal.RequireFromString("3")
	got := PercentChange(&old, decimal.RequireFromString("4"))
	if got.String() != "33.33" {
		t.Fatalf("expected 33.33, got %s", got)
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"CustomerPhone": "customer_phone",
		"PaintId":       "paint_id",
		"SKU":           "sku",
		"MinStockLevel": "min_stock_level",
		"name":          "name",
	}
	for in, expected := range cases {
		if got := ToSnakeCase(in); got != expected {
			t.Fatalf("ToSnakeCase(%q) expected %q, got %q", in, expected, got)
		}
	}
}

func TestIsIntegral(t *testing.T) {
	if !IsIntegral(decimal.RequireFromString("2.000")) {
		t.Fatalf("2.000 should be integral")
	}
	if IsIntegral(decimal.RequireFromString("2.5")) {
		t.Fatalf("2.5 should not be integral")
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	got, err := NormalizePhoneNumber("  (650) 253-0000 ", "")
	if err != nil || got != "(650) 253-0000" {
		t.Fatalf("without region expected trimmed input, got %q (%v)", got, err)
	}

	got, err = NormalizePhoneNumber("(650) 253-0000", "US")
	if err != nil {
		t.Fatalf("NormalizePhoneNumber error: %v", err)
	}
	if got != "+16502530000" {
		t.Fatalf("expected E.164 number, got %q", got)
	}

	if _, err := NormalizePhoneNumber("12", "US"); err == nil {
		t.Fatalf("expected error for an invalid number")
	}
}

func TestUniqueSlice_KeepsFirstOccurrenceOrder(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	expected := []int{3, 1, 2}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}

func TestValidateStruct_ReportsSnakeCaseFields(t *testing.T) {
	type input struct {
		PaintId int    `validate:"required"`
		Notes   string `validate:"max=3"`
	}
	err := ValidateStruct(&input{Notes: "too long"})
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	if ve.Details["paint_id"] != "required" {
		t.Fatalf("unexpected paint_id detail: %v", ve.Details)
	}
	if ve.Details["notes"] != "max=3" {
		t.Fatalf("unexpected notes detail: %v", ve.Details)
	}
}
