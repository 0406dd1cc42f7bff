package config

import (
	"os"
	"strings"
)

func flagEnabled(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

// PhoneRegion is the default region used to validate customer phone numbers.
// Empty disables validation, phones are then stored as typed.
//
// Set via env:
// - PHONE_REGION=UZ
func PhoneRegion() string {
	return strings.ToUpper(strings.TrimSpace(os.Getenv("PHONE_REGION")))
}

// LowStockEventsEnabled controls the paint.low_stock outbox event emitted by sales.
//
// Set via env:
// - LOW_STOCK_EVENTS=false
func LowStockEventsEnabled() bool {
	return flagEnabled("LOW_STOCK_EVENTS", true)
}
