package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var hundred = decimal.NewFromInt(100)

// ValidateStruct runs the `validate` struct tags and reports every failing field.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}
	return &ValidationError{Message: "invalid input", Details: ProcessValidationErrors(err)}
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["_"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		msg := ve.Tag()
		if ve.Param() != "" {
			msg += "=" + ve.Param()
		}
		errorResponse[ToSnakeCase(ve.Field())] = msg
	}
	return errorResponse
}

// NormalizePhoneNumber trims the phone and, when a region is given, rewrites it as E.164
// so the same number typed two ways still matches.
func NormalizePhoneNumber(phoneNumber, region string) (string, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" || region == "" {
		return phoneNumber, nil
	}
	p, err := libphonenumber.Parse(phoneNumber, region)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	if ptr != nil {
		return *ptr
	}
	if len(defaults) > 0 {
		return defaults[0]
	}
	var zero T
	return zero
}

func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}
	return decimal.NewFromString(value)
}

func IsIntegral(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}

// PercentChange is (new-old)/old*100 rounded to 2 places, 0 when old is missing or zero.
func PercentChange(oldValue *decimal.Decimal, newValue decimal.Decimal) decimal.Decimal {
	if oldValue == nil || oldValue.IsZero() {
		return decimal.Zero
	}
	return newValue.Sub(*oldValue).Div(*oldValue).Mul(hundred).Round(2)
}

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

// ToSnakeCase turns "CustomerPhone" into "customer_phone".
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
