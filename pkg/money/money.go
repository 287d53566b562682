// Package money validates and renders the decimal amounts stored in
// NUMERIC(p,s) columns.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegative      = errors.New("negative_amount")
	ErrTooManyDigits = errors.New("too_many_digits")
	ErrTooManyPlaces = errors.New("too_many_decimal_places")
)

// Precision mirrors a NUMERIC(Digits, Places) column.
type Precision struct {
	Digits int32
	Places int32
}

var (
	Amount = Precision{Digits: 10, Places: 2}
	Liters = Precision{Digits: 4, Places: 2}
)

// Validate reports whether d fits the column without rounding.
func (p Precision) Validate(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegative
	}
	if !d.Equal(d.Round(p.Places)) {
		return ErrTooManyPlaces
	}
	limit := decimal.New(1, p.Digits-p.Places)
	if d.Abs().GreaterThanOrEqual(limit) {
		return ErrTooManyDigits
	}
	return nil
}

// Format renders d with exactly two decimal places, e.g. "6.80".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Parse accepts "6.8", "6.80" or "6".
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
