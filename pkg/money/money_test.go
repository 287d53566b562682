package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrecisionValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Precision
		in   string
		err  error
	}{
		{"amount ok", Amount, "12.50", nil},
		{"amount max", Amount, "99999999.99", nil},
		{"amount overflow", Amount, "100000000", ErrTooManyDigits},
		{"amount places", Amount, "1.234", ErrTooManyPlaces},
		{"trailing zeros", Amount, "1.200", nil},
		{"negative", Amount, "-1", ErrNegative},
		{"liters half", Liters, "0.5", nil},
		{"liters keg", Liters, "50", nil},
		{"liters overflow", Liters, "100", ErrTooManyDigits},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate(decimal.RequireFromString(tc.in))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "6.80", Format(decimal.RequireFromString("6.8")))
	assert.Equal(t, "12.50", Format(decimal.RequireFromString("12.5")))
	assert.Equal(t, "0.00", Format(decimal.Zero))
}
