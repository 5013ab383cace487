// Package money holds the currency-precision rounding rules shared by the
// tax engine and the withholding calculator. All monetary values are
// decimals; nothing in this module touches floats.
package money

import "github.com/shopspring/decimal"

// DefaultPrecision is the currency precision used when none is configured.
const DefaultPrecision int32 = 2

var hundred = decimal.NewFromInt(100)

// Round rounds v half-up at the given currency precision.
func Round(v decimal.Decimal, precision int32) decimal.Decimal {
	return v.Round(precision)
}

// Percent returns rate percent of base, unrounded: base * rate / 100.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}

// RateOf reverse-derives the percentage that amount represents of base.
// A zero base yields a zero rate.
func RateOf(amount, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return amount.Div(base).Mul(hundred)
}
