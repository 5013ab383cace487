package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, "1.13", Round(decimal.NewFromFloat(1.125), 2).String())
	assert.Equal(t, "-1.13", Round(decimal.NewFromFloat(-1.125), 2).String())
	assert.Equal(t, "1.12", Round(decimal.NewFromFloat(1.124), 2).String())
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(240), decimal.NewFromInt(18))
	assert.True(t, got.Equal(decimal.NewFromFloat(43.2)))
}

func TestRateOfInversesPercent(t *testing.T) {
	base := decimal.NewFromInt(200)
	rate := decimal.NewFromInt(17)

	amount := Percent(base, rate)
	assert.True(t, RateOf(amount, base).Equal(rate))
}

func TestRateOfZeroBase(t *testing.T) {
	assert.True(t, RateOf(decimal.NewFromInt(10), decimal.Zero).IsZero())
}
