package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestCostCalibration pins the two observed price points of the curve:
// the base price before any sale and the doubled price after the first step.
func TestCostCalibration(t *testing.T) {
	assert.True(t, Cost(decimal.Zero).Equal(decimal.RequireFromString("0.0001")),
		"cost(0) = %s", Cost(decimal.Zero))

	sold := decimal.NewFromInt(10_000)
	assert.True(t, Cost(sold).Equal(decimal.RequireFromString("0.0002")),
		"cost(10000) = %s", Cost(sold))
}

// TestCostStepBoundaries checks the price only rises at step boundaries.
func TestCostStepBoundaries(t *testing.T) {
	base := decimal.RequireFromString("0.0001")

	cases := []struct {
		sold  int64
		steps int64
	}{
		{0, 0},
		{1, 0},
		{9_999, 0},
		{10_000, 1},
		{19_999, 1},
		{20_000, 2},
		{499_999, 49},
		{500_000, 50},
	}
	for _, tc := range cases {
		want := base.Add(base.Mul(decimal.NewFromInt(tc.steps)))
		got := Cost(decimal.NewFromInt(tc.sold))
		assert.True(t, got.Equal(want), "cost(%d) = %s, want %s", tc.sold, got, want)
	}
}

// TestCostMonotonic sweeps the full sale domain and checks the curve never decreases.
func TestCostMonotonic(t *testing.T) {
	step := decimal.NewFromInt(2_500)
	prev := Cost(decimal.Zero)

	for sold := decimal.Zero; sold.LessThanOrEqual(TokenLimit); sold = sold.Add(step) {
		current := Cost(sold)
		if current.LessThan(prev) {
			t.Fatalf("cost decreased at sold=%s: %s < %s", sold, current, prev)
		}
		prev = current
	}
}

// TestCostNegativeClamped checks a negative input is treated as zero instead of panicking.
func TestCostNegativeClamped(t *testing.T) {
	got := Cost(decimal.NewFromInt(-1))
	assert.True(t, got.Equal(BasePrice), "cost(-1) = %s", got)
}

// TestBatchCost checks the whole batch is priced at the pre-purchase marginal rate.
func TestBatchCost(t *testing.T) {
	amount := decimal.NewFromInt(10_000)

	first := BatchCost(decimal.Zero, amount)
	assert.True(t, first.Equal(decimal.NewFromInt(1)), "first batch cost = %s", first)

	second := BatchCost(decimal.NewFromInt(10_000), amount)
	assert.True(t, second.Equal(decimal.NewFromInt(2)), "second batch cost = %s", second)
}
