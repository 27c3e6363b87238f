package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenSale() *Sale {
	return NewSale("token-1", "alice", "My Token", "MTK", 0)
}

// TestNewSale checks the initial state of a freshly listed sale.
func TestNewSale(t *testing.T) {
	sale := newOpenSale()

	assert.True(t, sale.IsOpen)
	assert.False(t, sale.Deposited)
	assert.True(t, sale.Sold.IsZero())
	assert.True(t, sale.Raised.IsZero())
}

// TestValidatePurchase covers the precondition matrix for buying.
func TestValidatePurchase(t *testing.T) {
	amount := decimal.NewFromInt(10_000)

	t.Run("exact payment accepted", func(t *testing.T) {
		sale := newOpenSale()
		assert.NoError(t, sale.ValidatePurchase(amount, decimal.NewFromInt(1)))
	})

	t.Run("wrong payment rejected", func(t *testing.T) {
		sale := newOpenSale()
		err := sale.ValidatePurchase(amount, decimal.RequireFromString("0.5"))
		assert.ErrorIs(t, err, ErrWrongPayment)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		sale := newOpenSale()
		err := sale.ValidatePurchase(amount, decimal.NewFromInt(2))
		assert.ErrorIs(t, err, ErrWrongPayment)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		sale := newOpenSale()
		err := sale.ValidatePurchase(decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("exceeding token limit rejected", func(t *testing.T) {
		sale := newOpenSale()
		over := TokenLimit.Add(decimal.NewFromInt(1))
		err := sale.ValidatePurchase(over, BatchCost(decimal.Zero, over))
		assert.ErrorIs(t, err, ErrExceedsLimit)
	})

	t.Run("closed sale rejected", func(t *testing.T) {
		sale := newOpenSale()
		sale.IsOpen = false
		err := sale.ValidatePurchase(amount, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrSaleClosed)
	})
}

// TestApplyPurchaseProgress checks sold/raised accumulate and stay open below the thresholds.
func TestApplyPurchaseProgress(t *testing.T) {
	sale := newOpenSale()
	amount := decimal.NewFromInt(10_000)
	payment := decimal.NewFromInt(1)

	require.NoError(t, sale.ValidatePurchase(amount, payment))
	closed := sale.ApplyPurchase(amount, payment)

	assert.False(t, closed)
	assert.True(t, sale.IsOpen)
	assert.True(t, sale.Sold.Equal(amount), "sold = %s", sale.Sold)
	assert.True(t, sale.Raised.Equal(payment), "raised = %s", sale.Raised)
}

// TestApplyPurchaseClosesOnTarget reproduces the reference closing sequence:
// 10,000 units for 1, then 10,000 units for 2, reaching the target of 3.
func TestApplyPurchaseClosesOnTarget(t *testing.T) {
	sale := newOpenSale()
	amount := decimal.NewFromInt(10_000)

	require.NoError(t, sale.ValidatePurchase(amount, decimal.NewFromInt(1)))
	assert.False(t, sale.ApplyPurchase(amount, decimal.NewFromInt(1)))

	require.NoError(t, sale.ValidatePurchase(amount, decimal.NewFromInt(2)))
	closed := sale.ApplyPurchase(amount, decimal.NewFromInt(2))

	assert.True(t, closed)
	assert.False(t, sale.IsOpen)
	assert.True(t, sale.Raised.Equal(decimal.NewFromInt(3)), "raised = %s", sale.Raised)
}

// TestApplyPurchaseClosesOnLimit checks the token limit also closes the sale.
func TestApplyPurchaseClosesOnLimit(t *testing.T) {
	sale := newOpenSale()
	payment := BatchCost(decimal.Zero, TokenLimit)

	require.NoError(t, sale.ValidatePurchase(TokenLimit, payment))
	closed := sale.ApplyPurchase(TokenLimit, payment)

	assert.True(t, closed)
	assert.False(t, sale.IsOpen)
	assert.True(t, sale.Sold.Equal(TokenLimit))
}

// TestRemaining checks the unsold remainder calculation.
func TestRemaining(t *testing.T) {
	sale := newOpenSale()
	sale.Sold = decimal.NewFromInt(20_000)

	want := decimal.NewFromInt(980_000)
	assert.True(t, sale.Remaining().Equal(want), "remaining = %s", sale.Remaining())
}

// TestMarkDeposited covers the deposit lifecycle rules.
func TestMarkDeposited(t *testing.T) {
	t.Run("open sale rejected", func(t *testing.T) {
		sale := newOpenSale()
		assert.ErrorIs(t, sale.MarkDeposited("alice"), ErrSaleStillOpen)
	})

	t.Run("non-creator rejected", func(t *testing.T) {
		sale := newOpenSale()
		sale.IsOpen = false
		assert.ErrorIs(t, sale.MarkDeposited("mallory"), ErrNotCreator)
	})

	t.Run("second deposit rejected", func(t *testing.T) {
		sale := newOpenSale()
		sale.IsOpen = false
		require.NoError(t, sale.MarkDeposited("alice"))
		assert.ErrorIs(t, sale.MarkDeposited("alice"), ErrAlreadyDeposited)
	})
}
