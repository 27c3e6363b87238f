package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Treasury 平台金库
// 余额等于累计收取的挂牌费与销售款减去累计提现。
type Treasury struct {
	// 平台方身份，唯一可提现的账户
	Owner string `json:"owner"`
	// 托管资金余额
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewTreasury 创建一个零余额金库
func NewTreasury(owner string) *Treasury {
	return &Treasury{
		Owner:     owner,
		Balance:   decimal.Zero,
		UpdatedAt: time.Now(),
	}
}

// Credit 入账
func (t *Treasury) Credit(amount decimal.Decimal) {
	t.Balance = t.Balance.Add(amount)
	t.UpdatedAt = time.Now()
}

// Withdraw 提现，只有 owner 可以调用，余额不足时拒绝
func (t *Treasury) Withdraw(caller string, amount decimal.Decimal) error {
	if caller != t.Owner {
		return ErrNotOwner
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Balance.LessThan(amount) {
		return ErrInsufficientTreasury
	}
	t.Balance = t.Balance.Sub(amount)
	t.UpdatedAt = time.Now()
	return nil
}
