package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EscrowAccount 注册表自身的托管账户，新铸供应量先全部归它持有
const EscrowAccount = "registry:escrow"

// TokenLedger 单个代币的固定供应量账本
// 不变量：所有持仓之和恒等于 TotalSupply（铸币后）。
type TokenLedger struct {
	// 代币标识
	TokenID string `json:"token_id"`
	// 固定总供应量，铸币时确定
	TotalSupply decimal.Decimal `json:"total_supply"`
	// 持有者 -> 持仓
	Balances map[string]decimal.Decimal `json:"balances"`
	// 是否已铸币，每个账本只允许铸一次
	Minted    bool      `json:"minted"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTokenLedger 创建一个尚未铸币的账本
func NewTokenLedger(tokenID string) *TokenLedger {
	return &TokenLedger{
		TokenID:     tokenID,
		TotalSupply: TotalSupply,
		Balances:    make(map[string]decimal.Decimal),
		UpdatedAt:   time.Now(),
	}
}

// MintAllTo 把全部供应量一次性铸给 holder，只能调用一次
func (l *TokenLedger) MintAllTo(holder string) error {
	if l.Minted {
		return ErrAlreadyMinted
	}
	l.Balances[holder] = l.TotalSupply
	l.Minted = true
	l.UpdatedAt = time.Now()
	return nil
}

// Transfer 在持有者之间原子转移 amount 个单位，不创建也不销毁
func (l *TokenLedger) Transfer(from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if l.BalanceOf(from).LessThan(amount) {
		return ErrInsufficientBalance
	}
	l.Balances[from] = l.Balances[from].Sub(amount)
	l.Balances[to] = l.BalanceOf(to).Add(amount)
	l.UpdatedAt = time.Now()
	return nil
}

// BalanceOf 返回持有者当前持仓，从未入账过的持有者返回 0
func (l *TokenLedger) BalanceOf(holder string) decimal.Decimal {
	if balance, ok := l.Balances[holder]; ok {
		return balance
	}
	return decimal.Zero
}
