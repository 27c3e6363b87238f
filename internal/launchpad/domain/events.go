package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 事件类型标识，随事件一起发布，供下游索引层重建历史
const (
	EventTypeSaleCreated        = "launchpad.sale_created"
	EventTypeTokensPurchased    = "launchpad.tokens_purchased"
	EventTypeRemainderDeposited = "launchpad.remainder_deposited"
	EventTypeTreasuryWithdrawn  = "launchpad.treasury_withdrawn"
)

// SaleCreatedEvent 新发售挂牌事件
type SaleCreatedEvent struct {
	TokenID   string          `json:"token_id"`
	Creator   string          `json:"creator"`
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	Index     int64           `json:"index"`
	Fee       decimal.Decimal `json:"fee"`
	Timestamp time.Time       `json:"timestamp"`
}

// TokensPurchasedEvent 购买事件，携带购买后的累计进度
type TokensPurchasedEvent struct {
	TokenID   string          `json:"token_id"`
	Buyer     string          `json:"buyer"`
	Amount    decimal.Decimal `json:"amount"`
	Payment   decimal.Decimal `json:"payment"`
	Sold      decimal.Decimal `json:"sold"`
	Raised    decimal.Decimal `json:"raised"`
	Closed    bool            `json:"closed"`
	Timestamp time.Time       `json:"timestamp"`
}

// RemainderDepositedEvent 创建者领取未售余量事件
type RemainderDepositedEvent struct {
	TokenID   string          `json:"token_id"`
	Creator   string          `json:"creator"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// TreasuryWithdrawnEvent 金库提现事件
type TreasuryWithdrawnEvent struct {
	Owner     string          `json:"owner"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
	Timestamp time.Time       `json:"timestamp"`
}
