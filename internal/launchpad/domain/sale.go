package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale 发售记录聚合
// 跟踪单个挂牌代币的发售进度与生命周期。Sold 与 Raised 只增不减，
// IsOpen 只能从 true 翻转到 false 一次。
type Sale struct {
	// 代币标识，与 Sale 一一对应且永不解绑
	TokenID string `json:"token_id"`
	// 挂牌者身份
	Creator string `json:"creator"`
	// 展示名称，创建后不可变
	Name string `json:"name"`
	// 展示符号，创建后不可变
	Symbol string `json:"symbol"`
	// 创建顺序序号，从 0 开始
	Index int64 `json:"index"`
	// 累计已售数量
	Sold decimal.Decimal `json:"sold"`
	// 累计募集资金
	Raised decimal.Decimal `json:"raised"`
	// 是否仍在发售
	IsOpen bool `json:"is_open"`
	// 创建者是否已领取未售余量
	Deposited bool            `json:"deposited"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewSale 创建一条新的发售记录
func NewSale(tokenID, creator, name, symbol string, index int64) *Sale {
	now := time.Now()
	return &Sale{
		TokenID:   tokenID,
		Creator:   creator,
		Name:      name,
		Symbol:    symbol,
		Index:     index,
		Sold:      decimal.Zero,
		Raised:    decimal.Zero,
		IsOpen:    true,
		Deposited: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidatePurchase 校验一次购买，不做任何状态变更。
// 返回 nil 时 payment 恰好等于按购买前边际价格计算的整批总价。
func (s *Sale) ValidatePurchase(amount, payment decimal.Decimal) error {
	if !s.IsOpen {
		return ErrSaleClosed
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if s.Sold.Add(amount).GreaterThan(TokenLimit) {
		return ErrExceedsLimit
	}
	if !payment.Equal(BatchCost(s.Sold, amount)) {
		return ErrWrongPayment
	}
	return nil
}

// ApplyPurchase 记录一次已校验的购买并评估关闭条件。
// 返回本次购买是否触发了关闭。调用前必须先通过 ValidatePurchase。
func (s *Sale) ApplyPurchase(amount, payment decimal.Decimal) bool {
	s.Sold = s.Sold.Add(amount)
	s.Raised = s.Raised.Add(payment)
	s.UpdatedAt = time.Now()

	if s.Sold.GreaterThanOrEqual(TokenLimit) || s.Raised.GreaterThanOrEqual(Target) {
		s.IsOpen = false
		return true
	}
	return false
}

// Remaining 返回托管账户中尚未售出的数量
func (s *Sale) Remaining() decimal.Decimal {
	return TotalSupply.Sub(s.Sold)
}

// MarkDeposited 记录创建者已领取未售余量。
// 发售未关闭或已领取过时返回错误。
func (s *Sale) MarkDeposited(caller string) error {
	if caller != s.Creator {
		return ErrNotCreator
	}
	if s.IsOpen {
		return ErrSaleStillOpen
	}
	if s.Deposited {
		return ErrAlreadyDeposited
	}
	s.Deposited = true
	s.UpdatedAt = time.Now()
	return nil
}
