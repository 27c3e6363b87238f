package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
)

// CreateSaleCommand 挂牌新发售
type CreateSaleCommand struct {
	Caller  string
	Name    string
	Symbol  string
	Payment decimal.Decimal
}

// BuyCommand 购买代币
type BuyCommand struct {
	Caller  string
	TokenID string
	Amount  decimal.Decimal
	Payment decimal.Decimal
}

// DepositCommand 创建者领取未售余量
type DepositCommand struct {
	Caller  string
	TokenID string
}

// WithdrawCommand 平台方提现
type WithdrawCommand struct {
	Caller string
	Amount decimal.Decimal
}

// SaleDTO 发售记录视图
type SaleDTO struct {
	TokenID   string          `json:"token_id"`
	Creator   string          `json:"creator"`
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	Index     int64           `json:"index"`
	Sold      decimal.Decimal `json:"sold"`
	Raised    decimal.Decimal `json:"raised"`
	IsOpen    bool            `json:"is_open"`
	Deposited bool            `json:"deposited"`
	// 当前边际单价，按已售数量实时计算
	Cost      decimal.Decimal `json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
}

// RegistryDTO 注册表概览
type RegistryDTO struct {
	Owner       string          `json:"owner"`
	Fee         decimal.Decimal `json:"fee"`
	Target      decimal.Decimal `json:"target"`
	TokenLimit  decimal.Decimal `json:"token_limit"`
	TotalSupply decimal.Decimal `json:"total_supply"`
	TotalTokens int64           `json:"total_tokens"`
}

// QuoteDTO 购买报价
type QuoteDTO struct {
	TokenID string `json:"token_id"`
	// 当前边际单价
	UnitPrice decimal.Decimal `json:"unit_price"`
	// 整批总价（报价数量为 0 时等于 0）
	TotalCost decimal.Decimal `json:"total_cost"`
	Amount    decimal.Decimal `json:"amount"`
}

// WithdrawDTO 提现结果
type WithdrawDTO struct {
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
}

func toSaleDTO(sale *domain.Sale) *SaleDTO {
	return &SaleDTO{
		TokenID:   sale.TokenID,
		Creator:   sale.Creator,
		Name:      sale.Name,
		Symbol:    sale.Symbol,
		Index:     sale.Index,
		Sold:      sale.Sold,
		Raised:    sale.Raised,
		IsOpen:    sale.IsOpen,
		Deposited: sale.Deposited,
		Cost:      domain.Cost(sale.Sold),
		CreatedAt: sale.CreatedAt,
	}
}
