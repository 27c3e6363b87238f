package mysql

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleModel 发售记录持久化模型
type SaleModel struct {
	gorm.Model
	TokenID   string          `gorm:"column:token_id;type:varchar(64);uniqueIndex;not null"`
	Creator   string          `gorm:"column:creator;type:varchar(64);index;not null"`
	Name      string          `gorm:"column:name;type:varchar(255);not null"`
	Symbol    string          `gorm:"column:symbol;type:varchar(32);not null"`
	SaleIndex int64           `gorm:"column:sale_index;uniqueIndex;not null"`
	Sold      decimal.Decimal `gorm:"column:sold;type:decimal(32,18);not null"`
	Raised    decimal.Decimal `gorm:"column:raised;type:decimal(32,18);not null"`
	IsOpen    bool            `gorm:"column:is_open;not null"`
	Deposited bool            `gorm:"column:deposited;not null"`
}

func (SaleModel) TableName() string { return "sales" }

// LedgerModel 代币账本持久化模型
type LedgerModel struct {
	gorm.Model
	TokenID     string          `gorm:"column:token_id;type:varchar(64);uniqueIndex;not null"`
	TotalSupply decimal.Decimal `gorm:"column:total_supply;type:decimal(32,18);not null"`
	Minted      bool            `gorm:"column:minted;not null"`
}

func (LedgerModel) TableName() string { return "token_ledgers" }

// BalanceModel 持仓持久化模型，每个 (token_id, holder) 一行
type BalanceModel struct {
	gorm.Model
	TokenID string          `gorm:"column:token_id;type:varchar(64);uniqueIndex:idx_token_holder;not null"`
	Holder  string          `gorm:"column:holder;type:varchar(64);uniqueIndex:idx_token_holder;not null"`
	Balance decimal.Decimal `gorm:"column:balance;type:decimal(32,18);not null"`
}

func (BalanceModel) TableName() string { return "token_balances" }

// TreasuryModel 金库持久化模型，单行记录
type TreasuryModel struct {
	gorm.Model
	Owner   string          `gorm:"column:owner;type:varchar(64);uniqueIndex;not null"`
	Balance decimal.Decimal `gorm:"column:balance;type:decimal(32,18);not null"`
}

func (TreasuryModel) TableName() string { return "treasury" }
