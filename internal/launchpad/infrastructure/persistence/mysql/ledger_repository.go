package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
)

// ledgerRepository 代币账本仓储实现
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建代币账本仓储
func NewLedgerRepository(db *gorm.DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Save 保存账本与全部持仓行
func (r *ledgerRepository) Save(ctx context.Context, ledger *domain.TokenLedger) error {
	db := dbFromContext(ctx, r.db)

	ledgerModel := &LedgerModel{
		TokenID:     ledger.TokenID,
		TotalSupply: ledger.TotalSupply,
		Minted:      ledger.Minted,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"minted", "updated_at"}),
	}).Create(ledgerModel).Error; err != nil {
		return err
	}

	for holder, balance := range ledger.Balances {
		balanceModel := &BalanceModel{
			TokenID: ledger.TokenID,
			Holder:  holder,
			Balance: balance,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}, {Name: "holder"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
		}).Create(balanceModel).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get 按代币标识加载账本与全部持仓，未命中返回 (nil, nil)
func (r *ledgerRepository) Get(ctx context.Context, tokenID string) (*domain.TokenLedger, error) {
	db := dbFromContext(ctx, r.db)

	var ledgerModel LedgerModel
	if err := db.Where("token_id = ?", tokenID).First(&ledgerModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var balanceModels []BalanceModel
	if err := db.Where("token_id = ?", tokenID).Find(&balanceModels).Error; err != nil {
		return nil, err
	}

	ledger := &domain.TokenLedger{
		TokenID:     ledgerModel.TokenID,
		TotalSupply: ledgerModel.TotalSupply,
		Minted:      ledgerModel.Minted,
		Balances:    make(map[string]decimal.Decimal, len(balanceModels)),
		UpdatedAt:   ledgerModel.UpdatedAt,
	}
	for i := range balanceModels {
		ledger.Balances[balanceModels[i].Holder] = balanceModels[i].Balance
	}
	return ledger, nil
}
