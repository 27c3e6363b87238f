package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
)

// treasuryRepository 金库仓储实现，表中只维护一行
type treasuryRepository struct {
	db *gorm.DB
}

// NewTreasuryRepository 创建金库仓储
func NewTreasuryRepository(db *gorm.DB) domain.TreasuryRepository {
	return &treasuryRepository{db: db}
}

// Get 获取金库记录，未初始化返回 (nil, nil)
func (r *treasuryRepository) Get(ctx context.Context) (*domain.Treasury, error) {
	db := dbFromContext(ctx, r.db)

	var model TreasuryModel
	if err := db.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Treasury{
		Owner:     model.Owner,
		Balance:   model.Balance,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Save 保存金库记录，owner 冲突时更新余额
func (r *treasuryRepository) Save(ctx context.Context, treasury *domain.Treasury) error {
	db := dbFromContext(ctx, r.db)

	model := &TreasuryModel{
		Owner:   treasury.Owner,
		Balance: treasury.Balance,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(model).Error
}
