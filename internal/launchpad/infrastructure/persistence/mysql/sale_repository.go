package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
)

// saleRepository 发售记录仓储实现
type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建发售记录仓储
func NewSaleRepository(db *gorm.DB) domain.SaleRepository {
	return &saleRepository{db: db}
}

// Save 保存发售记录，token_id 冲突时更新进度字段
func (r *saleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	db := dbFromContext(ctx, r.db)
	model := toSaleModel(sale)

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sold", "raised", "is_open", "deposited", "updated_at"}),
	}).Create(model).Error
}

// GetByTokenID 按代币标识获取发售记录，未命中返回 (nil, nil)
func (r *saleRepository) GetByTokenID(ctx context.Context, tokenID string) (*domain.Sale, error) {
	db := dbFromContext(ctx, r.db)

	var model SaleModel
	if err := db.Where("token_id = ?", tokenID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toSale(&model), nil
}

// GetByIndex 按创建顺序获取发售记录，未命中返回 (nil, nil)
func (r *saleRepository) GetByIndex(ctx context.Context, index int64) (*domain.Sale, error) {
	db := dbFromContext(ctx, r.db)

	var model SaleModel
	if err := db.Where("sale_index = ?", index).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toSale(&model), nil
}

// List 按创建顺序分页列出发售记录
func (r *saleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	db := dbFromContext(ctx, r.db)

	var models []SaleModel
	if err := db.Order("sale_index ASC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, err
	}

	sales := make([]*domain.Sale, 0, len(models))
	for i := range models {
		sales = append(sales, toSale(&models[i]))
	}
	return sales, nil
}

// Count 返回已挂牌发售总数
func (r *saleRepository) Count(ctx context.Context) (int64, error) {
	db := dbFromContext(ctx, r.db)

	var count int64
	if err := db.Model(&SaleModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toSaleModel(sale *domain.Sale) *SaleModel {
	return &SaleModel{
		TokenID:   sale.TokenID,
		Creator:   sale.Creator,
		Name:      sale.Name,
		Symbol:    sale.Symbol,
		SaleIndex: sale.Index,
		Sold:      sale.Sold,
		Raised:    sale.Raised,
		IsOpen:    sale.IsOpen,
		Deposited: sale.Deposited,
	}
}

func toSale(model *SaleModel) *domain.Sale {
	return &domain.Sale{
		TokenID:   model.TokenID,
		Creator:   model.Creator,
		Name:      model.Name,
		Symbol:    model.Symbol,
		Index:     model.SaleIndex,
		Sold:      model.Sold,
		Raised:    model.Raised,
		IsOpen:    model.IsOpen,
		Deposited: model.Deposited,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
