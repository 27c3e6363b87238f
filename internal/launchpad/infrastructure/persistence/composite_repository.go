// Package persistence 组合主存储与缓存，读优先走缓存，写以主存储为准
package persistence

import (
	"context"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
)

type compositeSaleRepository struct {
	primary domain.SaleRepository
	cache   domain.SaleCache
}

// NewCompositeSaleRepository 创建带读缓存的发售记录仓储
func NewCompositeSaleRepository(primary domain.SaleRepository, cache domain.SaleCache) domain.SaleRepository {
	return &compositeSaleRepository{
		primary: primary,
		cache:   cache,
	}
}

func (r *compositeSaleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	if err := r.primary.Save(ctx, sale); err != nil {
		return err
	}
	// 缓存写入失败不影响主库
	_ = r.cache.Save(ctx, sale)
	return nil
}

func (r *compositeSaleRepository) GetByTokenID(ctx context.Context, tokenID string) (*domain.Sale, error) {
	if sale, err := r.cache.Get(ctx, tokenID); err == nil && sale != nil {
		return sale, nil
	}

	sale, err := r.primary.GetByTokenID(ctx, tokenID)
	if err != nil || sale == nil {
		return sale, err
	}

	_ = r.cache.Save(ctx, sale)
	return sale, nil
}

// GetByIndex 顺序查询不走缓存
func (r *compositeSaleRepository) GetByIndex(ctx context.Context, index int64) (*domain.Sale, error) {
	return r.primary.GetByIndex(ctx, index)
}

// List 列表查询不走缓存
func (r *compositeSaleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	return r.primary.List(ctx, limit, offset)
}

func (r *compositeSaleRepository) Count(ctx context.Context) (int64, error) {
	return r.primary.Count(ctx)
}
