package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
)

// SaleCache 按 token_id 缓存发售记录的读仓储
type SaleCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSaleCache 创建发售记录缓存
func NewSaleCache(client redis.UniversalClient) *SaleCache {
	return &SaleCache{
		client: client,
		prefix: "launchpad:sale:",
		ttl:    time.Hour,
	}
}

// Save 写入缓存
func (r *SaleCache) Save(ctx context.Context, sale *domain.Sale) error {
	if sale == nil {
		return nil
	}
	data, err := json.Marshal(sale)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(sale.TokenID), data, r.ttl).Err()
}

// Get 读取缓存，未命中返回 (nil, nil)
func (r *SaleCache) Get(ctx context.Context, tokenID string) (*domain.Sale, error) {
	data, err := r.client.Get(ctx, r.key(tokenID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sale domain.Sale
	if err := json.Unmarshal(data, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// Delete 删除缓存
func (r *SaleCache) Delete(ctx context.Context, tokenID string) error {
	return r.client.Del(ctx, r.key(tokenID)).Err()
}

func (r *SaleCache) key(tokenID string) string {
	return r.prefix + tokenID
}
