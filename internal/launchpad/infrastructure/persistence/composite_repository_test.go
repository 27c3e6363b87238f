package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
	"github.com/wyfcoding/launchpad/internal/launchpad/infrastructure/persistence/memory"
)

// fakeSaleCache in-process domain.SaleCache that counts hits against it.
type fakeSaleCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Sale
	gets    int
}

func newFakeSaleCache() *fakeSaleCache {
	return &fakeSaleCache{entries: make(map[string]*domain.Sale)}
}

func (c *fakeSaleCache) Save(ctx context.Context, sale *domain.Sale) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *sale
	c.entries[sale.TokenID] = &copied
	return nil
}

func (c *fakeSaleCache) Get(ctx context.Context, tokenID string) (*domain.Sale, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	sale, ok := c.entries[tokenID]
	if !ok {
		return nil, nil
	}
	copied := *sale
	return &copied, nil
}

func (c *fakeSaleCache) Delete(ctx context.Context, tokenID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tokenID)
	return nil
}

func (c *fakeSaleCache) cached(tokenID string) *domain.Sale {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[tokenID]
}

// TestCompositeGetBackfillsCache checks a cache miss falls through to the
// primary store and backfills the cache for the next read.
func TestCompositeGetBackfillsCache(t *testing.T) {
	store := memory.NewStore()
	cache := newFakeSaleCache()
	repo := NewCompositeSaleRepository(store.SaleRepository(), cache)
	ctx := context.Background()

	sale := domain.NewSale("tok-1", "alice", "My Token", "MTK", 0)
	require.NoError(t, store.SaleRepository().Save(ctx, sale))

	got, err := repo.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "MTK", got.Symbol)

	backfilled := cache.cached("tok-1")
	require.NotNil(t, backfilled)
	assert.Equal(t, "tok-1", backfilled.TokenID)
}

// TestCompositeGetPrefersCache checks a cached entry is served without
// touching the primary store.
func TestCompositeGetPrefersCache(t *testing.T) {
	store := memory.NewStore()
	cache := newFakeSaleCache()
	repo := NewCompositeSaleRepository(store.SaleRepository(), cache)
	ctx := context.Background()

	sale := domain.NewSale("tok-1", "alice", "My Token", "MTK", 0)
	require.NoError(t, cache.Save(ctx, sale))

	// Deliberately absent from the primary store.
	got, err := repo.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Creator)
}

// TestCompositeGetMiss checks both layers missing yields (nil, nil).
func TestCompositeGetMiss(t *testing.T) {
	store := memory.NewStore()
	cache := newFakeSaleCache()
	repo := NewCompositeSaleRepository(store.SaleRepository(), cache)

	got, err := repo.GetByTokenID(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, cache.gets)
}

// TestCompositeSaveWritesThrough checks Save lands in the primary store and
// overwrites the cached entry, so a reader behind the cache sees the update.
func TestCompositeSaveWritesThrough(t *testing.T) {
	store := memory.NewStore()
	cache := newFakeSaleCache()
	repo := NewCompositeSaleRepository(store.SaleRepository(), cache)
	ctx := context.Background()

	sale := domain.NewSale("tok-1", "alice", "My Token", "MTK", 0)
	require.NoError(t, repo.Save(ctx, sale))

	// Simulate the closing write.
	sale.IsOpen = false
	require.NoError(t, repo.Save(ctx, sale))

	fromPrimary, err := store.SaleRepository().GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, fromPrimary)
	assert.False(t, fromPrimary.IsOpen)

	fromCache := cache.cached("tok-1")
	require.NotNil(t, fromCache)
	assert.False(t, fromCache.IsOpen, "cached entry must not report a closed sale as open")
}

// TestCompositeListAndCountUsePrimary checks ordered queries bypass the cache.
func TestCompositeListAndCountUsePrimary(t *testing.T) {
	store := memory.NewStore()
	cache := newFakeSaleCache()
	repo := NewCompositeSaleRepository(store.SaleRepository(), cache)
	ctx := context.Background()

	require.NoError(t, store.SaleRepository().Save(ctx, domain.NewSale("tok-1", "alice", "A", "AAA", 0)))
	require.NoError(t, store.SaleRepository().Save(ctx, domain.NewSale("tok-2", "bob", "B", "BBB", 1)))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	sales, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, int64(0), sales[0].Index)

	byIndex, err := repo.GetByIndex(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, byIndex)
	assert.Equal(t, "tok-2", byIndex.TokenID)

	assert.Equal(t, 0, cache.gets, "ordered queries must not consult the cache")
}
