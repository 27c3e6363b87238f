// Package memory 提供进程内仓储实现，用于 dev 运行模式与测试。
// 所有读写都返回深拷贝，未保存的聚合修改不会泄漏回存储，
// 从而与数据库实现一样满足失败即回滚的语义。
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
)

// Store 进程内存储，聚合全部仓储实现
type Store struct {
	mu       sync.RWMutex
	sales    map[string]*domain.Sale
	ledgers  map[string]*domain.TokenLedger
	treasury *domain.Treasury
}

// NewStore 创建空存储
func NewStore() *Store {
	return &Store{
		sales:   make(map[string]*domain.Sale),
		ledgers: make(map[string]*domain.TokenLedger),
	}
}

// SaleRepository 返回发售记录仓储视图
func (s *Store) SaleRepository() domain.SaleRepository { return (*saleRepository)(s) }

// LedgerRepository 返回账本仓储视图
func (s *Store) LedgerRepository() domain.LedgerRepository { return (*ledgerRepository)(s) }

// TreasuryRepository 返回金库仓储视图
func (s *Store) TreasuryRepository() domain.TreasuryRepository { return (*treasuryRepository)(s) }

// UnitOfWork 返回工作单元。进程内存储没有真正的事务，
// 依赖应用层先校验后保存的顺序保证失败时状态不变。
func (s *Store) UnitOfWork() domain.UnitOfWork { return noopUnitOfWork{} }

type noopUnitOfWork struct{}

func (noopUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type saleRepository Store

func (r *saleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[sale.TokenID] = copySale(sale)
	return nil
}

func (r *saleRepository) GetByTokenID(ctx context.Context, tokenID string) (*domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sale, ok := r.sales[tokenID]
	if !ok {
		return nil, nil
	}
	return copySale(sale), nil
}

func (r *saleRepository) GetByIndex(ctx context.Context, index int64) (*domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sale := range r.sales {
		if sale.Index == index {
			return copySale(sale), nil
		}
	}
	return nil, nil
}

func (r *saleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Sale, 0, len(r.sales))
	for _, sale := range r.sales {
		all = append(all, sale)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	page := make([]*domain.Sale, 0, end-offset)
	for _, sale := range all[offset:end] {
		page = append(page, copySale(sale))
	}
	return page, nil
}

func (r *saleRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.sales)), nil
}

type ledgerRepository Store

func (r *ledgerRepository) Save(ctx context.Context, ledger *domain.TokenLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[ledger.TokenID] = copyLedger(ledger)
	return nil
}

func (r *ledgerRepository) Get(ctx context.Context, tokenID string) (*domain.TokenLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ledger, ok := r.ledgers[tokenID]
	if !ok {
		return nil, nil
	}
	return copyLedger(ledger), nil
}

type treasuryRepository Store

func (r *treasuryRepository) Get(ctx context.Context) (*domain.Treasury, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.treasury == nil {
		return nil, nil
	}
	copied := *r.treasury
	return &copied, nil
}

func (r *treasuryRepository) Save(ctx context.Context, treasury *domain.Treasury) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *treasury
	r.treasury = &copied
	return nil
}

func copySale(sale *domain.Sale) *domain.Sale {
	copied := *sale
	return &copied
}

func copyLedger(ledger *domain.TokenLedger) *domain.TokenLedger {
	copied := *ledger
	copied.Balances = make(map[string]decimal.Decimal, len(ledger.Balances))
	for holder, balance := range ledger.Balances {
		copied.Balances[holder] = balance
	}
	return &copied
}
