package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
	"github.com/wyfcoding/launchpad/pkg/logger"
	"github.com/wyfcoding/launchpad/pkg/metrics"
)

// RegistryCommandService 注册表写操作服务。
// 全局互斥锁把 create/buy/deposit/withdraw 串行化为单一序列，
// 每个操作的仓储写入再包进同一个事务，保证中断时不落半截状态。
type RegistryCommandService struct {
	mu sync.Mutex

	sales     domain.SaleRepository
	ledgers   domain.LedgerRepository
	treasurys domain.TreasuryRepository
	uow       domain.UnitOfWork
	publisher domain.EventPublisher
	saleCache domain.SaleCache

	owner string
	fee   decimal.Decimal

	metrics *metrics.Metrics
}

// NewRegistryCommandService 创建写操作服务，saleCache 与 metrics 可为 nil
func NewRegistryCommandService(
	sales domain.SaleRepository,
	ledgers domain.LedgerRepository,
	treasurys domain.TreasuryRepository,
	uow domain.UnitOfWork,
	publisher domain.EventPublisher,
	saleCache domain.SaleCache,
	owner string,
	fee decimal.Decimal,
	m *metrics.Metrics,
) *RegistryCommandService {
	return &RegistryCommandService{
		sales:     sales,
		ledgers:   ledgers,
		treasurys: treasurys,
		uow:       uow,
		publisher: publisher,
		saleCache: saleCache,
		owner:     owner,
		fee:       fee,
		metrics:   m,
	}
}

// CreateSale 挂牌一个新发售：收取挂牌费、铸币到托管账户、登记发售记录
func (s *RegistryCommandService) CreateSale(ctx context.Context, cmd CreateSaleCommand) (*SaleDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(cmd.Name) == "" || strings.TrimSpace(cmd.Symbol) == "" {
		return nil, domain.ErrInvalidMetadata
	}
	if !cmd.Payment.Equal(s.fee) {
		return nil, domain.ErrWrongFee
	}

	tokenID := uuid.New().String()
	var sale *domain.Sale

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		index, err := s.sales.Count(ctx)
		if err != nil {
			return err
		}

		ledger := domain.NewTokenLedger(tokenID)
		if err := ledger.MintAllTo(domain.EscrowAccount); err != nil {
			return err
		}

		sale = domain.NewSale(tokenID, cmd.Caller, cmd.Name, cmd.Symbol, index)

		treasury, err := s.loadTreasury(ctx)
		if err != nil {
			return err
		}
		treasury.Credit(cmd.Payment)

		if err := s.ledgers.Save(ctx, ledger); err != nil {
			return err
		}
		if err := s.sales.Save(ctx, sale); err != nil {
			return err
		}
		return s.treasurys.Save(ctx, treasury)
	})
	if err != nil {
		return nil, err
	}

	s.refreshSaleCache(ctx, sale)
	s.publish(ctx, domain.EventTypeSaleCreated, tokenID, domain.SaleCreatedEvent{
		TokenID:   tokenID,
		Creator:   cmd.Caller,
		Name:      cmd.Name,
		Symbol:    cmd.Symbol,
		Index:     sale.Index,
		Fee:       cmd.Payment,
		Timestamp: time.Now(),
	})
	if s.metrics != nil {
		s.metrics.SalesCreatedTotal.Inc()
		s.metrics.SalesOpen.Inc()
	}

	logger.Info(ctx, "Sale created",
		"token_id", tokenID,
		"creator", cmd.Caller,
		"symbol", cmd.Symbol,
		"index", sale.Index,
	)
	return toSaleDTO(sale), nil
}

// Buy 购买代币：校验付款、托管转账、推进进度、评估关闭条件
func (s *RegistryCommandService) Buy(ctx context.Context, cmd BuyCommand) (*SaleDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		sale   *domain.Sale
		closed bool
	)

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.sales.GetByTokenID(ctx, cmd.TokenID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrSaleNotFound
		}

		if err := sale.ValidatePurchase(cmd.Amount, cmd.Payment); err != nil {
			return err
		}

		ledger, err := s.ledgers.Get(ctx, cmd.TokenID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return domain.ErrSaleNotFound
		}
		if err := ledger.Transfer(domain.EscrowAccount, cmd.Caller, cmd.Amount); err != nil {
			return err
		}

		closed = sale.ApplyPurchase(cmd.Amount, cmd.Payment)

		treasury, err := s.loadTreasury(ctx)
		if err != nil {
			return err
		}
		treasury.Credit(cmd.Payment)

		if err := s.ledgers.Save(ctx, ledger); err != nil {
			return err
		}
		if err := s.sales.Save(ctx, sale); err != nil {
			return err
		}
		return s.treasurys.Save(ctx, treasury)
	})
	if err != nil {
		return nil, err
	}

	s.refreshSaleCache(ctx, sale)
	s.publish(ctx, domain.EventTypeTokensPurchased, cmd.TokenID, domain.TokensPurchasedEvent{
		TokenID:   cmd.TokenID,
		Buyer:     cmd.Caller,
		Amount:    cmd.Amount,
		Payment:   cmd.Payment,
		Sold:      sale.Sold,
		Raised:    sale.Raised,
		Closed:    closed,
		Timestamp: time.Now(),
	})
	if s.metrics != nil {
		s.metrics.PurchasesTotal.Inc()
		if closed {
			s.metrics.SalesClosedTotal.Inc()
			s.metrics.SalesOpen.Dec()
		}
	}

	logger.Info(ctx, "Tokens purchased",
		"token_id", cmd.TokenID,
		"buyer", cmd.Caller,
		"amount", cmd.Amount,
		"payment", cmd.Payment,
		"closed", closed,
	)
	return toSaleDTO(sale), nil
}

// Deposit 发售关闭后，创建者领取托管账户中剩余的未售数量
func (s *RegistryCommandService) Deposit(ctx context.Context, cmd DepositCommand) (*SaleDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		sale      *domain.Sale
		remainder decimal.Decimal
	)

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.sales.GetByTokenID(ctx, cmd.TokenID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrSaleNotFound
		}

		if err := sale.MarkDeposited(cmd.Caller); err != nil {
			return err
		}

		ledger, err := s.ledgers.Get(ctx, cmd.TokenID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return domain.ErrSaleNotFound
		}

		remainder = ledger.BalanceOf(domain.EscrowAccount)
		if err := ledger.Transfer(domain.EscrowAccount, sale.Creator, remainder); err != nil {
			return err
		}

		if err := s.ledgers.Save(ctx, ledger); err != nil {
			return err
		}
		return s.sales.Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.refreshSaleCache(ctx, sale)
	s.publish(ctx, domain.EventTypeRemainderDeposited, cmd.TokenID, domain.RemainderDepositedEvent{
		TokenID:   cmd.TokenID,
		Creator:   sale.Creator,
		Amount:    remainder,
		Timestamp: time.Now(),
	})

	logger.Info(ctx, "Remainder deposited",
		"token_id", cmd.TokenID,
		"creator", sale.Creator,
		"amount", remainder,
	)
	return toSaleDTO(sale), nil
}

// Withdraw 平台方从金库提现
func (s *RegistryCommandService) Withdraw(ctx context.Context, cmd WithdrawCommand) (*WithdrawDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var remaining decimal.Decimal

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		treasury, err := s.loadTreasury(ctx)
		if err != nil {
			return err
		}
		if err := treasury.Withdraw(cmd.Caller, cmd.Amount); err != nil {
			return err
		}
		remaining = treasury.Balance
		return s.treasurys.Save(ctx, treasury)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventTypeTreasuryWithdrawn, s.owner, domain.TreasuryWithdrawnEvent{
		Owner:     s.owner,
		Amount:    cmd.Amount,
		Remaining: remaining,
		Timestamp: time.Now(),
	})
	if s.metrics != nil {
		s.metrics.WithdrawalsTotal.Inc()
	}

	logger.Info(ctx, "Treasury withdrawn",
		"owner", s.owner,
		"amount", cmd.Amount,
		"remaining", remaining,
	)
	return &WithdrawDTO{Amount: cmd.Amount, Remaining: remaining}, nil
}

// loadTreasury 获取金库，首次访问时惰性初始化
func (s *RegistryCommandService) loadTreasury(ctx context.Context) (*domain.Treasury, error) {
	treasury, err := s.treasurys.Get(ctx)
	if err != nil {
		return nil, err
	}
	if treasury == nil {
		treasury = domain.NewTreasury(s.owner)
	}
	return treasury, nil
}

// refreshSaleCache 提交后用最新状态覆盖读缓存。
// 覆盖失败时退化为删除条目，让下一次读取回源；两者都失败才会留下
// 最长一个 TTL 的过期窗口，记录告警。
func (s *RegistryCommandService) refreshSaleCache(ctx context.Context, sale *domain.Sale) {
	if s.saleCache == nil || sale == nil {
		return
	}
	if err := s.saleCache.Save(ctx, sale); err == nil {
		return
	}
	if err := s.saleCache.Delete(ctx, sale.TokenID); err != nil {
		logger.Warn(ctx, "Failed to refresh sale cache",
			"token_id", sale.TokenID,
			"error", err,
		)
	}
}

// publish 发布事件，发布失败只记录日志，不回滚已提交的业务状态
func (s *RegistryCommandService) publish(ctx context.Context, eventType, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, key, event); err != nil {
		logger.Error(ctx, "Failed to publish event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
	}
}
