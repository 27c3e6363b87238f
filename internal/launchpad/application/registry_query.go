package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
)

// RegistryQueryService 注册表只读查询服务
type RegistryQueryService struct {
	sales   domain.SaleRepository
	ledgers domain.LedgerRepository
	owner   string
	fee     decimal.Decimal
}

// NewRegistryQueryService 创建查询服务
func NewRegistryQueryService(
	sales domain.SaleRepository,
	ledgers domain.LedgerRepository,
	owner string,
	fee decimal.Decimal,
) *RegistryQueryService {
	return &RegistryQueryService{
		sales:   sales,
		ledgers: ledgers,
		owner:   owner,
		fee:     fee,
	}
}

// Fee 返回挂牌费
func (s *RegistryQueryService) Fee() decimal.Decimal { return s.fee }

// Owner 返回平台方身份
func (s *RegistryQueryService) Owner() string { return s.owner }

// Registry 返回注册表概览（费率、关闭条件常量、已挂牌总数）
func (s *RegistryQueryService) Registry(ctx context.Context) (*RegistryDTO, error) {
	count, err := s.sales.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &RegistryDTO{
		Owner:       s.owner,
		Fee:         s.fee,
		Target:      domain.Target,
		TokenLimit:  domain.TokenLimit,
		TotalSupply: domain.TotalSupply,
		TotalTokens: count,
	}, nil
}

// TotalTokens 返回已挂牌发售总数
func (s *RegistryQueryService) TotalTokens(ctx context.Context) (int64, error) {
	return s.sales.Count(ctx)
}

// GetTokenSale 按创建顺序获取发售记录
func (s *RegistryQueryService) GetTokenSale(ctx context.Context, index int64) (*SaleDTO, error) {
	sale, err := s.sales.GetByIndex(ctx, index)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	return toSaleDTO(sale), nil
}

// TokenToSale 按代币标识获取发售记录
func (s *RegistryQueryService) TokenToSale(ctx context.Context, tokenID string) (*SaleDTO, error) {
	sale, err := s.sales.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	return toSaleDTO(sale), nil
}

// ListSales 按创建顺序分页列出发售记录
func (s *RegistryQueryService) ListSales(ctx context.Context, limit, offset int) ([]*SaleDTO, error) {
	sales, err := s.sales.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	dtos := make([]*SaleDTO, 0, len(sales))
	for _, sale := range sales {
		dtos = append(dtos, toSaleDTO(sale))
	}
	return dtos, nil
}

// GetCost 返回已售 sold 时的边际单价
func (s *RegistryQueryService) GetCost(sold decimal.Decimal) decimal.Decimal {
	return domain.Cost(sold)
}

// Quote 返回购买 amount 个单位的报价，按当前已售数量的边际价格整批计价
func (s *RegistryQueryService) Quote(ctx context.Context, tokenID string, amount decimal.Decimal) (*QuoteDTO, error) {
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	sale, err := s.sales.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	return &QuoteDTO{
		TokenID:   tokenID,
		UnitPrice: domain.Cost(sale.Sold),
		TotalCost: domain.BatchCost(sale.Sold, amount),
		Amount:    amount,
	}, nil
}

// BalanceOf 返回某持有者在某代币账本中的持仓
func (s *RegistryQueryService) BalanceOf(ctx context.Context, tokenID, holder string) (decimal.Decimal, error) {
	ledger, err := s.ledgers.Get(ctx, tokenID)
	if err != nil {
		return decimal.Zero, err
	}
	if ledger == nil {
		return decimal.Zero, domain.ErrSaleNotFound
	}
	return ledger.BalanceOf(holder), nil
}
