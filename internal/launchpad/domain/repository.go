package domain

import "context"

// SaleRepository 发售记录仓储接口
// 查询未命中时返回 (nil, nil)，由调用方决定映射为 ErrSaleNotFound。
type SaleRepository interface {
	// Save 保存或更新发售记录
	Save(ctx context.Context, sale *Sale) error
	// GetByTokenID 按代币标识获取发售记录
	GetByTokenID(ctx context.Context, tokenID string) (*Sale, error)
	// GetByIndex 按创建顺序获取发售记录
	GetByIndex(ctx context.Context, index int64) (*Sale, error)
	// List 按创建顺序分页列出发售记录
	List(ctx context.Context, limit, offset int) ([]*Sale, error)
	// Count 返回已挂牌发售总数
	Count(ctx context.Context) (int64, error)
}

// LedgerRepository 代币账本仓储接口
type LedgerRepository interface {
	// Save 保存账本全部持仓
	Save(ctx context.Context, ledger *TokenLedger) error
	// Get 按代币标识获取账本，未命中返回 (nil, nil)
	Get(ctx context.Context, tokenID string) (*TokenLedger, error)
}

// TreasuryRepository 金库仓储接口，进程内单例记录
type TreasuryRepository interface {
	// Get 获取金库，未初始化时返回 (nil, nil)
	Get(ctx context.Context) (*Treasury, error)
	// Save 保存金库
	Save(ctx context.Context, treasury *Treasury) error
}

// SaleCache 发售记录读缓存端口。
// 写操作提交后由命令服务刷新，保证读路径不会长期观察到过期的生命周期状态。
type SaleCache interface {
	// Save 写入或覆盖缓存条目
	Save(ctx context.Context, sale *Sale) error
	// Get 读取缓存，未命中返回 (nil, nil)
	Get(ctx context.Context, tokenID string) (*Sale, error)
	// Delete 删除缓存条目
	Delete(ctx context.Context, tokenID string) error
}

// UnitOfWork 把一组仓储写入放进同一个事务边界，失败全部回滚
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, event any) error
}
