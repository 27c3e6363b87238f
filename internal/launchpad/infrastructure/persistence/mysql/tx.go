package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
	"github.com/wyfcoding/launchpad/pkg/db"
)

type txContextKey struct{}

// UnitOfWork 基于 GORM 事务的工作单元实现。
// 事务句柄通过 context 传递，各仓储在事务内自动使用它。
type UnitOfWork struct {
	db *db.DB
}

// NewUnitOfWork 创建工作单元
func NewUnitOfWork(database *db.DB) domain.UnitOfWork {
	return &UnitOfWork{db: database}
}

// WithinTx 在单个数据库事务内执行 fn，出错整体回滚
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFromContext 返回执行数据库句柄，事务内优先用事务句柄
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}
