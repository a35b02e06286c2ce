package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quka-ai/quka-iot/pkg/types"
)

func ErrorSqlBuild(err error) error {
	return fmt.Errorf("failed to build sql query, %w", err)
}

// SqlProviderAchieve 由 pkg/sqlstore.SqlProvider 实现
type SqlProviderAchieve interface {
	GetMaster() *sqlx.DB
	GetReplica() *sqlx.DB
	GetTxFromCtx(ctx context.Context) *sqlx.Tx
}

// CommonFields 是 channel / entry / user 三张表 store 的公共部分
type CommonFields struct {
	table      string
	provider   SqlProviderAchieve
	allColumns []string
}

func (c *CommonFields) GetTable() string {
	return c.table
}

func (c *CommonFields) SetTable(table types.TableName) {
	c.table = table.Name()
}

func (c *CommonFields) SetAllColumns(str ...string) {
	c.allColumns = str
}

func (c *CommonFields) GetAllColumns() []string {
	return c.allColumns
}

func (c *CommonFields) SetProvider(p SqlProviderAchieve) {
	c.provider = p
}

type Master interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type Replica interface {
	Get(dest any, query string, args ...any) error
	Select(dest any, query string, args ...any) error
}

// GetMaster 优先使用 ctx 中携带的事务
func (c *CommonFields) GetMaster(ctx context.Context) Master {
	if tx := c.txFrom(ctx); tx != nil {
		return tx
	}
	return c.bind(ctx, c.provider.GetMaster())
}

func (c *CommonFields) GetReplica(ctx context.Context) Replica {
	if tx := c.txFrom(ctx); tx != nil {
		return tx
	}
	return c.bind(ctx, c.provider.GetReplica())
}

func (c *CommonFields) txFrom(ctx context.Context) *sqlx.Tx {
	if ctx == nil {
		return nil
	}
	return c.provider.GetTxFromCtx(ctx)
}

func (c *CommonFields) bind(ctx context.Context, db *sqlx.DB) *dbWithContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &dbWithContext{db: db, ctx: ctx}
}

type dbWithContext struct {
	db  *sqlx.DB
	ctx context.Context
}

func (d *dbWithContext) Get(dest any, query string, args ...any) error {
	return d.db.GetContext(d.ctx, dest, query, args...)
}

func (d *dbWithContext) Select(dest any, query string, args ...any) error {
	return d.db.SelectContext(d.ctx, dest, query, args...)
}

func (d *dbWithContext) Exec(query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(d.ctx, query, args...)
}
