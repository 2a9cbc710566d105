package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// WithTx returns a copy of c bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.context(), Tx: tx}
}

func (c Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Run executes fn inside a transaction. When dbc already carries one it is
// reused, so nested calls join the outermost transaction; otherwise a new
// transaction is opened on db and committed when fn returns nil.
func Run(db *gorm.DB, dbc Context, fn func(inner Context) error) error {
	if dbc.Tx != nil {
		return fn(Context{Ctx: dbc.context(), Tx: dbc.Tx.WithContext(dbc.context())})
	}
	ctx := dbc.context()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Context{Ctx: ctx, Tx: tx})
	})
}

// Conn returns the handle reads should use: the transaction when present.
func Conn(db *gorm.DB, dbc Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.context())
	}
	return db.WithContext(dbc.context())
}
