package database

import "context"

// Transactor runs work atomically. Repositories resolve the active transaction from ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error
}
