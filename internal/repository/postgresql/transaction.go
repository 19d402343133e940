package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type txContextKey struct{}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx, ok
}

// GetQuerier returns the transaction carried by ctx, or the pool when there is none.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}

type txManager struct {
	db *database.DB
}

// NewTxManager returns a database.Transactor backed by db.
func NewTxManager(db *database.DB) database.Transactor {
	return &txManager{db: db}
}

// WithinTransaction implements database.Transactor.
// A call made while a transaction is already in ctx joins it.
func (m *txManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	return complete(ctx, tx, fn)
}

// WithinSavepoint implements database.Transactor.
// Inside a transaction it opens a savepoint, so a failing fn only undoes its own writes.
func (m *txManager) WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	parent, ok := txFromContext(ctx)
	if !ok {
		return m.WithinTransaction(ctx, fn)
	}

	nested, err := parent.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}
	return complete(ctx, nested, fn)
}

// complete runs fn with tx in its context and commits, or rolls back on error or panic.
func complete(ctx context.Context, tx pgx.Tx, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("rollback after panic failed", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
