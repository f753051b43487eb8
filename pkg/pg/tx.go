package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise. Rollback after a successful commit
// is a no-op, so the deferred rollback is always safe.
//
// It exists so multi-store writes (cabinet + user + subscription at
// registration, plan/period/status on upgrade) change together or not at all.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TxRunner abstracts WithTx so services can take either a real pool or an
// in-memory stand-in in tests.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// PoolRunner is the TxRunner backed by a pgx pool.
type PoolRunner struct {
	Pool *pgxpool.Pool
}

func (r PoolRunner) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return WithTx(ctx, r.Pool, fn)
}

// NopRunner calls fn with a nil transaction. For tests whose stores ignore
// the transaction handle.
type NopRunner struct{}

func (NopRunner) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}
