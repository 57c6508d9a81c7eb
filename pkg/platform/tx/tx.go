// Package tx carries SQL transactions through context and runs atomic units
// of work. Stores that receive a context with a transaction attached execute
// against it; otherwise they fall back to their own connection.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner executes a function as one atomic unit. The SQL implementation
// wraps it in a database transaction; the noop implementation just calls it,
// which is enough when all stores share process memory.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner runs units of work inside database/sql transactions.
type SQLRunner struct {
	db *sql.DB
}

// NewSQL creates a Runner backed by db.
func NewSQL(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

// RunInTx begins a transaction, attaches it to the context, and commits if
// fn succeeds. Any error rolls the whole unit back.
func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(WithTx(ctx, dbTx)); err != nil {
		_ = dbTx.Rollback()
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NoopRunner satisfies Runner without transactional semantics. Used with
// in-memory stores, where per-entity locking in the service provides the
// serialization instead.
type NoopRunner struct{}

// NewNoop creates a Runner that calls fn directly.
func NewNoop() NoopRunner { return NoopRunner{} }

func (NoopRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
