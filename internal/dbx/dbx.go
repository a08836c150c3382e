// Package dbx provides tiny DB abstractions shared by repositories: a minimal
// interface (DBTX) implemented by both *sql.DB and *sql.Tx, and a helper to
// run functions inside a transaction carried through the context.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repositories. Both *sql.DB
// and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// WithTx begins a transaction, runs fn with a context carrying the
// transactional handle, and then commits on success or rolls back on
// error/panic. Panics are rethrown. Repositories created against the pool
// pick up the transaction via FromContext, so the same store methods work in
// and out of a transaction.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	return err
}

// FromContext returns the transactional handle carried by ctx, or fallback
// when no transaction is active.
func FromContext(ctx context.Context, fallback DBTX) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return fallback
}
