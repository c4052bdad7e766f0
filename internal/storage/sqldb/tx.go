package sqldb

import (
	"context"
	"database/sql"
	"fmt"
)

// LockFunc runs first inside a transaction to take any per-user lock.
type LockFunc func(ctx context.Context, tx *sql.Tx) error

// InTx runs fn against q bound to a new transaction on db. fn's error, a
// panic or a lock failure rolls the transaction back.
func InTx(ctx context.Context, db *sql.DB, q *Queries, lock LockFunc, fn func(*Queries) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if lock != nil {
		if err := lock(ctx, tx); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := fn(q.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
