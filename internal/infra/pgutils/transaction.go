package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// WithTx runs fn inside a transaction at the default isolation level. The
// transaction commits when fn returns nil and rolls back on an error or panic.
// Every returned error has been through Classify.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(fmt.Errorf("begin tx: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	err = fn(tx)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}

		return Classify(err)
	}

	err = tx.Commit()
	if err != nil {
		return Classify(fmt.Errorf("commit tx: %w", err))
	}

	return nil
}
