package services

import (
	"context"
	"fmt"

	"github.com/synapse-notes/backend/repositories"
)

// WithTransactionResult runs fn inside a transaction and returns its value.
// fn must use the ctx it is given so repositories join the transaction.
// The transaction commits when fn succeeds and rolls back on error or panic.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) (T, error)) (result T, err error) {
	tx, err := txMgr.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	result, err = fn(tx.Context(), tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return result, fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return result, err
	}

	if err := tx.Commit(); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}
