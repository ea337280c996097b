package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/sethvargo/go-retry"
)

// TxFn is a function that executes within a database transaction.
// It receives the context and a transaction, and returns an error if the operation fails.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RetryPolicy controls how RunInTransactionWithRetry re-runs a transaction
// that failed with a retryable error.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first one.
	MaxRetries uint64
	// BaseBackoff is the first delay; each further delay doubles.
	BaseBackoff time.Duration
}

// DefaultRetryPolicy is used when a caller supplies a zero policy.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, BaseBackoff: 20 * time.Millisecond}

// RunInTransaction executes the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
// The function handles rollbacks in case of panic and logs appropriate information.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			txErr := tx.Rollback()
			if txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	err = fn(ctx, tx)
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	err = tx.Commit()
	if err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("transaction committed successfully")
	return nil
}

// RunInTransactionWithRetry runs fn in a fresh transaction and, when it fails
// with an error for which IsRetryable is true, rolls back and runs it again
// with exponential backoff. fn must be safe to run more than once: all state
// it builds has to be derived from what it reads inside the transaction.
// Non-retryable errors and context cancellation end the loop immediately.
func RunInTransactionWithRetry(ctx context.Context, db *sql.DB, policy RetryPolicy, fn TxFn) error {
	if policy.BaseBackoff <= 0 {
		policy = DefaultRetryPolicy
	}

	log := logger.FromContext(ctx)
	backoff := retry.WithMaxRetries(policy.MaxRetries, retry.NewExponential(policy.BaseBackoff))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := RunInTransaction(ctx, db, fn)
		if err != nil && IsRetryable(err) {
			log.Warn("retrying transaction after conflict",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return err
	})
}
