package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRunInTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and returns function error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		expectedErr := errors.New("function failed")

		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return expectedErr
		})

		assert.Equal(t, expectedErr, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		db, mock := newMockDB(t)
		expectedErr := errors.New("begin transaction failed")
		mock.ExpectBegin().WillReturnError(expectedErr)

		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			t.Fatal("function must not run without a transaction")
			return nil
		})

		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		expectedErr := errors.New("commit failed")
		mock.ExpectCommit().WillReturnError(expectedErr)

		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return nil
		})

		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback error keeps original error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		functionErr := errors.New("function failed")
		mock.ExpectRollback().WillReturnError(errors.New("rollback failed"))

		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return functionErr
		})

		assert.Contains(t, err.Error(), "error rolling back transaction")
		assert.Contains(t, err.Error(), "rollback failed")
		assert.ErrorIs(t, err, functionErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				panic("test panic")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunInTransactionWithRetry(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, BaseBackoff: time.Millisecond}

	t.Run("retries conflicts until success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err := RunInTransactionWithRetry(context.Background(), db, policy, func(ctx context.Context, tx *sql.Tx) error {
			calls++
			switch calls {
			case 1:
				return fmt.Errorf("create basket: %w", ErrBasketExists)
			case 2:
				return ErrTransientConflict
			default:
				return nil
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after max retries with last error", func(t *testing.T) {
		db, mock := newMockDB(t)
		for i := 0; i < 3; i++ {
			mock.ExpectBegin()
			mock.ExpectRollback()
		}

		calls := 0
		err := RunInTransactionWithRetry(context.Background(), db, policy, func(ctx context.Context, tx *sql.Tx) error {
			calls++
			return ErrTransientConflict
		})

		assert.ErrorIs(t, err, ErrTransientConflict)
		assert.Equal(t, 3, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		calls := 0
		err := RunInTransactionWithRetry(context.Background(), db, policy, func(ctx context.Context, tx *sql.Tx) error {
			calls++
			return ErrProductNotFound
		})

		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero policy falls back to default", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := RunInTransactionWithRetry(context.Background(), db, RetryPolicy{}, func(ctx context.Context, tx *sql.Tx) error {
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
