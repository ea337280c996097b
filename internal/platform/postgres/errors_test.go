package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/storefront-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"email unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersEmailConstraint}, store.ErrEmailExists},
		{"basket per user", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: basketsUserConstraint}, store.ErrBasketExists},
		{"line per product", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: basketLinesProductConstraint}, store.ErrBasketLineExists},
		{"second primary image", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: productImagesPrimaryIndexName}, store.ErrInvalidEntity},
		{"other unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "something_else"}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode}, store.ErrInvalidEntity},
		{"stock check", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "products_stock_quantity_check"}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "name"}, store.ErrInvalidEntity},
		{"deadlock", &pgconn.PgError{Code: deadlockDetectedCode}, store.ErrTransientConflict},
		{"serialization", fmt.Errorf("exec: %w", &pgconn.PgError{Code: serializationFailureCode}), store.ErrTransientConflict},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mapped := MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.expected)
		})
	}

	assert.NoError(t, MapError(nil))

	plain := errors.New("connection refused")
	assert.Same(t, plain, MapError(plain))
}

func TestMapErrorRetryability(t *testing.T) {
	t.Parallel()
	assert.True(t, store.IsRetryable(MapError(&pgconn.PgError{Code: deadlockDetectedCode})))
	assert.True(t, store.IsRetryable(MapError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: basketsUserConstraint})))
	assert.False(t, store.IsRetryable(MapError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersEmailConstraint})))
}

func TestPgErrorPredicates(t *testing.T) {
	t.Parallel()
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
	assert.True(t, IsTransientConflict(&pgconn.PgError{Code: serializationFailureCode}))
	assert.False(t, IsTransientConflict(&pgconn.PgError{Code: checkViolationCode}))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()
	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrBasketNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrBasketNotFound), store.ErrBasketNotFound)
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)
	assert.Error(t, CheckRowsAffected(nil, nil))
	assert.Error(t, CheckRowsAffected(sqlmock.NewErrorResult(errors.New("boom")), nil))
}
