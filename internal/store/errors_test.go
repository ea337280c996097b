package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
		retryable bool
	}{
		{name: "nil error", err: nil},
		{name: "generic error", err: errors.New("some error")},
		{name: "ErrNotFound", err: ErrNotFound, notFound: true},
		{name: "wrapped ErrUserNotFound", err: fmt.Errorf("get user: %w", ErrUserNotFound), notFound: true},
		{name: "ErrProductNotFound", err: ErrProductNotFound, notFound: true},
		{name: "ErrBasketNotFound", err: ErrBasketNotFound, notFound: true},
		{name: "ErrBasketLineNotFound", err: ErrBasketLineNotFound, notFound: true},
		{name: "ErrOrderNotFound", err: ErrOrderNotFound, notFound: true},
		{name: "ErrEmailExists", err: ErrEmailExists, duplicate: true},
		{name: "ErrBasketExists", err: fmt.Errorf("insert: %w", ErrBasketExists), duplicate: true, retryable: true},
		{name: "ErrBasketLineExists", err: ErrBasketLineExists, duplicate: true, retryable: true},
		{name: "ErrTransientConflict", err: ErrTransientConflict, retryable: true},
		{name: "ErrInvalidEntity", err: ErrInvalidEntity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, IsDuplicateError(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()
	inner := errors.New("connection reset")

	err := NewStoreError("basket", "update", "failed to update totals", inner)
	assert.Equal(t, "update operation on basket failed: failed to update totals: connection reset", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := NewStoreError("order", "create", "no rows", nil)
	assert.Equal(t, "create operation on order failed: no rows", bare.Error())
}
