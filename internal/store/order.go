package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
)

// OrderStore defines the interface for order persistence.
type OrderStore interface {
	// Create inserts the order and all of its lines.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its lines.
	// Returns ErrOrderNotFound if the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// ListByUser returns a user's orders, newest first, with their lines.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error)

	// WithTx returns a new OrderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) OrderStore
}
