package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
)

// ProductStore defines the interface for product data persistence.
// Returned products carry their images, primary image first.
type ProductStore interface {
	// Create saves a new product together with its images.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by ID.
	// Returns ErrProductNotFound if the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// GetByIDForShare retrieves a product and holds a shared row lock on it
	// until the surrounding transaction ends, so its stock cannot change
	// underneath the caller. Must be called on a store bound with WithTx.
	// Returns ErrProductNotFound if the product does not exist.
	GetByIDForShare(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// List returns products ordered by name.
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)

	// WithTx returns a new ProductStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProductStore
}
