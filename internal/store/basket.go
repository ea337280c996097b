package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
)

// BasketStore defines the interface for basket and basket line persistence.
//
// Loaded baskets are complete aggregates: every line carries its Product
// (with the primary image only), and lines are ordered by product name and
// then line ID.
//
// The ForUpdate methods take an exclusive row lock on the basket that is held
// until the surrounding transaction ends; they must be called on a store bound
// with WithTx. Callers lock products before baskets.
type BasketStore interface {
	// GetByID retrieves a basket by ID.
	// Returns ErrBasketNotFound if the basket does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Basket, error)

	// GetByUserID retrieves the basket owned by userID.
	// Returns ErrBasketNotFound if the user has no basket.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Basket, error)

	// GetByUserIDForUpdate is GetByUserID with the basket row locked.
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Basket, error)

	// GetByLineIDForUpdate locks and retrieves the basket owning lineID.
	// Returns ErrBasketLineNotFound if no basket holds the line.
	GetByLineIDForUpdate(ctx context.Context, lineID uuid.UUID) (*domain.Basket, error)

	// FindLine retrieves a single line without locking.
	// Returns ErrBasketLineNotFound if the line does not exist.
	FindLine(ctx context.Context, lineID uuid.UUID) (*domain.BasketLine, error)

	// Create inserts a new, empty basket row.
	// Returns ErrBasketExists if the user already has a basket.
	Create(ctx context.Context, basket *domain.Basket) error

	// UpdateTotals persists the basket's TotalAmount and LastModified.
	// Returns ErrBasketNotFound if the basket does not exist.
	UpdateTotals(ctx context.Context, basket *domain.Basket) error

	// Delete removes a basket row. Its lines must already be gone.
	// Returns ErrBasketNotFound if the basket does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// InsertLine inserts a new line.
	// Returns ErrBasketLineExists if the basket already holds the product.
	InsertLine(ctx context.Context, line *domain.BasketLine) error

	// UpdateLineQuantity persists a line's Quantity and LastModified.
	// Returns ErrBasketLineNotFound if the line does not exist.
	UpdateLineQuantity(ctx context.Context, line *domain.BasketLine) error

	// DeleteLine removes a line.
	// Returns ErrBasketLineNotFound if the line does not exist.
	DeleteLine(ctx context.Context, lineID uuid.UUID) error

	// WithTx returns a new BasketStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) BasketStore
}
