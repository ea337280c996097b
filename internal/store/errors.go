package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants wrap it (e.g., ErrUserNotFound, ErrBasketNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity violates a database
	// constraint (check, not-null or foreign key).
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransientConflict is returned when the database aborted a statement
	// because of a concurrent transaction (deadlock or serialization failure).
	// The whole transaction can be retried.
	ErrTransientConflict = errors.New("transient conflict with concurrent transaction")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrProductNotFound indicates that the requested product does not exist in the store.
	ErrProductNotFound = fmt.Errorf("%w: product", ErrNotFound)

	// ErrBasketNotFound indicates that the requested basket does not exist in the store.
	ErrBasketNotFound = fmt.Errorf("%w: basket", ErrNotFound)

	// ErrBasketLineNotFound indicates that the requested basket line does not exist in the store.
	ErrBasketLineNotFound = fmt.Errorf("%w: basket line", ErrNotFound)

	// ErrOrderNotFound indicates that the requested order does not exist in the store.
	ErrOrderNotFound = fmt.Errorf("%w: order", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrBasketExists indicates that the user already has a basket. It is raised
	// when two transactions race to create the first basket for one user.
	ErrBasketExists = fmt.Errorf("%w: basket", ErrDuplicate)

	// ErrBasketLineExists indicates that a basket already holds a line for the product.
	ErrBasketLineExists = fmt.Errorf("%w: basket line", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsRetryable reports whether a transaction that failed with err may succeed
// when run again from the start: a lost race to create a basket or line, or a
// deadlock/serialization abort.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientConflict) ||
		errors.Is(err, ErrBasketExists) ||
		errors.Is(err, ErrBasketLineExists)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "basket", "product")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
