// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInsufficientStock is returned when a product cannot satisfy a requested quantity.
	// The concrete error is always an *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned when a quantity is zero or negative where a
	// positive value is required.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a single field that failed validation.
// It always matches ErrValidation with errors.Is, in addition to its wrapped error.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientStockError reports that a product cannot cover a requested quantity.
// The message carries enough detail to be shown to the user.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

// Error implements the error interface.
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for %q: %d available, %d requested",
		e.ProductName,
		e.Available,
		e.Requested,
	)
}

// Is reports whether target is ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
