package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in a PersistenceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrForbidden indicates the actor is neither the owner of the resource nor an admin.
	// API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("actor is not allowed to access this resource")

	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrProductNotFound indicates the referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrBasketNotFound indicates the referenced basket does not exist.
	ErrBasketNotFound = errors.New("basket not found")

	// ErrBasketLineNotFound indicates the referenced basket line does not exist.
	ErrBasketLineNotFound = errors.New("basket line not found")

	// ErrOrderNotFound indicates the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNoChange indicates an update that would leave the resource as it is.
	// API layer should map this to HTTP 400 Bad Request.
	ErrNoChange = errors.New("update would not change anything")

	// ErrEmailExists indicates a registration with an email that is already taken.
	// API layer should map this to HTTP 409 Conflict.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed login. It never says which part was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPersistenceFailure is matched by every PersistenceError.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// ValidationFailedError carries every rule a command broke.
// It matches domain.ErrValidation so callers can treat it like a domain validation error.
type ValidationFailedError struct {
	Violations []string
}

// Error implements the error interface for ValidationFailedError.
func (e *ValidationFailedError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Is reports whether target is domain.ErrValidation.
func (e *ValidationFailedError) Is(target error) bool {
	return target == domain.ErrValidation
}

// PersistenceError wraps an unexpected store failure.
type PersistenceError struct {
	Operation string
	Err       error
}

// Error implements the error interface for PersistenceError.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

// Unwrap exposes both ErrPersistenceFailure and the underlying error.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistenceFailure, e.Err}
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(operation string, err error) *PersistenceError {
	return &PersistenceError{Operation: operation, Err: err}
}

// ServiceError is returned when a service is built with missing dependencies.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func missingDependency(service, name string) error {
	return &ServiceError{Service: service, Operation: "create_service", Message: name + " cannot be nil"}
}

// storeErrorMapping pairs store sentinels with the service errors they become.
var storeErrorMapping = []struct {
	storeErr   error
	serviceErr error
}{
	{store.ErrUserNotFound, ErrUserNotFound},
	{store.ErrProductNotFound, ErrProductNotFound},
	{store.ErrBasketNotFound, ErrBasketNotFound},
	{store.ErrBasketLineNotFound, ErrBasketLineNotFound},
	{store.ErrOrderNotFound, ErrOrderNotFound},
	{store.ErrEmailExists, ErrEmailExists},
}

// translateError turns an error raised inside a service operation into the
// service taxonomy. Service errors and domain errors pass through unchanged;
// known store sentinels become their service counterparts; anything else is
// a PersistenceError.
func translateError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var validationErr *ValidationFailedError
	var persistenceErr *PersistenceError
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNoChange),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrBasketNotFound),
		errors.Is(err, ErrBasketLineNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrEmailExists),
		errors.As(err, &validationErr),
		errors.As(err, &persistenceErr):
		return err
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrValidation):
		return err
	}

	for _, m := range storeErrorMapping {
		if errors.Is(err, m.storeErr) {
			return m.serviceErr
		}
	}

	return NewPersistenceError(operation, err)
}

// logAndTranslate translates err and logs it at a level matching its kind:
// persistence failures are errors, everything else is an expected outcome.
func logAndTranslate(log *slog.Logger, operation string, err error, attrs ...any) error {
	mapped := translateError(operation, err)

	var persistenceErr *PersistenceError
	if errors.As(mapped, &persistenceErr) {
		log.Error(operation+" failed", append(attrs, slog.String("error", err.Error()))...)
	} else {
		log.Debug(operation+" rejected", append(attrs, slog.String("error", mapped.Error()))...)
	}
	return mapped
}

// invalidInput marks an error returned by a domain constructor as a
// validation failure so it is reported to the caller as bad input.
func invalidInput(err error) error {
	if err == nil || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return domain.NewValidationError("", err.Error(), err)
}
