package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/phrazzld/storefront-api/internal/service/auth"
	"github.com/phrazzld/storefront-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	stock := &domain.InsufficientStockError{ProductName: "Widget", Available: 5, Requested: 14}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"nil error", nil, http.StatusInternalServerError},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"wrapped expired token", fmt.Errorf("authenticate: %w", auth.ErrExpiredToken), http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound},
		{"product not found", service.ErrProductNotFound, http.StatusNotFound},
		{"basket not found", service.ErrBasketNotFound, http.StatusNotFound},
		{"basket line not found", service.ErrBasketLineNotFound, http.StatusNotFound},
		{"order not found", service.ErrOrderNotFound, http.StatusNotFound},
		{"email exists", service.ErrEmailExists, http.StatusConflict},
		{"validation failed", &service.ValidationFailedError{Violations: []string{"Quantity must be greater than 0"}}, http.StatusBadRequest},
		{"field validation", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), http.StatusBadRequest},
		{"insufficient stock", stock, http.StatusBadRequest},
		{"no change", service.ErrNoChange, http.StatusBadRequest},
		{"persistence", service.NewPersistenceError("upsert_basket_line", errors.New("connection reset")), http.StatusInternalServerError},
		{"persistence wrapping transient conflict", service.NewPersistenceError("upsert_basket_line", store.ErrTransientConflict), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"expired token", auth.ErrExpiredToken, "Token expired"},
		{"invalid token", auth.ErrInvalidToken, "Invalid token"},
		{"refresh token", auth.ErrExpiredRefreshToken, "Invalid refresh token"},
		{"forbidden", service.ErrForbidden, "You are not allowed to access this resource"},
		{"basket not found", service.ErrBasketNotFound, "Basket not found"},
		{"line not found", service.ErrBasketLineNotFound, "Basket line not found"},
		{"email exists", service.ErrEmailExists, "Email already exists"},
		{
			"insufficient stock",
			&domain.InsufficientStockError{ProductName: "Widget", Available: 5, Requested: 14},
			`insufficient stock for "Widget": 5 available, 14 requested`,
		},
		{
			"validation failed",
			&service.ValidationFailedError{Violations: []string{"Quantity must be greater than 0"}},
			"validation failed: Quantity must be greater than 0",
		},
		{"field validation", domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation), "Invalid limit must be a positive integer"},
		{"no change", service.ErrNoChange, "Quantity is unchanged"},
		{
			"persistence hides cause",
			service.NewPersistenceError("get_basket", errors.New("pq: password authentication failed")),
			"An unexpected error occurred",
		},
		{"unknown", errors.New("SELECT * FROM users"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.Validate.Struct(UpsertBasketLineRequest{ProductID: "not-a-uuid", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, "Invalid product_id: invalid identifier", SanitizeValidationError(err))

	err = shared.Validate.Struct(UpsertBasketLineRequest{ProductID: "6f1c2a54-3d1e-4c8e-9a55-0d2b8e1f7a10"})
	require.Error(t, err)
	assert.Equal(t, "Invalid quantity: too small", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "product_id", toSnakeCase("ProductID"))
	assert.Equal(t, "stock_quantity", toSnakeCase("StockQuantity"))
	assert.Equal(t, "email", toSnakeCase("Email"))
}
