package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// withPathParams attaches chi URL parameters to r.
func withPathParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches an authenticated identity to r.
func asUser(r *http.Request, userID uuid.UUID, role domain.Role) *http.Request {
	return r.WithContext(shared.WithIdentity(r.Context(), userID, role))
}

func jsonRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func testProduct(name, price string, stock int) *domain.Product {
	return &domain.Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   name + " description",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		AddedDate:     testNow,
		LastModified:  testNow,
	}
}

func testBasket(userID uuid.UUID, product *domain.Product, quantity int) *domain.Basket {
	basketID := uuid.New()
	return &domain.Basket{
		ID:          basketID,
		UserID:      userID,
		TotalAmount: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Lines: []*domain.BasketLine{{
			ID:           uuid.New(),
			BasketID:     basketID,
			ProductID:    product.ID,
			Quantity:     quantity,
			LastModified: testNow,
			Product:      product,
		}},
		CreatedAt:    testNow,
		LastModified: testNow,
	}
}
