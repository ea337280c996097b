package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFromRequest(t *testing.T) {
	userID := uuid.New()

	_, ok := actorFromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	actor, ok := actorFromRequest(asUser(httptest.NewRequest(http.MethodGet, "/", nil), userID, domain.RoleCustomer))
	require.True(t, ok)
	assert.Equal(t, service.Actor{UserID: userID, IsAdmin: false}, actor)

	actor, ok = actorFromRequest(asUser(httptest.NewRequest(http.MethodGet, "/", nil), userID, domain.RoleAdmin))
	require.True(t, ok)
	assert.True(t, actor.IsAdmin)
}

func TestGetPathUUID(t *testing.T) {
	validUUID := uuid.New()

	tests := []struct {
		name        string
		params      map[string]string
		expectError error
		expectedID  uuid.UUID
	}{
		{
			name:       "valid UUID parameter",
			params:     map[string]string{"id": validUUID.String()},
			expectedID: validUUID,
		},
		{
			name:        "missing parameter",
			params:      map[string]string{},
			expectError: domain.ErrValidation,
		},
		{
			name:        "invalid UUID format",
			params:      map[string]string{"id": "invalid-uuid"},
			expectError: domain.ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withPathParams(httptest.NewRequest(http.MethodGet, "/", nil), tt.params)

			id, err := getPathUUID(req, "id")

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Equal(t, uuid.Nil, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}

func TestHandleActorAndPathUUID(t *testing.T) {
	userID := uuid.New()
	lineID := uuid.New()

	t.Run("success", func(t *testing.T) {
		req := withPathParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": lineID.String()})
		req = asUser(req, userID, domain.RoleCustomer)
		rr := httptest.NewRecorder()

		actor, id, ok := handleActorAndPathUUID(rr, req, "id", nil)

		require.True(t, ok)
		assert.Equal(t, userID, actor.UserID)
		assert.Equal(t, lineID, id)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Zero(t, rr.Body.Len())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := withPathParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": lineID.String()})
		rr := httptest.NewRecorder()

		_, _, ok := handleActorAndPathUUID(rr, req, "id", nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bad path parameter", func(t *testing.T) {
		req := withPathParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "42"})
		req = asUser(req, userID, domain.RoleCustomer)
		rr := httptest.NewRecorder()

		_, _, ok := handleActorAndPathUUID(rr, req, "id", nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid id has invalid format")
	})
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{query: "", wantLimit: DefaultPageLimit, wantOffset: 0},
		{query: "?limit=5&offset=10", wantLimit: 5, wantOffset: 10},
		{query: "?limit=1000", wantLimit: MaxPageLimit, wantOffset: 0},
		{query: "?limit=0", wantErr: true},
		{query: "?limit=abc", wantErr: true},
		{query: "?offset=-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			limit, offset, err := parsePagination(httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
