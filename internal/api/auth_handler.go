package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/config"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/phrazzld/storefront-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	authConfig *config.AuthConfig
	timeFunc   func() time.Time
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	jwtService auth.JWTService,
	authConfig *config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		authConfig: authConfig,
		timeFunc:   time.Now,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// WithTimeFunc returns a copy of the handler using timeFunc to compute
// token expiry times.
func (h *AuthHandler) WithTimeFunc(timeFunc func() time.Time) *AuthHandler {
	clone := *h
	clone.timeFunc = timeFunc
	return &clone
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.respondWithTokens(w, r, http.StatusCreated, user.ID, user.Role)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		var opts []shared.ResponseOption
		if errors.Is(err, service.ErrInvalidCredentials) {
			opts = append(opts, shared.WithElevatedLogLevel())
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err, opts...)
		return
	}

	h.respondWithTokens(w, r, http.StatusOK, user.ID, user.Role)
}

// RefreshToken handles POST /api/auth/refresh. It exchanges a valid refresh
// token for a new access and refresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		status := http.StatusUnauthorized
		if MapErrorToStatusCode(err) != http.StatusUnauthorized {
			status = http.StatusInternalServerError
		}
		shared.RespondWithErrorAndLog(w, r, status, "Invalid refresh token", err, shared.WithElevatedLogLevel())
		return
	}

	// Role is read from the user record, not the old token.
	user, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid refresh token", err)
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	log.Debug("refreshing token pair", slog.String("user_id", user.ID.String()))
	h.respondWithTokens(w, r, http.StatusOK, user.ID, user.Role)
}

func (h *AuthHandler) respondWithTokens(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userID uuid.UUID,
	role domain.Role,
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accessToken, err := h.jwtService.GenerateToken(r.Context(), userID, role)
	if err != nil {
		log.Error("failed to generate token", slog.String("user_id", userID.String()), slog.Any("error", err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID, role)
	if err != nil {
		log.Error("failed to generate refresh token", slog.String("user_id", userID.String()), slog.Any("error", err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	expiresAt := h.timeFunc().
		Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute).
		UTC().
		Format(time.RFC3339)

	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:       userID,
		Role:         role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
}
