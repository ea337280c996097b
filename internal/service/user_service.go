package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/store"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

// UserService provides account operations.
type UserService interface {
	// Register creates a customer account. Returns ErrEmailExists if the
	// email is already registered.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate returns the user owning email if password matches.
	// Returns ErrInvalidCredentials for an unknown email or a wrong password.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	passwords PasswordHasher
	logger    *slog.Logger
	db        *sql.DB
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	passwords PasswordHasher,
	db *sql.DB,
	logger *slog.Logger,
) (UserService, error) {
	switch {
	case userStore == nil:
		return nil, missingDependency("user", "userStore")
	case passwords == nil:
		return nil, missingDependency("user", "passwords")
	case db == nil:
		return nil, missingDependency("user", "db")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore: userStore,
		passwords: passwords,
		db:        db,
		logger:    logger.With("component", "user_service"),
	}, nil
}

// Register creates a customer with a bcrypt-hashed password.
// Uses a transaction to ensure atomicity of the operation
func (s *UserServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidatePassword(password); err != nil {
		return nil, invalidInput(err)
	}

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return nil, logAndTranslate(log, "register_user", err)
	}

	user, err := domain.NewUser(email, hashed)
	if err != nil {
		log.Debug("rejected registration", "error", err)
		return nil, invalidInput(err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, logAndTranslate(log, "register_user", err, "email", user.Email)
	}

	log.Info("user registered",
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// Authenticate checks an email and password pair.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, logAndTranslate(log, "authenticate_user", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		log := logger.FromContextOrDefault(ctx, s.logger)
		return nil, logAndTranslate(log, "get_user", err, "user_id", userID)
	}
	return user, nil
}
