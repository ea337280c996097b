package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/storefront-api/internal/config"
	"github.com/phrazzld/storefront-api/internal/platform/postgres"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/phrazzld/storefront-api/internal/service/auth"
	"github.com/phrazzld/storefront-api/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService     auth.JWTService
	userService    service.UserService
	productService service.ProductService
	basketService  service.BasketService
	orderService   service.OrderService
}

// newApplication builds stores and services on top of db.
func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, logger)
	productStore := postgres.NewPostgresProductStore(db, logger)
	basketStore := postgres.NewPostgresBasketStore(db, logger)
	orderStore := postgres.NewPostgresOrderStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	passwords := auth.NewBcryptVerifier(cfg.Auth.BCryptCost)
	validator := service.NewValidator()

	userService, err := service.NewUserService(userStore, passwords, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	productService, err := service.NewProductService(db, productStore, validator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create product service: %w", err)
	}

	basketService, err := service.NewBasketService(
		db,
		userStore,
		productStore,
		basketStore,
		validator,
		store.RetryPolicy{
			MaxRetries:  cfg.Basket.MaxRetries,
			BaseBackoff: cfg.Basket.BaseBackoff,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create basket service: %w", err)
	}

	orderService, err := service.NewOrderService(db, userStore, productStore, orderStore, validator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		jwtService:     jwtService,
		userService:    userService,
		productService: productService,
		basketService:  basketService,
		orderService:   orderService,
	}, nil
}

// Run serves HTTP until ctx is canceled, then shuts down and releases
// resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()
	return app.startHTTPServer(ctx, app.setupRouter())
}

func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
		return
	}
	app.logger.Info("Database connection closed")
}
