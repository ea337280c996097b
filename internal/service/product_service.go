package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/store"
	"github.com/shopspring/decimal"
)

// CreateProductCommand adds a product to the catalogue.
// The first image location becomes the primary image.
type CreateProductCommand struct {
	Name           string          `validate:"required,max=200"`
	Description    string          `validate:"max=2000"`
	Price          decimal.Decimal `validate:"-"`
	StockQuantity  int             `validate:"gte=0"`
	ImageLocations []string        `validate:"omitempty,dive,required,max=500"`
}

// ProductService provides catalogue operations.
type ProductService interface {
	// CreateProduct adds a product. Only admins may create products.
	CreateProduct(ctx context.Context, actor Actor, cmd CreateProductCommand) (*domain.Product, error)

	// GetProduct retrieves a product by ID.
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)

	// ListProducts returns a page of products ordered by name.
	ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error)
}

type productServiceImpl struct {
	db        *sql.DB
	products  store.ProductStore
	validator Validator
	logger    *slog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	db *sql.DB,
	products store.ProductStore,
	validator Validator,
	logger *slog.Logger,
) (ProductService, error) {
	switch {
	case db == nil:
		return nil, missingDependency("product", "db")
	case products == nil:
		return nil, missingDependency("product", "products")
	case validator == nil:
		return nil, missingDependency("product", "validator")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &productServiceImpl{
		db:        db,
		products:  products,
		validator: validator,
		logger:    logger.With(slog.String("component", "product_service")),
	}, nil
}

func (s *productServiceImpl) CreateProduct(
	ctx context.Context,
	actor Actor,
	cmd CreateProductCommand,
) (*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.IsAdmin {
		log.Warn("product creation forbidden", slog.String("actor_id", actor.UserID.String()))
		return nil, ErrForbidden
	}
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	product, err := domain.NewProduct(cmd.Name, cmd.Description, cmd.Price, cmd.StockQuantity, cmd.ImageLocations...)
	if err != nil {
		return nil, logAndTranslate(log, "create_product", invalidInput(err))
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.products.WithTx(tx).Create(ctx, product)
	})
	if err != nil {
		return nil, logAndTranslate(log, "create_product", err)
	}

	log.Info("product created",
		slog.String("product_id", product.ID.String()),
		slog.Int("stock_quantity", product.StockQuantity))
	return product, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		log := logger.FromContextOrDefault(ctx, s.logger)
		return nil, logAndTranslate(log, "get_product", err, slog.String("product_id", productID.String()))
	}
	return product, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	products, err := s.products.List(ctx, limit, offset)
	if err != nil {
		return nil, logAndTranslate(logger.FromContextOrDefault(ctx, s.logger), "list_products", err)
	}
	return products, nil
}
