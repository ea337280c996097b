package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/store"
)

// PostgresProductStore implements the store.ProductStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProductStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProductStore creates a new PostgreSQL implementation of the ProductStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresProductStore(db store.DBTX, logger *slog.Logger) *PostgresProductStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProductStore{
		db:     db,
		logger: logger.With(slog.String("component", "product_store")),
	}
}

// Ensure PostgresProductStore implements store.ProductStore interface
var _ store.ProductStore = (*PostgresProductStore)(nil)

// WithTx implements store.ProductStore.WithTx
func (s *PostgresProductStore) WithTx(tx *sql.Tx) store.ProductStore {
	return &PostgresProductStore{db: tx, logger: s.logger}
}

// Create implements store.ProductStore.Create
func (s *PostgresProductStore) Create(ctx context.Context, product *domain.Product) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := product.Validate(); err != nil {
		log.Warn("product validation failed during create",
			slog.String("error", err.Error()),
			slog.String("product_id", product.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock_quantity, added_date, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.StockQuantity,
		product.AddedDate,
		product.LastModified,
	)
	if err != nil {
		log.Error("failed to create product",
			slog.String("error", err.Error()),
			slog.String("product_id", product.ID.String()))
		return MapError(err)
	}

	for _, img := range product.Images {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO product_images (id, product_id, location, is_primary)
			VALUES ($1, $2, $3, $4)
		`, img.ID, product.ID, img.Location, img.IsPrimary)
		if err != nil {
			log.Error("failed to create product image",
				slog.String("error", err.Error()),
				slog.String("product_id", product.ID.String()),
				slog.String("image_id", img.ID.String()))
			return MapError(err)
		}
	}

	log.Info("product created successfully",
		slog.String("product_id", product.ID.String()),
		slog.Int("stock_quantity", product.StockQuantity),
		slog.Int("images", len(product.Images)))
	return nil
}

const selectProductByID = `
	SELECT id, name, description, price, stock_quantity, added_date, last_modified
	FROM products
	WHERE id = $1
`

// GetByID implements store.ProductStore.GetByID
func (s *PostgresProductStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.get(ctx, selectProductByID, id)
}

// GetByIDForShare implements store.ProductStore.GetByIDForShare
func (s *PostgresProductStore) GetByIDForShare(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.get(ctx, selectProductByID+" FOR SHARE", id)
}

func (s *PostgresProductStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var p domain.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&p.AddedDate,
		&p.LastModified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("product not found", slog.String("product_id", id.String()))
			return nil, store.ErrProductNotFound
		}
		log.Error("failed to get product",
			slog.String("error", err.Error()),
			slog.String("product_id", id.String()))
		return nil, MapError(err)
	}

	images, err := s.images(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return &p, nil
}

func (s *PostgresProductStore) images(ctx context.Context, productID uuid.UUID) ([]domain.ProductImage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, location, is_primary
		FROM product_images
		WHERE product_id = $1
		ORDER BY is_primary DESC, id
	`, productID)
	if err != nil {
		log.Error("failed to query product images",
			slog.String("error", err.Error()),
			slog.String("product_id", productID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var images []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Location, &img.IsPrimary); err != nil {
			log.Error("failed to scan product image row", slog.String("error", err.Error()))
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return images, nil
}

// List implements store.ProductStore.List
func (s *PostgresProductStore) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.price, p.stock_quantity, p.added_date, p.last_modified,
		       i.id, i.location, i.is_primary
		FROM (
			SELECT id, name, description, price, stock_quantity, added_date, last_modified
			FROM products
			ORDER BY name, id
			LIMIT $1 OFFSET $2
		) p
		LEFT JOIN product_images i ON i.product_id = p.id
		ORDER BY p.name, p.id, i.is_primary DESC, i.id
	`, limit, offset)
	if err != nil {
		log.Error("failed to list products", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	products := []*domain.Product{}
	var current *domain.Product
	for rows.Next() {
		var p domain.Product
		var imgID uuid.NullUUID
		var location sql.NullString
		var isPrimary sql.NullBool

		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.AddedDate, &p.LastModified,
			&imgID, &location, &isPrimary,
		); err != nil {
			log.Error("failed to scan product row", slog.String("error", err.Error()))
			return nil, err
		}

		if current == nil || current.ID != p.ID {
			current = &p
			products = append(products, current)
		}
		if imgID.Valid {
			current.Images = append(current.Images, domain.ProductImage{
				ID:        imgID.UUID,
				ProductID: current.ID,
				Location:  location.String,
				IsPrimary: isPrimary.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("listed products",
		slog.Int("count", len(products)),
		slog.Int("limit", limit),
		slog.Int("offset", offset))
	return products, nil
}
