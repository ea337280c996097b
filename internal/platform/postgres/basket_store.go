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

// PostgresBasketStore implements the store.BasketStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBasketStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBasketStore creates a new PostgreSQL implementation of the BasketStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresBasketStore(db store.DBTX, logger *slog.Logger) *PostgresBasketStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBasketStore{
		db:     db,
		logger: logger.With(slog.String("component", "basket_store")),
	}
}

// Ensure PostgresBasketStore implements store.BasketStore interface
var _ store.BasketStore = (*PostgresBasketStore)(nil)

// WithTx implements store.BasketStore.WithTx
func (s *PostgresBasketStore) WithTx(tx *sql.Tx) store.BasketStore {
	return &PostgresBasketStore{db: tx, logger: s.logger}
}

const (
	selectBasket = `
		SELECT id, user_id, total_amount, created_at, last_modified
		FROM baskets
	`

	selectBasketByLine = `
		SELECT b.id, b.user_id, b.total_amount, b.created_at, b.last_modified
		FROM baskets b
		JOIN basket_lines bl ON bl.basket_id = b.id
		WHERE bl.id = $1
		FOR UPDATE OF b
	`

	selectBasketLines = `
		SELECT bl.id, bl.basket_id, bl.product_id, bl.quantity, bl.last_modified,
		       p.name, p.description, p.price, p.stock_quantity, p.added_date, p.last_modified,
		       pi.id, pi.location
		FROM basket_lines bl
		JOIN products p ON p.id = bl.product_id
		LEFT JOIN product_images pi ON pi.product_id = p.id AND pi.is_primary
		WHERE bl.basket_id = $1
		ORDER BY p.name, bl.id
	`
)

// GetByID implements store.BasketStore.GetByID
func (s *PostgresBasketStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Basket, error) {
	return s.load(ctx, selectBasket+"WHERE id = $1", id, store.ErrBasketNotFound)
}

// GetByUserID implements store.BasketStore.GetByUserID
func (s *PostgresBasketStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Basket, error) {
	return s.load(ctx, selectBasket+"WHERE user_id = $1", userID, store.ErrBasketNotFound)
}

// GetByUserIDForUpdate implements store.BasketStore.GetByUserIDForUpdate
func (s *PostgresBasketStore) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Basket, error) {
	return s.load(ctx, selectBasket+"WHERE user_id = $1 FOR UPDATE", userID, store.ErrBasketNotFound)
}

// GetByLineIDForUpdate implements store.BasketStore.GetByLineIDForUpdate
func (s *PostgresBasketStore) GetByLineIDForUpdate(ctx context.Context, lineID uuid.UUID) (*domain.Basket, error) {
	return s.load(ctx, selectBasketByLine, lineID, store.ErrBasketLineNotFound)
}

// load reads a basket row with query and then its lines.
func (s *PostgresBasketStore) load(ctx context.Context, query string, arg uuid.UUID, notFound error) (*domain.Basket, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var b domain.Basket
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&b.ID,
		&b.UserID,
		&b.TotalAmount,
		&b.CreatedAt,
		&b.LastModified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("basket not found", slog.String("key", arg.String()))
			return nil, notFound
		}
		log.Error("failed to get basket",
			slog.String("error", err.Error()),
			slog.String("key", arg.String()))
		return nil, MapError(err)
	}

	lines, err := s.lines(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Lines = lines

	log.Debug("basket loaded",
		slog.String("basket_id", b.ID.String()),
		slog.Int("lines", len(b.Lines)))
	return &b, nil
}

func (s *PostgresBasketStore) lines(ctx context.Context, basketID uuid.UUID) ([]*domain.BasketLine, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, selectBasketLines, basketID)
	if err != nil {
		log.Error("failed to query basket lines",
			slog.String("error", err.Error()),
			slog.String("basket_id", basketID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	lines := []*domain.BasketLine{}
	for rows.Next() {
		var line domain.BasketLine
		var p domain.Product
		var imageID uuid.NullUUID
		var imageLocation sql.NullString

		if err := rows.Scan(
			&line.ID, &line.BasketID, &line.ProductID, &line.Quantity, &line.LastModified,
			&p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.AddedDate, &p.LastModified,
			&imageID, &imageLocation,
		); err != nil {
			log.Error("failed to scan basket line row", slog.String("error", err.Error()))
			return nil, err
		}

		p.ID = line.ProductID
		if imageID.Valid {
			p.Images = []domain.ProductImage{{
				ID:        imageID.UUID,
				ProductID: p.ID,
				Location:  imageLocation.String,
				IsPrimary: true,
			}}
		}
		line.Product = &p
		lines = append(lines, &line)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return lines, nil
}

// FindLine implements store.BasketStore.FindLine
func (s *PostgresBasketStore) FindLine(ctx context.Context, lineID uuid.UUID) (*domain.BasketLine, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var line domain.BasketLine
	err := s.db.QueryRowContext(ctx, `
		SELECT id, basket_id, product_id, quantity, last_modified
		FROM basket_lines
		WHERE id = $1
	`, lineID).Scan(&line.ID, &line.BasketID, &line.ProductID, &line.Quantity, &line.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("basket line not found", slog.String("line_id", lineID.String()))
			return nil, store.ErrBasketLineNotFound
		}
		log.Error("failed to get basket line",
			slog.String("error", err.Error()),
			slog.String("line_id", lineID.String()))
		return nil, MapError(err)
	}

	return &line, nil
}

// Create implements store.BasketStore.Create
func (s *PostgresBasketStore) Create(ctx context.Context, basket *domain.Basket) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO baskets (id, user_id, total_amount, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5)
	`, basket.ID, basket.UserID, basket.TotalAmount, basket.CreatedAt, basket.LastModified)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrBasketExists) {
			log.Info("concurrent basket creation detected",
				slog.String("user_id", basket.UserID.String()))
			return mapped
		}
		log.Error("failed to create basket",
			slog.String("error", err.Error()),
			slog.String("basket_id", basket.ID.String()),
			slog.String("user_id", basket.UserID.String()))
		return mapped
	}

	log.Info("basket created successfully",
		slog.String("basket_id", basket.ID.String()),
		slog.String("user_id", basket.UserID.String()))
	return nil
}

// UpdateTotals implements store.BasketStore.UpdateTotals
func (s *PostgresBasketStore) UpdateTotals(ctx context.Context, basket *domain.Basket) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE baskets
		SET total_amount = $1, last_modified = $2
		WHERE id = $3
	`, basket.TotalAmount, basket.LastModified, basket.ID)
	if err != nil {
		log.Error("failed to update basket totals",
			slog.String("error", err.Error()),
			slog.String("basket_id", basket.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrBasketNotFound)
}

// Delete implements store.BasketStore.Delete
func (s *PostgresBasketStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM baskets WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete basket",
			slog.String("error", err.Error()),
			slog.String("basket_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrBasketNotFound); err != nil {
		return err
	}

	log.Info("basket deleted", slog.String("basket_id", id.String()))
	return nil
}

// InsertLine implements store.BasketStore.InsertLine
func (s *PostgresBasketStore) InsertLine(ctx context.Context, line *domain.BasketLine) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO basket_lines (id, basket_id, product_id, quantity, last_modified)
		VALUES ($1, $2, $3, $4, $5)
	`, line.ID, line.BasketID, line.ProductID, line.Quantity, line.LastModified)
	if err != nil {
		log.Error("failed to insert basket line",
			slog.String("error", err.Error()),
			slog.String("basket_id", line.BasketID.String()),
			slog.String("product_id", line.ProductID.String()))
		return MapError(err)
	}

	return nil
}

// UpdateLineQuantity implements store.BasketStore.UpdateLineQuantity
func (s *PostgresBasketStore) UpdateLineQuantity(ctx context.Context, line *domain.BasketLine) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE basket_lines
		SET quantity = $1, last_modified = $2
		WHERE id = $3
	`, line.Quantity, line.LastModified, line.ID)
	if err != nil {
		log.Error("failed to update basket line",
			slog.String("error", err.Error()),
			slog.String("line_id", line.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrBasketLineNotFound)
}

// DeleteLine implements store.BasketStore.DeleteLine
func (s *PostgresBasketStore) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM basket_lines WHERE id = $1`, lineID)
	if err != nil {
		log.Error("failed to delete basket line",
			slog.String("error", err.Error()),
			slog.String("line_id", lineID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrBasketLineNotFound)
}
