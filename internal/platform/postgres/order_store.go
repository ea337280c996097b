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

// PostgresOrderStore implements the store.OrderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresOrderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOrderStore creates a new PostgreSQL implementation of the OrderStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresOrderStore(db store.DBTX, logger *slog.Logger) *PostgresOrderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOrderStore{
		db:     db,
		logger: logger.With(slog.String("component", "order_store")),
	}
}

// Ensure PostgresOrderStore implements store.OrderStore interface
var _ store.OrderStore = (*PostgresOrderStore)(nil)

// WithTx implements store.OrderStore.WithTx
func (s *PostgresOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return &PostgresOrderStore{db: tx, logger: s.logger}
}

// Create implements store.OrderStore.Create
// The caller is expected to run it inside a transaction so that the order
// and its lines are stored together.
func (s *PostgresOrderStore) Create(ctx context.Context, order *domain.Order) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_amount, status, order_date, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		order.ID,
		order.UserID,
		order.TotalAmount,
		string(order.Status),
		order.OrderDate,
		order.LastModified,
	)
	if err != nil {
		log.Error("failed to create order",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return MapError(err)
	}

	for _, line := range order.Lines {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, last_modified)
			VALUES ($1, $2, $3, $4)
		`, order.ID, line.ProductID, line.Quantity, line.LastModified)
		if err != nil {
			log.Error("failed to create order line",
				slog.String("error", err.Error()),
				slog.String("order_id", order.ID.String()),
				slog.String("product_id", line.ProductID.String()))
			return MapError(err)
		}
	}

	log.Info("order created successfully",
		slog.String("order_id", order.ID.String()),
		slog.String("user_id", order.UserID.String()),
		slog.Int("lines", len(order.Lines)))
	return nil
}

// GetByID implements store.OrderStore.GetByID
func (s *PostgresOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var o domain.Order
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_amount, status, order_date, last_modified
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.UserID, &o.TotalAmount, &status, &o.OrderDate, &o.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("order not found", slog.String("order_id", id.String()))
			return nil, store.ErrOrderNotFound
		}
		log.Error("failed to get order",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return nil, MapError(err)
	}
	o.Status = domain.OrderStatus(status)

	lines, err := s.lines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

// ListByUser implements store.OrderStore.ListByUser
func (s *PostgresOrderStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, total_amount, status, order_date, last_modified
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC, id
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		log.Error("failed to list orders",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	orders := []*domain.Order{}
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &status, &o.OrderDate, &o.LastModified); err != nil {
			_ = rows.Close()
			log.Error("failed to scan order row", slog.String("error", err.Error()))
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}

	// lines are fetched after the order cursor is closed; a tx connection
	// cannot serve two open result sets.
	for _, o := range orders {
		lines, err := s.lines(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Lines = lines
	}

	return orders, nil
}

func (s *PostgresOrderStore) lines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, last_modified
		FROM order_lines
		WHERE order_id = $1
		ORDER BY product_id
	`, orderID)
	if err != nil {
		log.Error("failed to query order lines",
			slog.String("error", err.Error()),
			slog.String("order_id", orderID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	lines := []domain.OrderLine{}
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.Quantity, &l.LastModified); err != nil {
			log.Error("failed to scan order line row", slog.String("error", err.Error()))
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return lines, nil
}
