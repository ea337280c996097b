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

// OrderLineCommand is one product and quantity in a new order.
type OrderLineCommand struct {
	ProductID uuid.UUID `validate:"required"`
	Quantity  int       `validate:"gt=0,lte=2147483647"`
}

// CreateOrderCommand places an order for a user with a precomputed total.
type CreateOrderCommand struct {
	UserID      uuid.UUID          `validate:"required"`
	TotalAmount decimal.Decimal    `validate:"-"`
	Lines       []OrderLineCommand `validate:"required,min=1,dive"`
}

// OrderService provides order-related operations.
// Placing an order neither deducts stock nor clears the user's basket.
type OrderService interface {
	// CreateOrder records a PAID order for the user.
	CreateOrder(ctx context.Context, actor Actor, cmd CreateOrderCommand) (*domain.Order, error)

	// GetOrder retrieves an order by ID.
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*domain.Order, error)

	// ListOrders returns a user's orders, newest first.
	ListOrders(ctx context.Context, actor Actor, userID uuid.UUID, limit, offset int) ([]*domain.Order, error)
}

// orderServiceImpl implements the OrderService interface
type orderServiceImpl struct {
	db        *sql.DB
	users     store.UserStore
	products  store.ProductStore
	orders    store.OrderStore
	validator Validator
	logger    *slog.Logger
}

// NewOrderService creates a new OrderService.
// It returns an error if any of the required dependencies are nil.
func NewOrderService(
	db *sql.DB,
	users store.UserStore,
	products store.ProductStore,
	orders store.OrderStore,
	validator Validator,
	logger *slog.Logger,
) (OrderService, error) {
	switch {
	case db == nil:
		return nil, missingDependency("order", "db")
	case users == nil:
		return nil, missingDependency("order", "users")
	case products == nil:
		return nil, missingDependency("order", "products")
	case orders == nil:
		return nil, missingDependency("order", "orders")
	case validator == nil:
		return nil, missingDependency("order", "validator")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &orderServiceImpl{
		db:        db,
		users:     users,
		products:  products,
		orders:    orders,
		validator: validator,
		logger:    logger.With(slog.String("component", "order_service")),
	}, nil
}

// CreateOrder implements OrderService.CreateOrder
func (s *orderServiceImpl) CreateOrder(ctx context.Context, actor Actor, cmd CreateOrderCommand) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", cmd.UserID.String()))

	if err := authorize(actor, cmd.UserID); err != nil {
		log.Warn("order creation forbidden", slog.String("actor_id", actor.UserID.String()))
		return nil, err
	}
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	inputs := make([]domain.OrderLineInput, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		inputs = append(inputs, domain.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	order, err := domain.NewOrder(cmd.UserID, cmd.TotalAmount, inputs)
	if err != nil {
		return nil, logAndTranslate(log, "create_order", invalidInput(err))
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.users.WithTx(tx).GetByID(ctx, cmd.UserID); err != nil {
			return err
		}

		products := s.products.WithTx(tx)
		for _, productID := range order.ProductIDs() {
			if _, err := products.GetByID(ctx, productID); err != nil {
				return err
			}
		}

		return s.orders.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, logAndTranslate(log, "create_order", err)
	}

	log.Info("order created",
		slog.String("order_id", order.ID.String()),
		slog.Int("line_count", len(order.Lines)),
		slog.String("total_amount", order.TotalAmount.StringFixed(2)))
	return order, nil
}

// GetOrder implements OrderService.GetOrder
func (s *orderServiceImpl) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("order_id", orderID.String()))

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, logAndTranslate(log, "get_order", err)
	}
	if err := authorize(actor, order.UserID); err != nil {
		log.Warn("order read forbidden", slog.String("actor_id", actor.UserID.String()))
		return nil, err
	}
	return order, nil
}

// ListOrders implements OrderService.ListOrders
func (s *orderServiceImpl) ListOrders(
	ctx context.Context,
	actor Actor,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := authorize(actor, userID); err != nil {
		log.Warn("order list forbidden", slog.String("actor_id", actor.UserID.String()))
		return nil, err
	}

	orders, err := s.orders.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, logAndTranslate(log, "list_orders", err)
	}
	return orders, nil
}
