package service

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

// UpsertBasketLineCommand adds Quantity units of a product to a user's basket.
type UpsertBasketLineCommand struct {
	UserID    uuid.UUID `validate:"required"`
	ProductID uuid.UUID `validate:"required"`
	Quantity  int       `validate:"gt=0,lte=2147483647"`
}

// SetBasketLineQuantityCommand sets the absolute quantity of a basket line.
// A quantity of zero removes the line.
type SetBasketLineQuantityCommand struct {
	LineID   uuid.UUID `validate:"required"`
	Quantity int       `validate:"gte=0,lte=2147483647"`
}

// BasketService coordinates every change to a basket.
//
// Mutations run in a single transaction that locks the product (shared) before
// the basket (exclusive), and are retried from the start when they lose a race
// with a concurrent transaction.
type BasketService interface {
	// UpsertBasketLine adds units of a product to the user's basket, creating
	// the basket on first use and merging into an existing line for the same
	// product. Stock is checked against the resulting line quantity.
	UpsertBasketLine(ctx context.Context, actor Actor, cmd UpsertBasketLineCommand) (*domain.Basket, error)

	// DeleteBasketLine removes one unit from a line. A line reaching zero is
	// deleted, and a basket losing its last line is deleted as well.
	DeleteBasketLine(ctx context.Context, actor Actor, lineID uuid.UUID) (domain.RemovalOutcome, error)

	// SetBasketLineQuantity sets a line's quantity. It returns a nil basket
	// when the change emptied and deleted the basket.
	SetBasketLineQuantity(
		ctx context.Context,
		actor Actor,
		cmd SetBasketLineQuantityCommand,
	) (*domain.Basket, error)

	// GetBasket retrieves a basket by ID.
	GetBasket(ctx context.Context, actor Actor, basketID uuid.UUID) (*domain.Basket, error)

	// GetBasketForUser retrieves the user's open basket.
	GetBasketForUser(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.Basket, error)
}

// basketServiceImpl implements the BasketService interface
type basketServiceImpl struct {
	db        *sql.DB
	users     store.UserStore
	products  store.ProductStore
	baskets   store.BasketStore
	validator Validator
	retry     store.RetryPolicy
	logger    *slog.Logger
}

// NewBasketService creates a new BasketService.
// It returns an error if any of the required dependencies are nil.
func NewBasketService(
	db *sql.DB,
	users store.UserStore,
	products store.ProductStore,
	baskets store.BasketStore,
	validator Validator,
	retry store.RetryPolicy,
	logger *slog.Logger,
) (BasketService, error) {
	switch {
	case db == nil:
		return nil, missingDependency("basket", "db")
	case users == nil:
		return nil, missingDependency("basket", "users")
	case products == nil:
		return nil, missingDependency("basket", "products")
	case baskets == nil:
		return nil, missingDependency("basket", "baskets")
	case validator == nil:
		return nil, missingDependency("basket", "validator")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &basketServiceImpl{
		db:        db,
		users:     users,
		products:  products,
		baskets:   baskets,
		validator: validator,
		retry:     retry,
		logger:    logger.With(slog.String("component", "basket_service")),
	}, nil
}

// UpsertBasketLine implements BasketService.UpsertBasketLine
func (s *basketServiceImpl) UpsertBasketLine(
	ctx context.Context,
	actor Actor,
	cmd UpsertBasketLineCommand,
) (*domain.Basket, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", cmd.UserID.String()),
		slog.String("product_id", cmd.ProductID.String()),
	)

	if err := authorize(actor, cmd.UserID); err != nil {
		log.Warn("basket upsert forbidden", slog.String("actor_id", actor.UserID.String()))
		return nil, err
	}
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	var result *domain.Basket
	err := store.RunInTransactionWithRetry(ctx, s.db, s.retry, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		products := s.products.WithTx(tx)
		baskets := s.baskets.WithTx(tx)

		if _, err := users.GetByID(ctx, cmd.UserID); err != nil {
			return err
		}

		product, err := products.GetByIDForShare(ctx, cmd.ProductID)
		if err != nil {
			return err
		}

		basket, err := baskets.GetByUserIDForUpdate(ctx, cmd.UserID)
		isNew := false
		if errors.Is(err, store.ErrBasketNotFound) {
			basket, err = domain.NewBasket(cmd.UserID)
			isNew = true
		}
		if err != nil {
			return err
		}

		if err := product.AssertSufficientStockToAdd(basket.QuantityOf(product.ID), cmd.Quantity); err != nil {
			return err
		}

		if isNew {
			if err := baskets.Create(ctx, basket); err != nil {
				return err
			}
		}

		if line := basket.LineForProduct(product.ID); line != nil {
			if err := basket.MergeQuantityIntoExistingLine(line, product, cmd.Quantity); err != nil {
				return err
			}
			if err := baskets.UpdateLineQuantity(ctx, line); err != nil {
				return err
			}
		} else {
			line, err := basket.AddLine(product, cmd.Quantity)
			if err != nil {
				return err
			}
			if err := baskets.InsertLine(ctx, line); err != nil {
				return err
			}
		}

		if err := baskets.UpdateTotals(ctx, basket); err != nil {
			return err
		}

		result = basket
		return nil
	})
	if err != nil {
		return nil, logAndTranslate(log, "upsert_basket_line", err)
	}

	log.Info("basket line upserted",
		slog.String("basket_id", result.ID.String()),
		slog.Int("quantity", cmd.Quantity),
		slog.String("total_amount", result.TotalAmount.StringFixed(2)))
	return result, nil
}

// DeleteBasketLine implements BasketService.DeleteBasketLine
func (s *basketServiceImpl) DeleteBasketLine(
	ctx context.Context,
	actor Actor,
	lineID uuid.UUID,
) (domain.RemovalOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("line_id", lineID.String()))

	if lineID == uuid.Nil {
		return domain.LineDecremented, &ValidationFailedError{Violations: []string{"LineID is required"}}
	}

	var outcome domain.RemovalOutcome
	err := store.RunInTransactionWithRetry(ctx, s.db, s.retry, func(ctx context.Context, tx *sql.Tx) error {
		baskets := s.baskets.WithTx(tx)

		basket, err := baskets.GetByLineIDForUpdate(ctx, lineID)
		if err != nil {
			return err
		}
		if err := authorize(actor, basket.UserID); err != nil {
			return err
		}

		outcome, err = basket.RemoveOneUnit(lineID)
		if err != nil {
			return err
		}
		return persistLineChange(ctx, baskets, basket, lineID, outcome)
	})
	if err != nil {
		return domain.LineDecremented, logAndTranslate(log, "delete_basket_line", err)
	}

	log.Info("basket line unit removed", slog.String("outcome", outcome.String()))
	return outcome, nil
}

// SetBasketLineQuantity implements BasketService.SetBasketLineQuantity
func (s *basketServiceImpl) SetBasketLineQuantity(
	ctx context.Context,
	actor Actor,
	cmd SetBasketLineQuantityCommand,
) (*domain.Basket, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("line_id", cmd.LineID.String()))

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	var result *domain.Basket
	err := store.RunInTransactionWithRetry(ctx, s.db, s.retry, func(ctx context.Context, tx *sql.Tx) error {
		products := s.products.WithTx(tx)
		baskets := s.baskets.WithTx(tx)

		found, err := baskets.FindLine(ctx, cmd.LineID)
		if err != nil {
			return err
		}

		// Ownership is settled before any row lock is taken.
		owner, err := baskets.GetByID(ctx, found.BasketID)
		if errors.Is(err, store.ErrBasketNotFound) {
			return store.ErrBasketLineNotFound
		}
		if err != nil {
			return err
		}
		if err := authorize(actor, owner.UserID); err != nil {
			return err
		}

		product, err := products.GetByIDForShare(ctx, found.ProductID)
		if err != nil {
			return err
		}

		basket, err := baskets.GetByLineIDForUpdate(ctx, cmd.LineID)
		if err != nil {
			return err
		}
		if basket.UserID != owner.UserID {
			return store.ErrBasketLineNotFound
		}

		line := basket.Line(cmd.LineID)
		if line == nil {
			return store.ErrBasketLineNotFound
		}
		line.Product = product

		if cmd.Quantity > line.Quantity {
			if err := product.AssertSufficientStock(cmd.Quantity); err != nil {
				return err
			}
		}

		outcome, err := basket.SetLineQuantity(cmd.LineID, cmd.Quantity)
		if errors.Is(err, domain.ErrNoChange) {
			return ErrNoChange
		}
		if err != nil {
			return err
		}

		if err := persistLineChange(ctx, baskets, basket, cmd.LineID, outcome); err != nil {
			return err
		}

		result = nil
		if outcome != domain.BasketEmptied {
			result = basket
		}
		return nil
	})
	if err != nil {
		return nil, logAndTranslate(log, "set_basket_line_quantity", err)
	}

	log.Info("basket line quantity set", slog.Int("quantity", cmd.Quantity))
	return result, nil
}

// persistLineChange writes the result of a line losing or changing quantity.
func persistLineChange(
	ctx context.Context,
	baskets store.BasketStore,
	basket *domain.Basket,
	lineID uuid.UUID,
	outcome domain.RemovalOutcome,
) error {
	switch outcome {
	case domain.LineDecremented:
		if err := baskets.UpdateLineQuantity(ctx, basket.Line(lineID)); err != nil {
			return err
		}
		return baskets.UpdateTotals(ctx, basket)
	case domain.LineRemoved:
		if err := baskets.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		return baskets.UpdateTotals(ctx, basket)
	case domain.BasketEmptied:
		if err := baskets.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		return baskets.Delete(ctx, basket.ID)
	default:
		return errors.New("unknown removal outcome")
	}
}

// GetBasket implements BasketService.GetBasket
func (s *basketServiceImpl) GetBasket(ctx context.Context, actor Actor, basketID uuid.UUID) (*domain.Basket, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("basket_id", basketID.String()))

	basket, err := s.baskets.GetByID(ctx, basketID)
	if err != nil {
		return nil, logAndTranslate(log, "get_basket", err)
	}
	if err := authorize(actor, basket.UserID); err != nil {
		log.Warn("basket read forbidden", slog.String("actor_id", actor.UserID.String()))
		return nil, err
	}
	return basket, nil
}

// GetBasketForUser implements BasketService.GetBasketForUser
func (s *basketServiceImpl) GetBasketForUser(
	ctx context.Context,
	actor Actor,
	userID uuid.UUID,
) (*domain.Basket, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := authorize(actor, userID); err != nil {
		log.Warn("basket read forbidden", slog.String("actor_id", actor.UserID.String()))
		return nil, err
	}

	basket, err := s.baskets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, logAndTranslate(log, "get_basket_for_user", err)
	}
	return basket, nil
}
