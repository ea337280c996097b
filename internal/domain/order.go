package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

// OrderStatusPaid is currently the only reachable order status.
const OrderStatusPaid OrderStatus = "PAID"

// Order-specific validation errors
var (
	ErrOrderUserIDEmpty        = errors.New("order user ID cannot be empty")
	ErrOrderTotalNegative      = errors.New("order total cannot be negative")
	ErrOrderHasNoLines         = errors.New("order must contain at least one line")
	ErrOrderDuplicateProduct   = errors.New("order lists the same product more than once")
	ErrOrderLineProductIDEmpty = errors.New("order line product ID cannot be empty")
)

// OrderLineInput describes one purchased product when creating an order.
type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderLine is an immutable purchased quantity of a product.
type OrderLine struct {
	OrderID      uuid.UUID `json:"order_id"`
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int       `json:"quantity"`
	LastModified time.Time `json:"last_modified"`
}

// Order is a finalized purchase. Its lines are created once with the order
// and never merged or changed afterwards.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       OrderStatus     `json:"status"`
	Lines        []OrderLine     `json:"lines"`
	OrderDate    time.Time       `json:"order_date"`
	LastModified time.Time       `json:"last_modified"`
}

// NewOrder creates a paid order for userID with a precomputed total.
// The lines are copied; each product may appear only once.
func NewOrder(userID uuid.UUID, total decimal.Decimal, lines []OrderLineInput) (*Order, error) {
	if userID == uuid.Nil {
		return nil, ErrOrderUserIDEmpty
	}
	if total.IsNegative() {
		return nil, ErrOrderTotalNegative
	}
	if len(lines) == 0 {
		return nil, ErrOrderHasNoLines
	}

	now := time.Now().UTC()
	order := &Order{
		ID:           uuid.New(),
		UserID:       userID,
		TotalAmount:  total,
		Status:       OrderStatusPaid,
		Lines:        make([]OrderLine, 0, len(lines)),
		OrderDate:    now,
		LastModified: now,
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, in := range lines {
		if in.ProductID == uuid.Nil {
			return nil, ErrOrderLineProductIDEmpty
		}
		if in.Quantity <= 0 {
			return nil, NewValidationError("quantity", "must be greater than zero", ErrInvalidQuantity)
		}
		if _, dup := seen[in.ProductID]; dup {
			return nil, ErrOrderDuplicateProduct
		}
		seen[in.ProductID] = struct{}{}

		order.Lines = append(order.Lines, OrderLine{
			OrderID:      order.ID,
			ProductID:    in.ProductID,
			Quantity:     in.Quantity,
			LastModified: now,
		})
	}

	return order, nil
}

// ProductIDs returns the distinct products referenced by the order.
func (o *Order) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Lines))
	for _, l := range o.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
