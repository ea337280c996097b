package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Basket-specific errors
var (
	// ErrBasketUserIDEmpty is returned when a basket has no owner.
	ErrBasketUserIDEmpty = errors.New("basket user ID cannot be empty")

	// ErrBasketLineExists is returned when adding a line for a product that is
	// already in the basket. Callers must merge into the existing line instead.
	ErrBasketLineExists = errors.New("basket already has a line for this product")

	// ErrBasketLineNotInBasket is returned when a line does not belong to the basket.
	ErrBasketLineNotInBasket = errors.New("basket line does not belong to basket")

	// ErrBasketLineProductMismatch is returned when a merge names a different product
	// than the one held by the line.
	ErrBasketLineProductMismatch = errors.New("basket line holds a different product")

	// ErrBasketLineProductMissing is returned when a line's product has not been loaded,
	// so its price is unknown.
	ErrBasketLineProductMissing = errors.New("basket line product is not loaded")

	// ErrNegativeQuantity is returned when a quantity below zero is supplied.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrNoChange is returned when an update would leave the basket as it is.
	ErrNoChange = errors.New("no change to apply")
)

// MaxLineQuantity is the largest quantity a basket line can hold. It matches
// the range of the quantity column.
const MaxLineQuantity = math.MaxInt32

// RemovalOutcome describes what happened to a basket after a line lost quantity.
type RemovalOutcome int

const (
	// LineDecremented means the line still exists with a new quantity.
	LineDecremented RemovalOutcome = iota
	// LineRemoved means the line reached zero and was removed; other lines remain.
	LineRemoved
	// BasketEmptied means the removed line was the last one; the basket must be deleted.
	BasketEmptied
)

// String returns a readable name for the outcome.
func (o RemovalOutcome) String() string {
	switch o {
	case LineDecremented:
		return "line_decremented"
	case LineRemoved:
		return "line_removed"
	case BasketEmptied:
		return "basket_emptied"
	default:
		return "unknown"
	}
}

// BasketLine is a quantity of one product inside a basket.
// A persisted line always has a positive quantity.
type BasketLine struct {
	ID           uuid.UUID `json:"id"`
	BasketID     uuid.UUID `json:"basket_id"`
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int       `json:"quantity"`
	LastModified time.Time `json:"last_modified"`

	// Product is a read-mostly reference used for price and display fields.
	Product *Product `json:"-"`
}

// Increment raises the line quantity. It fails without changing the line when
// the result would exceed MaxLineQuantity.
func (l *BasketLine) Increment(quantity int, now time.Time) error {
	if quantity > MaxLineQuantity-l.Quantity {
		return NewValidationError("quantity", "exceeds the maximum line quantity", ErrInvalidQuantity)
	}
	l.Quantity += quantity
	l.LastModified = now
	return nil
}

// Decrement lowers the line quantity by one.
func (l *BasketLine) Decrement(now time.Time) {
	l.Quantity--
	l.LastModified = now
}

// Basket is a user's in-progress selection of products.
//
// TotalAmount is maintained incrementally by every mutation and is never
// recomputed from the lines.
type Basket struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Lines        []*BasketLine   `json:"lines"`
	CreatedAt    time.Time       `json:"created_at"`
	LastModified time.Time       `json:"last_modified"`
}

// NewBasket creates an empty basket owned by userID.
func NewBasket(userID uuid.UUID) (*Basket, error) {
	if userID == uuid.Nil {
		return nil, ErrBasketUserIDEmpty
	}

	now := time.Now().UTC()
	return &Basket{
		ID:           uuid.New(),
		UserID:       userID,
		TotalAmount:  decimal.Zero,
		Lines:        []*BasketLine{},
		CreatedAt:    now,
		LastModified: now,
	}, nil
}

// IsEmpty reports whether the basket has no lines.
func (b *Basket) IsEmpty() bool {
	return len(b.Lines) == 0
}

// LineForProduct returns the line holding productID, or nil.
func (b *Basket) LineForProduct(productID uuid.UUID) *BasketLine {
	for _, line := range b.Lines {
		if line.ProductID == productID {
			return line
		}
	}
	return nil
}

// Line returns the line with the given ID, or nil.
func (b *Basket) Line(lineID uuid.UUID) *BasketLine {
	for _, line := range b.Lines {
		if line.ID == lineID {
			return line
		}
	}
	return nil
}

// QuantityOf returns how many units of productID the basket holds.
func (b *Basket) QuantityOf(productID uuid.UUID) int {
	if line := b.LineForProduct(productID); line != nil {
		return line.Quantity
	}
	return 0
}

// AddLine creates a new line for product and raises the total by price × quantity.
// The basket must not already hold the product.
func (b *Basket) AddLine(product *Product, quantity int) (*BasketLine, error) {
	if quantity <= 0 {
		return nil, NewValidationError("quantity", "must be greater than zero", ErrInvalidQuantity)
	}
	if quantity > MaxLineQuantity {
		return nil, NewValidationError("quantity", "exceeds the maximum line quantity", ErrInvalidQuantity)
	}
	if b.LineForProduct(product.ID) != nil {
		return nil, ErrBasketLineExists
	}

	now := time.Now().UTC()
	line := &BasketLine{
		ID:           uuid.New(),
		BasketID:     b.ID,
		ProductID:    product.ID,
		Quantity:     quantity,
		LastModified: now,
		Product:      product,
	}

	b.Lines = append(b.Lines, line)
	b.TotalAmount = b.TotalAmount.Add(product.LineTotal(quantity))
	b.LastModified = now
	return line, nil
}

// MergeQuantityIntoExistingLine adds additional units of product to line.
// The line quantity and the basket total move together.
func (b *Basket) MergeQuantityIntoExistingLine(line *BasketLine, product *Product, additional int) error {
	if additional <= 0 {
		return NewValidationError("quantity", "must be greater than zero", ErrInvalidQuantity)
	}
	if b.Line(line.ID) != line {
		return ErrBasketLineNotInBasket
	}
	if line.ProductID != product.ID {
		return ErrBasketLineProductMismatch
	}

	now := time.Now().UTC()
	if err := line.Increment(additional, now); err != nil {
		return err
	}
	line.Product = product
	b.TotalAmount = b.TotalAmount.Add(product.LineTotal(additional))
	b.LastModified = now
	return nil
}

// RemoveOneUnit decrements the line by one unit and lowers the total by the
// product price. A line reaching zero is removed from the basket.
func (b *Basket) RemoveOneUnit(lineID uuid.UUID) (RemovalOutcome, error) {
	line := b.Line(lineID)
	if line == nil {
		return LineDecremented, ErrBasketLineNotInBasket
	}
	if line.Product == nil {
		return LineDecremented, ErrBasketLineProductMissing
	}

	now := time.Now().UTC()
	line.Decrement(now)
	b.TotalAmount = b.TotalAmount.Sub(line.Product.Price)
	b.LastModified = now

	if line.Quantity > 0 {
		return LineDecremented, nil
	}
	return b.dropLine(lineID), nil
}

// SetLineQuantity sets the absolute quantity of a line, adjusting the total by
// the difference. A quantity of zero removes the line. Setting the current
// quantity returns ErrNoChange and leaves the basket untouched.
func (b *Basket) SetLineQuantity(lineID uuid.UUID, quantity int) (RemovalOutcome, error) {
	if quantity < 0 {
		return LineDecremented, NewValidationError("quantity", "cannot be negative", ErrNegativeQuantity)
	}
	if quantity > MaxLineQuantity {
		return LineDecremented, NewValidationError("quantity", "exceeds the maximum line quantity", ErrInvalidQuantity)
	}

	line := b.Line(lineID)
	if line == nil {
		return LineDecremented, ErrBasketLineNotInBasket
	}
	if line.Product == nil {
		return LineDecremented, ErrBasketLineProductMissing
	}
	if line.Quantity == quantity {
		return LineDecremented, ErrNoChange
	}

	now := time.Now().UTC()
	delta := quantity - line.Quantity
	line.Quantity = quantity
	line.LastModified = now
	b.TotalAmount = b.TotalAmount.Add(line.Product.LineTotal(delta))
	b.LastModified = now

	if quantity > 0 {
		return LineDecremented, nil
	}
	return b.dropLine(lineID), nil
}

// dropLine removes a line and reports whether the basket is now empty.
func (b *Basket) dropLine(lineID uuid.UUID) RemovalOutcome {
	kept := b.Lines[:0]
	for _, l := range b.Lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	b.Lines = kept

	if b.IsEmpty() {
		return BasketEmptied
	}
	return LineRemoved
}
