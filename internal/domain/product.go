package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product-specific validation errors
var (
	// ErrProductIDEmpty is returned when a product ID is empty or nil.
	ErrProductIDEmpty = errors.New("product ID cannot be empty")

	// ErrProductNameEmpty is returned when a product has no name.
	ErrProductNameEmpty = errors.New("product name cannot be empty")

	// ErrProductPriceNegative is returned when a product price is below zero.
	ErrProductPriceNegative = errors.New("product price cannot be negative")

	// ErrProductStockNegative is returned when a product stock quantity is below zero.
	ErrProductStockNegative = errors.New("product stock quantity cannot be negative")

	// ErrMultiplePrimaryImages is returned when more than one image is marked primary.
	ErrMultiplePrimaryImages = errors.New("product can have only one primary image")

	// ErrPrimaryImageRequired is returned when a product has images but none is primary.
	ErrPrimaryImageRequired = errors.New("product with images must have a primary image")

	// ErrImageLocationEmpty is returned when an image has no location.
	ErrImageLocationEmpty = errors.New("image location cannot be empty")
)

// ProductImage is a picture attached to a product. Exactly one image of a
// product with images is the primary image used in listings and baskets.
type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Location  string    `json:"location"`
	IsPrimary bool      `json:"is_primary"`
}

// Product is an item that can be placed in a basket or ordered.
// StockQuantity is the inventory ledger for the product and never goes negative.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Images        []ProductImage  `json:"images,omitempty"`
	AddedDate     time.Time       `json:"added_date"`
	LastModified  time.Time       `json:"last_modified"`
}

// NewProduct creates a new Product with a fresh ID and timestamps.
// Image locations are attached in order; the first image becomes primary.
// Returns an error if validation fails.
func NewProduct(
	name, description string,
	price decimal.Decimal,
	stockQuantity int,
	imageLocations ...string,
) (*Product, error) {
	now := time.Now().UTC()
	product := &Product{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(name),
		Description:   description,
		Price:         price,
		StockQuantity: stockQuantity,
		AddedDate:     now,
		LastModified:  now,
	}

	for i, location := range imageLocations {
		product.Images = append(product.Images, ProductImage{
			ID:        uuid.New(),
			ProductID: product.ID,
			Location:  location,
			IsPrimary: i == 0,
		})
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate checks if the Product has valid data.
func (p *Product) Validate() error {
	if p.ID == uuid.Nil {
		return ErrProductIDEmpty
	}

	if p.Name == "" {
		return ErrProductNameEmpty
	}

	if p.Price.IsNegative() {
		return ErrProductPriceNegative
	}

	if p.StockQuantity < 0 {
		return ErrProductStockNegative
	}

	primaries := 0
	for _, img := range p.Images {
		if img.Location == "" {
			return ErrImageLocationEmpty
		}
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return ErrMultiplePrimaryImages
	}
	if len(p.Images) > 0 && primaries == 0 {
		return ErrPrimaryImageRequired
	}

	return nil
}

// PrimaryImage returns the primary image, or nil if the product has none.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return nil
}

// AssertSufficientStock fails with an *InsufficientStockError when the product
// cannot cover the requested quantity. It never modifies the product.
func (p *Product) AssertSufficientStock(requested int) error {
	if p.StockQuantity < requested {
		return &InsufficientStockError{
			ProductName: p.Name,
			Available:   p.StockQuantity,
			Requested:   requested,
		}
	}
	return nil
}

// AssertSufficientStockToAdd checks that held units already reserved plus
// additional new units fit in the stock. The comparison never adds the two, so
// very large quantities are rejected rather than wrapping around.
func (p *Product) AssertSufficientStockToAdd(held, additional int) error {
	if additional > p.StockQuantity-held {
		requested := math.MaxInt
		if additional <= math.MaxInt-held {
			requested = held + additional
		}
		return &InsufficientStockError{
			ProductName: p.Name,
			Available:   p.StockQuantity,
			Requested:   requested,
		}
	}
	return nil
}

// ReduceStock deducts quantity from the stock after re-checking sufficiency.
// On failure the stock is left untouched.
func (p *Product) ReduceStock(quantity int) error {
	if quantity <= 0 {
		return NewValidationError("quantity", "must be greater than zero", ErrInvalidQuantity)
	}

	if err := p.AssertSufficientStock(quantity); err != nil {
		return err
	}

	p.StockQuantity -= quantity
	p.LastModified = time.Now().UTC()
	return nil
}

// LineTotal returns price × quantity for this product.
func (p *Product) LineTotal(quantity int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(quantity)))
}
