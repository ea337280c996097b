package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID   `json:"user_id"`
	Role         domain.Role `json:"role"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 time at which the access token expires
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateProductRequest defines the payload for adding a product.
// Price is a decimal string such as "19.99".
type CreateProductRequest struct {
	Name           string   `json:"name"            validate:"required,max=200"`
	Description    string   `json:"description"     validate:"max=2000"`
	Price          string   `json:"price"           validate:"required,numeric"`
	StockQuantity  int      `json:"stock_quantity"  validate:"gte=0"`
	ImageLocations []string `json:"image_locations" validate:"omitempty,dive,required,max=500"`
}

// UpsertBasketLineRequest adds units of a product to a user's basket.
type UpsertBasketLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"gt=0,lte=2147483647"`
}

// SetBasketLineQuantityRequest sets a basket line's quantity. Zero removes the line.
type SetBasketLineQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=2147483647"`
}

// OrderLineRequest is one product in a CreateOrderRequest.
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"gt=0,lte=2147483647"`
}

// CreateOrderRequest places an order. When UserID is empty the order is
// placed for the caller.
type CreateOrderRequest struct {
	UserID      string             `json:"user_id,omitempty" validate:"omitempty,uuid"`
	TotalAmount string             `json:"total_amount"      validate:"required,numeric"`
	Lines       []OrderLineRequest `json:"lines"             validate:"required,min=1,dive"`
}

// BasketLineView is a basket line with the product fields shown to shoppers.
type BasketLineView struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Price          string     `json:"price"`
	Quantity       int        `json:"quantity"`
	PrimaryImageID *uuid.UUID `json:"primary_image_id"`
	ImageLocation  *string    `json:"image_location"`
}

// BasketView is the response body for basket reads and mutations.
type BasketView struct {
	BasketID     uuid.UUID        `json:"basket_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Lines        []BasketLineView `json:"lines"`
	CreatedAt    time.Time        `json:"created_at"`
	TotalAmount  string           `json:"total_amount"`
	LastModified time.Time        `json:"last_modified"`
}

// DeleteBasketLineResponse reports the effect of removing one unit.
type DeleteBasketLineResponse struct {
	Outcome string `json:"outcome"`
}

// ProductImageView is a product image in a ProductView.
type ProductImageView struct {
	ID        uuid.UUID `json:"id"`
	Location  string    `json:"location"`
	IsPrimary bool      `json:"is_primary"`
}

// ProductView is the response body for product endpoints.
type ProductView struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Price         string             `json:"price"`
	StockQuantity int                `json:"stock_quantity"`
	Images        []ProductImageView `json:"images"`
	AddedDate     time.Time          `json:"added_date"`
	LastModified  time.Time          `json:"last_modified"`
}

// OrderLineView is a purchased product in an OrderView.
type OrderLineView struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// OrderView is the response body for order endpoints.
type OrderView struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	TotalAmount  string          `json:"total_amount"`
	Status       string          `json:"status"`
	Lines        []OrderLineView `json:"lines"`
	OrderDate    time.Time       `json:"order_date"`
	LastModified time.Time       `json:"last_modified"`
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func basketToView(b *domain.Basket) BasketView {
	lines := make([]BasketLineView, 0, len(b.Lines))
	for _, l := range b.Lines {
		view := BasketLineView{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		}
		if p := l.Product; p != nil {
			view.Name = p.Name
			view.Description = p.Description
			view.Price = formatMoney(p.Price)
			if img := p.PrimaryImage(); img != nil {
				id, location := img.ID, img.Location
				view.PrimaryImageID = &id
				view.ImageLocation = &location
			}
		}
		lines = append(lines, view)
	}

	return BasketView{
		BasketID:     b.ID,
		UserID:       b.UserID,
		Lines:        lines,
		CreatedAt:    b.CreatedAt,
		TotalAmount:  formatMoney(b.TotalAmount),
		LastModified: b.LastModified,
	}
}

func productToView(p *domain.Product) ProductView {
	images := make([]ProductImageView, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ProductImageView{ID: img.ID, Location: img.Location, IsPrimary: img.IsPrimary})
	}
	return ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         formatMoney(p.Price),
		StockQuantity: p.StockQuantity,
		Images:        images,
		AddedDate:     p.AddedDate,
		LastModified:  p.LastModified,
	}
}

func orderToView(o *domain.Order) OrderView {
	lines := make([]OrderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineView{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return OrderView{
		ID:           o.ID,
		UserID:       o.UserID,
		TotalAmount:  formatMoney(o.TotalAmount),
		Status:       string(o.Status),
		Lines:        lines,
		OrderDate:    o.OrderDate,
		LastModified: o.LastModified,
	}
}
