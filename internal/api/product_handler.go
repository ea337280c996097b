package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/shopspring/decimal"
)

// ProductHandler handles catalogue requests.
type ProductHandler struct {
	products service.ProductService
	logger   *slog.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{
		products: products,
		logger:   logger.With(slog.String("component", "product_handler")),
	}
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateProductRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("price", "must be a decimal number", domain.ErrValidation), "")
		return
	}

	product, err := h.products.CreateProduct(r.Context(), actor, service.CreateProductCommand{
		Name:           req.Name,
		Description:    req.Description,
		Price:          price,
		StockQuantity:  req.StockQuantity,
		ImageLocations: req.ImageLocations,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create product")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, productToView(product))
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	product, err := h.products.GetProduct(r.Context(), productID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get product")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, productToView(product))
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	products, err := h.products.ListProducts(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list products")
		return
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, productToView(p))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, views)
}
