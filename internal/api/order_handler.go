package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/shopspring/decimal"
)

// OrderHandler handles order requests.
type OrderHandler struct {
	orders service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{
		orders: orders,
		logger: logger.With(slog.String("component", "order_handler")),
	}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateOrderRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("total_amount", "must be a decimal number", domain.ErrValidation), "")
		return
	}

	userID := actor.UserID
	if req.UserID != "" {
		userID = uuid.MustParse(req.UserID)
	}

	lines := make([]service.OrderLineCommand, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, service.OrderLineCommand{ProductID: uuid.MustParse(l.ProductID), Quantity: l.Quantity})
	}

	order, err := h.orders.CreateOrder(r.Context(), actor, service.CreateOrderCommand{
		UserID:      userID,
		TotalAmount: total,
		Lines:       lines,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create order")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, orderToView(order))
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := handleActorAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), actor, orderID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get order")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, orderToView(order))
}

// ListOrders handles GET /api/users/{userID}/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor, userID, ok := handleActorAndPathUUID(w, r, "userID", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), actor, userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list orders")
		return
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderToView(o))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, views)
}
