package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/service"
)

// BasketHandler handles basket and basket line requests.
type BasketHandler struct {
	baskets service.BasketService
	logger  *slog.Logger
}

// NewBasketHandler creates a new BasketHandler
func NewBasketHandler(baskets service.BasketService, logger *slog.Logger) *BasketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BasketHandler{
		baskets: baskets,
		logger:  logger.With(slog.String("component", "basket_handler")),
	}
}

// UpsertBasketLine handles POST /api/users/{userID}/basket/lines.
// It adds units of a product to the user's basket and returns the basket.
func (h *BasketHandler) UpsertBasketLine(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, userID, ok := handleActorAndPathUUID(w, r, "userID", log)
	if !ok {
		return
	}

	var req UpsertBasketLineRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	basket, err := h.baskets.UpsertBasketLine(r.Context(), actor, service.UpsertBasketLineCommand{
		UserID:    userID,
		ProductID: uuid.MustParse(req.ProductID),
		Quantity:  req.Quantity,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update basket")
		return
	}

	log.Debug("basket line upserted",
		slog.String("basket_id", basket.ID.String()),
		slog.String("product_id", req.ProductID),
		slog.Int("quantity", req.Quantity))
	shared.RespondWithJSON(w, r, http.StatusOK, basketToView(basket))
}

// GetBasketForUser handles GET /api/users/{userID}/basket
func (h *BasketHandler) GetBasketForUser(w http.ResponseWriter, r *http.Request) {
	actor, userID, ok := handleActorAndPathUUID(w, r, "userID", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	basket, err := h.baskets.GetBasketForUser(r.Context(), actor, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get basket")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, basketToView(basket))
}

// GetBasket handles GET /api/baskets/{id}
func (h *BasketHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	actor, basketID, ok := handleActorAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	basket, err := h.baskets.GetBasket(r.Context(), actor, basketID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get basket")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, basketToView(basket))
}

// SetBasketLineQuantity handles PUT /api/basket-lines/{id}.
// It responds 204 when the change emptied and deleted the basket.
func (h *BasketHandler) SetBasketLineQuantity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, lineID, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SetBasketLineQuantityRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	basket, err := h.baskets.SetBasketLineQuantity(r.Context(), actor, service.SetBasketLineQuantityCommand{
		LineID:   lineID,
		Quantity: *req.Quantity,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update basket line")
		return
	}

	if basket == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, basketToView(basket))
}

// DeleteBasketLine handles DELETE /api/basket-lines/{id}. Each call removes
// one unit from the line.
func (h *BasketHandler) DeleteBasketLine(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, lineID, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	outcome, err := h.baskets.DeleteBasketLine(r.Context(), actor, lineID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to remove basket line")
		return
	}

	log.Debug("basket line unit removed",
		slog.String("line_id", lineID.String()),
		slog.String("outcome", outcome.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteBasketLineResponse{Outcome: outcome.String()})
}
