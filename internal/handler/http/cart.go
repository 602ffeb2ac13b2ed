package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/service"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
	"github.com/avolkova/flowerdelivery/pkg/httputil"
	"github.com/avolkova/flowerdelivery/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Override  bool   `json:"override"`
}

// UpdateQuantitiesRequest is the JSON request body for batch quantity updates.
type UpdateQuantitiesRequest struct {
	// Quantities maps product IDs to raw quantity strings. A positive
	// integer replaces the quantity, zero or negative removes the line,
	// anything else skips the line.
	Quantities map[string]string `json:"quantities" validate:"required,min=1"`
}

// CartResponse is the JSON shape of a cart, with derived totals included.
type CartResponse struct {
	SessionID  string            `json:"session_id"`
	Items      []domain.CartItem `json:"items"`
	ItemCount  int               `json:"item_count"`
	TotalPrice decimal.Decimal   `json:"total_price"`
}

// cartUpdateResponse extends CartResponse with the product IDs a batch
// update could not apply.
type cartUpdateResponse struct {
	CartResponse
	Skipped []string `json:"skipped,omitempty"`
}

func toCartResponse(cart *domain.Cart) CartResponse {
	return CartResponse{
		SessionID:  cart.SessionID,
		Items:      cart.Items,
		ItemCount:  cart.ItemCount(),
		TotalPrice: cart.TotalPrice(),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("no session"), h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), sid)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(cart)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("no session"), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), sid, service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Override:  req.Override,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(cart)})
}

// UpdateQuantities handles PUT /api/v1/cart/items
func (h *CartHandler) UpdateQuantities(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("no session"), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateQuantitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, skipped, err := h.service.UpdateQuantities(r.Context(), sid, req.Quantities)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartUpdateResponse{
		CartResponse: toCartResponse(cart),
		Skipped:      skipped,
	}})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("no session"), h.logger)
		return
	}

	productID, okID := httputil.ParseUUID(w, chi.URLParam(r, "productID"))
	if !okID {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), sid, productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(cart)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("no session"), h.logger)
		return
	}

	if err := h.service.ClearCart(r.Context(), sid); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
