package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

// CartGateway is the cart surface of the Shopify client.
type CartGateway interface {
	CreateCart(ctx context.Context, items []shopify.CartItem) (*shopify.Cart, error)
	GetCart(ctx context.Context, cartID string) (*shopify.Cart, error)
	AddToCart(ctx context.Context, cartID string, items []shopify.CartItem) (*shopify.Cart, error)
	UpdateCartLines(ctx context.Context, cartID string, updates []shopify.LineUpdate) (*shopify.Cart, error)
	RemoveFromCart(ctx context.Context, cartID string, lineIDs []string) (*shopify.Cart, error)
}

type CartHandler struct {
	gateway CartGateway
	logger  *zap.Logger
}

func NewCartHandler(gateway CartGateway, logger *zap.Logger) *CartHandler {
	return &CartHandler{gateway: gateway, logger: logger}
}

type createCartRequestDTO struct {
	Items []shopify.CartItem `json:"items"`
}

type addLinesRequestDTO struct {
	CartID string             `json:"cartId"`
	Items  []shopify.CartItem `json:"items"`
}

type updateLinesRequestDTO struct {
	CartID      string               `json:"cartId"`
	LineUpdates []shopify.LineUpdate `json:"lineUpdates"`
}

type removeLinesRequestDTO struct {
	CartID  string   `json:"cartId"`
	LineIDs []string `json:"lineIds"`
}

func validItems(items []shopify.CartItem) bool {
	for _, item := range items {
		if item.VariantID == "" || item.Quantity <= 0 {
			return false
		}
	}
	return true
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validItems(req.Items) {
		respondError(w, http.StatusBadRequest, "items require a variantId and a positive quantity")
		return
	}

	cart, err := h.gateway.CreateCart(r.Context(), req.Items)
	if err != nil {
		h.respondGatewayError(w, r, err, "Failed to create cart")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID := r.URL.Query().Get("id")
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "Cart ID is required")
		return
	}

	cart, err := h.gateway.GetCart(r.Context(), cartID)
	if errors.Is(err, shopify.ErrCartNotFound) {
		respondError(w, http.StatusNotFound, "Cart not found")
		return
	}
	if err != nil {
		h.respondGatewayError(w, r, err, "Failed to fetch cart")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *CartHandler) AddLines(w http.ResponseWriter, r *http.Request) {
	var req addLinesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CartID == "" {
		respondError(w, http.StatusBadRequest, "Cart ID is required")
		return
	}
	if len(req.Items) == 0 || !validItems(req.Items) {
		respondError(w, http.StatusBadRequest, "items require a variantId and a positive quantity")
		return
	}

	cart, err := h.gateway.AddToCart(r.Context(), req.CartID, req.Items)
	if err != nil {
		h.respondGatewayError(w, r, err, "Failed to add to cart")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *CartHandler) UpdateLines(w http.ResponseWriter, r *http.Request) {
	var req updateLinesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CartID == "" {
		respondError(w, http.StatusBadRequest, "Cart ID is required")
		return
	}
	if len(req.LineUpdates) == 0 {
		respondError(w, http.StatusBadRequest, "Line updates array is required")
		return
	}
	for _, u := range req.LineUpdates {
		if u.ID == "" || u.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "line updates require an id and a positive quantity")
			return
		}
	}

	cart, err := h.gateway.UpdateCartLines(r.Context(), req.CartID, req.LineUpdates)
	if err != nil {
		h.respondGatewayError(w, r, err, "Failed to update cart")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *CartHandler) RemoveLines(w http.ResponseWriter, r *http.Request) {
	var req removeLinesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CartID == "" {
		respondError(w, http.StatusBadRequest, "Cart ID is required")
		return
	}
	if len(req.LineIDs) == 0 {
		respondError(w, http.StatusBadRequest, "Line IDs array is required")
		return
	}

	cart, err := h.gateway.RemoveFromCart(r.Context(), req.CartID, req.LineIDs)
	if err != nil {
		h.respondGatewayError(w, r, err, "Failed to remove from cart")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

// respondGatewayError keeps remote user-error messages and hides
// everything else behind a fixed per-route message.
func (h *CartHandler) respondGatewayError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var userErr *shopify.UserError
	if errors.As(err, &userErr) {
		respondError(w, http.StatusBadRequest, userErr.Message)
		return
	}
	h.logger.Error("cart gateway error",
		zap.String("request_id", getRequestID(r.Context())),
		zap.Error(err))
	respondError(w, http.StatusInternalServerError, fallback)
}
