package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

// AccountHandler serves authenticated reads and writes, gated by the
// presence of the session cookie.
type AccountHandler struct {
	gateway CustomerGateway
	logger  *zap.Logger
}

func NewAccountHandler(gateway CustomerGateway, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{gateway: gateway, logger: logger}
}

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		respondJSON(w, http.StatusUnauthorized, map[string]any{"customer": nil})
		return
	}
	customer, err := h.gateway.CustomerByToken(r.Context(), token)
	if err != nil {
		h.logger.Error("profile fetch failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]any{"customer": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

type profileUpdateDTO struct {
	Email            *string `json:"email"`
	FirstName        *string `json:"firstName"`
	LastName         *string `json:"lastName"`
	Phone            *string `json:"phone"`
	AcceptsMarketing *bool   `json:"acceptsMarketing"`
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Not signed in")
		return
	}
	var req profileUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	customer, err := h.gateway.CustomerUpdate(r.Context(), token, shopify.CustomerUpdateInput{
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		AcceptsMarketing: req.AcceptsMarketing,
	})
	if err != nil {
		var userErr *shopify.UserError
		if errors.As(err, &userErr) {
			respondError(w, http.StatusBadRequest, userErr.Message)
			return
		}
		h.logger.Error("profile update failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to update")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (h *AccountHandler) Orders(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		respondJSON(w, http.StatusUnauthorized, map[string]any{"orders": []shopify.Order{}})
		return
	}
	orders, err := h.gateway.CustomerOrders(r.Context(), token, 20)
	if err != nil {
		h.logger.Error("orders fetch failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]any{"orders": []shopify.Order{}})
		return
	}
	if orders == nil {
		orders = []shopify.Order{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// ChangePassword uses customerUpdate with a password field; the
// Storefront API has no dedicated change-password call.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Not signed in")
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Password required")
		return
	}

	if _, err := h.gateway.CustomerUpdate(r.Context(), token, shopify.CustomerUpdateInput{
		Password: &req.Password,
	}); err != nil {
		var userErr *shopify.UserError
		if errors.As(err, &userErr) {
			respondError(w, http.StatusBadRequest, userErr.Message)
			return
		}
		h.logger.Error("password update failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
