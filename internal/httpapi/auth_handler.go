package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

// CustomerGateway is the customer surface of the Shopify client.
type CustomerGateway interface {
	CustomerCreate(ctx context.Context, input shopify.CustomerCreateInput) (*shopify.Customer, error)
	AccessTokenCreate(ctx context.Context, email, password string) (*shopify.AccessToken, error)
	AccessTokenRenew(ctx context.Context, token string) (*shopify.AccessToken, error)
	AccessTokenDelete(ctx context.Context, token string) error
	CustomerByToken(ctx context.Context, token string) (*shopify.Customer, error)
	CustomerUpdate(ctx context.Context, token string, update shopify.CustomerUpdateInput) (*shopify.Customer, error)
	CustomerOrders(ctx context.Context, token string, first int) ([]shopify.Order, error)
	CustomerRecover(ctx context.Context, email string) error
	CustomerReset(ctx context.Context, id, resetToken, password string) error
}

type AuthHandler struct {
	gateway      CustomerGateway
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthHandler(gateway CustomerGateway, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{gateway: gateway, cookieSecure: cookieSecure, logger: logger}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token *shopify.AccessToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token.Token,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

type credentialsDTO struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	token, err := h.gateway.AccessTokenCreate(r.Context(), req.Email, req.Password)
	if err != nil {
		var userErr *shopify.UserError
		if errors.As(err, &userErr) {
			respondError(w, http.StatusUnauthorized, userErr.Message)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	customer, err := h.gateway.CustomerCreate(r.Context(), shopify.CustomerCreateInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		var userErr *shopify.UserError
		if errors.As(err, &userErr) {
			respondError(w, http.StatusBadRequest, userErr.Message)
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to signup")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

// Logout invalidates the remote token best-effort and always clears the
// cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.gateway.AccessTokenDelete(r.Context(), token); err != nil {
			h.logger.Warn("token delete failed on logout", zap.Error(err))
		}
	}
	h.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me reports the signed-in customer, or null when the session is absent
// or invalid. Always 200: an anonymous visitor is not an error.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		respondJSON(w, http.StatusOK, map[string]any{"customer": nil})
		return
	}
	customer, err := h.gateway.CustomerByToken(r.Context(), token)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{"customer": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "No token")
		return
	}

	renewed, err := h.gateway.AccessTokenRenew(r.Context(), token)
	if err != nil {
		var userErr *shopify.UserError
		if errors.As(err, &userErr) {
			h.clearSessionCookie(w)
			respondError(w, http.StatusUnauthorized, "Failed to renew")
			return
		}
		h.logger.Error("token renew failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to refresh")
		return
	}

	h.setSessionCookie(w, renewed)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email required")
		return
	}

	if err := h.gateway.CustomerRecover(r.Context(), req.Email); err != nil {
		var userErr *shopify.UserError
		if errors.As(err, &userErr) {
			respondError(w, http.StatusBadRequest, userErr.Message)
			return
		}
		h.logger.Error("recover failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to recover")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"`
		ResetToken string `json:"resetToken"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" || req.ResetToken == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "id, resetToken, password required")
		return
	}

	if err := h.gateway.CustomerReset(r.Context(), req.ID, req.ResetToken, req.Password); err != nil {
		var userErr *shopify.UserError
		if errors.As(err, &userErr) {
			respondError(w, http.StatusBadRequest, userErr.Message)
			return
		}
		h.logger.Error("reset failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to reset")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
