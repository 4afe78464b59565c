package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/catalog"
)

// WebhookHandler turns remote product/collection change notifications
// into catalog cache invalidations.
type WebhookHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

func NewWebhookHandler(svc *catalog.Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{catalog: svc, logger: logger}
}

type webhookPayload struct {
	Topic             string `json:"topic"`
	AdminGraphqlAPIID string `json:"admin_graphql_api_id"`
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("webhook decode failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}
	if topic := r.Header.Get("X-Shopify-Topic"); topic != "" {
		payload.Topic = topic
	}

	h.logger.Info("webhook received",
		zap.String("topic", payload.Topic),
		zap.String("resource", payload.AdminGraphqlAPIID),
		zap.String("hmac", r.Header.Get("X-Shopify-Hmac-Sha256")))

	revalidated := h.catalog.Invalidate(r.Context(), payload.Topic)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true, "revalidated": revalidated})
}

func (h *WebhookHandler) Describe(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Shopify webhook endpoint"})
}
