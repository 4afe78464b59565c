package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/mail"
)

type ContactHandler struct {
	mailer mail.Mailer
	from   string
	to     string
	logger *zap.Logger
}

func NewContactHandler(mailer mail.Mailer, from, to string, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{mailer: mailer, from: from, to: to, logger: logger}
}

type contactRequestDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	name := strings.TrimSpace(req.FirstName + " " + req.LastName)
	subject := strings.TrimSpace("New contact form submission from " + name)
	body := fmt.Sprintf(
		"New contact submission\n\nName: %s\nEmail: %s\nPhone: %s\n\nMessage:\n%s",
		name, req.Email, req.Phone, req.Message)

	if err := h.mailer.Send(r.Context(), h.from, h.to, subject, body); err != nil {
		h.logger.Error("contact mail failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
