// Package sms is the telephony webhook adapter. It resolves the sender
// identity from the provider's form fields and answers in provider markup.
package sms

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hampuff/internal/response"
	"hampuff/internal/service"
)

// Handler handles inbound SMS webhooks.
type Handler struct {
	core   *service.Service
	logger *slog.Logger
}

// NewHandler creates the SMS webhook handler.
func NewHandler(core *service.Service, logger *slog.Logger) *Handler {
	return &Handler{core: core, logger: logger}
}

// Register mounts the webhook route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sms", h.handleSMS)
}

func (h *Handler) handleSMS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(r.Context(), "malformed webhook form", "error", err)
		response.WriteTwiML(w, "No message body received")
		return
	}

	body := r.PostFormValue("Body")
	from := r.PostFormValue("From")

	reply := h.core.HandleSMS(r.Context(), from, body)
	response.WriteTwiML(w, reply)
}
