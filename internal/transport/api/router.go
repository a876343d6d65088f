package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	platformmw "hampuff/internal/platform/middleware"
	"hampuff/internal/ratelimit"
	"hampuff/internal/transport/sms"
)

// NewRouter assembles the full HTTP surface: the SMS webhook, both API
// families, admin, health, and metrics, behind the shared middleware
// chain.
func NewRouter(h *Handler, smsHandler *sms.Handler, rl *ratelimit.Middleware, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(platformmw.Recovery(logger))
	r.Use(platformmw.RequestID)
	r.Use(platformmw.ClientIP)
	r.Use(platformmw.Logger(logger))
	r.Use(platformmw.NoCache)

	smsHandler.Register(r)
	h.Register(r, rl)
	return r
}
