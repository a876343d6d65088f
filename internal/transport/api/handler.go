// Package api serves the text and JSON command APIs. Both mirror the SMS
// command families; the text surface answers with the exact SMS bodies and
// the JSON surface wraps the same content in a status envelope.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hampuff/internal/audit"
	"hampuff/internal/ratelimit"
	regsvc "hampuff/internal/registration/service"
	"hampuff/internal/response"
	"hampuff/internal/service"
)

// Handler is the thin HTTP layer over the dispatch core and registration
// service; it holds no business logic of its own.
type Handler struct {
	core          *service.Service
	registrations *regsvc.Service
	auditor       *audit.Publisher
	logger        *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(core *service.Service, registrations *regsvc.Service, auditor *audit.Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		core:          core,
		registrations: registrations,
		auditor:       auditor,
		logger:        logger,
	}
}

// Register mounts all API routes under /v1 plus the health and metrics
// probes at the root.
func (h *Handler) Register(r chi.Router, rl *ratelimit.Middleware) {
	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// Plain-text family.
		r.Group(func(r chi.Router) {
			r.Use(rl.LimitPlain(ratelimit.ClassLookup))
			r.Get("/help", h.handleHelpText)
			r.Get("/propagation/{tz}", h.handlePropagationText)
			r.Get("/prop/{tz}", h.handlePropagationText)
		})
		r.With(rl.LimitPlain(ratelimit.ClassRegister)).
			Post("/register", h.handleRegisterText)
		r.Group(func(r chi.Router) {
			r.Use(rl.LimitPlain(ratelimit.ClassOptState))
			for _, path := range []string{"/start/{phone}", "/register/{phone}"} {
				r.Get(path, h.handleOptInText)
				r.Post(path, h.handleOptInText)
			}
			for _, path := range []string{"/stop/{phone}", "/unregister/{phone}"} {
				r.Get(path, h.handleOptOutText)
				r.Post(path, h.handleOptOutText)
			}
		})

		// JSON family.
		r.Route("/json", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(rl.LimitJSON(ratelimit.ClassLookup))
				r.Get("/help", h.handleHelpJSON)
				r.Get("/propagation/{tz}", h.handlePropagationJSON)
				r.Get("/prop/{tz}", h.handlePropagationJSON)
			})
			r.With(rl.LimitJSON(ratelimit.ClassRegister)).
				Post("/register", h.handleRegisterJSON)
			r.Group(func(r chi.Router) {
				r.Use(rl.LimitJSON(ratelimit.ClassOptState))
				for _, path := range []string{"/start/{phone}", "/register/{phone}"} {
					r.Get(path, h.handleOptInJSON)
					r.Post(path, h.handleOptInJSON)
				}
				for _, path := range []string{"/stop/{phone}", "/unregister/{phone}"} {
					r.Get(path, h.handleOptOutJSON)
					r.Post(path, h.handleOptOutJSON)
				}
			})
		})

		// Administrative inspection; auth is enforced upstream of this
		// service.
		r.Get("/admin/registrations", h.handleAdminList)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "hampuff-sms",
	})
}
