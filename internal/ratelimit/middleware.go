package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	platformmw "hampuff/internal/platform/middleware"
	"hampuff/pkg/domainerrors"
)

// Middleware gates HTTP routes on the rate limit service, keyed by client
// IP. The SMS webhook does not use it; that channel keys on the sender
// phone number and checks inside the handler.
type Middleware struct {
	service *Service
	logger  *slog.Logger
}

// NewMiddleware creates the HTTP rate limiting middleware.
func NewMiddleware(service *Service, logger *slog.Logger) *Middleware {
	return &Middleware{service: service, logger: logger}
}

// LimitJSON enforces the class ceiling and renders rejections as the JSON
// error envelope.
func (m *Middleware) LimitJSON(class EndpointClass) func(http.Handler) http.Handler {
	return m.limit(class, writeJSONRejection)
}

// LimitPlain enforces the class ceiling and renders rejections as plain
// text, matching the text API's bodies.
func (m *Middleware) LimitPlain(class EndpointClass) func(http.Handler) http.Handler {
	return m.limit(class, writePlainRejection)
}

func (m *Middleware) limit(class EndpointClass, reject func(http.ResponseWriter, *Result)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			addr := platformmw.GetClientIP(ctx)

			result, err := m.service.Check(ctx, addr, class)
			if err != nil {
				// Fail open: losing the counter store must not take the
				// service down with it.
				m.logger.ErrorContext(ctx, "rate limit check failed", "error", err, "class", class)
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result)
			if !result.Allowed {
				reject(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addHeaders(w http.ResponseWriter, result *Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if !result.Allowed {
		h.Set("Retry-After", strconv.Itoa(result.RetryAfter))
	}
}

func writeJSONRejection(w http.ResponseWriter, result *Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":       string(domainerrors.CodeRateLimited),
		"message":     rejectionMessage(result),
		"retry_after": result.RetryAfter,
	})
}

func writePlainRejection(w http.ResponseWriter, result *Result) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintln(w, rejectionMessage(result))
}

func rejectionMessage(result *Result) string {
	return fmt.Sprintf("Rate limit exceeded. Try again in %s.",
		(time.Duration(result.RetryAfter) * time.Second).Round(time.Second))
}
