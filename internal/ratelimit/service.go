package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"hampuff/internal/platform/metrics"
)

// Service answers admit/reject decisions against per-class hourly ceilings.
type Service struct {
	store   CounterStore
	limits  map[EndpointClass]int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLimits overrides the default per-class ceilings.
func WithLimits(limits map[EndpointClass]int) Option {
	return func(s *Service) {
		s.limits = limits
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a rate limit service over the given counter store.
func NewService(store CounterStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		limits: DefaultLimits(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check increments the counter for (addr, class) and reports whether the
// request is admitted. Rejection is a typed result, not an error; an error
// return means the store itself failed.
func (s *Service) Check(ctx context.Context, addr string, class EndpointClass) (*Result, error) {
	limit := s.limits[class]

	count, resetAt, err := s.store.Incr(ctx, Key(addr, class), Window)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(0, limit-count),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = int(time.Until(resetAt).Seconds()) + 1
		if s.metrics != nil {
			s.metrics.RateLimited.WithLabelValues(string(class)).Inc()
		}
		s.logger.WarnContext(ctx, "rate limit exceeded",
			"class", class,
			"limit", limit,
			"retry_after_s", result.RetryAfter,
		)
	}
	return result, nil
}
