package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	MessagesReceived   *prometheus.CounterVec
	Registrations      prometheus.Counter
	OptStateChanges    *prometheus.CounterVec
	RateLimited        *prometheus.CounterVec
	UpstreamFetchSecs  prometheus.Histogram
	UpstreamErrors     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		MessagesReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hampuff_messages_received_total",
			Help: "Inbound messages by channel and classified command",
		}, []string{"channel", "command"}),
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hampuff_registrations_total",
			Help: "Registration upserts accepted",
		}),
		OptStateChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hampuff_opt_state_changes_total",
			Help: "Opt-in and opt-out transitions",
		}, []string{"action"}),
		RateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hampuff_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		}, []string{"class"}),
		UpstreamFetchSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hampuff_upstream_fetch_seconds",
			Help:    "Latency of solar data fetches from hamqsl.com",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		UpstreamErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hampuff_upstream_errors_total",
			Help: "Failed solar data fetches",
		}),
	}
}
