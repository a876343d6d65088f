// Package propagation wraps the hamqsl.com solar data feed. The feed is an
// external collaborator: this package fetches, caches, and renders its
// figures but owns none of them.
package propagation

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hampuff/internal/platform/metrics"
	"hampuff/pkg/domainerrors"
)

const (
	defaultBaseURL = "http://www.hamqsl.com/solarxml.php"
	userAgent      = "HamPuff/14.074/230926"
	fetchTimeout   = 10 * time.Second
	defaultCacheTTL = time.Minute
)

// Source provides the latest propagation report.
type Source interface {
	Report(ctx context.Context) (Report, error)
}

// Client fetches solarxml from hamqsl.com. Concurrent fetches are deduped
// through singleflight and results are cached briefly; the feed itself only
// updates every few minutes.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	ttl     time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	cached    Report
	fetchedAt time.Time
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the feed URL (tests point this at a local server).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithCacheTTL overrides how long a fetched report is served from cache.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a solar data client.
func NewClient(logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: fetchTimeout},
		logger:  logger,
		ttl:     defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report returns the latest propagation figures, from cache when fresh.
func (c *Client) Report(ctx context.Context) (Report, error) {
	c.mu.RLock()
	cached, fetchedAt := c.cached, c.fetchedAt
	c.mu.RUnlock()
	if !fetchedAt.IsZero() && time.Since(fetchedAt) < c.ttl {
		return cached, nil
	}

	v, err, _ := c.group.Do("solarxml", func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return Report{}, err
	}
	return v.(Report), nil
}

func (c *Client) fetch(ctx context.Context) (Report, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Report{}, fmt.Errorf("build solar request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, c.upstreamErr(ctx, fmt.Errorf("fetch solar data: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Report{}, c.upstreamErr(ctx, fmt.Errorf("solar feed returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Report{}, c.upstreamErr(ctx, fmt.Errorf("read solar response: %w", err))
	}

	report, err := parseSolarXML(body)
	if err != nil {
		return Report{}, c.upstreamErr(ctx, err)
	}

	if c.metrics != nil {
		c.metrics.UpstreamFetchSecs.Observe(time.Since(start).Seconds())
	}

	c.mu.Lock()
	c.cached = report
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return report, nil
}

func (c *Client) upstreamErr(ctx context.Context, err error) error {
	if c.metrics != nil {
		c.metrics.UpstreamErrors.Inc()
	}
	c.logger.ErrorContext(ctx, "solar data fetch failed", "error", err)
	return domainerrors.New(domainerrors.CodeUpstreamUnavailable,
		"unable to retrieve propagation data at this time")
}

type solarXML struct {
	XMLName xml.Name  `xml:"solar"`
	Data    solarData `xml:"solardata"`
}

type solarData struct {
	Updated   string `xml:"updated"`
	SolarFlux string `xml:"solarflux"`
	AIndex    string `xml:"aindex"`
	KIndex    string `xml:"kindex"`
	Sunspots  string `xml:"sunspots"`
	MUF       string `xml:"muf"`
	XRay      string `xml:"xray"`
	SolarWind string `xml:"solarwind"`
}

// hamqsl reports update times like "30 Aug 2026 1435 GMT".
const feedTimeLayout = "02 Jan 2006 1504 MST"

func parseSolarXML(body []byte) (Report, error) {
	var doc solarXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return Report{}, fmt.Errorf("parse solar xml: %w", err)
	}

	updated, err := time.Parse(feedTimeLayout, strings.TrimSpace(doc.Data.Updated))
	if err != nil {
		return Report{}, fmt.Errorf("parse solar update time %q: %w", doc.Data.Updated, err)
	}

	return Report{
		Updated:   updated.UTC(),
		SolarFlux: strings.TrimSpace(doc.Data.SolarFlux),
		AIndex:    strings.TrimSpace(doc.Data.AIndex),
		KIndex:    strings.TrimSpace(doc.Data.KIndex),
		Sunspots:  strings.TrimSpace(doc.Data.Sunspots),
		MUF:       strings.TrimSpace(doc.Data.MUF),
		XRay:      strings.TrimSpace(doc.Data.XRay),
		SolarWind: strings.TrimSpace(doc.Data.SolarWind),
	}, nil
}
