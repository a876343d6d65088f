// Package audit records registration lifecycle events for compliance
// review. Publishing is fail-open: a sink failure is logged and never fails
// the business operation that produced the event.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Action identifies what happened to a registration record.
type Action string

const (
	ActionRegistered Action = "registered"
	ActionUpdated    Action = "updated"
	ActionOptedIn    Action = "opted_in"
	ActionOptedOut   Action = "opted_out"
)

// Event is one audit trail entry.
type Event struct {
	ID             string    `json:"id"`
	Action         Action    `json:"action"`
	PhoneCanonical string    `json:"phone_canonical"`
	SourceIP       string    `json:"source_ip,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

const defaultTailSize = 256

// Publisher fans events out to an in-memory tail (served by the admin
// endpoint) and, when configured, a Kafka topic.
type Publisher struct {
	logger *slog.Logger
	kafka  *kgo.Client
	topic  string

	mu   sync.Mutex
	tail []Event
	max  int
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for sink error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithKafka attaches a Kafka producer sink writing to topic.
func WithKafka(client *kgo.Client, topic string) Option {
	return func(p *Publisher) {
		p.kafka = client
		p.topic = topic
	}
}

// WithTailSize overrides how many recent events the in-memory tail retains.
func WithTailSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.max = n
		}
	}
}

// NewPublisher creates an audit publisher.
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{max: defaultTailSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records the event. Missing id and timestamp are stamped here.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	p.mu.Lock()
	p.tail = append(p.tail, event)
	if len(p.tail) > p.max {
		p.tail = p.tail[len(p.tail)-p.max:]
	}
	p.mu.Unlock()

	if p.kafka == nil {
		return
	}
	value, err := json.Marshal(event)
	if err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "marshal audit event", "error", err)
		}
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.PhoneCanonical),
		Value: value,
	}
	p.kafka.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("audit kafka produce failed",
				"action", event.Action,
				"error", err,
			)
		}
	})
}

// Recent returns the retained tail, oldest first.
func (p *Publisher) Recent() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.tail))
	copy(out, p.tail)
	return out
}

// Close flushes and releases the Kafka producer, if any.
func (p *Publisher) Close(ctx context.Context) {
	if p.kafka == nil {
		return
	}
	if err := p.kafka.Flush(ctx); err != nil && p.logger != nil {
		p.logger.Error("audit kafka flush failed", "error", err)
	}
	p.kafka.Close()
}
