// Package service implements the registration and opt-in state machine on
// top of a registration.Store.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hampuff/internal/audit"
	"hampuff/internal/phone"
	"hampuff/internal/platform/metrics"
	"hampuff/internal/registration"
	"hampuff/pkg/domainerrors"
)

// Service owns RegistrationRecord lifetime. All operations normalize their
// phone argument first so callers may pass raw or canonical numbers.
type Service struct {
	store   registration.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
}

// New creates a registration service. metrics and auditor may be nil in
// tests.
func New(store registration.Store, logger *slog.Logger, m *metrics.Metrics, auditor *audit.Publisher) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		audit:   auditor,
	}
}

// RegisterParams carries one registration submission.
type RegisterParams struct {
	FullName  string
	CallSign  string
	PhoneRaw  string
	OptedIn   bool
	SourceIP  string
	UserAgent string
}

// Register validates and upserts a registration. Re-registering an existing
// canonical number overwrites name, call sign, and opt-in state on the
// existing record instead of erroring. The returned flag is true when a new
// record was created.
func (s *Service) Register(ctx context.Context, p RegisterParams) (registration.Record, bool, error) {
	if strings.TrimSpace(p.FullName) == "" {
		return registration.Record{}, false, domainerrors.New(domainerrors.CodeValidation, "full name is required")
	}
	if strings.TrimSpace(p.CallSign) == "" {
		return registration.Record{}, false, domainerrors.New(domainerrors.CodeValidation, "call sign is required")
	}

	canonical, err := phone.Normalize(p.PhoneRaw)
	if err != nil {
		return registration.Record{}, false, err
	}

	now := time.Now().UTC()
	rec, created, err := s.store.Upsert(ctx, registration.Record{
		ID:             uuid.NewString(),
		FullName:       strings.TrimSpace(p.FullName),
		CallSign:       strings.TrimSpace(p.CallSign),
		PhoneRaw:       strings.TrimSpace(p.PhoneRaw),
		PhoneCanonical: canonical,
		OptedIn:        p.OptedIn,
		CreatedAt:      now,
		UpdatedAt:      now,
		SourceIP:       p.SourceIP,
		UserAgent:      p.UserAgent,
	})
	if err != nil {
		return registration.Record{}, false, err
	}

	action := audit.ActionUpdated
	if created {
		action = audit.ActionRegistered
	}
	s.emit(ctx, action, rec, p.SourceIP, p.UserAgent)
	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	s.logger.InfoContext(ctx, "registration upserted",
		"call_sign", rec.CallSign,
		"created", created,
		"opted_in", rec.OptedIn,
	)
	return rec, created, nil
}

// FindByPhone looks up a record by raw or canonical phone number.
func (s *Service) FindByPhone(ctx context.Context, raw string) (registration.Record, error) {
	canonical, err := phone.Normalize(raw)
	if err != nil {
		return registration.Record{}, err
	}
	return s.store.FindByCanonical(ctx, canonical)
}

// OptIn sets opted_in on an existing record. Unknown numbers fail with
// CodeNotRegistered: consent must attach to an identity we hold.
func (s *Service) OptIn(ctx context.Context, raw string) (registration.Record, error) {
	canonical, err := phone.Normalize(raw)
	if err != nil {
		return registration.Record{}, err
	}
	rec, err := s.store.SetOptIn(ctx, canonical, true)
	if err != nil {
		return registration.Record{}, err
	}
	s.emit(ctx, audit.ActionOptedIn, rec, "", "")
	if s.metrics != nil {
		s.metrics.OptStateChanges.WithLabelValues(string(audit.ActionOptedIn)).Inc()
	}
	return rec, nil
}

// OptOut clears opted_in. Opting out a number we have never seen is a
// successful no-op, not an error: the caller's goal state already holds.
// The returned flag reports whether a record existed.
func (s *Service) OptOut(ctx context.Context, raw string) (registration.Record, bool, error) {
	canonical, err := phone.Normalize(raw)
	if err != nil {
		return registration.Record{}, false, err
	}
	rec, err := s.store.SetOptIn(ctx, canonical, false)
	if err != nil {
		if domainerrors.Is(err, domainerrors.CodeNotRegistered) {
			return registration.Record{}, false, nil
		}
		return registration.Record{}, false, err
	}
	s.emit(ctx, audit.ActionOptedOut, rec, "", "")
	if s.metrics != nil {
		s.metrics.OptStateChanges.WithLabelValues(string(audit.ActionOptedOut)).Inc()
	}
	return rec, true, nil
}

// IsOptedIn reports whether the number resolves to an opted-in record.
// Malformed or unknown numbers are simply not opted in.
func (s *Service) IsOptedIn(ctx context.Context, raw string) bool {
	rec, err := s.FindByPhone(ctx, raw)
	return err == nil && rec.OptedIn
}

// ListAll returns every record plus aggregate counts for administrative
// inspection.
func (s *Service) ListAll(ctx context.Context) (registration.Summary, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return registration.Summary{}, err
	}
	summary := registration.Summary{Records: records, Total: len(records)}
	for _, rec := range records {
		if rec.OptedIn {
			summary.OptedIn++
		}
	}
	return summary, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, rec registration.Record, ip, ua string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Event{
		Action:         action,
		PhoneCanonical: rec.PhoneCanonical,
		SourceIP:       ip,
		UserAgent:      ua,
	})
}
