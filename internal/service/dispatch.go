// Package service is the command dispatch core: it classifies inbound
// text, enforces rate limits and opt-in gating, and produces reply text.
// Channel adapters (the SMS webhook and the HTTP APIs) resolve sender
// identity before calling in; everything here works on explicit phone
// numbers.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hampuff/internal/command"
	"hampuff/internal/platform/metrics"
	"hampuff/internal/propagation"
	"hampuff/internal/ratelimit"
	regsvc "hampuff/internal/registration/service"
	"hampuff/pkg/domainerrors"
)

// Messages is the configurable reply copy.
type Messages struct {
	RegistrationURL string
	Consent         string
	Redirect        string
	WrongNumber     string
}

// Service dispatches classified commands to their handlers.
type Service struct {
	registrations *regsvc.Service
	source        propagation.Source
	limiter       *ratelimit.Service
	parser        *command.Parser
	msgs          Messages
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// New creates the dispatch core.
func New(
	registrations *regsvc.Service,
	source propagation.Source,
	limiter *ratelimit.Service,
	parser *command.Parser,
	msgs Messages,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		registrations: registrations,
		source:        source,
		limiter:       limiter,
		parser:        parser,
		msgs:          msgs,
		logger:        logger,
		metrics:       m,
	}
}

// HandleSMS processes one inbound SMS and returns the reply text. The SMS
// channel never surfaces errors as statuses; every failure becomes a
// friendly message.
func (s *Service) HandleSMS(ctx context.Context, from, body string) string {
	if strings.TrimSpace(body) == "" {
		return "No message body received"
	}

	cmd := s.parser.Parse(body)
	s.countMessage("sms", cmd.Kind)
	s.logger.InfoContext(ctx, "sms received", "command", cmd.Kind)

	// The webhook's remote address is the telephony provider, so the
	// sender's number is the rate limit subject.
	addr := from
	if addr == "" {
		addr = "unknown-sender"
	}
	result, err := s.limiter.Check(ctx, addr, ClassFor(cmd.Kind))
	if err != nil {
		// Fail open; the counter store being down is not the sender's
		// problem.
		s.logger.ErrorContext(ctx, "rate limit check failed", "error", err)
	} else if !result.Allowed {
		return fmt.Sprintf("You have reached the hourly limit. Try again in %s.",
			(time.Duration(result.RetryAfter) * time.Second).Round(time.Minute))
	}

	switch cmd.Kind {
	case command.KindHelp:
		return s.HelpText()
	case command.KindProfanity:
		return cmd.Note
	case command.KindRedirect:
		return s.msgs.Redirect
	case command.KindLegacyEastern, command.KindLegacyPacific, command.KindPropagation:
		return s.smsLookup(ctx, from, cmd.Timezone)
	case command.KindOptIn:
		return s.smsOptIn(ctx, pick(cmd.Phone, from))
	case command.KindOptOut:
		return s.smsOptOut(ctx, pick(cmd.Phone, from))
	}
	if cmd.Note != "" {
		return cmd.Note
	}
	return s.msgs.WrongNumber
}

// smsLookup gates propagation data behind the sender's opt-in record.
func (s *Service) smsLookup(ctx context.Context, from string, tz propagation.Timezone) string {
	if !s.registrations.IsOptedIn(ctx, from) {
		return "You are not registered for SMS service. Please visit our registration page to opt-in: " +
			s.msgs.RegistrationURL
	}
	text, err := s.Lookup(ctx, tz)
	if err != nil {
		return "Sorry, unable to retrieve propagation data at this time."
	}
	return text
}

func (s *Service) smsOptIn(ctx context.Context, phone string) string {
	_, err := s.registrations.OptIn(ctx, phone)
	switch {
	case err == nil:
		return "You are opted in to Hampuff SMS. Text STOP to opt out at any time."
	case domainerrors.Is(err, domainerrors.CodeNotRegistered):
		return "We don't have a registration for this number. Please register first: " +
			s.msgs.RegistrationURL
	case domainerrors.Is(err, domainerrors.CodeInvalidPhoneNumber):
		return domainerrors.MessageOf(err)
	}
	s.logger.ErrorContext(ctx, "opt-in failed", "error", err)
	return "Sorry, an error occurred processing your request."
}

func (s *Service) smsOptOut(ctx context.Context, phone string) string {
	_, _, err := s.registrations.OptOut(ctx, phone)
	switch {
	case err == nil:
		return "You are opted out of Hampuff SMS. Text START to opt back in."
	case domainerrors.Is(err, domainerrors.CodeInvalidPhoneNumber):
		return domainerrors.MessageOf(err)
	}
	s.logger.ErrorContext(ctx, "opt-out failed", "error", err)
	return "Sorry, an error occurred processing your request."
}

// Lookup fetches the propagation report and renders it for tz, including
// the consent footer. The rendering is identical across channels.
func (s *Service) Lookup(ctx context.Context, tz propagation.Timezone) (string, error) {
	_, text, err := s.LookupReport(ctx, tz)
	return text, err
}

// LookupReport is Lookup plus the structured report, for the JSON surface.
func (s *Service) LookupReport(ctx context.Context, tz propagation.Timezone) (propagation.Report, string, error) {
	report, err := s.source.Report(ctx)
	if err != nil {
		return propagation.Report{}, "", err
	}
	return report, report.Format(tz) + "\n\n" + s.msgs.Consent, nil
}

// HelpText lists the supported commands.
func (s *Service) HelpText() string {
	return "Hampuff commands:\n" +
		"prop <TZ> - propagation report (" + strings.Join(propagation.SupportedTokens(), ", ") + ")\n" +
		"hampuffe / hampuffp - Eastern or Pacific report\n" +
		"start or register - opt in to SMS replies\n" +
		"stop or unregister - opt out\n" +
		"help or ? - this message\n" +
		"Register at " + s.msgs.RegistrationURL
}

// CountMessage records an inbound message for a channel. Exposed so the
// HTTP adapters count through the same metric.
func (s *Service) CountMessage(channel string, kind command.Kind) {
	s.countMessage(channel, kind)
}

func (s *Service) countMessage(channel string, kind command.Kind) {
	if s.metrics != nil {
		s.metrics.MessagesReceived.WithLabelValues(channel, string(kind)).Inc()
	}
}

// ClassFor maps a command family to its rate limit class.
func ClassFor(kind command.Kind) ratelimit.EndpointClass {
	switch kind {
	case command.KindRegister:
		return ratelimit.ClassRegister
	case command.KindOptIn, command.KindOptOut:
		return ratelimit.ClassOptState
	}
	return ratelimit.ClassLookup
}

func pick(explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	return fallback
}
