// Package ratelimit enforces per-client hourly quotas, grouped by endpoint
// class so related routes share one ceiling.
package ratelimit

import (
	"strings"
	"time"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassLookup covers propagation lookups and help.
	ClassLookup EndpointClass = "lookup"
	// ClassRegister covers registration submissions.
	ClassRegister EndpointClass = "register"
	// ClassOptState covers opt-in and opt-out.
	ClassOptState EndpointClass = "opt_state"
)

// IsValid checks if the endpoint class is one of the supported values.
func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassLookup, ClassRegister, ClassOptState:
		return true
	}
	return false
}

// Window is the fixed bucket length every class shares.
const Window = time.Hour

// DefaultLimits returns the hourly ceiling per endpoint class.
func DefaultLimits() map[EndpointClass]int {
	return map[EndpointClass]int{
		ClassLookup:   100,
		ClassRegister: 10,
		ClassOptState: 20,
	}
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// Key builds the bucket key for an address and class. Delimiter characters
// in the address are escaped so user-controlled input cannot collide with
// an adjacent bucket.
func Key(addr string, class EndpointClass) string {
	return sanitizeSegment(addr) + ":" + string(class)
}

func sanitizeSegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
