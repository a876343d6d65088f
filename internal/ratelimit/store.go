package ratelimit

import (
	"context"
	"time"
)

// CounterStore tracks fixed-window request counters. Incr must serialize
// increments per key so two concurrent checks cannot both observe a count
// under the ceiling once it is exhausted.
type CounterStore interface {
	// Incr bumps the counter for key, starting a fresh window when the
	// previous one has elapsed, and returns the post-increment count plus
	// the time the current window resets.
	Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}
