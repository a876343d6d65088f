package store

import (
	"context"
	"sync"
	"time"
)

// window is one fixed-length counting bucket.
type window struct {
	mu      sync.Mutex
	count   int
	startAt time.Time
}

// MemoryCounterStore implements ratelimit.CounterStore with fixed one-hour
// buckets in process memory. Each key owns its own lock; the table mutex
// only guards map access, so checks on distinct keys never contend.
type MemoryCounterStore struct {
	mu      sync.RWMutex
	windows map[string]*window

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryCounterStore creates an empty in-memory counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, windowLen time.Duration) (int, time.Time, error) {
	w := s.getOrCreate(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := s.now()
	if w.startAt.IsZero() || now.Sub(w.startAt) >= windowLen {
		w.count = 0
		w.startAt = now
	}
	w.count++
	return w.count, w.startAt.Add(windowLen), nil
}

func (s *MemoryCounterStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.windows, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryCounterStore) getOrCreate(key string) *window {
	s.mu.RLock()
	w, ok := s.windows[key]
	s.mu.RUnlock()
	if ok {
		return w
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok = s.windows[key]; ok {
		return w
	}
	w = &window{}
	s.windows[key] = w
	return w
}
