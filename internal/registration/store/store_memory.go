package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"hampuff/internal/registration"
)

// MemoryStore keeps registrations in process memory. Mutations are
// serialized per canonical phone number through a lock map so concurrent
// writes to the same number cannot interleave, while distinct numbers
// proceed in parallel. The table mutex only covers map reads and writes.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]registration.Record

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory registration store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]registration.Record),
		locks:   make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutation lock for a canonical number, creating it on
// first use. Locks are never removed; the key space is bounded by the
// number of registrations.
func (s *MemoryStore) keyLock(canonical string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[canonical]
	if !ok {
		l = &sync.Mutex{}
		s.locks[canonical] = l
	}
	return l
}

func (s *MemoryStore) Upsert(_ context.Context, rec registration.Record) (registration.Record, bool, error) {
	lock := s.keyLock(rec.PhoneCanonical)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	existing, ok := s.records[rec.PhoneCanonical]
	s.mu.RUnlock()

	created := !ok
	if ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}

	s.mu.Lock()
	s.records[rec.PhoneCanonical] = rec
	s.mu.Unlock()

	return rec, created, nil
}

func (s *MemoryStore) FindByCanonical(_ context.Context, canonical string) (registration.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[canonical]; ok {
		return rec, nil
	}
	return registration.Record{}, registration.ErrNotFound
}

func (s *MemoryStore) SetOptIn(_ context.Context, canonical string, optedIn bool) (registration.Record, error) {
	lock := s.keyLock(canonical)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	rec, ok := s.records[canonical]
	s.mu.RUnlock()
	if !ok {
		return registration.Record{}, registration.ErrNotFound
	}

	rec.OptedIn = optedIn
	rec.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.records[canonical] = rec
	s.mu.Unlock()

	return rec, nil
}

func (s *MemoryStore) List(_ context.Context) ([]registration.Record, error) {
	s.mu.RLock()
	out := make([]registration.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].PhoneCanonical < out[j].PhoneCanonical
	})
	return out, nil
}
