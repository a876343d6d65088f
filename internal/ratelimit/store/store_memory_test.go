package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const testWindow = time.Hour

type MemoryCounterStoreSuite struct {
	suite.Suite
	store *MemoryCounterStore
	ctx   context.Context
	clock time.Time
}

func TestMemoryCounterStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryCounterStoreSuite))
}

func (s *MemoryCounterStoreSuite) SetupTest() {
	s.store = NewMemoryCounterStore()
	s.ctx = context.Background()
	s.clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store.now = func() time.Time { return s.clock }
}

func (s *MemoryCounterStoreSuite) TestIncrCountsWithinWindow() {
	for want := 1; want <= 5; want++ {
		count, resetAt, err := s.store.Incr(s.ctx, "addr:lookup", testWindow)
		s.Require().NoError(err)
		s.Equal(want, count)
		s.Equal(s.clock.Add(testWindow), resetAt)
	}
}

func (s *MemoryCounterStoreSuite) TestWindowResetsAfterElapse() {
	count, _, err := s.store.Incr(s.ctx, "addr:lookup", testWindow)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.clock = s.clock.Add(testWindow + time.Minute)

	count, resetAt, err := s.store.Incr(s.ctx, "addr:lookup", testWindow)
	s.Require().NoError(err)
	s.Equal(1, count, "elapsed window must start a fresh bucket")
	s.Equal(s.clock.Add(testWindow), resetAt)
}

func (s *MemoryCounterStoreSuite) TestKeysAreIndependent() {
	_, _, err := s.store.Incr(s.ctx, "a:lookup", testWindow)
	s.Require().NoError(err)
	_, _, err = s.store.Incr(s.ctx, "a:lookup", testWindow)
	s.Require().NoError(err)

	count, _, err := s.store.Incr(s.ctx, "b:lookup", testWindow)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *MemoryCounterStoreSuite) TestReset() {
	_, _, err := s.store.Incr(s.ctx, "addr:register", testWindow)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Reset(s.ctx, "addr:register"))

	count, _, err := s.store.Incr(s.ctx, "addr:register", testWindow)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *MemoryCounterStoreSuite) TestConcurrentIncrsSameKey() {
	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _, err := s.store.Incr(s.ctx, "hot:lookup", testWindow)
			s.NoError(err)
		}()
	}
	wg.Wait()

	count, _, err := s.store.Incr(s.ctx, "hot:lookup", testWindow)
	s.Require().NoError(err)
	s.Equal(n+1, count, "no increment may be lost under contention")
}
