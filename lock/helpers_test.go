package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/storelock/storelock/store"
)

// fakeClock drives the acquisition loop on virtual time: After advances the
// clock by the requested duration and fires immediately, so backoff sleeps
// cost nothing while elapsed-time accounting stays exact.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(t)
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// minRand always draws the lowest value, maxRand the highest, making backoff
// durations deterministic at either bound.
type minRand struct{}

func (minRand) Int64N(n int64) int64 { return 0 }

type maxRand struct{}

func (maxRand) Int64N(n int64) int64 { return n - 1 }

// capturingMetrics records every observation for assertions.
type capturingMetrics struct {
	mu        sync.Mutex
	attempts  []bool
	failures  []FailureReason
	reclaims  []bool
	releases  []bool
	latencies []time.Duration
	backoffs  []time.Duration
}

func (m *capturingMetrics) IncrAcquireAttempt(_ string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, success)
}

func (m *capturingMetrics) IncrAcquireFailure(_ string, reason FailureReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, reason)
}

func (m *capturingMetrics) IncrStaleReclaim(_ string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reclaims = append(m.reclaims, success)
}

func (m *capturingMetrics) IncrRelease(_ string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases = append(m.releases, success)
}

func (m *capturingMetrics) ObserveAcquireLatency(_ string, latency time.Duration, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies = append(m.latencies, latency)
}

func (m *capturingMetrics) ObserveBackoff(_ string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backoffs = append(m.backoffs, d)
}

func (m *capturingMetrics) backoffCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.backoffs)
}

func (m *capturingMetrics) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

func (m *capturingMetrics) lastFailure() (FailureReason, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.failures) == 0 {
		return "", false
	}
	return m.failures[len(m.failures)-1], true
}

// flakyStore fails the first failInserts insert calls with a transient error,
// then delegates to the wrapped store.
type flakyStore struct {
	store.Store

	mu          sync.Mutex
	failInserts int
}

var errStoreUnavailable = errors.New("store unavailable")

func (s *flakyStore) InsertIfAbsent(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	if s.failInserts > 0 {
		s.failInserts--
		s.mu.Unlock()
		return false, errStoreUnavailable
	}
	s.mu.Unlock()
	return s.Store.InsertIfAbsent(ctx, key)
}
