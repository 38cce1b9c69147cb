package lock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storelock/storelock/logger"
	"github.com/storelock/storelock/store"
)

// manager implements the Manager interface.
type manager struct {
	store store.Store
	key   string

	maxAttempts    int
	acquireTimeout time.Duration
	staleTimeout   time.Duration
	minSleep       time.Duration
	maxSleep       time.Duration

	clock   Clock
	rand    Rand
	logger  logger.Logger
	metrics Metrics
}

// NewManager creates a Manager bound to key on top of s.
//
// The stale-lock threshold is derived from the execution budget declared via
// WithExecutionBudget, floored at MinStaleTimeout. All other tunables default
// to the package constants.
func NewManager(s store.Store, key string, opts ...Option) (Manager, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = NewStandardClock()
	}
	if cfg.Rand == nil {
		cfg.Rand = NewStandardRand()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewNoOpMetrics()
	}

	staleTimeout := cfg.ExecutionBudget
	if staleTimeout < MinStaleTimeout {
		staleTimeout = MinStaleTimeout
	}

	return &manager{
		store:          s,
		key:            key,
		maxAttempts:    cfg.MaxAttempts,
		acquireTimeout: cfg.AcquireTimeout,
		staleTimeout:   staleTimeout,
		minSleep:       cfg.MinSleep,
		maxSleep:       cfg.MaxSleep,
		clock:          cfg.Clock,
		rand:           cfg.Rand,
		logger:         cfg.Logger.WithComponent("lock").WithLockKey(key),
		metrics:        cfg.Metrics,
	}, nil
}

// Key returns the lock key this manager is bound to.
func (m *manager) Key() string {
	return m.key
}

// StaleTimeout returns the derived stale-lock threshold.
func (m *manager) StaleTimeout() time.Duration {
	return m.staleTimeout
}

// Acquire attempts to obtain exclusive ownership of the lock key.
//
// The loop honors three bounds independently: the acquire timeout (checked
// against elapsed wall-clock time before every attempt, including the first),
// the attempt budget, and ctx. Whichever trips first ends the call. A failed
// attempt is followed by a staleness check so abandoned records never block
// waiters forever; the check runs only after a failure to keep the free-lock
// fast path down to a single store call.
func (m *manager) Acquire(ctx context.Context) bool {
	start := m.clock.Now()

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return m.giveUp(FailureCanceled, start, attempt)
		}
		if m.clock.Since(start) > m.acquireTimeout {
			return m.giveUp(FailureTimeout, start, attempt)
		}

		if m.tryInsert(ctx) {
			return m.acquired(start, attempt)
		}

		// The record may belong to a holder that crashed mid-critical-section.
		// Reclaim it and immediately contend for the freed slot; losing that
		// race means another waiter won, so fall through to backoff.
		if m.reclaimStale(ctx) {
			won := m.tryInsert(ctx)
			m.metrics.IncrStaleReclaim(m.key, won)
			if won {
				return m.acquired(start, attempt)
			}
		}

		if attempt >= m.maxAttempts {
			return m.giveUp(FailureExhausted, start, attempt)
		}

		sleep := m.backoff()
		m.metrics.ObserveBackoff(m.key, sleep)
		select {
		case <-ctx.Done():
			return m.giveUp(FailureCanceled, start, attempt)
		case <-m.clock.After(sleep):
		}
	}
}

// Release unconditionally deletes the lock record for the key.
//
// It is intended for the legitimate holder after its critical section, but
// the deletion is not conditional on ownership: a release racing a competing
// reclamation can remove a record the caller no longer owns. That window is
// accepted because the stale threshold is derived from the holder's maximum
// legitimate runtime.
func (m *manager) Release(ctx context.Context) error {
	if err := m.store.Delete(ctx, m.key); err != nil {
		m.metrics.IncrRelease(m.key, false)
		m.logger.Errorw("failed to release lock", "error", err)
		return fmt.Errorf("release lock %q: %w", m.key, err)
	}
	m.metrics.IncrRelease(m.key, true)
	m.logger.Debugw("released lock")
	return nil
}

// tryInsert performs exactly one atomic insert-if-absent. A store error is
// treated as a contended attempt, left to the surrounding retry loop.
func (m *manager) tryInsert(ctx context.Context) bool {
	created, err := m.store.InsertIfAbsent(ctx, m.key)
	if err != nil {
		m.logger.Warnw("store insert failed, treating attempt as contended", "error", err)
		m.metrics.IncrAcquireAttempt(m.key, false)
		return false
	}
	m.metrics.IncrAcquireAttempt(m.key, created)
	return created
}

// reclaimStale inspects the current record and forcibly deletes it when its
// age exceeds the stale threshold. It reports whether a deletion happened.
// A record at or under the threshold is never touched.
func (m *manager) reclaimStale(ctx context.Context) bool {
	acquiredAt, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		m.logger.Warnw("store read failed during staleness check", "error", err)
		return false
	}
	if !ok {
		// Freed between our attempt and the read; the next attempt will race for it.
		return false
	}

	age := m.clock.Since(acquiredAt)
	if age <= m.staleTimeout {
		return false
	}

	if err := m.store.Delete(ctx, m.key); err != nil {
		m.logger.Warnw("failed to delete stale lock", "error", err, "age", age)
		return false
	}
	m.logger.Warnw("forcibly reclaimed stale lock",
		"age", age,
		"stale_timeout", m.staleTimeout,
	)
	return true
}

// backoff draws a sleep duration uniformly from [minSleep, maxSleep], both
// bounds inclusive. The width is constant per attempt; only the draw is
// randomized.
func (m *manager) backoff() time.Duration {
	span := int64(m.maxSleep - m.minSleep)
	if span <= 0 {
		return m.minSleep
	}
	return m.minSleep + time.Duration(m.rand.Int64N(span+1))
}

func (m *manager) acquired(start time.Time, attempt int) bool {
	latency := m.clock.Since(start)
	contested := attempt > 1
	m.metrics.ObserveAcquireLatency(m.key, latency, contested)
	m.logger.Debugw("acquired lock",
		"attempt", attempt,
		"latency", latency,
	)
	return true
}

func (m *manager) giveUp(reason FailureReason, start time.Time, attempt int) bool {
	m.metrics.IncrAcquireFailure(m.key, reason)
	switch reason {
	case FailureTimeout:
		m.logger.Warnw("failed to acquire lock before timeout",
			"acquire_timeout", m.acquireTimeout,
			"attempts", attempt,
		)
	case FailureExhausted:
		m.logger.Warnw("failed to acquire lock, attempts exhausted",
			"max_attempts", m.maxAttempts,
			"elapsed", m.clock.Since(start),
		)
	case FailureCanceled:
		m.logger.Infow("lock acquisition canceled",
			"attempts", attempt,
			"elapsed", m.clock.Since(start),
		)
	}
	return false
}
