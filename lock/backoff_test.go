package lock

import (
	"testing"
	"time"

	"github.com/storelock/storelock/store"
	"github.com/storelock/storelock/testutil"
)

func newBackoffManager(t *testing.T, opts ...Option) *manager {
	t.Helper()
	m, err := NewManager(store.NewMemory(), testKey, opts...)
	testutil.RequireNoError(t, err)
	return m.(*manager)
}

func TestBackoffWithinBounds(t *testing.T) {
	m := newBackoffManager(t)

	for i := 0; i < 1000; i++ {
		d := m.backoff()
		testutil.AssertTrue(t, d >= DefaultMinSleep, "draw %v below min %v", d, DefaultMinSleep)
		testutil.AssertTrue(t, d <= DefaultMaxSleep, "draw %v above max %v", d, DefaultMaxSleep)
	}
}

func TestBackoffBoundsAreInclusive(t *testing.T) {
	low := newBackoffManager(t, WithRand(minRand{}))
	testutil.AssertEqual(t, DefaultMinSleep, low.backoff())

	high := newBackoffManager(t, WithRand(maxRand{}))
	testutil.AssertEqual(t, DefaultMaxSleep, high.backoff())
}

func TestBackoffDegenerateRange(t *testing.T) {
	m := newBackoffManager(t, WithSleepBounds(250*time.Millisecond, 250*time.Millisecond))

	for i := 0; i < 10; i++ {
		testutil.AssertEqual(t, 250*time.Millisecond, m.backoff())
	}
}

func TestBackoffIsNotExponential(t *testing.T) {
	m := newBackoffManager(t, WithRand(maxRand{}))

	// The width is constant per attempt; consecutive draws at the same rand
	// position must not grow.
	first := m.backoff()
	for i := 0; i < 5; i++ {
		testutil.AssertEqual(t, first, m.backoff())
	}
}
