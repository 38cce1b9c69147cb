package lock

import "time"

// Time
const (
	// DefaultAcquireTimeout is the wall-clock budget for a single Acquire call.
	DefaultAcquireTimeout = 5 * time.Second

	// DefaultMinSleep is the lower bound of the jittered backoff between attempts.
	DefaultMinSleep = 100 * time.Millisecond

	// DefaultMaxSleep is the upper bound of the jittered backoff between attempts.
	DefaultMaxSleep = 500 * time.Millisecond

	// MinStaleTimeout is the floor for the stale-lock threshold. A lock record
	// younger than this is never reclaimed, whatever execution budget the
	// caller declared.
	MinStaleTimeout = 15 * time.Second
)

// Capacity
const (
	// DefaultMaxAttempts is the number of insert attempts an Acquire call may
	// spend before giving up, independent of the acquire timeout.
	DefaultMaxAttempts = 10
)
