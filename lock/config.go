package lock

import (
	"time"

	"github.com/storelock/storelock/logger"
)

// Option defines a function that applies a configuration setting to a
// Manager during initialization.
type Option func(*Config)

// Config holds configuration parameters for a Manager instance.
// All fields are immutable after construction.
type Config struct {
	// MaxAttempts bounds how many insert attempts a single Acquire call may
	// spend before giving up.
	MaxAttempts int

	// AcquireTimeout bounds the wall-clock time a single Acquire call may
	// spend, measured from its first attempt. Either this or MaxAttempts can
	// terminate the loop first; both are honored.
	AcquireTimeout time.Duration

	// ExecutionBudget is the maximum time the hosting process or request is
	// allowed to run; zero if unknown. The stale-lock threshold is derived
	// from it: a live holder cannot outrun its own budget, so any record
	// older than the budget was left behind by a crashed holder.
	ExecutionBudget time.Duration

	// MinSleep and MaxSleep bound the jittered backoff between attempts.
	// Each sleep is drawn uniformly from [MinSleep, MaxSleep]; there is no
	// exponential growth across attempts.
	MinSleep time.Duration
	MaxSleep time.Duration

	Clock   Clock
	Rand    Rand
	Logger  logger.Logger
	Metrics Metrics
}

// DefaultConfig returns a Config with sensible defaults based on the
// predefined constants.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    DefaultMaxAttempts,
		AcquireTimeout: DefaultAcquireTimeout,
		MinSleep:       DefaultMinSleep,
		MaxSleep:       DefaultMaxSleep,
	}
}

// WithMaxAttempts sets the attempt budget for a single Acquire call.
func WithMaxAttempts(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxAttempts = n
		}
	}
}

// WithAcquireTimeout sets the wall-clock budget for a single Acquire call.
func WithAcquireTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.AcquireTimeout = d
		}
	}
}

// WithExecutionBudget declares the hosting process's execution-time budget.
// The stale-lock threshold becomes max(budget, MinStaleTimeout).
func WithExecutionBudget(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.ExecutionBudget = d
		}
	}
}

// WithSleepBounds sets the jittered backoff bounds. Both values must be
// positive and min must not exceed max.
func WithSleepBounds(min, max time.Duration) Option {
	return func(cfg *Config) {
		if min > 0 && max >= min {
			cfg.MinSleep = min
			cfg.MaxSleep = max
		}
	}
}

// WithClock sets the clock used for time-related operations in the manager.
func WithClock(clock Clock) Option {
	return func(cfg *Config) {
		if clock != nil {
			cfg.Clock = clock
		}
	}
}

// WithRand sets the randomness source used to draw backoff durations.
func WithRand(r Rand) Option {
	return func(cfg *Config) {
		if r != nil {
			cfg.Rand = r
		}
	}
}

// WithLogger sets the logger for internal events.
func WithLogger(l logger.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithMetrics sets the metrics collector for operational data.
func WithMetrics(m Metrics) Option {
	return func(cfg *Config) {
		if m != nil {
			cfg.Metrics = m
		}
	}
}
