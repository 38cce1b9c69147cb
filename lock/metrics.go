package lock

import "time"

// FailureReason classifies why an Acquire call returned false.
type FailureReason string

const (
	// FailureTimeout indicates the acquire timeout elapsed before the lock was obtained.
	FailureTimeout FailureReason = "timeout"

	// FailureExhausted indicates the attempt budget ran out before the timeout.
	FailureExhausted FailureReason = "exhausted"

	// FailureCanceled indicates the caller's context was canceled mid-acquisition.
	FailureCanceled FailureReason = "canceled"
)

// Metrics defines the interface for recording metrics related to lock
// operations. All methods must be safe for concurrent use.
type Metrics interface {
	// IncrAcquireAttempt increments counters for individual insert attempts.
	// `success` indicates whether this attempt obtained the lock.
	IncrAcquireAttempt(key string, success bool)

	// IncrAcquireFailure increments counters for Acquire calls that returned false.
	IncrAcquireFailure(key string, reason FailureReason)

	// IncrStaleReclaim increments counters for forced reclamations of stale records.
	// `success` indicates whether the reclaiming caller then won the re-insert race.
	IncrStaleReclaim(key string, success bool)

	// IncrRelease increments counters for release requests.
	IncrRelease(key string, success bool)

	// ObserveAcquireLatency records how long a successful Acquire call took.
	// `contested` is true if the lock was not obtained on the first attempt.
	ObserveAcquireLatency(key string, latency time.Duration, contested bool)

	// ObserveBackoff records a backoff sleep drawn before a retry.
	ObserveBackoff(key string, d time.Duration)
}

// noOpMetrics is a Metrics implementation that discards all observations.
type noOpMetrics struct{}

// NewNoOpMetrics returns a Metrics implementation that records nothing.
func NewNoOpMetrics() Metrics {
	return noOpMetrics{}
}

func (noOpMetrics) IncrAcquireAttempt(string, bool) {}

func (noOpMetrics) IncrAcquireFailure(string, FailureReason) {}

func (noOpMetrics) IncrStaleReclaim(string, bool) {}

func (noOpMetrics) IncrRelease(string, bool) {}

func (noOpMetrics) ObserveAcquireLatency(string, time.Duration, bool) {}

func (noOpMetrics) ObserveBackoff(string, time.Duration) {}
