// Package metrics provides a Prometheus-backed implementation of the lock
// package's Metrics interface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storelock/storelock/lock"
)

// Prometheus records lock operation metrics into a Prometheus registry.
// All methods are safe for concurrent use.
type Prometheus struct {
	attempts       *prometheus.CounterVec
	failures       *prometheus.CounterVec
	reclaims       *prometheus.CounterVec
	releases       *prometheus.CounterVec
	acquireLatency *prometheus.HistogramVec
	backoff        *prometheus.HistogramVec
}

var _ lock.Metrics = (*Prometheus)(nil)

// NewPrometheus registers the storelock collectors with reg and returns the
// collector set. Pass prometheus.DefaultRegisterer to use the default
// registry.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)

	return &Prometheus{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storelock",
			Name:      "acquire_attempts_total",
			Help:      "Insert attempts per lock key, by per-attempt outcome.",
		}, []string{"key", "success"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storelock",
			Name:      "acquire_failures_total",
			Help:      "Acquire calls that returned false, by failure reason.",
		}, []string{"key", "reason"}),
		reclaims: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storelock",
			Name:      "stale_reclaims_total",
			Help:      "Forced reclamations of stale lock records, by whether the reclaiming caller then won the re-insert race.",
		}, []string{"key", "won"}),
		releases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storelock",
			Name:      "releases_total",
			Help:      "Release requests per lock key.",
		}, []string{"key", "success"}),
		acquireLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storelock",
			Name:      "acquire_latency_seconds",
			Help:      "Time from first attempt to successful acquisition.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"key", "contested"}),
		backoff: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storelock",
			Name:      "backoff_seconds",
			Help:      "Backoff sleeps drawn between attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.025, 2, 8),
		}, []string{"key"}),
	}
}

// IncrAcquireAttempt implements lock.Metrics.
func (p *Prometheus) IncrAcquireAttempt(key string, success bool) {
	p.attempts.WithLabelValues(key, strconv.FormatBool(success)).Inc()
}

// IncrAcquireFailure implements lock.Metrics.
func (p *Prometheus) IncrAcquireFailure(key string, reason lock.FailureReason) {
	p.failures.WithLabelValues(key, string(reason)).Inc()
}

// IncrStaleReclaim implements lock.Metrics.
func (p *Prometheus) IncrStaleReclaim(key string, success bool) {
	p.reclaims.WithLabelValues(key, strconv.FormatBool(success)).Inc()
}

// IncrRelease implements lock.Metrics.
func (p *Prometheus) IncrRelease(key string, success bool) {
	p.releases.WithLabelValues(key, strconv.FormatBool(success)).Inc()
}

// ObserveAcquireLatency implements lock.Metrics.
func (p *Prometheus) ObserveAcquireLatency(key string, latency time.Duration, contested bool) {
	p.acquireLatency.WithLabelValues(key, strconv.FormatBool(contested)).Observe(latency.Seconds())
}

// ObserveBackoff implements lock.Metrics.
func (p *Prometheus) ObserveBackoff(key string, d time.Duration) {
	p.backoff.WithLabelValues(key).Observe(d.Seconds())
}
