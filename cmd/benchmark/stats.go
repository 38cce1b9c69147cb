package main

import (
	"math"
	"sort"
	"time"
)

// latencyStats summarizes a set of acquisition latencies.
type latencyStats struct {
	Count  int
	Mean   time.Duration
	Median time.Duration
	P90    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	StdDev time.Duration
}

// calculateLatencyStats computes detailed latency statistics from raw data.
// The input slice is sorted in place.
func calculateLatencyStats(latencies []time.Duration) latencyStats {
	if len(latencies) == 0 {
		return latencyStats{}
	}

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, lat := range latencies {
		sum += lat
	}
	n := len(latencies)
	mean := sum / time.Duration(n)

	var variance float64
	for _, lat := range latencies {
		diff := float64(lat - mean)
		variance += diff * diff
	}
	variance /= float64(n)

	return latencyStats{
		Count:  n,
		Mean:   mean,
		Median: percentile(latencies, 50),
		P90:    percentile(latencies, 90),
		P95:    percentile(latencies, 95),
		P99:    percentile(latencies, 99),
		Min:    latencies[0],
		Max:    latencies[n-1],
		StdDev: time.Duration(math.Sqrt(variance)),
	}
}

// percentile returns the specified percentile from a sorted duration slice,
// interpolating between neighbors when the rank falls between two samples.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	index := p / 100.0 * float64(len(sorted))
	if index == float64(int(index)) {
		idx := int(index) - 1
		if idx < 0 {
			idx = 0
		}
		return sorted[idx]
	}

	lower := int(math.Floor(index)) - 1
	upper := int(math.Ceil(index)) - 1
	if lower < 0 {
		lower = 0
	}
	if upper >= len(sorted) {
		upper = len(sorted) - 1
	}
	if lower == upper {
		return sorted[lower]
	}

	fraction := index - math.Floor(index)
	lowerVal := float64(sorted[lower])
	upperVal := float64(sorted[upper])
	return time.Duration(lowerVal + fraction*(upperVal-lowerVal))
}
