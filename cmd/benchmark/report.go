package main

import (
	"fmt"
	"log"
	"time"
)

// printReport renders the benchmark result to the log, one section per
// concern, in the same shape regardless of backend.
func printReport(cfg *Config, res *result) {
	total := res.Acquired + res.Failed
	successRate := 100.0
	if total > 0 {
		successRate = float64(res.Acquired) * 100.0 / float64(total)
	}

	log.Printf("✅ Benchmark complete (%v elapsed)", res.Elapsed.Round(time.Millisecond))
	log.Printf("📊 Results for store=%s workers=%d:", cfg.Store, cfg.Workers)
	log.Printf("   acquisitions: %d succeeded, %d failed (%.2f%% success)", res.Acquired, res.Failed, successRate)
	log.Printf("   releases:     %d", res.Released)
	log.Printf("   throughput:   %.1f acquisitions/sec", float64(res.Acquired)/res.Elapsed.Seconds())

	if res.HoldConflicts > 0 {
		log.Printf("🚨 MUTUAL EXCLUSION VIOLATED: %d overlapping critical sections", res.HoldConflicts)
	} else {
		log.Printf("🔒 Mutual exclusion held: no overlapping critical sections observed")
	}

	if res.Latency.Count == 0 {
		log.Printf("   no successful acquisitions to report latency for")
		return
	}

	log.Printf("⏱️  Acquire latency (n=%d):", res.Latency.Count)
	log.Printf("   mean=%s median=%s stddev=%s",
		res.Latency.Mean, res.Latency.Median, res.Latency.StdDev)
	log.Printf("   p90=%s p95=%s p99=%s", res.Latency.P90, res.Latency.P95, res.Latency.P99)
	log.Printf("   min=%s max=%s", res.Latency.Min, res.Latency.Max)

	fmt.Println()
}
