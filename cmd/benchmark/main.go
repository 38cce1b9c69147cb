// Command benchmark measures lock contention behavior against a chosen
// backing store: how long acquisitions take, how often they fail, and how
// stale reclamation behaves under load.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitSuccess     = 0
	exitFailure     = 1
	exitInterrupted = 130 // Exit code for SIGINT or SIGTERM
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("🛑 Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()

	cfg, err := parseConfig()
	if err != nil {
		log.Printf("❌ Configuration error: %v", err)
		os.Exit(exitFailure)
	}

	if err := cfg.Validate(); err != nil {
		log.Printf("❌ Invalid configuration: %v", err)
		os.Exit(exitFailure)
	}

	runner, err := newRunner(ctx, cfg)
	if err != nil {
		log.Printf("❌ Initialization failed: %v", err)
		os.Exit(exitFailure)
	}
	defer runner.cleanup()

	runner.printBanner()

	result, err := runner.run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("🛑 Benchmark canceled by user")
			os.Exit(exitInterrupted)
		}
		log.Printf("❌ Benchmark failed: %v", err)
		os.Exit(exitFailure)
	}

	printReport(cfg, result)
	os.Exit(exitSuccess)
}
