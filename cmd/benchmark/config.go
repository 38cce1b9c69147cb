package main

import (
	"flag"
	"fmt"
	"time"
)

// Store backends selectable on the command line.
const (
	storeMemory    = "memory"
	storeRedis     = "redis"
	storePostgres  = "postgres"
	storeZookeeper = "zookeeper"
)

// Config holds all benchmark parameters.
type Config struct {
	// Store selects the backend: memory, redis, postgres, or zookeeper.
	Store string

	// Backend addresses; only the one matching Store is consulted.
	RedisAddr   string
	PostgresURL string
	ZkServers   string

	// Key is the single lock key all workers contend for.
	Key string

	// Workers is the number of concurrent contenders.
	Workers int

	// Duration is how long the benchmark generates load.
	Duration time.Duration

	// Rate caps acquire starts per second across all workers; 0 means unlimited.
	Rate float64

	// HoldTime is how long a winner sits in its critical section.
	HoldTime time.Duration

	// Lock manager tunables, passed straight through.
	AcquireTimeout time.Duration
	MaxAttempts    int
	MinSleep       time.Duration
	MaxSleep       time.Duration
	Budget         time.Duration
}

func parseConfig() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.Store, "store", storeMemory, "backing store: memory, redis, postgres, zookeeper")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "redis address (store=redis)")
	flag.StringVar(&cfg.PostgresURL, "postgres-url", "", "postgres connection string (store=postgres)")
	flag.StringVar(&cfg.ZkServers, "zk-servers", "localhost:2181", "comma-separated zookeeper servers (store=zookeeper)")

	flag.StringVar(&cfg.Key, "key", "benchmark", "lock key all workers contend for")
	flag.IntVar(&cfg.Workers, "workers", 8, "number of concurrent contenders")
	flag.DurationVar(&cfg.Duration, "duration", 10*time.Second, "benchmark duration")
	flag.Float64Var(&cfg.Rate, "rate", 0, "max acquire starts per second, 0 for unlimited")
	flag.DurationVar(&cfg.HoldTime, "hold", 5*time.Millisecond, "critical section duration per winner")

	flag.DurationVar(&cfg.AcquireTimeout, "acquire-timeout", 5*time.Second, "per-acquire wall-clock budget")
	flag.IntVar(&cfg.MaxAttempts, "max-attempts", 10, "per-acquire attempt budget")
	flag.DurationVar(&cfg.MinSleep, "min-sleep", 100*time.Millisecond, "backoff lower bound")
	flag.DurationVar(&cfg.MaxSleep, "max-sleep", 500*time.Millisecond, "backoff upper bound")
	flag.DurationVar(&cfg.Budget, "budget", 30*time.Second, "declared execution-time budget (drives the stale threshold)")

	flag.Parse()
	return cfg, nil
}

// Validate checks parameter sanity before any backend connection is made.
func (c *Config) Validate() error {
	switch c.Store {
	case storeMemory, storeRedis, storePostgres, storeZookeeper:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Store == storePostgres && c.PostgresURL == "" {
		return fmt.Errorf("-postgres-url is required with -store=postgres")
	}
	if c.Key == "" {
		return fmt.Errorf("-key must not be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("-workers must be positive, got %d", c.Workers)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("-duration must be positive, got %v", c.Duration)
	}
	if c.Rate < 0 {
		return fmt.Errorf("-rate must not be negative, got %v", c.Rate)
	}
	if c.MinSleep <= 0 || c.MaxSleep < c.MinSleep {
		return fmt.Errorf("sleep bounds invalid: min=%v max=%v", c.MinSleep, c.MaxSleep)
	}
	return nil
}
