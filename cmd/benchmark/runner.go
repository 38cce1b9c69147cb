package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/storelock/storelock/lock"
	"github.com/storelock/storelock/logger"
	"github.com/storelock/storelock/store"
	"github.com/storelock/storelock/store/postgres"
	"github.com/storelock/storelock/store/redis"
	"github.com/storelock/storelock/store/zookeeper"
)

// runner drives cfg.Workers concurrent contenders against one lock key and
// collects per-operation outcomes.
type runner struct {
	cfg     *Config
	backing store.Store
	cleanup func()
	limiter *rate.Limiter

	mu           sync.Mutex
	acquireTimes []time.Duration

	acquired      atomic.Int64
	failed        atomic.Int64
	released      atomic.Int64
	inSection     atomic.Int64
	holdConflicts atomic.Int64
}

// result is the aggregate outcome of one benchmark run.
type result struct {
	Elapsed       time.Duration
	Acquired      int64
	Failed        int64
	Released      int64
	HoldConflicts int64
	Latency       latencyStats
}

func newRunner(ctx context.Context, cfg *Config) (*runner, error) {
	backing, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := &runner{
		cfg:     cfg,
		backing: backing,
		cleanup: cleanup,
	}
	if cfg.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Workers)
	}
	return r, nil
}

// newStore connects the backend named by cfg.Store and returns it with a
// cleanup closure that tears the connection down.
func newStore(ctx context.Context, cfg *Config) (store.Store, func(), error) {
	switch cfg.Store {
	case storeMemory:
		return store.NewMemory(), func() {}, nil

	case storeRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("connect redis at %s: %w", cfg.RedisAddr, err)
		}
		return redis.New(client), func() { _ = client.Close() }, nil

	case storePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if _, err := pool.Exec(ctx, postgres.Schema); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		return postgres.New(pool), pool.Close, nil

	case storeZookeeper:
		conn, _, err := zk.Connect(strings.Split(cfg.ZkServers, ","), 5*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("connect zookeeper at %s: %w", cfg.ZkServers, err)
		}
		return zookeeper.New(conn), conn.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func (r *runner) printBanner() {
	log.Printf("🚀 Starting lock benchmark")
	log.Printf("   store=%s key=%q workers=%d duration=%v", r.cfg.Store, r.cfg.Key, r.cfg.Workers, r.cfg.Duration)
	log.Printf("   acquire-timeout=%v max-attempts=%d backoff=[%v, %v] hold=%v",
		r.cfg.AcquireTimeout, r.cfg.MaxAttempts, r.cfg.MinSleep, r.cfg.MaxSleep, r.cfg.HoldTime)
	if r.cfg.Rate > 0 {
		log.Printf("   rate limit: %.1f acquires/sec", r.cfg.Rate)
	}
}

// run launches the worker pool and blocks until the benchmark duration
// elapses or ctx is canceled.
func (r *runner) run(ctx context.Context) (*result, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Duration)
	defer cancel()

	start := time.Now()

	g, gctx := errgroup.WithContext(runCtx)
	for i := 0; i < r.cfg.Workers; i++ {
		worker := i
		g.Go(func() error {
			return r.contend(gctx, worker)
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)

	// The deadline firing is the normal end of the run; only a parent
	// cancellation (signal) is reported upward.
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		if ctx.Err() != nil {
			return nil, context.Canceled
		}
		return nil, err
	}

	return r.summarize(elapsed), nil
}

// contend is one worker's loop: acquire, hold, release, repeat.
func (r *runner) contend(ctx context.Context, worker int) error {
	mgr, err := lock.NewManager(r.backing, r.cfg.Key,
		lock.WithAcquireTimeout(r.cfg.AcquireTimeout),
		lock.WithMaxAttempts(r.cfg.MaxAttempts),
		lock.WithSleepBounds(r.cfg.MinSleep, r.cfg.MaxSleep),
		lock.WithExecutionBudget(r.cfg.Budget),
		lock.WithLogger(logger.NewNoOpLogger()),
	)
	if err != nil {
		return fmt.Errorf("worker %d: %w", worker, err)
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				// The limiter reports its own error when the deadline would
				// be exceeded mid-wait; surface the context's instead.
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return err
			}
		}

		began := time.Now()
		if !mgr.Acquire(ctx) {
			r.failed.Add(1)
			continue
		}
		r.recordAcquire(time.Since(began))

		if r.inSection.Add(1) > 1 {
			r.holdConflicts.Add(1)
		}
		select {
		case <-time.After(r.cfg.HoldTime):
		case <-ctx.Done():
		}
		r.inSection.Add(-1)

		if err := mgr.Release(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("worker %d release: %w", worker, err)
		}
		r.released.Add(1)
	}
}

func (r *runner) recordAcquire(latency time.Duration) {
	r.acquired.Add(1)
	r.mu.Lock()
	r.acquireTimes = append(r.acquireTimes, latency)
	r.mu.Unlock()
}

func (r *runner) summarize(elapsed time.Duration) *result {
	r.mu.Lock()
	defer r.mu.Unlock()

	return &result{
		Elapsed:       elapsed,
		Acquired:      r.acquired.Load(),
		Failed:        r.failed.Load(),
		Released:      r.released.Load(),
		HoldConflicts: r.holdConflicts.Load(),
		Latency:       calculateLatencyStats(r.acquireTimes),
	}
}
