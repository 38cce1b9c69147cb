package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/storelock/storelock/lock"
	"github.com/storelock/storelock/testutil"
)

func setupStore(t *testing.T, opts ...Option) (*miniredis.Miniredis, *Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		testutil.AssertNoError(t, client.Close())
	})

	return mr, New(client, opts...)
}

func TestInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	_, s := setupStore(t)

	created, err := s.InsertIfAbsent(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, created)

	created, err = s.InsertIfAbsent(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, created, "held key must not be re-created")

	created, err = s.InsertIfAbsent(ctx, "order_43")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, created, "different key should not contend")
}

func TestGetUsesServerTime(t *testing.T) {
	ctx := context.Background()
	mr, s := setupStore(t)

	stamp := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	mr.SetTime(stamp)

	created, err := s.InsertIfAbsent(ctx, "order_42")
	testutil.RequireNoError(t, err)
	testutil.RequireTrue(t, created)

	acquiredAt, ok, err := s.Get(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, stamp.Unix(), acquiredAt.Unix(),
		"acquired_at should be the redis server clock, second precision")
}

func TestGetMissingKey(t *testing.T) {
	ctx := context.Background()
	_, s := setupStore(t)

	_, ok, err := s.Get(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, ok)
}

func TestGetMalformedValue(t *testing.T) {
	ctx := context.Background()
	mr, s := setupStore(t)

	testutil.RequireNoError(t, mr.Set(DefaultKeyPrefix+"order_42", "not-a-timestamp"))

	_, _, err := s.Get(ctx, "order_42")
	testutil.AssertError(t, err, "garbage in the record should surface as an error")
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, s := setupStore(t)

	_, err := s.InsertIfAbsent(ctx, "order_42")
	testutil.RequireNoError(t, err)

	testutil.AssertNoError(t, s.Delete(ctx, "order_42"))
	testutil.AssertNoError(t, s.Delete(ctx, "order_42"), "deleting an absent key must be a no-op")

	_, ok, err := s.Get(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, ok)
}

func TestKeyPrefix(t *testing.T) {
	ctx := context.Background()
	mr, s := setupStore(t, WithKeyPrefix("locks:orders:"))

	_, err := s.InsertIfAbsent(ctx, "order_42")
	testutil.RequireNoError(t, err)

	testutil.AssertTrue(t, mr.Exists("locks:orders:order_42"))
	testutil.AssertFalse(t, mr.Exists(DefaultKeyPrefix+"order_42"))
}

func TestManagerOverRedis(t *testing.T) {
	ctx := context.Background()
	_, s := setupStore(t)

	const workers = 6
	var inCritical int32
	var overlaps int32

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()

			m, err := lock.NewManager(s, "order_42",
				lock.WithSleepBounds(time.Millisecond, 5*time.Millisecond),
				lock.WithAcquireTimeout(10*time.Second),
				lock.WithMaxAttempts(100000),
			)
			if err != nil {
				t.Error(err)
				return
			}

			if !m.Acquire(ctx) {
				t.Error("acquire against miniredis should eventually succeed")
				return
			}
			if atomic.AddInt32(&inCritical, 1) != 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inCritical, -1)
			if err := m.Release(ctx); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, int32(0), atomic.LoadInt32(&overlaps), "critical sections must never overlap")
}
