// Package redis implements the store contract on top of Redis. SET NX is the
// atomic insert-if-absent; the record value is the Unix timestamp reported by
// the Redis server's TIME command, keeping acquisition times on the store's
// clock rather than the caller's.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces lock records away from other application keys.
const DefaultKeyPrefix = "storelock:"

// Option configures a Store during construction.
type Option func(*Store)

// WithKeyPrefix overrides the prefix prepended to every lock key.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// Store is a Redis-backed atomic key store.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New returns a Store using the given client. The client remains owned by the
// caller and may be shared with the rest of the application.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InsertIfAbsent implements store.Store. Records carry no Redis TTL;
// staleness is judged by the lock manager, not expired by the store.
func (s *Store) InsertIfAbsent(ctx context.Context, key string) (bool, error) {
	now, err := s.client.Time(ctx).Result()
	if err != nil {
		return false, fmt.Errorf("redis server time: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.prefix+key, now.Unix(), 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis insert %q: %w", key, err)
	}
	return created, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	sec, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get %q: malformed timestamp %q: %w", key, val, err)
	}
	return time.Unix(sec, 0), true, nil
}

// Delete implements store.Store. DEL on a missing key is already a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}
