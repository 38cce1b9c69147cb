// Package store defines the atomic key store contract that backs the lock
// manager, together with an in-memory reference implementation. Persistent
// adapters live in the subpackages (postgres, redis, zookeeper).
package store

import (
	"context"
	"time"
)

// Store is the persistence contract required by the lock manager.
//
// A record's presence under a key means the lock is held; its value is the
// instant the record was created, assigned by the store's own clock so that
// distributed callers never compare timestamps across skewed client clocks.
//
// InsertIfAbsent is the single atomicity-bearing operation: it must be backed
// by a true insert-uniqueness guarantee (primary key, SETNX, znode creation),
// never by a read-then-write pair. All methods must be safe for concurrent
// use.
type Store interface {
	// InsertIfAbsent atomically creates a record for key with the store's
	// current time as its value, only if no record exists. It reports whether
	// the record was created by this call.
	InsertIfAbsent(ctx context.Context, key string) (bool, error)

	// Get returns the creation time of the record for key, and whether such a
	// record exists. A missing record is not an error.
	Get(ctx context.Context, key string) (time.Time, bool, error)

	// Delete removes the record for key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
