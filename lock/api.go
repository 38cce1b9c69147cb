// Package lock implements a cooperative, polling distributed mutex for
// processes that share nothing but an atomic key store.
//
// A Manager is bound to a single lock key. Acquire races an atomic
// insert-if-absent against every other caller polling for the same key,
// retrying with jittered backoff until the lock is obtained, the overall
// acquire timeout elapses, the attempt budget is exhausted, or the caller's
// context is canceled. Locks abandoned by a crashed holder are detected by
// age and forcibly reclaimed.
//
// This is deliberately not a fair lock: waiters poll, and any one of them may
// win any given race. There is no queueing, no reentrancy, and no wake-up
// notification.
package lock

import (
	"context"
	"time"
)

// Manager owns the acquisition and release lifecycle of a single lock key on
// behalf of one caller. Managers hold no authoritative state between calls;
// all durable state lives in the backing store, so a Manager can be discarded
// and recreated freely.
type Manager interface {
	// Acquire attempts to obtain exclusive ownership of the lock key.
	// It blocks the calling goroutine, sleeping between attempts, and returns
	// true once ownership is obtained. It returns false when the acquire
	// timeout elapses, the attempt budget is exhausted, or ctx is canceled;
	// the three outcomes are distinguished in logs and metrics only.
	//
	// The caller must not enter its critical section after a false return.
	Acquire(ctx context.Context) bool

	// Release unconditionally deletes the lock record. It is idempotent:
	// releasing an absent lock is a no-op. Only a store failure is returned
	// as an error.
	Release(ctx context.Context) error

	// Key returns the lock key this manager is bound to.
	Key() string

	// StaleTimeout returns the age beyond which an existing lock record is
	// considered abandoned and eligible for forced reclamation.
	StaleTimeout() time.Duration
}
