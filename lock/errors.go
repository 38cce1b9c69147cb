package lock

import "errors"

var (
	// ErrEmptyKey indicates that a Manager was constructed without a lock key.
	ErrEmptyKey = errors.New("storelock: lock key must not be empty")

	// ErrNilStore indicates that a Manager was constructed without a backing store.
	ErrNilStore = errors.New("storelock: store must not be nil")
)
