package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store backed by a mutex-guarded map.
//
// It provides the same insert-uniqueness guarantee as the persistent adapters
// and is the reference implementation used by the lock manager's tests. It is
// only suitable for serializing goroutines within a single process; separate
// processes need one of the persistent adapters.
type Memory struct {
	mu      sync.Mutex
	records map[string]time.Time
	now     func() time.Time
}

// NewMemory returns an empty in-memory store using the wall clock.
func NewMemory() *Memory {
	return NewMemoryWithNow(time.Now)
}

// NewMemoryWithNow returns an empty in-memory store whose record timestamps
// come from now. Tests use this to control the store-side clock.
func NewMemoryWithNow(now func() time.Time) *Memory {
	return &Memory{
		records: make(map[string]time.Time),
		now:     now,
	}
}

// InsertIfAbsent implements Store.
func (m *Memory) InsertIfAbsent(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[key]; exists {
		return false, nil
	}
	m.records[key] = m.now()
	return true, nil
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, key string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	acquiredAt, ok := m.records[key]
	return acquiredAt, ok, nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

// Len returns the number of records currently held. Intended for tests.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
