// Package locking provides keyed try-locks that reject contention instead of
// waiting. An in-process implementation serves single-instance deployments;
// the Redis implementation coordinates across instances.
package locking

import (
	"context"
	"errors"
	"sync"
)

// ErrLocked indicates the key is already held by another caller.
var ErrLocked = errors.New("lock already held")

// Release frees a held lock. It is safe to call more than once.
type Release func()

// Locker acquires exclusive, non-blocking locks by key.
type Locker interface {
	// TryLock acquires the lock for key or returns ErrLocked immediately.
	TryLock(ctx context.Context, key string) (Release, error)
}

type memory struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemory creates an in-process Locker.
func NewMemory() Locker {
	return &memory{held: make(map[string]struct{})}
}

func (m *memory) TryLock(ctx context.Context, key string) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[key]; ok {
		return nil, ErrLocked
	}
	m.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
	}, nil
}
