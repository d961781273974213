package locking

import (
	"context"
	"errors"
	"sync"
)

// ErrNotObtained is returned when a key is already held by someone else
var ErrNotObtained = errors.New("lock not obtained")

// Lock is a held key
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializes work on a key. Obtain never waits: a held key fails
// with ErrNotObtained.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}

// MemoryLocker holds keys within one process
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker creates a locker with no held keys
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// Verify interface compliance
var _ Locker = (*MemoryLocker)(nil)

func (l *MemoryLocker) Obtain(ctx context.Context, key string) (Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrNotObtained
	}
	l.held[key] = struct{}{}
	return &memoryLock{locker: l, key: key}, nil
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	once   sync.Once
}

func (m *memoryLock) Release(ctx context.Context) error {
	m.once.Do(func() {
		m.locker.mu.Lock()
		delete(m.locker.held, m.key)
		m.locker.mu.Unlock()
	})
	return nil
}
