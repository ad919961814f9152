package locks

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	token   uint64
	expires time.Time
}

// MemoryLocker is an in-process Locker for single-instance deployments and
// tests.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	next    uint64
	now     func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.entries[key]; ok && now.Before(e.expires) {
		return nil, ErrLockHeld
	}
	l.next++
	token := l.next
	l.entries[key] = memoryEntry{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.entries[key]; ok && e.token == token {
			delete(l.entries, key)
		}
		return nil
	}, nil
}
