// Package locks provides short-lived named locks used to serialize result
// submissions for the same match.
package locks

import (
	"context"
	"errors"
	"time"
)

var ErrLockHeld = errors.New("lock is held by another owner")

// Locker acquires a named lock for at most ttl. The returned release func is
// safe to call more than once and never releases a lock taken over by
// someone else after expiry.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
