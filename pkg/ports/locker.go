package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock acquired through Locker.
type UnlockFunc func(ctx context.Context) error

// Locker coordinates exclusive work on a key across replicas.
type Locker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The lock expires on its own after ttl if never released.
	// The returned UnlockFunc MUST be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
