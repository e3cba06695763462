package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/enlyst/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies with ports.Locker.
func LockerContractTest(t *testing.T, locker ports.Locker) {
	t.Helper()

	// 1. Acquire and release
	t.Run("Lock_Unlock", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, "contract-a", time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}

		// Re-acquire after release
		unlock, err = locker.Lock(ctx, "contract-a", time.Second)
		if err != nil {
			t.Fatalf("lock should be free after release: %v", err)
		}
		_ = unlock(ctx)
	})

	// 2. Held lock blocks until the context gives up
	t.Run("Lock_Contended", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, "contract-b", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		defer func() { _ = unlock(ctx) }()

		waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(waitCtx, "contract-b", time.Second); err == nil {
			t.Error("expected error acquiring a held lock, got nil")
		}
	})

	// 3. Distinct keys do not interfere
	t.Run("Lock_IndependentKeys", func(t *testing.T) {
		ctx := context.Background()
		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for _, key := range []string{"contract-c1", "contract-c2"} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				lockCtx, cancel := context.WithTimeout(ctx, time.Second)
				defer cancel()
				unlock, err := locker.Lock(lockCtx, key, time.Second)
				if err != nil {
					errs <- err
					return
				}
				errs <- unlock(ctx)
			}(key)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Errorf("unexpected error on independent key: %v", err)
			}
		}
	})
}
