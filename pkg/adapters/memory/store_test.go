package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/enlyst/pkg/adapters/memory"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/ports"
	"github.com/aretw0/enlyst/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunEventStoreContract(t, store)
}

func TestMemoryStore_Capacity(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(memory.WithCapacity(2))
	base := time.Now()

	for i := range 3 {
		require.NoError(t, store.Save(ctx, &domain.StoredEvent{
			ID:         fmt.Sprintf("ev-%d", i),
			ReceivedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ev-2", all[0].ID)

	_, err = store.Load(ctx, "ev-0")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ev := &domain.StoredEvent{ID: "x", Output: domain.Object{"a": 1}}
	require.NoError(t, store.Save(ctx, ev))

	ev.Output["a"] = 2
	loaded, err := store.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Output["a"])
}

func TestMemoryLocker_Contract(t *testing.T) {
	tests.LockerContractTest(t, memory.NewLocker())
}
