package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/enlyst/pkg/adapters/redis"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/ports"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunEventStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	// Create store with 1s TTL
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	event := &domain.StoredEvent{
		ID:         "event-ttl",
		ReceivedAt: time.Now(),
		Event:      domain.EventEnrichmentCompleted,
		Output:     domain.Object{"projectId": "p1"},
	}

	// 1. Save
	require.NoError(t, store.Save(ctx, event))

	// 2. Verify List (immediately)
	events, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	// 3. Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Load (should fail)
	_, err = store.Load(ctx, "event-ttl")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	// 5. Verify List drops the expired entry and cleans the index
	events, err = store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	members, err := client.ZRange(ctx, "enlyst:event:index", 0, -1).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	// Custom Prefix
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, &domain.StoredEvent{ID: "my-event", ReceivedAt: time.Now()})
	require.NoError(t, err)

	// Key should be "custom:app:my-event"
	assert.True(t, mr.Exists("custom:app:my-event"), "Expected key with custom prefix to exist")

	// Index should be "custom:app:index"
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "my-event", list[0].ID)
}
