package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEventStoreContract runs a suite of tests to verify that an EventStore implementation
// adheres to the defined interface contract. The store must start empty.
func RunEventStoreContract(t *testing.T, store EventStore) {
	ctx := context.Background()
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	event := func(id string, offset time.Duration) *domain.StoredEvent {
		return &domain.StoredEvent{
			ID:         id,
			ReceivedAt: base.Add(offset),
			Event:      domain.EventEnrichmentCompleted,
			ProjectID:  "proj-" + id,
			Output: domain.Object{
				"projectId": "proj-" + id,
				"stats":     map[string]any{"total": 10.0},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		ev := event("ev-1", 0)
		require.NoError(t, store.Save(ctx, ev), "Save should not return error")

		loaded, err := store.Load(ctx, "ev-1")
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, ev.Event, loaded.Event)
		assert.Equal(t, ev.ProjectID, loaded.ProjectID)
		assert.True(t, ev.ReceivedAt.Equal(loaded.ReceivedAt))
		assert.Equal(t, "proj-ev-1", loaded.Output["projectId"])
		// JSON persistence turns numbers into float64, which memory stores mirror.
		assert.NotNil(t, loaded.Output["stats"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("List newest first", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, event("ev-2", time.Minute)))
		require.NoError(t, store.Save(ctx, event("ev-3", 2*time.Minute)))

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "ev-3", all[0].ID)
		assert.Equal(t, "ev-2", all[1].ID)
		assert.Equal(t, "ev-1", all[2].ID)

		limited, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, "ev-3", limited[0].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "ev-2"), "Delete should not return error")

		_, err := store.Load(ctx, "ev-2")
		assert.ErrorIs(t, err, domain.ErrEventNotFound, "Load after Delete should return ErrEventNotFound")

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		assert.NoError(t, store.Delete(ctx, "never-saved"))
	})
}
