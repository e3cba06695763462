package ports

import (
	"context"

	"github.com/aretw0/enlyst/pkg/domain"
)

// EventStore persists trigger deliveries so hosts can inspect or replay them.
type EventStore interface {
	// Save persists an event. An existing event with the same ID is replaced.
	Save(ctx context.Context, event *domain.StoredEvent) error

	// Load retrieves an event by ID.
	// Returns domain.ErrEventNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.StoredEvent, error)

	// List returns stored events, newest first. A limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]*domain.StoredEvent, error)

	// Delete removes an event. Deleting a missing event is not an error.
	Delete(ctx context.Context, id string) error
}
