package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/aretw0/enlyst/pkg/domain"
)

// Store implements ports.EventStore in memory.
// Safe for concurrent use.
type Store struct {
	data     map[string]*domain.StoredEvent
	capacity int
	mu       sync.RWMutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCapacity bounds the number of kept events; the oldest are evicted first.
// Zero means unbounded.
func WithCapacity(n int) StoreOption {
	return func(s *Store) {
		s.capacity = n
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		data: make(map[string]*domain.StoredEvent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the event in memory.
func (s *Store) Save(ctx context.Context, event *domain.StoredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[event.ID] = clone(event)
	s.evict()
	return nil
}

// Load retrieves the event from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.data[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	// Copy on read so callers can't mutate the stored event through the pointer.
	return clone(ev), nil
}

// List returns events newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*domain.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.sorted()
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	out := make([]*domain.StoredEvent, len(events))
	for i, ev := range events {
		out[i] = clone(ev)
	}
	return out, nil
}

// Delete removes the event.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// sorted must be called with the lock held.
func (s *Store) sorted() []*domain.StoredEvent {
	events := make([]*domain.StoredEvent, 0, len(s.data))
	for _, ev := range s.data {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].ReceivedAt.Equal(events[j].ReceivedAt) {
			return events[i].ID > events[j].ID
		}
		return events[i].ReceivedAt.After(events[j].ReceivedAt)
	})
	return events
}

func (s *Store) evict() {
	if s.capacity <= 0 || len(s.data) <= s.capacity {
		return
	}
	events := s.sorted()
	for _, ev := range events[s.capacity:] {
		delete(s.data, ev.ID)
	}
}

func clone(ev *domain.StoredEvent) *domain.StoredEvent {
	c := *ev
	c.Output = maps.Clone(ev.Output)
	return &c
}
