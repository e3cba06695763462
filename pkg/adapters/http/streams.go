package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/enlyst/pkg/domain"
)

// StreamManager handles active SSE connections.
// It implements trigger.Emitter: accepted deliveries are broadcast to the
// subscribers of their project and to global subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // ProjectID ("" = all) -> Set of Channels
	closed      bool
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for projectID ("" for every project).
// The returned function unsubscribes and closes the channel. After Close the
// channel is returned already closed.
func (sm *StreamManager) Subscribe(projectID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if sm.closed {
		close(ch)
		return ch, func() {}
	}
	if _, ok := sm.subscribers[projectID]; !ok {
		sm.subscribers[projectID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[projectID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		subs := sm.subscribers[projectID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(sm.subscribers, projectID)
		}
	}
}

// Close ends every open stream. Used on server shutdown, which would
// otherwise wait for SSE clients to disconnect.
func (sm *StreamManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.closed {
		return
	}
	sm.closed = true
	for _, subs := range sm.subscribers {
		for ch := range subs {
			close(ch)
		}
	}
	sm.subscribers = make(map[string]map[chan<- string]struct{})
	sm.logger.Debug("SSE: Closed all streams")
}

// Broadcast sends msg to the subscribers of projectID and to global subscribers.
func (sm *StreamManager) Broadcast(projectID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	targets := []string{""}
	if projectID != "" {
		targets = append(targets, projectID)
	}
	for _, key := range targets {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "project_id", projectID)
			}
		}
	}
}

// Emit broadcasts an accepted webhook item.
func (sm *StreamManager) Emit(_ context.Context, item domain.Item) error {
	data, err := json.Marshal(item.JSON)
	if err != nil {
		return fmt.Errorf("encode webhook item: %w", err)
	}
	projectID, _ := item.JSON["projectId"].(string)
	sm.Broadcast(projectID, string(data))
	return nil
}
