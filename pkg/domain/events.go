package domain

import (
	"context"
	"time"
)

// EventEnrichmentCompleted is the only event the Enlyst API currently emits.
const EventEnrichmentCompleted = "enrichment.completed"

// EnrichmentStats summarises row states at the end of an enrichment batch.
type EnrichmentStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Stopped    int `json:"stopped"`
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
}

// WebhookData is the "data" member of a webhook delivery.
type WebhookData struct {
	ProjectID   string           `json:"projectId"`
	ProjectName string           `json:"projectName"`
	Stats       *EnrichmentStats `json:"stats,omitempty"`
	CompletedAt string           `json:"completedAt"`
}

// WebhookPayload is the body Enlyst posts to the trigger endpoint.
type WebhookPayload struct {
	Event     string       `json:"event"`
	Timestamp string       `json:"timestamp"`
	Data      *WebhookData `json:"data,omitempty"`
}

// StoredEvent is a trigger delivery accepted and persisted by the host.
type StoredEvent struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"receivedAt"`
	Event      string    `json:"event"`
	ProjectID  string    `json:"projectId,omitempty"`
	Output     Object    `json:"output"`
}

// OperationEvent describes one dispatched node operation.
type OperationEvent struct {
	Resource  string        `json:"resource"`
	Operation string        `json:"operation"`
	Item      int           `json:"item"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for node and trigger observability.
type LifecycleHooks struct {
	OnOperationStart func(context.Context, *OperationEvent)
	OnOperationDone  func(context.Context, *OperationEvent)
	// OnWebhook receives the HTTP status the trigger answered with and the event name (may be empty).
	OnWebhook func(ctx context.Context, status int, event string)
}
