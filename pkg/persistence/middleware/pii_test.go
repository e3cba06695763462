package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/enlyst/pkg/adapters/memory"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/persistence/middleware"
)

func newEvent(id string) *domain.StoredEvent {
	return &domain.StoredEvent{
		ID:         id,
		ReceivedAt: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		Event:      domain.EventEnrichmentCompleted,
		ProjectID:  "proj_1",
		Output: domain.Object{
			"projectId": "proj_1",
			"headers": domain.Object{
				"authorization": "Bearer secret",
				"content-type":  "application/json",
				"x-api-key":     "k",
			},
			"body": map[string]any{
				"event": "enrichment.completed",
				"data":  map[string]any{"items": []any{map[string]any{"webhookSecret": "s"}}},
			},
		},
	}
}

func TestRedactMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactMiddleware(middleware.DefaultRedactPatterns)
	if err != nil {
		t.Fatal(err)
	}
	store := mw(underlying)
	ctx := context.Background()

	event := newEvent("ev-1")
	if err := store.Save(ctx, event); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The caller's event is NOT MODIFIED
	if event.Output["headers"].(domain.Object)["authorization"] != "Bearer secret" {
		t.Error("Middleware modified the original event")
	}

	stored, err := underlying.Load(ctx, "ev-1")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}

	headers := stored.Output["headers"].(map[string]any)
	if headers["authorization"] != middleware.Mask {
		t.Errorf("authorization should be masked, got: %v", headers["authorization"])
	}
	if headers["x-api-key"] != middleware.Mask {
		t.Errorf("x-api-key should be masked, got: %v", headers["x-api-key"])
	}
	if headers["content-type"] != "application/json" {
		t.Error("content-type shouldn't be masked")
	}
	if stored.Output["projectId"] != "proj_1" {
		t.Error("projectId shouldn't be masked")
	}

	items := stored.Output["body"].(map[string]any)["data"].(map[string]any)["items"].([]any)
	if items[0].(map[string]any)["webhookSecret"] != middleware.Mask {
		t.Errorf("nested secret should be masked, got: %v", items[0])
	}
}

func TestRedactMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewRedactMiddleware([]string{"("}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
