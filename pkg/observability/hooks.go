package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/enlyst/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log every event at debug level,
// and failures at warn level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOperationStart: func(ctx context.Context, e *domain.OperationEvent) {
			logger.DebugContext(ctx, "operation_start",
				"resource", e.Resource, "operation", e.Operation, "item", e.Item)
		},
		OnOperationDone: func(ctx context.Context, e *domain.OperationEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "operation_failed",
					"resource", e.Resource, "operation", e.Operation, "item", e.Item,
					"duration", e.Duration, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "operation_done",
				"resource", e.Resource, "operation", e.Operation, "item", e.Item, "duration", e.Duration)
		},
		OnWebhook: func(ctx context.Context, status int, event string) {
			logger.DebugContext(ctx, "webhook", "status", status, "event", event)
		},
	}
}

// CombineHooks fans each callback out to every non-nil hook, in order.
func CombineHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOperationStart: func(ctx context.Context, e *domain.OperationEvent) {
			for _, h := range hooks {
				if h.OnOperationStart != nil {
					h.OnOperationStart(ctx, e)
				}
			}
		},
		OnOperationDone: func(ctx context.Context, e *domain.OperationEvent) {
			for _, h := range hooks {
				if h.OnOperationDone != nil {
					h.OnOperationDone(ctx, e)
				}
			}
		},
		OnWebhook: func(ctx context.Context, status int, event string) {
			for _, h := range hooks {
				if h.OnWebhook != nil {
					h.OnWebhook(ctx, status, event)
				}
			}
		},
	}
}
