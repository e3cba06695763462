package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// DefaultRedactPatterns match the credentials a webhook delivery may carry in
// its headers or body.
var DefaultRedactPatterns = []string{
	`(?i)^authorization$`,
	`(?i)^(set-)?cookie$`,
	`(?i)token`,
	`(?i)secret`,
	`(?i)api[-_]?key`,
	`(?i)password`,
}

type redactMiddleware struct {
	next     ports.EventStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks the values of keys
// matching the patterns, at any depth of the stored output.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.EventStore) ports.EventStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, event *domain.StoredEvent) error {
	// Copy so the item handed to the host keeps its values.
	cloned := *event
	cloned.Output = deepCopyMap(event.Output)
	maskMap(cloned.Output, m.patterns)
	return m.next.Save(ctx, &cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (*domain.StoredEvent, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context, limit int) ([]*domain.StoredEvent, error) {
	return m.next.List(ctx, limit)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if !masked {
			maskValue(v, patterns)
		}
	}
}

func maskValue(v any, patterns []*regexp.Regexp) {
	switch t := v.(type) {
	case map[string]any:
		maskMap(t, patterns)
	case []any:
		for _, e := range t {
			maskValue(e, patterns)
		}
	}
}
