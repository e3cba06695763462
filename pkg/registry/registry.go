package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/enlyst/pkg/domain"
)

// Params are the resolved parameters of one item.
type Params map[string]any

// Call is the input of one handler invocation.
type Call struct {
	Params Params
	// Item is the input item being processed (binary attachments live here).
	Item domain.Item
}

// HandlerFunc executes one operation for one item and returns the decoded API response.
type HandlerFunc func(ctx context.Context, call Call) (any, error)

// Key identifies an operation within a resource.
type Key struct {
	Resource  string
	Operation string
}

func (k Key) String() string {
	return k.Resource + ":" + k.Operation
}

// Registry maps resource/operation pairs to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Key]HandlerFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Key]HandlerFunc),
	}
}

// Register adds a handler. An existing handler for the same pair is overwritten.
func (r *Registry) Register(resource, operation string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[Key{resource, operation}] = fn
}

// Lookup returns the handler for a pair.
func (r *Registry) Lookup(resource, operation string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[Key{resource, operation}]
	return fn, ok
}

// Keys returns every registered pair, sorted.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Execute looks up the handler for a pair and runs it.
// Returns an error wrapping domain.ErrUnknownOperation if no handler exists.
func (r *Registry) Execute(ctx context.Context, resource, operation string, call Call) (any, error) {
	fn, ok := r.Lookup(resource, operation)
	if !ok {
		return nil, fmt.Errorf("%w: %s for resource: %s", domain.ErrUnknownOperation, operation, resource)
	}
	return fn(ctx, call)
}
