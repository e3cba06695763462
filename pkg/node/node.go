package node

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/aretw0/enlyst/pkg/client"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/ports"
	"github.com/aretw0/enlyst/pkg/registry"
	"github.com/aretw0/enlyst/pkg/schema"
)

// Node is the Enlyst action node: it turns input items into API calls.
type Node struct {
	client         *client.Client
	registry       *registry.Registry
	props          schema.Collection
	logger         *slog.Logger
	hooks          domain.LifecycleHooks
	locker         ports.Locker
	continueOnFail bool
	// fileRoot, when set, lets csvFile name a file below it.
	fileRoot string
}

// Option configures a Node.
type Option func(*Node)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithLifecycleHooks registers callbacks around each dispatched operation.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(n *Node) {
		n.hooks = hooks
	}
}

// WithLocker serialises enrich-and-wait runs per project.
func WithLocker(l ports.Locker) Option {
	return func(n *Node) {
		n.locker = l
	}
}

// WithContinueOnFail makes failing items produce {"error": msg} instead of aborting the batch.
func WithContinueOnFail(enabled bool) Option {
	return func(n *Node) {
		n.continueOnFail = enabled
	}
}

// WithFileRoot lets uploadCsv read csvFile paths relative to dir. Paths may not
// leave dir. Without this option only binary:<property> references are accepted,
// so hosts driven by remote callers never read local files.
func WithFileRoot(dir string) Option {
	return func(n *Node) {
		n.fileRoot = dir
	}
}

// New creates a node bound to an API client.
func New(c *client.Client, opts ...Option) *Node {
	n := &Node{
		client:   c,
		registry: registry.NewRegistry(),
		props:    Description(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.registerHandlers(n.registry)
	return n
}

// Description returns the node's parameter table.
func (n *Node) Description() schema.Collection {
	return n.props
}

// Registry exposes the operation registry, so hosts can add or override operations.
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

// Execute runs the selected operation once per input item.
//
// With continueOnFail a failing item yields {"error": msg}, merged with any
// partial result the operation returned (such as the started job of a timed
// out enrich-and-wait).
//
// Resource and operation are read from the parameters of the first item and apply
// to the whole batch. Each item then resolves its own parameters (defaults applied,
// display rules honoured, values validated) before dispatch. An empty input runs once
// with an empty item.
func (n *Node) Execute(ctx context.Context, items []domain.Item, params ParamSource) ([]domain.Item, error) {
	if len(items) == 0 {
		items = []domain.Item{domain.NewItem(nil, 0)}
	}

	resource, operation, err := n.selection(items[0], params)
	if err != nil {
		return nil, err
	}

	var out []domain.Item
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := n.executeItem(ctx, i, item, resource, operation, params)
		if err != nil {
			if n.continueOnFail {
				n.logger.Warn("Item failed, continuing",
					"resource", resource, "operation", operation, "item", i, "err", err)
				failed := domain.Object{}
				if partial, ok := result.(domain.Object); ok {
					maps.Copy(failed, partial)
				}
				failed["error"] = err.Error()
				out = append(out, domain.NewItem(failed, i))
				continue
			}
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, domain.ItemsFromResult(result, i)...)
	}
	return out, nil
}

// Run is a convenience for executing one operation with static parameters.
func (n *Node) Run(ctx context.Context, resource, operation string, params map[string]any) ([]domain.Item, error) {
	p := StaticParams{}
	for k, v := range params {
		p[k] = v
	}
	p["resource"] = resource
	p["operation"] = operation
	return n.Execute(ctx, nil, p)
}

func (n *Node) selection(first domain.Item, params ParamSource) (string, string, error) {
	raw, err := params.Params(0, first)
	if err != nil {
		return "", "", fmt.Errorf("item 0: %w", err)
	}
	values := n.props.Resolve(raw).Values
	resource, _ := values["resource"].(string)
	operation, _ := values["operation"].(string)
	// Unknown selections are not visible properties; keep them so dispatch can report them.
	if resource == "" {
		resource, _ = raw["resource"].(string)
	}
	if operation == "" {
		operation, _ = raw["operation"].(string)
	}
	return resource, operation, nil
}

func (n *Node) executeItem(ctx context.Context, i int, item domain.Item, resource, operation string, params ParamSource) (any, error) {
	raw, err := params.Params(i, item)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	raw["resource"] = resource
	raw["operation"] = operation

	if _, ok := n.registry.Lookup(resource, operation); !ok {
		return nil, fmt.Errorf("%w: %s for resource: %s", domain.ErrUnknownOperation, operation, resource)
	}

	resolved := n.props.Resolve(raw)
	if err := n.props.Validate(resolved); err != nil {
		return nil, err
	}

	ev := &domain.OperationEvent{Resource: resource, Operation: operation, Item: i}
	if n.hooks.OnOperationStart != nil {
		n.hooks.OnOperationStart(ctx, ev)
	}

	start := time.Now()
	n.logger.Debug("Dispatching operation", "resource", resource, "operation", operation, "item", i)
	result, err := n.registry.Execute(ctx, resource, operation, registry.Call{
		Params: resolved.Values,
		Item:   item,
	})

	ev.Duration = time.Since(start)
	ev.Err = err
	if n.hooks.OnOperationDone != nil {
		n.hooks.OnOperationDone(ctx, ev)
	}
	return result, err
}
