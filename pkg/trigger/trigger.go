package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/ports"
)

// Authentication selects how inbound deliveries are checked.
type Authentication string

const (
	AuthNone        Authentication = "none"
	AuthCredentials Authentication = "credentials"
)

// Response messages.
const (
	MsgUnauthorized       = "Unauthorized"
	MsgInvalidPayload     = "Invalid payload"
	MsgNotSubscribed      = "Event type not subscribed"
	MsgProjectFiltered    = "Project not matching filter"
	MsgInvalidCompletion  = "Invalid enrichment completion payload"
	MsgReceived           = "Webhook received successfully"
	completionSchemaName  = "EnrichmentCompletedEvent"
	defaultAuthentication = AuthNone
)

// Config holds the trigger parameters.
type Config struct {
	Authentication Authentication `mapstructure:"authentication" yaml:"authentication" json:"authentication"`
	// AccessToken is the expected bearer token when Authentication is AuthCredentials.
	AccessToken   string   `mapstructure:"accessToken" yaml:"-" json:"-"`
	Events        []string `mapstructure:"events" yaml:"events" json:"events"`
	ProjectFilter string   `mapstructure:"projectFilter" yaml:"projectFilter" json:"projectFilter"`
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	switch c.Authentication {
	case AuthNone, "":
	case AuthCredentials:
		if c.AccessToken == "" {
			return errors.New("trigger: credentials authentication requires an access token")
		}
	default:
		return fmt.Errorf("trigger: unknown authentication %q", c.Authentication)
	}
	return nil
}

// Result is the HTTP answer to a delivery, plus the emitted item when accepted.
type Result struct {
	Status int
	Body   domain.Object
	// Item is nil unless the delivery was accepted.
	Item *domain.Item
}

// Emitter receives accepted deliveries (typically the host workflow).
type Emitter interface {
	Emit(ctx context.Context, item domain.Item) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, item domain.Item) error

func (f EmitterFunc) Emit(ctx context.Context, item domain.Item) error {
	return f(ctx, item)
}

// Trigger validates inbound Enlyst webhooks and forwards accepted ones.
type Trigger struct {
	cfg        Config
	completion *openapi3.Schema
	store      ports.EventStore
	emitter    Emitter
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	now        func() time.Time
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithEventStore records every accepted delivery.
func WithEventStore(s ports.EventStore) Option {
	return func(t *Trigger) {
		t.store = s
	}
}

// WithEmitter sets the receiver of accepted deliveries.
func WithEmitter(e Emitter) Option {
	return func(t *Trigger) {
		t.emitter = e
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trigger) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithLifecycleHooks registers the OnWebhook callback.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Trigger) {
		t.hooks = hooks
	}
}

// WithClock overrides the time source used for received-at stamps.
func WithClock(now func() time.Time) Option {
	return func(t *Trigger) {
		t.now = now
	}
}

// New creates a Trigger. Events defaults to enrichment.completed.
func New(cfg Config, opts ...Option) (*Trigger, error) {
	if cfg.Authentication == "" {
		cfg.Authentication = defaultAuthentication
	}
	if len(cfg.Events) == 0 {
		cfg.Events = []string{domain.EventEnrichmentCompleted}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	completion, err := componentSchema(completionSchemaName)
	if err != nil {
		return nil, err
	}

	t := &Trigger{
		cfg:        cfg,
		completion: completion,
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Config returns the effective configuration.
func (t *Trigger) Config() Config {
	return t.cfg
}

// Handle applies the delivery rules in order: authentication, payload shape,
// event subscription, project filter and completion payload. Only a delivery
// passing all of them is emitted and stored.
func (t *Trigger) Handle(ctx context.Context, headers http.Header, body []byte) Result {
	res, event := t.handle(ctx, headers, body)
	if t.hooks.OnWebhook != nil {
		t.hooks.OnWebhook(ctx, res.Status, event)
	}
	return res
}

func (t *Trigger) handle(ctx context.Context, headers http.Header, body []byte) (Result, string) {
	if t.cfg.Authentication == AuthCredentials {
		if headers.Get("Authorization") != "Bearer "+t.cfg.AccessToken {
			t.logger.Warn("Rejected webhook: bad authorization header")
			return failure(http.StatusUnauthorized, MsgUnauthorized), ""
		}
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return failure(http.StatusBadRequest, MsgInvalidPayload), ""
	}
	payload, ok := raw.(map[string]any)
	if !ok {
		return failure(http.StatusBadRequest, MsgInvalidPayload), ""
	}

	event, _ := payload["event"].(string)
	if event == "" || !slices.Contains(t.cfg.Events, event) {
		t.logger.Debug("Ignoring unsubscribed event", "event", event)
		return message(MsgNotSubscribed), event
	}

	data, _ := payload["data"].(map[string]any)
	projectID, _ := data["projectId"].(string)
	if t.cfg.ProjectFilter != "" && projectID != t.cfg.ProjectFilter {
		t.logger.Debug("Ignoring event for other project", "project_id", projectID, "filter", t.cfg.ProjectFilter)
		return message(MsgProjectFiltered), event
	}

	if event == domain.EventEnrichmentCompleted {
		if err := t.checkCompletion(payload, data); err != nil {
			t.logger.Warn("Rejected enrichment completion payload", "err", err)
			return failure(http.StatusBadRequest, MsgInvalidCompletion), event
		}
	}

	item := domain.NewItem(domain.Object{
		"event":       event,
		"timestamp":   payload["timestamp"],
		"projectId":   data["projectId"],
		"projectName": data["projectName"],
		"stats":       data["stats"],
		"completedAt": data["completedAt"],
		"headers":     flattenHeaders(headers),
		"body":        payload,
	}, 0)

	t.record(ctx, event, projectID, item)
	if t.emitter != nil {
		if err := t.emitter.Emit(ctx, item); err != nil {
			t.logger.Error("Failed to emit webhook item", "event", event, "err", err)
		}
	}

	t.logger.Info("Webhook received", "event", event, "project_id", projectID)
	res := message(MsgReceived)
	res.Item = &item
	return res, event
}

func (t *Trigger) record(ctx context.Context, event, projectID string, item domain.Item) {
	if t.store == nil {
		return
	}
	ev := &domain.StoredEvent{
		ID:         uuid.NewString(),
		ReceivedAt: t.now().UTC(),
		Event:      event,
		ProjectID:  projectID,
		Output:     item.JSON,
	}
	if err := t.store.Save(ctx, ev); err != nil {
		t.logger.Error("Failed to store webhook event", "event", event, "err", err)
	}
}

// checkCompletion only requires data.projectId and data.stats to be present and
// set. Types of the other fields are not checked.
func (t *Trigger) checkCompletion(payload, data map[string]any) error {
	if err := t.completion.VisitJSON(payload); err != nil {
		return err
	}
	if !present(data["projectId"]) {
		return errors.New("data.projectId is empty")
	}
	if !present(data["stats"]) {
		return errors.New("data.stats is empty")
	}
	return nil
}

// present reports whether v is set: not null, not an empty string, not zero
// and not false.
func present(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}

func failure(status int, msg string) Result {
	return Result{Status: status, Body: domain.Object{"error": msg}}
}

func message(msg string) Result {
	return Result{Status: http.StatusOK, Body: domain.Object{"message": msg}}
}

// flattenHeaders lower-cases header names and joins repeated values.
func flattenHeaders(h http.Header) domain.Object {
	out := make(domain.Object, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}
