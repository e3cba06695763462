package trigger_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/enlyst/pkg/adapters/memory"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/trigger"
)

const completed = `{
	"event": "enrichment.completed",
	"timestamp": "2025-01-15T10:30:00Z",
	"data": {
		"projectId": "proj_123",
		"projectName": "Leads Q1",
		"stats": {"total": 100, "completed": 95, "failed": 3, "stopped": 2, "queued": 0, "processing": 0},
		"completedAt": "2025-01-15T10:29:58Z"
	}
}`

func newTrigger(t *testing.T, cfg trigger.Config, opts ...trigger.Option) *trigger.Trigger {
	t.Helper()
	tr, err := trigger.New(cfg, opts...)
	require.NoError(t, err)
	return tr
}

func TestHandle_Accepts(t *testing.T) {
	store := memory.NewStore()
	var emitted []domain.Item
	tr := newTrigger(t, trigger.Config{},
		trigger.WithEventStore(store),
		trigger.WithEmitter(trigger.EmitterFunc(func(_ context.Context, item domain.Item) error {
			emitted = append(emitted, item)
			return nil
		})),
		trigger.WithClock(func() time.Time { return time.Date(2025, 1, 15, 10, 30, 1, 0, time.UTC) }),
	)

	headers := http.Header{"Content-Type": {"application/json"}, "X-Request-Id": {"abc"}}
	res := tr.Handle(context.Background(), headers, []byte(completed))

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, domain.Object{"message": trigger.MsgReceived}, res.Body)
	require.NotNil(t, res.Item)
	require.Len(t, emitted, 1)

	out := emitted[0].JSON
	assert.Equal(t, "enrichment.completed", out["event"])
	assert.Equal(t, "2025-01-15T10:30:00Z", out["timestamp"])
	assert.Equal(t, "proj_123", out["projectId"])
	assert.Equal(t, "Leads Q1", out["projectName"])
	assert.Equal(t, "2025-01-15T10:29:58Z", out["completedAt"])
	assert.Equal(t, 95.0, out["stats"].(map[string]any)["completed"])
	assert.Equal(t, "abc", out["headers"].(domain.Object)["x-request-id"])
	assert.Equal(t, "enrichment.completed", out["body"].(map[string]any)["event"])

	events, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "proj_123", events[0].ProjectID)
	assert.Equal(t, domain.EventEnrichmentCompleted, events[0].Event)
	assert.Len(t, events[0].ID, 36)
	assert.Equal(t, 2025, events[0].ReceivedAt.Year())
}

func TestHandle_Rules(t *testing.T) {
	auth := trigger.Config{Authentication: trigger.AuthCredentials, AccessToken: "secret"}
	bearer := http.Header{"Authorization": {"Bearer secret"}}

	tests := []struct {
		name    string
		cfg     trigger.Config
		headers http.Header
		body    string
		status  int
		key     string
		msg     string
	}{
		{
			name: "missing authorization", cfg: auth,
			body: completed, status: 401, key: "error", msg: trigger.MsgUnauthorized,
		},
		{
			name: "wrong token", cfg: auth, headers: http.Header{"Authorization": {"Bearer nope"}},
			body: completed, status: 401, key: "error", msg: trigger.MsgUnauthorized,
		},
		{
			name: "authorized", cfg: auth, headers: bearer,
			body: completed, status: 200, key: "message", msg: trigger.MsgReceived,
		},
		{
			name: "auth checked before payload", cfg: auth,
			body: `not json`, status: 401, key: "error", msg: trigger.MsgUnauthorized,
		},
		{
			name: "not json",
			body: `not json`, status: 400, key: "error", msg: trigger.MsgInvalidPayload,
		},
		{
			name: "array body",
			body: `[1,2]`, status: 400, key: "error", msg: trigger.MsgInvalidPayload,
		},
		{
			name: "null body",
			body: `null`, status: 400, key: "error", msg: trigger.MsgInvalidPayload,
		},
		{
			name: "missing event",
			body: `{"data":{}}`, status: 200, key: "message", msg: trigger.MsgNotSubscribed,
		},
		{
			name: "other event",
			body: `{"event":"project.deleted"}`, status: 200, key: "message", msg: trigger.MsgNotSubscribed,
		},
		{
			name: "project filter mismatch", cfg: trigger.Config{ProjectFilter: "proj_999"},
			body: completed, status: 200, key: "message", msg: trigger.MsgProjectFiltered,
		},
		{
			name: "filter checked before payload shape", cfg: trigger.Config{ProjectFilter: "proj_999"},
			body: `{"event":"enrichment.completed"}`, status: 200, key: "message", msg: trigger.MsgProjectFiltered,
		},
		{
			name: "project filter match", cfg: trigger.Config{ProjectFilter: "proj_123"},
			body: completed, status: 200, key: "message", msg: trigger.MsgReceived,
		},
		{
			name: "completion without data",
			body: `{"event":"enrichment.completed"}`, status: 400, key: "error", msg: trigger.MsgInvalidCompletion,
		},
		{
			name: "completion without project id",
			body:   `{"event":"enrichment.completed","data":{"projectId":"","stats":{}}}`,
			status: 400, key: "error", msg: trigger.MsgInvalidCompletion,
		},
		{
			name: "completion without stats",
			body:   `{"event":"enrichment.completed","data":{"projectId":"p"}}`,
			status: 400, key: "error", msg: trigger.MsgInvalidCompletion,
		},
		{
			name: "completion with null stats",
			body:   `{"event":"enrichment.completed","data":{"projectId":"p","stats":null}}`,
			status: 400, key: "error", msg: trigger.MsgInvalidCompletion,
		},
		{
			name:   "completion with zero project id",
			body:   `{"event":"enrichment.completed","data":{"projectId":0,"stats":{}}}`,
			status: 400, key: "error", msg: trigger.MsgInvalidCompletion,
		},
		{
			name:   "completion data not an object",
			body:   `{"event":"enrichment.completed","data":"p1"}`,
			status: 400, key: "error", msg: trigger.MsgInvalidCompletion,
		},
		{
			name:   "completion with null completedAt",
			body:   `{"event":"enrichment.completed","timestamp":"t","data":{"projectId":"p1","stats":{"total":1},"completedAt":null}}`,
			status: 200, key: "message", msg: trigger.MsgReceived,
		},
		{
			name:   "completion with numeric timestamp",
			body:   `{"event":"enrichment.completed","timestamp":1736937000,"data":{"projectId":"p1","stats":{"total":1}}}`,
			status: 200, key: "message", msg: trigger.MsgReceived,
		},
		{
			name:   "completion with null project name",
			body:   `{"event":"enrichment.completed","data":{"projectId":"p1","projectName":null,"stats":{"total":1}}}`,
			status: 200, key: "message", msg: trigger.MsgReceived,
		},
		{
			name:   "completion with numeric project id",
			body:   `{"event":"enrichment.completed","data":{"projectId":42,"stats":{"total":1}}}`,
			status: 200, key: "message", msg: trigger.MsgReceived,
		},
		{
			name:   "completion with string stats",
			body:   `{"event":"enrichment.completed","data":{"projectId":"p1","stats":{"total":"100","completed":"95"}}}`,
			status: 200, key: "message", msg: trigger.MsgReceived,
		},
		{
			name: "minimal completion",
			body:   `{"event":"enrichment.completed","data":{"projectId":"p","stats":{}}}`,
			status: 200, key: "message", msg: trigger.MsgReceived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emitted := 0
			tr := newTrigger(t, tt.cfg, trigger.WithEmitter(trigger.EmitterFunc(func(context.Context, domain.Item) error {
				emitted++
				return nil
			})))
			headers := tt.headers
			if headers == nil {
				headers = http.Header{}
			}

			res := tr.Handle(context.Background(), headers, []byte(tt.body))
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, domain.Object{tt.key: tt.msg}, res.Body)

			if tt.msg == trigger.MsgReceived {
				assert.Equal(t, 1, emitted)
				assert.NotNil(t, res.Item)
			} else {
				assert.Zero(t, emitted)
				assert.Nil(t, res.Item)
			}
		})
	}
}

func TestHandle_Hooks(t *testing.T) {
	var statuses []int
	var events []string
	tr := newTrigger(t, trigger.Config{}, trigger.WithLifecycleHooks(domain.LifecycleHooks{
		OnWebhook: func(_ context.Context, status int, event string) {
			statuses = append(statuses, status)
			events = append(events, event)
		},
	}))

	tr.Handle(context.Background(), http.Header{}, []byte(completed))
	tr.Handle(context.Background(), http.Header{}, []byte(`[]`))

	assert.Equal(t, []int{200, 400}, statuses)
	assert.Equal(t, []string{"enrichment.completed", ""}, events)
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tr := newTrigger(t, trigger.Config{})
		cfg := tr.Config()
		assert.Equal(t, trigger.AuthNone, cfg.Authentication)
		assert.Equal(t, []string{domain.EventEnrichmentCompleted}, cfg.Events)
	})

	t.Run("credentials need a token", func(t *testing.T) {
		_, err := trigger.New(trigger.Config{Authentication: trigger.AuthCredentials})
		assert.Error(t, err)
	})

	t.Run("unknown authentication", func(t *testing.T) {
		_, err := trigger.New(trigger.Config{Authentication: "basic"})
		assert.Error(t, err)
	})
}

func TestConfigFromParams(t *testing.T) {
	cfg, err := trigger.ConfigFromParams(map[string]any{"projectFilter": "proj_1"})
	require.NoError(t, err)
	assert.Equal(t, trigger.AuthNone, cfg.Authentication)
	assert.Equal(t, []string{"enrichment.completed"}, cfg.Events)
	assert.Equal(t, "proj_1", cfg.ProjectFilter)

	_, err = trigger.ConfigFromParams(map[string]any{"events": []any{"nope"}})
	assert.Error(t, err)
}

func TestOpenAPI(t *testing.T) {
	doc, err := trigger.OpenAPI()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/webhook/enlyst"))
	assert.Contains(t, string(trigger.OpenAPISpec()), "EnrichmentCompletedEvent")
}
