package observability_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/enlyst/pkg/client"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/observability"
)

var _ client.Observer = (*observability.Metrics)(nil)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := observability.NewMetrics()
	ctx := context.Background()

	m.ObserveRequest(ctx, "project.getAll", 200, 10*time.Millisecond, nil)
	m.ObserveRequest(ctx, "project.getAll", 500, 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("project.getAll", "200", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("project.getAll", "500", "error")))
}

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnOperationDone(ctx, &domain.OperationEvent{Resource: "lead", Operation: "enrichLeads", Duration: time.Second})
	hooks.OnWebhook(ctx, 200, "enrichment.completed")
	hooks.OnWebhook(ctx, 400, "")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("lead", "enrichLeads", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Webhooks.WithLabelValues("enrichment.completed", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Webhooks.WithLabelValues("unknown", "400")))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveRequest(context.Background(), "referral.getStats", 200, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `enlyst_api_requests_total{operation="referral.getStats",outcome="success",status_code="200"} 1`)
}

func TestCombineHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnWebhook: func(context.Context, int, string) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{OnWebhook: func(context.Context, int, string) { calls = append(calls, "b") }}

	combined := observability.CombineHooks(a, domain.LifecycleHooks{}, b)
	combined.OnWebhook(context.Background(), 200, "x")
	combined.OnOperationStart(context.Background(), &domain.OperationEvent{})

	assert.Equal(t, []string{"a", "b"}, calls)
}
