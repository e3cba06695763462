package registry

import (
	"context"
	"testing"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Execute(t *testing.T) {
	r := NewRegistry()
	r.Register("project", "getById", func(ctx context.Context, c Call) (any, error) {
		return domain.Object{"id": c.Params["projectId"]}, nil
	})

	out, err := r.Execute(context.Background(), "project", "getById", Call{Params: Params{"projectId": "p1"}})
	require.NoError(t, err)
	assert.Equal(t, domain.Object{"id": "p1"}, out)
}

func TestRegistry_UnknownOperation(t *testing.T) {
	_, err := NewRegistry().Execute(context.Background(), "lead", "explode", Call{})
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)
	assert.EqualError(t, err, "unknown operation: explode for resource: lead")
}

func TestRegistry_KeysSorted(t *testing.T) {
	r := NewRegistry()
	noop := func(context.Context, Call) (any, error) { return nil, nil }
	r.Register("referral", "getStats", noop)
	r.Register("lead", "uploadCsv", noop)
	r.Register("lead", "enrichLeads", noop)

	assert.Equal(t, []Key{
		{"lead", "enrichLeads"},
		{"lead", "uploadCsv"},
		{"referral", "getStats"},
	}, r.Keys())
}
