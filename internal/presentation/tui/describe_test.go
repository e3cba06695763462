package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/enlyst/pkg/node"
)

func TestDescribeMarkdown(t *testing.T) {
	md := DescribeMarkdown(node.Description(), "lead")

	assert.Contains(t, md, "## lead")
	assert.NotContains(t, md, "## project")
	assert.Contains(t, md, "(`enrichLeads`)")
	assert.Contains(t, md, "| `projectId` | string | yes |")
	assert.Contains(t, md, "| `companyColumn` | string | yes | `Firmenname` |")
	assert.NotContains(t, md, "`dryRun`")
}

func TestDescribeMarkdown_AllResources(t *testing.T) {
	md := DescribeMarkdown(node.Description())

	for _, res := range []string{"## project", "## lead", "## referral"} {
		assert.Contains(t, md, res)
	}
	assert.Contains(t, md, "_No parameters._")
}

func TestFormatDefault(t *testing.T) {
	assert.Equal(t, "", formatDefault(nil))
	assert.Equal(t, "", formatDefault(""))
	assert.Equal(t, "`de`", formatDefault("de"))
	assert.Equal(t, "`50`", formatDefault(50))
	assert.Equal(t, "`[\"stopped\"]`", formatDefault([]any{"stopped"}))
}
