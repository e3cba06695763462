package node

import (
	"fmt"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/schema"
)

// ToolName is the tool-calling name of an operation.
func ToolName(resource, operation string) string {
	return fmt.Sprintf("enlyst_%s_%s", resource, operation)
}

// Tools lists one tool per operation, with the parameters visible for that
// operation described as a JSON-schema object.
func (n *Node) Tools() []domain.Tool {
	var tools []domain.Tool
	for _, res := range n.resources() {
		for _, op := range n.operations(res) {
			scope := map[string]any{"resource": res, "operation": op.Value}
			desc := op.Description
			if op.Action != "" {
				desc = op.Action + ". " + desc
			}
			tools = append(tools, domain.Tool{
				Name:        ToolName(res, op.Value),
				Description: desc,
				Resource:    res,
				Operation:   op.Value,
				Parameters:  n.props.JSONSchema(scope, "resource", "operation"),
			})
		}
	}
	return tools
}

func (n *Node) resources() []string {
	p, ok := n.props.Lookup("resource", nil)
	if !ok {
		return nil
	}
	return p.OptionValues()
}

func (n *Node) operations(resource string) []schema.Option {
	p, ok := n.props.Lookup("operation", map[string]any{"resource": resource})
	if !ok {
		return nil
	}
	return p.Options
}
