package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/enlyst/pkg/schema"
)

// Overlay highlights a selected resource and operation on the diagram.
type Overlay struct {
	Resource  string
	Operation string
}

// GenerateMermaid produces a Mermaid flowchart of the node's operations:
// the node fans out to each resource, and each resource to its operations.
// Shapes:
// - Node: ((Circle))
// - Resource: [Rectangle]
// - Operation: [[Subroutine]]
// Operations that poll the API get a dotted self loop.
func GenerateMermaid(props schema.Collection, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    enlyst((\"Enlyst\"))\n")

	res, ok := props.Lookup("resource", nil)
	if !ok {
		return sb.String()
	}

	for _, r := range res.Options {
		resID := sanitizeMermaidID(r.Value)
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", resID, escapeLabel(r.Name))
		fmt.Fprintf(&sb, "    enlyst --> %s\n", resID)

		ops, ok := props.Lookup("operation", map[string]any{"resource": r.Value})
		if !ok {
			continue
		}
		for _, o := range ops.Options {
			opID := operationID(r.Value, o.Value)
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", opID, escapeLabel(o.Name))
			arrow := "-->"
			if o.Action != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(o.Action))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", resID, arrow, opID)
			if strings.HasPrefix(o.Value, "waitFor") {
				fmt.Fprintf(&sb, "    %s -. poll .-> %s\n", opID, opID)
			}
		}
	}

	if overlay != nil && overlay.Resource != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		if overlay.Operation == "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Resource))
		} else {
			fmt.Fprintf(&sb, "    class %s visited;\n", sanitizeMermaidID(overlay.Resource))
			fmt.Fprintf(&sb, "    class %s current;\n", operationID(overlay.Resource, overlay.Operation))
		}
	}

	return sb.String()
}

func operationID(resource, operation string) string {
	return sanitizeMermaidID(resource + "_" + operation)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
