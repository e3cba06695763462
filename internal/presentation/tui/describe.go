package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/enlyst/pkg/schema"
)

// DescribeMarkdown documents every operation of the given resources as
// markdown: one section per operation with a table of its visible fields.
// An empty resources list documents all of them.
func DescribeMarkdown(props schema.Collection, resources ...string) string {
	if len(resources) == 0 {
		if p, ok := props.Lookup("resource", nil); ok {
			resources = p.OptionValues()
		}
	}

	var b strings.Builder
	b.WriteString("# Enlyst operations\n")
	for _, res := range resources {
		op, ok := props.Lookup("operation", map[string]any{"resource": res})
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", res)
		for _, o := range op.Options {
			fmt.Fprintf(&b, "\n### %s (`%s`)\n\n", o.Name, o.Value)
			if o.Description != "" {
				b.WriteString(o.Description + "\n\n")
			}
			writeFields(&b, props.Resolve(map[string]any{"resource": res, "operation": o.Value}).Visible)
		}
	}
	return b.String()
}

func writeFields(b *strings.Builder, fields []schema.Property) {
	var rows []schema.Property
	for _, p := range fields {
		if p.Name == "resource" || p.Name == "operation" || p.Type == schema.FieldHidden {
			continue
		}
		rows = append(rows, p)
	}
	if len(rows) == 0 {
		b.WriteString("_No parameters._\n")
		return
	}

	b.WriteString("| Parameter | Type | Required | Default | Description |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, p := range rows {
		required := ""
		if p.Required {
			required = "yes"
		}
		desc := p.Description
		if len(p.Options) > 0 {
			desc = strings.TrimSpace(desc + " One of: " + strings.Join(p.OptionValues(), ", ") + ".")
		}
		fmt.Fprintf(b, "| `%s` | %s | %s | %s | %s |\n",
			p.Name, p.Type, required, formatDefault(p.Default), escapeCell(desc))
	}
}

func formatDefault(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return ""
		}
		return "`" + s + "`"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return "`" + string(data) + "`"
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
