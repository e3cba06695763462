package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Collection is an ordered list of properties.
// Controlling properties (those referenced by Show rules) must precede the
// properties they control so that their defaults are known when resolving.
type Collection []Property

// Resolved is the outcome of resolving a Collection against parameters.
type Resolved struct {
	// Values holds the values of visible properties, defaults included.
	Values map[string]any
	// Visible lists the properties that apply, in declaration order.
	Visible []Property
}

// Resolve applies display rules and defaults to params.
// Parameters that do not belong to a visible property are dropped.
// When several properties share a name, the first visible one wins.
func (c Collection) Resolve(params map[string]any) Resolved {
	scope := make(map[string]any, len(params))
	values := make(map[string]any)
	seen := make(map[string]bool)
	var visible []Property

	for _, p := range c {
		if seen[p.Name] || !p.VisibleWith(scope) {
			continue
		}
		seen[p.Name] = true
		visible = append(visible, p)
		if v, ok := params[p.Name]; ok && v != nil {
			values[p.Name] = v
		} else if p.Default != nil {
			values[p.Name] = cloneDefault(p.Default)
		} else {
			continue
		}
		scope[p.Name] = values[p.Name]
	}

	return Resolved{Values: values, Visible: visible}
}

// Validate checks resolved values against the visible properties.
// Returns nil or an *AggregateError listing every failure.
func (c Collection) Validate(r Resolved) error {
	var errs []error
	for _, p := range r.Visible {
		v, ok := r.Values[p.Name]
		if !ok || isEmpty(v) {
			if p.Required {
				errs = append(errs, &ValidationError{Key: p.Name, Reason: "required"})
			}
			continue
		}
		if err := p.ValueType().Validate(v); err != nil {
			errs = append(errs, &ValidationError{Key: p.Name, Reason: err.Error(), Value: v})
			continue
		}
		if p.MinValue != nil {
			if f, _ := toFloat(v); f < *p.MinValue {
				errs = append(errs, &ValidationError{
					Key:    p.Name,
					Reason: fmt.Sprintf("must be at least %v", *p.MinValue),
					Value:  v,
				})
			}
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Lookup returns the first property named name whose display rule matches values.
func (c Collection) Lookup(name string, values map[string]any) (Property, bool) {
	for _, p := range c {
		if p.Name == name && p.VisibleWith(values) {
			return p, true
		}
	}
	return Property{}, false
}

// Coerce converts a raw string (e.g. from a CLI flag) into the Go value the
// property expects. Unknown parameters are returned as plain strings.
func (c Collection) Coerce(name, raw string, values map[string]any) (any, error) {
	p, ok := c.Lookup(name, values)
	if !ok {
		p, ok = c.first(name)
	}
	if !ok {
		return raw, nil
	}

	switch p.Type {
	case FieldNumber:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return int(i), nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ValidationError{Key: name, Reason: "expected number", Value: raw}
		}
		return f, nil
	case FieldBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &ValidationError{Key: name, Reason: "expected bool", Value: raw}
		}
		return b, nil
	case FieldMultiOptions:
		if raw == "" {
			return []any{}, nil
		}
		parts := strings.Split(raw, ",")
		out := make([]any, len(parts))
		for i, part := range parts {
			out[i] = strings.TrimSpace(part)
		}
		return out, nil
	default:
		return raw, nil
	}
}

func (c Collection) first(name string) (Property, bool) {
	i := slices.IndexFunc(c, func(p Property) bool { return p.Name == name })
	if i < 0 {
		return Property{}, false
	}
	return c[i], true
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	default:
		return false
	}
}

func cloneDefault(v any) any {
	switch x := v.(type) {
	case []any:
		return slices.Clone(x)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	default:
		return v
	}
}
