package schema

import (
	"fmt"
	"slices"
)

// FieldType is the kind of input a Property expects.
type FieldType string

const (
	FieldString       FieldType = "string"
	FieldNumber       FieldType = "number"
	FieldBoolean      FieldType = "boolean"
	FieldOptions      FieldType = "options"
	FieldMultiOptions FieldType = "multiOptions"
	FieldHidden       FieldType = "hidden"
)

// Option is one selectable value of an options or multiOptions property.
type Option struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Action is the human label of an operation option (e.g. "Create a project").
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

// Show is a display rule: the property is visible when, for every key, the current
// value of that parameter is one of the listed values.
type Show map[string][]any

// Property describes a single parameter of a workflow step.
type Property struct {
	Name        string    `json:"name" yaml:"name"`
	DisplayName string    `json:"displayName" yaml:"displayName"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Show        Show      `json:"show,omitempty" yaml:"show,omitempty"`
	MinValue    *float64  `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	Password    bool      `json:"password,omitempty" yaml:"password,omitempty"`
}

// Min is a helper for Property.MinValue literals.
func Min(v float64) *float64 { return &v }

// VisibleWith reports whether the property's display rule matches values.
func (p Property) VisibleWith(values map[string]any) bool {
	for key, allowed := range p.Show {
		v, ok := values[key]
		if !ok {
			return false
		}
		if !slices.ContainsFunc(allowed, func(a any) bool { return sameValue(a, v) }) {
			return false
		}
	}
	return true
}

// OptionValues returns the values of the property's options.
func (p Property) OptionValues() []string {
	values := make([]string, len(p.Options))
	for i, o := range p.Options {
		values[i] = o.Value
	}
	return values
}

// ValueType returns the validator for values of this property.
func (p Property) ValueType() Type {
	switch p.Type {
	case FieldString:
		return String()
	case FieldNumber:
		return Float()
	case FieldBoolean:
		return Bool()
	case FieldOptions:
		return Enum(p.OptionValues()...)
	case FieldMultiOptions:
		return Slice(Enum(p.OptionValues()...))
	default:
		return Custom("any", func(any) error { return nil })
	}
}

func sameValue(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
