package schema

// JSONSchema describes the properties visible under scope as a JSON-schema object.
// Properties named in skip (typically the controlling resource/operation) are omitted.
func (c Collection) JSONSchema(scope map[string]any, skip ...string) map[string]any {
	r := c.Resolve(scope)
	omit := make(map[string]bool, len(skip))
	for _, name := range skip {
		omit[name] = true
	}

	props := make(map[string]any)
	required := []string{}
	for _, p := range r.Visible {
		if omit[p.Name] || p.Type == FieldHidden {
			continue
		}
		props[p.Name] = p.jsonSchema()
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func (p Property) jsonSchema() map[string]any {
	s := map[string]any{}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if p.Default != nil {
		s["default"] = p.Default
	}

	switch p.Type {
	case FieldNumber:
		s["type"] = "number"
		if p.MinValue != nil {
			s["minimum"] = *p.MinValue
		}
	case FieldBoolean:
		s["type"] = "boolean"
	case FieldOptions:
		s["type"] = "string"
		s["enum"] = p.OptionValues()
	case FieldMultiOptions:
		s["type"] = "array"
		s["items"] = map[string]any{"type": "string", "enum": p.OptionValues()}
	default:
		s["type"] = "string"
	}
	return s
}
