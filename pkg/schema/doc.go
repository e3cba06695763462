// Package schema describes the parameters a workflow step accepts and validates them.
//
// A Collection is an ordered list of Property descriptors. Each Property carries a
// field type, an optional default, an option list and a display rule (Show) naming the
// parameter values under which the property is visible. Resolving a collection against
// user-supplied parameters yields the visible properties with defaults applied:
//
//	props := schema.Collection{
//	    {Name: "resource", Type: schema.FieldOptions, Default: "project",
//	        Options: []schema.Option{{Name: "Project", Value: "project"}}},
//	    {Name: "projectId", Type: schema.FieldString, Required: true,
//	        Show: schema.Show{"resource": {"project"}}},
//	}
//
//	resolved := props.Resolve(map[string]any{"projectId": "p1"})
//	if err := props.Validate(resolved); err != nil {
//	    // err is an *AggregateError of *ValidationError
//	}
//
// The value-level validators (String, Int, Float, Bool, Slice, Custom) are usable on their
// own through Schema and Validate for plain maps.
package schema
