package trigger

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/schema"
)

// Description returns the trigger's parameter table.
func Description() schema.Collection {
	return schema.Collection{
		{
			Name:        "authentication",
			DisplayName: "Authentication",
			Type:        schema.FieldOptions,
			Default:     string(AuthNone),
			Options: []schema.Option{
				{Name: "None", Value: string(AuthNone)},
				{Name: "API Key", Value: string(AuthCredentials)},
			},
			Description: "Authentication method for webhook security",
		},
		{
			Name:        "events",
			DisplayName: "Events",
			Type:        schema.FieldMultiOptions,
			Default:     []any{domain.EventEnrichmentCompleted},
			Options: []schema.Option{
				{
					Name:        "Enrichment Completed",
					Value:       domain.EventEnrichmentCompleted,
					Description: "Triggered when a batch enrichment process is completed",
				},
			},
			Description: "Events that will trigger this webhook",
		},
		{
			Name:        "projectFilter",
			DisplayName: "Project Filter",
			Type:        schema.FieldString,
			Default:     "",
			Placeholder: "project_123",
			Description: "Only trigger for specific project ID (leave empty for all projects)",
		},
	}
}

// ConfigFromParams resolves raw parameters against Description and decodes them.
// The access token is not a parameter; set it on the returned Config.
func ConfigFromParams(params map[string]any) (Config, error) {
	props := Description()
	resolved := props.Resolve(params)
	if err := props.Validate(resolved); err != nil {
		return Config{}, err
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(resolved.Values); err != nil {
		return Config{}, fmt.Errorf("decode trigger parameters: %w", err)
	}
	return cfg, nil
}
