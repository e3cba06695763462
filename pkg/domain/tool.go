package domain

// Tool defines metadata about an operation available to tool-calling hosts.
// Parameters is a JSON-schema style object describing the accepted arguments.
type Tool struct {
	Name        string         `json:"name" yaml:"name" mapstructure:"name"`
	Description string         `json:"description" yaml:"description" mapstructure:"description"`
	Resource    string         `json:"resource" yaml:"resource" mapstructure:"resource"`
	Operation   string         `json:"operation" yaml:"operation" mapstructure:"operation"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}
