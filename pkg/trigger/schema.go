package trigger

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPISpec returns the raw OpenAPI document describing the webhook host.
func OpenAPISpec() []byte {
	return openAPISpec
}

var (
	docOnce sync.Once
	doc     *openapi3.T
	docErr  error
)

// OpenAPI returns the parsed and validated webhook document.
func OpenAPI() (*openapi3.T, error) {
	docOnce.Do(func() {
		loader := openapi3.NewLoader()
		d, err := loader.LoadFromData(openAPISpec)
		if err != nil {
			docErr = fmt.Errorf("load webhook spec: %w", err)
			return
		}
		if err := d.Validate(loader.Context); err != nil {
			docErr = fmt.Errorf("invalid webhook spec: %w", err)
			return
		}
		doc = d
	})
	return doc, docErr
}

func componentSchema(name string) (*openapi3.Schema, error) {
	d, err := OpenAPI()
	if err != nil {
		return nil, err
	}
	ref, ok := d.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("webhook spec: schema %q not found", name)
	}
	return ref.Value, nil
}
