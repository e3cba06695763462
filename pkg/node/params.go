package node

import (
	"fmt"
	"maps"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/enlyst/pkg/domain"
)

// ParamSource supplies the raw parameters for each input item.
// Values that are absent fall back to the property defaults.
type ParamSource interface {
	Params(index int, item domain.Item) (map[string]any, error)
}

// StaticParams uses the same parameters for every item.
type StaticParams map[string]any

func (p StaticParams) Params(int, domain.Item) (map[string]any, error) {
	return maps.Clone(map[string]any(p)), nil
}

// ParamFunc adapts a function to ParamSource.
type ParamFunc func(index int, item domain.Item) (map[string]any, error)

func (f ParamFunc) Params(index int, item domain.Item) (map[string]any, error) {
	return f(index, item)
}

// ItemParams overlays each item's JSON on top of base, so per-item fields
// (for example a projectId coming from a previous step) override the static ones.
func ItemParams(base map[string]any) ParamSource {
	return ParamFunc(func(_ int, item domain.Item) (map[string]any, error) {
		out := maps.Clone(base)
		if out == nil {
			out = make(map[string]any, len(item.JSON))
		}
		maps.Copy(out, item.JSON)
		return out, nil
	})
}

// decode copies resolved parameters into a typed options struct.
// Input is weakly typed: numbers given as strings or floats land in int fields.
func decode(values map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("decode parameters: %w", err)
	}
	return nil
}
