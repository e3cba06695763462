package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/node"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Resource  string
	Operation string
	// Params are key=value pairs, coerced to the property type.
	Params []string
	// ParamsJSON is a raw JSON object applied before Params.
	ParamsJSON string
	// Input is a JSON object or array of objects; each object becomes an item
	// whose fields override the static parameters.
	Input io.Reader
	// Binary attaches files to every item as key=path.
	Binary []string
}

// Run executes one node operation and writes the output items as a JSON array.
func Run(ctx context.Context, app *App, opts RunOptions, out io.Writer) error {
	n, err := app.Node()
	if err != nil {
		return err
	}

	params, err := buildParams(n, opts)
	if err != nil {
		return err
	}

	items, err := readItems(opts.Input)
	if err != nil {
		return err
	}
	if len(opts.Binary) > 0 {
		binary, err := loadBinary(opts.Binary)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			items = []domain.Item{domain.NewItem(nil, 0)}
		}
		for i := range items {
			items[i].Binary = binary
		}
	}

	var source node.ParamSource = node.StaticParams(params)
	if len(items) > 0 {
		source = node.ItemParams(params)
	}

	app.Logger.Debug("Running operation", "resource", opts.Resource, "operation", opts.Operation, "items", len(items))
	result, err := n.Execute(ctx, items, source)
	if err != nil {
		return err
	}
	return writeItems(out, result)
}

func buildParams(n *node.Node, opts RunOptions) (map[string]any, error) {
	params := map[string]any{}
	if opts.ParamsJSON != "" {
		if err := json.Unmarshal([]byte(opts.ParamsJSON), &params); err != nil {
			return nil, fmt.Errorf("error parsing --params JSON: %w", err)
		}
	}
	if opts.Resource != "" {
		params["resource"] = opts.Resource
	}
	if opts.Operation != "" {
		params["operation"] = opts.Operation
	}

	props := n.Description()
	for _, kv := range opts.Params {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", kv)
		}
		v, err := props.Coerce(key, raw, params)
		if err != nil {
			return nil, err
		}
		params[key] = v
	}
	return params, nil
}

func readItems(r io.Reader) ([]domain.Item, error) {
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var objects []domain.Object
	if data[0] == '[' {
		if err := json.Unmarshal(data, &objects); err != nil {
			return nil, fmt.Errorf("input must be a JSON object or an array of objects: %w", err)
		}
	} else {
		var obj domain.Object
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("input must be a JSON object or an array of objects: %w", err)
		}
		objects = []domain.Object{obj}
	}

	items := make([]domain.Item, len(objects))
	for i, obj := range objects {
		items[i] = domain.NewItem(obj, i)
	}
	return items, nil
}

func loadBinary(specs []string) (map[string]domain.BinaryData, error) {
	out := make(map[string]domain.BinaryData, len(specs))
	for _, spec := range specs {
		key, path, ok := strings.Cut(spec, "=")
		if !ok {
			key, path = "data", spec
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read binary %q: %w", key, err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		out[key] = domain.BinaryData{FileName: filepath.Base(path), MimeType: mimeType, Data: data}
	}
	return out, nil
}

func writeItems(w io.Writer, items []domain.Item) error {
	objects := make([]domain.Object, len(items))
	for i, item := range items {
		objects[i] = item.JSON
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}
