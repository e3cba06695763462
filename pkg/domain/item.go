package domain

// Object is a decoded JSON object.
type Object = map[string]any

// BinaryData is a file attached to an item.
type BinaryData struct {
	FileName string `json:"fileName,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Data     []byte `json:"data"`
}

// Item is a single unit of data passed between workflow steps.
type Item struct {
	JSON   Object                `json:"json"`
	Binary map[string]BinaryData `json:"binary,omitempty"`
	// PairedItem is the index of the input item that produced this item.
	PairedItem int `json:"pairedItem"`
}

// NewItem wraps a JSON object into an Item paired with input index i.
func NewItem(json Object, i int) Item {
	if json == nil {
		json = Object{}
	}
	return Item{JSON: json, PairedItem: i}
}

// ItemsFromResult converts an API response into output items.
// Arrays produce one item per element; everything else produces one item.
// Non-object values are wrapped under the "value" key.
func ItemsFromResult(result any, i int) []Item {
	switch v := result.(type) {
	case nil:
		return []Item{NewItem(nil, i)}
	case Object:
		return []Item{NewItem(v, i)}
	case []any:
		items := make([]Item, 0, len(v))
		for _, elem := range v {
			items = append(items, ItemsFromResult(elem, i)...)
		}
		return items
	case []Object:
		items := make([]Item, 0, len(v))
		for _, elem := range v {
			items = append(items, NewItem(elem, i))
		}
		return items
	default:
		return []Item{NewItem(Object{"value": v}, i)}
	}
}
