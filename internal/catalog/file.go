package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/runger/autocomplete/internal/option"
)

// File is a Source backed by a catalog document. The format follows the
// extension: YAML, TOML or JSON. Every format holds an "options" list whose
// entries are either a bare label or a {label, value} table:
//
//	options:
//	  - Apple
//	  - label: Orange
//	    value: orange
//
// The file is read on every Fetch, so edits show up on the next load.
type File string

// Fetch implements Source. Query is ignored.
func (f File) Fetch(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	opts, err := LoadFile(string(f))
	if err != nil {
		return Response{}, err
	}
	return Response{RequestID: req.RequestID, Options: limit(opts, req.Limit)}, nil
}

// LoadFile reads and decodes a catalog document.
func LoadFile(path string) ([]option.Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	opts, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return opts, nil
}

// Decode parses a catalog document in the format named by ext.
func Decode(ext string, data []byte) ([]option.Option, error) {
	var doc map[string]any
	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &doc)
	case "toml":
		err = toml.Unmarshal(data, &doc)
	case "json":
		err = json.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return fromDocument(doc)
}

// Encode writes opts as a catalog document in the format named by ext.
func Encode(ext string, opts []option.Option) ([]byte, error) {
	entries := make([]any, 0, len(opts))
	for _, o := range opts {
		if o.IsPair() {
			entries = append(entries, map[string]any{"label": o.Label(), "value": o.Value()})
		} else {
			entries = append(entries, o.Label())
		}
	}
	doc := map[string]any{"options": entries}

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		return yaml.Marshal(doc)
	case "toml":
		return toml.Marshal(doc)
	case "json":
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupported, ext)
	}
}

func fromDocument(doc map[string]any) ([]option.Option, error) {
	raw, ok := doc["options"]
	if !ok {
		return nil, fmt.Errorf("missing options list")
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("options must be a list, got %T", raw)
	}

	opts := make([]option.Option, 0, len(entries))
	for i, e := range entries {
		o, err := fromEntry(e)
		if err != nil {
			return nil, fmt.Errorf("options[%d]: %w", i, err)
		}
		opts = append(opts, o)
	}
	return opts, nil
}

func fromEntry(e any) (option.Option, error) {
	switch e := e.(type) {
	case string:
		if e == "" {
			return option.Option{}, fmt.Errorf("empty label")
		}
		return option.String(e), nil
	case map[string]any:
		label, _ := e["label"].(string)
		value, _ := e["value"].(string)
		if label == "" || value == "" {
			return option.Option{}, fmt.Errorf("entry needs string label and value")
		}
		return option.Pair(label, value), nil
	default:
		return option.Option{}, fmt.Errorf("entry must be a string or a {label, value} table, got %T", e)
	}
}
