// Package source turns concrete input formats into root cursors. Every
// constructor decodes into plain maps/slices/scalars and hands the result to
// formwork.FromValue; the engine itself never depends on a format.
package source

import (
	"fmt"
	"io"
	"net/url"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	formwork "github.com/formwork-go/formwork"
)

// JSON decodes a JSON document into a root cursor.
func JSON(b []byte) (*formwork.Cursor, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	return formwork.FromValue(normalize(v)), nil
}

// JSONReader decodes a JSON stream into a root cursor.
func JSONReader(r io.Reader) (*formwork.Cursor, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	return formwork.FromValue(normalize(v)), nil
}

// MustJSON is like JSON but panics on a decode error; intended for fixtures
// and examples.
func MustJSON(b []byte) *formwork.Cursor {
	cur, err := JSON(b)
	if err != nil {
		panic(err)
	}
	return cur
}

// YAML decodes a YAML document into a root cursor.
func YAML(b []byte) (*formwork.Cursor, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("source: decode yaml: %w", err)
	}
	return formwork.FromValue(normalize(v)), nil
}

// TOML decodes a TOML document into a root cursor; config blobs resolve the
// same way any other source does.
func TOML(b []byte) (*formwork.Cursor, error) {
	var v map[string]any
	if err := toml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("source: decode toml: %w", err)
	}
	return formwork.FromValue(normalize(v)), nil
}

// Msgpack decodes a MessagePack payload into a root cursor.
func Msgpack(b []byte) (*formwork.Cursor, error) {
	var v any
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("source: decode msgpack: %w", err)
	}
	return formwork.FromValue(normalize(v)), nil
}

// Values wraps form-post or query parameters as a root cursor. Single-value
// parameters flatten to their scalar; repeated parameters stay sequences.
func Values(vals url.Values) *formwork.Cursor {
	m := make(map[string]any, len(vals))
	for k, vs := range vals {
		switch len(vs) {
		case 0:
			m[k] = nil
		case 1:
			m[k] = vs[0]
		default:
			seq := make([]any, len(vs))
			for i, s := range vs {
				seq[i] = s
			}
			m[k] = seq
		}
	}
	return formwork.FromValue(m)
}

// Merge layers already-decoded mappings into one root cursor: later layers
// win, nested mappings merge recursively, everything else replaces. This is
// the layered-config entry point (defaults, file, overrides).
func Merge(layers ...map[string]any) *formwork.Cursor {
	out := map[string]any{}
	for _, layer := range layers {
		mergeInto(out, layer)
	}
	return formwork.FromValue(normalize(out))
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				mergeInto(dv, sv)
				continue
			}
			cp := map[string]any{}
			mergeInto(cp, sv)
			dst[k] = cp
			continue
		}
		dst[k] = v
	}
}

// normalize rewrites decoder output into the map[string]any / []any shape
// cursors descend into. YAML and msgpack can produce map[any]any or typed
// slices; keys stringify with fmt.Sprint.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
