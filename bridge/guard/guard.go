// Package guard converts untyped store payloads into typed bridge entities.
//
// Parsing happens exactly once, at the extractor boundary; downstream
// components operate on already-validated values and never see raw maps.
// Invalid entries are discarded, not errored: the bridge's policy is best
// effort over correctness, and a half-broken store still yields a usable
// snapshot.
package guard

import (
	"github.com/mitchellh/mapstructure"

	"github.com/pagemill/formbridge/bridge/types"
)

// rawContainer mirrors the document store's container payload. Numeric
// fields are weakly decoded because JSON-origin payloads carry float64.
type rawContainer struct {
	ID    string `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Order int    `mapstructure:"order"`
}

type rawParagraph struct {
	ID          string `mapstructure:"id"`
	Content     string `mapstructure:"content"`
	Order       int    `mapstructure:"order"`
	ContainerID string `mapstructure:"container_id"`
}

func decode(raw any, out any) bool {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return false
	}
	return dec.Decode(raw) == nil
}

// Container parses a raw container entry. The second return is false when
// the entry is not container-shaped or has an empty id.
func Container(raw any) (types.Container, bool) {
	var rc rawContainer
	if !decode(raw, &rc) || rc.ID == "" {
		return types.Container{}, false
	}
	return types.Container{ID: rc.ID, Name: rc.Name, Order: rc.Order}, true
}

// Paragraph parses a raw paragraph entry. The second return is false when
// the entry is not paragraph-shaped or has an empty id.
func Paragraph(raw any) (types.ParagraphBlock, bool) {
	var rp rawParagraph
	if !decode(raw, &rp) || rp.ID == "" {
		return types.ParagraphBlock{}, false
	}
	return types.ParagraphBlock{
		ID:          rp.ID,
		Content:     rp.Content,
		Order:       rp.Order,
		ContainerID: rp.ContainerID,
	}, true
}

// Containers filters a raw list down to valid containers, reporting how many
// entries were discarded.
func Containers(raw any) ([]types.Container, int) {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, 0
		}
		return nil, 1
	}
	out := make([]types.Container, 0, len(list))
	discarded := 0
	for _, entry := range list {
		c, ok := Container(entry)
		if !ok {
			discarded++
			continue
		}
		out = append(out, c)
	}
	return out, discarded
}

// Paragraphs filters a raw list down to valid paragraph blocks, reporting
// how many entries were discarded.
func Paragraphs(raw any) ([]types.ParagraphBlock, int) {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, 0
		}
		return nil, 1
	}
	out := make([]types.ParagraphBlock, 0, len(list))
	discarded := 0
	for _, entry := range list {
		p, ok := Paragraph(entry)
		if !ok {
			discarded++
			continue
		}
		out = append(out, p)
	}
	return out, discarded
}

// String reads a string field from a raw payload, tolerating absence.
func String(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool reads a bool field from a raw payload, tolerating absence.
func Bool(m map[string]any, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Int reads an integer field, weakly coercing JSON float64 payloads.
func Int(m map[string]any, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Map reads a nested map field from a raw payload.
func Map(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	nested, ok := v.(map[string]any)
	return nested, ok
}

// Strings reads a string-slice field, accepting either []string or []any of
// strings (JSON decoding produces the latter).
func Strings(m map[string]any, key string) ([]string, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
