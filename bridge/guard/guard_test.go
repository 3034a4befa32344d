package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagemill/formbridge/bridge/types"
)

func TestContainer(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want types.Container
		ok   bool
	}{
		{
			name: "well formed",
			raw:  map[string]any{"id": "c1", "name": "Intro", "order": 1},
			want: types.Container{ID: "c1", Name: "Intro", Order: 1},
			ok:   true,
		},
		{
			name: "float order from JSON",
			raw:  map[string]any{"id": "c2", "name": "Body", "order": float64(3)},
			want: types.Container{ID: "c2", Name: "Body", Order: 3},
			ok:   true,
		},
		{
			name: "empty id rejected",
			raw:  map[string]any{"id": "", "name": "Anon"},
			ok:   false,
		},
		{
			name: "missing id rejected",
			raw:  map[string]any{"name": "Anon"},
			ok:   false,
		},
		{
			name: "not a map",
			raw:  "c1",
			ok:   false,
		},
		{
			name: "nil",
			raw:  nil,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Container(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParagraph(t *testing.T) {
	got, ok := Paragraph(map[string]any{
		"id": "p1", "content": "Hello", "order": 2, "container_id": "c1",
	})
	assert.True(t, ok)
	assert.Equal(t, types.ParagraphBlock{ID: "p1", Content: "Hello", Order: 2, ContainerID: "c1"}, got)

	_, ok = Paragraph(map[string]any{"content": "orphan"})
	assert.False(t, ok)

	_, ok = Paragraph(42)
	assert.False(t, ok)
}

func TestContainers_DiscardsInvalidEntries(t *testing.T) {
	raw := []any{
		map[string]any{"id": "c1", "name": "Intro", "order": 0},
		map[string]any{"name": "no id"},
		"not a container",
		map[string]any{"id": "c2", "name": "Body", "order": 1},
	}

	containers, discarded := Containers(raw)
	assert.Len(t, containers, 2)
	assert.Equal(t, 2, discarded)
	assert.Equal(t, "c1", containers[0].ID)
	assert.Equal(t, "c2", containers[1].ID)
}

func TestContainers_NonListShapes(t *testing.T) {
	containers, discarded := Containers(nil)
	assert.Nil(t, containers)
	assert.Equal(t, 0, discarded)

	// A present but non-list value counts as one discarded entity.
	containers, discarded = Containers("bogus")
	assert.Nil(t, containers)
	assert.Equal(t, 1, discarded)
}

func TestParagraphs_DiscardsInvalidEntries(t *testing.T) {
	raw := []any{
		map[string]any{"id": "p1", "content": "one", "order": 0},
		map[string]any{"id": "", "content": "no id"},
		map[string]any{"id": "p2", "content": "two", "order": float64(1), "container_id": "c1"},
	}

	paragraphs, discarded := Paragraphs(raw)
	assert.Len(t, paragraphs, 2)
	assert.Equal(t, 1, discarded)
	assert.Equal(t, "c1", paragraphs[1].ContainerID)
}

func TestFieldReaders(t *testing.T) {
	m := map[string]any{
		"name":       "alpha",
		"done":       true,
		"step":       float64(4),
		"step_int":   7,
		"nested":     map[string]any{"k": "v"},
		"tags":       []any{"a", "b"},
		"tags_typed": []string{"x"},
		"mixed":      []any{"a", 1},
	}

	s, ok := String(m, "name")
	assert.True(t, ok)
	assert.Equal(t, "alpha", s)
	_, ok = String(m, "done")
	assert.False(t, ok)
	_, ok = String(m, "absent")
	assert.False(t, ok)

	b, ok := Bool(m, "done")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = Bool(m, "name")
	assert.False(t, ok)

	n, ok := Int(m, "step")
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	n, ok = Int(m, "step_int")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	_, ok = Int(m, "name")
	assert.False(t, ok)

	nested, ok := Map(m, "nested")
	assert.True(t, ok)
	assert.Equal(t, "v", nested["k"])
	_, ok = Map(m, "name")
	assert.False(t, ok)

	tags, ok := Strings(m, "tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)
	tags, ok = Strings(m, "tags_typed")
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, tags)
	_, ok = Strings(m, "mixed")
	assert.False(t, ok)
}
