// Package render flattens structured document entities into text. It is the
// single implementation of the container ordering algorithm, shared by the
// extractor (content regeneration) and the forward transformer.
package render

import (
	"sort"
	"strings"

	"github.com/pagemill/formbridge/bridge/types"
)

// Containers renders containers as headed sections: each container with at
// least one assigned paragraph emits "## {name}" followed by its paragraphs'
// trimmed content in order, with a blank line between containers.
// Containers with zero assigned paragraphs are skipped entirely.
func Containers(containers []types.Container, paragraphs []types.ParagraphBlock) string {
	ordered := make([]types.Container, len(containers))
	copy(ordered, containers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	byContainer := make(map[string][]types.ParagraphBlock)
	for _, p := range paragraphs {
		if p.Assigned() {
			byContainer[p.ContainerID] = append(byContainer[p.ContainerID], p)
		}
	}

	var sections []string
	for _, c := range ordered {
		assigned := byContainer[c.ID]
		if len(assigned) == 0 {
			continue
		}
		sort.SliceStable(assigned, func(i, j int) bool {
			return assigned[i].Order < assigned[j].Order
		})
		lines := []string{"## " + c.Name}
		for _, p := range assigned {
			lines = append(lines, strings.TrimSpace(p.Content))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

// Unassigned renders paragraphs without a container: sorted by order,
// trimmed, empties dropped, joined with a blank line.
func Unassigned(paragraphs []types.ParagraphBlock) string {
	var loose []types.ParagraphBlock
	for _, p := range paragraphs {
		if !p.Assigned() {
			loose = append(loose, p)
		}
	}
	sort.SliceStable(loose, func(i, j int) bool {
		return loose[i].Order < loose[j].Order
	})

	var parts []string
	for _, p := range loose {
		content := strings.TrimSpace(p.Content)
		if content == "" {
			continue
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n\n")
}

// JoinSections joins non-empty parts with a blank line between each.
func JoinSections(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "\n\n")
}
