package transform

import (
	"strings"

	"github.com/pagemill/formbridge/bridge/render"
	"github.com/pagemill/formbridge/bridge/types"
)

// Content length thresholds for strategy selection.
const (
	// existingContentThreshold is the trimmed length above which existing
	// flattened content is trusted as-is.
	existingContentThreshold = 100
	// hybridContentThreshold is the trimmed length above which partial
	// existing content earns the hybrid strategy.
	hybridContentThreshold = 10
)

// SelectStrategy is a pure function of the validated data set: container
// count, assigned-paragraph presence, unassigned-paragraph presence, and
// trimmed existing-content length. Identical inputs always yield the same
// strategy.
func SelectStrategy(ds ValidatedDataSet) types.Strategy {
	contentLen := len(strings.TrimSpace(ds.ExistingContent))

	switch {
	case contentLen > existingContentThreshold:
		return types.StrategyExistingContent
	case len(ds.Containers) > 0 && ds.AssignedCount > 0:
		return types.StrategyRebuildFromContainers
	case ds.UnassignedCount > 0 || contentLen > hybridContentThreshold:
		return types.StrategyHybrid
	default:
		return types.StrategyParagraphFallback
	}
}

// executeStrategy renders flattened content for the chosen strategy.
func executeStrategy(strategy types.Strategy, ds ValidatedDataSet) string {
	switch strategy {
	case types.StrategyExistingContent:
		return strings.TrimSpace(ds.ExistingContent)
	case types.StrategyRebuildFromContainers:
		return render.Containers(ds.Containers, ds.Paragraphs)
	case types.StrategyParagraphFallback:
		return render.Unassigned(ds.Paragraphs)
	case types.StrategyHybrid:
		return render.JoinSections(
			strings.TrimSpace(ds.ExistingContent),
			render.Containers(ds.Containers, ds.Paragraphs),
			render.Unassigned(ds.Paragraphs),
		)
	case types.StrategyEmergencyRecovery:
		return strings.TrimSpace(ds.ExistingContent)
	default:
		return ""
	}
}
