package types

// Strategy identifies the reconstruction algorithm used to derive flattened
// content from structured data. Selection is heuristic per snapshot; see the
// transform package for the decision rules.
type Strategy string

const (
	// StrategyExistingContent returns already-flattened content as-is.
	StrategyExistingContent Strategy = "existing_content"
	// StrategyRebuildFromContainers renders containers as headed sections.
	StrategyRebuildFromContainers Strategy = "rebuild_from_containers"
	// StrategyHybrid concatenates existing content with rebuilt sections
	// and unassigned paragraphs.
	StrategyHybrid Strategy = "hybrid_approach"
	// StrategyParagraphFallback joins unassigned paragraphs in order.
	StrategyParagraphFallback Strategy = "paragraph_fallback"
	// StrategyEmergencyRecovery is used only when a transformation fails
	// mid-pipeline; it preserves whatever existing content there was.
	StrategyEmergencyRecovery Strategy = "emergency_recovery"
)

// IsValidStrategy returns true if s names a known strategy.
func IsValidStrategy(s string) bool {
	switch Strategy(s) {
	case StrategyExistingContent, StrategyRebuildFromContainers,
		StrategyHybrid, StrategyParagraphFallback, StrategyEmergencyRecovery:
		return true
	default:
		return false
	}
}
