package transform

import "strings"

// Quality score component caps. Components sum to at most 100; the final
// score is clamped to [0, 100] regardless.
const (
	containerComponentCap  = 25
	paragraphComponentCap  = 25
	contentComponentCap    = 30
	assignmentComponentVal = 20

	containerPoints     = 10 // per container
	paragraphPoints     = 5  // per paragraph
	contentLengthDivisor = 20 // one point per 20 chars of trimmed content
)

// scoreQuality computes the 0-100 quality score of a validated data set
// from container count, paragraph count, trimmed content length, and
// assigned-paragraph presence. Each component is capped before summing.
func scoreQuality(ds ValidatedDataSet) (score, containerC, paragraphC, contentC, assignmentC int) {
	containerC = capAt(len(ds.Containers)*containerPoints, containerComponentCap)
	paragraphC = capAt(len(ds.Paragraphs)*paragraphPoints, paragraphComponentCap)
	contentC = capAt(len(strings.TrimSpace(ds.ExistingContent))/contentLengthDivisor, contentComponentCap)
	if ds.AssignedCount > 0 {
		assignmentC = assignmentComponentVal
	}

	score = containerC + paragraphC + contentC + assignmentC
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, containerC, paragraphC, contentC, assignmentC
}

func capAt(value, limit int) int {
	if value > limit {
		return limit
	}
	return value
}
