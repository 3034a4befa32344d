package reverse

import (
	"strings"

	"github.com/pagemill/formbridge/bridge/types"
)

// Quality score weights. Word count contributes up to 50 points; markdown
// syntax and structural markers contribute 25 each.
const (
	wordComponentCap   = 50
	markdownComponent  = 25
	structureComponent = 25
)

// markdownTokens are the punctuation heuristics for detecting markdown
// syntax anywhere in the content.
var markdownTokens = []string{"**", "](", "`", "~~", "> "}

// scoreContent computes the 0-100 reverse quality score: word count capped
// at 50 points, plus fixed bonuses for markdown syntax and structured
// markers (leading # or list markers).
func scoreContent(content string) (q types.ReverseQualityMetrics) {
	q.WordCount = len(strings.Fields(content))
	q.HasMarkdown = hasMarkdownSyntax(content)
	q.HasStructured = hasStructuredMarkers(content)

	score := q.WordCount
	if score > wordComponentCap {
		score = wordComponentCap
	}
	if q.HasMarkdown {
		score += markdownComponent
	}
	if q.HasStructured {
		score += structureComponent
	}
	if score > 100 {
		score = 100
	}
	q.Score = score
	return q
}

func hasMarkdownSyntax(content string) bool {
	for _, token := range markdownTokens {
		if strings.Contains(content, token) {
			return true
		}
	}
	return false
}

// hasStructuredMarkers reports whether any line opens with a heading or
// list marker.
func hasStructuredMarkers(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"),
			strings.HasPrefix(trimmed, "- "),
			strings.HasPrefix(trimmed, "* "),
			strings.HasPrefix(trimmed, "1. "):
			return true
		}
	}
	return false
}
