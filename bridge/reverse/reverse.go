// Package reverse derives document-side content from a wizard snapshot.
//
// Validation here is deliberately loose: missing or mistyped form values
// degrade to warnings, and failure produces a Success=false result with
// empty content rather than an error.
package reverse

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/logger"
)

// Strategy selection thresholds.
const (
	trustScoreThreshold   = 70  // quality score at which content is trusted as-is
	trustWordThreshold    = 50  // word count at which content is trusted as-is
	enhanceLengthThreshold = 100 // content length required for structure enhancement
	headingLineMinLength  = 20  // first line must be this long to be promoted to a heading
)

// Transformer is the reverse (wizard to document) transformer.
type Transformer struct {
	log *zap.SugaredLogger
}

// New creates a reverse transformer.
func New(log *zap.SugaredLogger) *Transformer {
	return &Transformer{log: log.Named("reverse")}
}

// Transform extracts the wizard's editor content and named metadata fields,
// scores content quality, and produces a document-side content result. It
// never returns an error and never panics.
func (t *Transformer) Transform(snapshot *types.WizardSnapshot) (result *types.ReverseTransformationResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			t.log.Warnw("reverse transformation failed",
				logger.FieldError, r,
			)
			result = &types.ReverseTransformationResult{
				Strategy:  types.StrategyEmergencyRecovery,
				Success:   false,
				Errors:    []string{"reverse transformation failed"},
				Timestamp: time.Now(),
			}
		}
	}()

	if snapshot == nil {
		return &types.ReverseTransformationResult{
			Strategy:  types.StrategyParagraphFallback,
			Success:   false,
			Errors:    []string{"wizard snapshot is nil"},
			Timestamp: time.Now(),
		}
	}

	var warnings []string
	content, ok := extractContent(snapshot)
	if !ok {
		warnings = append(warnings, "no editor content field found in form values")
	}
	completed, ok := snapshot.BoolValue(types.FormKeyCompleted)
	if !ok {
		warnings = append(warnings, "completion flag missing or not boolean")
	}

	meta := extractMetadata(snapshot, &warnings)
	meta.Warnings = warnings

	quality := scoreContent(content)
	strategy := selectStrategy(quality, content)
	rendered := applyStrategy(strategy, content)

	success := rendered != ""
	var errs []string
	if !success {
		errs = append(errs, "wizard snapshot yielded no content")
	}

	meta.DurationMS = time.Since(start).Milliseconds()

	t.log.Infow("reverse transformation complete",
		logger.FieldStrategy, strategy,
		logger.FieldQualityScore, quality.Score,
		logger.FieldContentLength, len(rendered),
		logger.FieldStatus, success,
	)

	return &types.ReverseTransformationResult{
		Content:                 rendered,
		IsCompleted:             completed,
		Strategy:                strategy,
		Metadata:                meta,
		Success:                 success,
		Errors:                  errs,
		Timestamp:               time.Now(),
		Quality:                 quality,
		DataIntegrityValidation: success && len(warnings) == 0,
	}
}

// extractContent prefers the dedicated editor content field and falls back
// to the generic content field.
func extractContent(snapshot *types.WizardSnapshot) (string, bool) {
	if content, ok := snapshot.StringValue(types.FormKeyEditorContent); ok && content != "" {
		return content, true
	}
	if content, ok := snapshot.StringValue(types.FormKeyContent); ok && content != "" {
		return content, true
	}
	return "", false
}

func extractMetadata(snapshot *types.WizardSnapshot, warnings *[]string) types.ReverseMetadata {
	var meta types.ReverseMetadata
	var ok bool
	if meta.Title, ok = snapshot.StringValue(types.FormKeyTitle); !ok {
		*warnings = append(*warnings, "title missing or not a string")
	}
	if meta.Description, ok = snapshot.StringValue(types.FormKeyDescription); !ok {
		*warnings = append(*warnings, "description missing or not a string")
	}
	if meta.Nickname, ok = snapshot.StringValue(types.FormKeyNickname); !ok {
		*warnings = append(*warnings, "nickname missing or not a string")
	}
	meta.Tags = extractTags(snapshot)
	return meta
}

func extractTags(snapshot *types.WizardSnapshot) []string {
	v, ok := snapshot.FormValues[types.FormKeyTags]
	if !ok {
		return nil
	}
	switch tags := v.(type) {
	case []string:
		return tags
	case []any:
		out := make([]string, 0, len(tags))
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// selectStrategy chooses how wizard content becomes document content.
// StrategyRebuildFromContainers here means "structure enhancement": the
// content already carries structural markers and is re-rendered with a
// promoted heading.
func selectStrategy(quality types.ReverseQualityMetrics, content string) types.Strategy {
	switch {
	case quality.Score >= trustScoreThreshold && quality.WordCount >= trustWordThreshold:
		return types.StrategyExistingContent
	case quality.HasStructured && len(content) > enhanceLengthThreshold:
		return types.StrategyRebuildFromContainers
	default:
		return types.StrategyParagraphFallback
	}
}

func applyStrategy(strategy types.Strategy, content string) string {
	switch strategy {
	case types.StrategyExistingContent:
		return strings.TrimSpace(content)
	case types.StrategyRebuildFromContainers:
		return enhanceStructure(content)
	default:
		return content
	}
}

// enhanceStructure promotes the first non-empty line to a heading when it
// is long enough and not already one. The rest of the content is preserved
// unchanged.
func enhanceStructure(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") && len(trimmed) >= headingLineMinLength {
			lines[i] = "## " + trimmed
		}
		break
	}
	return strings.Join(lines, "\n")
}
