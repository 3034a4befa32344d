// Package transform derives wizard-side flattened content from a document
// snapshot.
//
// The transformer selects one of the enumerated strategies from the
// validated data set, renders content, and wraps the whole pipeline in a
// fingerprint-keyed result cache. Nothing propagates out as an error: a
// failure mid-pipeline surfaces as an emergency-recovery result.
package transform

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/cache"
	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/logger"
)

// ValidatedDataSet is the defensively re-filtered view of a snapshot the
// strategy machinery operates on.
type ValidatedDataSet struct {
	Containers      []types.Container
	Paragraphs      []types.ParagraphBlock
	ExistingContent string
	IsCompleted     bool
	AssignedCount   int
	UnassignedCount int
}

// Transformer is the forward (document to wizard) transformer.
type Transformer struct {
	cache *cache.Manager
	log   *zap.SugaredLogger
}

// New creates a forward transformer. The cache manager may be nil; every
// transform then recomputes.
func New(cacheManager *cache.Manager, log *zap.SugaredLogger) *Transformer {
	return &Transformer{cache: cacheManager, log: log.Named("transform")}
}

// Transform produces flattened content and metadata for the snapshot. It
// never returns an error and never panics: failures are encoded in the
// result with Success=false and StrategyEmergencyRecovery.
func (t *Transformer) Transform(snapshot *types.DocumentSnapshot) *types.TransformationResult {
	if snapshot == nil {
		return t.emergencyResult(ValidatedDataSet{}, "snapshot is nil")
	}

	key := cache.Fingerprint(snapshot)
	if t.cache != nil {
		if cached, ok := t.cache.Get(key); ok {
			t.log.Debugw("cache hit",
				logger.FieldCacheKey, key,
				logger.FieldStrategy, cached.Strategy,
			)
			hit := *cached
			hit.Metadata.CacheHit = true
			return &hit
		}
	}

	result := t.compute(snapshot)
	if t.cache != nil && result.Strategy != types.StrategyEmergencyRecovery {
		t.cache.Set(key, result)
	}
	return result
}

// compute runs the full pipeline. A panic anywhere inside is converted into
// an emergency-recovery result.
func (t *Transformer) compute(snapshot *types.DocumentSnapshot) (result *types.TransformationResult) {
	var ds ValidatedDataSet
	defer func() {
		if r := recover(); r != nil {
			t.log.Warnw("transformation failed mid-pipeline",
				logger.FieldError, r,
			)
			result = t.emergencyResult(ds, fmt.Sprintf("%v", r))
		}
	}()

	phaseStart := time.Now()
	ds = extractDataSet(snapshot)
	extractMS := time.Since(phaseStart).Milliseconds()

	phaseStart = time.Now()
	score, containerC, paragraphC, contentC, assignmentC := scoreQuality(ds)
	scoreMS := time.Since(phaseStart).Milliseconds()

	phaseStart = time.Now()
	strategy := SelectStrategy(ds)
	strategyMS := time.Since(phaseStart).Milliseconds()

	phaseStart = time.Now()
	content := executeStrategy(strategy, ds)
	renderMS := time.Since(phaseStart).Milliseconds()

	success := content != ""
	var errs []string
	if !success {
		errs = append(errs, "no content could be derived from the snapshot")
	}

	t.log.Infow("transformation complete",
		logger.FieldStrategy, strategy,
		logger.FieldQualityScore, score,
		logger.FieldContentLength, len(content),
		logger.FieldStatus, success,
	)

	return &types.TransformationResult{
		Content:     content,
		IsCompleted: ds.IsCompleted,
		Strategy:    strategy,
		Success:     success,
		Errors:      errs,
		Timestamp:   time.Now(),
		Metadata: types.TransformationMetadata{
			ContainerCount:     len(ds.Containers),
			ParagraphCount:     len(ds.Paragraphs),
			AssignedParagraphs: ds.AssignedCount,
			Timings: types.PhaseTimings{
				ExtractMS:  extractMS,
				ScoreMS:    scoreMS,
				StrategyMS: strategyMS,
				RenderMS:   renderMS,
			},
		},
		QualityMetrics: types.QualityMetrics{
			Score:               score,
			ContainerComponent:  containerC,
			ParagraphComponent:  paragraphC,
			ContentComponent:    contentC,
			AssignmentComponent: assignmentC,
		},
		ContentIntegrityHash: types.IntegrityHash(content),
	}
}

// QualityScore computes the 0-100 quality score of a snapshot without
// running a transformation. The engine's precondition gate uses it.
func QualityScore(snapshot *types.DocumentSnapshot) int {
	if snapshot == nil {
		return 0
	}
	score, _, _, _, _ := scoreQuality(extractDataSet(snapshot))
	return score
}

// extractDataSet defensively re-filters the snapshot. Snapshots built by
// the extractor are already clean; snapshots handed in externally may not
// be.
func extractDataSet(snapshot *types.DocumentSnapshot) ValidatedDataSet {
	ds := ValidatedDataSet{
		ExistingContent: snapshot.FlattenedContent,
		IsCompleted:     snapshot.IsCompleted,
	}
	for _, c := range snapshot.Containers {
		if c.ID == "" {
			continue
		}
		ds.Containers = append(ds.Containers, c)
	}
	for _, p := range snapshot.Paragraphs {
		if p.ID == "" {
			continue
		}
		ds.Paragraphs = append(ds.Paragraphs, p)
		if p.Assigned() {
			ds.AssignedCount++
		} else {
			ds.UnassignedCount++
		}
	}
	return ds
}

// emergencyResult is the internal failure fallback: existing content
// trimmed, Success=false, the failure message in Errors.
func (t *Transformer) emergencyResult(ds ValidatedDataSet, msg string) *types.TransformationResult {
	content := strings.TrimSpace(ds.ExistingContent)
	return &types.TransformationResult{
		Content:              content,
		IsCompleted:          ds.IsCompleted,
		Strategy:             types.StrategyEmergencyRecovery,
		Success:              false,
		Errors:               []string{msg},
		Timestamp:            time.Now(),
		ContentIntegrityHash: types.IntegrityHash(content),
	}
}
