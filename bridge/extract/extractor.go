// Package extract pulls document snapshots out of the external document and
// UI stores.
package extract

import (
	"time"

	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/guard"
	"github.com/pagemill/formbridge/bridge/render"
	"github.com/pagemill/formbridge/bridge/stores"
	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/logger"
)

// Extractor reads the document and UI stores and produces metadata-tagged
// snapshots. UI read failures degrade to defaults; only an unreachable or
// non-object document store fails extraction outright.
type Extractor struct {
	docs stores.DocumentReader
	ui   stores.UIReader
	log  *zap.SugaredLogger
}

// New creates an extractor. The UI reader may be nil; cursor state then
// always defaults.
func New(docs stores.DocumentReader, ui stores.UIReader, log *zap.SugaredLogger) *Extractor {
	return &Extractor{docs: docs, ui: ui, log: log.Named("extract")}
}

// Extract reads both stores and returns a best-effort snapshot. The second
// return is false only when the document store itself is unreachable or not
// object-shaped; every other degradation yields a snapshot with the
// corresponding metadata flag set.
func (e *Extractor) Extract() (*types.DocumentSnapshot, bool) {
	start := time.Now()

	raw, err := e.docs.ReadDocumentState()
	if err != nil || raw == nil {
		e.log.Warnw("document store read failed",
			logger.FieldError, err,
		)
		return nil, false
	}

	cursor, uiDefaulted := e.readCursor()

	snapshot := e.buildSnapshot(raw, cursor, start)
	snapshot.Metadata.Flags.UIStateDefaulted = uiDefaulted
	snapshot.Metadata.DurationMS = time.Since(start).Milliseconds()

	e.log.Debugw("snapshot extracted",
		logger.FieldContainerCount, len(snapshot.Containers),
		logger.FieldParagraphCount, len(snapshot.Paragraphs),
		logger.FieldContentLength, len(snapshot.FlattenedContent),
		logger.FieldDurationMS, snapshot.Metadata.DurationMS,
	)
	return snapshot, true
}

// buildSnapshot assembles the snapshot from raw state. A panic anywhere in
// assembly (malformed payloads can surprise the weak decoder) is converted
// into a fallback snapshot with all-empty collections rather than an error.
func (e *Extractor) buildSnapshot(raw map[string]any, cursor types.UICursor, start time.Time) (snapshot *types.DocumentSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warnw("snapshot assembly failed, returning fallback snapshot",
				logger.FieldError, r,
			)
			snapshot = fallbackSnapshot(cursor, start)
		}
	}()

	containers, discardedC := guard.Containers(raw[stores.KeyContainers])
	paragraphs, discardedP := guard.Paragraphs(raw[stores.KeyParagraphs])
	if discardedC+discardedP > 0 {
		e.log.Infow("discarded invalid entities during extraction",
			logger.FieldCount, discardedC+discardedP,
		)
	}

	content, hasContent := guard.String(raw, stores.KeyFlattenedContent)
	regenerated := false
	if !hasContent || content == "" {
		content = render.JoinSections(
			render.Containers(containers, paragraphs),
			render.Unassigned(paragraphs),
		)
		regenerated = true
	}

	completed, _ := guard.Bool(raw, stores.KeyIsCompleted)

	assigned := 0
	for _, p := range paragraphs {
		if p.Assigned() {
			assigned++
		}
	}

	return &types.DocumentSnapshot{
		Containers:       containers,
		Paragraphs:       paragraphs,
		FlattenedContent: content,
		IsCompleted:      completed,
		Cursor:           cursor,
		ExtractedAt:      start,
		Metadata: types.SnapshotMetadata{
			Valid:         true,
			IntegrityHash: types.IntegrityHash(content),
			Metrics: types.SnapshotMetrics{
				ContainerCount:     len(containers),
				ParagraphCount:     len(paragraphs),
				AssignedParagraphs: assigned,
				ContentLength:      len(content),
				DiscardedEntities:  discardedC + discardedP,
			},
			Flags: types.SnapshotFlags{
				RegeneratedContent: regenerated,
			},
		},
	}
}

// readCursor reads the UI store, degrading to zero values on any failure.
func (e *Extractor) readCursor() (types.UICursor, bool) {
	if e.ui == nil {
		return types.UICursor{}, true
	}
	raw, err := e.ui.ReadUIState()
	if err != nil || raw == nil {
		e.log.Debugw("UI store read failed, using default cursor",
			logger.FieldError, err,
		)
		return types.UICursor{}, true
	}
	active, _ := guard.String(raw, stores.KeyActiveParagraph)
	selected, _ := guard.String(raw, stores.KeySelectedParagraph)
	preview, _ := guard.Bool(raw, stores.KeyPreviewOpen)
	return types.UICursor{
		ActiveParagraphID:   active,
		SelectedParagraphID: selected,
		PreviewOpen:         preview,
	}, false
}

// fallbackSnapshot is the all-empty snapshot returned when assembly fails.
func fallbackSnapshot(cursor types.UICursor, start time.Time) *types.DocumentSnapshot {
	return &types.DocumentSnapshot{
		Containers:  []types.Container{},
		Paragraphs:  []types.ParagraphBlock{},
		Cursor:      cursor,
		ExtractedAt: start,
		Metadata: types.SnapshotMetadata{
			Valid: false,
			Flags: types.SnapshotFlags{Fallback: true},
		},
	}
}
