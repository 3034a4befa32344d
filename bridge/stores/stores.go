// Package stores declares the external collaborator interfaces the bridge
// reads from and writes to. The stores themselves (persistence, reactivity,
// quota handling) are not part of the bridge; it only consumes these
// boundaries.
//
// All reads are synchronous "get current state" calls returning untyped
// payloads; the guard package parses them into typed entities exactly once,
// at the extractor boundary.
package stores

import (
	"context"

	"github.com/pagemill/formbridge/errors"
)

// ErrStoreUnavailable is returned by adapters whose backing store is gone
// entirely. The extractor treats it as the one non-degradable failure.
var ErrStoreUnavailable = errors.New("store unavailable")

// Keys the bridge expects in raw document store payloads.
const (
	KeyContainers       = "containers"
	KeyParagraphs       = "paragraphs"
	KeyFlattenedContent = "flattened_content"
	KeyIsCompleted      = "is_completed"
)

// Keys the bridge expects in raw UI store payloads.
const (
	KeyActiveParagraph   = "active_paragraph_id"
	KeySelectedParagraph = "selected_paragraph_id"
	KeyPreviewOpen       = "preview_open"
)

// Keys the bridge expects in raw wizard store payloads.
const (
	KeyCurrentStep     = "current_step"
	KeyFormValues      = "form_values"
	KeyContent         = "content"
	KeyProgressVisible = "progress_visible"
)

// DocumentReader reads the document store's current state.
type DocumentReader interface {
	ReadDocumentState() (map[string]any, error)
}

// UIReader reads the editor UI store's cursor and preview state. A failing
// UI read degrades extraction to defaults; it never fails a transfer.
type UIReader interface {
	ReadUIState() (map[string]any, error)
}

// WizardReader reads the wizard store's current state.
type WizardReader interface {
	ReadWizardState() (map[string]any, error)
}

// The setter capabilities below are optional. A wizard store exposes any
// subset of them through a Writers bundle; the updater uses whichever are
// present.

// ContentSetter writes flattened content into the wizard store.
type ContentSetter interface {
	SetContent(ctx context.Context, content string) error
}

// CompletionSetter writes the completion flag into the wizard store.
type CompletionSetter interface {
	SetCompleted(ctx context.Context, completed bool) error
}

// FieldSetter writes an arbitrary form value into the wizard store.
type FieldSetter interface {
	SetField(ctx context.Context, key string, value any) error
}

// Writers bundles the setter capabilities a wizard store currently exposes.
// A nil field means the store does not offer that write path. All fields nil
// is legal; the updater then reports failure without attempting a write.
type Writers struct {
	Content    ContentSetter
	Completion CompletionSetter
	Field      FieldSetter
}

// Any returns true if at least one write path is available.
func (w Writers) Any() bool {
	return w.Content != nil || w.Completion != nil || w.Field != nil
}
