// Package types defines the value objects exchanged between the bridge
// components: document and wizard snapshots, transformation results, and
// validation results.
//
// Snapshots are immutable by convention: they are created fresh for each
// transfer operation, never mutated after construction, and discarded after
// one transformation pass. Nothing in this package carries locks.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Container is an ordered named grouping of paragraph blocks in the document
// model. It maps loosely to a section or heading.
type Container struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// ParagraphBlock is an ordered unit of text content, optionally assigned to a
// container. An empty ContainerID means the paragraph is unassigned.
type ParagraphBlock struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Order       int    `json:"order"`
	ContainerID string `json:"container_id,omitempty"`
}

// Assigned returns true if the paragraph belongs to a container.
func (p ParagraphBlock) Assigned() bool {
	return p.ContainerID != ""
}

// UICursor carries the editor's cursor and selection state. Losing it is
// never fatal; extraction degrades to zero values when the UI store read
// fails.
type UICursor struct {
	ActiveParagraphID   string `json:"active_paragraph_id,omitempty"`
	SelectedParagraphID string `json:"selected_paragraph_id,omitempty"`
	PreviewOpen         bool   `json:"preview_open,omitempty"`
}

// SnapshotMetrics holds the fixed per-snapshot counters recorded at
// extraction time.
type SnapshotMetrics struct {
	ContainerCount     int `json:"container_count"`
	ParagraphCount     int `json:"paragraph_count"`
	AssignedParagraphs int `json:"assigned_paragraphs"`
	ContentLength      int `json:"content_length"`
	DiscardedEntities  int `json:"discarded_entities,omitempty"`
}

// SnapshotFlags marks degradations that happened during extraction.
type SnapshotFlags struct {
	Fallback           bool `json:"fallback,omitempty"`            // all-empty snapshot after a downstream failure
	RegeneratedContent bool `json:"regenerated_content,omitempty"` // flattened content was rebuilt, not read
	UIStateDefaulted   bool `json:"ui_state_defaulted,omitempty"`  // UI store read failed, cursor zeroed
}

// SnapshotMetadata describes how a snapshot was produced.
type SnapshotMetadata struct {
	DurationMS    int64          `json:"duration_ms"`
	Valid         bool           `json:"valid"`
	IntegrityHash string         `json:"integrity_hash,omitempty"`
	Metrics       SnapshotMetrics `json:"metrics"`
	Flags         SnapshotFlags  `json:"flags"`
	Extra         map[string]any `json:"extra,omitempty"` // open-ended; producers own the keys
}

// DocumentSnapshot is an immutable point-in-time read of the document store,
// produced for one transfer operation.
//
// Invariant (reported, not enforced): every non-empty ContainerID on a
// paragraph references an existing container id. Violations surface as
// validator warnings.
type DocumentSnapshot struct {
	Containers       []Container      `json:"containers"`
	Paragraphs       []ParagraphBlock `json:"paragraphs"`
	FlattenedContent string           `json:"flattened_content"`
	IsCompleted      bool             `json:"is_completed"`
	Cursor           UICursor         `json:"cursor"`
	ExtractedAt      time.Time        `json:"extracted_at"`
	Metadata         SnapshotMetadata `json:"metadata"`
}

// AssignedParagraphCount returns the number of paragraphs bound to a
// container.
func (s *DocumentSnapshot) AssignedParagraphCount() int {
	n := 0
	for _, p := range s.Paragraphs {
		if p.Assigned() {
			n++
		}
	}
	return n
}

// IsEmpty returns true when the snapshot carries no containers and no
// paragraphs.
func (s *DocumentSnapshot) IsEmpty() bool {
	return len(s.Containers) == 0 && len(s.Paragraphs) == 0
}

// Well-known wizard form value keys. The form values map is open-ended;
// these are the keys the bridge itself reads or writes.
const (
	FormKeyNickname      = "nickname"
	FormKeyContent       = "content"
	FormKeyEditorContent = "editor_content"
	FormKeyTitle         = "title"
	FormKeyDescription   = "description"
	FormKeyTags          = "tags"
	FormKeyCompleted     = "completed"
)

// WizardSnapshot is an immutable point-in-time read of the wizard store.
type WizardSnapshot struct {
	CurrentStep       int            `json:"current_step"`
	FormValues        map[string]any `json:"form_values"`
	ProgressVisible   bool           `json:"progress_visible,omitempty"`
	PreviewOpen       bool           `json:"preview_open,omitempty"`
	SnapshotTimestamp time.Time      `json:"snapshot_timestamp"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// StringValue returns the named form value if it is a string.
func (s *WizardSnapshot) StringValue(key string) (string, bool) {
	v, ok := s.FormValues[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// BoolValue returns the named form value if it is a bool.
func (s *WizardSnapshot) BoolValue(key string) (bool, bool) {
	v, ok := s.FormValues[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// IntegrityHash returns a hex digest of content for tamper detection in
// results and snapshot metadata.
func IntegrityHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}
