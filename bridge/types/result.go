package types

import "time"

// PhaseTimings records per-phase durations of one forward transformation.
type PhaseTimings struct {
	ExtractMS  int64 `json:"extract_ms"`
	ScoreMS    int64 `json:"score_ms"`
	StrategyMS int64 `json:"strategy_ms"`
	RenderMS   int64 `json:"render_ms"`
}

// QualityMetrics is the 0-100 quality score of a snapshot plus the capped
// components it was summed from.
type QualityMetrics struct {
	Score               int `json:"score"`
	ContainerComponent  int `json:"container_component"`
	ParagraphComponent  int `json:"paragraph_component"`
	ContentComponent    int `json:"content_component"`
	AssignmentComponent int `json:"assignment_component"`
}

// TransformationMetadata carries the counters and warnings of one forward
// transformation pass.
type TransformationMetadata struct {
	ContainerCount     int          `json:"container_count"`
	ParagraphCount     int          `json:"paragraph_count"`
	AssignedParagraphs int          `json:"assigned_paragraphs"`
	Warnings           []string     `json:"warnings,omitempty"`
	Timings            PhaseTimings `json:"timings"`
	CacheHit           bool         `json:"cache_hit,omitempty"`
}

// TransformationResult is the outcome of a forward (document to wizard)
// transformation. Created by the forward transformer, consumed once by the
// updater, cached by snapshot fingerprint.
type TransformationResult struct {
	Content              string                 `json:"content"`
	IsCompleted          bool                   `json:"is_completed"`
	Strategy             Strategy               `json:"strategy"`
	Metadata             TransformationMetadata `json:"metadata"`
	Success              bool                   `json:"success"`
	Errors               []string               `json:"errors,omitempty"`
	Timestamp            time.Time              `json:"timestamp"`
	QualityMetrics       QualityMetrics         `json:"quality_metrics"`
	ContentIntegrityHash string                 `json:"content_integrity_hash,omitempty"`
}

// ReverseQualityMetrics scores wizard-side content.
type ReverseQualityMetrics struct {
	Score         int  `json:"score"`
	WordCount     int  `json:"word_count"`
	HasMarkdown   bool `json:"has_markdown"`
	HasStructured bool `json:"has_structured"`
}

// ReverseMetadata carries the named wizard fields captured alongside the
// content, plus warnings from the loose validation pass.
type ReverseMetadata struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Nickname    string   `json:"nickname,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	DurationMS  int64    `json:"duration_ms"`
}

// ReverseTransformationResult is the outcome of a reverse (wizard to
// document) transformation.
type ReverseTransformationResult struct {
	Content                 string                `json:"content"`
	IsCompleted             bool                  `json:"is_completed"`
	Strategy                Strategy              `json:"strategy"`
	Metadata                ReverseMetadata       `json:"metadata"`
	Success                 bool                  `json:"success"`
	Errors                  []string              `json:"errors,omitempty"`
	Timestamp               time.Time             `json:"timestamp"`
	Quality                 ReverseQualityMetrics `json:"quality"`
	DataIntegrityValidation bool                  `json:"data_integrity_validation"`
}

// ValidationMetrics holds the fixed counters computed during structural
// validation.
type ValidationMetrics struct {
	ContainerCount        int   `json:"container_count"`
	ParagraphCount        int   `json:"paragraph_count"`
	DuplicateContainerIDs int   `json:"duplicate_container_ids"`
	DuplicateParagraphIDs int   `json:"duplicate_paragraph_ids"`
	OrphanedParagraphs    int   `json:"orphaned_paragraphs"`
	EmptyContainers       int   `json:"empty_containers"`
	DurationMS            int64 `json:"duration_ms"`
}

// ValidationFlags marks which of the three validation phases passed.
type ValidationFlags struct {
	ShapeOK       bool `json:"shape_ok"`
	EntitiesOK    bool `json:"entities_ok"`
	ConsistencyOK bool `json:"consistency_ok"`
}

// ValidationResult is the purely derived output of the structural validator.
// Recomputed on demand, never persisted.
//
// IsValidForTransfer is deliberately lenient: it is true whenever any
// container or paragraph is present, regardless of warnings. The transfer
// proceeds with degraded data rather than being blocked.
type ValidationResult struct {
	IsValidForTransfer   bool              `json:"is_valid_for_transfer"`
	Errors               []string          `json:"errors,omitempty"`
	Warnings             []string          `json:"warnings,omitempty"`
	HasMinimumContent    bool              `json:"has_minimum_content"`
	HasRequiredStructure bool              `json:"has_required_structure"`
	ErrorDetails         map[string]string `json:"error_details,omitempty"`
	Metrics              ValidationMetrics `json:"metrics"`
	Flags                ValidationFlags   `json:"flags"`
}
