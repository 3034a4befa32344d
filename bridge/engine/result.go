package engine

import (
	"time"

	"github.com/pagemill/formbridge/bridge/classify"
	"github.com/pagemill/formbridge/bridge/types"
)

// PreconditionResult reports whether a transfer may start and why.
type PreconditionResult struct {
	Passed       bool                    `json:"passed"`
	Source       string                  `json:"source"` // "external_data" or "extracted_snapshot"
	QualityScore int                     `json:"quality_score"`
	Validation   *types.ValidationResult `json:"validation,omitempty"`
	Reasons      []string                `json:"reasons,omitempty"`

	// snapshot carries the already-extracted snapshot forward into the
	// transfer so the extract phase does not re-read the store.
	snapshot *types.DocumentSnapshot
}

// OperationResult is the outcome of one ExecuteTransfer invocation.
type OperationResult struct {
	OperationID          string                      `json:"operation_id"`
	Success              bool                        `json:"success"`
	Phase                Phase                       `json:"phase"` // phase reached when the operation ended
	Strategy             types.Strategy              `json:"strategy,omitempty"`
	Preconditions        *PreconditionResult         `json:"preconditions,omitempty"`
	TransformationResult *types.TransformationResult `json:"transformation_result,omitempty"`
	Updated              bool                        `json:"updated"`
	OperationErrors      []*classify.ErrorDetails    `json:"operation_errors,omitempty"`
	StartedAt            time.Time                   `json:"started_at"`
	CompletedAt          time.Time                   `json:"completed_at"`
	DurationMS           int64                       `json:"duration_ms"`
}

// FirstError returns the first classified error, or nil.
func (r *OperationResult) FirstError() *classify.ErrorDetails {
	if len(r.OperationErrors) == 0 {
		return nil
	}
	return r.OperationErrors[0]
}
