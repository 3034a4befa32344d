package engine

import "time"

// Phase names a step of the transfer state machine.
type Phase string

const (
	PhaseCheckPreconditions Phase = "check_preconditions"
	PhaseExtract            Phase = "extract"
	PhaseTransform          Phase = "transform"
	PhaseUpdate             Phase = "update"
	PhaseComplete           Phase = "complete"
	PhaseFailed             Phase = "failed"
)

// State is the engine's operational state. It is mutated only by the
// engine, one field at a time, always stamped with the current time.
type State struct {
	IsInitialized         bool      `json:"is_initialized"`
	LastOperationTime     time.Time `json:"last_operation_time"`
	OperationCount        int       `json:"operation_count"`
	CurrentOperationID    string    `json:"current_operation_id,omitempty"` // empty when idle
	HasExternalData       bool      `json:"has_external_data"`
	ExternalDataTimestamp time.Time `json:"external_data_timestamp,omitzero"`
}

// Metrics counts transfer operations. Updated atomically with the state
// transition that ends each operation.
type Metrics struct {
	TotalOperations      int   `json:"total_operations"`
	SuccessfulOperations int   `json:"successful_operations"`
	FailedOperations     int   `json:"failed_operations"`
	LastDurationMS       int64 `json:"last_duration_ms"`
}
