package logger

// Standard field names for consistent structured logging across formbridge.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldOperationID = "operation_id"
	FieldComponent   = "component"
	FieldOperation   = "operation"

	// Transformation
	FieldStrategy     = "strategy"
	FieldQualityScore = "quality_score"
	FieldCacheKey     = "cache_key"
	FieldCacheHit     = "cache_hit"

	// Timing
	FieldDurationMS = "duration_ms"
	FieldStartTime  = "start_time"
	FieldEndTime    = "end_time"

	// Errors
	FieldError         = "error"
	FieldErrorCode     = "error_code"
	FieldErrorCategory = "error_category"
	FieldSeverity      = "severity"

	// Counts and sizes
	FieldCount          = "count"
	FieldContainerCount = "container_count"
	FieldParagraphCount = "paragraph_count"
	FieldContentLength  = "content_length"
	FieldWarningCount   = "warning_count"

	// Status
	FieldStatus = "status"
	FieldPhase  = "phase"
	FieldValid  = "valid"
)
