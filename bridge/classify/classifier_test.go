package classify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemill/formbridge/errors"
)

func TestClassify_Categories(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		category    Category
		severity    Severity
		recoverable bool
	}{
		{"out of memory", "process out of memory", CategoryCriticalSystem, SeverityCritical, false},
		{"fatal", "fatal condition reached", CategoryCriticalSystem, SeverityCritical, false},
		{"operation failed", "operation failed: transfer stalled", CategoryHighOperation, SeverityHigh, true},
		{"aborted", "sequence aborted by caller", CategoryHighOperation, SeverityHigh, true},
		{"validation", "validation failed: preconditions not met", CategoryMediumValidation, SeverityMedium, true},
		{"invalid", "invalid payload shape", CategoryMediumValidation, SeverityMedium, true},
		{"timeout", "request timeout after 30s", CategoryNetworkRelated, SeverityMedium, true},
		{"connection", "connection reset by peer", CategoryNetworkRelated, SeverityMedium, true},
		{"permission", "permission denied on store handle", CategoryPermissionDenied, SeverityHigh, false},
		{"unauthorized", "unauthorized store access", CategoryPermissionDenied, SeverityHigh, false},
		{"parse", "parse error at byte 12", CategoryDataProcessing, SeverityMedium, true},
		{"marshal", "could not marshal result", CategoryDataProcessing, SeverityMedium, true},
		{"snapshot", "snapshot has no data", CategoryBridgeSpecific, SeverityMedium, true},
		{"wizard", "wizard store empty", CategoryBridgeSpecific, SeverityMedium, true},
		{"unknown", "something odd happened", CategoryUnknown, SeverityMedium, true},
		{"case insensitive", "TIMEOUT while dialing", CategoryNetworkRelated, SeverityMedium, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := Classify(tt.message, "test_op")
			require.NotNil(t, details)

			assert.Equal(t, tt.category, details.Category())
			assert.Equal(t, tt.severity, details.Severity)
			assert.Equal(t, tt.recoverable, details.IsRecoverable)
			assert.Equal(t, tt.message, details.Message)
			assert.Equal(t, "test_op", details.Context.Operation)
		})
	}
}

// Earlier table rows win when a message matches several categories.
func TestClassify_FirstMatchWins(t *testing.T) {
	// "fatal" (critical) and "timeout" (network) both match.
	details := Classify("fatal timeout in store", "test_op")
	assert.Equal(t, CategoryCriticalSystem, details.Category())

	// "validation" precedes "network" in the table.
	details = Classify("validation of network config failed", "test_op")
	assert.Equal(t, CategoryMediumValidation, details.Category())
}

func TestClassify_InputShapes(t *testing.T) {
	details := Classify(errors.New("connection refused"), "dial")
	assert.Equal(t, CategoryNetworkRelated, details.Category())
	assert.Equal(t, "connection refused", details.Message)

	details = Classify(nil, "noop")
	assert.Equal(t, "unknown error (nil)", details.Message)
	assert.Equal(t, CategoryUnknown, details.Category())

	details = Classify(42, "numeric")
	assert.Equal(t, "42", details.Message)
}

func TestClassify_RecoveryStrategies(t *testing.T) {
	recoverable := Classify("timeout", "op")
	assert.True(t, recoverable.IsRecoverable)
	assert.Equal(t, []string{"retry", "fallback_execution", "user_intervention"}, recoverable.RecoveryStrategies)
	assert.Equal(t, maxRecoveryAttempts, recoverable.MaxRecoveryAttempts)
	assert.Equal(t, 0, recoverable.RecoveryAttempts)

	terminal := Classify("permission denied", "op")
	assert.False(t, terminal.IsRecoverable)
	assert.Empty(t, terminal.RecoveryStrategies)
}

func TestClassify_CodeFormat(t *testing.T) {
	details := Classify("timeout", "op")
	assert.Regexp(t, regexp.MustCompile(`^NETWORK_RELATED-\d{6}$`), details.Code)

	details = Classify("mystery", "op")
	assert.Regexp(t, regexp.MustCompile(`^UNKNOWN_ERROR-\d{6}$`), details.Code)
}

func TestClassify_ContextMirrorsSeverity(t *testing.T) {
	details := Classify("segfault in decoder", "decode")
	assert.Equal(t, details.Severity, details.Context.Severity)
	assert.Equal(t, details.IsRecoverable, details.Context.Recoverable)
}
