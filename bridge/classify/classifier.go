// Package classify converts arbitrary recovered values into structured,
// severity- and recoverability-tagged errors.
//
// Classification is keyword-based: the lowercased message is matched against
// a fixed category table, first match wins. Severity and recoverability
// derive from the category.
package classify

import (
	"fmt"
	"strings"
	"time"
)

// Severity grades an error's impact.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Category names the keyword family an error was matched into.
type Category string

const (
	CategoryCriticalSystem   Category = "CRITICAL_SYSTEM"
	CategoryHighOperation    Category = "HIGH_OPERATION"
	CategoryMediumValidation Category = "MEDIUM_VALIDATION"
	CategoryNetworkRelated   Category = "NETWORK_RELATED"
	CategoryPermissionDenied Category = "PERMISSION_DENIED"
	CategoryDataProcessing   Category = "DATA_PROCESSING"
	CategoryBridgeSpecific   Category = "BRIDGE_SPECIFIC"
	CategoryUnknown          Category = "UNKNOWN_ERROR"
)

// ErrorContext carries the operation an error occurred in plus free-form
// contextual values.
type ErrorContext struct {
	Operation   string         `json:"operation"`
	Severity    Severity       `json:"severity"`
	Recoverable bool           `json:"recoverable"`
	Values      map[string]any `json:"values,omitempty"`
}

// ErrorDetails is the structured classification of one failure. It is
// created once per failure and attached to the operation result; the bridge
// does not retry on its own, so RecoveryAttempts stays at zero unless the
// caller drives retries.
type ErrorDetails struct {
	Code                string       `json:"code"`
	Message             string       `json:"message"`
	Timestamp           time.Time    `json:"timestamp"`
	Context             ErrorContext `json:"context"`
	Severity            Severity     `json:"severity"`
	IsRecoverable       bool         `json:"is_recoverable"`
	RecoveryAttempts    int          `json:"recovery_attempts"`
	MaxRecoveryAttempts int          `json:"max_recovery_attempts"`
	RecoveryStrategies  []string     `json:"recovery_strategies,omitempty"`
}

// maxRecoveryAttempts is the suggested retry ceiling for recoverable errors.
const maxRecoveryAttempts = 3

// Suggested recovery strategies for recoverable categories.
var recoverableStrategies = []string{"retry", "fallback_execution", "user_intervention"}

// categoryRule pairs a category with its trigger keywords and derived
// severity/recoverability. Order matters: first match wins.
type categoryRule struct {
	category    Category
	severity    Severity
	recoverable bool
	keywords    []string
}

var categoryTable = []categoryRule{
	{CategoryCriticalSystem, SeverityCritical, false,
		[]string{"out of memory", "stack overflow", "segfault", "fatal"}},
	{CategoryHighOperation, SeverityHigh, true,
		[]string{"operation failed", "execution failed", "aborted"}},
	{CategoryMediumValidation, SeverityMedium, true,
		[]string{"validation", "invalid", "malformed", "missing field"}},
	{CategoryNetworkRelated, SeverityMedium, true,
		[]string{"network", "timeout", "connection", "unreachable", "refused"}},
	{CategoryPermissionDenied, SeverityHigh, false,
		[]string{"permission", "denied", "unauthorized", "forbidden"}},
	{CategoryDataProcessing, SeverityMedium, true,
		[]string{"parse", "serialize", "marshal", "decode", "encode", "transform"}},
	{CategoryBridgeSpecific, SeverityMedium, true,
		[]string{"snapshot", "wizard", "container", "paragraph", "bridge"}},
}

// Classify converts a recovered value into structured error details for the
// given operation. An Error yields its message, a string is taken as-is,
// anything else is stringified best effort.
func Classify(raw any, operation string) *ErrorDetails {
	msg := extractMessage(raw)
	category, severity, recoverable := categorize(msg)

	var strategies []string
	if recoverable {
		strategies = append([]string(nil), recoverableStrategies...)
	}

	now := time.Now()
	return &ErrorDetails{
		Code:      errorCode(category, now),
		Message:   msg,
		Timestamp: now,
		Context: ErrorContext{
			Operation:   operation,
			Severity:    severity,
			Recoverable: recoverable,
		},
		Severity:            severity,
		IsRecoverable:       recoverable,
		MaxRecoveryAttempts: maxRecoveryAttempts,
		RecoveryStrategies:  strategies,
	}
}

// Category returns the keyword category of the details' message, re-derived
// for introspection.
func (d *ErrorDetails) Category() Category {
	category, _, _ := categorize(d.Message)
	return category
}

func extractMessage(raw any) string {
	switch v := raw.(type) {
	case error:
		return v.Error()
	case string:
		return v
	case nil:
		return "unknown error (nil)"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func categorize(msg string) (Category, Severity, bool) {
	lower := strings.ToLower(msg)
	for _, rule := range categoryTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, rule.severity, rule.recoverable
			}
		}
	}
	return CategoryUnknown, SeverityMedium, true
}

// errorCode builds the stable synthetic code {category}-{timestampSuffix}.
func errorCode(category Category, now time.Time) string {
	suffix := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("%s-%06d", category, suffix)
}
