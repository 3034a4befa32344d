// Package validate re-checks snapshot shape, per-entity validity, and
// cross-entity consistency before a transfer.
//
// The validator never fails a transfer on consistency grounds: duplicate
// ids, orphaned paragraphs, and empty containers are downgraded to warnings
// so a transfer proceeds with degraded data rather than being blocked.
package validate

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/logger"
)

// Validator performs the three-phase structural validation.
type Validator struct {
	log *zap.SugaredLogger
}

// New creates a validator.
func New(log *zap.SugaredLogger) *Validator {
	return &Validator{log: log.Named("validate")}
}

// Validate runs shape, entity, and consistency checks in order. Only a gross
// shape failure (nil snapshot or fallback snapshot) short-circuits; entity
// and consistency findings accumulate. Validate never panics and never
// returns nil.
func (v *Validator) Validate(snapshot *types.DocumentSnapshot) *types.ValidationResult {
	start := time.Now()
	result := &types.ValidationResult{
		ErrorDetails: map[string]string{},
	}

	if !v.checkShape(snapshot, result) {
		result.Metrics.DurationMS = time.Since(start).Milliseconds()
		return result
	}
	result.Flags.ShapeOK = true

	v.checkEntities(snapshot, result)
	v.checkConsistency(snapshot, result)

	result.Metrics.ContainerCount = len(snapshot.Containers)
	result.Metrics.ParagraphCount = len(snapshot.Paragraphs)
	result.Metrics.DurationMS = time.Since(start).Milliseconds()

	// Leniency policy: anything present is transferable.
	result.IsValidForTransfer = len(snapshot.Containers) > 0 || len(snapshot.Paragraphs) > 0
	result.HasMinimumContent = hasMinimumContent(snapshot)
	result.HasRequiredStructure = result.Flags.ShapeOK && result.Flags.EntitiesOK

	v.log.Debugw("validation complete",
		logger.FieldValid, result.IsValidForTransfer,
		logger.FieldWarningCount, len(result.Warnings),
		logger.FieldDurationMS, result.Metrics.DurationMS,
	)
	return result
}

// checkShape verifies the snapshot is present and not a fallback shell.
func (v *Validator) checkShape(snapshot *types.DocumentSnapshot, result *types.ValidationResult) bool {
	if snapshot == nil {
		result.Errors = append(result.Errors, "snapshot is nil")
		result.ErrorDetails["shape"] = "no snapshot was provided"
		return false
	}
	if snapshot.Metadata.Flags.Fallback {
		result.Errors = append(result.Errors, "snapshot is a fallback shell with no data")
		result.ErrorDetails["shape"] = "extraction degraded to a fallback snapshot"
		return false
	}
	return true
}

// checkEntities re-applies the per-entity rules the guard package enforces
// at the boundary. Snapshots normally arrive pre-filtered; a violation here
// means the snapshot was built outside the extractor.
func (v *Validator) checkEntities(snapshot *types.DocumentSnapshot, result *types.ValidationResult) {
	ok := true
	for i, c := range snapshot.Containers {
		if c.ID == "" {
			ok = false
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("container at index %d has an empty id", i))
		}
	}
	for i, p := range snapshot.Paragraphs {
		if p.ID == "" {
			ok = false
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("paragraph at index %d has an empty id", i))
		}
	}
	result.Flags.EntitiesOK = ok
}

// checkConsistency finds duplicate ids, orphaned paragraphs, and empty
// containers. All findings are warnings.
func (v *Validator) checkConsistency(snapshot *types.DocumentSnapshot, result *types.ValidationResult) {
	containerIDs := make(map[string]bool, len(snapshot.Containers))
	for _, c := range snapshot.Containers {
		if containerIDs[c.ID] {
			result.Metrics.DuplicateContainerIDs++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate container id %q", c.ID))
		}
		containerIDs[c.ID] = true
	}

	paragraphIDs := make(map[string]bool, len(snapshot.Paragraphs))
	populated := make(map[string]bool)
	for _, p := range snapshot.Paragraphs {
		if paragraphIDs[p.ID] {
			result.Metrics.DuplicateParagraphIDs++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate paragraph id %q", p.ID))
		}
		paragraphIDs[p.ID] = true

		if p.Assigned() {
			if !containerIDs[p.ContainerID] {
				result.Metrics.OrphanedParagraphs++
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("paragraph %q references missing container %q", p.ID, p.ContainerID))
			} else {
				populated[p.ContainerID] = true
			}
		}
	}

	for _, c := range snapshot.Containers {
		if !populated[c.ID] {
			result.Metrics.EmptyContainers++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("container %q has no assigned paragraphs", c.ID))
		}
	}

	result.Flags.ConsistencyOK = result.Metrics.DuplicateContainerIDs == 0 &&
		result.Metrics.DuplicateParagraphIDs == 0 &&
		result.Metrics.OrphanedParagraphs == 0
}

func hasMinimumContent(snapshot *types.DocumentSnapshot) bool {
	if strings.TrimSpace(snapshot.FlattenedContent) != "" {
		return true
	}
	for _, p := range snapshot.Paragraphs {
		if strings.TrimSpace(p.Content) != "" {
			return true
		}
	}
	return false
}
