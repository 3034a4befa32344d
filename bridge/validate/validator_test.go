package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/types"
)

func newValidator() *Validator {
	return New(zap.NewNop().Sugar())
}

func TestValidate_NilSnapshot(t *testing.T) {
	result := newValidator().Validate(nil)
	require.NotNil(t, result)

	assert.False(t, result.IsValidForTransfer)
	assert.False(t, result.Flags.ShapeOK)
	assert.NotEmpty(t, result.Errors)
	assert.Contains(t, result.ErrorDetails, "shape")
}

func TestValidate_FallbackSnapshot(t *testing.T) {
	snapshot := &types.DocumentSnapshot{
		Metadata: types.SnapshotMetadata{Flags: types.SnapshotFlags{Fallback: true}},
	}
	result := newValidator().Validate(snapshot)

	assert.False(t, result.IsValidForTransfer)
	assert.NotEmpty(t, result.Errors)
}

func TestValidate_CleanSnapshot(t *testing.T) {
	snapshot := &types.DocumentSnapshot{
		Containers: []types.Container{{ID: "c1", Name: "Intro", Order: 0}},
		Paragraphs: []types.ParagraphBlock{
			{ID: "p1", Content: "Hello world", Order: 0, ContainerID: "c1"},
		},
		FlattenedContent: "## Intro\nHello world",
	}
	result := newValidator().Validate(snapshot)

	assert.True(t, result.IsValidForTransfer)
	assert.True(t, result.HasMinimumContent)
	assert.True(t, result.HasRequiredStructure)
	assert.True(t, result.Flags.ShapeOK)
	assert.True(t, result.Flags.EntitiesOK)
	assert.True(t, result.Flags.ConsistencyOK)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1, result.Metrics.ContainerCount)
	assert.Equal(t, 1, result.Metrics.ParagraphCount)
}

// Duplicate ids, orphaned paragraphs, and empty containers degrade data but
// never block the transfer.
func TestValidate_ConsistencyFindingsAreWarnings(t *testing.T) {
	snapshot := &types.DocumentSnapshot{
		Containers: []types.Container{
			{ID: "c1", Name: "Intro", Order: 0},
			{ID: "c1", Name: "Dup", Order: 1},
			{ID: "c2", Name: "Empty", Order: 2},
		},
		Paragraphs: []types.ParagraphBlock{
			{ID: "p1", Content: "a", Order: 0, ContainerID: "c1"},
			{ID: "p1", Content: "dup", Order: 1, ContainerID: "c1"},
			{ID: "p2", Content: "orphan", Order: 2, ContainerID: "missing"},
		},
	}
	result := newValidator().Validate(snapshot)

	assert.True(t, result.IsValidForTransfer, "consistency findings must not block transfer")
	assert.Empty(t, result.Errors)
	assert.False(t, result.Flags.ConsistencyOK)

	assert.Equal(t, 1, result.Metrics.DuplicateContainerIDs)
	assert.Equal(t, 1, result.Metrics.DuplicateParagraphIDs)
	assert.Equal(t, 1, result.Metrics.OrphanedParagraphs)
	assert.Equal(t, 1, result.Metrics.EmptyContainers)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidate_EmptyIDsAreWarnings(t *testing.T) {
	snapshot := &types.DocumentSnapshot{
		Containers: []types.Container{{ID: "", Name: "anon"}},
		Paragraphs: []types.ParagraphBlock{{ID: "", Content: "anon"}},
	}
	result := newValidator().Validate(snapshot)

	assert.True(t, result.IsValidForTransfer)
	assert.False(t, result.Flags.EntitiesOK)
	assert.False(t, result.HasRequiredStructure)
	assert.Len(t, result.Warnings, 2)
}

func TestValidate_EmptySnapshotNotTransferable(t *testing.T) {
	result := newValidator().Validate(&types.DocumentSnapshot{})

	assert.False(t, result.IsValidForTransfer)
	assert.False(t, result.HasMinimumContent)
	assert.Empty(t, result.Errors, "an empty snapshot is shape-valid, just not transferable")
}

func TestValidate_MinimumContentFromParagraphsOnly(t *testing.T) {
	snapshot := &types.DocumentSnapshot{
		Paragraphs: []types.ParagraphBlock{{ID: "p1", Content: "  text  "}},
	}
	result := newValidator().Validate(snapshot)

	assert.True(t, result.IsValidForTransfer)
	assert.True(t, result.HasMinimumContent)

	blank := &types.DocumentSnapshot{
		Paragraphs: []types.ParagraphBlock{{ID: "p1", Content: "   "}},
	}
	result = newValidator().Validate(blank)
	assert.True(t, result.IsValidForTransfer)
	assert.False(t, result.HasMinimumContent)
}
