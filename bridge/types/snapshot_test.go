package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStrategy(t *testing.T) {
	for _, s := range []Strategy{
		StrategyExistingContent,
		StrategyRebuildFromContainers,
		StrategyHybrid,
		StrategyParagraphFallback,
		StrategyEmergencyRecovery,
	} {
		assert.True(t, IsValidStrategy(string(s)), "expected %q to be valid", s)
	}

	assert.False(t, IsValidStrategy("made_up"))
	assert.False(t, IsValidStrategy(""))
}

func TestParagraphBlock_Assigned(t *testing.T) {
	assert.True(t, ParagraphBlock{ID: "p1", ContainerID: "c1"}.Assigned())
	assert.False(t, ParagraphBlock{ID: "p2"}.Assigned())
}

func TestDocumentSnapshot_AssignedParagraphCount(t *testing.T) {
	s := &DocumentSnapshot{
		Paragraphs: []ParagraphBlock{
			{ID: "p1", ContainerID: "c1"},
			{ID: "p2"},
			{ID: "p3", ContainerID: "c2"},
		},
	}
	assert.Equal(t, 2, s.AssignedParagraphCount())
}

func TestDocumentSnapshot_IsEmpty(t *testing.T) {
	assert.True(t, (&DocumentSnapshot{}).IsEmpty())
	assert.False(t, (&DocumentSnapshot{Containers: []Container{{ID: "c1"}}}).IsEmpty())
	assert.False(t, (&DocumentSnapshot{Paragraphs: []ParagraphBlock{{ID: "p1"}}}).IsEmpty())
}

func TestWizardSnapshot_TypedValues(t *testing.T) {
	s := &WizardSnapshot{FormValues: map[string]any{
		"title":     "Release notes",
		"completed": true,
		"count":     3,
	}}

	title, ok := s.StringValue("title")
	assert.True(t, ok)
	assert.Equal(t, "Release notes", title)

	completed, ok := s.BoolValue("completed")
	assert.True(t, ok)
	assert.True(t, completed)

	// Present but wrong type
	_, ok = s.StringValue("count")
	assert.False(t, ok)
	_, ok = s.BoolValue("title")
	assert.False(t, ok)

	// Absent
	_, ok = s.StringValue("missing")
	assert.False(t, ok)
}

func TestIntegrityHash(t *testing.T) {
	h1 := IntegrityHash("hello")
	h2 := IntegrityHash("hello")
	h3 := IntegrityHash("world")

	assert.Equal(t, h1, h2, "same content must hash identically")
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 16) // 8 bytes hex-encoded
}
