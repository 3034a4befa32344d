package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/stores"
	"github.com/pagemill/formbridge/bridge/stores/memory"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func documentState() map[string]any {
	return map[string]any{
		stores.KeyContainers: []any{
			map[string]any{"id": "c1", "name": "Intro", "order": 0},
		},
		stores.KeyParagraphs: []any{
			map[string]any{"id": "p1", "content": "Hello world", "order": 0, "container_id": "c1"},
		},
		stores.KeyFlattenedContent: "## Intro\nHello world",
		stores.KeyIsCompleted:      true,
	}
}

func TestExtract_FullState(t *testing.T) {
	docs := memory.NewDocumentStore(documentState())
	ui := memory.NewUIStore(map[string]any{
		stores.KeyActiveParagraph:   "p1",
		stores.KeySelectedParagraph: "p1",
		stores.KeyPreviewOpen:       true,
	})

	snapshot, ok := New(docs, ui, testLogger()).Extract()
	require.True(t, ok)
	require.NotNil(t, snapshot)

	assert.Len(t, snapshot.Containers, 1)
	assert.Len(t, snapshot.Paragraphs, 1)
	assert.Equal(t, "## Intro\nHello world", snapshot.FlattenedContent)
	assert.True(t, snapshot.IsCompleted)
	assert.Equal(t, "p1", snapshot.Cursor.ActiveParagraphID)
	assert.True(t, snapshot.Cursor.PreviewOpen)

	assert.True(t, snapshot.Metadata.Valid)
	assert.False(t, snapshot.Metadata.Flags.Fallback)
	assert.False(t, snapshot.Metadata.Flags.RegeneratedContent)
	assert.False(t, snapshot.Metadata.Flags.UIStateDefaulted)
	assert.Equal(t, 1, snapshot.Metadata.Metrics.ContainerCount)
	assert.Equal(t, 1, snapshot.Metadata.Metrics.AssignedParagraphs)
	assert.NotEmpty(t, snapshot.Metadata.IntegrityHash)
}

func TestExtract_DocumentStoreUnreachable(t *testing.T) {
	docs := memory.NewDocumentStore(documentState())
	docs.SetAvailable(false)

	snapshot, ok := New(docs, nil, testLogger()).Extract()
	assert.False(t, ok)
	assert.Nil(t, snapshot)
}

func TestExtract_RegeneratesMissingContent(t *testing.T) {
	state := documentState()
	delete(state, stores.KeyFlattenedContent)
	docs := memory.NewDocumentStore(state)

	snapshot, ok := New(docs, nil, testLogger()).Extract()
	require.True(t, ok)

	assert.Equal(t, "## Intro\nHello world", snapshot.FlattenedContent)
	assert.True(t, snapshot.Metadata.Flags.RegeneratedContent)
}

func TestExtract_UIStoreFailureDegradesToDefaults(t *testing.T) {
	docs := memory.NewDocumentStore(documentState())
	ui := memory.NewUIStore(map[string]any{stores.KeyActiveParagraph: "p1"})
	ui.SetAvailable(false)

	snapshot, ok := New(docs, ui, testLogger()).Extract()
	require.True(t, ok)

	assert.True(t, snapshot.Metadata.Flags.UIStateDefaulted)
	assert.Empty(t, snapshot.Cursor.ActiveParagraphID)
}

func TestExtract_NilUIReader(t *testing.T) {
	docs := memory.NewDocumentStore(documentState())

	snapshot, ok := New(docs, nil, testLogger()).Extract()
	require.True(t, ok)
	assert.True(t, snapshot.Metadata.Flags.UIStateDefaulted)
}

func TestExtract_DiscardsInvalidEntities(t *testing.T) {
	state := documentState()
	state[stores.KeyContainers] = []any{
		map[string]any{"id": "c1", "name": "Intro", "order": 0},
		map[string]any{"name": "no id"},
	}
	docs := memory.NewDocumentStore(state)

	snapshot, ok := New(docs, nil, testLogger()).Extract()
	require.True(t, ok)

	assert.Len(t, snapshot.Containers, 1)
	assert.Equal(t, 1, snapshot.Metadata.Metrics.DiscardedEntities)
}

func TestExtract_EmptyStore(t *testing.T) {
	docs := memory.NewDocumentStore(nil)

	snapshot, ok := New(docs, nil, testLogger()).Extract()
	require.True(t, ok)

	assert.True(t, snapshot.IsEmpty())
	assert.Equal(t, "", snapshot.FlattenedContent)
	assert.True(t, snapshot.Metadata.Valid)
}

func TestWizardExtract_MirrorsStoreLevelFields(t *testing.T) {
	wiz := memory.NewWizardStore(memory.Capabilities{})
	wiz.SetStep(2)

	snapshot, ok := NewWizard(wiz, testLogger()).Extract()
	require.True(t, ok)
	assert.Equal(t, 2, snapshot.CurrentStep)

	// Store-level content and completion mirror into form values.
	content, present := snapshot.FormValues["content"]
	require.True(t, present)
	assert.Equal(t, "", content)
	completed, present := snapshot.FormValues["completed"]
	require.True(t, present)
	assert.Equal(t, false, completed)
}

func TestWizardExtract_FormValuesWinOverStoreFields(t *testing.T) {
	wiz := memory.NewWizardStore(memory.Capabilities{})
	wiz.SetFormValue("content", "form wins")

	snapshot, ok := NewWizard(wiz, testLogger()).Extract()
	require.True(t, ok)
	assert.Equal(t, "form wins", snapshot.FormValues["content"])
}
