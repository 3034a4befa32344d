package update

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/stores"
	"github.com/pagemill/formbridge/bridge/stores/memory"
	"github.com/pagemill/formbridge/bridge/types"
)

func newUpdater(reader stores.WizardReader, writers stores.Writers) *Updater {
	return New(reader, writers, zap.NewNop().Sugar()).WithSettleDelay(0)
}

func successResult(content string, completed bool) *types.TransformationResult {
	return &types.TransformationResult{
		Content:     content,
		IsCompleted: completed,
		Strategy:    types.StrategyRebuildFromContainers,
		Success:     true,
	}
}

func TestApply_FullCapabilities(t *testing.T) {
	wiz := memory.NewWizardStore(memory.AllCapabilities())
	u := newUpdater(wiz, wiz.Writers())

	ok := u.Apply(context.Background(), successResult("## Intro\nHello", true))
	require.True(t, ok)

	state, err := wiz.ReadWizardState()
	require.NoError(t, err)
	assert.Equal(t, "## Intro\nHello", state[stores.KeyContent])
	assert.Equal(t, true, state[stores.KeyIsCompleted])

	fv, ok2 := state[stores.KeyFormValues].(map[string]any)
	require.True(t, ok2)
	assert.Equal(t, "## Intro\nHello", fv[types.FormKeyContent])
	assert.Equal(t, true, fv[types.FormKeyCompleted])
}

func TestApply_RejectsUnusableResults(t *testing.T) {
	wiz := memory.NewWizardStore(memory.AllCapabilities())
	u := newUpdater(wiz, wiz.Writers())

	assert.False(t, u.Apply(context.Background(), nil))
	assert.False(t, u.Apply(context.Background(), &types.TransformationResult{
		Content: "failed anyway",
		Success: false,
	}))
}

func TestApply_NoSetterAvailable(t *testing.T) {
	wiz := memory.NewWizardStore(memory.Capabilities{})
	u := newUpdater(wiz, wiz.Writers())

	assert.False(t, u.Apply(context.Background(), successResult("content", false)))
}

// A store exposing only the field setter persists through the form-values
// layer; verification accepts that layer alone.
func TestApply_FieldSetterOnly(t *testing.T) {
	wiz := memory.NewWizardStore(memory.Capabilities{Field: true})
	u := newUpdater(wiz, wiz.Writers())

	ok := u.Apply(context.Background(), successResult("field only", true))
	require.True(t, ok)

	state, err := wiz.ReadWizardState()
	require.NoError(t, err)
	assert.Equal(t, "", state[stores.KeyContent], "store-level content untouched")
	fv := state[stores.KeyFormValues].(map[string]any)
	assert.Equal(t, "field only", fv[types.FormKeyContent])
}

// Content and completion setters persist through the store layer only;
// verification accepts that layer alone.
func TestApply_StoreLayerOnly(t *testing.T) {
	wiz := memory.NewWizardStore(memory.Capabilities{Content: true, Completion: true})
	u := newUpdater(wiz, wiz.Writers())

	ok := u.Apply(context.Background(), successResult("store layer", true))
	require.True(t, ok)
}

// With only the content setter, the store layer's completion flag never gets
// written; a result wanting completion true then fails verification on both
// layers.
func TestApply_PartialWriteFailsVerification(t *testing.T) {
	wiz := memory.NewWizardStore(memory.Capabilities{Content: true})
	u := newUpdater(wiz, wiz.Writers())

	assert.False(t, u.Apply(context.Background(), successResult("content", true)))

	// A result that matches the store's default completion verifies fine.
	assert.True(t, u.Apply(context.Background(), successResult("content", false)))
}

func TestApply_NilReaderTrustsWrites(t *testing.T) {
	wiz := memory.NewWizardStore(memory.AllCapabilities())
	u := newUpdater(nil, wiz.Writers())

	assert.True(t, u.Apply(context.Background(), successResult("unverified", false)))
}

func TestApply_CancelledContext(t *testing.T) {
	wiz := memory.NewWizardStore(memory.AllCapabilities())
	u := New(wiz, wiz.Writers(), zap.NewNop().Sugar()).
		WithSettleDelay(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, u.Apply(ctx, successResult("too late", false)))
}
