package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/types"
	fbtest "github.com/pagemill/formbridge/internal/testing"
)

func newTestPersistent(t *testing.T) *Persistent {
	t.Helper()
	db := fbtest.CreateTestDB(t)
	p, err := NewPersistent(db, zap.NewNop().Sugar())
	require.NoError(t, err)
	return p
}

func TestPersistent_SetGet(t *testing.T) {
	p := newTestPersistent(t)

	require.NoError(t, p.Set("formbridge:k1", sampleResult("persisted")))

	got, ok, err := p.Get("formbridge:k1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", got.Content)
	assert.Equal(t, types.StrategyExistingContent, got.Strategy)
	assert.True(t, got.Success)
}

func TestPersistent_GetMiss(t *testing.T) {
	p := newTestPersistent(t)

	_, ok, err := p.Get("formbridge:absent", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistent_Replace(t *testing.T) {
	p := newTestPersistent(t)

	require.NoError(t, p.Set("formbridge:k1", sampleResult("first")))
	require.NoError(t, p.Set("formbridge:k1", sampleResult("second")))

	got, ok, err := p.Get("formbridge:k1", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.Content)
}

func TestPersistent_ClearPattern(t *testing.T) {
	p := newTestPersistent(t)

	require.NoError(t, p.Set("formbridge:k1", sampleResult("mine")))
	require.NoError(t, p.Set("formbridge:k2", sampleResult("mine too")))
	require.NoError(t, p.Set("other:k1", sampleResult("not mine")))

	require.NoError(t, p.ClearPattern("formbridge:"))

	_, ok, err := p.Get("formbridge:k1", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = p.Get("formbridge:k2", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	// Foreign prefixes are untouched.
	_, ok, err = p.Get("other:k1", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

// An in-memory miss falls through to the spillover, and the hit re-seeds the
// in-memory map.
func TestManager_SpilloverRoundTrip(t *testing.T) {
	p := newTestPersistent(t)
	cfg := Config{Expiry: time.Minute}

	first := NewManager(cfg, p, zap.NewNop().Sugar())
	t.Cleanup(first.Close)
	first.Set("k1", sampleResult("survives restart"))

	// A fresh manager sharing the spillover starts with an empty map.
	second := NewManager(cfg, p, zap.NewNop().Sugar())
	t.Cleanup(second.Close)
	require.Equal(t, 0, second.Len())

	got, ok := second.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "survives restart", got.Content)
	assert.Equal(t, 1, second.Len(), "spillover hit should re-seed the map")
}

func TestManager_InvalidateAllClearsSpillover(t *testing.T) {
	p := newTestPersistent(t)
	cfg := Config{Expiry: time.Minute}

	m := NewManager(cfg, p, zap.NewNop().Sugar())
	t.Cleanup(m.Close)
	m.Set("k1", sampleResult("doomed"))

	m.InvalidateAll()

	// Neither the map nor the spillover serves the entry afterwards.
	_, ok := m.Get("k1")
	assert.False(t, ok)
	_, ok, err := p.Get(KeyPrefix+"k1", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
