package config

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// reloadRecorder collects the configs a watcher delivers.
type reloadRecorder struct {
	mu   sync.Mutex
	seen []*Config
}

func (r *reloadRecorder) record(cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, cfg)
	return nil
}

func (r *reloadRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func (r *reloadRecorder) last() *Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return nil
	}
	return r.seen[len(r.seen)-1]
}

func newTestWatcher(t *testing.T, path string) (*Watcher, *reloadRecorder) {
	t.Helper()
	w, err := NewWatcher(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })
	w.debouncePeriod = 50 * time.Millisecond

	rec := &reloadRecorder{}
	w.OnReload(rec.record)
	return w, rec
}

func TestNewWatcher_MissingFile(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent.toml"), zaptest.NewLogger(t).Sugar())
	require.Error(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := Default()
	require.NoError(t, Save(cfg, path))

	w, rec := newTestWatcher(t, path)
	w.Start()

	cfg.Engine.TimeoutMS = 1234
	require.NoError(t, Save(cfg, path))

	assert.Eventually(t, func() bool {
		last := rec.last()
		return last != nil && last.Engine.TimeoutMS == 1234
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := Default()
	require.NoError(t, Save(cfg, path))

	w, rec := newTestWatcher(t, path)
	w.Start()

	// Three writes inside one debounce window collapse into one reload.
	for i := int64(1); i <= 3; i++ {
		cfg.Engine.TimeoutMS = i * 1000
		require.NoError(t, Save(cfg, path))
	}

	assert.Eventually(t, func() bool { return rec.count() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(3 * w.debouncePeriod)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, int64(3000), rec.last().Engine.TimeoutMS)
}

func TestWatcher_OwnWriteSuppression(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, Save(Default(), path))

	w, _ := newTestWatcher(t, path)

	w.MarkOwnWrite()
	assert.True(t, w.checkOwnWrite(), "first event after MarkOwnWrite is ours")
	assert.False(t, w.checkOwnWrite(), "flag clears after one event")
}

func TestWatcher_InvalidReloadKeepsCallbacksSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := Default()
	cfg.Engine.TimeoutMS = -1
	require.NoError(t, Save(cfg, path))

	w, rec := newTestWatcher(t, path)
	require.Error(t, w.reload(), "invalid config must fail validation on reload")
	assert.Equal(t, 0, rec.count())
}
