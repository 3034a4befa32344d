// Package cache stores transformation results keyed by snapshot fingerprint.
//
// Entries die three independent ways: age beyond the expiry window, an
// invalidation signal bump, or scored eviction once the map exceeds its
// size bound. A background sweep proactively evicts; reads also evict
// lazily so correctness never depends on sweep timing.
package cache

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/logger"
)

// KeyPrefix namespaces bridge cache keys in any shared external store.
const KeyPrefix = "formbridge:"

// accessWeight is the multiplier applied to an entry's access count when
// scoring eviction candidates. Entries with the lowest
// accessCount*accessWeight + timestamp score are evicted first.
const accessWeight = 60

// Config bounds the cache.
type Config struct {
	Expiry        time.Duration // entry lifetime; 0 disables time-based expiry
	MaxSize       int           // entry count bound; 0 means unbounded
	SweepInterval time.Duration // background sweep period; 0 disables the sweep
}

// DefaultConfig returns the standard cache bounds.
func DefaultConfig() Config {
	return Config{
		Expiry:        5 * time.Minute,
		MaxSize:       64,
		SweepInterval: 30 * time.Second,
	}
}

type entry struct {
	data               *types.TransformationResult
	timestamp          time.Time
	accessCount        int
	invalidationSignal int64 // live signal captured at write time
}

// Manager owns the bounded entry map and the invalidation signal. The
// signal is an instance field, not module state, so independent engines
// never share invalidation behavior.
type Manager struct {
	mu         sync.Mutex
	entries    map[string]*entry
	signal     int64
	cfg        Config
	log        *zap.SugaredLogger
	persistent *Persistent // optional spillover; nil when not configured

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewManager creates a cache manager and starts its background sweep when
// the config requests one. Callers must Close the manager to stop the sweep.
func NewManager(cfg Config, persistent *Persistent, log *zap.SugaredLogger) *Manager {
	m := &Manager{
		entries:    map[string]*entry{},
		cfg:        cfg,
		log:        log.Named("cache"),
		persistent: persistent,
	}
	if cfg.SweepInterval > 0 {
		m.sweepStop = make(chan struct{})
		m.sweepDone = make(chan struct{})
		go m.sweepLoop()
	}
	return m
}

// Get returns the cached result for key, or false on miss. Entries whose
// captured signal no longer matches the live signal, or whose age exceeds
// the expiry window, are discarded on read; either condition alone
// invalidates.
func (m *Manager) Get(key string) (*types.TransformationResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return m.spilloverGetLocked(key)
	}
	if e.invalidationSignal != m.signal || m.expired(e) {
		delete(m.entries, key)
		m.log.Debugw("cache entry invalidated on read",
			logger.FieldCacheKey, key,
		)
		return nil, false
	}
	e.accessCount++
	return e.data, true
}

// Set stores a result under key, capturing the live invalidation signal.
// When a persistent spillover is configured the write goes there too, best
// effort.
func (m *Manager) Set(key string, result *types.TransformationResult) {
	m.mu.Lock()
	m.entries[key] = &entry{
		data:               result,
		timestamp:          time.Now(),
		invalidationSignal: m.signal,
	}
	m.evictExcessLocked()
	m.mu.Unlock()

	if m.persistent != nil {
		if err := m.persistent.Set(KeyPrefix+key, result); err != nil {
			m.log.Debugw("persistent cache write failed",
				logger.FieldCacheKey, key,
				logger.FieldError, err,
			)
		}
	}
}

// InvalidateAll bumps the invalidation signal and clears the map in one
// step, then best-effort clears persisted keys matching the bridge prefix.
func (m *Manager) InvalidateAll() {
	m.mu.Lock()
	m.signal++
	cleared := len(m.entries)
	m.entries = map[string]*entry{}
	m.mu.Unlock()

	m.log.Infow("cache invalidated",
		logger.FieldCount, cleared,
	)

	if m.persistent != nil {
		if err := m.persistent.ClearPattern(KeyPrefix); err != nil {
			m.log.Debugw("persistent cache clear failed",
				logger.FieldError, err,
			)
		}
	}
}

// Signal returns the live invalidation signal, for introspection and tests.
func (m *Manager) Signal() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signal
}

// Len returns the current entry count.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close stops the background sweep. Safe to call once.
func (m *Manager) Close() {
	if m.sweepStop != nil {
		close(m.sweepStop)
		<-m.sweepDone
	}
}

// spilloverGetLocked consults the persistent spillover on an in-memory miss
// and re-seeds the map on a hit. Persisted entries carry no invalidation
// signal; InvalidateAll clears them by key pattern instead. Caller holds
// m.mu.
func (m *Manager) spilloverGetLocked(key string) (*types.TransformationResult, bool) {
	if m.persistent == nil {
		return nil, false
	}
	result, ok, err := m.persistent.Get(KeyPrefix+key, m.cfg.Expiry)
	if err != nil {
		m.log.Debugw("persistent cache read failed",
			logger.FieldCacheKey, key,
			logger.FieldError, err,
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	m.entries[key] = &entry{
		data:               result,
		timestamp:          time.Now(),
		invalidationSignal: m.signal,
	}
	return result, true
}

func (m *Manager) expired(e *entry) bool {
	return m.cfg.Expiry > 0 && time.Since(e.timestamp) > m.cfg.Expiry
}

// evictExcessLocked removes lowest-scored entries until the map fits the
// size bound. Caller holds m.mu.
func (m *Manager) evictExcessLocked() {
	if m.cfg.MaxSize <= 0 || len(m.entries) <= m.cfg.MaxSize {
		return
	}
	type scored struct {
		key   string
		score int64
	}
	candidates := make([]scored, 0, len(m.entries))
	for k, e := range m.entries {
		candidates = append(candidates, scored{
			key:   k,
			score: int64(e.accessCount)*accessWeight + e.timestamp.Unix(),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})
	for _, c := range candidates[:len(m.entries)-m.cfg.MaxSize] {
		delete(m.entries, c.key)
	}
}

func (m *Manager) sweepLoop() {
	defer close(m.sweepDone)
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.sweepStop:
			return
		}
	}
}

// sweep evicts expired, invalidated, and excess entries.
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.entries)
	for k, e := range m.entries {
		if e.invalidationSignal != m.signal || m.expired(e) {
			delete(m.entries, k)
		}
	}
	m.evictExcessLocked()
	if evicted := before - len(m.entries); evicted > 0 {
		m.log.Debugw("sweep evicted entries",
			logger.FieldCount, evicted,
		)
	}
}
