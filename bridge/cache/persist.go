package cache

import (
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/errors"
)

const createCacheTableSQL = `
	CREATE TABLE IF NOT EXISTS bridge_cache (
		key        TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`

// Persistent is a sqlite-backed spillover for transformation results. It
// outlives the process, which is why InvalidateAll must clear it by key
// pattern rather than relying on the in-memory invalidation signal.
type Persistent struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewPersistent creates the cache table if needed and returns the spillover.
// The caller owns the database handle.
func NewPersistent(db *sql.DB, log *zap.SugaredLogger) (*Persistent, error) {
	if _, err := db.Exec(createCacheTableSQL); err != nil {
		return nil, errors.Wrap(err, "failed to create bridge_cache table")
	}
	return &Persistent{db: db, log: log.Named("cache.persist")}, nil
}

// Set stores a result under key, replacing any previous value.
func (p *Persistent) Set(key string, result *types.TransformationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to marshal cached result")
	}
	_, err = p.db.Exec(
		`INSERT OR REPLACE INTO bridge_cache (key, data, created_at) VALUES (?, ?, ?)`,
		key, string(data), time.Now().Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to write cache entry")
	}
	return nil
}

// Get returns the stored result for key. Entries older than maxAge are
// deleted and reported as misses; maxAge <= 0 disables the age check.
func (p *Persistent) Get(key string, maxAge time.Duration) (*types.TransformationResult, bool, error) {
	var data string
	var createdAt int64
	err := p.db.QueryRow(
		`SELECT data, created_at FROM bridge_cache WHERE key = ?`, key,
	).Scan(&data, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read cache entry")
	}

	if maxAge > 0 && time.Since(time.Unix(createdAt, 0)) > maxAge {
		if _, err := p.db.Exec(`DELETE FROM bridge_cache WHERE key = ?`, key); err != nil {
			p.log.Debugw("failed to delete expired cache entry", "key", key, "error", err)
		}
		return nil, false, nil
	}

	var result types.TransformationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, false, errors.Wrap(err, "failed to unmarshal cached result")
	}
	return &result, true, nil
}

// ClearPattern deletes every key starting with prefix.
func (p *Persistent) ClearPattern(prefix string) error {
	res, err := p.db.Exec(`DELETE FROM bridge_cache WHERE key LIKE ? || '%'`, prefix)
	if err != nil {
		return errors.Wrap(err, "failed to clear cache entries by pattern")
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		p.log.Debugw("cleared persisted cache entries", "count", n)
	}
	return nil
}
