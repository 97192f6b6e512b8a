// Package cache provides a SQLite-backed content-hash-to-vector cache
// with LRU-by-last-access pruning, sparing repeat embedding requests for
// unchanged chunk content.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// EmbeddingCache is a SQLite-backed embeddings(hash, vector, last_accessed)
// table. Vectors are serialized as JSON arrays, not pickled/binary blobs,
// so a corrupted or legacy entry can be detected and evicted on read.
type EmbeddingCache struct {
	db *sql.DB
}

// Open creates or opens the cache database at dbPath and ensures its
// schema exists.
func Open(dbPath string) (*EmbeddingCache, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS embeddings (
			hash TEXT PRIMARY KEY,
			vector BLOB,
			last_accessed TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init embedding cache schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_last_accessed ON embeddings(last_accessed)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init embedding cache index: %w", err)
	}
	return &EmbeddingCache{db: db}, nil
}

// Hash returns sha256(text) truncated to 32 hex chars, the cache key.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:32]
}

// Get returns the cached vector for hash, or nil if absent. A hit bumps
// last_accessed to now (UTC). A stored blob that is not valid UTF-8 JSON
// beginning with "[" is treated as a legacy/corrupt entry: it is evicted
// and Get returns nil as if it had never been cached.
func (c *EmbeddingCache) Get(hash string) ([]float32, error) {
	var blob []byte
	err := c.db.QueryRow("SELECT vector FROM embeddings WHERE hash = ?", hash).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", hash, err)
	}

	if !looksLikeJSONArray(blob) {
		if _, delErr := c.db.Exec("DELETE FROM embeddings WHERE hash = ?", hash); delErr != nil {
			return nil, fmt.Errorf("evict corrupt cache entry %s: %w", hash, delErr)
		}
		return nil, nil
	}

	var vec []float32
	if err := json.Unmarshal(blob, &vec); err != nil {
		if _, delErr := c.db.Exec("DELETE FROM embeddings WHERE hash = ?", hash); delErr != nil {
			return nil, fmt.Errorf("evict corrupt cache entry %s: %w", hash, delErr)
		}
		return nil, nil
	}

	if _, err := c.db.Exec(
		"UPDATE embeddings SET last_accessed = ? WHERE hash = ?",
		time.Now().UTC(), hash,
	); err != nil {
		return nil, fmt.Errorf("touch cache entry %s: %w", hash, err)
	}
	return vec, nil
}

// Set upserts vector for hash, JSON-encoded, with last_accessed = now.
func (c *EmbeddingCache) Set(hash string, vector []float32) error {
	blob, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("encode vector for %s: %w", hash, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO embeddings (hash, vector, last_accessed) VALUES (?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET vector = excluded.vector, last_accessed = excluded.last_accessed`,
		hash, blob, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache set %s: %w", hash, err)
	}
	return nil
}

// Prune deletes rows whose last_accessed is older than days ago.
// Prune(0) deletes every row last accessed strictly before the moment
// of the call.
func (c *EmbeddingCache) Prune(days int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	_, err := c.db.Exec("DELETE FROM embeddings WHERE last_accessed < ?", cutoff)
	if err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (c *EmbeddingCache) Close() error {
	return c.db.Close()
}

func looksLikeJSONArray(blob []byte) bool {
	trimmed := strings.TrimSpace(string(blob))
	return strings.HasPrefix(trimmed, "[")
}
