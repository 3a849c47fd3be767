package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// Get returns the value and version stored under key.
func (b *Backend) Get(key string) ([]byte, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, 0, types.ErrStoreDetached
	}
	if key == "" {
		return nil, 0, types.ErrInvalidKey
	}

	var (
		value   string
		version int64
	)
	err := b.db.QueryRow(`SELECT value, version FROM kv WHERE key = ?`, key).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, types.ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get %q: %w", key, err)
	}
	return []byte(value), version, nil
}

// Set stores value under key regardless of its current version.
func (b *Backend) Set(key string, value []byte) (int64, error) {
	return b.write(key, value, -1)
}

// CompareAndSet stores value only when key is at version. Version 0 means
// the key must not exist yet.
func (b *Backend) CompareAndSet(key string, value []byte, version int64) (int64, error) {
	if version < 0 {
		return 0, types.ErrConflict
	}
	return b.write(key, value, version)
}

// Delete removes key. Deleting an absent key is not an error.
func (b *Backend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if key == "" {
		return types.ErrInvalidKey
	}

	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return b.commit(tx, key, "delete")
}

// write upserts key. A negative expected version skips the version check.
func (b *Backend) write(key string, value []byte, expected int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}
	if key == "" {
		return 0, types.ErrInvalidKey
	}
	if !json.Valid(value) {
		return 0, types.ErrInvalidValue
	}

	tx, err := b.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRow(`SELECT version FROM kv WHERE key = ?`, key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read version of %q: %w", key, err)
	}
	if expected >= 0 && current != expected {
		return 0, types.ErrConflict
	}

	next := current + 1
	_, err = tx.Exec(`INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = excluded.version, updated_at = excluded.updated_at`,
		key, string(value), next, b.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("write %q: %w", key, err)
	}
	if err := b.commit(tx, key, "set"); err != nil {
		return 0, err
	}
	return next, nil
}

// commit finishes a write transaction. Under the immediate strategy the
// snapshot is taken inside tx and written to kv.jsonl before the commit, so
// a failed file write rolls the change back. Other strategies queue the
// write after the commit.
func (b *Backend) commit(tx *sql.Tx, key, operation string) error {
	if !b.immediate() {
		if err := tx.Commit(); err != nil {
			return err
		}
		b.queueWrite(key, operation)
		return nil
	}

	records, err := snapshotRecords(tx)
	if err != nil {
		return fmt.Errorf("snapshot kv: %w", err)
	}
	if err := writeJSONL(b.kvPath(), records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		// kv.jsonl already holds the change; put back what the table holds.
		_ = b.writeSnapshot()
		return err
	}
	return nil
}

// writeSnapshot rewrites kv.jsonl from the kv table.
func (b *Backend) writeSnapshot() error {
	records, err := snapshotRecords(b.db)
	if err != nil {
		return fmt.Errorf("snapshot kv: %w", err)
	}
	return writeJSONL(b.kvPath(), records)
}

func (b *Backend) kvPath() string {
	return filepath.Join(b.config.DataDir, kvFileName)
}

var _ types.Store = (*Backend)(nil)
