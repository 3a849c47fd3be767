package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// loadJSONL reads kv.jsonl into the kv table inside one transaction.
// Malformed lines and records missing required fields are skipped. Unknown
// fields are ignored. When a key appears more than once the highest version
// wins.
func loadJSONL(db *sql.DB, dataDir string) error {
	records, err := readJSONL(filepath.Join(dataDir, kvFileName))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = excluded.version, updated_at = excluded.updated_at
WHERE excluded.version > kv.version`)
	if err != nil {
		return fmt.Errorf("preparing kv insert: %w", err)
	}
	defer stmt.Close()

	for _, raw := range records {
		var rec kvRecordJSON
		if err := json.Unmarshal(raw, &rec); err != nil || !rec.valid() {
			continue
		}
		if _, err := stmt.Exec(rec.Key, string(rec.Value), rec.Version, rec.UpdatedAt); err != nil {
			return fmt.Errorf("loading key %q: %w", rec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// snapshotRecords dumps the kv table in key order as JSONL records.
func snapshotRecords(q interface {
	Query(query string, args ...any) (*sql.Rows, error)
}) ([]json.RawMessage, error) {
	rows, err := q.Query(`SELECT key, value, version, updated_at FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var (
			rec   kvRecordJSON
			value string
		)
		if err := rows.Scan(&rec.Key, &value, &rec.Version, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Value = json.RawMessage(value)
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", rec.Key, err)
		}
		records = append(records, line)
	}
	return records, rows.Err()
}
