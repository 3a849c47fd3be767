package sqlite

// dbFileName is the SQLite cache file inside the data directory. It is
// recreated on every Attach.
const dbFileName = "moodlog.db"

// kvFileName is the JSONL source of truth inside the data directory.
const kvFileName = "kv.jsonl"

const (
	createKV = `CREATE TABLE kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    version INTEGER NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxKVUpdatedAt = `CREATE INDEX idx_kv_updated_at ON kv(updated_at);`
)

// schemaDDL runs in order on a fresh database.
var schemaDDL = []string{
	createKV,
	idxKVUpdatedAt,
}
