package sqlite

import "encoding/json"

// kvRecordJSON is one line of kv.jsonl. Value holds the stored document
// verbatim so the file stays readable and diffable.
type kvRecordJSON struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Version   int64           `json:"version"`
	UpdatedAt string          `json:"updated_at"`
}

// valid reports whether a decoded record can be loaded.
func (r kvRecordJSON) valid() bool {
	return r.Key != "" && r.Version > 0 && len(r.Value) > 0 && json.Valid(r.Value)
}
