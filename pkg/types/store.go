package types

import "errors"

// Keys used in the device store. Each holds one JSON document.
const (
	AccountsKey = "accounts" // []Account
	SessionKey  = "session"  // Session, absent when signed out
	EntriesKey  = "entries"  // []Entry, ascending creation order
)

// KV is a synchronous, string-keyed store scoped to one device. There are no
// transactions across keys. Every key carries a version that starts at 1 on
// first write and grows by one on each later write.
type KV interface {
	// Get returns the value and version stored under key.
	// Returns ErrNotFound if the key is absent.
	Get(key string) ([]byte, int64, error)

	// Set stores value under key unconditionally and returns the new version.
	Set(key string, value []byte) (int64, error)

	// CompareAndSet stores value only if the key is currently at version.
	// Version 0 means the key must be absent. Returns ErrConflict otherwise.
	CompareAndSet(key string, value []byte, version int64) (int64, error)

	// Delete removes key. Deleting an absent key succeeds.
	Delete(key string) error
}

// Store is a KV with an attach/detach lifecycle. Callers attach to a backend,
// use it, and detach when done.
type Store interface {
	KV

	// Attach connects the Store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach flushes and releases backend resources. Idempotent.
	// After Detach, operations return ErrStoreDetached.
	Detach() error
}

// Store lifecycle and access errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrNotFound        = errors.New("key not found")
	ErrConflict        = errors.New("version conflict")
	ErrInvalidKey      = errors.New("invalid key")
	ErrInvalidValue    = errors.New("value must be valid JSON")
)
