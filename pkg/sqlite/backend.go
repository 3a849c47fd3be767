// Package sqlite exposes the on-device SQLite store to callers outside this
// module while keeping its implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/moodlog/internal/sqlite"
	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// NewBackend creates a detached SQLite store.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: dataDir,
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}

// Open creates a store and attaches it with config.
func Open(config types.Config) (types.Store, error) {
	store := sqlite.NewBackend()
	if err := store.Attach(config); err != nil {
		return nil, err
	}
	return store, nil
}
