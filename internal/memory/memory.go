// Package memory provides an in-process types.Store with no persistence.
// It backs the "memory" backend and the unit tests of the packages above the
// store.
package memory

import (
	"encoding/json"
	"sync"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

type record struct {
	value   []byte
	version int64
}

// Store is a map guarded by a RWMutex. Values are copied on the way in and
// on the way out so callers cannot alias stored bytes.
type Store struct {
	mu       sync.RWMutex
	attached bool
	data     map[string]record
}

var _ types.Store = (*Store)(nil)

// NewStore returns an attached, empty store.
func NewStore() *Store {
	return &Store{attached: true, data: make(map[string]record)}
}

// Attach reopens a detached store. Contents survive Detach.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	s.attached = true
	return nil
}

// Detach is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = false
	return nil
}

func (s *Store) Get(key string) ([]byte, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, 0, types.ErrStoreDetached
	}
	if key == "" {
		return nil, 0, types.ErrInvalidKey
	}
	rec, ok := s.data[key]
	if !ok {
		return nil, 0, types.ErrNotFound
	}
	return append([]byte(nil), rec.value...), rec.version, nil
}

func (s *Store) Set(key string, value []byte) (int64, error) {
	return s.write(key, value, -1)
}

func (s *Store) CompareAndSet(key string, value []byte, version int64) (int64, error) {
	if version < 0 {
		return 0, types.ErrConflict
	}
	return s.write(key, value, version)
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	if key == "" {
		return types.ErrInvalidKey
	}
	delete(s.data, key)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) write(key string, value []byte, expected int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return 0, types.ErrStoreDetached
	}
	if key == "" {
		return 0, types.ErrInvalidKey
	}
	if !json.Valid(value) {
		return 0, types.ErrInvalidValue
	}

	current := s.data[key].version
	if expected >= 0 && current != expected {
		return 0, types.ErrConflict
	}
	next := current + 1
	s.data[key] = record{value: append([]byte(nil), value...), version: next}
	return next, nil
}
