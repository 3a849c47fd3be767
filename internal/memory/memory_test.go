package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

func TestStore_Versions(t *testing.T) {
	s := NewStore()

	v, err := s.CompareAndSet(types.EntriesKey, []byte(`[]`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = s.CompareAndSet(types.EntriesKey, []byte(`[1]`), 0)
	assert.ErrorIs(t, err, types.ErrConflict)

	v, err = s.Set(types.EntriesKey, []byte(`[1]`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	value, version, err := s.Get(types.EntriesKey)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Equal(t, `[1]`, string(value))
}

func TestStore_CopiesValues(t *testing.T) {
	s := NewStore()
	in := []byte(`{"a":1}`)
	_, err := s.Set(types.SessionKey, in)
	require.NoError(t, err)
	in[2] = 'b'

	out, _, err := s.Get(types.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out))
	out[2] = 'c'

	again, _, _ := s.Get(types.SessionKey)
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestStore_DeleteAndErrors(t *testing.T) {
	s := NewStore()
	_, err := s.Set(types.SessionKey, []byte(`{}`))
	require.NoError(t, err)

	require.NoError(t, s.Delete(types.SessionKey))
	require.NoError(t, s.Delete(types.SessionKey))
	_, _, err = s.Get(types.SessionKey)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Zero(t, s.Len())

	_, err = s.Set("", []byte(`{}`))
	assert.ErrorIs(t, err, types.ErrInvalidKey)
	_, err = s.Set("k", []byte(`{`))
	assert.ErrorIs(t, err, types.ErrInvalidValue)
}

func TestStore_Lifecycle(t *testing.T) {
	s := NewStore()
	_, err := s.Set(types.AccountsKey, []byte(`[]`))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Attach(types.Config{Backend: types.BackendMemory}), types.ErrAlreadyAttached)
	require.NoError(t, s.Detach())
	_, _, err = s.Get(types.AccountsKey)
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	require.NoError(t, s.Attach(types.Config{Backend: types.BackendMemory}))
	_, _, err = s.Get(types.AccountsKey)
	assert.NoError(t, err)
}
