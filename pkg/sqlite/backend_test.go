package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(types.Config{Backend: types.BackendSQLite, DataDir: dir})
	require.NoError(t, err)

	_, err = store.Set(types.EntriesKey, []byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, store.Detach())

	reopened, err := Open(types.Config{Backend: types.BackendSQLite, DataDir: dir})
	require.NoError(t, err)
	defer reopened.Detach()

	_, version, err := reopened.Get(types.EntriesKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(types.Config{DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}
