package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

func attach(t *testing.T, dir string, sqlite types.SQLiteConfig) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: dir,
		SQLite:  sqlite,
	}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func readKVFile(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, kvFileName))
	require.NoError(t, err)
	return string(data)
}

func TestBackend_Attach(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	assert.FileExists(t, filepath.Join(dir, dbFileName))
	assert.FileExists(t, filepath.Join(dir, kvFileName))
	assert.Empty(t, readKVFile(t, dir))
	assert.Equal(t, dir, b.DataDir())

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackend_AttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
		SQLite:  types.SQLiteConfig{SyncStrategy: "sometimes"},
	})
	assert.ErrorIs(t, err, types.ErrSyncStrategyUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "second Detach should be a no-op")

	_, _, err := b.Get("entries")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.Set("entries", []byte(`[]`))
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.Delete("entries"), types.ErrStoreDetached)
}

func TestKV_SetGet(t *testing.T) {
	b := attach(t, t.TempDir(), types.SQLiteConfig{})

	_, _, err := b.Get(types.EntriesKey)
	assert.ErrorIs(t, err, types.ErrNotFound)

	v, err := b.Set(types.EntriesKey, []byte(`[{"id":"a"}]`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = b.Set(types.EntriesKey, []byte(`[{"id":"a"},{"id":"b"}]`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	value, version, err := b.Get(types.EntriesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"},{"id":"b"}]`, string(value))
	assert.Equal(t, int64(2), version)
}

func TestKV_InvalidInput(t *testing.T) {
	b := attach(t, t.TempDir(), types.SQLiteConfig{})

	_, err := b.Set("", []byte(`{}`))
	assert.ErrorIs(t, err, types.ErrInvalidKey)

	_, err = b.Set(types.SessionKey, []byte(`not json`))
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	_, _, err = b.Get("")
	assert.ErrorIs(t, err, types.ErrInvalidKey)
}

func TestKV_CompareAndSet(t *testing.T) {
	b := attach(t, t.TempDir(), types.SQLiteConfig{})

	v, err := b.CompareAndSet(types.AccountsKey, []byte(`[]`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = b.CompareAndSet(types.AccountsKey, []byte(`[1]`), 0)
	assert.ErrorIs(t, err, types.ErrConflict, "version 0 requires an absent key")

	v, err = b.CompareAndSet(types.AccountsKey, []byte(`[1]`), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = b.CompareAndSet(types.AccountsKey, []byte(`[2]`), 1)
	assert.ErrorIs(t, err, types.ErrConflict)

	value, _, err := b.Get(types.AccountsKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(value))
}

func TestKV_Delete(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir, types.SQLiteConfig{})

	_, err := b.Set(types.SessionKey, []byte(`{"email":"a@x.io"}`))
	require.NoError(t, err)
	require.NoError(t, b.Delete(types.SessionKey))
	assert.NoError(t, b.Delete(types.SessionKey), "deleting an absent key is a no-op")

	_, _, err = b.Get(types.SessionKey)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NotContains(t, readKVFile(t, dir), types.SessionKey)

	v, err := b.Set(types.SessionKey, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "version restarts after delete")
}

func TestKV_PersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}
	require.NoError(t, b.Attach(config))
	_, err := b.Set(types.EntriesKey, []byte(`[{"text":"calm"}]`))
	require.NoError(t, err)
	_, err = b.Set(types.EntriesKey, []byte(`[{"text":"calm"},{"text":"tired"}]`))
	require.NoError(t, err)
	_, err = b.Set(types.AccountsKey, []byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	content := readKVFile(t, dir)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	assert.Len(t, lines, 2)
	assert.NotContains(t, content, "  ", "records are not pretty-printed")

	b2 := attach(t, dir, types.SQLiteConfig{})
	value, version, err := b2.Get(types.EntriesKey)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.JSONEq(t, `[{"text":"calm"},{"text":"tired"}]`, string(value))
}

// blockKVFile swaps kv.jsonl for a non-empty directory so the next rename
// onto it fails.
func blockKVFile(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, kvFileName)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o755))
}

func TestKV_FailedPersistLeavesNoResidue(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir, types.SQLiteConfig{})

	_, err := b.Set(types.EntriesKey, []byte(`["first"]`))
	require.NoError(t, err)
	_, err = b.Set(types.SessionKey, []byte(`{"email":"a@x.io"}`))
	require.NoError(t, err)

	blockKVFile(t, dir)

	_, err = b.CompareAndSet(types.EntriesKey, []byte(`["first","second"]`), 1)
	require.Error(t, err)
	_, err = b.Set(types.AccountsKey, []byte(`[]`))
	require.Error(t, err)
	require.Error(t, b.Delete(types.SessionKey))

	value, version, err := b.Get(types.EntriesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["first"]`, string(value))
	assert.Equal(t, int64(1), version)

	_, _, err = b.Get(types.AccountsKey)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, _, err = b.Get(types.SessionKey)
	assert.NoError(t, err, "failed delete keeps the key")

	// Once the file is writable again the next write carries only real changes.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, kvFileName)))
	v, err := b.CompareAndSet(types.EntriesKey, []byte(`["first","third"]`), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	content := readKVFile(t, dir)
	assert.Contains(t, content, "third")
	assert.NotContains(t, content, "second")
	assert.NotContains(t, content, `"key":"accounts"`)
}

func TestSyncStrategy_ImmediateDefault(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir, types.SQLiteConfig{})

	_, err := b.Set(types.EntriesKey, []byte(`[]`))
	require.NoError(t, err)
	assert.Contains(t, readKVFile(t, dir), `"key":"entries"`)
	assert.Zero(t, b.pendingCount())
}

func TestSyncStrategy_OnClose_DefersWrites(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: dir,
		SQLite:  types.SQLiteConfig{SyncStrategy: types.SyncOnClose},
	}))

	_, err := b.Set(types.EntriesKey, []byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, b.Delete(types.EntriesKey))
	_, err = b.Set(types.AccountsKey, []byte(`[]`))
	require.NoError(t, err)

	assert.Empty(t, readKVFile(t, dir))
	assert.Equal(t, 3, b.pendingCount())

	require.NoError(t, b.Detach())
	content := readKVFile(t, dir)
	assert.Contains(t, content, `"key":"accounts"`)
	assert.NotContains(t, content, `"key":"entries"`)
}

func TestSyncStrategy_Batch_FlushAtThreshold(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir, types.SQLiteConfig{
		SyncStrategy:  types.SyncBatch,
		BatchSize:     3,
		BatchInterval: time.Hour,
	})

	for i := 0; i < 2; i++ {
		_, err := b.Set(types.EntriesKey, []byte(`[]`))
		require.NoError(t, err)
	}
	assert.Empty(t, readKVFile(t, dir))

	_, err := b.Set(types.EntriesKey, []byte(`[]`))
	require.NoError(t, err)
	assert.Contains(t, readKVFile(t, dir), `"version":3`)
	assert.Zero(t, b.pendingCount())
}

func TestSyncStrategy_Batch_FlushOnInterval(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir, types.SQLiteConfig{
		SyncStrategy:  types.SyncBatch,
		BatchSize:     100,
		BatchInterval: 20 * time.Millisecond,
	})

	_, err := b.Set(types.SessionKey, []byte(`{}`))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, kvFileName))
		return err == nil && strings.Contains(string(data), `"key":"session"`)
	}, 2*time.Second, 10*time.Millisecond)
}
