package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()

	_, err := s.Load("notified_todos_u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save("notified_todos_u1", []byte(`["a"]`)))
	got, err := s.Load("notified_todos_u1")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(got))

	require.NoError(t, s.Save("notified_todos_u1", []byte(`["a","b"]`)))
	got, err = s.Load("notified_todos_u1")
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(got))

	_, err = s.Load("notified_todos_u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	testStore(t, NewFileStore(dir))

	_, err := os.Stat(filepath.Join(dir, "notified_todos_u1.json"))
	assert.NoError(t, err)
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	require.NoError(t, s.Save("notified_todos_../../etc", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "notified_todos_.._.._etc.json", entries[0].Name())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duewatch.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	testStore(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duewatch.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}
