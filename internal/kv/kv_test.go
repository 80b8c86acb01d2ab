package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "donors")
	require.NoError(t, err)
	assert.False(t, ok, "missing key must report absent")

	require.NoError(t, s.Set(ctx, "donors", `[]`))
	require.NoError(t, s.Set(ctx, "donors", `[{"id":"1"}]`))
	v, ok, err := s.Get(ctx, "donors")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.Set(ctx, "adminSecurity:2001:db8::1", `{"failed":1}`))
	v, ok, err = s.Get(ctx, "adminSecurity:2001:db8::1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"failed":1}`, v)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	exerciseStore(t, m)

	require.NoError(t, m.Close())
	_, _, err := m.Get(context.Background(), "donors")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	exerciseStore(t, s)

	reopened, err := NewFile(dir)
	require.NoError(t, err)
	v, ok, err := reopened.Get(context.Background(), "donors")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)
}

func TestFileStoreKeysStayInsideRoot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "../escape", "x"))
	path, err := s.path("../escape")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	_, err = s.path("..")
	assert.Error(t, err)
	_, err = s.path("  ")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	exerciseStore(t, s)
}
