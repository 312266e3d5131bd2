package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	entry, err := s.Get("main.go", "abc")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPutAndGet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("main.go", "abc", []byte(`[{"name":"main"}]`), []byte(`{"has_decision_point":true}`)))

	entry, err := s.Get("main.go", "abc")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "main.go", entry.Path)
	assert.Equal(t, "abc", entry.Hash)
	assert.JSONEq(t, `[{"name":"main"}]`, string(entry.Symbols))
	assert.False(t, entry.CachedAt.IsZero())
}

func TestStaleHashIsMiss(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("main.go", "abc", []byte(`[]`), []byte(`{}`)))

	entry, err := s.Get("main.go", "def")
	require.NoError(t, err)
	assert.Nil(t, entry, "hash mismatch must be a cache miss")
}

func TestPutReplacesExisting(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("main.go", "abc", []byte(`[]`), []byte(`{}`)))
	require.NoError(t, s.Put("main.go", "def", []byte(`[1]`), []byte(`{}`)))

	entry, err := s.Get("main.go", "def")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "def", entry.Hash)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("main.go", "abc", []byte(`[]`), []byte(`{}`)))
	require.NoError(t, s.Delete("main.go"))

	entry, err := s.Get("main.go", "abc")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPurgeKeepsRecentEntries(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("main.go", "abc", []byte(`[]`), []byte(`{}`)))

	removed, err := s.Purge(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	entry, err := s.Get("main.go", "abc")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}
