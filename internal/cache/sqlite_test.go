package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCache_SetGet(t *testing.T) {
	c := newTestCache(t)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	require.NoError(t, c.Set("https://example.test/a.csv", []byte("Name,genre\n"), time.Hour))
	data, ok := c.Get("https://example.test/a.csv")
	require.True(t, ok)
	assert.Equal(t, "Name,genre\n", string(data))

	// Replacing a key keeps a single entry.
	require.NoError(t, c.Set("https://example.test/a.csv", []byte("v2"), time.Hour))
	data, ok = c.Get("https://example.test/a.csv")
	require.True(t, ok)
	assert.Equal(t, "v2", string(data))
}

func TestSQLiteCache_Expiry(t *testing.T) {
	c := newTestCache(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))
	_, ok := c.Get("k")
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok = c.Get("k")
	assert.False(t, ok, "expired entry must not be returned")

	// Expired entries are deleted on read.
	c.now = func() time.Time { return base }
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestSQLiteCache_SetRenewsExpiry(t *testing.T) {
	c := newTestCache(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	require.NoError(t, c.Set("k", []byte("old"), time.Minute))
	require.NoError(t, c.Set("k", []byte("new"), time.Hour))

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	data, ok := c.Get("k")
	require.True(t, ok, "replacement carries its own expiry")
	assert.Equal(t, "new", string(data))
}

func TestSQLiteCache_Clear(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Set("a", []byte("1"), time.Hour))
	require.NoError(t, c.Set("b", []byte("2"), time.Hour))

	require.NoError(t, c.Clear())

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}
