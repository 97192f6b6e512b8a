package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *EmbeddingCache {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.sqlite")
	c, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHashLength(t *testing.T) {
	assert.Len(t, Hash("some chunk content"), 32)
}

func TestHashStable(t *testing.T) {
	assert.Equal(t, Hash("hello"), Hash("hello"))
	assert.NotEqual(t, Hash("hello"), Hash("world"))
}

func TestSetThenGetRoundTrips(t *testing.T) {
	c := openTestCache(t)
	h := Hash("def foo(): pass")
	vec := []float32{0.1, 0.2, 0.3}

	require.NoError(t, c.Set(h, vec))

	got, err := c.Get(h)
	require.NoError(t, err)
	assert.Equal(t, vec, got)
}

func TestGetMissReturnsNil(t *testing.T) {
	c := openTestCache(t)
	got, err := c.Get(Hash("never set"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPruneZeroDaysEvictsEverything(t *testing.T) {
	c := openTestCache(t)
	h := Hash("transient")
	require.NoError(t, c.Set(h, []float32{1, 2, 3}))

	require.NoError(t, c.Prune(0))

	got, err := c.Get(h)
	require.NoError(t, err)
	assert.Nil(t, got)
}
