package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestCache(t *testing.T) *IRCache {
	t.Helper()
	cache, err := openCache(t.TempDir())
	require.NoError(t, err)
	return cache
}

func TestDefaultCacheDirEnv(t *testing.T) {
	t.Setenv(cacheEnv, "/var/cache/er")
	assert.Equal(t, "/var/cache/er", defaultCacheDir())
}

func TestCacheKey(t *testing.T) {
	src := []byte("print(1);")
	key := cacheKey("a.er", "", src)
	assert.True(t, isKey(key))
	assert.Equal(t, key, cacheKey("a.er", "", src))

	assert.NotEqual(t, key, cacheKey("b.er", "", src))
	assert.NotEqual(t, key, cacheKey("a.er", "x86_64-pc-linux-gnu", src))
	assert.NotEqual(t, key, cacheKey("a.er", "", []byte("print(2);")))

	assert.False(t, isKey("abc"))
	assert.False(t, isKey(key[:len(key)-1]+"z"))
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	src := []byte("print(1);")
	key := cacheKey("a.er", "", src)
	hash := sourceHash(src)

	_, ok, err := cache.Get(key, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(key, "a", hash, "; ModuleID = 'a'\n"))
	ir, ok, err := cache.Get(key, hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "; ModuleID = 'a'\n", ir)

	_, ok, err = cache.Get(key, sourceHash([]byte("other")))
	require.NoError(t, err)
	assert.False(t, ok, "source hash mismatch is a miss")

	tmps, err := filepath.Glob(filepath.Join(cache.dir, irDir, "tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, tmps)
}

func TestCacheSchemaMismatch(t *testing.T) {
	cache := newTestCache(t)
	key := cacheKey("a.er", "", nil)
	data, err := msgpack.Marshal(&cacheEntry{Schema: cacheSchemaVersion + 1, SourceHash: "h", IR: "old"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cache.pathFor(key), data, 0644))

	_, ok, err := cache.Get(key, "h")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(cache.pathFor(key), []byte{0xc1}, 0644))
	_, _, err = cache.Get(key, "h")
	assert.Error(t, err)
}

func TestNilCache(t *testing.T) {
	var cache *IRCache
	_, ok, err := cache.Get("k", "h")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, cache.Put("k", "n", "h", "ir"))
}

func TestCachePrune(t *testing.T) {
	cache := newTestCache(t)
	old := time.Now().Add(-30 * 24 * time.Hour)

	var keys []string
	for i := range 4 {
		key := cacheKey("f.er", "", []byte{byte(i)})
		require.NoError(t, cache.Put(key, "f", "h", "ir"))
		keys = append(keys, key)
	}
	// two stale entries, two fresh ones
	for i, key := range keys[:2] {
		mtime := old.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(cache.pathFor(key), mtime, mtime))
	}
	stray := filepath.Join(cache.dir, irDir, "notes.txt")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0644))

	removed, err := cache.Prune(3, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "keep wins over age")
	assert.NoFileExists(t, cache.pathFor(keys[0]))
	assert.FileExists(t, cache.pathFor(keys[1]))
	assert.FileExists(t, stray)

	removed, err = cache.Prune(1, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "fresh entries are never pruned")
	assert.NoFileExists(t, cache.pathFor(keys[1]))
	assert.FileExists(t, cache.pathFor(keys[2]))
	assert.FileExists(t, cache.pathFor(keys[3]))
}

func TestCacheClean(t *testing.T) {
	cache := newTestCache(t)
	key := cacheKey("a.er", "", nil)
	require.NoError(t, cache.Put(key, "a", "h", "ir"))

	require.NoError(t, cache.Clean())
	assert.NoFileExists(t, cache.pathFor(key))
	assert.DirExists(t, filepath.Join(cache.dir, irDir))
}
