package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"
)

// bump when cacheEntry changes shape
const cacheSchemaVersion uint16 = 1

const (
	cacheEnv    = "EASYRUST_CACHE"
	irDir       = "ir"
	entrySuffix = ".mp"
	lockName    = ".lock"
)

// cacheEntry is the verified IR of one source file.
type cacheEntry struct {
	Schema      uint16
	Name        string
	SourceHash  string
	IR          string
	CreatedUnix int64
}

// IRCache stores verified IR keyed by source and compiler settings. The
// mutex serializes goroutines of this process; the file lock serializes
// processes sharing the directory.
type IRCache struct {
	mu  sync.RWMutex
	dir string
}

// defaultCacheDir returns EASYRUST_CACHE if set, otherwise the per-user
// cache directory of the platform.
func defaultCacheDir() string {
	if env := os.Getenv(cacheEnv); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "easyrust")
		}
		return filepath.Join(homeDir, "AppData", "Local", "easyrust")
	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", "easyrust")
	default:
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "easyrust")
		}
		return filepath.Join(homeDir, ".cache", "easyrust")
	}
}

func openCache(dir string) (*IRCache, error) {
	if err := os.MkdirAll(filepath.Join(dir, irDir), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &IRCache{dir: dir}, nil
}

// sourceHash is the sha256 of the source text alone.
func sourceHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// cacheKey covers everything that changes the generated IR.
func cacheKey(name, target string, source []byte) string {
	h := sha256.New()
	for _, part := range []string{Version, Commit, target, name} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// isKey reports whether name is a full hex sha256 digest.
func isKey(name string) bool {
	if len(name) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

func (c *IRCache) pathFor(key string) string {
	return filepath.Join(c.dir, irDir, key+entrySuffix)
}

func (c *IRCache) fileLock() *flock.Flock {
	return flock.New(filepath.Join(c.dir, lockName))
}

// Get returns the cached IR for key. Entries written by another schema,
// or whose source hash does not match, are misses.
func (c *IRCache) Get(key, srcHash string) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	lock := c.fileLock()
	if err := lock.RLock(); err != nil {
		return "", false, fmt.Errorf("acquire cache lock: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}

	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return "", false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if entry.Schema != cacheSchemaVersion || entry.SourceHash != srcHash {
		return "", false, nil
	}
	return entry.IR, true, nil
}

// Put writes the entry through a temporary file and renames it in place,
// so readers see either the old entry or the new one.
func (c *IRCache) Put(key, name, srcHash, ir string) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	lock := c.fileLock()
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer lock.Unlock()

	data, err := msgpack.Marshal(&cacheEntry{
		Schema:      cacheSchemaVersion,
		Name:        name,
		SourceHash:  srcHash,
		IR:          ir,
		CreatedUnix: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	p := c.pathFor(key)
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Prune removes old entries. Only entries older than minAge are deleted,
// and the keep most recent always survive.
func (c *IRCache) Prune(keep int, minAge time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock := c.fileLock()
	if err := lock.Lock(); err != nil {
		return 0, fmt.Errorf("acquire cache lock: %w", err)
	}
	defer lock.Unlock()

	entries, err := os.ReadDir(filepath.Join(c.dir, irDir))
	if err != nil || len(entries) <= keep {
		return 0, err
	}

	type fileInfo struct {
		name  string
		mtime time.Time
	}
	var files []fileInfo
	for _, e := range entries {
		key := strings.TrimSuffix(e.Name(), entrySuffix)
		if e.IsDir() || key == e.Name() || !isKey(key) {
			continue
		}
		if info, err := e.Info(); err == nil {
			files = append(files, fileInfo{e.Name(), info.ModTime()})
		}
	}
	if len(files) <= keep {
		return 0, nil
	}

	// oldest first
	cutoff := time.Now().Add(-minAge)
	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })
	removed := 0
	for _, f := range files[:len(files)-keep] {
		if !f.mtime.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, irDir, f.name)); err != nil {
			return removed, fmt.Errorf("remove cache entry %s: %w", f.name, err)
		}
		removed++
	}
	return removed, nil
}

// Clean removes every cached entry.
func (c *IRCache) Clean() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock := c.fileLock()
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer lock.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, irDir)); err != nil {
		return fmt.Errorf("remove cache: %w", err)
	}
	return os.MkdirAll(filepath.Join(c.dir, irDir), 0755)
}
