// Package completion provides tab completion support for the tcli CLI.
// It keeps a short-lived file cache of todos so shell completions stay
// fast and work offline, without hitting the API on every keystroke.
package completion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CachedTodo holds todo data for tab completion.
type CachedTodo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

// Cache stores completion data with metadata for staleness detection.
type Cache struct {
	Todos     []CachedTodo `json:"todos,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
	Version   int          `json:"version"`
}

const (
	// CacheVersion is the current cache schema version.
	CacheVersion = 1

	// DefaultMaxAge is the default cache staleness threshold.
	DefaultMaxAge = time.Hour

	// CacheFileName is the default cache file name.
	CacheFileName = "completion.json"
)

// Store handles reading and writing the completion cache.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a new cache store. If dir is empty, it uses the
// default location (~/.cache/tcli/).
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultCacheDir()
	}
	return &Store{dir: dir}
}

// defaultCacheDir matches the default from internal/config/config.go.
func defaultCacheDir() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "tcli")
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path to the cache file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, CacheFileName)
}

// Load reads the cache from disk. Returns an empty cache if the file
// doesn't exist or holds invalid JSON.
func (s *Store) Load() (*Cache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &Cache{Version: CacheVersion}, nil
		}
		return nil, err
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		// Corrupted cache degrades to empty rather than erroring.
		return &Cache{Version: CacheVersion}, nil //nolint:nilerr
	}
	return &cache, nil
}

// Save writes the todo list to disk atomically, stamping UpdatedAt.
func (s *Store) Save(todos []CachedTodo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	cache := Cache{
		Todos:     todos,
		UpdatedAt: time.Now(),
		Version:   CacheVersion,
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.Path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.Path())
}

// IsStale reports whether the cache is missing, unstamped, or older
// than maxAge.
func (s *Store) IsStale(maxAge time.Duration) bool {
	cache, err := s.Load()
	if err != nil {
		return true
	}
	if cache.UpdatedAt.IsZero() {
		return true
	}
	return time.Since(cache.UpdatedAt) > maxAge
}

// Clear removes the cache file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Todos returns cached todos, or nil if the cache is empty or missing.
func (s *Store) Todos() []CachedTodo {
	cache, err := s.Load()
	if err != nil {
		return nil
	}
	return cache.Todos
}
