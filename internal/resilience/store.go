// Package resilience coordinates API usage across concurrent tcli
// processes. Circuit breaker, rate limiter, and bulkhead state is
// persisted to a shared file guarded by an advisory lock, so every
// invocation sees what the others have learned about the service.
package resilience

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
)

const (
	// StateFileName is the shared state file name.
	StateFileName = "state.json"

	// DefaultDirName is the subdirectory within the cache dir.
	DefaultDirName = "resilience"
)

// LockTimeout bounds how long we wait for the file lock. Past it,
// operations proceed unlocked (fail-open) rather than hang the CLI.
const LockTimeout = 100 * time.Millisecond

// Store reads and writes the shared resilience state.
// All mutations go through an exclusive flock so concurrent
// processes see a consistent read-modify-write cycle.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
// An empty dir selects the default location (~/.cache/tcli/resilience).
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &Store{dir: dir}
}

// defaultStateDir resolves the platform cache directory for shared state.
func defaultStateDir() string {
	// XDG takes priority on Linux/BSD setups that define it.
	if cacheDir := os.Getenv("XDG_CACHE_HOME"); cacheDir != "" {
		return filepath.Join(cacheDir, "tcli", DefaultDirName)
	}

	// os.UserCacheDir handles the rest: ~/Library/Caches on macOS,
	// ~/.cache on Linux, %LocalAppData% on Windows.
	if cacheDir, err := os.UserCacheDir(); err == nil && cacheDir != "" {
		return filepath.Join(cacheDir, "tcli", DefaultDirName)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cache", "tcli", DefaultDirName)
	}

	// Last resort: temp dir beats a relative path.
	return filepath.Join(os.TempDir(), "tcli", DefaultDirName)
}

// Dir returns the state directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path to the state file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, StateFileName)
}

func (s *Store) lockPath() string {
	return filepath.Join(s.dir, ".lock")
}

// withLock runs fn while holding the exclusive file lock.
//
// Fail-open semantics: if the lock cannot be acquired within LockTimeout,
// fn runs anyway. A crashed lock holder or a slow network filesystem must
// not wedge every subsequent tcli command; the primitives tolerate the
// occasional lost update (a few extra requests through the breaker, a
// briefly over-full bulkhead) far better than users tolerate hangs.
func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}

	fl := flock.New(s.lockPath())

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	// TryLockContext polls every 10ms until the context expires.
	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil && ctx.Err() != context.DeadlineExceeded {
		// Real lock failure (permissions, filesystem) - surface it.
		return err
	}
	if locked {
		defer func() { _ = fl.Unlock() }()
	}

	return fn()
}

// Load reads the state from disk, holding the lock during the read.
// A missing or corrupt file yields a fresh state rather than an error.
func (s *Store) Load() (*State, error) {
	var state *State
	err := s.withLock(func() error {
		var err error
		state, err = s.read()
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// read loads the state file without locking.
func (s *Store) read() (*State, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt state is no reason to break the CLI; start over.
		return NewState(), nil
	}

	return &state, nil
}

// Save writes the state to disk atomically, holding the lock.
func (s *Store) Save(state *State) error {
	return s.withLock(func() error {
		return s.write(state)
	})
}

// write persists the state without locking.
func (s *Store) write(state *State) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}

	state.Version = StateVersion

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// The temp name carries PID and timestamp so two processes writing
	// in a fail-open window (no lock held) cannot clobber each other's
	// temp file mid-rename.
	tmpPath := fmt.Sprintf("%s.%d.%d.tmp", s.Path(), os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	// Windows rename refuses to replace an existing file. Removing first
	// opens a brief window where the file is absent and a concurrent
	// reader sees a fresh state; the primitives tolerate that reset.
	if runtime.GOOS == "windows" {
		_ = os.Remove(s.Path())
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return nil
}

// Update atomically loads, mutates, and saves the state. The lock is
// held for the whole read-modify-write cycle, which makes this the only
// safe way to increment counters or reserve slots across processes.
func (s *Store) Update(updateFn func(*State) error) error {
	return s.withLock(func() error {
		state, err := s.read()
		if err != nil {
			return err
		}
		if err := updateFn(state); err != nil {
			return err
		}
		return s.write(state)
	})
}

// Clear removes the state file.
func (s *Store) Clear() error {
	return s.withLock(func() error {
		err := os.Remove(s.Path())
		if os.IsNotExist(err) {
			return nil
		}
		return err
	})
}

// Exists reports whether a state file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}
