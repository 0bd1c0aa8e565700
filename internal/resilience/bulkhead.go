package resilience

import (
	"os"
	"time"
)

// Bulkhead bounds the number of tcli processes talking to the API at
// once. Permits are tracked by PID in the shared state; permits held by
// dead processes are swept on every acquire.
type Bulkhead struct {
	config BulkheadConfig
	store  *Store
}

// NewBulkhead creates a bulkhead backed by store.
// Zero config fields get defaults.
func NewBulkhead(store *Store, config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}

	return &Bulkhead{
		config: config,
		store:  store,
	}
}

func (b *Bulkhead) now() time.Time {
	return time.Now()
}

// sweepDead drops permits whose holding process no longer exists.
func (b *Bulkhead) sweepDead(state *BulkheadState) {
	alive := make([]int, 0, len(state.ActivePIDs))

	for _, pid := range state.ActivePIDs {
		if isProcessAlive(pid) {
			alive = append(alive, pid)
		}
	}

	state.ActivePIDs = alive
}

// Acquire tries to take a permit for this process.
// A process already holding a permit keeps it; re-acquire succeeds
// without consuming a second slot.
func (b *Bulkhead) Acquire() (bool, error) {
	var acquired bool

	err := b.store.Update(func(state *State) error {
		bhState := &state.Bulkhead

		b.sweepDead(bhState)

		pid := os.Getpid()
		if bhState.HasPID(pid) {
			acquired = true
			return nil
		}

		if bhState.Count() >= b.config.MaxConcurrent {
			acquired = false
			return nil
		}

		bhState.AddPID(pid)
		state.UpdatedAt = b.now()
		acquired = true
		return nil
	})

	if err != nil {
		// Fail open: a broken state file must not block the CLI.
		return true, nil //nolint:nilerr
	}

	return acquired, nil
}

// Release returns this process's permit.
func (b *Bulkhead) Release() error {
	return b.store.Update(func(state *State) error {
		pid := os.Getpid()
		state.Bulkhead.RemovePID(pid)
		state.UpdatedAt = b.now()
		return nil
	})
}

// Available returns the number of free permits, clamped to
// [0, MaxConcurrent] even if fail-open writes oversubscribed the state.
func (b *Bulkhead) Available() (int, error) {
	state, err := b.store.Load()
	if err != nil {
		return b.config.MaxConcurrent, err
	}

	bhState := state.Bulkhead
	b.sweepDead(&bhState)
	available := b.config.MaxConcurrent - bhState.Count()
	if available < 0 {
		available = 0
	}
	return available, nil
}

// InUse returns the number of permits currently held by live processes.
func (b *Bulkhead) InUse() (int, error) {
	state, err := b.store.Load()
	if err != nil {
		return 0, err
	}

	bhState := state.Bulkhead
	b.sweepDead(&bhState)
	return bhState.Count(), nil
}

// Reset clears all permits.
func (b *Bulkhead) Reset() error {
	return b.store.Update(func(state *State) error {
		state.Bulkhead = BulkheadState{ActivePIDs: []int{}}
		state.UpdatedAt = b.now()
		return nil
	})
}

// ForceCleanup sweeps dead permits without acquiring.
func (b *Bulkhead) ForceCleanup() error {
	return b.store.Update(func(state *State) error {
		b.sweepDead(&state.Bulkhead)
		state.UpdatedAt = b.now()
		return nil
	})
}
