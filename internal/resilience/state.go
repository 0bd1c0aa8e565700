package resilience

import (
	"slices"
	"time"
)

// StateVersion is the current state schema version.
const StateVersion = 1

// State is the persisted resilience state shared across tcli processes.
type State struct {
	// Version is the schema version for future migrations.
	Version int `json:"version"`

	// CircuitBreaker tracks the circuit breaker state.
	CircuitBreaker CircuitBreakerState `json:"circuit_breaker"`

	// RateLimiter tracks the token bucket state.
	RateLimiter RateLimiterState `json:"rate_limiter"`

	// Bulkhead tracks concurrent request limiting.
	Bulkhead BulkheadState `json:"bulkhead"`

	// UpdatedAt is when the state was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// CircuitBreakerState tracks the circuit breaker across processes.
// Closed means requests flow normally, open means they fail fast,
// half-open lets a bounded number of probes through to test recovery.
type CircuitBreakerState struct {
	// State is one of "closed", "open", or "half_open".
	State string `json:"state"`

	// Failures counts consecutive failures in the closed state.
	Failures int `json:"failures"`

	// Successes counts consecutive successes in the half-open state.
	Successes int `json:"successes"`

	// HalfOpenAttempts counts in-flight half-open probes. Reserved
	// atomically on Allow, released on RecordSuccess/RecordFailure, so
	// HalfOpenMaxRequests holds across concurrent processes.
	HalfOpenAttempts int `json:"half_open_attempts,omitempty"`

	// HalfOpenLastAttemptAt is when the last probe slot was reserved.
	// Used to detect slots leaked by crashed processes.
	HalfOpenLastAttemptAt time.Time `json:"half_open_last_attempt_at"`

	// LastFailureAt is when the most recent failure occurred.
	LastFailureAt time.Time `json:"last_failure_at"`

	// OpenedAt is when the circuit transitioned to open.
	OpenedAt time.Time `json:"opened_at"`
}

// Circuit breaker states.
const (
	CircuitClosed   = "closed"
	CircuitOpen     = "open"
	CircuitHalfOpen = "half_open"
)

// IsClosed returns true if the circuit is closed (normal operation).
// An empty state counts as closed.
func (c *CircuitBreakerState) IsClosed() bool {
	return c.State == "" || c.State == CircuitClosed
}

// IsOpen returns true if the circuit is open (failing fast).
func (c *CircuitBreakerState) IsOpen() bool {
	return c.State == CircuitOpen
}

// IsHalfOpen returns true if the circuit is half-open (probing recovery).
func (c *CircuitBreakerState) IsHalfOpen() bool {
	return c.State == CircuitHalfOpen
}

// RateLimiterState tracks the shared token bucket.
type RateLimiterState struct {
	// Tokens is the current number of available tokens.
	Tokens float64 `json:"tokens"`

	// LastRefillAt is when tokens were last refilled.
	LastRefillAt time.Time `json:"last_refill_at"`

	// RetryAfterUntil is set when the server answered 429. No process
	// should send requests until this time passes.
	RetryAfterUntil time.Time `json:"retry_after_until"`
}

// IsBlocked returns true while a Retry-After window is active.
func (r *RateLimiterState) IsBlocked() bool {
	if r.RetryAfterUntil.IsZero() {
		return false
	}
	return time.Now().Before(r.RetryAfterUntil)
}

// BlockedFor returns the remaining Retry-After window, or zero.
func (r *RateLimiterState) BlockedFor() time.Duration {
	if r.RetryAfterUntil.IsZero() {
		return 0
	}
	remaining := time.Until(r.RetryAfterUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// BulkheadState limits concurrent requests across processes.
type BulkheadState struct {
	// ActivePIDs lists the processes currently holding permits.
	// Dead PIDs are swept by bulkhead operations, not on load.
	ActivePIDs []int `json:"active_pids"`
}

// Count returns the number of active permits.
func (b *BulkheadState) Count() int {
	return len(b.ActivePIDs)
}

// HasPID returns true if the given PID holds a permit.
func (b *BulkheadState) HasPID(pid int) bool {
	return slices.Contains(b.ActivePIDs, pid)
}

// AddPID adds a PID to the active list if not already present.
func (b *BulkheadState) AddPID(pid int) {
	if !b.HasPID(pid) {
		b.ActivePIDs = append(b.ActivePIDs, pid)
	}
}

// RemovePID removes a PID from the active list.
func (b *BulkheadState) RemovePID(pid int) {
	for i, p := range b.ActivePIDs {
		if p == pid {
			b.ActivePIDs = append(b.ActivePIDs[:i], b.ActivePIDs[i+1:]...)
			return
		}
	}
}

// NewState returns a fresh State. RateLimiter.LastRefillAt stays zero so
// the first refill initializes Tokens to the configured maximum.
func NewState() *State {
	return &State{
		Version: StateVersion,
		CircuitBreaker: CircuitBreakerState{
			State: CircuitClosed,
		},
		Bulkhead: BulkheadState{
			ActivePIDs: []int{},
		},
		UpdatedAt: time.Now(),
	}
}
