package resilience

import (
	"time"
)

// CircuitBreaker implements the circuit breaker pattern with cross-process
// persistence. All instances sharing a Store see the same circuit.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	store  *Store
}

// NewCircuitBreaker creates a circuit breaker backed by store.
// Zero config fields get defaults.
func NewCircuitBreaker(store *Store, config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}
	if config.StaleAttemptTimeout <= 0 {
		config.StaleAttemptTimeout = 4 * config.OpenTimeout
	}

	return &CircuitBreaker{
		config: config,
		store:  store,
	}
}

func (cb *CircuitBreaker) now() time.Time {
	return time.Now()
}

// Allow checks if a request should be allowed.
// In half-open state it atomically reserves a probe slot, so at most
// HalfOpenMaxRequests probes run across all processes. Every reserved
// slot must be returned via RecordSuccess or RecordFailure.
//
// The closed state is checked read-only; only open/half-open transitions
// write to disk.
func (cb *CircuitBreaker) Allow() (bool, error) {
	state, err := cb.store.Load()
	if err != nil {
		// Fail open rather than block the CLI on state trouble.
		return true, nil
	}

	cbState := &state.CircuitBreaker
	now := cb.now()

	// Fast path: closed circuit, nothing to persist.
	if cbState.IsClosed() {
		return true, nil
	}

	if cbState.IsOpen() {
		if now.Sub(cbState.OpenedAt) < cb.config.OpenTimeout {
			return false, nil
		}
		// Timeout expired: transition to half-open and reserve a probe slot.
		var allowed bool
		err := cb.store.Update(func(s *State) error {
			// Re-check under the lock; another process may have moved first.
			switch {
			case s.CircuitBreaker.IsOpen() && now.Sub(s.CircuitBreaker.OpenedAt) >= cb.config.OpenTimeout:
				s.CircuitBreaker.State = CircuitHalfOpen
				s.CircuitBreaker.Successes = 0
				s.CircuitBreaker.Failures = 0
				s.CircuitBreaker.HalfOpenAttempts = 1
				s.CircuitBreaker.HalfOpenLastAttemptAt = now
				s.UpdatedAt = now
				allowed = true
			case s.CircuitBreaker.IsHalfOpen():
				allowed = cb.reserveProbeSlot(s, now)
			case s.CircuitBreaker.IsClosed():
				allowed = true
			default:
				allowed = false
			}
			return nil
		})
		if err != nil {
			return true, nil // fail open
		}
		return allowed, nil
	}

	if cbState.IsHalfOpen() {
		if cb.config.HalfOpenMaxRequests <= 0 {
			return true, nil
		}

		var allowed bool
		err := cb.store.Update(func(s *State) error {
			if !s.CircuitBreaker.IsHalfOpen() {
				// State moved under us; closed allows, open rejects.
				allowed = s.CircuitBreaker.IsClosed()
				return nil
			}
			allowed = cb.reserveProbeSlot(s, now)
			return nil
		})
		if err != nil {
			return true, nil // fail open
		}
		return allowed, nil
	}

	return true, nil
}

// reserveProbeSlot tries to take a half-open probe slot, sweeping slots
// leaked by crashed processes first. Caller must hold the store lock
// (i.e. run inside Update).
func (cb *CircuitBreaker) reserveProbeSlot(s *State, now time.Time) bool {
	if cb.staleAttempts(s, now) {
		s.CircuitBreaker.HalfOpenAttempts = 0
		s.UpdatedAt = now
	}
	if cb.config.HalfOpenMaxRequests > 0 && s.CircuitBreaker.HalfOpenAttempts >= cb.config.HalfOpenMaxRequests {
		return false
	}
	s.CircuitBreaker.HalfOpenAttempts++
	s.CircuitBreaker.HalfOpenLastAttemptAt = now
	s.UpdatedAt = now
	return true
}

// staleAttempts reports whether the half-open probe slots look leaked.
// A process that crashes between Allow and RecordSuccess/RecordFailure
// never returns its slot; once the slots sit maxed out with no fresh
// reservation for StaleAttemptTimeout, we assume they are dead.
//
// HalfOpenLastAttemptAt is used rather than State.UpdatedAt because the
// rate limiter and bulkhead also touch UpdatedAt, which would mask
// staleness whenever they run first.
func (cb *CircuitBreaker) staleAttempts(s *State, now time.Time) bool {
	if !s.CircuitBreaker.IsHalfOpen() {
		return false
	}
	if s.CircuitBreaker.HalfOpenAttempts < cb.config.HalfOpenMaxRequests {
		return false
	}
	lastAttempt := s.CircuitBreaker.HalfOpenLastAttemptAt
	if lastAttempt.IsZero() {
		// State written before this field existed.
		return false
	}
	return now.Sub(lastAttempt) >= cb.config.StaleAttemptTimeout
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() error {
	return cb.store.Update(func(state *State) error {
		cbState := &state.CircuitBreaker
		now := cb.now()

		switch {
		case cbState.IsHalfOpen():
			// Return the reserved probe slot.
			if cbState.HalfOpenAttempts > 0 {
				cbState.HalfOpenAttempts--
			}
			cbState.Successes++
			if cbState.Successes >= cb.config.SuccessThreshold {
				cbState.State = CircuitClosed
				cbState.Failures = 0
				cbState.Successes = 0
				cbState.HalfOpenAttempts = 0
				cbState.HalfOpenLastAttemptAt = time.Time{}
			}
		case cbState.IsClosed():
			cbState.Failures = 0
		}

		state.UpdatedAt = now
		return nil
	})
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() error {
	return cb.store.Update(func(state *State) error {
		cbState := &state.CircuitBreaker
		now := cb.now()

		cbState.LastFailureAt = now

		switch {
		case cbState.IsClosed():
			cbState.Failures++
			if cbState.Failures >= cb.config.FailureThreshold {
				cbState.State = CircuitOpen
				cbState.OpenedAt = now
			}

		case cbState.IsHalfOpen():
			// Any failed probe reopens the circuit.
			if cbState.HalfOpenAttempts > 0 {
				cbState.HalfOpenAttempts--
			}
			cbState.State = CircuitOpen
			cbState.OpenedAt = now
			cbState.Successes = 0
			cbState.HalfOpenAttempts = 0
			cbState.HalfOpenLastAttemptAt = time.Time{}
		}

		state.UpdatedAt = now
		return nil
	})
}

// State returns the current circuit state, accounting for an open
// circuit whose timeout has already expired.
func (cb *CircuitBreaker) State() (string, error) {
	state, err := cb.store.Load()
	if err != nil {
		return CircuitClosed, err
	}

	cbState := &state.CircuitBreaker

	if cbState.IsOpen() {
		if cb.now().Sub(cbState.OpenedAt) >= cb.config.OpenTimeout {
			return CircuitHalfOpen, nil
		}
	}

	if cbState.State == "" {
		return CircuitClosed, nil
	}
	return cbState.State, nil
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() error {
	return cb.store.Update(func(state *State) error {
		state.CircuitBreaker = CircuitBreakerState{State: CircuitClosed}
		state.UpdatedAt = cb.now()
		return nil
	})
}
