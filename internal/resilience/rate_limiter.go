package resilience

import (
	"time"
)

// RateLimiter implements a token bucket shared across processes.
// It also honors server-imposed Retry-After windows: once any tcli
// process sees a 429, every process backs off until the window ends.
type RateLimiter struct {
	config RateLimiterConfig
	store  *Store
}

// NewRateLimiter creates a rate limiter backed by store.
// Zero config fields get defaults.
func NewRateLimiter(store *Store, config RateLimiterConfig) *RateLimiter {
	if config.MaxTokens <= 0 {
		config.MaxTokens = 50
	}
	if config.RefillRate <= 0 {
		config.RefillRate = 10
	}
	if config.TokensPerRequest <= 0 {
		config.TokensPerRequest = 1
	}

	return &RateLimiter{
		config: config,
		store:  store,
	}
}

func (rl *RateLimiter) now() time.Time {
	return time.Now()
}

// refill credits tokens for the time elapsed since the last refill.
// Takes now as a parameter so one Update transaction uses one timestamp.
func (rl *RateLimiter) refill(state *RateLimiterState, now time.Time) {
	// First access: start with a full bucket.
	if state.LastRefillAt.IsZero() {
		state.Tokens = rl.config.MaxTokens
		state.LastRefillAt = now
		return
	}

	elapsed := now.Sub(state.LastRefillAt)
	state.LastRefillAt = now

	state.Tokens += elapsed.Seconds() * rl.config.RefillRate
	if state.Tokens > rl.config.MaxTokens {
		state.Tokens = rl.config.MaxTokens
	}
}

// Allow reports whether a request may proceed, consuming tokens if so.
// A request inside a Retry-After window is rejected outright.
func (rl *RateLimiter) Allow() (bool, error) {
	var allowed bool

	err := rl.store.Update(func(state *State) error {
		rlState := &state.RateLimiter
		now := rl.now()

		if rlState.IsBlocked() {
			allowed = false
			return nil
		}

		rl.refill(rlState, now)

		if rlState.Tokens >= rl.config.TokensPerRequest {
			rlState.Tokens -= rl.config.TokensPerRequest
			allowed = true
		} else {
			allowed = false
		}

		state.UpdatedAt = now
		return nil
	})

	if err != nil {
		// Fail open: a broken state file must not block the CLI.
		return true, nil //nolint:nilerr
	}

	return allowed, nil
}

// SetRetryAfter blocks all processes until the given time.
// An earlier time than the current block is ignored.
func (rl *RateLimiter) SetRetryAfter(until time.Time) error {
	return rl.store.Update(func(state *State) error {
		if until.After(state.RateLimiter.RetryAfterUntil) {
			state.RateLimiter.RetryAfterUntil = until
			state.UpdatedAt = rl.now()
		}
		return nil
	})
}

// SetRetryAfterDuration blocks all processes for the given duration.
func (rl *RateLimiter) SetRetryAfterDuration(d time.Duration) error {
	return rl.SetRetryAfter(rl.now().Add(d))
}

// Tokens returns the current number of available tokens, persisting any
// initialization or refill this entails.
func (rl *RateLimiter) Tokens() (float64, error) {
	var tokens float64

	err := rl.store.Update(func(state *State) error {
		now := rl.now()

		prevTokens := state.RateLimiter.Tokens
		prevLastRefillAt := state.RateLimiter.LastRefillAt

		rl.refill(&state.RateLimiter, now)
		tokens = state.RateLimiter.Tokens

		if state.RateLimiter.Tokens != prevTokens ||
			!state.RateLimiter.LastRefillAt.Equal(prevLastRefillAt) {
			state.UpdatedAt = now
		}
		return nil
	})

	if err != nil {
		return 0, err
	}

	return tokens, nil
}

// RetryAfterRemaining returns the remaining Retry-After window, or zero.
func (rl *RateLimiter) RetryAfterRemaining() (time.Duration, error) {
	state, err := rl.store.Load()
	if err != nil {
		return 0, err
	}

	return state.RateLimiter.BlockedFor(), nil
}

// Reset restores a full bucket and clears any Retry-After block.
func (rl *RateLimiter) Reset() error {
	return rl.store.Update(func(state *State) error {
		state.RateLimiter = RateLimiterState{
			Tokens:       rl.config.MaxTokens,
			LastRefillAt: rl.now(),
		}
		state.UpdatedAt = rl.now()
		return nil
	})
}
