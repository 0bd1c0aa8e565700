package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/tapi/tcli/internal/output"
)

// Sentinel errors returned by Gate.Allow when a request is rejected
// before it ever reaches the network.
var (
	// ErrRateLimited means the shared token bucket is empty or a
	// server Retry-After window is still active.
	ErrRateLimited = errors.New("rate limited")

	// ErrCircuitOpen means the circuit breaker is rejecting requests
	// after repeated failures.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrBulkheadFull means too many tcli processes are already
	// talking to the API.
	ErrBulkheadFull = errors.New("bulkhead full")
)

// Gate runs every API request through the resilience primitives.
// The HTTP client calls Allow before sending and the returned done
// function with the final mapped error afterwards.
type Gate struct {
	circuitBreaker *CircuitBreaker
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
}

// NewGate creates a gate over the given primitives. Nil primitives are
// skipped, which tests use to exercise one pattern at a time.
func NewGate(cb *CircuitBreaker, rl *RateLimiter, bh *Bulkhead) *Gate {
	return &Gate{
		circuitBreaker: cb,
		rateLimiter:    rl,
		bulkhead:       bh,
	}
}

// NewGateFromConfig creates a gate with all three primitives sharing store.
func NewGateFromConfig(store *Store, cfg *Config) *Gate {
	cb := NewCircuitBreaker(store, cfg.CircuitBreaker)
	rl := NewRateLimiter(store, cfg.RateLimiter)
	bh := NewBulkhead(store, cfg.Bulkhead)
	return NewGate(cb, rl, bh)
}

// Allow checks whether a request may proceed. On success it returns a
// done function that must be called exactly once with the request's
// final error; done releases the bulkhead permit and feeds the outcome
// to the circuit breaker. On rejection done is nil and the error is one
// of the sentinels above.
//
// Check order matters: rate limiter and bulkhead run BEFORE the circuit
// breaker because the breaker reserves a half-open probe slot
// atomically. Checked the other way round, a rate limiter rejection
// after a reserved slot would leak the slot and wedge the half-open
// state until the stale sweep. The cost is that a rejected request may
// have consumed a token; for a CLI that waste is harmless.
func (g *Gate) Allow() (func(error), error) {
	if g.rateLimiter != nil {
		allowed, _ := g.rateLimiter.Allow() // fail open on error
		if !allowed {
			return nil, ErrRateLimited
		}
	}

	acquired := false
	if g.bulkhead != nil {
		acquired, _ = g.bulkhead.Acquire() // fail open on error
		if !acquired {
			return nil, ErrBulkheadFull
		}
	}

	// Circuit breaker last: once a probe slot is reserved, the request
	// is guaranteed to run (everything else already passed).
	if g.circuitBreaker != nil {
		allowed, _ := g.circuitBreaker.Allow() // fail open on error
		if !allowed {
			if acquired {
				_ = g.bulkhead.Release()
			}
			return nil, ErrCircuitOpen
		}
	}

	return func(opErr error) { g.finish(acquired, opErr) }, nil
}

// finish releases the bulkhead permit and records the outcome.
func (g *Gate) finish(acquired bool, opErr error) {
	if acquired && g.bulkhead != nil {
		_ = g.bulkhead.Release()
	}

	if g.circuitBreaker != nil {
		if opErr != nil {
			if isTrippingError(opErr) {
				_ = g.circuitBreaker.RecordFailure()
			}
		} else {
			_ = g.circuitBreaker.RecordSuccess()
		}
	}

	// A rate limit error blocks every process, not just this one.
	if g.rateLimiter != nil && opErr != nil {
		var e *output.Error
		if errors.As(opErr, &e) && e.Code == output.CodeRateLimit {
			retryAfter := 60 * time.Second
			if e.RetryAfter > 0 {
				retryAfter = time.Duration(e.RetryAfter) * time.Second
			}
			_ = g.rateLimiter.SetRetryAfterDuration(retryAfter)
		}
	}
}

// RetryAfter records a server-requested backoff so other tcli processes
// back off too. Called by the HTTP client when a 429 arrives mid-retry,
// before the final error is known.
func (g *Gate) RetryAfter(d time.Duration) {
	if g.rateLimiter == nil || d <= 0 {
		return
	}
	_ = g.rateLimiter.SetRetryAfterDuration(d)
}

// isTrippingError reports whether an error should count against the
// circuit breaker. Server errors and network failures trip it; client
// mistakes (bad input, missing resources, auth) and local cancellation
// do not, and neither does rate limiting, which is the server behaving
// as designed.
func isTrippingError(err error) bool {
	if err == nil {
		return false
	}

	var e *output.Error
	if !errors.As(err, &e) {
		// Unmapped errors are failures, except the user hitting Ctrl-C.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		return true
	}

	switch e.Code {
	case output.CodeNetwork:
		return true
	case output.CodeAPI:
		return e.HTTPStatus >= 500
	default:
		return false
	}
}
