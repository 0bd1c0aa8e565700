package resilience

import (
	"time"
)

// Config holds configuration for all resilience primitives.
type Config struct {
	// CircuitBreaker configures the circuit breaker pattern.
	CircuitBreaker CircuitBreakerConfig

	// RateLimiter configures the token bucket rate limiter.
	RateLimiter RateLimiterConfig

	// Bulkhead configures concurrent request limiting.
	Bulkhead BulkheadConfig
}

// CircuitBreakerConfig configures the circuit breaker pattern.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes in half-open
	// state before closing the circuit.
	// Default: 2
	SuccessThreshold int

	// OpenTimeout is how long to wait before transitioning from open to half-open.
	// Default: 30 seconds
	OpenTimeout time.Duration

	// HalfOpenMaxRequests is the max concurrent probes allowed in half-open state.
	// Default: 1
	HalfOpenMaxRequests int

	// StaleAttemptTimeout is how long a reserved half-open probe slot may sit
	// idle before it is presumed leaked by a crashed process and reclaimed.
	// Must comfortably exceed the slowest legitimate request.
	// Default: 2 minutes
	StaleAttemptTimeout time.Duration
}

// RateLimiterConfig configures the token bucket rate limiter.
type RateLimiterConfig struct {
	// MaxTokens is the maximum number of tokens in the bucket.
	// Default: 50
	MaxTokens float64

	// RefillRate is how many tokens are added per second.
	// Default: 10
	RefillRate float64

	// TokensPerRequest is how many tokens each request consumes.
	// Default: 1
	TokensPerRequest float64
}

// BulkheadConfig configures the bulkhead pattern for concurrent request limiting.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of concurrent requests across
	// all tcli processes.
	// Default: 10
	MaxConcurrent int
}

// DefaultConfig returns a Config with sensible defaults for the todo API.
func DefaultConfig() *Config {
	return &Config{
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold:    5,
			SuccessThreshold:    2,
			OpenTimeout:         30 * time.Second,
			HalfOpenMaxRequests: 1,
			StaleAttemptTimeout: 2 * time.Minute,
		},
		RateLimiter: RateLimiterConfig{
			MaxTokens:        50,
			RefillRate:       10,
			TokensPerRequest: 1,
		},
		Bulkhead: BulkheadConfig{
			MaxConcurrent: 10,
		},
	}
}
