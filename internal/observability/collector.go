// Package observability provides metrics collection and tracing for CLI operations.
package observability

import (
	"fmt"
	"sync"
	"time"
)

// maxRecent bounds the per-kind history retained for debug output.
const maxRecent = 50

// RequestMetrics holds timing and status information for a single HTTP request.
type RequestMetrics struct {
	Method     string
	URL        string
	Attempt    int
	StatusCode int
	Duration   time.Duration
	FromCache  bool
	Retryable  bool
	Error      error
}

// OperationMetrics holds timing information for a high-level client operation.
type OperationMetrics struct {
	Service      string // e.g., "Todos", "Health"
	Operation    string // e.g., "List", "Create"
	ResourceType string // e.g., "todo"
	IsMutation   bool
	ResourceID   string
	Duration     time.Duration
	Error        error
}

// RetryMetrics records a retry event.
type RetryMetrics struct {
	Method  string
	URL     string
	Attempt int
	Error   error
}

// SessionMetrics aggregates metrics for an entire CLI session.
type SessionMetrics struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalRequests   int
	CacheHits       int
	CacheMisses     int
	TotalOperations int
	FailedOps       int
	TotalRetries    int
	TotalLatency    time.Duration
}

// ToMap converts the metrics to a map suitable for response metadata.
func (m SessionMetrics) ToMap() map[string]any {
	return map[string]any{
		"requests":     m.TotalRequests,
		"cache_hits":   m.CacheHits,
		"cache_misses": m.CacheMisses,
		"operations":   m.TotalOperations,
		"failed_ops":   m.FailedOps,
		"retries":      m.TotalRetries,
		"latency_ms":   m.TotalLatency.Milliseconds(),
	}
}

// SessionMetricsFromMap reconstructs metrics from response metadata.
// Values may arrive as int, int64, or float64 depending on whether the
// map round-tripped through JSON.
func SessionMetricsFromMap(stats map[string]any) SessionMetrics {
	return SessionMetrics{
		TotalRequests:   asInt(stats["requests"]),
		CacheHits:       asInt(stats["cache_hits"]),
		CacheMisses:     asInt(stats["cache_misses"]),
		TotalOperations: asInt(stats["operations"]),
		FailedOps:       asInt(stats["failed_ops"]),
		TotalRetries:    asInt(stats["retries"]),
		TotalLatency:    time.Duration(asInt(stats["latency_ms"])) * time.Millisecond,
	}
}

// FormatParts returns human-readable stat fragments, omitting zero values.
// Example: ["3 requests", "1 cached", "1 retry", "450ms"]
func (m SessionMetrics) FormatParts() []string {
	var parts []string
	if m.TotalRequests > 0 {
		label := "requests"
		if m.TotalRequests == 1 {
			label = "request"
		}
		parts = append(parts, fmt.Sprintf("%d %s", m.TotalRequests, label))
	}
	if m.CacheHits > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", m.CacheHits))
	}
	if m.TotalRetries > 0 {
		label := "retries"
		if m.TotalRetries == 1 {
			label = "retry"
		}
		parts = append(parts, fmt.Sprintf("%d %s", m.TotalRetries, label))
	}
	if m.FailedOps > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", m.FailedOps))
	}
	if m.TotalLatency > 0 {
		parts = append(parts, fmt.Sprintf("%dms", m.TotalLatency.Milliseconds()))
	}
	return parts
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// SessionCollector accumulates metrics across a CLI session.
// It is safe for concurrent use and keeps counters plus a bounded
// window of recent entries for debug output.
type SessionCollector struct {
	mu sync.Mutex

	startTime       time.Time
	totalRequests   int
	cacheHits       int
	cacheMisses     int
	totalOperations int
	failedOps       int
	totalRetries    int
	totalLatency    time.Duration

	recentRequests   []RequestMetrics
	recentOperations []OperationMetrics
	recentRetries    []RetryMetrics
}

// NewSessionCollector creates a new SessionCollector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{
		startTime: time.Now(),
	}
}

// RecordRequest records metrics for an HTTP request.
func (c *SessionCollector) RecordRequest(m RequestMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += m.Duration
	if m.FromCache {
		c.cacheHits++
	} else {
		c.cacheMisses++
	}
	if len(c.recentRequests) >= maxRecent {
		c.recentRequests = c.recentRequests[1:]
	}
	c.recentRequests = append(c.recentRequests, m)
}

// RecordOperation records metrics for a high-level operation.
func (c *SessionCollector) RecordOperation(m OperationMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalOperations++
	if m.Error != nil {
		c.failedOps++
	}
	if len(c.recentOperations) >= maxRecent {
		c.recentOperations = c.recentOperations[1:]
	}
	c.recentOperations = append(c.recentOperations, m)
}

// RecordRetry records a retry event.
func (c *SessionCollector) RecordRetry(m RetryMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRetries++
	if len(c.recentRetries) >= maxRecent {
		c.recentRetries = c.recentRetries[1:]
	}
	c.recentRetries = append(c.recentRetries, m)
}

// Requests returns a copy of the recent request metrics.
func (c *SessionCollector) Requests() []RequestMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RequestMetrics, len(c.recentRequests))
	copy(out, c.recentRequests)
	return out
}

// Operations returns a copy of the recent operation metrics.
func (c *SessionCollector) Operations() []OperationMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]OperationMetrics, len(c.recentOperations))
	copy(out, c.recentOperations)
	return out
}

// Retries returns a copy of the recent retry metrics.
func (c *SessionCollector) Retries() []RetryMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RetryMetrics, len(c.recentRetries))
	copy(out, c.recentRetries)
	return out
}

// Summary returns aggregated metrics for the session.
func (c *SessionCollector) Summary() SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SessionMetrics{
		StartTime:       c.startTime,
		EndTime:         time.Now(),
		TotalRequests:   c.totalRequests,
		CacheHits:       c.cacheHits,
		CacheMisses:     c.cacheMisses,
		TotalOperations: c.totalOperations,
		FailedOps:       c.failedOps,
		TotalRetries:    c.totalRetries,
		TotalLatency:    c.totalLatency,
	}
}

// Reset clears all collected metrics and resets the start time.
func (c *SessionCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.totalRequests = 0
	c.cacheHits = 0
	c.cacheMisses = 0
	c.totalOperations = 0
	c.failedOps = 0
	c.totalRetries = 0
	c.totalLatency = 0
	c.recentRequests = nil
	c.recentOperations = nil
	c.recentRetries = nil
}
