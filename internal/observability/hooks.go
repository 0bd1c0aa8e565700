package observability

import (
	"context"
	"sync"
	"time"
)

// OperationInfo describes a semantic client operation, such as listing
// todos or resolving an identifier.
type OperationInfo struct {
	Service      string // e.g., "Todos", "Health"
	Operation    string // e.g., "List", "Create", "Resolve"
	ResourceType string // e.g., "todo"
	IsMutation   bool
	ResourceID   string // resource UUID, empty for collection operations
}

// RequestInfo describes a single HTTP request attempt.
type RequestInfo struct {
	Method  string
	URL     string
	Attempt int
}

// RequestResult describes the outcome of an HTTP request.
type RequestResult struct {
	StatusCode int
	Duration   time.Duration
	FromCache  bool
	Retryable  bool
	Error      error
}

// Hooks receives lifecycle callbacks from the API client.
// Implementations must be safe for concurrent use.
type Hooks interface {
	OnOperationStart(ctx context.Context, op OperationInfo) context.Context
	OnOperationEnd(ctx context.Context, op OperationInfo, err error, duration time.Duration)
	OnRequestStart(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd(ctx context.Context, info RequestInfo, result RequestResult)
	OnRetry(ctx context.Context, info RequestInfo, attempt int, err error)
}

// Verify CLIHooks implements Hooks at compile time.
var _ Hooks = (*CLIHooks)(nil)

// CLIHooks implements Hooks for CLI observability.
// It supports configurable verbosity levels:
//   - 0: Silent (collect stats only, no output)
//   - 1: Operations only (log client operations)
//   - 2: Operations + requests (log both operations and HTTP requests)
type CLIHooks struct {
	mu        sync.Mutex
	level     int
	collector *SessionCollector
	writer    *TraceWriter
}

// NewCLIHooks creates a new CLIHooks with the given verbosity level.
// If collector is nil, metrics are not collected.
// If writer is nil, no trace output is produced.
func NewCLIHooks(level int, collector *SessionCollector, writer *TraceWriter) *CLIHooks {
	return &CLIHooks{
		level:     level,
		collector: collector,
		writer:    writer,
	}
}

// SetLevel changes the verbosity level at runtime.
func (h *CLIHooks) SetLevel(level int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = level
}

// Level returns the current verbosity level.
func (h *CLIHooks) Level() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level
}

// OnOperationStart is called when a semantic client operation begins.
func (h *CLIHooks) OnOperationStart(ctx context.Context, op OperationInfo) context.Context {
	h.mu.Lock()
	level := h.level
	writer := h.writer
	h.mu.Unlock()

	if level >= 1 && writer != nil {
		writer.WriteOperationStart(op)
	}

	return ctx
}

// OnOperationEnd is called when a semantic client operation completes.
func (h *CLIHooks) OnOperationEnd(ctx context.Context, op OperationInfo, err error, duration time.Duration) {
	h.mu.Lock()
	level := h.level
	collector := h.collector
	writer := h.writer
	h.mu.Unlock()

	if collector != nil {
		collector.RecordOperation(OperationMetrics{
			Service:      op.Service,
			Operation:    op.Operation,
			ResourceType: op.ResourceType,
			IsMutation:   op.IsMutation,
			ResourceID:   op.ResourceID,
			Duration:     duration,
			Error:        err,
		})
	}

	if level >= 1 && writer != nil {
		writer.WriteOperationEnd(op, err, duration)
	}
}

// OnRequestStart is called before an HTTP request is sent.
func (h *CLIHooks) OnRequestStart(ctx context.Context, info RequestInfo) context.Context {
	h.mu.Lock()
	level := h.level
	writer := h.writer
	h.mu.Unlock()

	if level >= 2 && writer != nil {
		writer.WriteRequestStart(info)
	}

	return ctx
}

// OnRequestEnd is called after an HTTP request completes.
func (h *CLIHooks) OnRequestEnd(ctx context.Context, info RequestInfo, result RequestResult) {
	h.mu.Lock()
	collector := h.collector
	writer := h.writer
	level := h.level
	h.mu.Unlock()

	if collector != nil {
		collector.RecordRequest(RequestMetrics{
			Method:     info.Method,
			URL:        info.URL,
			Attempt:    info.Attempt,
			StatusCode: result.StatusCode,
			Duration:   result.Duration,
			FromCache:  result.FromCache,
			Retryable:  result.Retryable,
			Error:      result.Error,
		})
	}

	if level >= 2 && writer != nil {
		writer.WriteRequestEnd(info, result)
	}
}

// OnRetry is called before a retry attempt.
func (h *CLIHooks) OnRetry(ctx context.Context, info RequestInfo, attempt int, err error) {
	h.mu.Lock()
	collector := h.collector
	writer := h.writer
	level := h.level
	h.mu.Unlock()

	if collector != nil {
		collector.RecordRetry(RetryMetrics{
			Method:  info.Method,
			URL:     info.URL,
			Attempt: attempt,
			Error:   err,
		})
	}

	if level >= 2 && writer != nil {
		writer.WriteRetry(info, attempt, err)
	}
}
