// Package api implements the tapi HTTP client: typed todo operations,
// ETag response caching, retry with backoff, and cross-process
// resilience via the shared gate.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tapi/tcli/internal/auth"
	"github.com/tapi/tcli/internal/config"
	"github.com/tapi/tcli/internal/models"
	"github.com/tapi/tcli/internal/observability"
	"github.com/tapi/tcli/internal/output"
	"github.com/tapi/tcli/internal/resilience"
	"github.com/tapi/tcli/internal/version"
)

const (
	maxRetries = 5
	baseDelay  = 1 * time.Second
	maxJitter  = 100 * time.Millisecond

	// A server asking us to wait longer than this gets surfaced to the
	// user instead of silently blocking the terminal.
	maxRetryAfterWait = 30 * time.Second

	// Error bodies longer than this are truncated in messages.
	maxErrorBodyLen = 200
)

// Client is the tapi API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	auth       *auth.Manager
	cache      *Cache
	gate       *resilience.Gate
	hooks      observability.Hooks
	noCache    bool
	backoff    func(attempt int) time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHooks attaches lifecycle hooks for observability.
func WithHooks(hooks observability.Hooks) Option {
	return func(c *Client) { c.hooks = hooks }
}

// WithGate attaches a cross-process resilience gate. Without one the
// client performs no rate limiting or circuit breaking.
func WithGate(gate *resilience.Gate) Option {
	return func(c *Client) { c.gate = gate }
}

// WithNoCache disables conditional requests and cached responses.
func WithNoCache(noCache bool) Option {
	return func(c *Client) { c.noCache = noCache }
}

// WithBackoff overrides the retry delay schedule. Tests use this to
// retry without sleeping.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *Client) { c.backoff = fn }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client from resolved configuration.
func NewClient(cfg *config.Config, authMgr *auth.Manager, opts ...Option) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    config.NormalizeBaseURL(cfg.BaseURL),
		auth:       authMgr,
		cache:      NewCache(cfg.CacheDir),
		noCache:    !cfg.CacheEnabled,
		backoff:    backoffDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cache returns the response cache, for cache management commands.
func (c *Client) Cache() *Cache {
	return c.cache
}

// backoffDelay computes the exponential backoff delay with jitter for
// a retry attempt (1-based).
func backoffDelay(attempt int) time.Duration {
	delay := baseDelay * (1 << (attempt - 1))
	return delay + time.Duration(rand.Int63n(int64(maxJitter)))
}

// parseRetryAfter parses a Retry-After header as delay seconds.
// HTTP-date values and garbage yield 0.
func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}

// response is an internal HTTP result passed back to typed operations.
type response struct {
	data       json.RawMessage
	statusCode int
	fromCache  bool
}

// CreateTodo creates a todo and returns the server's representation.
func (c *Client) CreateTodo(ctx context.Context, todo models.TodoCreate) (models.Todo, error) {
	op := observability.OperationInfo{
		Service:      "Todos",
		Operation:    "Create",
		ResourceType: "todo",
		IsMutation:   true,
	}

	var created models.Todo
	err := c.operate(ctx, op, func(ctx context.Context) error {
		resp, err := c.do(ctx, http.MethodPost, "/todos/", nil, todo, true)
		if err != nil {
			return err
		}
		return decode(resp.data, &created)
	})
	return created, err
}

// ListOptions filters a todo listing. Zero values are omitted from the
// query string.
type ListOptions struct {
	Query  string // substring match on title and description
	Tag    string // exact tag match
	Status string // todo, in_progress, or done
	Limit  int
}

// ListTodos returns todos matching opts, newest first.
func (c *Client) ListTodos(ctx context.Context, opts ListOptions) ([]models.Todo, error) {
	op := observability.OperationInfo{
		Service:      "Todos",
		Operation:    "List",
		ResourceType: "todo",
	}

	query := url.Values{}
	if opts.Query != "" {
		query.Set("q", opts.Query)
	}
	if opts.Tag != "" {
		query.Set("tag", opts.Tag)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var todos []models.Todo
	err := c.operate(ctx, op, func(ctx context.Context) error {
		resp, err := c.do(ctx, http.MethodGet, "/todos/", query, nil, true)
		if err != nil {
			return err
		}
		return decode(resp.data, &todos)
	})
	return todos, err
}

// GetTodo fetches a single todo by ID.
func (c *Client) GetTodo(ctx context.Context, id uuid.UUID) (models.Todo, error) {
	op := observability.OperationInfo{
		Service:      "Todos",
		Operation:    "Get",
		ResourceType: "todo",
		ResourceID:   id.String(),
	}

	var todo models.Todo
	err := c.operate(ctx, op, func(ctx context.Context) error {
		resp, err := c.do(ctx, http.MethodGet, "/todos/"+id.String(), nil, nil, true)
		if err != nil {
			return c.upgradeNotFound(err, id)
		}
		return decode(resp.data, &todo)
	})
	return todo, err
}

// UpdateTodo applies a partial update and returns the new state.
func (c *Client) UpdateTodo(ctx context.Context, id uuid.UUID, update models.TodoUpdate) (models.Todo, error) {
	op := observability.OperationInfo{
		Service:      "Todos",
		Operation:    "Update",
		ResourceType: "todo",
		IsMutation:   true,
		ResourceID:   id.String(),
	}

	var todo models.Todo
	err := c.operate(ctx, op, func(ctx context.Context) error {
		resp, err := c.do(ctx, http.MethodPatch, "/todos/"+id.String(), nil, update, true)
		if err != nil {
			return c.upgradeNotFound(err, id)
		}
		return decode(resp.data, &todo)
	})
	return todo, err
}

// DeleteTodo deletes a todo by ID.
func (c *Client) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	op := observability.OperationInfo{
		Service:      "Todos",
		Operation:    "Delete",
		ResourceType: "todo",
		IsMutation:   true,
		ResourceID:   id.String(),
	}

	return c.operate(ctx, op, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodDelete, "/todos/"+id.String(), nil, nil, true)
		return c.upgradeNotFound(err, id)
	})
}

// HealthStatus is the server's health report.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health checks server reachability. It does not require credentials
// but sends them when available, so auth verification can use it.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	op := observability.OperationInfo{
		Service:   "Health",
		Operation: "Check",
	}

	var status HealthStatus
	err := c.operate(ctx, op, func(ctx context.Context) error {
		resp, err := c.do(ctx, http.MethodGet, "/health", nil, nil, false)
		if err != nil {
			return err
		}
		return decode(resp.data, &status)
	})
	return status, err
}

// upgradeNotFound turns the transport-level 404 error into one naming
// the todo the caller asked for.
func (c *Client) upgradeNotFound(err error, id uuid.UUID) error {
	var apiErr *output.Error
	if errors.As(err, &apiErr) && apiErr.Code == output.CodeNotFound {
		e := output.ErrNotFound("Todo", id.String())
		e.HTTPStatus = apiErr.HTTPStatus
		return e
	}
	return err
}

// operate wraps an operation with hooks and the resilience gate.
func (c *Client) operate(ctx context.Context, op observability.OperationInfo, fn func(ctx context.Context) error) error {
	start := time.Now()
	if c.hooks != nil {
		ctx = c.hooks.OnOperationStart(ctx, op)
	}

	var done func(error)
	var err error
	if c.gate != nil {
		done, err = c.gate.Allow()
		if err != nil {
			err = gateError(err)
			if c.hooks != nil {
				c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
			}
			return err
		}
	}

	err = fn(ctx)
	if done != nil {
		done(err)
	}
	if c.hooks != nil {
		c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	}
	return err
}

// gateError maps gate rejections to user-facing errors.
func gateError(err error) error {
	switch {
	case errors.Is(err, resilience.ErrRateLimited):
		return &output.Error{
			Code:      output.CodeRateLimit,
			Message:   "Rate limit exceeded",
			Hint:      "Too many requests. Please wait before trying again.",
			Retryable: true,
		}
	case errors.Is(err, resilience.ErrCircuitOpen):
		return &output.Error{
			Code:      output.CodeAPI,
			Message:   "Service temporarily unavailable",
			Hint:      "The circuit breaker is open due to recent failures. Please wait before trying again.",
			Retryable: true,
		}
	case errors.Is(err, resilience.ErrBulkheadFull):
		return &output.Error{
			Code:      output.CodeRateLimit,
			Message:   "Too many concurrent requests",
			Hint:      "Maximum concurrent operations reached. Please wait for other operations to complete.",
			Retryable: true,
		}
	default:
		return err
	}
}

// do performs an HTTP request with retries. GET requests go through
// the ETag cache unless caching is disabled.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, authRequired bool) (*response, error) {
	apiKey, err := c.requestKey(authRequired)
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &output.Error{
				Code:    output.CodeAPI,
				Message: fmt.Sprintf("Failed to encode request: %v", err),
				Cause:   err,
			}
		}
	}

	useCache := method == http.MethodGet && !c.noCache
	cacheKey := ""
	if useCache {
		cacheKey = c.cache.Key(reqURL, apiKey)
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		info := observability.RequestInfo{Method: method, URL: reqURL, Attempt: attempt}
		if c.hooks != nil {
			ctx = c.hooks.OnRequestStart(ctx, info)
		}

		reqStart := time.Now()
		resp, err := c.singleRequest(ctx, method, reqURL, payload, apiKey, cacheKey)
		elapsed := time.Since(reqStart)

		if c.hooks != nil {
			result := observability.RequestResult{Duration: elapsed, Error: err}
			if resp != nil {
				result.StatusCode = resp.statusCode
				result.FromCache = resp.fromCache
			}
			if err != nil {
				if apiErr := output.AsError(err); apiErr != nil {
					result.Retryable = apiErr.Retryable
					if result.StatusCode == 0 {
						result.StatusCode = apiErr.HTTPStatus
					}
				}
			}
			c.hooks.OnRequestEnd(ctx, info, result)
		}

		if err == nil {
			return resp, nil
		}
		lastErr = err

		apiErr := output.AsError(err)
		if apiErr == nil || !apiErr.Retryable {
			return nil, err
		}

		// Share every server-requested backoff with sibling processes,
		// even when this process is about to give up.
		retryAfter := time.Duration(apiErr.RetryAfter) * time.Second
		if c.gate != nil && retryAfter > 0 {
			c.gate.RetryAfter(retryAfter)
		}

		if attempt == maxRetries {
			break
		}
		if retryAfter > maxRetryAfterWait {
			apiErr.Hint = fmt.Sprintf("Server requested a %d second wait. Try again later.", apiErr.RetryAfter)
			return nil, apiErr
		}

		delay := retryAfter
		if delay <= 0 {
			delay = c.backoff(attempt)
		}
		if c.hooks != nil {
			c.hooks.OnRetry(ctx, info, attempt, err)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, output.ErrCancelled()
		}
	}
	return nil, lastErr
}

// requestKey resolves the API key for a request. Operations that
// require auth fail early with a usable hint; the health check sends a
// key only when one is configured.
func (c *Client) requestKey(authRequired bool) (string, error) {
	if c.auth == nil {
		return "", nil
	}
	if authRequired {
		return c.auth.RequireKey()
	}
	key, _ := c.auth.Key()
	return key, nil
}

// singleRequest performs one HTTP attempt and maps the status code to
// a result or error.
func (c *Client) singleRequest(ctx context.Context, method, reqURL string, payload []byte, apiKey, cacheKey string) (*response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, &output.Error{
			Code:    output.CodeAPI,
			Message: fmt.Sprintf("Failed to build request: %v", err),
			Cause:   err,
		}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	if cacheKey != "" {
		if etag := c.cache.GetETag(cacheKey); etag != "" {
			req.Header.Set("If-None-Match", etag)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, output.ErrCancelled()
		}
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if cacheKey != "" {
			if etag := resp.Header.Get("ETag"); etag != "" {
				_ = c.cache.Set(cacheKey, data, etag)
			}
		}
		return &response{data: data, statusCode: resp.StatusCode}, nil

	case resp.StatusCode == http.StatusNoContent:
		return &response{data: json.RawMessage("{}"), statusCode: resp.StatusCode}, nil

	case resp.StatusCode == http.StatusNotModified:
		if cacheKey != "" {
			if cached := c.cache.GetBody(cacheKey); cached != nil {
				return &response{data: cached, statusCode: resp.StatusCode, fromCache: true}, nil
			}
			// The ETag matched but the body is gone. Drop the stale
			// ETag so the next attempt fetches a full response.
			_ = c.cache.Invalidate(cacheKey)
		}
		return nil, &output.Error{
			Code:      output.CodeAPI,
			Message:   "Cached response missing",
			Retryable: true,
		}

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, output.ErrAuth("Unauthorized - Missing or invalid API key")

	case resp.StatusCode == http.StatusForbidden:
		return nil, output.ErrForbiddenKey()

	case resp.StatusCode == http.StatusNotFound:
		return nil, &output.Error{
			Code:       output.CodeNotFound,
			Message:    "Not found",
			HTTPStatus: resp.StatusCode,
		}

	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, output.ErrValidation(parseValidationDetails(data))

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, output.ErrRateLimit(parseRetryAfter(resp.Header.Get("Retry-After")))

	case resp.StatusCode >= 500:
		return nil, &output.Error{
			Code:       output.CodeAPI,
			Message:    fmt.Sprintf("Server error (HTTP %d)", resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			Retryable:  true,
		}

	default:
		return nil, output.ErrAPI(resp.StatusCode, fmt.Sprintf("API error: %d - %s", resp.StatusCode, truncate(string(data), maxErrorBodyLen)))
	}
}

// validationDetail is one entry of a 422 response's detail array.
type validationDetail struct {
	Loc []json.RawMessage `json:"loc"`
	Msg string            `json:"msg"`
}

// parseValidationDetails extracts human-readable messages from a 422
// body. Fields come back as "body.title: field required"; an
// unparseable body falls back to its raw text.
func parseValidationDetails(data []byte) []string {
	var body struct {
		Detail []validationDetail `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil
		}
		return []string{truncate(text, maxErrorBodyLen)}
	}

	details := make([]string, 0, len(body.Detail))
	for _, d := range body.Detail {
		parts := make([]string, 0, len(d.Loc))
		for _, loc := range d.Loc {
			parts = append(parts, strings.Trim(string(loc), `"`))
		}
		if len(parts) > 0 {
			details = append(details, strings.Join(parts, ".")+": "+d.Msg)
		} else {
			details = append(details, d.Msg)
		}
	}
	return details
}

// decode unmarshals response data into v.
func decode(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &output.Error{
			Code:    output.CodeAPI,
			Message: fmt.Sprintf("Failed to decode response: %v", err),
			Cause:   err,
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
