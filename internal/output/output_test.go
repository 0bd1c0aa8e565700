package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tapi/tcli/internal/tui"
)

// =============================================================================
// Exit Codes Tests
// =============================================================================

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{CodeUsage, ExitUsage},
		{CodeNotFound, ExitNotFound},
		{CodeAuth, ExitAuth},
		{CodeForbidden, ExitForbidden},
		{CodeRateLimit, ExitRateLimit},
		{CodeNetwork, ExitNetwork},
		{CodeAPI, ExitAPI},
		{CodeAmbiguous, ExitAmbiguous},
		{CodeCancelled, ExitCancelled},
		{"unknown_code", ExitAPI}, // Unknown codes default to ExitAPI
		{"", ExitAPI},             // Empty code defaults to ExitAPI
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			result := ExitCodeFor(tt.code)
			if result != tt.expected {
				t.Errorf("ExitCodeFor(%q) = %d, want %d", tt.code, result, tt.expected)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	// Scripted callers depend on these values staying fixed
	expected := map[int]int{
		ExitOK:        0,
		ExitUsage:     1,
		ExitNotFound:  2,
		ExitAuth:      3,
		ExitForbidden: 4,
		ExitRateLimit: 5,
		ExitNetwork:   6,
		ExitAPI:       7,
		ExitAmbiguous: 8,
		ExitCancelled: 130,
	}

	for code, value := range expected {
		if code != value {
			t.Errorf("Exit code constant mismatch: got %d, want %d", code, value)
		}
	}
}

func TestErrorCodeConstants(t *testing.T) {
	// Verify error code strings
	codes := []string{
		CodeUsage,
		CodeNotFound,
		CodeAuth,
		CodeForbidden,
		CodeRateLimit,
		CodeNetwork,
		CodeAPI,
		CodeAmbiguous,
		CodeCancelled,
	}

	for _, code := range codes {
		if code == "" {
			t.Error("Error code should not be empty")
		}
	}
}

// =============================================================================
// Error Struct Tests
// =============================================================================

func TestErrorInterface(t *testing.T) {
	// Error with hint - includes hint in message
	errWithHint := &Error{
		Code:    CodeNotFound,
		Message: "resource not found",
		Hint:    "check the ID",
	}
	expected := "resource not found: check the ID"
	if errWithHint.Error() != expected {
		t.Errorf("Error() = %q, want %q", errWithHint.Error(), expected)
	}

	// Error without hint - just message
	errNoHint := &Error{
		Code:    CodeNotFound,
		Message: "resource not found",
	}
	if errNoHint.Error() != "resource not found" {
		t.Errorf("Error() = %q, want %q", errNoHint.Error(), "resource not found")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &Error{
		Code:    CodeAPI,
		Message: "api error",
		Cause:   cause,
	}

	unwrapped := err.Unwrap()
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestErrorUnwrapNil(t *testing.T) {
	err := &Error{
		Code:    CodeAPI,
		Message: "api error",
	}

	if err.Unwrap() != nil {
		t.Error("Unwrap() should return nil when Cause is nil")
	}
}

func TestErrorExitCode(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{CodeUsage, ExitUsage},
		{CodeNotFound, ExitNotFound},
		{CodeAuth, ExitAuth},
		{CodeForbidden, ExitForbidden},
		{CodeRateLimit, ExitRateLimit},
		{CodeNetwork, ExitNetwork},
		{CodeAPI, ExitAPI},
		{CodeAmbiguous, ExitAmbiguous},
		{CodeCancelled, ExitCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &Error{Code: tt.code, Message: "test"}
			if err.ExitCode() != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), tt.expected)
			}
		})
	}
}

// =============================================================================
// Error Constructors Tests
// =============================================================================

func TestErrUsage(t *testing.T) {
	err := ErrUsage("invalid argument")

	if err.Code != CodeUsage {
		t.Errorf("Code = %q, want %q", err.Code, CodeUsage)
	}
	if err.Message != "invalid argument" {
		t.Errorf("Message = %q, want %q", err.Message, "invalid argument")
	}
	if err.ExitCode() != ExitUsage {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitUsage)
	}
}

func TestErrUsageHint(t *testing.T) {
	err := ErrUsageHint("invalid argument", "try --help")

	if err.Code != CodeUsage {
		t.Errorf("Code = %q, want %q", err.Code, CodeUsage)
	}
	if err.Message != "invalid argument" {
		t.Errorf("Message = %q, want %q", err.Message, "invalid argument")
	}
	if err.Hint != "try --help" {
		t.Errorf("Hint = %q, want %q", err.Hint, "try --help")
	}
}

func TestErrNotFound(t *testing.T) {
	err := ErrNotFound("todo", "pay rent")

	if err.Code != CodeNotFound {
		t.Errorf("Code = %q, want %q", err.Code, CodeNotFound)
	}
	if err.Message != "todo not found: pay rent" {
		t.Errorf("Message = %q, want %q", err.Message, "todo not found: pay rent")
	}
	if err.ExitCode() != ExitNotFound {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitNotFound)
	}
}

func TestErrNotFoundHint(t *testing.T) {
	err := ErrNotFoundHint("todo", "pay rent", "run: tcli list")

	if err.Code != CodeNotFound {
		t.Errorf("Code = %q, want %q", err.Code, CodeNotFound)
	}
	if err.Hint != "run: tcli list" {
		t.Errorf("Hint = %q, want %q", err.Hint, "run: tcli list")
	}
}

func TestErrAuth(t *testing.T) {
	err := ErrAuth("Unauthorized - Missing or invalid API key")

	if err.Code != CodeAuth {
		t.Errorf("Code = %q, want %q", err.Code, CodeAuth)
	}
	if !strings.Contains(err.Hint, "tcli auth login") {
		t.Errorf("Hint should contain login instruction, got %q", err.Hint)
	}
	if err.ExitCode() != ExitAuth {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitAuth)
	}
}

func TestErrForbidden(t *testing.T) {
	err := ErrForbidden("access denied")

	if err.Code != CodeForbidden {
		t.Errorf("Code = %q, want %q", err.Code, CodeForbidden)
	}
	if err.HTTPStatus != 403 {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, 403)
	}
	if err.ExitCode() != ExitForbidden {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitForbidden)
	}
}

func TestErrForbiddenKey(t *testing.T) {
	err := ErrForbiddenKey()

	if err.Code != CodeForbidden {
		t.Errorf("Code = %q, want %q", err.Code, CodeForbidden)
	}
	if err.Message != "Forbidden - Invalid API key" {
		t.Errorf("Message = %q, want %q", err.Message, "Forbidden - Invalid API key")
	}
	if err.HTTPStatus != 403 {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, 403)
	}
	if err.Hint == "" {
		t.Error("Hint should not be empty for invalid key error")
	}
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation([]string{"title: field required", "priority: value too small"})

	if err.Code != CodeUsage {
		t.Errorf("Code = %q, want %q", err.Code, CodeUsage)
	}
	want := "Validation error - title: field required; priority: value too small"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	if err.HTTPStatus != 422 {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, 422)
	}
	if err.ExitCode() != ExitUsage {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitUsage)
	}
}

func TestErrValidationSingleDetail(t *testing.T) {
	err := ErrValidation([]string{"status: invalid value"})

	if err.Message != "Validation error - status: invalid value" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestErrCancelled(t *testing.T) {
	err := ErrCancelled()

	if err.Code != CodeCancelled {
		t.Errorf("Code = %q, want %q", err.Code, CodeCancelled)
	}
	if err.ExitCode() != ExitCancelled {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitCancelled)
	}
}

func TestErrRateLimit(t *testing.T) {
	err := ErrRateLimit(60)

	if err.Code != CodeRateLimit {
		t.Errorf("Code = %q, want %q", err.Code, CodeRateLimit)
	}
	if err.HTTPStatus != 429 {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, 429)
	}
	if !err.Retryable {
		t.Error("RateLimit error should be retryable")
	}
	if err.Hint == "" {
		t.Error("Hint should contain retry time")
	}
	if err.ExitCode() != ExitRateLimit {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitRateLimit)
	}
}

func TestErrRateLimitZero(t *testing.T) {
	err := ErrRateLimit(0)

	if err.Hint != "Try again later" {
		t.Errorf("Hint = %q, want %q for zero retry", err.Hint, "Try again later")
	}
}

func TestErrNetwork(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrNetwork(cause)

	if err.Code != CodeNetwork {
		t.Errorf("Code = %q, want %q", err.Code, CodeNetwork)
	}
	if !err.Retryable {
		t.Error("Network error should be retryable")
	}
	if err.Cause != cause {
		t.Error("Cause should be set")
	}
	if err.Hint != "connection refused" {
		t.Errorf("Hint = %q, want %q", err.Hint, "connection refused")
	}
	if err.ExitCode() != ExitNetwork {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitNetwork)
	}
}

func TestErrAPI(t *testing.T) {
	err := ErrAPI(500, "server error")

	if err.Code != CodeAPI {
		t.Errorf("Code = %q, want %q", err.Code, CodeAPI)
	}
	if err.HTTPStatus != 500 {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, 500)
	}
	if err.Message != "server error" {
		t.Errorf("Message = %q, want %q", err.Message, "server error")
	}
	if err.ExitCode() != ExitAPI {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitAPI)
	}
}

func TestErrAmbiguous(t *testing.T) {
	matches := []string{"Buy groceries", "Buy stamps", "Buy birthday card"}
	err := ErrAmbiguous("multiple matches", matches)

	if err.Code != CodeAmbiguous {
		t.Errorf("Code = %q, want %q", err.Code, CodeAmbiguous)
	}
	if err.Hint == "" {
		t.Error("Hint should contain matches")
	}
	if err.ExitCode() != ExitAmbiguous {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitAmbiguous)
	}
}

// =============================================================================
// AsError Tests
// =============================================================================

func TestAsErrorWithOutputError(t *testing.T) {
	original := &Error{
		Code:    CodeNotFound,
		Message: "not found",
		Hint:    "try again",
	}

	result := AsError(original)
	if result != original {
		t.Error("AsError should return same *Error unchanged")
	}
}

func TestAsErrorWithStandardError(t *testing.T) {
	original := errors.New("something went wrong")

	result := AsError(original)
	if result.Code != CodeAPI {
		t.Errorf("Code = %q, want %q", result.Code, CodeAPI)
	}
	if result.Message != "something went wrong" {
		t.Errorf("Message = %q, want %q", result.Message, "something went wrong")
	}
	if result.Cause != original {
		t.Error("Cause should be original error")
	}
}

func TestAsErrorWithWrappedOutputError(t *testing.T) {
	original := &Error{
		Code:    CodeAuth,
		Message: "auth required",
	}
	wrapped := errors.Join(errors.New("wrapper"), original)

	result := AsError(wrapped)
	if result.Code != CodeAuth {
		t.Errorf("Code = %q, want %q", result.Code, CodeAuth)
	}
}

// Note: AsError(nil) panics because it calls err.Error() on nil.
// This is expected behavior - callers should not pass nil to AsError.

// =============================================================================
// Envelope/Response Tests
// =============================================================================

func TestResponseJSON(t *testing.T) {
	resp := &Response{
		OK:      true,
		Data:    map[string]string{"title": "Write release notes"},
		Summary: "Found 1 todo",
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded["ok"] != true {
		t.Error("ok field should be true")
	}
	if decoded["summary"] != "Found 1 todo" {
		t.Errorf("summary = %q, want %q", decoded["summary"], "Found 1 todo")
	}
}

func TestErrorResponseJSON(t *testing.T) {
	resp := &ErrorResponse{
		OK:    false,
		Error: "not found",
		Code:  CodeNotFound,
		Hint:  "check the ID",
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded["ok"] != false {
		t.Error("ok field should be false")
	}
	if decoded["error"] != "not found" {
		t.Errorf("error = %q, want %q", decoded["error"], "not found")
	}
	if decoded["code"] != CodeNotFound {
		t.Errorf("code = %q, want %q", decoded["code"], CodeNotFound)
	}
}

func TestBreadcrumb(t *testing.T) {
	bc := Breadcrumb{
		Action:      "get",
		Cmd:         "tcli get 3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f",
		Description: "View todo details",
	}

	data, err := json.Marshal(bc)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded["action"] != "get" {
		t.Errorf("action = %q, want %q", decoded["action"], "get")
	}
	if decoded["cmd"] != "tcli get 3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f" {
		t.Errorf("cmd = %q", decoded["cmd"])
	}
}

// =============================================================================
// Writer Tests
// =============================================================================

func TestWriterOK(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatJSON,
		Writer: &buf,
	})

	data := map[string]string{"id": "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f", "title": "Test"}
	err := w.OK(data, WithSummary("test summary"))
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal output: %v", err)
	}

	if !resp.OK {
		t.Error("OK field should be true")
	}
	if resp.Summary != "test summary" {
		t.Errorf("Summary = %q, want %q", resp.Summary, "test summary")
	}
}

func TestWriterErr(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatJSON,
		Writer: &buf,
	})

	err := w.Err(ErrNotFound("todo", "pay rent"))
	if err != nil {
		t.Fatalf("Err() failed: %v", err)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal output: %v", err)
	}

	if resp.OK {
		t.Error("OK field should be false")
	}
	if resp.Code != CodeNotFound {
		t.Errorf("Code = %q, want %q", resp.Code, CodeNotFound)
	}
}

func TestWriterQuietFormat(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatQuiet,
		Writer: &buf,
	})

	data := map[string]string{"id": "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f", "title": "Test"}
	err := w.OK(data, WithSummary("ignored"))
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	// Quiet format should output just the data, not the envelope
	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to unmarshal output: %v", err)
	}

	if decoded["id"] != "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f" {
		t.Errorf("id = %q", decoded["id"])
	}
	// Should not have envelope fields
	if _, exists := decoded["ok"]; exists {
		t.Error("Quiet format should not include envelope ok field")
	}
}

func TestWriterIDsFormat(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatIDs,
		Writer: &buf,
	})

	data := []map[string]any{
		{"id": "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f", "title": "Todo A"},
		{"id": "9c4b2d1e-5f6a-4b7c-8d9e-0f1a2b3c4d5e", "title": "Todo B"},
	}
	err := w.OK(data)
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	want := "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f\n9c4b2d1e-5f6a-4b7c-8d9e-0f1a2b3c4d5e\n"
	if output != want {
		t.Errorf("IDs output = %q, want %q", output, want)
	}
}

func TestWriterCountFormat(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatCount,
		Writer: &buf,
	})

	data := []map[string]any{
		{"id": 1},
		{"id": 2},
		{"id": 3},
	}
	err := w.OK(data)
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	if output != "3\n" {
		t.Errorf("Count output = %q, want %q", output, "3\n")
	}
}

func TestWriterCountFormatSingleItem(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatCount,
		Writer: &buf,
	})

	data := map[string]any{"id": 1, "title": "Single"}
	err := w.OK(data)
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	if output != "1\n" {
		t.Errorf("Count output for single item = %q, want %q", output, "1\n")
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Format != FormatAuto {
		t.Errorf("Default Format = %d, want %d", opts.Format, FormatAuto)
	}
	if opts.Writer == nil {
		t.Error("Default Writer should not be nil")
	}
}

func TestNewWithNilWriter(t *testing.T) {
	w := New(Options{
		Format: FormatJSON,
		Writer: nil,
	})

	// Should default to os.Stdout
	if w.opts.Writer == nil {
		t.Error("Writer should default to os.Stdout, not nil")
	}
}

// =============================================================================
// Response Options Tests
// =============================================================================

func TestWithSummary(t *testing.T) {
	resp := &Response{}
	WithSummary("test summary")(resp)

	if resp.Summary != "test summary" {
		t.Errorf("Summary = %q, want %q", resp.Summary, "test summary")
	}
}

func TestWithBreadcrumbs(t *testing.T) {
	resp := &Response{}
	bc1 := Breadcrumb{Action: "list", Cmd: "tcli list", Description: "List todos"}
	bc2 := Breadcrumb{Action: "get", Cmd: "tcli get 1", Description: "Show todo"}

	WithBreadcrumbs(bc1, bc2)(resp)

	if len(resp.Breadcrumbs) != 2 {
		t.Errorf("Breadcrumbs count = %d, want %d", len(resp.Breadcrumbs), 2)
	}
	if resp.Breadcrumbs[0].Action != "list" {
		t.Errorf("First breadcrumb action = %q, want %q", resp.Breadcrumbs[0].Action, "list")
	}
}

func TestWithBreadcrumbsAppend(t *testing.T) {
	resp := &Response{
		Breadcrumbs: []Breadcrumb{{Action: "initial"}},
	}
	bc := Breadcrumb{Action: "added"}

	WithBreadcrumbs(bc)(resp)

	if len(resp.Breadcrumbs) != 2 {
		t.Errorf("Breadcrumbs count = %d, want %d", len(resp.Breadcrumbs), 2)
	}
}

func TestWithContext(t *testing.T) {
	resp := &Response{}

	WithContext("todo_id", "3e8a1f2b")(resp)
	WithContext("user", "alice")(resp)

	if resp.Context["todo_id"] != "3e8a1f2b" {
		t.Errorf("Context[todo_id] = %v, want %q", resp.Context["todo_id"], "3e8a1f2b")
	}
	if resp.Context["user"] != "alice" {
		t.Errorf("Context[user] = %v, want %q", resp.Context["user"], "alice")
	}
}

func TestWithMeta(t *testing.T) {
	resp := &Response{}

	WithMeta("page", 1)(resp)
	WithMeta("total", 100)(resp)

	if resp.Meta["page"] != 1 {
		t.Errorf("Meta[page] = %v, want %d", resp.Meta["page"], 1)
	}
	if resp.Meta["total"] != 100 {
		t.Errorf("Meta[total] = %v, want %d", resp.Meta["total"], 100)
	}
}

// =============================================================================
// NormalizeData Tests
// =============================================================================

func TestNormalizeDataWithSlice(t *testing.T) {
	data := []map[string]any{
		{"id": 1, "title": "A"},
		{"id": 2, "title": "B"},
	}

	result := NormalizeData(data)
	slice, ok := result.([]map[string]any)
	if !ok {
		t.Fatalf("Expected []map[string]any, got %T", result)
	}
	if len(slice) != 2 {
		t.Errorf("Length = %d, want %d", len(slice), 2)
	}
}

func TestNormalizeDataWithMap(t *testing.T) {
	data := map[string]any{"id": 1, "title": "A"}

	result := NormalizeData(data)
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("Expected map[string]any, got %T", result)
	}
	if m["id"] != 1 {
		t.Errorf("id = %v, want %d", m["id"], 1)
	}
}

func TestNormalizeDataWithJSONRawMessage(t *testing.T) {
	raw := json.RawMessage(`[{"id": 1}, {"id": 2}]`)

	result := NormalizeData(raw)
	slice, ok := result.([]map[string]any)
	if !ok {
		t.Fatalf("Expected []map[string]any, got %T", result)
	}
	if len(slice) != 2 {
		t.Errorf("Length = %d, want %d", len(slice), 2)
	}
}

func TestNormalizeDataWithStruct(t *testing.T) {
	type Item struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	data := Item{ID: 1, Title: "Test"}

	result := NormalizeData(data)
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("Expected map[string]any, got %T", result)
	}
	if m["id"] != float64(1) { // JSON unmarshals numbers as float64
		t.Errorf("id = %v, want %v", m["id"], float64(1))
	}
}

func TestNormalizeDataWithNil(t *testing.T) {
	result := NormalizeData(nil)
	if result != nil {
		t.Errorf("Expected nil, got %v", result)
	}
}

// =============================================================================
// formatCell Tests
// =============================================================================

func TestFormatCellScalars(t *testing.T) {
	if got := formatCell(nil); got != "—" {
		t.Errorf("formatCell(nil) = %q, want %q", got, "—")
	}
	if got := formatCell(true); got != "yes" {
		t.Errorf("formatCell(true) = %q, want %q", got, "yes")
	}
	if got := formatCell(false); got != "no" {
		t.Errorf("formatCell(false) = %q, want %q", got, "no")
	}
	if got := formatCell(float64(3)); got != "3" {
		t.Errorf("formatCell(3.0) = %q, want %q", got, "3")
	}
	if got := formatCell(float64(2.5)); got != "2.50" {
		t.Errorf("formatCell(2.5) = %q, want %q", got, "2.50")
	}

	long := strings.Repeat("x", 50)
	got := formatCell(long)
	if len(got) != 40 || !strings.HasSuffix(got, "...") {
		t.Errorf("formatCell(long string) = %q, want 40 chars ending in ...", got)
	}
}

func TestFormatCellWithScalarArray(t *testing.T) {
	// Test string arrays (e.g., tags)
	tags := []any{"home", "errands", "urgent"}
	result := formatCell(tags)
	if result != "home, errands, urgent" {
		t.Errorf("formatCell(string array) = %q, want %q", result, "home, errands, urgent")
	}

	// Test number arrays
	numbers := []any{float64(1), float64(2), float64(3)}
	result = formatCell(numbers)
	if result != "1, 2, 3" {
		t.Errorf("formatCell(number array) = %q, want %q", result, "1, 2, 3")
	}

	// Test mixed arrays
	mixed := []any{"a", float64(1), "b"}
	result = formatCell(mixed)
	if result != "a, 1, b" {
		t.Errorf("formatCell(mixed array) = %q, want %q", result, "a, 1, b")
	}

	// Empty arrays render the same placeholder as missing values
	empty := []any{}
	result = formatCell(empty)
	if result != "—" {
		t.Errorf("formatCell(empty array) = %q, want %q", result, "—")
	}
}

func TestFormatCellWithMapArray(t *testing.T) {
	// Test maps with name key
	people := []any{
		map[string]any{"id": float64(1), "name": "Alice"},
		map[string]any{"id": float64(2), "name": "Bob"},
	}
	result := formatCell(people)
	if result != "Alice, Bob" {
		t.Errorf("formatCell(people) = %q, want %q", result, "Alice, Bob")
	}

	// Test maps with title key (no name)
	items := []any{
		map[string]any{"id": float64(1), "title": "Task A"},
		map[string]any{"id": float64(2), "title": "Task B"},
	}
	result = formatCell(items)
	if result != "Task A, Task B" {
		t.Errorf("formatCell(items with title) = %q, want %q", result, "Task A, Task B")
	}

	// Test maps with only id (fallback)
	refs := []any{
		map[string]any{"id": float64(100)},
		map[string]any{"id": float64(200)},
	}
	result = formatCell(refs)
	if result != "100, 200" {
		t.Errorf("formatCell(refs) = %q, want %q", result, "100, 200")
	}
}

// =============================================================================
// formatHeader Tests
// =============================================================================

func TestFormatHeader(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"id", "ID"},
		{"title", "Title"},
		{"status", "Status"},
		{"priority", "Priority"},
		{"due_at", "Due"},
		{"created_at", "Created"},
		{"updated_at", "Updated"},
		{"estimated_minutes", "Estimated Minutes"},
		{"tags", "Tags"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := formatHeader(tt.key); got != tt.expected {
				t.Errorf("formatHeader(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

// =============================================================================
// formatDateValue Tests
// =============================================================================

func TestFormatDateValueDueAt(t *testing.T) {
	// Due dates keep their exact time
	got := formatDateValue("due_at", "2026-09-01T17:30:00Z")
	if got != "2026-09-01 17:30" {
		t.Errorf("formatDateValue(due_at) = %q, want %q", got, "2026-09-01 17:30")
	}

	// The service omits the UTC offset
	got = formatDateValue("due_at", "2026-09-01T17:30:00")
	if got != "2026-09-01 17:30" {
		t.Errorf("formatDateValue(due_at, no offset) = %q, want %q", got, "2026-09-01 17:30")
	}
}

func TestFormatDateValueRelative(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"just now", now.Add(-30 * time.Second).Format(time.RFC3339), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute).Format(time.RFC3339), "5 minutes ago"},
		{"hours ago", now.Add(-3*time.Hour - 30*time.Minute).Format(time.RFC3339), "3 hours ago"},
		{"yesterday", now.Add(-25 * time.Hour).Format(time.RFC3339), "yesterday"},
		{"days ago", now.Add(-3*24*time.Hour - time.Hour).Format(time.RFC3339), "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDateValue("created_at", tt.value); got != tt.expected {
				t.Errorf("formatDateValue(created_at, %q) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestFormatDateValueOld(t *testing.T) {
	got := formatDateValue("created_at", "2020-03-15T10:00:00Z")
	if got != "Mar 15, 2020" {
		t.Errorf("formatDateValue(old timestamp) = %q, want %q", got, "Mar 15, 2020")
	}
}

func TestFormatDateValueDateOnly(t *testing.T) {
	got := formatDateValue("start_date", "2026-12-31")
	if got != "Dec 31, 2026" {
		t.Errorf("formatDateValue(date-only) = %q, want %q", got, "Dec 31, 2026")
	}
}

func TestFormatDateValuePassthrough(t *testing.T) {
	// Non-date columns are left alone
	if got := formatDateValue("title", "2026-01-01"); got != "2026-01-01" {
		t.Errorf("formatDateValue(title) = %q, want passthrough", got)
	}

	// Unparseable values fall back to plain formatting
	if got := formatDateValue("due_at", "not a date"); got != "not a date" {
		t.Errorf("formatDateValue(garbage) = %q, want passthrough", got)
	}

	// Missing values render the placeholder
	if got := formatDateValue("due_at", nil); got != "—" {
		t.Errorf("formatDateValue(nil) = %q, want %q", got, "—")
	}
}

// =============================================================================
// JQ Filter Tests
// =============================================================================

func TestApplyJQProjection(t *testing.T) {
	data := []map[string]any{
		{"id": "1", "title": "Buy groceries"},
		{"id": "2", "title": "Pay rent"},
	}

	result, err := ApplyJQ(".[] | .title", data)
	if err != nil {
		t.Fatalf("ApplyJQ failed: %v", err)
	}

	titles, ok := result.([]any)
	if !ok {
		t.Fatalf("Expected []any, got %T", result)
	}
	if len(titles) != 2 || titles[0] != "Buy groceries" || titles[1] != "Pay rent" {
		t.Errorf("titles = %v", titles)
	}
}

func TestApplyJQSingleResult(t *testing.T) {
	data := []map[string]any{
		{"id": "1", "title": "Buy groceries"},
		{"id": "2", "title": "Pay rent"},
	}

	result, err := ApplyJQ(".[1].title", data)
	if err != nil {
		t.Fatalf("ApplyJQ failed: %v", err)
	}
	if result != "Pay rent" {
		t.Errorf("result = %v, want %q", result, "Pay rent")
	}
}

func TestApplyJQObjectField(t *testing.T) {
	// Decoded JSON carries numbers as float64
	data := map[string]any{"id": "1", "title": "Buy groceries", "priority": float64(2)}

	result, err := ApplyJQ(".priority", data)
	if err != nil {
		t.Fatalf("ApplyJQ failed: %v", err)
	}
	if result != float64(2) {
		t.Errorf("result = %v (%T), want 2", result, result)
	}
}

func TestApplyJQSelect(t *testing.T) {
	data := []map[string]any{
		{"id": "1", "status": "todo"},
		{"id": "2", "status": "done"},
		{"id": "3", "status": "todo"},
	}

	result, err := ApplyJQ("[.[] | select(.status == \"todo\")] | length", data)
	if err != nil {
		t.Fatalf("ApplyJQ failed: %v", err)
	}
	if n, ok := result.(int); !ok || n != 2 {
		t.Errorf("result = %v (%T), want 2", result, result)
	}
}

func TestApplyJQNoResults(t *testing.T) {
	data := []map[string]any{
		{"id": "1", "status": "todo"},
	}

	result, err := ApplyJQ(".[] | select(.status == \"done\")", data)
	if err != nil {
		t.Fatalf("ApplyJQ failed: %v", err)
	}
	if result != nil {
		t.Errorf("result = %v, want nil for empty selection", result)
	}
}

func TestApplyJQInvalidExpression(t *testing.T) {
	_, err := ApplyJQ("][", map[string]any{"id": "1"})
	if err == nil {
		t.Fatal("Expected error for invalid expression")
	}

	outErr := AsError(err)
	if outErr.Code != CodeUsage {
		t.Errorf("Code = %q, want %q", outErr.Code, CodeUsage)
	}
}

func TestApplyJQRuntimeError(t *testing.T) {
	_, err := ApplyJQ(".title", 42)
	if err == nil {
		t.Fatal("Expected error for indexing a number")
	}

	outErr := AsError(err)
	if outErr.Code != CodeUsage {
		t.Errorf("Code = %q, want %q", outErr.Code, CodeUsage)
	}
}

func TestWriterJQOption(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatJSON,
		Writer: &buf,
		JQ:     ".[] | .id",
	})

	data := []map[string]any{
		{"id": "a1", "title": "Todo A"},
		{"id": "b2", "title": "Todo B"},
	}
	if err := w.OK(data); err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal output: %v", err)
	}

	ids, ok := resp.Data.([]any)
	if !ok {
		t.Fatalf("Expected filtered data to be []any, got %T", resp.Data)
	}
	if len(ids) != 2 || ids[0] != "a1" || ids[1] != "b2" {
		t.Errorf("filtered data = %v", ids)
	}
}

func TestWriterJQOptionInvalid(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatJSON,
		Writer: &buf,
		JQ:     "][",
	})

	err := w.OK(map[string]any{"id": "1"})
	if err == nil {
		t.Fatal("Expected error for invalid jq expression")
	}
}

// =============================================================================
// Markdown Format Tests
// =============================================================================

func TestWriterMarkdownFormatError(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatMarkdown,
		Writer: &buf,
	})

	err := w.Err(ErrNotFound("todo", "pay rent"))
	if err != nil {
		t.Fatalf("Err() failed: %v", err)
	}

	output := buf.String()
	// Should NOT be JSON
	if strings.Contains(output, `"ok":`) {
		t.Errorf("Markdown error output should not contain JSON, got: %s", output)
	}
	// Should contain styled error message
	if !strings.Contains(output, "Error:") {
		t.Errorf("Markdown error output should contain 'Error:', got: %s", output)
	}
	if !strings.Contains(output, "todo not found") {
		t.Errorf("Markdown error output should contain error message, got: %s", output)
	}
}

func TestWriterMarkdownFormatList(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatMarkdown,
		Writer: &buf,
	})

	data := []map[string]any{
		{"id": "1", "title": "Buy groceries", "status": "todo"},
		{"id": "2", "title": "Pay rent", "status": "done"},
	}
	err := w.OK(data, WithSummary("2 todos"))
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	// Should NOT be JSON
	if strings.Contains(output, `"ok":`) {
		t.Errorf("Markdown list output should not contain JSON, got: %s", output)
	}
	// Should contain summary
	if !strings.Contains(output, "2 todos") {
		t.Errorf("Markdown output should contain summary, got: %s", output)
	}
	// Should contain data
	if !strings.Contains(output, "Buy groceries") {
		t.Errorf("Markdown output should contain data, got: %s", output)
	}
}

func TestWriterMarkdownFormatObject(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatMarkdown,
		Writer: &buf,
	})

	data := map[string]any{
		"id":     "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f",
		"title":  "Write release notes",
		"status": "todo",
	}
	err := w.OK(data)
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	// Should NOT be JSON
	if strings.Contains(output, `"ok":`) {
		t.Errorf("Markdown object output should not contain JSON, got: %s", output)
	}
	// Should contain key-value pairs
	if !strings.Contains(output, "Title") || !strings.Contains(output, "Write release notes") {
		t.Errorf("Markdown output should contain title field, got: %s", output)
	}
	if !strings.Contains(output, "Status") || !strings.Contains(output, "todo") {
		t.Errorf("Markdown output should contain status field, got: %s", output)
	}
}

func TestWriterMarkdownFormatBreadcrumbs(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatMarkdown,
		Writer: &buf,
	})

	data := map[string]any{"id": "1"}
	err := w.OK(data, WithBreadcrumbs(
		Breadcrumb{Action: "get", Cmd: "tcli get 1", Description: "View details"},
	))
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	// Should contain breadcrumb (literal Markdown uses "### Next" heading)
	if !strings.Contains(output, "Next") {
		t.Errorf("Markdown output should contain 'Next', got: %s", output)
	}
	if !strings.Contains(output, "tcli get 1") {
		t.Errorf("Markdown output should contain breadcrumb command, got: %s", output)
	}
}

func TestWriterMarkdownTableColumns(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatMarkdown,
		Writer: &buf,
	})

	data := []map[string]any{
		{
			"id":                "1",
			"title":             "Fix sign-in bug",
			"description":       "Users with expired sessions get a blank page",
			"status":            "in_progress",
			"priority":          float64(2),
			"due_at":            "2026-09-01T17:00:00Z",
			"estimated_minutes": float64(90),
			"tags":              []any{"auth", "bug"},
			"created_at":        "2026-08-20T10:00:00Z",
			"updated_at":        "2026-08-21T10:00:00Z",
		},
	}
	if err := w.OK(data); err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"| ID ", "Title", "Status", "Priority", "Due", "Tags", "2026-09-01 17:00", "auth, bug"} {
		if !strings.Contains(output, want) {
			t.Errorf("Markdown table missing %q, got: %s", want, output)
		}
	}
	for _, unwanted := range []string{"Description", "Minutes", "Created", "Updated"} {
		if strings.Contains(output, unwanted) {
			t.Errorf("Markdown table should not include %q, got: %s", unwanted, output)
		}
	}
}

func TestWriterMarkdownNoANSIWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatMarkdown,
		Writer: &buf, // bytes.Buffer is not a TTY
	})

	err := w.Err(ErrNotFound("todo", "pay rent"))
	if err != nil {
		t.Fatalf("Err() failed: %v", err)
	}

	output := buf.String()
	// Should NOT contain ANSI escape codes when not a TTY
	if strings.Contains(output, "\x1b[") {
		t.Errorf("Markdown output should not contain ANSI codes when not TTY, got: %q", output)
	}
	// Should still contain the error message
	if !strings.Contains(output, "Error:") {
		t.Errorf("Markdown output should contain 'Error:', got: %s", output)
	}
}

func TestWriterStyledEmitsANSI(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatStyled,
		Writer: &buf, // bytes.Buffer is not a TTY, but FormatStyled forces ANSI
	})

	err := w.Err(ErrNotFound("todo", "pay rent"))
	if err != nil {
		t.Fatalf("Err() failed: %v", err)
	}

	output := buf.String()
	// SHOULD contain ANSI escape codes when FormatStyled is used
	if !strings.Contains(output, "\x1b[") {
		t.Errorf("Styled output should contain ANSI codes, got: %q", output)
	}
	// Should still contain the error message
	if !strings.Contains(output, "Error:") {
		t.Errorf("Styled output should contain 'Error:', got: %s", output)
	}
}

func TestWriterMarkdownOutputsLiteralMarkdown(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatMarkdown,
		Writer: &buf,
	})

	err := w.Err(ErrNotFound("todo", "pay rent"))
	if err != nil {
		t.Fatalf("Err() failed: %v", err)
	}

	output := buf.String()
	// Should NOT contain ANSI escape codes
	if strings.Contains(output, "\x1b[") {
		t.Errorf("Markdown output should NOT contain ANSI codes, got: %q", output)
	}
	// Should contain Markdown syntax
	if !strings.Contains(output, "**Error:**") {
		t.Errorf("Markdown output should contain '**Error:**', got: %s", output)
	}
}

// =============================================================================
// Renderer Tests
// =============================================================================

func plainRenderer() *Renderer {
	var buf bytes.Buffer
	return NewRendererWithTheme(&buf, false, tui.DefaultTheme())
}

func styledRenderer() *Renderer {
	var buf bytes.Buffer
	return NewRendererWithTheme(&buf, true, tui.DefaultTheme())
}

func TestRendererTableColumns(t *testing.T) {
	r := plainRenderer()

	var buf bytes.Buffer
	resp := &Response{
		OK: true,
		Data: []map[string]any{
			{
				"id":                "1",
				"title":             "Fix sign-in bug",
				"description":       "Users with expired sessions get a blank page",
				"status":            "in_progress",
				"priority":          float64(2),
				"due_at":            "2026-09-01T17:00:00Z",
				"estimated_minutes": float64(90),
				"tags":              []any{"auth", "bug"},
				"created_at":        "2026-08-20T10:00:00Z",
				"updated_at":        "2026-08-21T10:00:00Z",
			},
		},
	}
	if err := r.RenderResponse(&buf, resp); err != nil {
		t.Fatalf("RenderResponse failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"ID", "Title", "Status", "Priority", "Due", "Tags", "2026-09-01 17:00", "auth, bug"} {
		if !strings.Contains(output, want) {
			t.Errorf("Table missing %q, got:\n%s", want, output)
		}
	}
	// Detail-only columns stay out of list tables
	for _, unwanted := range []string{"Description", "Minutes", "Created", "Updated"} {
		if strings.Contains(output, unwanted) {
			t.Errorf("Table should not include %q, got:\n%s", unwanted, output)
		}
	}
}

func TestRendererTableDropsColumnsToFit(t *testing.T) {
	// Full UUIDs push the table past the default 80 columns; the lowest
	// priority columns get dropped from the right.
	r := plainRenderer()

	var buf bytes.Buffer
	resp := &Response{
		OK: true,
		Data: []map[string]any{
			{
				"id":       "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f",
				"title":    "Fix sign-in bug",
				"status":   "in_progress",
				"priority": float64(2),
				"due_at":   "2026-09-01T17:00:00Z",
				"tags":     []any{"auth", "bug"},
			},
		},
	}
	if err := r.RenderResponse(&buf, resp); err != nil {
		t.Fatalf("RenderResponse failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f", "Fix sign-in bug", "Status", "Priority"} {
		if !strings.Contains(output, want) {
			t.Errorf("Table missing %q, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "2026-09-01") {
		t.Errorf("Due column should be dropped at width 80, got:\n%s", output)
	}
}

func TestRendererEmptyList(t *testing.T) {
	r := plainRenderer()

	var buf bytes.Buffer
	resp := &Response{OK: true, Data: []any{}}
	if err := r.RenderResponse(&buf, resp); err != nil {
		t.Fatalf("RenderResponse failed: %v", err)
	}

	if !strings.Contains(buf.String(), "(no results)") {
		t.Errorf("Empty list output = %q, want '(no results)'", buf.String())
	}
}

func TestRendererObjectOrderAndPlaceholders(t *testing.T) {
	r := plainRenderer()

	var buf bytes.Buffer
	resp := &Response{
		OK: true,
		Data: map[string]any{
			"id":                "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f",
			"title":             "Water the plants",
			"description":       nil,
			"status":            "todo",
			"priority":          nil,
			"due_at":            nil,
			"estimated_minutes": nil,
			"tags":              []any{},
			"created_at":        "2020-03-15T10:00:00Z",
			"updated_at":        nil,
		},
	}
	if err := r.RenderResponse(&buf, resp); err != nil {
		t.Fatalf("RenderResponse failed: %v", err)
	}

	output := buf.String()

	// Fields come out in detail order
	order := []string{"ID", "Title", "Description", "Status", "Priority", "Due", "Estimated Minutes", "Tags", "Created"}
	last := -1
	for _, label := range order {
		idx := strings.Index(output, label)
		if idx < 0 {
			t.Fatalf("Output missing label %q:\n%s", label, output)
		}
		if idx < last {
			t.Errorf("Label %q out of order:\n%s", label, output)
		}
		last = idx
	}

	// Missing values render the placeholder
	if strings.Count(output, "—") < 5 {
		t.Errorf("Expected placeholders for missing fields, got:\n%s", output)
	}
	if !strings.Contains(output, "Mar 15, 2020") {
		t.Errorf("Expected formatted created date, got:\n%s", output)
	}
}

func TestRendererObjectMultilineDescription(t *testing.T) {
	r := plainRenderer()

	var buf bytes.Buffer
	resp := &Response{
		OK: true,
		Data: map[string]any{
			"id":          "1",
			"title":       "Plan the move",
			"description": "Call the movers\nBox up the kitchen",
			"status":      "todo",
		},
	}
	if err := r.RenderResponse(&buf, resp); err != nil {
		t.Fatalf("RenderResponse failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Description:") {
		t.Errorf("Expected block label, got:\n%s", output)
	}
	if !strings.Contains(output, "\n  Call the movers") {
		t.Errorf("Expected indented description lines, got:\n%s", output)
	}
	if !strings.Contains(output, "\n  Box up the kitchen") {
		t.Errorf("Expected indented description lines, got:\n%s", output)
	}
}

func TestRendererObjectMarkdownDescription(t *testing.T) {
	r := styledRenderer()

	var buf bytes.Buffer
	resp := &Response{
		OK: true,
		Data: map[string]any{
			"id":          "1",
			"title":       "Release v2",
			"description": "# Steps\n\n- cut the branch\n- tag the build",
			"status":      "todo",
		},
	}
	if err := r.RenderResponse(&buf, resp); err != nil {
		t.Fatalf("RenderResponse failed: %v", err)
	}

	output := buf.String()
	// Markdown is rendered, but the text survives
	for _, want := range []string{"Steps", "cut the branch", "tag the build"} {
		if !strings.Contains(output, want) {
			t.Errorf("Rendered description missing %q, got:\n%s", want, output)
		}
	}
}

func TestRendererStatusStyles(t *testing.T) {
	r := styledRenderer()

	tests := []struct {
		name  string
		value any
		want  lipglossStyleOf
	}{
		{"done", "done", r.StatusDone.Render},
		{"done uppercase", "DONE", r.StatusDone.Render},
		{"in_progress", "in_progress", r.StatusWorking.Render},
		{"todo", "todo", r.StatusOther.Render},
		{"unrecognized", "blocked", r.StatusOther.Render},
		{"missing", nil, r.CellMuted.Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.statusCellStyle(tt.value).Render("x")
			if got != tt.want("x") {
				t.Errorf("statusCellStyle(%v) rendered %q, want %q", tt.value, got, tt.want("x"))
			}
		})
	}
}

func TestRendererPriorityStyles(t *testing.T) {
	r := styledRenderer()

	tests := []struct {
		name  string
		value any
		want  lipglossStyleOf
	}{
		{"p1", float64(1), r.PriorityHigh.Render},
		{"p2", float64(2), r.PriorityHigh.Render},
		{"p3", float64(3), r.PriorityMid.Render},
		{"p4", float64(4), r.PriorityLow.Render},
		{"p5 int", 5, r.PriorityLow.Render},
		{"missing", nil, r.CellMuted.Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.priorityCellStyle(tt.value).Render("x")
			if got != tt.want("x") {
				t.Errorf("priorityCellStyle(%v) rendered %q, want %q", tt.value, got, tt.want("x"))
			}
		})
	}
}

type lipglossStyleOf func(...string) string

func TestRendererBreadcrumbs(t *testing.T) {
	r := plainRenderer()

	var buf bytes.Buffer
	resp := &Response{
		OK:   true,
		Data: map[string]any{"id": "1"},
		Breadcrumbs: []Breadcrumb{
			{Action: "get", Cmd: "tcli get 1", Description: "View details"},
		},
	}
	if err := r.RenderResponse(&buf, resp); err != nil {
		t.Fatalf("RenderResponse failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Next:") {
		t.Errorf("Expected 'Next:' section, got:\n%s", output)
	}
	if !strings.Contains(output, "tcli get 1") {
		t.Errorf("Expected breadcrumb command, got:\n%s", output)
	}
}

func TestRendererStats(t *testing.T) {
	r := plainRenderer()

	var buf bytes.Buffer
	resp := &Response{
		OK:   true,
		Data: map[string]any{"id": "1"},
		Meta: map[string]any{
			"stats": map[string]any{
				"requests":   3,
				"cache_hits": 1,
				"latency_ms": int64(450),
			},
		},
	}
	if err := r.RenderResponse(&buf, resp); err != nil {
		t.Fatalf("RenderResponse failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Stats:") {
		t.Errorf("Expected stats line, got:\n%s", output)
	}
	if !strings.Contains(output, "3 requests") {
		t.Errorf("Expected request count, got:\n%s", output)
	}
	if !strings.Contains(output, "1 cached") {
		t.Errorf("Expected cache count, got:\n%s", output)
	}
}

func TestRendererErrorWithHint(t *testing.T) {
	r := plainRenderer()

	var buf bytes.Buffer
	resp := &ErrorResponse{
		OK:    false,
		Error: "todo not found: pay rent",
		Code:  CodeNotFound,
		Hint:  "run: tcli list",
	}
	if err := r.RenderError(&buf, resp); err != nil {
		t.Fatalf("RenderError failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Error: todo not found: pay rent") {
		t.Errorf("Expected error line, got:\n%s", output)
	}
	if !strings.Contains(output, "Hint: run: tcli list") {
		t.Errorf("Expected hint line, got:\n%s", output)
	}
}

// =============================================================================
// Format Constants Tests
// =============================================================================

func TestFormatConstants(t *testing.T) {
	// Verify format constants have distinct values
	formats := map[Format]string{
		FormatAuto:     "auto",
		FormatJSON:     "json",
		FormatMarkdown: "markdown",
		FormatStyled:   "styled",
		FormatQuiet:    "quiet",
		FormatIDs:      "ids",
		FormatCount:    "count",
	}

	seen := make(map[Format]bool)
	for format := range formats {
		if seen[format] {
			t.Errorf("Duplicate format value: %d", format)
		}
		seen[format] = true
	}
}

// =============================================================================
// Edge Case Tests
// =============================================================================

func TestWriterIDsFormatWithSingleItem(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatIDs,
		Writer: &buf,
	})

	data := map[string]any{"id": "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f", "title": "Single"}
	err := w.OK(data)
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	if output != "3e8a1f2b-7c4d-4a9b-8f6e-2d5c7b9a1e3f\n" {
		t.Errorf("IDs output for single item = %q", output)
	}
}

func TestWriterIDsFormatWithNoID(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{
		Format: FormatIDs,
		Writer: &buf,
	})

	data := []map[string]any{
		{"title": "No ID"},
	}
	err := w.OK(data)
	if err != nil {
		t.Fatalf("OK() failed: %v", err)
	}

	output := buf.String()
	if output != "" {
		t.Errorf("IDs output for item without id = %q, want empty", output)
	}
}

func TestErrorWithHTTPStatus(t *testing.T) {
	testCases := []struct {
		name           string
		err            *Error
		expectedStatus int
	}{
		{"forbidden", ErrForbidden("x"), 403},
		{"forbidden key", ErrForbiddenKey(), 403},
		{"validation", ErrValidation([]string{"x"}), 422},
		{"rate limit", ErrRateLimit(60), 429},
		{"api error", ErrAPI(500, "x"), 500},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.HTTPStatus != tc.expectedStatus {
				t.Errorf("HTTPStatus = %d, want %d", tc.err.HTTPStatus, tc.expectedStatus)
			}
		})
	}
}

func TestErrorRetryable(t *testing.T) {
	retryable := []struct {
		name string
		err  *Error
	}{
		{"rate limit", ErrRateLimit(60)},
		{"network", ErrNetwork(errors.New("connection failed"))},
	}

	for _, tc := range retryable {
		t.Run(tc.name+" is retryable", func(t *testing.T) {
			if !tc.err.Retryable {
				t.Error("Expected error to be retryable")
			}
		})
	}

	nonRetryable := []struct {
		name string
		err  *Error
	}{
		{"not found", ErrNotFound("x", "y")},
		{"auth", ErrAuth("x")},
		{"forbidden", ErrForbidden("x")},
		{"usage", ErrUsage("x")},
		{"validation", ErrValidation([]string{"x"})},
		{"ambiguous", ErrAmbiguous("x", nil)},
		{"cancelled", ErrCancelled()},
	}

	for _, tc := range nonRetryable {
		t.Run(tc.name+" is not retryable", func(t *testing.T) {
			if tc.err.Retryable {
				t.Error("Expected error not to be retryable")
			}
		})
	}
}
