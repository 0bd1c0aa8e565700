package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTraceWriter_WriteOperationStart(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	op := OperationInfo{Service: "Todos", Operation: "Complete"}
	w.WriteOperationStart(op)

	output := buf.String()
	if !strings.Contains(output, "Calling Todos.Complete") {
		t.Errorf("expected 'Calling Todos.Complete', got: %s", output)
	}
	if !strings.HasPrefix(output, "[") {
		t.Errorf("expected timestamp prefix, got: %s", output)
	}
}

func TestTraceWriter_WriteOperationEnd(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	op := OperationInfo{Service: "Todos", Operation: "List"}
	w.WriteOperationEnd(op, nil, 50*time.Millisecond)

	output := buf.String()
	if !strings.Contains(output, "Completed Todos.List") {
		t.Errorf("expected 'Completed Todos.List', got: %s", output)
	}
	if !strings.Contains(output, "(50ms)") {
		t.Errorf("expected duration, got: %s", output)
	}
}

func TestTraceWriter_WriteOperationEnd_Error(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	op := OperationInfo{Service: "Todos", Operation: "Create"}
	w.WriteOperationEnd(op, errors.New("forbidden"), 50*time.Millisecond)

	output := buf.String()
	if !strings.Contains(output, "Failed Todos.Create") {
		t.Errorf("expected 'Failed Todos.Create', got: %s", output)
	}
	if !strings.Contains(output, "forbidden") {
		t.Errorf("expected error message, got: %s", output)
	}
}

func TestTraceWriter_WriteRequestStart(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	info := RequestInfo{Method: "GET", URL: "/todos/", Attempt: 1}
	w.WriteRequestStart(info)

	output := buf.String()
	if !strings.Contains(output, "-> GET /todos/") {
		t.Errorf("expected request line, got: %s", output)
	}
}

func TestTraceWriter_WriteRequestStart_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	info := RequestInfo{Method: "GET", URL: "https://api.tapi.dev/todos/?api_key=sk-secret&status=todo", Attempt: 1}
	w.WriteRequestStart(info)

	output := buf.String()
	if strings.Contains(output, "sk-secret") {
		t.Errorf("expected api_key to be redacted, got: %s", output)
	}
	if !strings.Contains(output, "REDACTED") {
		t.Errorf("expected REDACTED marker, got: %s", output)
	}
	if !strings.Contains(output, "status=todo") {
		t.Errorf("expected non-sensitive params preserved, got: %s", output)
	}
}

func TestTraceWriter_WriteRequestEnd(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	info := RequestInfo{Method: "GET", URL: "/todos/", Attempt: 1}
	result := RequestResult{StatusCode: 200, Duration: 45 * time.Millisecond}
	w.WriteRequestEnd(info, result)

	output := buf.String()
	if !strings.Contains(output, "<- 200") {
		t.Errorf("expected response line, got: %s", output)
	}
	if !strings.Contains(output, "(45ms)") {
		t.Errorf("expected duration, got: %s", output)
	}
}

func TestTraceWriter_WriteRequestEnd_Cached(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	info := RequestInfo{Method: "GET", URL: "/todos/", Attempt: 1}
	result := RequestResult{StatusCode: 200, FromCache: true}
	w.WriteRequestEnd(info, result)

	output := buf.String()
	if !strings.Contains(output, "(cached)") {
		t.Errorf("expected cached indicator, got: %s", output)
	}
}

func TestTraceWriter_WriteRequestEnd_Error(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	info := RequestInfo{Method: "POST", URL: "/todos/", Attempt: 1}
	result := RequestResult{Error: errors.New("connection refused")}
	w.WriteRequestEnd(info, result)

	output := buf.String()
	if !strings.Contains(output, "ERROR") {
		t.Errorf("expected ERROR, got: %s", output)
	}
	if !strings.Contains(output, "connection refused") {
		t.Errorf("expected error message, got: %s", output)
	}
}

func TestTraceWriter_WriteRetry(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	info := RequestInfo{Method: "GET", URL: "/todos/", Attempt: 2}
	w.WriteRetry(info, 2, errors.New("timeout"))

	output := buf.String()
	if !strings.Contains(output, "RETRY #2") {
		t.Errorf("expected 'RETRY #2', got: %s", output)
	}
	if !strings.Contains(output, "timeout") {
		t.Errorf("expected error message, got: %s", output)
	}
}

func TestTraceWriter_Timestamps(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	op1 := OperationInfo{Service: "Test", Operation: "Op1"}
	op2 := OperationInfo{Service: "Test", Operation: "Op2"}
	w.WriteOperationStart(op1)
	time.Sleep(10 * time.Millisecond)
	w.WriteOperationStart(op2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	// Format: [0.123s] ...
	if !strings.HasPrefix(lines[0], "[0.") {
		t.Errorf("expected timestamp prefix on line 1: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[0.") {
		t.Errorf("expected timestamp prefix on line 2: %s", lines[1])
	}
}

func TestTraceWriter_Reset(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	op := OperationInfo{Service: "Test", Operation: "Op"}
	w.WriteOperationStart(op)
	firstOutput := buf.String()

	time.Sleep(50 * time.Millisecond)
	buf.Reset()
	w.Reset()

	// Write after reset - timestamp should be near zero again
	w.WriteOperationStart(op)
	secondOutput := buf.String()

	if !strings.HasPrefix(firstOutput, "[0.0") {
		t.Errorf("first output should start with near-zero timestamp: %s", firstOutput)
	}
	if !strings.HasPrefix(secondOutput, "[0.0") {
		t.Errorf("second output after reset should start with near-zero timestamp: %s", secondOutput)
	}
}

func TestScrubURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no query",
			in:   "https://api.tapi.dev/todos/",
			want: "https://api.tapi.dev/todos/",
		},
		{
			name: "safe params untouched",
			in:   "https://api.tapi.dev/todos/?status=todo&limit=10",
			want: "https://api.tapi.dev/todos/?status=todo&limit=10",
		},
		{
			name: "token redacted",
			in:   "https://api.tapi.dev/todos/?token=abc123",
			want: "https://api.tapi.dev/todos/?token=%5BREDACTED%5D",
		},
		{
			name: "case insensitive",
			in:   "https://api.tapi.dev/todos/?API_KEY=abc123",
			want: "https://api.tapi.dev/todos/?API_KEY=%5BREDACTED%5D",
		},
		{
			name: "unparseable",
			in:   "http://[::1:bad",
			want: "[unparseable URL]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrubURL(tt.in); got != tt.want {
				t.Errorf("scrubURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
