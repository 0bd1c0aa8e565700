package output

import (
	"bytes"
	"encoding/json"
	"testing"
)

// BenchmarkNormalizeData benchmarks the data normalization function
func BenchmarkNormalizeData(b *testing.B) {
	b.Run("json_raw_message_array", func(b *testing.B) {
		raw := json.RawMessage(`[{"id":"1","title":"A"},{"id":"2","title":"B"},{"id":"3","title":"C"}]`)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			NormalizeData(raw)
		}
	})

	b.Run("json_raw_message_object", func(b *testing.B) {
		raw := json.RawMessage(`{"id":"3e8a1f2b","title":"Write release notes","status":"todo"}`)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			NormalizeData(raw)
		}
	})

	b.Run("already_normalized_slice", func(b *testing.B) {
		data := []map[string]any{
			{"id": "1", "title": "A"},
			{"id": "2", "title": "B"},
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			NormalizeData(data)
		}
	})

	b.Run("already_normalized_map", func(b *testing.B) {
		data := map[string]any{"id": "1", "title": "Test"}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			NormalizeData(data)
		}
	})

	b.Run("struct_to_map", func(b *testing.B) {
		type Item struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		}
		data := Item{ID: "1", Title: "Test"}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			NormalizeData(data)
		}
	})

	b.Run("large_array", func(b *testing.B) {
		items := make([]map[string]any, 50)
		for i := 0; i < 50; i++ {
			items[i] = map[string]any{"id": i, "title": "Item"}
		}
		data, _ := json.Marshal(items)
		raw := json.RawMessage(data)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			NormalizeData(raw)
		}
	})

	b.Run("nil", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			NormalizeData(nil)
		}
	})
}

// BenchmarkNormalizeUnmarshaled benchmarks array type conversion
func BenchmarkNormalizeUnmarshaled(b *testing.B) {
	b.Run("all_maps", func(b *testing.B) {
		data := []any{
			map[string]any{"id": "1", "title": "A"},
			map[string]any{"id": "2", "title": "B"},
			map[string]any{"id": "3", "title": "C"},
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			normalizeUnmarshaled(data)
		}
	})

	b.Run("mixed_types", func(b *testing.B) {
		data := []any{
			map[string]any{"id": "1"},
			"string value",
			42,
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			normalizeUnmarshaled(data)
		}
	})

	b.Run("empty_array", func(b *testing.B) {
		data := []any{}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			normalizeUnmarshaled(data)
		}
	})

	b.Run("non_array", func(b *testing.B) {
		data := map[string]any{"id": "1"}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			normalizeUnmarshaled(data)
		}
	})
}

// BenchmarkWriteJSON benchmarks JSON output writing
func BenchmarkWriteJSON(b *testing.B) {
	b.Run("simple_response", func(b *testing.B) {
		buf := &bytes.Buffer{}
		w := New(Options{Writer: buf, Format: FormatJSON})
		data := map[string]any{"id": "1", "title": "Test"}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			buf.Reset()
			w.OK(data)
		}
	})

	b.Run("array_response", func(b *testing.B) {
		buf := &bytes.Buffer{}
		w := New(Options{Writer: buf, Format: FormatJSON})
		data := []map[string]any{
			{"id": "1", "title": "A"},
			{"id": "2", "title": "B"},
			{"id": "3", "title": "C"},
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			buf.Reset()
			w.OK(data)
		}
	})

	b.Run("with_options", func(b *testing.B) {
		buf := &bytes.Buffer{}
		w := New(Options{Writer: buf, Format: FormatJSON})
		data := map[string]any{"id": "1", "title": "Test"}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			buf.Reset()
			w.OK(data,
				WithSummary("Test summary"),
				WithContext("todo_id", "1"),
				WithMeta("count", 1),
			)
		}
	})

	b.Run("large_response", func(b *testing.B) {
		buf := &bytes.Buffer{}
		w := New(Options{Writer: buf, Format: FormatJSON})
		items := make([]map[string]any, 100)
		for i := 0; i < 100; i++ {
			items[i] = map[string]any{
				"id":          i + 1,
				"title":       "A reasonably long todo item title for realistic benchmarking",
				"status":      "todo",
				"due_at":      "2026-12-31T17:00:00Z",
				"description": "A longer description field that might contain more text",
			}
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			buf.Reset()
			w.OK(items)
		}
	})
}

// BenchmarkWriteIDs benchmarks ID-only output
func BenchmarkWriteIDs(b *testing.B) {
	buf := &bytes.Buffer{}
	w := New(Options{Writer: buf, Format: FormatIDs})

	b.Run("single", func(b *testing.B) {
		data := map[string]any{"id": "1", "title": "Test"}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			buf.Reset()
			w.OK(data)
		}
	})

	b.Run("multiple", func(b *testing.B) {
		data := []map[string]any{
			{"id": "1", "title": "A"},
			{"id": "2", "title": "B"},
			{"id": "3", "title": "C"},
			{"id": "4", "title": "D"},
			{"id": "5", "title": "E"},
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			buf.Reset()
			w.OK(data)
		}
	})
}

// BenchmarkWriteCount benchmarks count output
func BenchmarkWriteCount(b *testing.B) {
	buf := &bytes.Buffer{}
	w := New(Options{Writer: buf, Format: FormatCount})

	b.Run("array", func(b *testing.B) {
		data := []map[string]any{
			{"id": "1"}, {"id": "2"}, {"id": "3"}, {"id": "4"}, {"id": "5"},
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			buf.Reset()
			w.OK(data)
		}
	})

	b.Run("single", func(b *testing.B) {
		data := map[string]any{"id": "1"}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			buf.Reset()
			w.OK(data)
		}
	})
}

// BenchmarkApplyJQ benchmarks jq filter evaluation
func BenchmarkApplyJQ(b *testing.B) {
	data := []map[string]any{
		{"id": "1", "title": "A", "status": "todo"},
		{"id": "2", "title": "B", "status": "done"},
		{"id": "3", "title": "C", "status": "todo"},
	}

	b.Run("projection", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ApplyJQ(".[] | .title", data)
		}
	})

	b.Run("select", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ApplyJQ("[.[] | select(.status == \"todo\")]", data)
		}
	})
}

// BenchmarkErrorOutput benchmarks error response generation
func BenchmarkErrorOutput(b *testing.B) {
	buf := &bytes.Buffer{}
	w := New(Options{Writer: buf, Format: FormatJSON})
	err := ErrNotFound("todo", "pay rent")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		w.Err(err)
	}
}
