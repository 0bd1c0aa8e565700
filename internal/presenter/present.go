package presenter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tapi/tcli/internal/models"
	"github.com/tapi/tcli/internal/tui"
)

// Candidates renders a numbered, schema-driven list of todos to w, one
// line per candidate: index, headline, and the compact-view detail
// fields. Returns false when no schema is available so the caller can
// fall back to its own rendering.
func Candidates(w io.Writer, todos []models.Todo, styled bool) bool {
	schema := LookupByName("todo")
	if schema == nil {
		return false
	}

	loc := DetectLocale()
	var styles *tui.Styles
	if styled {
		styles = tui.NewStyles()
	}

	for i, todo := range todos {
		data, ok := normalize(todo)
		if !ok {
			return false
		}

		headline := RenderHeadline(schema, data)
		if headline == "" {
			headline = todo.Title
		}

		detail := compactDetail(schema, data, loc)

		num := fmt.Sprintf("%d.", i+1)
		if styles != nil {
			num = styles.Bold.Render(num)
			if detail != "" {
				detail = styles.Muted.Render(detail)
			}
		}

		if detail != "" {
			fmt.Fprintf(w, "  %s %s  %s\n", num, headline, detail)
		} else {
			fmt.Fprintf(w, "  %s %s\n", num, headline)
		}
	}
	return true
}

// compactDetail formats the compact-view fields into a single
// parenthesized fragment, skipping empty values.
func compactDetail(schema *EntitySchema, data map[string]any, loc Locale) string {
	var parts []string
	for _, field := range schema.Views.Compact.Show {
		val, ok := data[field]
		if !ok || val == nil {
			continue
		}
		spec := schema.Fields[field]
		if formatted := FormatField(spec, val, loc); formatted != "" {
			parts = append(parts, formatted)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// normalize converts a todo to the generic map shape schemas address,
// using its JSON field names.
func normalize(todo models.Todo) (map[string]any, bool) {
	raw, err := json.Marshal(todo)
	if err != nil {
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return data, true
}
