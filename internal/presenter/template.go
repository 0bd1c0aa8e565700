package presenter

import (
	"bytes"
	"fmt"
	"text/template"
)

// RenderTemplate executes a Go text/template with the given data.
// Returns the rendered string, or empty string on error.
func RenderTemplate(tmpl string, data map[string]any) string {
	t, err := template.New("").Parse(tmpl)
	if err != nil {
		return ""
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

// RenderHeadline renders the schema's headline for the data, falling back
// to the identity label field when no template applies.
func RenderHeadline(schema *EntitySchema, data map[string]any) string {
	if spec, ok := schema.Headline["default"]; ok {
		if rendered := RenderTemplate(spec.Template, data); rendered != "" {
			return rendered
		}
	}

	if label := schema.Identity.Label; label != "" {
		if v, ok := data[label]; ok {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}
