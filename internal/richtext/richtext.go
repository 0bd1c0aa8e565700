// Package richtext renders Markdown for terminal display.
//
// Todo descriptions are stored as plain text but frequently contain
// Markdown. Styled detail views run them through glamour; every other
// format (JSON, Markdown, quiet) passes them through untouched.
package richtext

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders Markdown content for terminal display using glamour.
func RenderMarkdown(markdown string) (string, error) {
	return RenderMarkdownWithWidth(markdown, 80)
}

// RenderMarkdownWithWidth renders Markdown with a specific word-wrap width.
func RenderMarkdownWithWidth(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

// IsMarkdown attempts to detect if the input string contains Markdown.
func IsMarkdown(s string) bool {
	if s == "" {
		return false
	}

	// Check for common Markdown patterns
	patterns := []string{
		`(?m)^#{1,6}\s`,       // Headings
		`\*\*[^*]+\*\*`,       // Bold
		`\*[^*]+\*`,           // Italic
		`\[[^\]]+\]\([^)]+\)`, // Links
		"```",                 // Code blocks
		`(?m)^[-*+]\s`,        // Unordered list
		`(?m)^\d+\.\s`,        // Ordered list
		`(?m)^>\s`,            // Blockquote
	}

	for _, pattern := range patterns {
		if matched, _ := regexp.MatchString(pattern, s); matched {
			return true
		}
	}

	return false
}
