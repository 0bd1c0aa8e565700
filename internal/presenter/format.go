package presenter

import (
	"fmt"
	"strings"
	"time"
)

// Service timestamps arrive offset-less; dates may be bare.
var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatField formats a field value for display according to its spec.
// Empty and nil values format to "".
func FormatField(spec FieldSpec, val any, loc Locale) string {
	var out string
	switch spec.Format {
	case "date":
		out = formatDate(val, loc)
	case "relative_time":
		out = formatRelativeTime(val)
	case "duration":
		out = formatDuration(val)
	case "tags":
		out = formatTags(val)
	case "label":
		out = formatLabel(spec, val)
	default:
		out = formatText(val)
	}

	if out == "" {
		return ""
	}
	return spec.Prefix + out
}

// formatDate renders a timestamp as a locale-appropriate date, keeping the
// clock time when the value carries one.
func formatDate(val any, loc Locale) string {
	t, ok := parseTime(val)
	if !ok {
		return formatText(val)
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return loc.FormatDate(t)
	}
	return loc.FormatDate(t) + t.Format(" 15:04")
}

// formatRelativeTime renders a timestamp as "2 hours ago" style text.
// Future and distant timestamps fall back to the plain date.
func formatRelativeTime(val any) string {
	t, ok := parseTime(val)
	if !ok {
		return formatText(val)
	}

	diff := time.Since(t)
	if diff < 0 {
		return t.Format("Jan 2, 2006")
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}

// formatDuration renders a minute count as "45m" or "1h 30m".
func formatDuration(val any) string {
	mins, ok := toInt(val)
	if !ok || mins <= 0 {
		return ""
	}
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins%60 == 0 {
		return fmt.Sprintf("%dh", mins/60)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// formatTags joins a tag list with commas.
func formatTags(val any) string {
	switch v := val.(type) {
	case []string:
		return strings.Join(v, ", ")
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return strings.Join(items, ", ")
	}
	return formatText(val)
}

// formatLabel maps a value through the spec's label table.
func formatLabel(spec FieldSpec, val any) string {
	text := formatText(val)
	if label, ok := spec.Labels[text]; ok {
		return label
	}
	return text
}

func formatText(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func parseTime(val any) (time.Time, bool) {
	str, ok := val.(string)
	if !ok || str == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
