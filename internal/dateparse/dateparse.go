// Package dateparse parses command line date arguments.
package dateparse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SupportedFormats lists the accepted layouts, for help text and error
// messages.
const SupportedFormats = "YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS, MM/DD/YYYY, MM-DD-YYYY"

// ErrInvalidFormat reports input that matches none of the supported
// layouts. Errors returned by Parse wrap it.
var ErrInvalidFormat = errors.New("invalid date format")

// isoLayouts are tried in order for ISO 8601 date-times. The offset-less
// layouts parse in UTC, so results never depend on the local zone.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
}

// Parse parses a date argument and returns the moment it names.
// Supported formats, tried in order:
//   - ISO 8601 date-time: 2026-09-01T17:30:00, with optional fractional
//     seconds and offset (a trailing Z means UTC)
//   - YYYY-MM-DD (midnight)
//   - MM/DD/YYYY (midnight, unpadded month and day accepted)
//   - MM-DD-YYYY (midnight)
//
// Inputs without an offset parse in UTC, never in the local zone.
// Calendar values are validated: month 13 or day 40 is an error, not a
// wrapped date.
func Parse(input string) (time.Time, error) {
	s := strings.TrimSpace(input)

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Bare date. The length and leading-digit gates keep MM-DD-YYYY
	// inputs out of this branch.
	if len(s) == 10 && strings.Count(s, "-") == 2 && allDigits(s[:4]) {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, nil
		}
	}

	// US format with slashes.
	if strings.Contains(s, "/") && len(strings.Split(s, "/")) == 3 {
		if t, err := time.Parse("1/2/2006", s); err == nil {
			return t, nil
		}
	}

	// US format with dashes, distinguished from ISO by the year not
	// leading.
	if len(s) == 10 && strings.Contains(s, "-") && !allDigits(s[:4]) {
		if t, err := time.Parse("1-2-2006", s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w %q (supported: %s)", ErrInvalidFormat, s, SupportedFormats)
}

// IsValid reports whether input parses under any supported format.
func IsValid(input string) bool {
	_, err := Parse(input)
	return err == nil
}

// MustParse parses a date and panics if it fails.
// Use this only for known-good inputs like constants.
func MustParse(input string) time.Time {
	t, err := Parse(input)
	if err != nil {
		panic("dateparse: " + err.Error())
	}
	return t
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
