package names

import "strings"

// Score rates how well a query matches a todo title, from 0 to 100.
// Both sides are trimmed and compared case-insensitively. Checks run in
// order, most specific first:
//  1. Exact match: 100
//  2. Title starts with query: 90
//  3. Title contains query: 80
//  4. Word overlap: 70 when every query word appears in the title,
//     50-70 when more than half do
//  5. Shared unique characters, for queries with 3 or more distinct
//     characters: up to 40
//
// Word matching is whole-word; the character check is the last resort
// and never scores above 40.
func Score(query, title string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(strings.TrimSpace(title))

	if q == t {
		return 100.0
	}
	if strings.HasPrefix(t, q) {
		return 90.0
	}
	if strings.Contains(t, q) {
		return 80.0
	}

	if words := strings.Fields(q); len(words) > 0 {
		titleWords := make(map[string]bool)
		for _, w := range strings.Fields(t) {
			titleWords[w] = true
		}

		matching := 0
		for _, w := range words {
			if titleWords[w] {
				matching++
			}
		}

		ratio := float64(matching) / float64(len(words))
		if ratio == 1.0 {
			// Full coverage scores a flat 70, above anything the
			// interpolation below can reach.
			return 70.0
		}
		if ratio > 0.5 {
			return 50.0 + (ratio-0.5)*40.0
		}
	}

	queryChars := uniqueChars(q)
	if len(queryChars) >= 3 {
		titleChars := uniqueChars(t)
		common := 0
		for c := range queryChars {
			if titleChars[c] {
				common++
			}
		}
		if charRatio := float64(common) / float64(len(queryChars)); charRatio >= 0.7 {
			return charRatio * 40.0
		}
	}

	return 0.0
}

// uniqueChars returns the set of characters in s, spaces removed.
func uniqueChars(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, c := range strings.ReplaceAll(s, " ", "") {
		set[c] = true
	}
	return set
}
