package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanNIS normalizes an institution-issued student number: whitespace and
// separator hyphens are dropped, so a number read off a printed ID card
// ("2026 0042", "2026-0042") matches the stored form.
func CleanNIS(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '-':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
