package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString drops control characters, newlines included, and trims
// surrounding whitespace.
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

// TruncateString truncates s to at most maxLen runes, marking the cut
// with "..." when there is room for it.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// LogSafe prepares a client supplied string (user agent, form input) for a
// log field.
func LogSafe(s string, maxLen int) string {
	return TruncateString(SanitizeString(s), maxLen)
}
