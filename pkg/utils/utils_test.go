package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal string", "hello", "hello"},
		{"with control chars", "hello\x00world", "helloworld"},
		{"with newline", "hello\nworld", "helloworld"},
		{"with escape sequence", "ffmpeg\x1b[31m", "ffmpeg[31m"},
		{"with whitespace", "  hello  ", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeString(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string", "hello", 10, "hello"},
		{"long string", "hello world", 5, "he..."},
		{"very short max", "hello", 2, "he"},
		{"exact length", "hello", 5, "hello"},
		{"multibyte", "héllo wörld", 6, "hél..."},
		{"zero", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateString(tt.input, tt.maxLen))
		})
	}
}

func TestLogSafe(t *testing.T) {
	agent := "Mozilla/5.0\r\nfake: entry" + strings.Repeat("x", 500)

	out := LogSafe(agent, 64)
	assert.Equal(t, 64, len([]rune(out)))
	assert.NotContains(t, out, "\n")
	assert.True(t, strings.HasPrefix(out, "Mozilla/5.0fake: entry"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{500 * time.Millisecond, "500ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
		{50 * time.Hour, "2d2h"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.input))
	}
}
