package validation

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength returns the message content cap in runes, configurable via
// MAX_MESSAGE_LENGTH.
func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

// ValidateContent trims surrounding whitespace and enforces the rune-length
// cap. The bool is false when the trimmed content is over the cap; content is
// never silently truncated.
func ValidateContent(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if max > 0 && utf8.RuneCountInString(s) > max {
		return s, false
	}
	return s, true
}

// ParseLimit clamps a client-supplied page size to [1, max], falling back to
// def when the input is absent or malformed.
func ParseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParseUintParam parses a required numeric identifier.
func ParseUintParam(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
