package validation

import (
	"os"
	"strings"
	"testing"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
		fits     bool
	}{
		{"Trims whitespace", "  hello  ", 100, "hello", true},
		{"Whitespace only becomes empty", " \n\t ", 100, "", true},
		{"At the limit", "abc", 3, "abc", true},
		{"Over the limit rejected", "abcd", 3, "abcd", false},
		{"Trimming can bring it under", "  abc  ", 3, "abc", true},
		{"Multi-byte counts runes not bytes", "héllo", 5, "héllo", true},
		{"Zero max accepts everything", strings.Repeat("x", 50), 0, strings.Repeat("x", 50), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fits := ValidateContent(tt.input, tt.max)
			if got != tt.expected || fits != tt.fits {
				t.Errorf("ValidateContent(%q, %d) = (%q, %v), want (%q, %v)", tt.input, tt.max, got, fits, tt.expected, tt.fits)
			}
		})
	}
}

func TestMaxMessageLength(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		expected int
	}{
		{"Default", "", 4000},
		{"Custom", "500", 500},
		{"Invalid falls back", "not-a-number", 4000},
		{"Non-positive falls back", "0", 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env == "" {
				os.Unsetenv("MAX_MESSAGE_LENGTH")
			} else {
				os.Setenv("MAX_MESSAGE_LENGTH", tt.env)
			}
			defer os.Unsetenv("MAX_MESSAGE_LENGTH")

			if got := MaxMessageLength(); got != tt.expected {
				t.Errorf("MaxMessageLength() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"Empty uses default", "", 50},
		{"Valid", "25", 25},
		{"Above max clamps", "500", 100},
		{"Zero uses default", "0", 50},
		{"Negative uses default", "-3", 50},
		{"Garbage uses default", "abc", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLimit(tt.raw, 50, 100); got != tt.expected {
				t.Errorf("ParseLimit(%q) = %d, want %d", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestParseUintParam(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected uint
		ok       bool
	}{
		{"Valid", "42", 42, true},
		{"Zero rejected", "0", 0, false},
		{"Negative rejected", "-1", 0, false},
		{"Garbage rejected", "abc", 0, false},
		{"Empty rejected", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseUintParam(tt.raw)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseUintParam(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
