// Package utils provides common utility functions.
package utils

import (
	"strings"
	"unicode/utf8"
)

// StringHelper provides string utility functions for raw source values.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// TrimWhitespace removes leading and trailing whitespace.
func (s *StringHelper) TrimWhitespace(str string) string {
	return strings.TrimSpace(str)
}

// TruncateString shortens str to at most maxRunes runes, appending "..."
// when it was cut. Used to keep offending values readable in error messages.
func (s *StringHelper) TruncateString(str string, maxRunes int) string {
	if utf8.RuneCountInString(str) <= maxRunes {
		return str
	}

	runes := []rune(str)

	return string(runes[:maxRunes]) + "..."
}
