package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringHelper(t *testing.T) {
	h := NewStringHelper()

	assert.Equal(t, "Route 22", h.TrimWhitespace("  Route 22\t"))
	assert.Equal(t, "", h.TrimWhitespace(" \t\n"))
}

func TestStringHelper_TruncateString(t *testing.T) {
	h := NewStringHelper()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "abc", max: 5, want: "abc"},
		{name: "exact", in: "abcde", max: 5, want: "abcde"},
		{name: "cut", in: "abcdef", max: 3, want: "abc..."},
		{name: "multibyte", in: "ÄÖÜäöü", max: 2, want: "ÄÖ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.TruncateString(tt.in, tt.max))
		})
	}
}
