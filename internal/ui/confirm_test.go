package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirm(t *testing.T) {
	tests := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		" yes ":   true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"maybe\n": false,
	}
	for in, want := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(in), &out, "Send transaction?")
		assert.Equal(t, want, got, "input %q", in)
		assert.Contains(t, out.String(), "Send transaction?")
	}
}
