package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConfirmRemoval pins the strict confirmation contract: only the
// literal "yes" confirms a model removal.
func TestConfirmRemoval(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "literal yes", input: "yes\n", want: true},
		{name: "yes with surrounding whitespace", input: "  yes  \n", want: true},
		{name: "bare y is not enough", input: "y\n", want: false},
		{name: "uppercase YES is not enough", input: "YES\n", want: false},
		{name: "no", input: "no\n", want: false},
		{name: "empty line", input: "\n", want: false},
		{name: "EOF without input", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confirmRemoval(strings.NewReader(tt.input), "llama3.1:8b")
			assert.Equal(t, tt.want, got)
		})
	}
}
