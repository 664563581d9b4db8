package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// menuSession runs the menu against scripted input and returns the
// rendered output.
func menuSession(t *testing.T, input string, opts []menuOption) string {
	t.Helper()
	var out strings.Builder
	err := runMenu(context.Background(), bufio.NewReader(strings.NewReader(input)), &out, opts)
	require.NoError(t, err, "the menu loop itself must not fail")
	return out.String()
}

func TestRunMenuExit(t *testing.T) {
	out := menuSession(t, "0\n", nil)
	assert.Contains(t, out, "0) Exit")
	assert.Contains(t, out, "Bye.")
}

func TestRunMenuEOFExits(t *testing.T) {
	out := menuSession(t, "", nil)
	assert.NotContains(t, out, "Invalid option")
}

func TestRunMenuInvalidOption(t *testing.T) {
	out := menuSession(t, "99\n0\n", []menuOption{
		{Key: "1", Label: "noop", Run: func(context.Context) error { return nil }},
	})
	assert.Contains(t, out, `Invalid option: "99"`)
	// The loop must continue to the clean exit afterwards.
	assert.Contains(t, out, "Bye.")
}

func TestRunMenuDispatch(t *testing.T) {
	ran := 0
	opts := []menuOption{
		{Key: "1", Label: "first", Run: func(context.Context) error { ran++; return nil }},
		{Key: "2", Label: "second", Run: func(context.Context) error {
			t.Fatal("wrong option dispatched")
			return nil
		}},
	}

	// Select 1, press Enter at the continue prompt, then exit.
	out := menuSession(t, "1\n\n0\n", opts)
	assert.Equal(t, 1, ran)
	assert.Contains(t, out, "Press Enter to continue...")
}

func TestRunMenuErrorReturnsToLoop(t *testing.T) {
	calls := 0
	opts := []menuOption{
		{Key: "1", Label: "failing", Run: func(context.Context) error {
			calls++
			return errors.New("daemon unreachable")
		}},
	}

	// Run the failing option twice, then exit: a handler error must not
	// end the session.
	out := menuSession(t, "1\n\n1\n\n0\n", opts)
	assert.Equal(t, 2, calls)
	assert.Contains(t, out, "Error: daemon unreachable")
	assert.Contains(t, out, "Bye.")
}

func TestRunMenuWhitespaceTrimmed(t *testing.T) {
	ran := false
	opts := []menuOption{
		{Key: "1", Label: "noop", Run: func(context.Context) error { ran = true; return nil }},
	}

	menuSession(t, "  1  \n\n  0  \n", opts)
	assert.True(t, ran)
}

func TestDefaultMenuOptionsCoverage(t *testing.T) {
	opts := defaultMenuOptions(bufio.NewReader(strings.NewReader("")))

	// Fifteen operations, keys 1 through 15, no duplicates. Key 0 is the
	// loop's own exit handling and must not appear in the table.
	require.Len(t, opts, 15)
	seen := map[string]bool{}
	for _, opt := range opts {
		assert.False(t, seen[opt.Key], "duplicate key %s", opt.Key)
		assert.NotEqual(t, "0", opt.Key)
		assert.NotNil(t, opt.Run)
		seen[opt.Key] = true
	}
}
