package sysinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBelowThreshold pins the confirmation boundary: setup prompts
// strictly below the threshold and proceeds silently at or above it.
func TestBelowThreshold(t *testing.T) {
	tests := []struct {
		name        string
		freeGB      float64
		thresholdGB float64
		want        bool
	}{
		{name: "well below", freeGB: 5, thresholdGB: 30, want: true},
		{name: "just below", freeGB: 29.99, thresholdGB: 30, want: true},
		{name: "exactly at threshold proceeds", freeGB: 30, thresholdGB: 30, want: false},
		{name: "above", freeGB: 100, thresholdGB: 30, want: false},
		{name: "zero threshold never prompts", freeGB: 0, thresholdGB: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BelowThreshold(tt.freeGB, tt.thresholdGB))
		})
	}
}
