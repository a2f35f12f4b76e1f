package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		completed int
		want      float64
	}{
		{"zero total", 0, 0, 0},
		{"nothing done", 9, 0, 0},
		{"partial", 8, 2, 0.25},
		{"complete", 9, 9, 1},
		{"beyond total is clamped", 9, 12, 1},
		{"negative completion", 9, -1, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tt.want, NewProgress(tt.total).Ratio(tt.completed), 1e-9)
		})
	}
}

func TestProgressView(t *testing.T) {
	t.Parallel()

	t.Run("renders with zero total", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(0).View(0)
		require.Contains(t, view, "0/0")
		require.Contains(t, view, "0%")
	})

	t.Run("renders partial completion", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(4).View(1)
		require.Contains(t, view, "1/4")
		require.Contains(t, view, "25%")
	})

	t.Run("shows the real count past the total", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(9).View(11)
		require.Contains(t, view, "11/9")
		require.Contains(t, view, "100%")
	})

	t.Run("bar takes up space", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(100).View(50)
		require.Greater(t, len(strings.TrimSpace(view)), len("50/100 50%"))
	})
}
