package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tatoeba/tatoprov/internal/model"
)

func TestViewRendersStages(t *testing.T) {
	m := NewModel("host-a", []string{model.StageProbe, model.StageBuild, model.StageDeploy})
	m.stages[model.StageProbe] = model.StageResult{Stage: model.StageProbe, Status: model.StatusSuccess, Message: "absent", Duration: 1500 * time.Millisecond}
	m.stages[model.StageBuild] = model.StageResult{Stage: model.StageBuild, Status: model.StatusFailed, Error: errors.New("make exited 2")}
	m.completed = 2
	m.finished = true

	view := m.View()
	require.Contains(t, view, "host-a")
	require.Contains(t, view, "probe: absent (1.5s)")
	require.Contains(t, view, "make exited 2")
	require.Contains(t, view, "deploy")
	require.Contains(t, view, "Provisioning failed in stage build")
}

func TestViewDefaultTitle(t *testing.T) {
	require.Contains(t, NewModel("", nil).View(), "provision")
}

func TestStatusIcon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{"success shows checkmark", model.StatusSuccess, "✓"},
		{"running shows hourglass", model.StatusRunning, "⏳"},
		{"failed shows cross", model.StatusFailed, "✗"},
		{"skipped shows circle-slash", model.StatusSkipped, "⊘"},
		{"planned shows star", model.StatusPlanned, "✱"},
		{"pending shows ellipsis", model.StatusPending, "…"},
		{"unknown shows ellipsis", "unknown", "…"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Contains(t, StatusIcon(tt.status), tt.expected)
		})
	}
}
