package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummaryView(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     SummaryData
		contains []string
		excludes []string
	}{
		{
			name: "empty summary",
			data: SummaryData{},
		},
		{
			name:     "in progress",
			data:     SummaryData{Total: 9, Completed: 4},
			contains: []string{"Stages: 4/9 completed"},
			excludes: []string{"Provisioning"},
		},
		{
			name:     "successful run",
			data:     SummaryData{Total: 9, Completed: 9, Finished: true},
			contains: []string{"Stages: 9/9 completed", "Provisioning finished successfully"},
		},
		{
			name:     "failed stage wins over pending",
			data:     SummaryData{Total: 9, Completed: 5, Finished: true, Failed: "build"},
			contains: []string{"Provisioning failed in stage build"},
			excludes: []string{"pending stages"},
		},
		{
			name:     "finished with pending stages",
			data:     SummaryData{Total: 9, Completed: 7, Finished: true},
			contains: []string{"Provisioning finished with pending stages"},
		},
		{
			name:     "cancellation wins over everything",
			data:     SummaryData{Total: 9, Completed: 3, Finished: true, Cancelled: true, Failed: "fetch"},
			contains: []string{"Provisioning cancelled"},
			excludes: []string{"failed in stage", "finished successfully"},
		},
		{
			name: "checks without stages",
			data: SummaryData{Validations: []ValidationStatus{
				{Passed: true, Message: "file_exists /usr/local/bin/tatodetect"},
				{Passed: false, Message: "unit tatodetect is not active"},
			}},
			contains: []string{"Checks:", "✓ file_exists /usr/local/bin/tatodetect", "✗ unit tatodetect is not active"},
			excludes: []string{"Stages:"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			view := NewSummary(tt.data).View()
			if len(tt.contains) == 0 {
				require.Empty(t, view)
			}
			for _, want := range tt.contains {
				require.Contains(t, view, want)
			}
			for _, unwanted := range tt.excludes {
				require.NotContains(t, view, unwanted)
			}
		})
	}
}

func TestSummaryViewIsLineOriented(t *testing.T) {
	t.Parallel()

	view := NewSummary(SummaryData{
		Total:       9,
		Completed:   9,
		Finished:    true,
		Validations: []ValidationStatus{{Passed: true, Message: "ok"}},
	}).View()

	require.Len(t, strings.Split(view, "\n"), 4)
}
