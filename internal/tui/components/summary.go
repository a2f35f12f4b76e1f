package components

import (
	"fmt"
	"strings"
)

// ValidationStatus represents a verification outcome for summary rendering.
type ValidationStatus struct {
	Passed  bool
	Message string
}

// SummaryData aggregates counts for rendering summaries.
type SummaryData struct {
	Total       int
	Completed   int
	Finished    bool
	Cancelled   bool
	Failed      string
	Validations []ValidationStatus
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Stages: %d/%d completed", s.data.Completed, s.data.Total))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Provisioning cancelled")
	case s.data.Failed != "":
		lines = append(lines, fmt.Sprintf("Provisioning failed in stage %s", s.data.Failed))
	case s.data.Finished && s.data.Total > 0:
		if s.data.Completed == s.data.Total {
			lines = append(lines, "Provisioning finished successfully")
		} else {
			lines = append(lines, "Provisioning finished with pending stages")
		}
	}

	if len(s.data.Validations) > 0 {
		lines = append(lines, "Checks:")
		for _, v := range s.data.Validations {
			status := "✗"
			if v.Passed {
				status = "✓"
			}
			lines = append(lines, fmt.Sprintf("  %s %s", status, v.Message))
		}
	}

	return strings.Join(lines, "\n")
}
