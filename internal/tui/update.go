package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatoeba/tatoprov/internal/model"
	"github.com/tatoeba/tatoprov/internal/tui/components"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case StageStartMsg:
		m.ensureStage(msg.Stage)
		stage := m.stages[msg.Stage]
		stage.Status = model.StatusRunning
		stage.Timestamp = msg.Time
		m.stages[msg.Stage] = stage
		return m, nil
	case StageCompleteMsg:
		name := msg.Result.Stage
		if name == "" {
			return m, nil
		}
		m.ensureStage(name)
		previouslyCompleted := m.stages[name].Completed()
		m.stages[name] = msg.Result
		if !previouslyCompleted && msg.Result.Completed() {
			m.completed++
			m.markFinishedIfComplete()
		}
		if msg.Result.Status == model.StatusFailed {
			m.finished = true
		}
		return m, nil
	case ValidationMsg:
		m.validations = append(m.validations, components.ValidationStatus{Passed: msg.Passed, Message: msg.Message})
		return m, nil
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
