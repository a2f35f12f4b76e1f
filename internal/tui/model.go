package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatoeba/tatoprov/internal/model"
	"github.com/tatoeba/tatoprov/internal/tui/components"
)

// StageStartMsg indicates a stage has started executing.
type StageStartMsg struct {
	Stage string
	Time  time.Time
}

// StageCompleteMsg reports that a stage has finished execution.
type StageCompleteMsg struct {
	Result model.StageResult
}

// ValidationMsg carries the outcome of a verification check.
type ValidationMsg struct {
	Passed  bool
	Message string
}

// DoneMsg ends the run. Err is the run error, if any.
type DoneMsg struct {
	Err error
}

// Model contains the Bubbletea state for the provisioning progress view.
type Model struct {
	title       string
	stages      map[string]model.StageResult
	order       []string
	validations []components.ValidationStatus
	spinner     spinner.Model
	total       int
	completed   int
	finished    bool
	cancelled   bool
	err         error
}

// NewModel constructs a progress model for the given stages. A nil stage
// list tracks every provisioning stage.
func NewModel(title string, stages []string) Model {
	if stages == nil {
		stages = model.StageOrder
	}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = runningStyle

	m := Model{
		title:       title,
		stages:      make(map[string]model.StageResult, len(stages)),
		order:       make([]string, 0, len(stages)),
		validations: make([]components.ValidationStatus, 0),
		spinner:     spin,
	}
	for _, stage := range stages {
		m.ensureStage(stage)
	}
	return m
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// TotalStages returns the number of stages tracked by the model.
func (m Model) TotalStages() int {
	return m.total
}

// CompletedStages returns the number of stages that reached a terminal status.
func (m Model) CompletedStages() int {
	return m.completed
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the view.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Stage returns the latest result recorded for name.
func (m Model) Stage(name string) model.StageResult {
	return m.stages[name]
}

func (m *Model) ensureStage(name string) {
	if name == "" {
		return
	}
	if _, exists := m.stages[name]; !exists {
		m.stages[name] = model.StageResult{Stage: name, Status: model.StatusPending}
		m.order = append(m.order, name)
		m.total++
	}
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}
