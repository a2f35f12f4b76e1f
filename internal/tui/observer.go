package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatoeba/tatoprov/internal/model"
)

// Observer forwards stage progress to a running program, or folds it into a
// local model when no program is attached (non-interactive output).
type Observer struct {
	mu      sync.Mutex
	program *tea.Program
	state   Model
}

// NewObserver wraps state. program may be nil.
func NewObserver(program *tea.Program, state Model) *Observer {
	return &Observer{program: program, state: state}
}

// StageStarted implements ports.StageObserver.
func (o *Observer) StageStarted(_ context.Context, stage string) {
	o.Dispatch(StageStartMsg{Stage: stage, Time: time.Now()})
}

// StageFinished implements ports.StageObserver.
func (o *Observer) StageFinished(_ context.Context, result model.StageResult) {
	o.Dispatch(StageCompleteMsg{Result: result})
}

// Dispatch delivers msg to the program or the local model.
func (o *Observer) Dispatch(msg tea.Msg) {
	if o.program != nil {
		o.program.Send(msg)
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	updated, _ := o.state.Update(msg)
	if m, ok := updated.(Model); ok {
		o.state = m
	}
}

// Model returns the locally folded state.
func (o *Observer) Model() Model {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}
