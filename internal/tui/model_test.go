package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tatoeba/tatoprov/internal/model"
)

func TestNewModelTracksEveryStage(t *testing.T) {
	m := NewModel("tatodetect", nil)

	require.Equal(t, len(model.StageOrder), m.TotalStages())
	require.Zero(t, m.CompletedStages())
	require.False(t, m.IsFinished())
	require.Equal(t, model.StatusPending, m.Stage(model.StageBuild).Status)
	require.NotNil(t, m.Init())
}

func TestUpdateTracksStageLifecycle(t *testing.T) {
	m := NewModel("", []string{model.StageProbe, model.StageFetch})

	updated, _ := m.Update(StageStartMsg{Stage: model.StageProbe, Time: time.Now()})
	m = updated.(Model)
	require.Equal(t, model.StatusRunning, m.Stage(model.StageProbe).Status)

	res := model.StageResult{Stage: model.StageProbe, Status: model.StatusSuccess, Message: "absent"}
	updated, _ = m.Update(StageCompleteMsg{Result: res})
	m = updated.(Model)
	require.Equal(t, res, m.Stage(model.StageProbe))
	require.Equal(t, 1, m.CompletedStages())

	// A repeated completion is not counted twice.
	updated, _ = m.Update(StageCompleteMsg{Result: res})
	m = updated.(Model)
	require.Equal(t, 1, m.CompletedStages())

	updated, _ = m.Update(StageCompleteMsg{Result: model.StageResult{Stage: model.StageFetch, Status: model.StatusSkipped}})
	m = updated.(Model)
	require.True(t, m.IsFinished())
}

func TestUpdateAddsUnknownStages(t *testing.T) {
	m := NewModel("", []string{model.StageProbe})

	updated, _ := m.Update(StageStartMsg{Stage: "extra"})
	m = updated.(Model)
	require.Equal(t, 2, m.TotalStages())

	updated, _ = m.Update(StageCompleteMsg{})
	m = updated.(Model)
	require.Equal(t, 2, m.TotalStages())
}

func TestUpdateFailureFinishes(t *testing.T) {
	m := NewModel("", nil)

	updated, _ := m.Update(StageCompleteMsg{Result: model.StageResult{Stage: model.StageBuild, Status: model.StatusFailed}})
	m = updated.(Model)
	require.True(t, m.IsFinished())
	require.Equal(t, model.StageBuild, m.failedStage())
}

func TestUpdateDoneQuits(t *testing.T) {
	m := NewModel("", nil)
	boom := errors.New("boom")

	updated, cmd := m.Update(DoneMsg{Err: boom})
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.IsFinished())
	require.ErrorIs(t, m.err, boom)
}

func TestUpdateHandlesTeaMessages(t *testing.T) {
	m := NewModel("", nil)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	m = updated.(Model)
	require.True(t, m.Cancelled())

	updated, cmd = NewModel("", nil).Update(tea.QuitMsg{})
	require.Nil(t, cmd)
	require.True(t, updated.(Model).IsFinished())
}

func TestUpdateHandlesValidationMessages(t *testing.T) {
	m := NewModel("", nil)

	updated, _ := m.Update(ValidationMsg{Passed: false, Message: "missing /etc/default/tatodetect"})
	m = updated.(Model)
	require.Len(t, m.validations, 1)
	require.False(t, m.validations[0].Passed)
}

func TestObserverFoldsIntoLocalModel(t *testing.T) {
	obs := NewObserver(nil, NewModel("", []string{model.StageProbe}))
	ctx := context.Background()

	obs.StageStarted(ctx, model.StageProbe)
	require.Equal(t, model.StatusRunning, obs.Model().Stage(model.StageProbe).Status)

	obs.StageFinished(ctx, model.StageResult{Stage: model.StageProbe, Status: model.StatusSuccess})
	require.Equal(t, 1, obs.Model().CompletedStages())
	require.True(t, obs.Model().IsFinished())
}
