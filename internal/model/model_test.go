package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActionProceeds(t *testing.T) {
	t.Parallel()

	require.False(t, ActionSkip.Proceeds())
	require.True(t, ActionInstall.Proceeds())
	require.True(t, ActionReinstall.Proceeds())
}

func TestEnumStrings(t *testing.T) {
	t.Parallel()

	require.Equal(t, "present", StatePresent.String())
	require.Equal(t, "absent", StateAbsent.String())
	require.Equal(t, "reinstall", ActionReinstall.String())
	require.Equal(t, "Action(9)", Action(9).String())
}

func TestChangeMarkersFirstObservationWins(t *testing.T) {
	t.Parallel()

	var markers ChangeMarkers
	require.False(t, markers.UnitChanged())
	require.False(t, markers.Recorded(ArtifactUnit))

	markers.Mark(ArtifactUnit, true)
	markers.Mark(ArtifactUnit, false)
	require.True(t, markers.UnitChanged())
	require.True(t, markers.Recorded(ArtifactUnit))
}

func TestChangeMarkersRuntimeChanged(t *testing.T) {
	t.Parallel()

	var markers ChangeMarkers
	markers.Mark(ArtifactUnit, true)
	markers.Mark(ArtifactTool, true)
	require.False(t, markers.RuntimeChanged(), "unit and tool changes do not affect the running daemon")

	markers.Mark(ArtifactData, true)
	require.True(t, markers.RuntimeChanged())
}

func TestReportLookups(t *testing.T) {
	t.Parallel()

	report := &Report{Stages: []StageResult{
		{Stage: StageProbe, Status: StatusSuccess},
		{Stage: StageBuild, Status: StatusFailed, Error: errors.New("make failed")},
	}}

	res, ok := report.Stage(StageProbe)
	require.True(t, ok)
	require.Equal(t, StatusSuccess, res.Status)

	failed, ok := report.Failed()
	require.True(t, ok)
	require.Equal(t, StageBuild, failed.Stage)

	_, ok = (*Report)(nil).Stage(StageProbe)
	require.False(t, ok)
}

func TestStageResultCompleted(t *testing.T) {
	t.Parallel()

	require.False(t, StageResult{Status: StatusRunning}.Completed())
	require.True(t, StageResult{Status: StatusSkipped}.Completed())
}
