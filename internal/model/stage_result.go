package model

import (
	"time"
)

const (
	// StatusPending indicates a stage has not started yet.
	StatusPending = "pending"
	// StatusRunning indicates a stage is actively executing.
	StatusRunning = "running"
	// StatusSuccess marks a successful stage execution.
	StatusSuccess = "success"
	// StatusSkipped indicates the action did not require the stage.
	StatusSkipped = "skipped"
	// StatusFailed marks a fatal failure during the stage.
	StatusFailed = "failed"
	// StatusPlanned marks a stage a dry run would execute.
	StatusPlanned = "planned"
)

// Stage names, in execution order.
const (
	StageProbe      = "probe"
	StageTeardown   = "teardown"
	StageDependency = "dependencies"
	StageFetch      = "fetch"
	StageBuild      = "build"
	StageDeploy     = "deploy"
	StageData       = "data"
	StageActivation = "activation"
	StageCleanup    = "cleanup"
)

// StageOrder lists every stage in the order a run visits them.
var StageOrder = []string{
	StageProbe,
	StageTeardown,
	StageDependency,
	StageFetch,
	StageBuild,
	StageDeploy,
	StageData,
	StageActivation,
	StageCleanup,
}

// StageResult captures the outcome of executing a single stage.
type StageResult struct {
	Stage     string
	Status    string
	Message   string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// Completed reports whether the stage reached a terminal status.
func (r StageResult) Completed() bool {
	switch r.Status {
	case StatusSuccess, StatusSkipped, StatusFailed, StatusPlanned:
		return true
	}
	return false
}
