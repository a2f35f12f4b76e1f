package model

// Report summarises one provisioning run.
type Report struct {
	RunID     string
	State     InstallState
	Action    Action
	Mode      AcquisitionMode
	Stages    []StageResult
	Changes   ChangeMarkers
	Workspace []string
	Reloaded  bool
	Restarted bool
	Started   bool
	Enabled   bool
	DryRun    bool
}

// Stage returns the result recorded for name, if any.
func (r *Report) Stage(name string) (StageResult, bool) {
	if r == nil {
		return StageResult{}, false
	}
	for _, res := range r.Stages {
		if res.Stage == name {
			return res, true
		}
	}
	return StageResult{}, false
}

// Failed returns the first failed stage result, if any.
func (r *Report) Failed() (StageResult, bool) {
	if r == nil {
		return StageResult{}, false
	}
	for _, res := range r.Stages {
		if res.Status == StatusFailed {
			return res, true
		}
	}
	return StageResult{}, false
}
