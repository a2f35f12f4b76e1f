package provision

import "github.com/tatoeba/tatoprov/internal/model"

// Decide maps the probed state and the force flag to the run's action.
//
//	absent,  any   -> install
//	present, false -> skip
//	present, true  -> reinstall
func Decide(state model.InstallState, force bool) model.Action {
	if state != model.StatePresent {
		return model.ActionInstall
	}
	if force {
		return model.ActionReinstall
	}
	return model.ActionSkip
}
