package model

import "fmt"

// InstallState reports whether the daemon binary is resolvable on the host.
type InstallState int

const (
	// StateAbsent means the binary could not be resolved.
	StateAbsent InstallState = iota
	// StatePresent means the binary resolved on the search path.
	StatePresent
)

func (s InstallState) String() string {
	switch s {
	case StatePresent:
		return "present"
	case StateAbsent:
		return "absent"
	default:
		return fmt.Sprintf("InstallState(%d)", int(s))
	}
}

// Action is the decision taken once per run from InstallState and the force flag.
type Action int

const (
	// ActionSkip leaves installed software untouched.
	ActionSkip Action = iota
	// ActionInstall runs the full pipeline on a host without the daemon.
	ActionInstall
	// ActionReinstall runs the teardown guard, then the full pipeline.
	ActionReinstall
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionInstall:
		return "install"
	case ActionReinstall:
		return "reinstall"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Proceeds reports whether the dependency, fetch, build and deploy stages run.
func (a Action) Proceeds() bool {
	return a == ActionInstall || a == ActionReinstall
}

// AcquisitionMode selects how the n-gram database reaches the host.
type AcquisitionMode string

const (
	// AcquireDownload fetches a prebuilt database from a URL.
	AcquireDownload AcquisitionMode = "download"
	// AcquireGenerate runs the generator against the corpus exports.
	AcquireGenerate AcquisitionMode = "generate"
)
