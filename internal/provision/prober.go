package provision

import (
	"context"
	"os/exec"

	"github.com/tatoeba/tatoprov/internal/model"
)

// Prober reports whether the daemon is installed. It has no side effects and
// never fails: an unresolvable binary is a normal outcome.
type Prober interface {
	Probe(ctx context.Context) model.InstallState
}

// PathProber resolves Binary on the host search path.
type PathProber struct {
	Binary   string
	LookPath func(string) (string, error)
}

// NewPathProber returns a prober backed by exec.LookPath.
func NewPathProber(binary string) *PathProber {
	return &PathProber{Binary: binary, LookPath: exec.LookPath}
}

// Probe implements Prober.
func (p *PathProber) Probe(ctx context.Context) model.InstallState {
	if p == nil || p.Binary == "" {
		return model.StateAbsent
	}
	lookPath := p.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(p.Binary); err != nil {
		return model.StateAbsent
	}
	return model.StatePresent
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) model.InstallState

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context) model.InstallState {
	return f(ctx)
}
