package packageplugin

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/plugins/internalexec"
	"github.com/tatoeba/tatoprov/internal/ports"
)

const installedStatus = "install ok installed"

// Apt manages Debian packages through dpkg-query and apt-get.
type Apt struct {
	runner internalexec.Runner
	log    ports.Logger
}

var _ ports.PackageManager = (*Apt)(nil)

// New creates an apt-backed package manager.
func New(runner internalexec.Runner, log ports.Logger) *Apt {
	if log == nil {
		log = logger.Nop()
	}
	return &Apt{
		runner: runner.WithEnv("DEBIAN_FRONTEND=noninteractive"),
		log:    log,
	}
}

// Evaluation splits the requested packages by install status.
type Evaluation struct {
	Installed []string
	Missing   []string
}

// Evaluate queries dpkg for every package without changing the host.
func (a *Apt) Evaluate(ctx context.Context, names ...string) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	eval := &Evaluation{}
	for _, name := range names {
		installed, err := a.installed(ctx, name)
		if err != nil {
			return nil, err
		}
		if installed {
			eval.Installed = append(eval.Installed, name)
		} else {
			eval.Missing = append(eval.Missing, name)
		}
	}
	return eval, nil
}

// Install installs the packages that are not present yet.
func (a *Apt) Install(ctx context.Context, names ...string) error {
	eval, err := a.Evaluate(ctx, names...)
	if err != nil {
		return err
	}
	if len(eval.Missing) == 0 {
		a.log.Debug(ctx, "packages already installed", "packages", names)
		return nil
	}

	args := append([]string{"install", "-y", "--no-install-recommends"}, eval.Missing...)
	if _, err := a.runner.Run(ctx, "apt-get", args...); err != nil {
		return fmt.Errorf("failed to install packages %s: %w", strings.Join(eval.Missing, ", "), err)
	}
	a.log.Info(ctx, "packages installed", "packages", eval.Missing)
	return nil
}

// Remove uninstalls the packages that are present.
func (a *Apt) Remove(ctx context.Context, names ...string) error {
	eval, err := a.Evaluate(ctx, names...)
	if err != nil {
		return err
	}
	if len(eval.Installed) == 0 {
		return nil
	}

	args := append([]string{"remove", "-y"}, eval.Installed...)
	if _, err := a.runner.Run(ctx, "apt-get", args...); err != nil {
		return fmt.Errorf("failed to remove packages %s: %w", strings.Join(eval.Installed, ", "), err)
	}
	a.log.Info(ctx, "packages removed", "packages", eval.Installed)
	return nil
}

func (a *Apt) installed(ctx context.Context, name string) (bool, error) {
	res, err := a.runner.Run(ctx, "dpkg-query", "-W", "-f=${Status}", name)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// dpkg-query exits non-zero for unknown packages
			return false, nil
		}
		return false, fmt.Errorf("failed to query package %s: %w", name, err)
	}
	return strings.Contains(res.Stdout, installedStatus), nil
}
