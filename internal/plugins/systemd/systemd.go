package systemdplugin

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/plugins/internalexec"
	"github.com/tatoeba/tatoprov/internal/ports"
)

// Systemctl drives systemd through the systemctl binary.
type Systemctl struct {
	runner internalexec.Runner
	log    ports.Logger
}

var _ ports.ServiceManager = (*Systemctl)(nil)

// New creates a Systemctl manager.
func New(runner internalexec.Runner, log ports.Logger) *Systemctl {
	if log == nil {
		log = logger.Nop()
	}
	return &Systemctl{runner: runner, log: log}
}

// Available reports whether systemctl is on PATH.
func Available() error {
	if _, err := exec.LookPath("systemctl"); err != nil {
		return fmt.Errorf("systemctl not found in PATH; systemd is required to manage the service")
	}
	return nil
}

// Reload makes systemd re-read unit files.
func (s *Systemctl) Reload(ctx context.Context) error {
	return s.do(ctx, "daemon-reload")
}

// Start starts unit. Starting an active unit is a no-op.
func (s *Systemctl) Start(ctx context.Context, unit string) error {
	return s.do(ctx, "start", unit)
}

// Restart restarts unit, starting it if needed.
func (s *Systemctl) Restart(ctx context.Context, unit string) error {
	return s.do(ctx, "restart", unit)
}

// Stop stops unit.
func (s *Systemctl) Stop(ctx context.Context, unit string) error {
	return s.do(ctx, "stop", unit)
}

// Enable marks unit to start at boot.
func (s *Systemctl) Enable(ctx context.Context, unit string) error {
	return s.do(ctx, "enable", unit)
}

// IsActive reports whether unit is running. A non-zero exit from
// systemctl means inactive, not an error.
func (s *Systemctl) IsActive(ctx context.Context, unit string) (bool, error) {
	return s.query(ctx, "is-active", unit)
}

// IsEnabled reports whether unit starts at boot.
func (s *Systemctl) IsEnabled(ctx context.Context, unit string) (bool, error) {
	return s.query(ctx, "is-enabled", unit)
}

func (s *Systemctl) do(ctx context.Context, args ...string) error {
	s.log.Debug(ctx, "systemctl", "args", args)
	if _, err := s.runner.Run(ctx, "systemctl", args...); err != nil {
		return fmt.Errorf("systemctl %s failed: %w", args[0], err)
	}
	return nil
}

func (s *Systemctl) query(ctx context.Context, verb, unit string) (bool, error) {
	_, err := s.runner.Run(ctx, "systemctl", verb, "--quiet", unit)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("systemctl %s failed: %w", verb, err)
}
