package commandplugin

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/tatoeba/tatoprov/internal/plugins/internalexec"
)

// CheckResult is the outcome of a shell check command.
type CheckResult struct {
	Satisfied bool
	ExitCode  int
	Output    string
}

// Check runs command through the host shell. Exit code 0 means satisfied,
// any other exit code means not satisfied; only a failure to run the
// command at all is returned as an error.
func Check(ctx context.Context, runner internalexec.Runner, command string) (*CheckResult, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("check command is empty")
	}
	shell, shellArgs, err := determineShell("")
	if err != nil {
		return nil, err
	}

	res, err := runner.Run(ctx, shell, append(shellArgs, command)...)
	out := internalexec.PrimaryOutput(res)
	if err == nil {
		return &CheckResult{Satisfied: true, Output: out}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return &CheckResult{ExitCode: exitErr.ExitCode(), Output: out}, nil
	}
	return nil, fmt.Errorf("check command error: %w", err)
}

func determineShell(explicit string) (string, []string, error) {
	if explicit != "" {
		return explicit, []string{"-c"}, nil
	}

	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, nil
	}

	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}, nil
	}

	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}

	return "", nil, fmt.Errorf("no suitable shell found")
}
