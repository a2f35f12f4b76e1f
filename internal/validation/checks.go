package validation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/tatoeba/tatoprov/internal/ports"
)

// CheckCommandExists verifies a command is available on PATH.
func CheckCommandExists(command string) error {
	if command == "" {
		return fmt.Errorf("command name is required")
	}

	if _, err := exec.LookPath(command); err != nil {
		return err
	}
	return nil
}

// CheckFileExists verifies a file or directory exists at the given path.
func CheckFileExists(path string) error {
	if path == "" {
		return fmt.Errorf("path is required")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("path %s does not exist", path)
		}
		return err
	}

	return nil
}

// CheckPathContains verifies that file matches the provided pattern.
func CheckPathContains(path, text string) error {
	if path == "" {
		return fmt.Errorf("file path is required")
	}
	if text == "" {
		return fmt.Errorf("text is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	pattern, err := regexp.Compile(text)
	if err != nil {
		return err
	}

	if !pattern.Match(data) {
		return fmt.Errorf("pattern %q not found in %s", text, path)
	}

	return nil
}

// CheckService verifies unit is both running and enabled.
func CheckService(ctx context.Context, services ports.ServiceManager, unit string) error {
	if services == nil {
		return fmt.Errorf("service manager is not configured")
	}
	active, err := services.IsActive(ctx, unit)
	if err != nil {
		return err
	}
	enabled, err := services.IsEnabled(ctx, unit)
	if err != nil {
		return err
	}

	var problems []string
	if !active {
		problems = append(problems, "not active")
	}
	if !enabled {
		problems = append(problems, "not enabled")
	}
	if len(problems) > 0 {
		return fmt.Errorf("unit %s is %s", unit, strings.Join(problems, " and "))
	}
	return nil
}

// CheckShell runs command through shell and fails on a non-zero exit.
func CheckShell(ctx context.Context, shell ShellCheck, command string) error {
	if shell == nil {
		return fmt.Errorf("shell checks are not configured")
	}
	ok, output, err := shell(ctx, command)
	if err != nil {
		return err
	}
	if !ok {
		output = strings.TrimSpace(output)
		if output == "" {
			return fmt.Errorf("%q exited non-zero", command)
		}
		return fmt.Errorf("%q exited non-zero: %s", command, output)
	}
	return nil
}
