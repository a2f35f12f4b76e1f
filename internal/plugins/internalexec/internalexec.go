package internalexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// maxErrorLines bounds how much captured output is folded into an error.
// Compiler failures can emit thousands of lines; the tail holds the cause.
const maxErrorLines = 20

// Result captures stdout/stderr emitted by a streaming command run.
type Result struct {
	Stdout string
	Stderr string
}

// RunStreaming wires the command's stdout/stderr through to the parent process
// while collecting the output for later inspection.
func RunStreaming(cmd *exec.Cmd) (Result, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	if cmd.Stdout != nil {
		cmd.Stdout = io.MultiWriter(cmd.Stdout, &stdoutBuf)
	} else {
		cmd.Stdout = io.MultiWriter(os.Stdout, &stdoutBuf)
	}
	if cmd.Stderr != nil {
		cmd.Stderr = io.MultiWriter(cmd.Stderr, &stderrBuf)
	} else {
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)
	}

	err := cmd.Run()

	return Result{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}, err
}

// PrimaryOutput returns stderr if present, otherwise stdout.
func PrimaryOutput(res Result) string {
	if res.Stderr != "" {
		return res.Stderr
	}
	return res.Stdout
}

// Runner executes host commands with a shared working directory, extra
// environment and output sinks. The zero value streams to the process
// stdout/stderr from the current directory.
type Runner struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// Quiet returns a runner that only captures output. Used when a terminal UI
// owns the screen.
func Quiet() Runner {
	return Runner{Stdout: io.Discard, Stderr: io.Discard}
}

// In returns a copy of r rooted at dir.
func (r Runner) In(dir string) Runner {
	r.Dir = dir
	return r
}

// WithEnv returns a copy of r with additional KEY=VALUE entries.
func (r Runner) WithEnv(env ...string) Runner {
	r.Env = append(append([]string(nil), r.Env...), env...)
	return r
}

// Run executes name with args. On failure the returned error carries the
// tail of the command's primary output.
func (r Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	res, err := RunStreaming(cmd)
	if err != nil {
		if out := tail(PrimaryOutput(res), maxErrorLines); out != "" {
			return res, fmt.Errorf("%s: %w: %s", name, err, out)
		}
		return res, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
