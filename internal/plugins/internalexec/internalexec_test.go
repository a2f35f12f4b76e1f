package internalexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStreaming_CapturesAndForwards(t *testing.T) {
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.Command("sh", "-c", "echo 'normal output'; echo 'error message' >&2; exit 1")
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	result, err := RunStreaming(cmd)
	require.Error(t, err)
	assert.Equal(t, "normal output", result.Stdout)
	assert.Equal(t, "error message", result.Stderr)
	assert.Equal(t, "normal output\n", stdoutBuf.String())
	assert.Equal(t, "error message\n", stderrBuf.String())
}

func TestRunStreaming_OutputTrimming(t *testing.T) {
	cmd := exec.Command("printf", "hello\nworld\n\t")
	cmd.Stdout = &bytes.Buffer{}

	result, err := RunStreaming(cmd)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", result.Stdout)
}

func TestPrimaryOutput(t *testing.T) {
	assert.Equal(t, "error message", PrimaryOutput(Result{Stdout: "normal output", Stderr: "error message"}))
	assert.Equal(t, "normal output", PrimaryOutput(Result{Stdout: "normal output"}))
	assert.Equal(t, "", PrimaryOutput(Result{}))
}

func TestRunnerRunsInDirWithEnv(t *testing.T) {
	dir := t.TempDir()
	r := Quiet().In(dir).WithEnv("TATOPROV_TEST=yes")

	res, err := r.Run(context.Background(), "sh", "-c", `echo "$PWD $TATOPROV_TEST"`)
	require.NoError(t, err)
	assert.Equal(t, dir+" yes", res.Stdout)
}

func TestRunnerWithEnvDoesNotAlias(t *testing.T) {
	base := Runner{Env: make([]string, 0, 4)}
	a := base.WithEnv("A=1")
	b := base.WithEnv("B=2")
	assert.Equal(t, []string{"A=1"}, a.Env)
	assert.Equal(t, []string{"B=2"}, b.Env)
}

func TestRunnerErrorCarriesOutputTail(t *testing.T) {
	script := "for i in $(seq 1 50); do echo line$i >&2; done; exit 2"

	_, err := Quiet().Run(context.Background(), "sh", "-c", script)
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "line50")
	assert.NotContains(t, err.Error(), "line30\n")
	assert.Equal(t, maxErrorLines, strings.Count(err.Error(), "line"))
}

func TestRunnerCommandNotFound(t *testing.T) {
	_, err := Quiet().Run(context.Background(), "tatoprov-command-does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestRunnerHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Quiet().Run(ctx, "sleep", "1")
	require.Error(t, err)
}

func TestTail(t *testing.T) {
	lines := make([]string, 5)
	for i := range lines {
		lines[i] = fmt.Sprint(i)
	}
	assert.Equal(t, "3\n4", tail(strings.Join(lines, "\n"), 2))
	assert.Equal(t, "a\nb", tail("a\nb", 5))
}
