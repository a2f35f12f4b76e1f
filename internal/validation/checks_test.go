package validation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckCommandExists(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckCommandExists("echo"))

	err := CheckCommandExists("command-that-should-not-exist-12345")
	require.Error(t, err)
}

func TestCheckFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "exists.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	require.NoError(t, CheckFileExists(file))
	require.Error(t, CheckFileExists(filepath.Join(dir, "missing.txt")))
}

func TestCheckPathContains(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "content.txt")
	require.NoError(t, os.WriteFile(file, []byte("the quick brown fox"), 0o644))

	require.NoError(t, CheckPathContains(file, "quick"))
	require.Error(t, CheckPathContains(file, "lazy"))

	t.Run("returns error when file doesn't exist", func(t *testing.T) {
		t.Parallel()
		err := CheckPathContains(filepath.Join(dir, "nonexistent.txt"), "text")
		require.Error(t, err)
	})

	t.Run("finds text at beginning of file", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("start middle end"), 0o644))
		require.NoError(t, CheckPathContains(file, "start"))
	})

	t.Run("finds text at end of file", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("start middle end"), 0o644))
		require.NoError(t, CheckPathContains(file, "end"))
	})

	t.Run("returns error for empty file when searching for text", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(file, []byte(""), 0o644))
		err := CheckPathContains(file, "text")
		require.Error(t, err)
	})
}

func TestCheckFileExistsWithDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, CheckFileExists(dir), "directories should pass CheckFileExists")
}

func TestCheckCommandExistsWithCommonCommands(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckCommandExists("ls"))
	require.NoError(t, CheckCommandExists("sh"))
}

func TestCheckService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.NoError(t, CheckService(ctx, &fakeServices{active: true, enabled: true}, "tatodetect"))

	err := CheckService(ctx, &fakeServices{}, "tatodetect")
	require.EqualError(t, err, "unit tatodetect is not active and not enabled")

	err = CheckService(ctx, &fakeServices{active: true}, "tatodetect")
	require.EqualError(t, err, "unit tatodetect is not enabled")

	boom := errors.New("dbus unavailable")
	require.ErrorIs(t, CheckService(ctx, &fakeServices{err: boom}, "tatodetect"), boom)

	require.Error(t, CheckService(ctx, nil, "tatodetect"))
}

func TestCheckShell(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pass := func(context.Context, string) (bool, string, error) { return true, "", nil }
	fail := func(context.Context, string) (bool, string, error) { return false, "connection refused\n", nil }

	require.NoError(t, CheckShell(ctx, pass, "curl -sf localhost:8080"))

	err := CheckShell(ctx, fail, "curl -sf localhost:8080")
	require.EqualError(t, err, `"curl -sf localhost:8080" exited non-zero: connection refused`)

	require.Error(t, CheckShell(ctx, nil, "true"))
}
