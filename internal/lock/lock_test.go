package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	provErrors "github.com/tatoeba/tatoprov/pkg/errors"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "tatoprov.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Release() })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	// flock locks belong to the open file description, so a second open in
	// the same process still conflicts.
	_, err = Acquire(path)
	require.Error(t, err)

	var lockErr *provErrors.LockError
	require.ErrorAs(t, err, &lockErr)
	require.Equal(t, path, lockErr.Path)
	require.ErrorIs(t, err, ErrHeld)
	require.Contains(t, err.Error(), "pid "+strconv.Itoa(os.Getpid()))
}

func TestReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tatoprov.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	require.Equal(t, path, l.Path())
	require.NoError(t, l.Release())
	require.NoError(t, l.Release(), "double release is safe")

	again, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestNilLock(t *testing.T) {
	var l *Lock
	require.NoError(t, l.Release())
	require.Empty(t, l.Path())
}
