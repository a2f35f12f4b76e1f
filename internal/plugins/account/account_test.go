package accountplugin

import (
	"context"
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tatoeba/tatoprov/internal/plugins/internalexec"
)

func fakeUseradd(t *testing.T, exit string) string {
	t.Helper()
	binDir := t.TempDir()
	logPath := filepath.Join(binDir, "useradd.log")
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "useradd"), []byte(`#!/bin/sh
echo "$@" >> "`+logPath+`"
exit `+exit+`
`), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	return logPath
}

func withLookup(u *Useradd, known ...string) *Useradd {
	u.lookup = func(name string) (*user.User, error) {
		for _, k := range known {
			if k == name {
				return &user.User{Username: name}, nil
			}
		}
		return nil, user.UnknownUserError(name)
	}
	return u
}

func TestEnsureSystemUserCreatesMissingAccount(t *testing.T) {
	logPath := fakeUseradd(t, "0")

	created, err := withLookup(New(internalexec.Quiet(), nil)).EnsureSystemUser(context.Background(), "tatodetect")
	require.NoError(t, err)
	require.True(t, created)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Equal(t, "--system --no-create-home --user-group --shell /usr/sbin/nologin tatodetect", strings.TrimSpace(string(data)))
}

func TestEnsureSystemUserIsNoOpForExistingAccount(t *testing.T) {
	logPath := fakeUseradd(t, "1")

	created, err := withLookup(New(internalexec.Quiet(), nil), "tatodetect").EnsureSystemUser(context.Background(), "tatodetect")
	require.NoError(t, err)
	require.False(t, created)

	_, err = os.Stat(logPath)
	require.True(t, os.IsNotExist(err))
}

func TestEnsureSystemUserReportsFailure(t *testing.T) {
	fakeUseradd(t, "9")

	_, err := withLookup(New(internalexec.Quiet(), nil)).EnsureSystemUser(context.Background(), "tatodetect")
	require.ErrorContains(t, err, "create system user tatodetect")
}

func TestExistsPropagatesLookupErrors(t *testing.T) {
	u := New(internalexec.Quiet(), nil)
	u.lookup = func(string) (*user.User, error) { return nil, errors.New("nss unavailable") }

	_, err := u.Exists("tatodetect")
	require.ErrorContains(t, err, "nss unavailable")
}

func TestExistsWithRealLookup(t *testing.T) {
	current, err := user.Current()
	require.NoError(t, err)

	exists, err := New(internalexec.Quiet(), nil).Exists(current.Username)
	require.NoError(t, err)
	require.True(t, exists)
}
