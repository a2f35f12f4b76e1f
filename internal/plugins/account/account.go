package accountplugin

import (
	"context"
	"errors"
	"fmt"
	"os/user"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/plugins/internalexec"
	"github.com/tatoeba/tatoprov/internal/ports"
)

// Useradd creates system accounts with useradd.
type Useradd struct {
	runner internalexec.Runner
	lookup func(string) (*user.User, error)
	log    ports.Logger
}

var _ ports.AccountManager = (*Useradd)(nil)

// New creates a Useradd manager.
func New(runner internalexec.Runner, log ports.Logger) *Useradd {
	if log == nil {
		log = logger.Nop()
	}
	return &Useradd{runner: runner, lookup: user.Lookup, log: log}
}

// Exists reports whether name resolves to an account.
func (u *Useradd) Exists(name string) (bool, error) {
	_, err := u.lookup(name)
	if err == nil {
		return true, nil
	}
	var unknown user.UnknownUserError
	if errors.As(err, &unknown) {
		return false, nil
	}
	return false, fmt.Errorf("lookup user %s: %w", name, err)
}

// EnsureSystemUser creates a locked system account with no home directory
// and no login shell. Existing accounts are left untouched.
func (u *Useradd) EnsureSystemUser(ctx context.Context, name string) (bool, error) {
	exists, err := u.Exists(name)
	if err != nil {
		return false, err
	}
	if exists {
		u.log.Debug(ctx, "account already present", "user", name)
		return false, nil
	}

	_, err = u.runner.Run(ctx, "useradd",
		"--system",
		"--no-create-home",
		"--user-group",
		"--shell", "/usr/sbin/nologin",
		name,
	)
	if err != nil {
		return false, fmt.Errorf("create system user %s: %w", name, err)
	}
	return true, nil
}
