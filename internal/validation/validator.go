package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tatoeba/tatoprov/internal/config"
	"github.com/tatoeba/tatoprov/internal/ports"
	tatoerrors "github.com/tatoeba/tatoprov/pkg/errors"
)

// Validator executes post-provision checks against the host.
type Validator struct {
	services ports.ServiceManager
	shell    ShellCheck
}

// New constructs a Validator. Either collaborator may be nil when the
// corresponding checks are not used.
func New(services ports.ServiceManager, shell ShellCheck) *Validator {
	return &Validator{services: services, shell: shell}
}

// ChecksFor derives the standard checks for a provisioned host from cfg.
func ChecksFor(cfg *config.Config) []Check {
	checks := []Check{
		{Kind: KindCommandExists, Target: cfg.Service.Binary},
		{Kind: KindFileExists, Target: cfg.Paths.Binary},
		{Kind: KindFileExists, Target: cfg.Paths.Tool},
		{Kind: KindFileExists, Target: cfg.Paths.Unit},
		{Kind: KindFileExists, Target: cfg.Paths.Defaults},
		{Kind: KindPathContains, Target: cfg.Paths.Config, Text: fmt.Sprintf(`"port"\s*:\s*%d\b`, cfg.Service.ListenPort)},
		{Kind: KindFileExists, Target: cfg.Data.DBFile},
	}
	if cfg.Verify.CheckService {
		checks = append(checks, Check{Kind: KindService, Target: cfg.Service.Unit})
	}
	for _, command := range cfg.Verify.Commands {
		checks = append(checks, Check{Kind: KindShell, Target: command})
	}
	return checks
}

// Run executes checks in order and returns every result. The error lists
// all failed checks.
func (v *Validator) Run(ctx context.Context, checks []Check) ([]Result, error) {
	results := make([]Result, 0, len(checks))
	var failedMessages []string

	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := Result{Check: check}

		var err error
		switch check.Kind {
		case KindCommandExists:
			err = CheckCommandExists(check.Target)
		case KindFileExists:
			err = CheckFileExists(check.Target)
		case KindPathContains:
			err = CheckPathContains(check.Target, check.Text)
		case KindService:
			err = CheckService(ctx, v.services, check.Target)
		case KindShell:
			err = CheckShell(ctx, v.shell, check.Target)
		default:
			err = tatoerrors.NewValidationError("verify.kind", fmt.Sprintf("unknown check kind %q", check.Kind), nil)
		}

		if err != nil {
			result.Passed = false
			result.Message = err.Error()
			result.Error = err
			failedMessages = append(failedMessages, err.Error())
		} else {
			result.Passed = true
			result.Message = "passed"
		}

		results = append(results, result)
	}

	if len(failedMessages) > 0 {
		combined := strings.Join(failedMessages, "; ")
		return results, fmt.Errorf("verification failed: %s", combined)
	}

	return results, nil
}
