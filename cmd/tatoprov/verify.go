package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	commandplugin "github.com/tatoeba/tatoprov/internal/plugins/command"
	"github.com/tatoeba/tatoprov/internal/tui/components"
	"github.com/tatoeba/tatoprov/internal/validation"
)

type verifyOptions struct {
	JSON bool
}

type verifyOutput struct {
	Passed bool              `json:"passed"`
	Checks []verifyCheckJSON `json:"checks"`
}

type verifyCheckJSON struct {
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

func newVerifyCmd(root *rootFlags) *cobra.Command {
	opts := verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that tatodetect is installed, configured and running",
		Long: `Verify performs read-only checks against the host: the daemon binary
resolves on PATH, every deployed file exists, the config carries the listen
port, and the service is active and enabled. Returns a non-zero exit code
when any check fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root.noTUI = true
			app, err := newAppContext(root, (&runFlags{}).overrides(cmd))
			if err != nil {
				return err
			}
			return runVerify(cmd.Context(), app, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output results in JSON format")

	return cmd
}

func runVerify(parent context.Context, app *AppContext, opts verifyOptions, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := app.runContext(parent)
	defer cancel()

	shell := func(ctx context.Context, command string) (bool, string, error) {
		res, err := commandplugin.Check(ctx, app.Runner, command)
		if err != nil {
			return false, "", err
		}
		return res.Satisfied, res.Output, nil
	}

	validator := validation.New(app.services(), shell)
	results, verifyErr := validator.Run(ctx, validation.ChecksFor(app.Config))

	if opts.JSON {
		payload := verifyOutput{Passed: verifyErr == nil, Checks: make([]verifyCheckJSON, 0, len(results))}
		for _, r := range results {
			payload.Checks = append(payload.Checks, verifyCheckJSON{
				Kind:    string(r.Check.Kind),
				Target:  r.Check.Target,
				Passed:  r.Passed,
				Message: r.Message,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
		return verifyErr
	}

	statuses := make([]components.ValidationStatus, 0, len(results))
	for _, r := range results {
		msg := r.Check.String()
		if !r.Passed {
			msg = fmt.Sprintf("%s: %s", msg, r.Message)
		}
		statuses = append(statuses, components.ValidationStatus{Passed: r.Passed, Message: msg})
	}
	fmt.Fprintln(out, components.NewSummary(components.SummaryData{Validations: statuses}).View())

	if verifyErr != nil {
		app.Log.Warn(ctx, "verification failed", "failed", countFailed(results))
	}
	return verifyErr
}

func countFailed(results []validation.Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
