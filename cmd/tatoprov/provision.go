package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tatoeba/tatoprov/internal/lock"
	systemdplugin "github.com/tatoeba/tatoprov/internal/plugins/systemd"
	"github.com/tatoeba/tatoprov/internal/tui"
)

func newProvisionCmd(root *rootFlags) *cobra.Command {
	run := &runFlags{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Install tatodetect and cppcms if needed, then start the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(root, run.overrides(cmd))
			if err != nil {
				return err
			}
			return runProvision(cmd.Context(), app, cmd.OutOrStdout())
		},
	}

	run.register(cmd)
	cmd.Flags().BoolVar(&run.dryRun, "dry-run", false, "Show what would run without changing the host")

	return cmd
}

func runProvision(parent context.Context, app *AppContext, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := app.runContext(parent)
	defer cancel()

	if !app.Config.Settings.DryRun {
		if err := systemdplugin.Available(); err != nil {
			return err
		}
		held, err := lock.Acquire(app.Config.Settings.LockFile)
		if err != nil {
			return err
		}
		defer held.Release() //nolint:errcheck
	}

	deps, err := app.collaborators()
	if err != nil {
		return err
	}

	state := tui.NewModel(app.Config.Name, nil)
	var program *tea.Program
	done := make(chan error, 1)
	if app.Interactive {
		program = tea.NewProgram(state, tea.WithContext(ctx), tea.WithOutput(os.Stdout))
		go func() {
			final, err := program.Run()
			if m, ok := final.(tui.Model); ok && m.Cancelled() {
				cancel()
			}
			done <- err
		}()
	}
	observer := tui.NewObserver(program, state)

	prov, err := app.newProvisioner(deps, observer)
	if err != nil {
		if program != nil {
			program.Quit()
			<-done
		}
		return err
	}

	app.Log.Info(ctx, "provisioning started", "unit", app.Config.Service.Unit, "mode", string(app.Config.Data.Mode))
	report, runErr := prov.Run(ctx)

	if program != nil {
		observer.Dispatch(tui.DoneMsg{Err: runErr})
		if err := <-done; err != nil && runErr == nil && ctx.Err() == nil {
			runErr = fmt.Errorf("progress view: %w", err)
		}
	} else {
		printReport(out, report)
	}

	if runErr != nil {
		app.Log.Error(ctx, "provisioning failed", "error", runErr)
		return runErr
	}
	app.Log.Info(ctx, "provisioning finished", "action", report.Action.String(), "reloaded", report.Reloaded, "restarted", report.Restarted)
	return nil
}

func newPlanCmd(root *rootFlags) *cobra.Command {
	run := &runFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Probe the host and print the stages a provision run would execute",
		RunE: func(cmd *cobra.Command, args []string) error {
			root.noTUI = true
			app, err := newAppContext(root, run.overrides(cmd))
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), app, cmd.OutOrStdout())
		},
	}

	run.register(cmd)

	return cmd
}

func runPlan(parent context.Context, app *AppContext, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := app.runContext(parent)
	defer cancel()

	deps, err := app.collaborators()
	if err != nil {
		return err
	}
	prov, err := app.newProvisioner(deps, nil)
	if err != nil {
		return err
	}
	report, err := prov.Plan(ctx)
	if err != nil {
		return err
	}
	printReport(out, report)
	return nil
}
