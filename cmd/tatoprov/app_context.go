package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/tatoeba/tatoprov/internal/assets"
	"github.com/tatoeba/tatoprov/internal/config"
	"github.com/tatoeba/tatoprov/internal/logger"
	accountplugin "github.com/tatoeba/tatoprov/internal/plugins/account"
	archiveplugin "github.com/tatoeba/tatoprov/internal/plugins/archive"
	commandplugin "github.com/tatoeba/tatoprov/internal/plugins/command"
	copyplugin "github.com/tatoeba/tatoprov/internal/plugins/copy"
	"github.com/tatoeba/tatoprov/internal/plugins/internalexec"
	lineinfileplugin "github.com/tatoeba/tatoprov/internal/plugins/lineinfile"
	packageplugin "github.com/tatoeba/tatoprov/internal/plugins/package"
	repoplugin "github.com/tatoeba/tatoprov/internal/plugins/repo"
	systemdplugin "github.com/tatoeba/tatoprov/internal/plugins/systemd"
	templateplugin "github.com/tatoeba/tatoprov/internal/plugins/template"
	"github.com/tatoeba/tatoprov/internal/ports"
	"github.com/tatoeba/tatoprov/internal/provision"
)

// AppContext bundles the services one command invocation needs.
type AppContext struct {
	Config *config.Config
	Log    ports.Logger
	Runner internalexec.Runner
	// Interactive is true when the progress view owns the terminal.
	Interactive bool
	// Streaming forwards build output to the terminal.
	Streaming bool
}

func newAppContext(flags *rootFlags, overrides config.Overrides) (*AppContext, error) {
	if err := validateRootFlags(flags); err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(flags.configPath, os.LookupEnv, overrides)
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || cfg.Settings.Verbose
	interactive := !flags.noTUI && flags.logFormat == logFormatText && term.IsTerminal(int(os.Stdout.Fd()))

	level := "info"
	if verbose {
		level = "debug"
	}
	if interactive && !verbose {
		// The progress view replaces the log stream; warnings still matter.
		level = "warn"
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: flags.logFormat == logFormatText,
		Writer:        os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	streaming := verbose && !interactive
	runner := internalexec.Quiet()
	if streaming {
		runner = internalexec.Runner{Stdout: os.Stderr, Stderr: os.Stderr}
	}

	return &AppContext{Config: cfg, Log: log, Runner: runner, Interactive: interactive, Streaming: streaming}, nil
}

// collaborators builds the host adapters used by the provisioner.
func (a *AppContext) collaborators() (provision.Collaborators, error) {
	patcher, err := lineinfileplugin.New(patcherOptions(a.Config.Framework), a.Log)
	if err != nil {
		return provision.Collaborators{}, fmt.Errorf("cppcms patch settings: %w", err)
	}

	var progress io.Writer
	if a.Streaming {
		progress = os.Stderr
	}

	fetcher := archiveplugin.New(nil, a.Log)
	return provision.Collaborators{
		Packages:   packageplugin.New(a.Runner, a.Log),
		Archives:   fetcher,
		Repos:      repoplugin.New(progress, a.Log),
		Toolchain:  commandplugin.NewToolchain(a.Runner, a.Log),
		Patcher:    patcher,
		Files:      copyplugin.New(a.Log),
		Templates:  templateplugin.New(),
		Accounts:   accountplugin.New(a.Runner, a.Log),
		Services:   a.services(),
		Downloader: archiveplugin.NewDataDownloader(fetcher),
		Generator:  commandplugin.NewGenerator(a.Runner, fetcher, a.Log),
	}, nil
}

func patcherOptions(src config.FrameworkSource) lineinfileplugin.Options {
	return lineinfileplugin.Options{
		CommentPrefix: src.PatchCommentPrefix,
		Encoding:      src.PatchEncoding,
		Backup:        src.PatchBackup,
		BackupDir:     src.PatchBackupDir,
	}
}

func (a *AppContext) services() *systemdplugin.Systemctl {
	return systemdplugin.New(a.Runner, a.Log)
}

func (a *AppContext) newProvisioner(deps provision.Collaborators, obs ports.StageObserver) (*provision.Provisioner, error) {
	bundle, err := assets.Load(a.Config.Service.TemplateDir)
	if err != nil {
		return nil, err
	}
	return provision.New(a.Config, deps, provision.Assets{
		Unit:     bundle.Unit,
		Config:   bundle.Config,
		Defaults: bundle.Defaults,
	}, provision.WithLogger(a.Log), provision.WithObserver(obs))
}

// runContext returns a context cancelled on SIGINT/SIGTERM or after the
// configured timeout, carrying a fresh run id.
func (a *AppContext) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	cancel := stop
	if secs := a.Config.Settings.Timeout; secs > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		cancel = func() {
			timeoutCancel()
			stop()
		}
	}
	return ports.WithRunID(ctx, ports.NewRunID()), cancel
}
