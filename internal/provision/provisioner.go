package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tatoeba/tatoprov/internal/config"
	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/model"
	"github.com/tatoeba/tatoprov/internal/ports"
	provErrors "github.com/tatoeba/tatoprov/pkg/errors"
)

// Collaborators bundles the host-facing capabilities a run depends on.
type Collaborators struct {
	Packages   ports.PackageManager
	Archives   ports.ArchiveFetcher
	Repos      ports.RepoCloner
	Toolchain  ports.Toolchain
	Patcher    ports.Patcher
	Files      ports.FileInstaller
	Templates  ports.TemplateRenderer
	Accounts   ports.AccountManager
	Services   ports.ServiceManager
	Downloader ports.DataDownloader
	Generator  ports.DataGenerator
}

func (c Collaborators) validate() error {
	missing := []struct {
		name string
		nil  bool
	}{
		{"packages", c.Packages == nil},
		{"archives", c.Archives == nil},
		{"repos", c.Repos == nil},
		{"toolchain", c.Toolchain == nil},
		{"patcher", c.Patcher == nil},
		{"files", c.Files == nil},
		{"templates", c.Templates == nil},
		{"accounts", c.Accounts == nil},
		{"services", c.Services == nil},
		{"downloader", c.Downloader == nil},
		{"generator", c.Generator == nil},
	}
	for _, m := range missing {
		if m.nil {
			return fmt.Errorf("collaborator %q is not configured", m.name)
		}
	}
	return nil
}

// Assets are the templates deployed alongside the daemon.
type Assets struct {
	Unit     []byte
	Config   []byte
	Defaults []byte
}

// Option customises a Provisioner.
type Option func(*Provisioner)

// WithLogger sets the run logger.
func WithLogger(log ports.Logger) Option {
	return func(p *Provisioner) {
		if log != nil {
			p.log = log
		}
	}
}

// WithObserver registers a stage progress observer.
func WithObserver(obs ports.StageObserver) Option {
	return func(p *Provisioner) { p.observer = obs }
}

// WithProber replaces the default search-path prober.
func WithProber(prober Prober) Option {
	return func(p *Provisioner) {
		if prober != nil {
			p.prober = prober
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Provisioner) {
		if now != nil {
			p.now = now
		}
	}
}

// Provisioner drives the stages of one run strictly in sequence.
type Provisioner struct {
	cfg      *config.Config
	deps     Collaborators
	assets   Assets
	prober   Prober
	log      ports.Logger
	observer ports.StageObserver
	now      func() time.Time
}

// New builds a Provisioner for cfg. cfg is expected to have passed validation.
func New(cfg *config.Config, deps Collaborators, assets Assets, opts ...Option) (*Provisioner, error) {
	if cfg == nil {
		return nil, errors.New("provisioner requires a config")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	p := &Provisioner{
		cfg:    cfg,
		deps:   deps,
		assets: assets,
		prober: NewPathProber(cfg.Service.Binary),
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// run carries the mutable state of a single execution.
type run struct {
	report    *model.Report
	workspace Workspace
}

// Run probes the host, decides the action and executes every stage. The
// returned report is populated even when a stage fails.
func (p *Provisioner) Run(ctx context.Context) (*model.Report, error) {
	if p.cfg.Settings.DryRun {
		return p.Plan(ctx)
	}

	r := p.newRun(ctx)
	log := p.log.With("run_action", r.report.Action.String())
	log.Info(ctx, "provisioning started",
		"state", r.report.State.String(),
		"mode", string(r.report.Mode),
	)

	proceeds := r.report.Action.Proceeds()
	stages := []struct {
		name    string
		enabled bool
		skip    string
		fn      func(context.Context, *run) (string, error)
	}{
		{model.StageTeardown, r.report.Action == model.ActionReinstall, "service not being replaced", p.teardown},
		{model.StageDependency, proceeds, "daemon already installed", p.installDependencies},
		{model.StageFetch, proceeds, "daemon already installed", p.fetch},
		{model.StageBuild, proceeds, "daemon already installed", p.build},
		{model.StageDeploy, proceeds, "daemon already installed", p.deploy},
		{model.StageData, true, "", p.acquireData},
		{model.StageActivation, true, "", p.activate},
		{model.StageCleanup, true, "", p.cleanup},
	}

	for _, stage := range stages {
		if !stage.enabled {
			p.record(ctx, r, model.StageResult{
				Stage:     stage.name,
				Status:    model.StatusSkipped,
				Message:   stage.skip,
				Timestamp: p.now(),
			})
			continue
		}
		if err := p.execute(ctx, r, stage.name, stage.fn); err != nil {
			log.Error(ctx, "provisioning failed", "stage", stage.name, "error", err)
			r.report.Workspace = r.workspace.Paths()
			return r.report, err
		}
	}

	r.report.Workspace = r.workspace.Paths()
	log.Info(ctx, "provisioning finished",
		"reloaded", r.report.Reloaded,
		"restarted", r.report.Restarted,
	)
	return r.report, nil
}

func (p *Provisioner) newRun(ctx context.Context) *run {
	r := &run{
		report: &model.Report{
			RunID:  ports.RunID(ctx),
			Mode:   p.cfg.Data.Mode,
			DryRun: p.cfg.Settings.DryRun,
		},
		workspace: NewWorkspace(p.cfg),
	}

	p.notifyStart(ctx, model.StageProbe)
	start := p.now()
	r.report.State = p.prober.Probe(ctx)
	r.report.Action = Decide(r.report.State, p.cfg.Settings.ForceInstall)
	p.record(ctx, r, model.StageResult{
		Stage:     model.StageProbe,
		Status:    model.StatusSuccess,
		Message:   fmt.Sprintf("daemon %s, action %s", r.report.State, r.report.Action),
		Duration:  p.now().Sub(start),
		Timestamp: p.now(),
	})
	return r
}

func (p *Provisioner) execute(ctx context.Context, r *run, stage string, fn func(context.Context, *run) (string, error)) error {
	if err := ctx.Err(); err != nil {
		err = provErrors.NewStageError(stage, "", err)
		p.record(ctx, r, model.StageResult{Stage: stage, Status: model.StatusFailed, Error: err, Timestamp: p.now()})
		return err
	}

	p.notifyStart(ctx, stage)
	p.log.Debug(ctx, "stage started", "stage", stage)

	start := p.now()
	message, err := fn(ctx, r)
	duration := p.now().Sub(start)

	result := model.StageResult{
		Stage:     stage,
		Status:    model.StatusSuccess,
		Message:   message,
		Duration:  duration,
		Timestamp: p.now(),
	}
	if err != nil {
		var stageErr *provErrors.StageError
		if !errors.As(err, &stageErr) {
			err = provErrors.NewStageError(stage, "", err)
		}
		result.Status = model.StatusFailed
		result.Error = err
		result.Message = err.Error()
	}
	p.record(ctx, r, result)

	if err != nil {
		return err
	}
	p.log.Info(ctx, "stage completed", "stage", stage, "duration", duration, "message", message)
	return nil
}

func (p *Provisioner) record(ctx context.Context, r *run, result model.StageResult) {
	r.report.Stages = append(r.report.Stages, result)
	if p.observer != nil {
		p.observer.StageFinished(ctx, result)
	}
}

func (p *Provisioner) notifyStart(ctx context.Context, stage string) {
	if p.observer != nil {
		p.observer.StageStarted(ctx, stage)
	}
}
