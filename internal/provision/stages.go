package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tatoeba/tatoprov/internal/model"
	"github.com/tatoeba/tatoprov/internal/ports"
	provErrors "github.com/tatoeba/tatoprov/pkg/errors"
)

// teardown stops the running service ahead of a reinstall. The service may
// not exist yet, so every failure here is tolerated.
func (p *Provisioner) teardown(ctx context.Context, _ *run) (string, error) {
	unit := p.cfg.Service.Unit
	if err := p.deps.Services.Stop(ctx, unit); err != nil {
		p.log.Warn(ctx, "stopping service failed, continuing", "unit", unit, "error", err)
		return fmt.Sprintf("stop %s failed (ignored)", unit), nil
	}
	return fmt.Sprintf("stopped %s", unit), nil
}

func (p *Provisioner) installDependencies(ctx context.Context, _ *run) (string, error) {
	pkgs := p.cfg.Packages.Required
	if err := p.deps.Packages.Install(ctx, pkgs...); err != nil {
		return "", provErrors.NewStageError(model.StageDependency, "install packages", err)
	}
	return fmt.Sprintf("%d packages present", len(pkgs)), nil
}

// fetch acquires both source trees. Leftovers from an earlier aborted run are
// removed first so the clone and extraction start from empty paths.
func (p *Provisioner) fetch(ctx context.Context, r *run) (string, error) {
	ws := &r.workspace
	for _, path := range []string{ws.Archive, ws.FrameworkDir, ws.DaemonDir} {
		if err := os.RemoveAll(path); err != nil {
			return "", provErrors.NewStageError(model.StageFetch, "clear workspace", err)
		}
	}
	if err := os.MkdirAll(p.cfg.Settings.Workspace, 0o755); err != nil {
		return "", provErrors.NewStageError(model.StageFetch, "create workspace", err)
	}

	fw := p.cfg.Framework
	if err := p.deps.Archives.Download(ctx, fw.ArchiveURL, ws.Archive); err != nil {
		return "", provErrors.NewStageError(model.StageFetch, "download framework", err)
	}
	top, err := p.deps.Archives.Extract(ctx, ws.Archive, p.cfg.Settings.Workspace)
	if err != nil {
		return "", provErrors.NewStageError(model.StageFetch, "extract framework", err)
	}
	if top != "" && top != ws.FrameworkDir {
		p.log.Debug(ctx, "archive unpacked under unexpected name", "expected", ws.FrameworkDir, "actual", top)
		ws.FrameworkDir = top
		ws.Track(top)
	}

	daemon := p.cfg.Daemon
	err = p.deps.Repos.Clone(ctx, ports.CloneRequest{
		URL:         daemon.RepoURL,
		Destination: ws.DaemonDir,
		Branch:      daemon.Branch,
		Depth:       daemon.Depth,
	})
	if err != nil {
		return "", provErrors.NewStageError(model.StageFetch, "clone daemon", err)
	}
	return fmt.Sprintf("cppcms %s and tatodetect fetched", fw.Version), nil
}

// build compiles the framework, installs it, then compiles the daemon
// against it. The transient packages live only for the duration of the
// stage and are released on every exit path.
func (p *Provisioner) build(ctx context.Context, r *run) (msg string, err error) {
	release, err := p.acquireTransient(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if rerr := release(); rerr != nil {
			if err == nil {
				err = rerr
				return
			}
			p.log.Warn(ctx, "releasing transient packages failed", "error", rerr)
		}
	}()

	ws := r.workspace
	fw := p.cfg.Framework
	descriptor := filepath.Join(ws.FrameworkDir, fw.PatchFile)
	changed, err := p.deps.Patcher.CommentOut(ctx, descriptor, fw.PatchLine)
	if err != nil {
		return "", provErrors.NewStageError(model.StageBuild, "patch build descriptor", err)
	}
	if !changed {
		p.log.Debug(ctx, "build descriptor already patched", "path", descriptor)
	}

	tc := p.deps.Toolchain
	jobs := p.cfg.Settings.Jobs
	steps := []struct {
		name string
		fn   func() error
	}{
		{"configure cppcms", func() error { return tc.Configure(ctx, ws.FrameworkDir) }},
		{"compile cppcms", func() error { return tc.Compile(ctx, ws.FrameworkDir, jobs) }},
		{"install cppcms", func() error { return tc.Install(ctx, ws.FrameworkDir) }},
		{"refresh linker cache", func() error { return tc.RefreshLinker(ctx) }},
		{"configure tatodetect", func() error { return tc.Configure(ctx, ws.DaemonDir) }},
		{"compile tatodetect", func() error { return tc.Compile(ctx, ws.DaemonDir, jobs) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return "", provErrors.NewStageError(model.StageBuild, step.name, err)
		}
	}
	return fmt.Sprintf("built with %d jobs", jobs), nil
}

// acquireTransient installs the transient packages and returns the matching
// release function. Releasing twice is a no-op.
func (p *Provisioner) acquireTransient(ctx context.Context) (func() error, error) {
	pkgs := p.cfg.Packages.Transient
	if len(pkgs) == 0 {
		return func() error { return nil }, nil
	}
	if err := p.deps.Packages.Install(ctx, pkgs...); err != nil {
		return nil, provErrors.NewStageError(model.StageBuild, "install transient packages", err)
	}
	released := false
	return func() error {
		if released {
			return nil
		}
		released = true
		// The build context may already be cancelled; removal must still happen.
		if err := p.deps.Packages.Remove(context.WithoutCancel(ctx), pkgs...); err != nil {
			return provErrors.NewStageError(model.StageBuild, "remove transient packages", err)
		}
		return nil
	}, nil
}

func (p *Provisioner) deploy(ctx context.Context, r *run) (string, error) {
	vars := p.templateVars()
	paths := p.cfg.Paths
	ws := r.workspace

	unit, err := p.render("unit", p.assets.Unit, vars)
	if err != nil {
		return "", err
	}
	cfgFile, err := p.render("config", p.assets.Config, vars)
	if err != nil {
		return "", err
	}
	defaults, err := p.render("defaults", p.assets.Defaults, vars)
	if err != nil {
		return "", err
	}

	files := []struct {
		artifact model.Artifact
		spec     ports.FileSpec
	}{
		{model.ArtifactBinary, ports.FileSpec{Source: filepath.Join(ws.DaemonDir, p.cfg.Daemon.Binary), Destination: paths.Binary, Mode: 0o755}},
		{model.ArtifactTool, ports.FileSpec{Source: filepath.Join(ws.DaemonDir, p.cfg.Daemon.Tool), Destination: paths.Tool, Mode: 0o755}},
		{model.ArtifactUnit, ports.FileSpec{Content: unit, Destination: paths.Unit, Mode: 0o644}},
		{model.ArtifactConfig, ports.FileSpec{Content: cfgFile, Destination: paths.Config, Mode: 0o644}},
		{model.ArtifactDefaults, ports.FileSpec{Content: defaults, Destination: paths.Defaults, Mode: 0o644}},
	}

	var changed []string
	for _, f := range files {
		ok, err := p.deps.Files.Install(ctx, f.spec)
		if err != nil {
			return "", provErrors.NewStageError(model.StageDeploy, "install "+string(f.artifact), err)
		}
		r.report.Changes.Mark(f.artifact, ok)
		if ok {
			changed = append(changed, string(f.artifact))
		}
	}

	created, err := p.deps.Accounts.EnsureSystemUser(ctx, p.cfg.Service.User)
	if err != nil {
		return "", provErrors.NewStageError(model.StageDeploy, "create service account", err)
	}
	if created {
		p.log.Info(ctx, "service account created", "user", p.cfg.Service.User)
	}

	if len(changed) == 0 {
		return "all artifacts up to date", nil
	}
	return "updated " + strings.Join(changed, ", "), nil
}

func (p *Provisioner) render(name string, tmpl []byte, vars map[string]any) ([]byte, error) {
	out, err := p.deps.Templates.Render(name, tmpl, vars)
	if err != nil {
		return nil, provErrors.NewStageError(model.StageDeploy, "render "+name, err)
	}
	return out, nil
}

// templateVars exposes the resolved paths to the deployed templates. Values
// from service.vars extend but never replace the built-in keys.
func (p *Provisioner) templateVars() map[string]any {
	vars := make(map[string]any, len(p.cfg.Service.Vars)+9)
	for k, v := range p.cfg.Service.Vars {
		vars[k] = v
	}
	vars["Binary"] = p.cfg.Paths.Binary
	vars["Tool"] = p.cfg.Paths.Tool
	vars["Config"] = p.cfg.Paths.Config
	vars["Defaults"] = p.cfg.Paths.Defaults
	vars["Unit"] = p.cfg.Service.Unit
	vars["User"] = p.cfg.Service.User
	vars["ListenAddress"] = p.cfg.Service.ListenAddr
	vars["Port"] = p.cfg.Service.ListenPort
	vars["DBFile"] = p.cfg.Data.DBFile
	return vars
}

// acquireData runs on every action, including skip.
func (p *Provisioner) acquireData(ctx context.Context, r *run) (string, error) {
	data := p.cfg.Data
	if err := os.MkdirAll(filepath.Dir(data.DBFile), 0o755); err != nil {
		return "", provErrors.NewStageError(model.StageData, "create data directory", err)
	}

	switch data.Mode {
	case model.AcquireDownload:
		changed, err := p.deps.Downloader.Fetch(ctx, data.DownloadURL, data.DBFile, 0o644)
		if err != nil {
			return "", provErrors.NewStageError(model.StageData, "download database", err)
		}
		r.report.Changes.Mark(model.ArtifactData, changed)
		if !changed {
			return "database up to date", nil
		}
		return fmt.Sprintf("downloaded %s", data.DBFile), nil
	case model.AcquireGenerate:
		err := p.deps.Generator.Generate(ctx, ports.GenerateRequest{
			Tool:       p.cfg.Paths.Tool,
			ExportsURL: data.ExportsURL,
			WorkDir:    r.workspace.ExportsDir,
			DBFile:     data.DBFile,
			User:       p.cfg.Service.User,
		})
		if err != nil {
			return "", provErrors.NewStageError(model.StageData, "generate database", err)
		}
		r.report.Changes.Mark(model.ArtifactData, true)
		return fmt.Sprintf("generated %s", data.DBFile), nil
	default:
		return "", provErrors.NewStageError(model.StageData, "", fmt.Errorf("unknown acquisition mode %q", data.Mode))
	}
}

// activate reloads unit definitions only when the unit file changed, then
// ensures the service runs and starts at boot.
func (p *Provisioner) activate(ctx context.Context, r *run) (string, error) {
	svc := p.deps.Services
	unit := p.cfg.Service.Unit
	changes := r.report.Changes
	var done []string

	if changes.UnitChanged() {
		if err := svc.Reload(ctx); err != nil {
			return "", provErrors.NewStageError(model.StageActivation, "reload units", err)
		}
		r.report.Reloaded = true
		done = append(done, "reloaded")
	}

	active, err := svc.IsActive(ctx, unit)
	if err != nil {
		p.log.Debug(ctx, "service state unknown, treating as inactive", "unit", unit, "error", err)
		active = false
	}

	if active && changes.RuntimeChanged() {
		if err := svc.Restart(ctx, unit); err != nil {
			return "", provErrors.NewStageError(model.StageActivation, "restart service", err)
		}
		r.report.Restarted = true
		done = append(done, "restarted")
	} else {
		if err := svc.Start(ctx, unit); err != nil {
			return "", provErrors.NewStageError(model.StageActivation, "start service", err)
		}
		done = append(done, "started")
	}
	r.report.Started = true

	if err := svc.Enable(ctx, unit); err != nil {
		return "", provErrors.NewStageError(model.StageActivation, "enable service", err)
	}
	r.report.Enabled = true
	done = append(done, "enabled")

	return fmt.Sprintf("%s %s", unit, strings.Join(done, ", ")), nil
}

// cleanup removes every scratch path. Missing paths are not an error, so
// running it twice has the same effect as once.
func (p *Provisioner) cleanup(ctx context.Context, r *run) (string, error) {
	var errs []error
	removed := 0
	for _, path := range r.workspace.Paths() {
		if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			continue
		}
		removed++
		p.log.Debug(ctx, "workspace path removed", "path", path)
	}
	if err := errors.Join(errs...); err != nil {
		return "", provErrors.NewStageError(model.StageCleanup, "remove workspace", err)
	}
	return fmt.Sprintf("removed %d scratch paths", removed), nil
}
