package provision

import (
	"context"
	"fmt"

	"github.com/tatoeba/tatoprov/internal/model"
)

// Plan probes the host and reports what Run would do without touching it.
// Only the prober and read-only service queries execute.
func (p *Provisioner) Plan(ctx context.Context) (*model.Report, error) {
	r := p.newRun(ctx)
	r.report.DryRun = true
	action := r.report.Action

	planned := func(stage, msg string) {
		p.notifyStart(ctx, stage)
		p.record(ctx, r, model.StageResult{Stage: stage, Status: model.StatusPlanned, Message: msg, Timestamp: p.now()})
	}
	skipped := func(stage, msg string) {
		p.record(ctx, r, model.StageResult{Stage: stage, Status: model.StatusSkipped, Message: msg, Timestamp: p.now()})
	}

	if action == model.ActionReinstall {
		planned(model.StageTeardown, fmt.Sprintf("stop %s", p.cfg.Service.Unit))
	} else {
		skipped(model.StageTeardown, "service not being replaced")
	}

	if action.Proceeds() {
		planned(model.StageDependency, fmt.Sprintf("install %d packages", len(p.cfg.Packages.Required)))
		planned(model.StageFetch, fmt.Sprintf("download cppcms %s, clone %s", p.cfg.Framework.Version, p.cfg.Daemon.RepoURL))
		planned(model.StageBuild, fmt.Sprintf("build cppcms and tatodetect with %d jobs", p.cfg.Settings.Jobs))
		planned(model.StageDeploy, fmt.Sprintf("install %s and service files", p.cfg.Paths.Binary))
	} else {
		for _, stage := range []string{model.StageDependency, model.StageFetch, model.StageBuild, model.StageDeploy} {
			skipped(stage, "daemon already installed")
		}
	}

	switch p.cfg.Data.Mode {
	case model.AcquireGenerate:
		planned(model.StageData, fmt.Sprintf("generate %s from %s", p.cfg.Data.DBFile, p.cfg.Data.ExportsURL))
	default:
		planned(model.StageData, fmt.Sprintf("download %s to %s", p.cfg.Data.DownloadURL, p.cfg.Data.DBFile))
	}

	unit := p.cfg.Service.Unit
	msg := fmt.Sprintf("start and enable %s", unit)
	if enabled, err := p.deps.Services.IsEnabled(ctx, unit); err == nil && enabled {
		msg = fmt.Sprintf("start %s (already enabled)", unit)
	}
	if action.Proceeds() {
		msg = "reload units if the unit file changed, " + msg
	}
	planned(model.StageActivation, msg)
	planned(model.StageCleanup, fmt.Sprintf("remove %d scratch paths", len(r.workspace.Paths())))

	r.report.Workspace = r.workspace.Paths()
	return r.report, nil
}
