package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tatoeba/tatoprov/internal/model"
)

var reportedArtifacts = []model.Artifact{
	model.ArtifactUnit,
	model.ArtifactBinary,
	model.ArtifactTool,
	model.ArtifactConfig,
	model.ArtifactDefaults,
	model.ArtifactData,
}

func printReport(out io.Writer, report *model.Report) {
	if report == nil {
		return
	}
	header := "run"
	if report.DryRun {
		header = "plan"
	}
	fmt.Fprintf(out, "%s %s: state=%s action=%s mode=%s\n", header, report.RunID, report.State, report.Action, report.Mode)
	for _, res := range report.Stages {
		line := fmt.Sprintf("  %-13s %-8s", res.Stage, res.Status)
		if res.Message != "" {
			line += " " + res.Message
		}
		if res.Error != nil {
			line += " error: " + res.Error.Error()
		}
		fmt.Fprintln(out, line)
	}
	if report.DryRun {
		return
	}
	fmt.Fprintf(out, "changed: %s\n", changedList(report.Changes))
	fmt.Fprintf(out, "service: reloaded=%t restarted=%t started=%t enabled=%t\n",
		report.Reloaded, report.Restarted, report.Started, report.Enabled)
}

func changedList(changes model.ChangeMarkers) string {
	var names []string
	for _, a := range reportedArtifacts {
		if changes.Changed(a) {
			names = append(names, string(a))
		}
	}
	if len(names) == 0 {
		return "nothing"
	}
	return strings.Join(names, ", ")
}
