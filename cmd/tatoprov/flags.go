package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tatoeba/tatoprov/internal/config"
)

const (
	logFormatText = "text"
	logFormatJSON = "json"
)

func validateRootFlags(flags *rootFlags) error {
	if strings.TrimSpace(flags.configPath) == "" {
		return fmt.Errorf("config file is required (--config)")
	}

	abs, err := filepath.Abs(flags.configPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("config file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", abs)
	}
	flags.configPath = abs

	switch flags.logFormat {
	case logFormatText, logFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", flags.logFormat)
	}
	return nil
}

// runFlags are the per-run parameters that override the config file.
type runFlags struct {
	forceInstall bool
	mode         string
	downloadURL  string
	dbFile       string
	dryRun       bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.forceInstall, "force-install", false, "Rebuild and reinstall even when tatodetect is present")
	cmd.Flags().StringVar(&f.mode, "ngrams-create-mode", "", "How to obtain the n-gram database: download or generate")
	cmd.Flags().StringVar(&f.downloadURL, "ngrams-db-download-url", "", "URL of the prebuilt n-gram database")
	cmd.Flags().StringVar(&f.dbFile, "ngrams-db-file", "", "Install path of the n-gram database")
}

// overrides returns only the flags the user actually set.
func (f *runFlags) overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("force-install") {
		o.ForceInstall = &f.forceInstall
	}
	if changed("ngrams-create-mode") {
		mode := strings.ToLower(strings.TrimSpace(f.mode))
		o.Mode = &mode
	}
	if changed("ngrams-db-download-url") {
		o.DownloadURL = &f.downloadURL
	}
	if changed("ngrams-db-file") {
		o.DBFile = &f.dbFile
	}
	if changed("dry-run") {
		o.DryRun = &f.dryRun
	}
	return o
}
