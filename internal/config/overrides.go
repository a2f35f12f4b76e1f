package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tatoeba/tatoprov/internal/model"
)

// Environment variables consulted by EnvOverrides.
const (
	EnvForceInstall = "TATOPROV_FORCE_INSTALL"
	EnvCreateMode   = "TATOPROV_NGRAMS_CREATE_MODE"
	EnvDownloadURL  = "TATOPROV_NGRAMS_DB_DOWNLOAD_URL"
	EnvDBFile       = "TATOPROV_NGRAMS_DB_FILE"
)

// EnvOverrides reads run parameters from the environment through lookup,
// typically os.LookupEnv.
func EnvOverrides(lookup func(string) (string, bool)) (Overrides, error) {
	var o Overrides
	if lookup == nil {
		return o, nil
	}

	if raw, ok := lookup(EnvForceInstall); ok && strings.TrimSpace(raw) != "" {
		force, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return o, fmt.Errorf("invalid %s %q: %w", EnvForceInstall, raw, err)
		}
		o.ForceInstall = &force
	}
	if raw, ok := lookup(EnvCreateMode); ok && strings.TrimSpace(raw) != "" {
		mode := strings.ToLower(strings.TrimSpace(raw))
		o.Mode = &mode
	}
	if raw, ok := lookup(EnvDownloadURL); ok && strings.TrimSpace(raw) != "" {
		u := strings.TrimSpace(raw)
		o.DownloadURL = &u
	}
	if raw, ok := lookup(EnvDBFile); ok && strings.TrimSpace(raw) != "" {
		p := strings.TrimSpace(raw)
		o.DBFile = &p
	}

	return o, nil
}

// Merge returns o with every field set in next taking precedence.
func (o Overrides) Merge(next Overrides) Overrides {
	if next.ForceInstall != nil {
		o.ForceInstall = next.ForceInstall
	}
	if next.Mode != nil {
		o.Mode = next.Mode
	}
	if next.DownloadURL != nil {
		o.DownloadURL = next.DownloadURL
	}
	if next.DBFile != nil {
		o.DBFile = next.DBFile
	}
	if next.DryRun != nil {
		o.DryRun = next.DryRun
	}
	if next.Verbose != nil {
		o.Verbose = next.Verbose
	}
	return o
}

// Apply writes the set fields of o into cfg.
func (o Overrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.ForceInstall != nil {
		cfg.Settings.ForceInstall = *o.ForceInstall
	}
	if o.Mode != nil {
		cfg.Data.Mode = model.AcquisitionMode(*o.Mode)
	}
	if o.DownloadURL != nil {
		cfg.Data.DownloadURL = *o.DownloadURL
	}
	if o.DBFile != nil {
		cfg.Data.DBFile = *o.DBFile
	}
	if o.DryRun != nil {
		cfg.Settings.DryRun = *o.DryRun
	}
	if o.Verbose != nil {
		cfg.Settings.Verbose = *o.Verbose
	}
}

// Resolve loads path, layers env then explicit overrides on top, and
// validates the result.
func Resolve(path string, lookup func(string) (string, bool), explicit Overrides) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	env, err := EnvOverrides(lookup)
	if err != nil {
		return nil, err
	}
	env.Merge(explicit).Apply(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
