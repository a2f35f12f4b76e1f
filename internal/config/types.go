package config

import (
	"github.com/tatoeba/tatoprov/internal/model"
)

// Config represents the full provisioning document.
type Config struct {
	Version   string          `yaml:"version" validate:"required,semver"`
	Name      string          `yaml:"name" validate:"required,min=1,max=100"`
	Settings  Settings        `yaml:"settings"`
	Packages  Packages        `yaml:"packages"`
	Framework FrameworkSource `yaml:"cppcms"`
	Daemon    DaemonSource    `yaml:"tatodetect"`
	Service   Service         `yaml:"service"`
	Paths     Paths           `yaml:"paths"`
	Data      Data            `yaml:"data"`
	Verify    VerifySettings  `yaml:"verify"`
}

// Settings holds run-wide parameters.
type Settings struct {
	ForceInstall bool   `yaml:"force_install"`
	DryRun       bool   `yaml:"dry_run,omitempty"`
	Verbose      bool   `yaml:"verbose,omitempty"`
	Timeout      int    `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=86400"`
	Jobs         int    `yaml:"jobs" validate:"min=1,max=64"`
	Workspace    string `yaml:"workspace" validate:"required,abs_path"`
	LockFile     string `yaml:"lock_file" validate:"required,abs_path"`
}

// Packages lists the system packages the build needs.
type Packages struct {
	Required  []string `yaml:"required" validate:"required,min=1,dive,deb_package"`
	Transient []string `yaml:"transient,omitempty" validate:"omitempty,dive,deb_package"`
}

// FrameworkSource locates the cppcms release archive.
type FrameworkSource struct {
	Version    string `yaml:"version" validate:"required,semver"`
	ArchiveURL string `yaml:"archive_url" validate:"required,url"`
	PatchFile  string `yaml:"patch_file" validate:"required"`
	PatchLine  string `yaml:"patch_line" validate:"required"`
	// Patch* tune how PatchLine is disabled in PatchFile.
	PatchCommentPrefix string `yaml:"patch_comment_prefix,omitempty"`
	PatchEncoding      string `yaml:"patch_encoding,omitempty"`
	PatchBackup        bool   `yaml:"patch_backup,omitempty"`
	PatchBackupDir     string `yaml:"patch_backup_dir,omitempty" validate:"omitempty,abs_path"`
}

// DaemonSource locates the tatodetect repository.
type DaemonSource struct {
	RepoURL string `yaml:"repo_url" validate:"required,git_url"`
	Branch  string `yaml:"branch,omitempty"`
	Depth   int    `yaml:"depth,omitempty" validate:"omitempty,min=0"`
	Binary  string `yaml:"binary_path" validate:"required"`
	Tool    string `yaml:"tool_path" validate:"required"`
}

// Service describes the systemd unit and its runtime account.
type Service struct {
	Unit       string `yaml:"unit" validate:"required"`
	Binary     string `yaml:"binary" validate:"required"`
	User       string `yaml:"user" validate:"required,unix_user"`
	ListenAddr string `yaml:"listen_address" validate:"omitempty,ip"`
	ListenPort int    `yaml:"listen_port" validate:"min=1,max=65535"`
	// TemplateDir optionally holds replacements for the embedded templates.
	TemplateDir string         `yaml:"template_dir,omitempty" validate:"omitempty,abs_path"`
	Vars        map[string]any `yaml:"vars,omitempty"`
}

// Paths are the fixed install locations of deployed artifacts.
type Paths struct {
	Binary   string `yaml:"binary" validate:"required,abs_path"`
	Tool     string `yaml:"tool" validate:"required,abs_path"`
	Unit     string `yaml:"unit" validate:"required,abs_path"`
	Config   string `yaml:"config" validate:"required,abs_path"`
	Defaults string `yaml:"defaults" validate:"required,abs_path"`
}

// Data configures how the n-gram database is obtained.
type Data struct {
	Mode        model.AcquisitionMode `yaml:"ngrams_create_mode" validate:"required,oneof=download generate"`
	DownloadURL string                `yaml:"ngrams_db_download_url" validate:"required_if=Mode download,omitempty,url"`
	DBFile      string                `yaml:"ngrams_db_file" validate:"required,abs_path"`
	ExportsURL  string                `yaml:"exports_url" validate:"required_if=Mode generate,omitempty,url"`
}

// VerifySettings tunes the post-provision checks.
type VerifySettings struct {
	CheckService bool `yaml:"check_service"`
	// Commands are extra shell checks; each must exit 0.
	Commands []string `yaml:"commands,omitempty" validate:"omitempty,dive,required"`
}

// Overrides carries run parameters supplied outside the config file. Nil
// fields leave the file value untouched.
type Overrides struct {
	ForceInstall *bool
	Mode         *string
	DownloadURL  *string
	DBFile       *string
	DryRun       *bool
	Verbose      *bool
}
