package ports

import (
	"context"
	"os"
)

// PackageManager installs and removes system packages. Both operations are
// idempotent: installing a present package or removing an absent one is a no-op.
type PackageManager interface {
	Install(ctx context.Context, names ...string) error
	Remove(ctx context.Context, names ...string) error
}

// ArchiveFetcher downloads a release archive and unpacks it.
type ArchiveFetcher interface {
	// Download stores url at dest.
	Download(ctx context.Context, url, dest string) error
	// Extract unpacks archive into dir and returns the top-level directory
	// the archive created.
	Extract(ctx context.Context, archive, dir string) (string, error)
}

// RepoCloner clones a source-control repository.
type RepoCloner interface {
	Clone(ctx context.Context, req CloneRequest) error
}

// CloneRequest describes a single clone.
type CloneRequest struct {
	URL         string
	Destination string
	Branch      string
	Depth       int
}

// Toolchain drives the native build of a source tree.
type Toolchain interface {
	Configure(ctx context.Context, dir string) error
	Compile(ctx context.Context, dir string, jobs int) error
	Install(ctx context.Context, dir string) error
	// RefreshLinker makes freshly installed shared libraries visible.
	RefreshLinker(ctx context.Context) error
}

// Patcher comments out a literal line in a build descriptor. A missing or
// already-commented line reports changed=false and no error.
type Patcher interface {
	CommentOut(ctx context.Context, path, line string) (changed bool, err error)
}

// FileSpec describes one deployed artifact.
type FileSpec struct {
	Source      string
	Content     []byte
	Destination string
	Mode        os.FileMode
}

// FileInstaller places a file at a fixed location and reports whether its
// content or mode changed.
type FileInstaller interface {
	Install(ctx context.Context, spec FileSpec) (changed bool, err error)
}

// TemplateRenderer renders a configuration template with named variables.
type TemplateRenderer interface {
	Render(name string, tmpl []byte, vars map[string]any) ([]byte, error)
}

// AccountManager creates the dedicated service account.
type AccountManager interface {
	// EnsureSystemUser creates name when missing; existing accounts are left alone.
	EnsureSystemUser(ctx context.Context, name string) (created bool, err error)
}

// ServiceManager controls units of the host init system.
type ServiceManager interface {
	Reload(ctx context.Context) error
	Start(ctx context.Context, unit string) error
	Restart(ctx context.Context, unit string) error
	Stop(ctx context.Context, unit string) error
	Enable(ctx context.Context, unit string) error
	IsActive(ctx context.Context, unit string) (bool, error)
	IsEnabled(ctx context.Context, unit string) (bool, error)
}

// DataDownloader fetches the prebuilt n-gram database.
type DataDownloader interface {
	// Fetch writes url to dest with mode and reports whether dest changed.
	Fetch(ctx context.Context, url, dest string, mode os.FileMode) (changed bool, err error)
}

// DataGenerator produces the n-gram database in place.
type DataGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) error
}

// GenerateRequest parameterises one generator run.
type GenerateRequest struct {
	Tool       string
	ExportsURL string
	WorkDir    string
	DBFile     string
	User       string
}
