package provision

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tatoeba/tatoprov/internal/config"
)

var archiveSuffixes = []string{".tar.bz2", ".tbz2", ".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar.zst"}

// Workspace holds the scratch paths owned by a single run.
type Workspace struct {
	Archive      string
	FrameworkDir string
	DaemonDir    string
	ExportsDir   string

	extra []string
}

// NewWorkspace derives the scratch layout from cfg.
func NewWorkspace(cfg *config.Config) Workspace {
	root := cfg.Settings.Workspace
	base := fmt.Sprintf("cppcms-%s", cfg.Framework.Version)
	return Workspace{
		Archive:      filepath.Join(root, base+archiveSuffix(cfg.Framework.ArchiveURL)),
		FrameworkDir: filepath.Join(root, base),
		DaemonDir:    filepath.Join(root, "tatodetect"),
		ExportsDir:   filepath.Join(root, "tatodetect-exports"),
	}
}

// Track adds a path discovered at run time, such as an archive whose
// top-level directory differs from the expected name.
func (w *Workspace) Track(path string) {
	if path == "" {
		return
	}
	for _, p := range w.Paths() {
		if p == path {
			return
		}
	}
	w.extra = append(w.extra, path)
}

// Paths lists every scratch path, fixed ones first.
func (w Workspace) Paths() []string {
	paths := []string{w.Archive, w.FrameworkDir, w.DaemonDir, w.ExportsDir}
	return append(paths, w.extra...)
}

func archiveSuffix(url string) string {
	lower := strings.ToLower(url)
	for _, suffix := range archiveSuffixes {
		if strings.Contains(lower, suffix) {
			return suffix
		}
	}
	return ".tar.bz2"
}
