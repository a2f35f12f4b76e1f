package provision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"text/template"

	"github.com/stretchr/testify/require"

	"github.com/tatoeba/tatoprov/internal/config"
	"github.com/tatoeba/tatoprov/internal/model"
	"github.com/tatoeba/tatoprov/internal/ports"
)

// host is a scripted stand-in for every collaborator. It records calls in
// order as "component.op args".
type host struct {
	mu    sync.Mutex
	calls []string

	failOn    map[string]error
	changed   map[string]bool
	active    bool
	activeErr error
	enabled   bool
	created   bool

	installed map[string]bool
}

func newHost() *host {
	return &host{
		failOn:    map[string]error{},
		changed:   map[string]bool{},
		installed: map[string]bool{},
	}
}

func (h *host) call(format string, args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry := fmt.Sprintf(format, args...)
	h.calls = append(h.calls, entry)
	for prefix, err := range h.failOn {
		if strings.HasPrefix(entry, prefix) {
			return err
		}
	}
	return nil
}

func (h *host) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *host) index(prefix string) int {
	for i, c := range h.Calls() {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

func (h *host) count(prefix string) int {
	n := 0
	for _, c := range h.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type fakePackages struct{ h *host }

func (f fakePackages) Install(_ context.Context, names ...string) error {
	if err := f.h.call("apt.install %s", strings.Join(names, " ")); err != nil {
		return err
	}
	for _, n := range names {
		f.h.installed[n] = true
	}
	return nil
}

func (f fakePackages) Remove(_ context.Context, names ...string) error {
	if err := f.h.call("apt.remove %s", strings.Join(names, " ")); err != nil {
		return err
	}
	for _, n := range names {
		delete(f.h.installed, n)
	}
	return nil
}

type fakeArchives struct{ h *host }

func (f fakeArchives) Download(_ context.Context, url, dest string) error {
	if err := f.h.call("archive.download %s", url); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("archive"), 0o644)
}

func (f fakeArchives) Extract(_ context.Context, archive, dir string) (string, error) {
	if err := f.h.call("archive.extract %s", filepath.Base(archive)); err != nil {
		return "", err
	}
	top := filepath.Join(dir, strings.TrimSuffix(filepath.Base(archive), ".tar.bz2"))
	if err := os.MkdirAll(top, 0o755); err != nil {
		return "", err
	}
	return top, os.WriteFile(filepath.Join(top, "CMakeLists.txt"), []byte("enable_testing()\n"), 0o644)
}

type fakeRepos struct{ h *host }

func (f fakeRepos) Clone(_ context.Context, req ports.CloneRequest) error {
	if err := f.h.call("git.clone %s", req.URL); err != nil {
		return err
	}
	if _, err := os.Stat(req.Destination); err == nil {
		return errors.New("destination already exists")
	}
	return os.MkdirAll(req.Destination, 0o755)
}

type fakeToolchain struct{ h *host }

func (f fakeToolchain) Configure(_ context.Context, dir string) error {
	return f.h.call("build.configure %s", filepath.Base(dir))
}

func (f fakeToolchain) Compile(_ context.Context, dir string, jobs int) error {
	return f.h.call("build.compile %s -j%d", filepath.Base(dir), jobs)
}

func (f fakeToolchain) Install(_ context.Context, dir string) error {
	return f.h.call("build.install %s", filepath.Base(dir))
}

func (f fakeToolchain) RefreshLinker(context.Context) error {
	return f.h.call("build.ldconfig")
}

type fakePatcher struct{ h *host }

func (f fakePatcher) CommentOut(_ context.Context, path, line string) (bool, error) {
	return true, f.h.call("patch %s %s", filepath.Base(path), line)
}

type fakeFiles struct{ h *host }

func (f fakeFiles) Install(_ context.Context, spec ports.FileSpec) (bool, error) {
	if err := f.h.call("file.install %s", spec.Destination); err != nil {
		return false, err
	}
	return f.h.changed[spec.Destination], nil
}

type textRenderer struct{}

func (textRenderer) Render(name string, tmpl []byte, vars map[string]any) ([]byte, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(string(tmpl))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type fakeAccounts struct{ h *host }

func (f fakeAccounts) EnsureSystemUser(_ context.Context, name string) (bool, error) {
	return f.h.created, f.h.call("account.ensure %s", name)
}

type fakeServices struct{ h *host }

func (f fakeServices) Reload(context.Context) error { return f.h.call("systemctl.daemon-reload") }
func (f fakeServices) Start(_ context.Context, unit string) error {
	return f.h.call("systemctl.start %s", unit)
}
func (f fakeServices) Restart(_ context.Context, unit string) error {
	return f.h.call("systemctl.restart %s", unit)
}
func (f fakeServices) Stop(_ context.Context, unit string) error {
	return f.h.call("systemctl.stop %s", unit)
}
func (f fakeServices) Enable(_ context.Context, unit string) error {
	return f.h.call("systemctl.enable %s", unit)
}
func (f fakeServices) IsActive(_ context.Context, unit string) (bool, error) {
	return f.h.active, errors.Join(f.h.call("systemctl.is-active %s", unit), f.h.activeErr)
}
func (f fakeServices) IsEnabled(_ context.Context, unit string) (bool, error) {
	return f.h.enabled, f.h.call("systemctl.is-enabled %s", unit)
}

type fakeDownloader struct{ h *host }

func (f fakeDownloader) Fetch(_ context.Context, url, dest string, _ os.FileMode) (bool, error) {
	if err := f.h.call("data.download %s", url); err != nil {
		return false, err
	}
	return f.h.changed[dest], nil
}

type fakeGenerator struct{ h *host }

func (f fakeGenerator) Generate(_ context.Context, req ports.GenerateRequest) error {
	if err := f.h.call("data.generate %s", req.DBFile); err != nil {
		return err
	}
	return os.MkdirAll(req.WorkDir, 0o755)
}

func (h *host) collaborators() Collaborators {
	return Collaborators{
		Packages:   fakePackages{h},
		Archives:   fakeArchives{h},
		Repos:      fakeRepos{h},
		Toolchain:  fakeToolchain{h},
		Patcher:    fakePatcher{h},
		Files:      fakeFiles{h},
		Templates:  textRenderer{},
		Accounts:   fakeAccounts{h},
		Services:   fakeServices{h},
		Downloader: fakeDownloader{h},
		Generator:  fakeGenerator{h},
	}
}

var testAssets = Assets{
	Unit:     []byte("[Service]\nUser={{ .User }}\nExecStart={{ .Binary }}\n"),
	Config:   []byte(`{"port": {{ .Port }}, "db": "{{ .DBFile }}"}`),
	Defaults: []byte("CONFIG={{ .Config }}\n"),
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Settings.Workspace = t.TempDir()
	cfg.Data.DBFile = filepath.Join(t.TempDir(), "ngrams.db")
	cfg.Data.DownloadURL = "https://example.org/ngrams.db"
	return cfg
}

func present() Prober {
	return ProberFunc(func(context.Context) model.InstallState { return model.StatePresent })
}

func absent() Prober {
	return ProberFunc(func(context.Context) model.InstallState { return model.StateAbsent })
}

func newTestProvisioner(t *testing.T, cfg *config.Config, h *host, prober Prober, opts ...Option) *Provisioner {
	t.Helper()
	opts = append([]Option{WithProber(prober)}, opts...)
	p, err := New(cfg, h.collaborators(), testAssets, opts...)
	require.NoError(t, err)
	return p
}
