package commandplugin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/plugins/internalexec"
	"github.com/tatoeba/tatoprov/internal/ports"
)

// Toolchain builds CMake projects in-tree with make.
type Toolchain struct {
	runner internalexec.Runner
	log    ports.Logger
}

var _ ports.Toolchain = (*Toolchain)(nil)

// NewToolchain creates a Toolchain that runs its commands through runner.
func NewToolchain(runner internalexec.Runner, log ports.Logger) *Toolchain {
	if log == nil {
		log = logger.Nop()
	}
	return &Toolchain{runner: runner, log: log}
}

// Configure generates the build plan for the tree at dir.
func (t *Toolchain) Configure(ctx context.Context, dir string) error {
	return t.run(ctx, dir, "cmake", ".")
}

// Compile builds dir with a fixed number of parallel jobs.
func (t *Toolchain) Compile(ctx context.Context, dir string, jobs int) error {
	if jobs < 1 {
		return fmt.Errorf("invalid job count %d", jobs)
	}
	return t.run(ctx, dir, "make", "-j"+strconv.Itoa(jobs))
}

// Install copies the build outputs of dir to system locations.
func (t *Toolchain) Install(ctx context.Context, dir string) error {
	return t.run(ctx, dir, "make", "install")
}

// RefreshLinker rebuilds the shared library cache.
func (t *Toolchain) RefreshLinker(ctx context.Context) error {
	return t.run(ctx, "", "ldconfig")
}

func (t *Toolchain) run(ctx context.Context, dir, name string, args ...string) error {
	t.log.Debug(ctx, "running build command", "dir", dir, "command", name, "args", args)
	if _, err := t.runner.In(dir).Run(ctx, name, args...); err != nil {
		return err
	}
	return nil
}
