package commandplugin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strconv"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/plugins/internalexec"
	"github.com/tatoeba/tatoprov/internal/ports"
)

// Corpus export archives consumed by the generator.
const (
	SentencesExport = "sentences_detailed"
	TagsExport      = "tags"
)

// Generator builds the n-gram database from the weekly corpus exports with
// the generator script shipped by the daemon.
type Generator struct {
	runner      internalexec.Runner
	archives    ports.ArchiveFetcher
	interpreter string
	log         ports.Logger
}

var _ ports.DataGenerator = (*Generator)(nil)

// NewGenerator creates a Generator. The script is run with python3.
func NewGenerator(runner internalexec.Runner, archives ports.ArchiveFetcher, log ports.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{runner: runner, archives: archives, interpreter: "python3", log: log}
}

// Generate implements ports.DataGenerator. The database is produced next to
// req.DBFile and renamed over it once the script succeeds.
func (g *Generator) Generate(ctx context.Context, req ports.GenerateRequest) error {
	if req.Tool == "" || req.DBFile == "" || req.WorkDir == "" {
		return errors.New("generator requires tool, database path and work directory")
	}
	if err := os.MkdirAll(req.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}

	sentences, err := g.fetchExport(ctx, req.ExportsURL, SentencesExport, req.WorkDir)
	if err != nil {
		return err
	}
	tags, err := g.fetchExport(ctx, req.ExportsURL, TagsExport, req.WorkDir)
	if err != nil {
		return err
	}

	staging := req.DBFile + ".new"
	_ = os.Remove(staging)
	g.log.Info(ctx, "generating n-gram database", "sentences", sentences, "output", req.DBFile)
	if _, err := g.runner.In(req.WorkDir).Run(ctx, g.interpreter, req.Tool, sentences, staging, tags); err != nil {
		_ = os.Remove(staging)
		return fmt.Errorf("generator failed: %w", err)
	}
	if _, err := os.Stat(staging); err != nil {
		return fmt.Errorf("generator produced no database: %w", err)
	}

	if err := os.Chmod(staging, 0o644); err != nil {
		return err
	}
	if req.User != "" {
		if err := chownTo(staging, req.User); err != nil {
			_ = os.Remove(staging)
			return err
		}
	}
	if err := os.Rename(staging, req.DBFile); err != nil {
		_ = os.Remove(staging)
		return fmt.Errorf("move generated database into place: %w", err)
	}
	return nil
}

// fetchExport downloads <base>/<name>.tar.bz2 and returns the extracted csv.
func (g *Generator) fetchExport(ctx context.Context, base, name, dir string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid exports url %q: %w", base, err)
	}
	u.Path = path.Join(u.Path, name+".tar.bz2")

	archive := filepath.Join(dir, name+".tar.bz2")
	if err := g.archives.Download(ctx, u.String(), archive); err != nil {
		return "", fmt.Errorf("download %s export: %w", name, err)
	}
	if _, err := g.archives.Extract(ctx, archive, dir); err != nil {
		return "", fmt.Errorf("extract %s export: %w", name, err)
	}

	csv := filepath.Join(dir, name+".csv")
	if _, err := os.Stat(csv); err != nil {
		return "", fmt.Errorf("export %s did not contain %s.csv: %w", name, name, err)
	}
	return csv, nil
}

func chownTo(file, name string) error {
	u, err := user.Lookup(name)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", name, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return err
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return err
	}
	if err := os.Chown(file, uid, gid); err != nil {
		return fmt.Errorf("chown %s to %s: %w", file, name, err)
	}
	return nil
}
