package copyplugin

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/ports"
	"github.com/tatoeba/tatoprov/pkg/diff"
)

// State classifies a destination relative to the desired file.
type State int

const (
	StateMissing State = iota
	StateDrifted
	StateSatisfied
)

// Evaluation is the read-only comparison of a FileSpec with the host.
type Evaluation struct {
	State       State
	Message     string
	Diff        string
	ModeOnly    bool
	desired     []byte
	desiredHash string
}

// Installer places files at fixed paths. Content and mode are compared
// first; matching destinations are never rewritten.
type Installer struct {
	log ports.Logger
}

var _ ports.FileInstaller = (*Installer)(nil)

// New creates an Installer.
func New(log ports.Logger) *Installer {
	if log == nil {
		log = logger.Nop()
	}
	return &Installer{log: log}
}

// Evaluate compares spec with its destination without modifying anything.
func (i *Installer) Evaluate(ctx context.Context, spec ports.FileSpec) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Destination == "" {
		return nil, errors.New("file destination is empty")
	}

	desired := spec.Content
	if spec.Source != "" {
		info, err := os.Stat(spec.Source)
		if err != nil {
			return nil, fmt.Errorf("cannot stat source: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source %s is a directory", spec.Source)
		}
		if desired, err = os.ReadFile(spec.Source); err != nil {
			return nil, fmt.Errorf("cannot read source: %w", err)
		}
	}

	eval := &Evaluation{desired: desired, desiredHash: hashBytes(desired)}

	dstInfo, err := os.Stat(spec.Destination)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("cannot stat destination: %w", err)
		}
		eval.State = StateMissing
		eval.Message = fmt.Sprintf("destination %s does not exist", spec.Destination)
		return eval, nil
	}
	if dstInfo.IsDir() {
		return nil, fmt.Errorf("destination %s is a directory", spec.Destination)
	}

	current, err := os.ReadFile(spec.Destination)
	if err != nil {
		return nil, fmt.Errorf("cannot read destination: %w", err)
	}

	contentSame := hashBytes(current) == eval.desiredHash
	modeSame := dstInfo.Mode().Perm() == spec.Mode.Perm()
	switch {
	case contentSame && modeSame:
		eval.State = StateSatisfied
		eval.Message = fmt.Sprintf("%s is up to date", spec.Destination)
	case contentSame:
		eval.State = StateDrifted
		eval.ModeOnly = true
		eval.Message = fmt.Sprintf("mode of %s is %o (expected %o)", spec.Destination, dstInfo.Mode().Perm(), spec.Mode.Perm())
	default:
		eval.State = StateDrifted
		eval.Message = fmt.Sprintf("%s differs", spec.Destination)
		if isText(current) && isText(desired) {
			eval.Diff = diff.Unified(current, desired, spec.Destination, spec.Destination+" (desired)")
		}
	}
	return eval, nil
}

// Install implements ports.FileInstaller.
func (i *Installer) Install(ctx context.Context, spec ports.FileSpec) (bool, error) {
	eval, err := i.Evaluate(ctx, spec)
	if err != nil {
		return false, err
	}

	switch eval.State {
	case StateSatisfied:
		return false, nil
	case StateDrifted:
		if eval.ModeOnly {
			if err := os.Chmod(spec.Destination, spec.Mode); err != nil {
				return false, fmt.Errorf("failed to set mode on %s: %w", spec.Destination, err)
			}
			i.log.Info(ctx, "file mode updated", "path", spec.Destination)
			return true, nil
		}
		if eval.Diff != "" {
			i.log.Debug(ctx, "file drift", "path", spec.Destination, "diff", eval.Diff)
		}
	}

	if err := writeAtomic(spec.Destination, eval.desired, spec.Mode); err != nil {
		return false, fmt.Errorf("failed to install %s: %w", spec.Destination, err)
	}
	i.log.Info(ctx, "file installed", "path", spec.Destination)
	return true, nil
}

// writeAtomic replaces path with data through a temp file in the same
// directory. A running executable at path keeps its old inode.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(name, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

func hashBytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// isText treats data as text when the first 8 KiB contain no NUL byte.
func isText(data []byte) bool {
	if len(data) > 8192 {
		data = data[:8192]
	}
	return bytes.IndexByte(data, 0) < 0
}
