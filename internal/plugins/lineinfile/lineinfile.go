package lineinfileplugin

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/encoding"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/ports"
)

// Patcher disables statements in build descriptors by commenting them out.
type Patcher struct {
	opts Options
	enc  encoding.Encoding
	log  ports.Logger
	now  func() time.Time
}

var _ ports.Patcher = (*Patcher)(nil)

// New creates a Patcher.
func New(opts Options, log ports.Logger) (*Patcher, error) {
	normalized, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	enc, _ := lookupEncoding(normalized.Encoding)
	return &Patcher{opts: normalized, enc: enc, log: log, now: time.Now}, nil
}

// Evaluation is the planned edit for one file.
type Evaluation struct {
	Descriptor *Descriptor
	Updated    []string
	ChangeSet  *ChangeSet
	Matches    int
}

// Evaluate computes the edit without writing anything.
func (p *Patcher) Evaluate(ctx context.Context, path, line string) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pattern, err := linePattern(line)
	if err != nil {
		return nil, err
	}

	d, err := readDescriptor(path, p.enc)
	if err != nil {
		return nil, err
	}

	matches := findMatches(d.Lines, pattern)
	updated, _ := commentMatched(d.Lines, matches, p.opts.CommentPrefix)
	return &Evaluation{
		Descriptor: d,
		Updated:    updated,
		ChangeSet:  generateChangeSet(d.Lines, updated),
		Matches:    matches.MatchCount,
	}, nil
}

// CommentOut implements ports.Patcher. A missing or already-commented line
// leaves the file untouched and is not an error; a missing file is.
func (p *Patcher) CommentOut(ctx context.Context, path, line string) (bool, error) {
	eval, err := p.Evaluate(ctx, path, line)
	if err != nil {
		return false, err
	}
	if !eval.ChangeSet.Changed {
		p.log.Debug(ctx, "no active occurrence to comment out", "path", path, "line", line)
		return false, nil
	}

	d := eval.Descriptor
	encoded, err := d.render(eval.Updated, p.enc)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", path, err)
	}

	if p.opts.Backup {
		backup, err := writeBackup(d, p.opts.BackupDir, p.now())
		if err != nil {
			return false, fmt.Errorf("backup %s: %w", path, err)
		}
		p.log.Debug(ctx, "backup written", "path", backup)
	}

	if err := replaceFile(d.Path, encoded, d.Mode); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	p.log.Info(ctx, "line commented out", "path", path, "line", line, "occurrences", eval.Matches)
	p.log.Debug(ctx, "patch applied", "diff", eval.ChangeSet.Diff)
	return true, nil
}
