package repoplugin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/ports"
)

// State describes what is found at a clone destination.
type State int

const (
	// StateMissing means the destination does not exist.
	StateMissing State = iota
	// StateDrifted means the destination exists but is not the requested clone.
	StateDrifted
	// StateSatisfied means the destination already holds the requested clone.
	StateSatisfied
)

// Evaluation is the read-only inspection of a clone destination.
type Evaluation struct {
	State       State
	ActualURL   string
	CurrentHead string
	Message     string
}

// Cloner clones repositories with go-git.
type Cloner struct {
	progress io.Writer
	log      ports.Logger
}

var _ ports.RepoCloner = (*Cloner)(nil)

// New creates a Cloner. progress receives the remote's sideband output and
// may be nil.
func New(progress io.Writer, log ports.Logger) *Cloner {
	if log == nil {
		log = logger.Nop()
	}
	return &Cloner{progress: progress, log: log}
}

// Evaluate inspects req.Destination without modifying it.
func (c *Cloner) Evaluate(ctx context.Context, req ports.CloneRequest) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(req.Destination); err != nil {
		if os.IsNotExist(err) {
			return &Evaluation{
				State:   StateMissing,
				Message: fmt.Sprintf("repository directory %s does not exist", req.Destination),
			}, nil
		}
		return nil, fmt.Errorf("cannot access destination: %w", err)
	}

	repo, err := git.PlainOpen(req.Destination)
	if err != nil {
		return &Evaluation{
			State:   StateDrifted,
			Message: fmt.Sprintf("directory %s exists but is not a git repository", req.Destination),
		}, nil
	}

	eval := &Evaluation{}
	if head, err := repo.Head(); err == nil {
		eval.CurrentHead = head.Name().Short()
	}
	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		eval.ActualURL = remote.Config().URLs[0]
	}

	switch {
	case eval.ActualURL != "" && eval.ActualURL != req.URL:
		eval.State = StateDrifted
		eval.Message = fmt.Sprintf("remote URL is %s (expected %s)", eval.ActualURL, req.URL)
	case req.Branch != "" && eval.CurrentHead != req.Branch:
		eval.State = StateDrifted
		eval.Message = fmt.Sprintf("current branch is %s (expected %s)", eval.CurrentHead, req.Branch)
	default:
		eval.State = StateSatisfied
		eval.Message = fmt.Sprintf("git repository exists at %s", req.Destination)
	}
	return eval, nil
}

// Clone makes req.Destination a clone of req.URL. A matching clone is left
// alone; anything else at the destination is replaced.
func (c *Cloner) Clone(ctx context.Context, req ports.CloneRequest) error {
	eval, err := c.Evaluate(ctx, req)
	if err != nil {
		return err
	}

	switch eval.State {
	case StateSatisfied:
		c.log.Debug(ctx, "clone already present", "destination", req.Destination)
		return nil
	case StateDrifted:
		c.log.Warn(ctx, "replacing destination", "destination", req.Destination, "reason", eval.Message)
		if err := os.RemoveAll(req.Destination); err != nil {
			return fmt.Errorf("failed to remove existing directory: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(req.Destination), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if _, err := git.PlainCloneContext(ctx, req.Destination, false, cloneOptions(req, c.progress)); err != nil {
		return fmt.Errorf("failed to clone repository %s: %w", req.URL, err)
	}
	c.log.Info(ctx, "repository cloned", "url", req.URL, "destination", req.Destination)
	return nil
}

func cloneOptions(req ports.CloneRequest, progress io.Writer) *git.CloneOptions {
	opts := &git.CloneOptions{
		URL:      req.URL,
		Progress: progress,
	}
	if req.Depth > 0 {
		opts.Depth = req.Depth
	}
	if req.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(req.Branch)
		opts.SingleBranch = true
	}
	return opts
}
