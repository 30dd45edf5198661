package repos

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Cloner checks repositories out under a scratch directory, one checkout
// per repository, removed after the scan.
type Cloner struct {
	// Depth is the clone depth. It defaults to 1: harvest reads the
	// current tree only, so history is dead weight. Zero clones the full
	// history.
	Depth int

	scratch string
	log     *slog.Logger
}

// NewCloner creates a cloner rooted at the scratch directory.
func NewCloner(scratch string, logger *slog.Logger) *Cloner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloner{Depth: 1, scratch: scratch, log: logger}
}

// Clone checks the repository out into a fresh directory under scratch
// and returns the working tree path plus a cleanup that removes it. On
// error nothing is left behind.
func (c *Cloner) Clone(ctx context.Context, repo Repo) (string, func(), error) {
	if repo.CloneURL == "" {
		return "", nil, fmt.Errorf("no clone URL for %s", repo.Name)
	}

	if err := os.MkdirAll(c.scratch, 0755); err != nil {
		return "", nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	dir, err := os.MkdirTemp(c.scratch, "clone-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating clone directory: %w", err)
	}

	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			c.log.Warn("failed to remove checkout", "path", dir, "error", err)
		}
	}

	c.log.Info("cloning", "repo", repo.Name)
	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          repo.CloneURL,
		Depth:        c.Depth,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("cloning %s: %w", repo.Name, err)
	}

	return dir, cleanup, nil
}
