package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/rtlharvest/rtlharvest/pkg/dialect"
	"github.com/rtlharvest/rtlharvest/pkg/extract"
	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// Scanner turns one repository checkout into candidates and runs each
// through the extraction step, one dialect at a time.
type Scanner struct {
	registry   *dialect.Registry
	step       *extract.Step
	gitignore  bool
	skipHidden bool
	log        *slog.Logger
}

// Config wires the scanner.
type Config struct {
	Registry *dialect.Registry
	Step     *extract.Step

	// RespectGitignore filters candidates through the root's .gitignore.
	// Off by default: the extension match descends ignored trees too, and
	// vendored RTL is often exactly what a harvest wants.
	RespectGitignore bool

	// SkipHidden prunes dot-directories and dot-files. Off by default for
	// the same reason.
	SkipHidden bool

	Logger *slog.Logger
}

// New creates a scanner.
func New(cfg Config) *Scanner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		registry:   cfg.Registry,
		step:       cfg.Step,
		gitignore:  cfg.RespectGitignore,
		skipHidden: cfg.SkipHidden,
		log:        logger,
	}
}

// Scan scans a local tree, labeling records with the root path itself.
func (s *Scanner) Scan(ctx context.Context, root string) (types.Tally, error) {
	return s.ScanRepo(ctx, root, root)
}

// ScanRepo scans the checkout at root, recording candidates under the
// given repository label. Total counts every enumerated candidate;
// Extracted counts the ones whose artifact survived re-validation.
// Per-candidate failures are absorbed; only failure to enumerate the root
// is an error, and it is fatal for this repository alone.
func (s *Scanner) ScanRepo(ctx context.Context, repo, root string) (types.Tally, error) {
	var tally types.Tally

	info, err := os.Stat(root)
	if err != nil {
		return tally, fmt.Errorf("enumerating %s: %w", root, err)
	}
	if !info.IsDir() {
		return tally, fmt.Errorf("enumerating %s: not a directory", root)
	}

	ignore := s.loadGitignore(root)

	for _, d := range s.registry.All() {
		sub, err := s.scanKind(ctx, repo, root, d, ignore)
		if err != nil {
			return tally, err
		}
		s.log.Debug("kind scanned",
			"repo", repo,
			"kind", string(d.Kind),
			"tally", sub.String())
		tally.Merge(sub)
	}

	return tally, nil
}

// scanKind enumerates one dialect's candidates under root and steps
// through them sequentially.
func (s *Scanner) scanKind(ctx context.Context, repo, root string, d *types.Dialect, ignore *gitignore.GitIgnore) (types.Tally, error) {
	var tally types.Tally

	// Phase 1: walk the tree and collect candidate paths. Symlinks are
	// never followed; the walk is lexical.
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// An unreadable subtree costs its candidates, not the scan.
			s.log.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if s.skipHidden && path != root && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		if s.skipHidden && isHidden(info.Name()) {
			return nil
		}

		if !d.Recognizes(path) {
			return nil
		}

		if ignore != nil {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if ignore.MatchesPath(rel) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return tally, fmt.Errorf("enumerating %s: %w", root, err)
	}

	// Phase 2: one candidate at a time. The oracle is an external process
	// with real CPU and memory weight per call, so exactly one is in
	// flight; parallelizing would also race the namer's reserve-then-write.
	for _, path := range files {
		select {
		case <-ctx.Done():
			return tally, ctx.Err()
		default:
		}

		tally.Total++

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		rec, err := s.step.Process(ctx, repo, types.Candidate{
			Path:    path,
			Kind:    d.Kind,
			Display: rel,
		})
		if err != nil {
			// Absorbed: the candidate is dropped, the scan continues.
			s.log.Warn("candidate dropped", "path", rel, "error", err)
			continue
		}
		if rec.Accepted() {
			tally.Extracted++
		}
	}

	return tally, nil
}

// loadGitignore compiles the root's .gitignore when the filter is on.
func (s *Scanner) loadGitignore(root string) *gitignore.GitIgnore {
	if !s.gitignore {
		return nil
	}
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ign, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		s.log.Warn("unparseable .gitignore", "path", path, "error", err)
		return nil
	}
	return ign
}

// isHidden reports whether a name is a dot-entry. "." and ".." are not
// considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
