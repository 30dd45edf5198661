package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/rtlharvest/rtlharvest/pkg/corpus"
	"github.com/rtlharvest/rtlharvest/pkg/dialect"
	"github.com/rtlharvest/rtlharvest/pkg/flatten"
	"github.com/rtlharvest/rtlharvest/pkg/oracle"
	"github.com/rtlharvest/rtlharvest/pkg/store"
	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// Step carries one candidate through the two-phase protocol: classify the
// candidate alone, flatten it into a standalone artifact, then re-validate
// the written artifact before it counts. Rejections at any phase are
// terminal states, not errors.
type Step struct {
	oracle    oracle.Oracle
	registry  *dialect.Registry
	flattener *flatten.Flattener
	corpus    *corpus.Corpus
	store     store.Store
	log       *slog.Logger
}

// Config wires the step's collaborators.
type Config struct {
	Oracle   oracle.Oracle
	Registry *dialect.Registry
	Corpus   *corpus.Corpus
	Store    store.Store
	Logger   *slog.Logger
}

// New creates an extraction step.
func New(cfg Config) *Step {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Step{
		oracle:    cfg.Oracle,
		registry:  cfg.Registry,
		flattener: flatten.New(),
		corpus:    cfg.Corpus,
		store:     cfg.Store,
		log:       logger,
	}
}

// Process runs one candidate to a terminal state and records it. The
// returned record says what happened; a non-nil error means the step
// itself could not complete (unreadable candidate, unwritable corpus or
// store) and no terminal state was recorded.
func (s *Step) Process(ctx context.Context, repo string, cand types.Candidate) (*types.ExtractionRecord, error) {
	start := time.Now()

	rec := &types.ExtractionRecord{
		Repo: repo,
		Path: cand.DisplayPath(),
		Kind: cand.Kind,
	}

	// Classify the candidate alone. Cheap rejection happens before any
	// flattening or corpus I/O.
	cls := s.oracle.Classify(ctx, []string{cand.Path}, cand.Kind)
	if !cls.Synthesizable() {
		rec.Outcome = types.OutcomeRejected
		rec.Reason = cls.Reason
		return s.finish(rec, start)
	}
	rec.Module = cls.Module

	d, ok := s.registry.ByKind(cand.Kind)
	if !ok {
		// Classify rejects unregistered kinds, so this only trips when
		// the step and oracle were built from different registries.
		rec.Outcome = types.OutcomeRejected
		rec.Reason = types.ReasonUnsupportedKind
		return s.finish(rec, start)
	}

	// Flatten and write the standalone artifact under the module's name.
	text, err := s.flattener.Flatten(cand.Path, d)
	if err != nil {
		return nil, err
	}

	outPath, err := s.corpus.Reserve(d.ArtifactName(cls.Module))
	if err != nil {
		return nil, fmt.Errorf("reserving output for %s: %w", cand.DisplayPath(), err)
	}
	if err := s.corpus.WriteArtifact(outPath, text); err != nil {
		return nil, err
	}

	// Re-validate the written artifact, not the original candidate.
	// Flattening is never trusted: inlining can drop a dependency or
	// duplicate a definition, and only an independently synthesizable
	// artifact counts as extracted.
	check := s.oracle.Classify(ctx, []string{outPath}, cand.Kind)
	if !check.Synthesizable() {
		if err := s.corpus.Discard(outPath); err != nil {
			return nil, err
		}
		rec.Outcome = types.OutcomeValidationFailed
		rec.Reason = types.ReasonValidationFailed
		return s.finish(rec, start)
	}

	rec.Outcome = types.OutcomeAccepted
	rec.OutputFile = filepath.Base(outPath)
	rec.ModuleID = types.ComputeModuleID([]byte(text))
	if err := s.recordModule(rec, int64(len(text))); err != nil {
		return nil, err
	}
	return s.finish(rec, start)
}

// recordModule stores the accepted module row, noting duplicate content.
// The corpus keeps both files when the same content arrives twice (the
// namer already prefixed the second); the module table folds them into
// one row by content hash.
func (s *Step) recordModule(rec *types.ExtractionRecord, size int64) error {
	exists, err := s.store.ModuleExists(rec.ModuleID)
	if err != nil {
		return err
	}
	if exists {
		s.log.Debug("duplicate module content",
			"module", rec.Module,
			"repo", rec.Repo,
			"id", rec.ModuleID)
	}
	return s.store.AddModule(&types.ModuleRecord{
		ID:   rec.ModuleID,
		Name: rec.Module,
		File: rec.OutputFile,
		Kind: rec.Kind,
		Repo: rec.Repo,
		Size: size,
	})
}

// finish stamps the duration, persists the record, and logs the terminal
// state.
func (s *Step) finish(rec *types.ExtractionRecord, start time.Time) (*types.ExtractionRecord, error) {
	rec.Duration = time.Since(start)
	if err := s.store.AddExtraction(rec); err != nil {
		return nil, fmt.Errorf("recording extraction: %w", err)
	}

	switch rec.Outcome {
	case types.OutcomeAccepted:
		s.log.Info("module extracted",
			"path", rec.Path,
			"module", rec.Module,
			"file", rec.OutputFile)
	case types.OutcomeValidationFailed:
		s.log.Error("flattened artifact failed re-validation",
			"path", rec.Path,
			"module", rec.Module)
	default:
		s.log.Debug("candidate rejected",
			"path", rec.Path,
			"reason", string(rec.Reason))
	}

	return rec, nil
}
