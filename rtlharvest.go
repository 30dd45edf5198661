// Package rtlharvest extracts self-contained, synthesizable modules from
// Verilog and SystemVerilog source trees into a single-file-per-module
// corpus.
//
// # Basic Usage
//
// Open a harvester over a datastore directory and scan a checked-out tree:
//
//	h, err := rtlharvest.New("harvest.ds")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	tally, err := h.ScanTree(ctx, "/src/fpga-lib")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("extracted %s\n", tally)
//
// Accepted modules land as single files under CorpusDir; per-candidate
// outcomes and per-repository tallies go to the run database.
//
// # Harvesting Remote Repositories
//
// Each repository is shallow-cloned into scratch space, scanned, and
// removed:
//
//	list, err := repos.ReadList("repos.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tally, err := h.HarvestRepos(ctx, list)
//
// Classification shells out to yosys, resolved from the path given with
// WithYosys, $YOSYS_BINARY, or PATH. Embedders and tests can substitute
// any Oracle implementation with WithOracle.
package rtlharvest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rtlharvest/rtlharvest/pkg/datastore"
	"github.com/rtlharvest/rtlharvest/pkg/dialect"
	"github.com/rtlharvest/rtlharvest/pkg/extract"
	"github.com/rtlharvest/rtlharvest/pkg/oracle"
	"github.com/rtlharvest/rtlharvest/pkg/repos"
	"github.com/rtlharvest/rtlharvest/pkg/scan"
	"github.com/rtlharvest/rtlharvest/pkg/store"
	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// Re-export commonly used types for convenience.
// Callers can import just "github.com/rtlharvest/rtlharvest" without
// subpackages.
type (
	// Tally counts extracted modules against total candidates.
	Tally = types.Tally

	// ExtractionRecord is the stored outcome of one candidate file.
	ExtractionRecord = types.ExtractionRecord

	// ModuleRecord describes one accepted module in the corpus.
	ModuleRecord = types.ModuleRecord

	// RepoTally is the per-repository extraction count.
	RepoTally = types.RepoTally

	// SourceKind names a recognized HDL dialect.
	SourceKind = types.SourceKind

	// Repo identifies one repository to harvest.
	Repo = repos.Repo
)

// Re-export the builtin source kinds.
const (
	KindSystemVerilog = types.KindSystemVerilog
	KindVerilog       = types.KindVerilog
)

// Harvester drives the extraction pipeline over local trees and cloned
// repositories, accumulating one corpus across all of them.
type Harvester struct {
	ds       *datastore.Datastore
	registry *dialect.Registry
	scanner  *scan.Scanner
	cloner   *repos.Cloner
	log      *slog.Logger
}

// harvesterConfig holds harvester configuration.
type harvesterConfig struct {
	oracle           oracle.Oracle
	oracleBinary     string
	oracleTimeout    time.Duration
	dialects         []*types.Dialect
	kinds            []types.SourceKind
	logger           *slog.Logger
	respectGitignore bool
	skipHidden       bool
	cloneDepth       int
	storePath        string
}

// Option configures a Harvester.
type Option func(*harvesterConfig)

// WithOracle uses a custom synthesizability oracle instead of shelling out
// to yosys.
func WithOracle(o oracle.Oracle) Option {
	return func(c *harvesterConfig) {
		c.oracle = o
	}
}

// WithYosys sets an explicit yosys binary path.
// If not specified, $YOSYS_BINARY and then PATH are consulted.
func WithYosys(binary string) Option {
	return func(c *harvesterConfig) {
		c.oracleBinary = binary
	}
}

// WithOracleTimeout bounds one oracle invocation.
// Default is oracle.DefaultTimeout.
func WithOracleTimeout(d time.Duration) Option {
	return func(c *harvesterConfig) {
		c.oracleTimeout = d
	}
}

// WithDialects uses custom dialect definitions instead of the builtin
// SystemVerilog and Verilog set.
func WithDialects(dialects []*types.Dialect) Option {
	return func(c *harvesterConfig) {
		c.dialects = dialects
	}
}

// WithKinds restricts scanning to the named source kinds.
// Default is every loaded dialect.
func WithKinds(kinds ...types.SourceKind) Option {
	return func(c *harvesterConfig) {
		c.kinds = kinds
	}
}

// WithLogger routes the harvester's log output.
// Default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *harvesterConfig) {
		c.logger = l
	}
}

// WithGitignore skips candidates matched by a repository's root .gitignore.
// Off by default: vendored and generated RTL is often exactly what a
// harvest wants.
func WithGitignore() Option {
	return func(c *harvesterConfig) {
		c.respectGitignore = true
	}
}

// WithSkipHidden skips dot-directories and dot-files during scanning.
// Off by default.
func WithSkipHidden() Option {
	return func(c *harvesterConfig) {
		c.skipHidden = true
	}
}

// WithCloneDepth sets the clone depth for harvested repositories.
// Default is 1; 0 clones full history.
func WithCloneDepth(depth int) Option {
	return func(c *harvesterConfig) {
		c.cloneDepth = depth
	}
}

// WithStorePath overrides where run records go. A postgres:// DSN sends
// them to a shared server; default is harvest.db inside the datastore.
func WithStorePath(path string) Option {
	return func(c *harvesterConfig) {
		c.storePath = path
	}
}

// New opens (or creates) the datastore directory at path and returns a
// Harvester over it.
//
// By default, the harvester:
//   - Loads the builtin dialects (SystemVerilog, Verilog)
//   - Resolves yosys from $YOSYS_BINARY or PATH
//   - Keeps run records in harvest.db inside the datastore
//   - Clones repositories at depth 1
func New(path string, opts ...Option) (*Harvester, error) {
	config := &harvesterConfig{
		cloneDepth: 1,
	}

	for _, opt := range opts {
		opt(config)
	}

	dialects := config.dialects
	if dialects == nil {
		loaded, err := dialect.NewLoader().LoadBuiltin()
		if err != nil {
			return nil, fmt.Errorf("loading builtin dialects: %w", err)
		}
		dialects = loaded
	}
	if len(config.kinds) > 0 {
		filtered, err := dialect.Filter(dialects, config.kinds)
		if err != nil {
			return nil, err
		}
		dialects = filtered
	}
	registry, err := dialect.NewRegistry(dialects)
	if err != nil {
		return nil, err
	}

	log := config.logger
	if log == nil {
		log = slog.Default()
	}

	ds, err := datastore.Open(path, datastore.Options{StorePath: config.storePath})
	if err != nil {
		return nil, err
	}

	orc := config.oracle
	if orc == nil {
		orc, err = oracle.NewYosys(registry, oracle.Config{
			Binary:  config.oracleBinary,
			Timeout: config.oracleTimeout,
		})
		if err != nil {
			ds.Close()
			return nil, err
		}
	}

	step := extract.New(extract.Config{
		Oracle:   orc,
		Registry: registry,
		Corpus:   ds.Corpus,
		Store:    ds.Store,
		Logger:   log,
	})
	scanner := scan.New(scan.Config{
		Registry:         registry,
		Step:             step,
		RespectGitignore: config.respectGitignore,
		SkipHidden:       config.skipHidden,
		Logger:           log,
	})
	cloner := repos.NewCloner(ds.ScratchDir(), log)
	cloner.Depth = config.cloneDepth

	return &Harvester{
		ds:       ds,
		registry: registry,
		scanner:  scanner,
		cloner:   cloner,
		log:      log,
	}, nil
}

// ScanTree scans an already checked-out source tree, labels its records
// with the tree path, and records the tally.
func (h *Harvester) ScanTree(ctx context.Context, root string) (Tally, error) {
	tally, err := h.scanner.Scan(ctx, root)
	if err != nil {
		return Tally{}, err
	}

	if err := h.ds.Store.AddRepoTally(&types.RepoTally{
		Repo:      root,
		Tally:     tally,
		ScannedAt: time.Now().UTC(),
	}); err != nil {
		return Tally{}, fmt.Errorf("recording tally: %w", err)
	}

	h.log.Info("run complete", "tally", tally.String())
	return tally, nil
}

// HarvestRepos clones each repository into scratch space, scans it, and
// removes the checkout. A repository that fails to clone or enumerate is
// logged and skipped; it contributes nothing to the run tally.
func (h *Harvester) HarvestRepos(ctx context.Context, list []Repo) (Tally, error) {
	var run types.Tally
	for _, r := range list {
		tally, err := h.harvestOne(ctx, r)
		if err != nil {
			if ctx.Err() != nil {
				return run, ctx.Err()
			}
			h.log.Warn("repository skipped", "repo", r.Name, "error", err)
			continue
		}
		run.Merge(tally)
	}

	h.log.Info("run complete", "repos", len(list), "tally", run.String())
	return run, nil
}

func (h *Harvester) harvestOne(ctx context.Context, r Repo) (types.Tally, error) {
	dir, cleanup, err := h.cloner.Clone(ctx, r)
	if err != nil {
		return types.Tally{}, err
	}
	defer cleanup()

	tally, err := h.scanner.ScanRepo(ctx, r.Name, dir)
	if err != nil {
		return types.Tally{}, err
	}

	if err := h.ds.Store.AddRepoTally(&types.RepoTally{
		Repo:      r.Name,
		Tally:     tally,
		ScannedAt: time.Now().UTC(),
	}); err != nil {
		return types.Tally{}, fmt.Errorf("recording tally: %w", err)
	}
	return tally, nil
}

// CorpusDir returns the directory where accepted modules accumulate.
func (h *Harvester) CorpusDir() string {
	return h.ds.Corpus.Dir()
}

// Store returns the run-record store.
func (h *Harvester) Store() store.Store {
	return h.ds.Store
}

// Kinds returns the active source kinds.
func (h *Harvester) Kinds() []types.SourceKind {
	return h.registry.Kinds()
}

// Close releases the harvester's resources.
// Always call Close when done.
func (h *Harvester) Close() error {
	return h.ds.Close()
}
