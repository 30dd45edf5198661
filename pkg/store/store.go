package store

import (
	"fmt"
	"strings"

	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// Store persists run results: per-candidate extraction records, per-repo
// tallies, and the distinct accepted modules. The interface abstracts the
// backend so runs can target SQLite, PostgreSQL, or memory.
type Store interface {
	// AddRepoTally records a repository's scan result. Re-recording the
	// same repository replaces its row.
	AddRepoTally(t *types.RepoTally) error

	// AddExtraction appends one candidate's terminal record.
	AddExtraction(r *types.ExtractionRecord) error

	// AddModule records a distinct accepted module (deduplicated by
	// content hash).
	AddModule(m *types.ModuleRecord) error

	// ModuleExists checks whether module content was accepted before.
	ModuleExists(id types.ModuleID) (bool, error)

	// GetRepoTallies retrieves all repository rows.
	GetRepoTallies() ([]*types.RepoTally, error)

	// GetExtractions retrieves all extraction records (for JSON export).
	GetExtractions() ([]*types.ExtractionRecord, error)

	// GetModules retrieves the distinct accepted modules.
	GetModules() ([]*types.ModuleRecord, error)

	// RunTally sums all repository tallies.
	RunTally() (types.Tally, error)

	// ReasonCounts histograms the non-accepted records by reason tag.
	ReasonCounts() (map[types.Reason]int, error)

	// Close closes the database connection.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path, ":memory:" for an in-memory store,
	// or a postgres:// connection string.
	Path string
}

// New creates a Store, picking the backend from the path: ":memory:" is the
// in-memory store, postgres:// and postgresql:// select PostgreSQL, and
// anything else is a SQLite file.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	if cfg.Path == ":memory:" {
		return NewMemory(), nil
	}

	if strings.HasPrefix(cfg.Path, "postgres://") || strings.HasPrefix(cfg.Path, "postgresql://") {
		return NewPostgres(cfg.Path)
	}

	return NewSQLite(cfg.Path)
}
