package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rtlharvest/rtlharvest/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on the pure-Go SQLite driver, so harvest
// builds need no CGO.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed store at the given file path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Initialize schema
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddRepoTally records a repository's scan result, replacing any earlier
// row for the same repository.
func (s *SQLiteStore) AddRepoTally(t *types.RepoTally) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO repos (name, extracted, total, scanned_at)
		VALUES (?, ?, ?, ?)
	`,
		t.Repo,
		t.Tally.Extracted,
		t.Tally.Total,
		t.ScannedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting repo tally: %w", err)
	}
	return nil
}

// AddExtraction appends one candidate's terminal record.
func (s *SQLiteStore) AddExtraction(r *types.ExtractionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO extractions (repo, path, kind, outcome, reason, module, output_file, module_id, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.Repo,
		r.Path,
		string(r.Kind),
		string(r.Outcome),
		string(r.Reason),
		r.Module,
		r.OutputFile,
		moduleIDHex(r.ModuleID),
		r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting extraction: %w", err)
	}
	return nil
}

// AddModule records a distinct accepted module (deduplicated by content hash).
func (s *SQLiteStore) AddModule(m *types.ModuleRecord) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO modules (id, name, file, kind, repo, size)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		m.ID.Hex(),
		m.Name,
		m.File,
		string(m.Kind),
		m.Repo,
		m.Size,
	)
	if err != nil {
		return fmt.Errorf("inserting module: %w", err)
	}
	return nil
}

// ModuleExists checks whether module content was accepted before.
func (s *SQLiteStore) ModuleExists(id types.ModuleID) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM modules WHERE id = ?", id.Hex()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking module existence: %w", err)
	}
	return count > 0, nil
}

// GetRepoTallies retrieves all repository rows, ordered by name.
func (s *SQLiteStore) GetRepoTallies() ([]*types.RepoTally, error) {
	rows, err := s.db.Query(`
		SELECT name, extracted, total, scanned_at
		FROM repos
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying repos: %w", err)
	}
	defer rows.Close()

	var tallies []*types.RepoTally
	for rows.Next() {
		var t types.RepoTally
		var scannedAt string

		if err := rows.Scan(&t.Repo, &t.Tally.Extracted, &t.Tally.Total, &scannedAt); err != nil {
			return nil, fmt.Errorf("scanning repo row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, scannedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing scanned_at: %w", err)
		}
		t.ScannedAt = ts

		tallies = append(tallies, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating repos: %w", err)
	}

	return tallies, nil
}

// GetExtractions retrieves all extraction records in insertion order.
func (s *SQLiteStore) GetExtractions() ([]*types.ExtractionRecord, error) {
	rows, err := s.db.Query(`
		SELECT repo, path, kind, outcome, reason, module, output_file, module_id, duration_ms
		FROM extractions
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying extractions: %w", err)
	}
	defer rows.Close()

	var records []*types.ExtractionRecord
	for rows.Next() {
		var r types.ExtractionRecord
		var kind, outcome, reason, idHex string
		var durationMS int64

		err := rows.Scan(&r.Repo, &r.Path, &kind, &outcome, &reason, &r.Module, &r.OutputFile, &idHex, &durationMS)
		if err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}

		r.Kind = types.SourceKind(kind)
		r.Outcome = types.Outcome(outcome)
		r.Reason = types.Reason(reason)
		r.Duration = time.Duration(durationMS) * time.Millisecond

		if idHex != "" {
			id, err := types.ParseModuleID(idHex)
			if err != nil {
				return nil, fmt.Errorf("parsing module ID: %w", err)
			}
			r.ModuleID = id
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extractions: %w", err)
	}

	return records, nil
}

// GetModules retrieves the distinct accepted modules, ordered by output file.
func (s *SQLiteStore) GetModules() ([]*types.ModuleRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, name, file, kind, repo, size
		FROM modules
		ORDER BY file
	`)
	if err != nil {
		return nil, fmt.Errorf("querying modules: %w", err)
	}
	defer rows.Close()

	var modules []*types.ModuleRecord
	for rows.Next() {
		var m types.ModuleRecord
		var idHex, kind string

		if err := rows.Scan(&idHex, &m.Name, &m.File, &kind, &m.Repo, &m.Size); err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}

		id, err := types.ParseModuleID(idHex)
		if err != nil {
			return nil, fmt.Errorf("parsing module ID: %w", err)
		}
		m.ID = id
		m.Kind = types.SourceKind(kind)

		modules = append(modules, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modules: %w", err)
	}

	return modules, nil
}

// RunTally sums all repository tallies.
func (s *SQLiteStore) RunTally() (types.Tally, error) {
	var t types.Tally
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(extracted), 0), COALESCE(SUM(total), 0) FROM repos
	`).Scan(&t.Extracted, &t.Total)
	if err != nil {
		return types.Tally{}, fmt.Errorf("summing tallies: %w", err)
	}
	return t, nil
}

// ReasonCounts histograms the non-accepted records by reason tag.
func (s *SQLiteStore) ReasonCounts() (map[types.Reason]int, error) {
	rows, err := s.db.Query(`
		SELECT reason, COUNT(*)
		FROM extractions
		WHERE outcome != ? AND reason != ''
		GROUP BY reason
	`, string(types.OutcomeAccepted))
	if err != nil {
		return nil, fmt.Errorf("querying reason counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Reason]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("scanning reason count: %w", err)
		}
		counts[types.Reason(reason)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reason counts: %w", err)
	}

	return counts, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// moduleIDHex renders a module ID for storage; zero IDs (rejected
// candidates) become the empty string.
func moduleIDHex(id types.ModuleID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}
