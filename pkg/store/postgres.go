package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// PostgresStore implements Store on PostgreSQL, for runs where several
// harvest hosts feed one shared inventory. A single connection is enough:
// the pipeline writes from one thread.
type PostgresStore struct {
	conn *pgx.Conn
}

// NewPostgres connects to the given DSN and initializes the schema.
func NewPostgres(dsn string) (*PostgresStore, error) {
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := &PostgresStore{conn: conn}
	if err := s.createSchema(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS repos (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			extracted BIGINT NOT NULL,
			total BIGINT NOT NULL,
			scanned_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS extractions (
			id BIGSERIAL PRIMARY KEY,
			repo TEXT NOT NULL,
			path TEXT NOT NULL,
			kind TEXT NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			module TEXT NOT NULL DEFAULT '',
			output_file TEXT NOT NULL DEFAULT '',
			module_id TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_repo ON extractions(repo)`,
		`CREATE TABLE IF NOT EXISTS modules (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			file TEXT NOT NULL,
			kind TEXT NOT NULL,
			repo TEXT NOT NULL,
			size BIGINT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	var count int
	if err := s.conn.QueryRow(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := s.conn.Exec(ctx, "INSERT INTO schema_version (version) VALUES ($1)", SchemaVersion); err != nil {
			return err
		}
	}

	return nil
}

// AddRepoTally records a repository's scan result, replacing any earlier row.
func (s *PostgresStore) AddRepoTally(t *types.RepoTally) error {
	_, err := s.conn.Exec(context.Background(), `
		INSERT INTO repos (name, extracted, total, scanned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			extracted = EXCLUDED.extracted,
			total = EXCLUDED.total,
			scanned_at = EXCLUDED.scanned_at
	`, t.Repo, t.Tally.Extracted, t.Tally.Total, t.ScannedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting repo tally: %w", err)
	}
	return nil
}

// AddExtraction appends one candidate's terminal record.
func (s *PostgresStore) AddExtraction(r *types.ExtractionRecord) error {
	_, err := s.conn.Exec(context.Background(), `
		INSERT INTO extractions (repo, path, kind, outcome, reason, module, output_file, module_id, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
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
func (s *PostgresStore) AddModule(m *types.ModuleRecord) error {
	_, err := s.conn.Exec(context.Background(), `
		INSERT INTO modules (id, name, file, kind, repo, size)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, m.ID.Hex(), m.Name, m.File, string(m.Kind), m.Repo, m.Size)
	if err != nil {
		return fmt.Errorf("inserting module: %w", err)
	}
	return nil
}

// ModuleExists checks whether module content was accepted before.
func (s *PostgresStore) ModuleExists(id types.ModuleID) (bool, error) {
	var count int
	err := s.conn.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM modules WHERE id = $1", id.Hex()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking module existence: %w", err)
	}
	return count > 0, nil
}

// GetRepoTallies retrieves all repository rows, ordered by name.
func (s *PostgresStore) GetRepoTallies() ([]*types.RepoTally, error) {
	rows, err := s.conn.Query(context.Background(), `
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
		if err := rows.Scan(&t.Repo, &t.Tally.Extracted, &t.Tally.Total, &t.ScannedAt); err != nil {
			return nil, fmt.Errorf("scanning repo row: %w", err)
		}
		tallies = append(tallies, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating repos: %w", err)
	}

	return tallies, nil
}

// GetExtractions retrieves all extraction records in insertion order.
func (s *PostgresStore) GetExtractions() ([]*types.ExtractionRecord, error) {
	rows, err := s.conn.Query(context.Background(), `
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
func (s *PostgresStore) GetModules() ([]*types.ModuleRecord, error) {
	rows, err := s.conn.Query(context.Background(), `
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
func (s *PostgresStore) RunTally() (types.Tally, error) {
	var t types.Tally
	err := s.conn.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(extracted), 0), COALESCE(SUM(total), 0) FROM repos
	`).Scan(&t.Extracted, &t.Total)
	if err != nil {
		return types.Tally{}, fmt.Errorf("summing tallies: %w", err)
	}
	return t, nil
}

// ReasonCounts histograms the non-accepted records by reason tag.
func (s *PostgresStore) ReasonCounts() (map[types.Reason]int, error) {
	rows, err := s.conn.Query(context.Background(), `
		SELECT reason, COUNT(*)
		FROM extractions
		WHERE outcome != $1 AND reason != ''
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
func (s *PostgresStore) Close() error {
	return s.conn.Close(context.Background())
}
