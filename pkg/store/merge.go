package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the run databases to merge from.
	SourcePaths []string
	// DestPath is the destination database file.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	ReposMerged       int
	ExtractionsMerged int
	ModulesMerged     int
	SourcesProcessed  int
}

// Merge combines several run databases into one. Extraction records are
// appended; module rows deduplicate on content hash; when two runs scanned
// the same repository (a repo list split by kind, say) their tallies sum.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	destDB, err := sql.Open("sqlite", cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer destDB.Close()

	if err := CreateSchema(destDB); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	stats := &MergeStats{}

	for _, sourcePath := range cfg.SourcePaths {
		sourceStats, err := mergeFrom(destDB, sourcePath)
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.ReposMerged += sourceStats.ReposMerged
		stats.ExtractionsMerged += sourceStats.ExtractionsMerged
		stats.ModulesMerged += sourceStats.ModulesMerged
		stats.SourcesProcessed++
	}

	return stats, nil
}

// mergeFrom copies data from a source database to the destination.
func mergeFrom(destDB *sql.DB, sourcePath string) (*MergeStats, error) {
	sourceDB, err := sql.Open("sqlite", sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	defer sourceDB.Close()

	stats := &MergeStats{}

	tx, err := destDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	repoCount, err := mergeRepos(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging repos: %w", err)
	}
	stats.ReposMerged = repoCount

	extractionCount, err := mergeExtractions(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging extractions: %w", err)
	}
	stats.ExtractionsMerged = extractionCount

	moduleCount, err := mergeModules(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging modules: %w", err)
	}
	stats.ModulesMerged = moduleCount

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return stats, nil
}

func mergeRepos(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query("SELECT name, extracted, total, scanned_at FROM repos")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT INTO repos (name, extracted, total, scanned_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			extracted = extracted + excluded.extracted,
			total = total + excluded.total,
			scanned_at = MAX(scanned_at, excluded.scanned_at)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var name, scannedAt string
		var extracted, total int
		if err := rows.Scan(&name, &extracted, &total, &scannedAt); err != nil {
			return count, err
		}
		result, err := stmt.Exec(name, extracted, total, scannedAt)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}

func mergeExtractions(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query(`
		SELECT repo, path, kind, outcome, reason, module, output_file, module_id, duration_ms
		FROM extractions
		ORDER BY id
	`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT INTO extractions (repo, path, kind, outcome, reason, module, output_file, module_id, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var repo, path, kind, outcome, reason, module, outputFile, moduleID string
		var durationMS int64
		if err := rows.Scan(&repo, &path, &kind, &outcome, &reason, &module, &outputFile, &moduleID, &durationMS); err != nil {
			return count, err
		}
		result, err := stmt.Exec(repo, path, kind, outcome, reason, module, outputFile, moduleID, durationMS)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}

func mergeModules(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query("SELECT id, name, file, kind, repo, size FROM modules")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO modules (id, name, file, kind, repo, size)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var id, name, file, kind, repo string
		var size int64
		if err := rows.Scan(&id, &name, &file, &kind, &repo, &size); err != nil {
			return count, err
		}
		result, err := stmt.Exec(id, name, file, kind, repo, size)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}
