package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the SQLite schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	if err := createReposTable(db); err != nil {
		return fmt.Errorf("creating repos table: %w", err)
	}

	if err := createExtractionsTable(db); err != nil {
		return fmt.Errorf("creating extractions table: %w", err)
	}

	if err := createModulesTable(db); err != nil {
		return fmt.Errorf("creating modules table: %w", err)
	}

	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Insert version if table is empty
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	return nil
}

func createReposTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS repos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			extracted INTEGER NOT NULL,
			total INTEGER NOT NULL,
			scanned_at TEXT NOT NULL
		)
	`)
	return err
}

func createExtractionsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS extractions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo TEXT NOT NULL,
			path TEXT NOT NULL,
			kind TEXT NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT,
			module TEXT,
			output_file TEXT,
			module_id TEXT,
			duration_ms INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Index for per-repo record lookup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_extractions_repo ON extractions(repo)
	`)
	return err
}

func createModulesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS modules (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			file TEXT NOT NULL,
			kind TEXT NOT NULL,
			repo TEXT NOT NULL,
			size INTEGER NOT NULL
		)
	`)
	return err
}
