package manifest

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the manifest schema written by this build.
const SchemaVersion = "1"

const createSymbolsTable = `
CREATE TABLE IF NOT EXISTS symbols (
	module      TEXT NOT NULL,
	build_id    TEXT NOT NULL,
	os          TEXT NOT NULL,
	arch        TEXT NOT NULL,
	binary_path TEXT NOT NULL,
	debug_path  TEXT NOT NULL DEFAULT '',
	sym_path    TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (module, build_id)
)`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS manifest_metadata (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_symbols_run_id ON symbols(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_binary_path ON symbols(binary_path)`,
}

// CreateSchema creates the manifest tables and indexes in one transaction.
// Safe to call on a database that already has the schema.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"symbols", createSymbolsTable},
		{"manifest_metadata", createMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO manifest_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap manifest_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the stored schema version, or "0" for a database
// without manifest tables.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='manifest_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check manifest_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM manifest_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in manifest_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}
