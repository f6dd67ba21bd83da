// Package manifest records every symbol file placed in the destination layout
// in a SQLite database, keyed by module name and build id.
package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one placed symbol file.
type Entry struct {
	Module    string
	BuildID   string
	OS        string
	Arch      string
	Binary    string // input binary the symbols were dumped from
	DebugPath string // empty when no debug directory was passed to dump_syms
	SymPath   string
	RunID     string
	CreatedAt time.Time
}

var entryColumns = []string{
	"module", "build_id", "os", "arch", "binary_path", "debug_path",
	"sym_path", "run_id", "created_at",
}

// Store is a manifest database opened for one run.
type Store struct {
	db    *sql.DB
	runID string
}

// ErrNotFound indicates that a manifest to be read does not exist.
var ErrNotFound = errors.New("manifest not found")

// Open opens (creating if necessary) the manifest database at path and
// assigns a fresh run id to the entries this Store records.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}
	return open(path, false)
}

// OpenReadOnly opens an existing manifest for Lookup and List. It never
// creates or migrates the database.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return open(path, true)
}

func open(path string, readOnly bool) (*Store, error) {
	dsn := path
	if readOnly {
		dsn += "?mode=ro"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	switch {
	case version == SchemaVersion:
	case version == "0" && !readOnly:
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	case version == "0":
		db.Close()
		return nil, fmt.Errorf("%s is not a symbol manifest", path)
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported manifest schema version %s (want %s)", version, SchemaVersion)
	}

	return &Store{db: db, runID: uuid.NewString()}, nil
}

// RunID identifies the entries recorded through this Store.
func (s *Store) RunID() string {
	return s.runID
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record upserts e. An existing row for the same module and build id is
// replaced, matching the symbol file that replaced it on disk. Empty RunID
// and zero CreatedAt are filled in.
func (s *Store) Record(e Entry) error {
	if e.RunID == "" {
		e.RunID = s.runID
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := sq.Insert("symbols").
		Columns(entryColumns...).
		Values(
			e.Module,
			e.BuildID,
			e.OS,
			e.Arch,
			e.Binary,
			e.DebugPath,
			e.SymPath,
			e.RunID,
			e.CreatedAt.UTC().Format(time.RFC3339),
		).
		Suffix(`ON CONFLICT(module, build_id) DO UPDATE SET
			os = excluded.os,
			arch = excluded.arch,
			binary_path = excluded.binary_path,
			debug_path = excluded.debug_path,
			sym_path = excluded.sym_path,
			run_id = excluded.run_id,
			created_at = excluded.created_at`).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to record %s/%s: %w", e.Module, e.BuildID, err)
	}
	return nil
}

// Lookup returns the entry for module and build id.
// Returns (nil, nil) if there is none.
func (s *Store) Lookup(module, buildID string) (*Entry, error) {
	row := sq.Select(entryColumns...).
		From("symbols").
		Where(sq.Eq{"module": module, "build_id": buildID}).
		RunWith(s.db).
		QueryRow()

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s/%s: %w", module, buildID, err)
	}
	return e, nil
}

// List returns entries ordered by module and build id. An empty module lists
// everything.
func (s *Store) List(module string) ([]Entry, error) {
	query := sq.Select(entryColumns...).
		From("symbols").
		OrderBy("module", "build_id")
	if module != "" {
		query = query.Where(sq.Eq{"module": module})
	}

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan symbol row: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row sq.RowScanner) (*Entry, error) {
	var e Entry
	var createdAt string
	err := row.Scan(
		&e.Module,
		&e.BuildID,
		&e.OS,
		&e.Arch,
		&e.Binary,
		&e.DebugPath,
		&e.SymPath,
		&e.RunID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}
