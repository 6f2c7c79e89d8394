package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed index of an analyzed project.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates a SQLite database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced use.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes if they don't exist.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
-- Per-file tables

CREATE TABLE IF NOT EXISTS files (
  id           INTEGER PRIMARY KEY,
  path         TEXT NOT NULL UNIQUE,
  kind         TEXT NOT NULL,
  hash         TEXT,
  line_count   INTEGER DEFAULT 0,
  last_indexed TIMESTAMP
);

CREATE TABLE IF NOT EXISTS symbols (
  id               INTEGER PRIMARY KEY,
  file_id          INTEGER NOT NULL REFERENCES files(id),
  name             TEXT NOT NULL,
  kind             TEXT NOT NULL,
  type_name        TEXT,
  inferred_type    TEXT,
  confidence       TEXT,
  declaring_type   TEXT,
  is_static        BOOLEAN DEFAULT FALSE,
  line             INTEGER,
  col              INTEGER,
  parent_symbol_id INTEGER REFERENCES symbols(id),
  signature_hash   TEXT
);

CREATE TABLE IF NOT EXISTS diagnostics (
  id       INTEGER PRIMARY KEY,
  file_id  INTEGER NOT NULL REFERENCES files(id),
  severity TEXT NOT NULL,
  code     TEXT,
  line     INTEGER,
  col      INTEGER,
  message  TEXT NOT NULL
);

-- Project-level tables

CREATE TABLE IF NOT EXISTS script_types (
  id         INTEGER PRIMARY KEY,
  file_id    INTEGER NOT NULL REFERENCES files(id),
  type_name  TEXT NOT NULL,
  class_name TEXT,
  base_type  TEXT,
  scene_path TEXT
);

CREATE TABLE IF NOT EXISTS signal_connections (
  id             INTEGER PRIMARY KEY,
  file_id        INTEGER NOT NULL REFERENCES files(id),
  signal_name    TEXT,
  method         TEXT NOT NULL,
  callback_class TEXT,
  line           INTEGER,
  col            INTEGER,
  confidence     TEXT,
  is_scene       BOOLEAN DEFAULT FALSE
);

-- Indexes

CREATE INDEX IF NOT EXISTS idx_files_kind ON files(kind);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind);
CREATE INDEX IF NOT EXISTS idx_symbols_parent ON symbols(parent_symbol_id);
CREATE INDEX IF NOT EXISTS idx_diagnostics_file ON diagnostics(file_id);
CREATE INDEX IF NOT EXISTS idx_script_types_file ON script_types(file_id);
CREATE INDEX IF NOT EXISTS idx_script_types_name ON script_types(type_name);
CREATE INDEX IF NOT EXISTS idx_script_types_base ON script_types(base_type);
CREATE INDEX IF NOT EXISTS idx_signal_connections_file ON signal_connections(file_id);
CREATE INDEX IF NOT EXISTS idx_signal_connections_method ON signal_connections(method);
`

// DeleteFileData transactionally removes all data recorded for a file.
// Deletes in reverse-dependency order to respect FK constraints; the files
// row itself is kept.
func (s *Store) DeleteFileData(fileID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM signal_connections WHERE file_id = ?",
		"DELETE FROM script_types WHERE file_id = ?",
		"DELETE FROM diagnostics WHERE file_id = ?",
		// Children first: parent_symbol_id points inside the same file.
		"DELETE FROM symbols WHERE file_id = ? AND parent_symbol_id IS NOT NULL",
		"DELETE FROM symbols WHERE file_id = ?",
	} {
		if _, err := tx.Exec(q, fileID); err != nil {
			return fmt.Errorf("delete file data: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteFile removes a file and everything recorded for it.
func (s *Store) DeleteFile(fileID int64) error {
	if err := s.DeleteFileData(fileID); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM files WHERE id = ?", fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// DeleteProjectData clears the project-level tables. They are rebuilt on
// every analysis.
func (s *Store) DeleteProjectData() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	for _, q := range []string{
		"DELETE FROM signal_connections",
		"DELETE FROM script_types",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("delete project data: %w", err)
		}
	}
	return tx.Commit()
}
