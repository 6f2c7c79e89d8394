package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, kind, hash, line_count, last_indexed) VALUES (?, ?, ?, ?, ?)",
		f.Path, f.Kind, f.Hash, f.LineCount, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

// UpdateFile rewrites the hash, line count and timestamp of an existing file.
func (s *Store) UpdateFile(f *File) error {
	_, err := s.db.Exec(
		"UPDATE files SET kind = ?, hash = ?, line_count = ?, last_indexed = ? WHERE id = ?",
		f.Kind, f.Hash, f.LineCount, f.LastIndexed, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

const fileCols = "id, path, kind, hash, line_count, last_indexed"

func scanFile(sc scanner) (*File, error) {
	f := &File{}
	if err := sc.Scan(&f.ID, &f.Path, &f.Kind, &f.Hash, &f.LineCount, &f.LastIndexed); err != nil {
		return nil, err
	}
	return f, nil
}

// FileByPath returns nil, nil when no file has the path.
func (s *Store) FileByPath(path string) (*File, error) {
	f, err := scanFile(s.db.QueryRow("SELECT "+fileCols+" FROM files WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

func (s *Store) FileByID(id int64) (*File, error) {
	f, err := scanFile(s.db.QueryRow("SELECT "+fileCols+" FROM files WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by id: %w", err)
	}
	return f, nil
}

// Files returns every file of the given kind ordered by path. An empty
// kind returns all files.
func (s *Store) Files(kind string) ([]*File, error) {
	query := "SELECT " + fileCols + " FROM files"
	var args []any
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	rows, err := s.db.Query(query+" ORDER BY path", args...)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFilesExcept removes every file whose path is not in keep, with
// all of its data. It returns the number of files removed.
func (s *Store) DeleteFilesExcept(keep []string) (int, error) {
	want := make(map[string]bool, len(keep))
	for _, p := range keep {
		want[p] = true
	}
	files, err := s.Files("")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range files {
		if want[f.Path] {
			continue
		}
		if err := s.DeleteFile(f.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// --- Symbol operations ---

func (s *Store) InsertSymbol(sym *Symbol) (int64, error) {
	id, err := insertSymbol(s.db, sym)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	sym.ID = id
	return id, nil
}

// SymbolCols is the column list for symbol queries.
const SymbolCols = `id, file_id, name, kind, type_name, inferred_type, confidence,
	declaring_type, is_static, line, col, parent_symbol_id, signature_hash`

// ScanSymbolRow scans a single row selected with SymbolCols.
func ScanSymbolRow(sc scanner) (*Symbol, error) {
	sym := &Symbol{}
	var typeName, inferred, conf, owner, hash sql.NullString
	err := sc.Scan(
		&sym.ID, &sym.FileID, &sym.Name, &sym.Kind, &typeName, &inferred, &conf,
		&owner, &sym.IsStatic, &sym.Line, &sym.Col, &sym.ParentSymbolID, &hash,
	)
	if err != nil {
		return nil, err
	}
	sym.TypeName = typeName.String
	sym.InferredType = inferred.String
	sym.Confidence = conf.String
	sym.DeclaringType = owner.String
	sym.SignatureHash = hash.String
	return sym, nil
}

func (s *Store) querySymbols(query string, args ...any) ([]*Symbol, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var symbols []*Symbol
	for rows.Next() {
		sym, err := ScanSymbolRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *Store) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+SymbolCols+" FROM symbols WHERE file_id = ? ORDER BY line, col", fileID)
}

func (s *Store) SymbolsByName(name string) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+SymbolCols+" FROM symbols WHERE name = ? ORDER BY file_id, line, col", name)
}

// SymbolsByKind returns symbols of any of the given kinds.
func (s *Store) SymbolsByKind(kinds ...string) ([]*Symbol, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	return s.querySymbols(
		"SELECT "+SymbolCols+" FROM symbols WHERE kind IN ("+placeholderList(len(kinds))+") ORDER BY file_id, line, col",
		stringsToArgs(kinds)...,
	)
}

func (s *Store) SymbolChildren(symbolID int64) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+SymbolCols+" FROM symbols WHERE parent_symbol_id = ? ORDER BY line, col", symbolID)
}

// --- Diagnostic operations ---

func (s *Store) InsertDiagnostic(d *Diagnostic) (int64, error) {
	id, err := insertDiagnostic(s.db, d)
	if err != nil {
		return 0, fmt.Errorf("insert diagnostic: %w", err)
	}
	d.ID = id
	return id, nil
}

// Diagnostics returns the diagnostics of the given files, or of every
// file when no IDs are given.
func (s *Store) Diagnostics(fileIDs ...int64) ([]*Diagnostic, error) {
	query := "SELECT id, file_id, severity, code, line, col, message FROM diagnostics"
	if len(fileIDs) > 0 {
		query += " WHERE file_id IN (" + placeholderList(len(fileIDs)) + ")"
	}
	rows, err := s.db.Query(query+" ORDER BY file_id, line, col", int64sToArgs(fileIDs)...)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: %w", err)
	}
	defer rows.Close()
	var out []*Diagnostic
	for rows.Next() {
		d := &Diagnostic{}
		if err := rows.Scan(&d.ID, &d.FileID, &d.Severity, &d.Code, &d.Line, &d.Col, &d.Message); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// --- Shared insert statements ---
// execer is satisfied by both *sql.DB and *sql.Tx.

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertSymbol(e execer, sym *Symbol) (int64, error) {
	res, err := e.Exec(
		`INSERT INTO symbols (file_id, name, kind, type_name, inferred_type, confidence,
			declaring_type, is_static, line, col, parent_symbol_id, signature_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.FileID, sym.Name, sym.Kind, sym.TypeName, sym.InferredType, sym.Confidence,
		sym.DeclaringType, sym.IsStatic, sym.Line, sym.Col, sym.ParentSymbolID, sym.SignatureHash,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertDiagnostic(e execer, d *Diagnostic) (int64, error) {
	res, err := e.Exec(
		"INSERT INTO diagnostics (file_id, severity, code, line, col, message) VALUES (?, ?, ?, ?, ?, ?)",
		d.FileID, d.Severity, d.Code, d.Line, d.Col, d.Message,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
