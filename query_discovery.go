package gdlens

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jward/gdlens/internal/store"
)

// --- Common Types ---

// Pagination controls offset+limit paging on list/search results.
type Pagination struct {
	Offset int // skip this many results (default 0)
	Limit  int // max results to return (default 50, max 500)
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// normalize returns a Pagination with defaults applied and bounds enforced.
func (p Pagination) normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// SortField specifies how to order results.
type SortField string

const (
	SortByName SortField = "name"
	SortByKind SortField = "kind"
	SortByFile SortField = "file"
)

// SortOrder specifies ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort controls result ordering.
type Sort struct {
	Field SortField
	Order SortOrder
}

// SymbolResult is a stored symbol with the path of its file.
type SymbolResult struct {
	store.Symbol
	FilePath string
}

// PagedResult wraps a page of results with total count for pagination.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int // total matching results (before pagination)
}

// SymbolFilter specifies which symbols to include. Zero fields match all.
type SymbolFilter struct {
	Pattern       string   // glob on the name, '*' is the wildcard
	Kinds         []string // match any of these kinds
	DeclaringType string   // owning class of class members
	File          string   // res:// path or path under the project root
	ParentID      *int64   // restrict to direct children of this symbol
	PathPrefix    string   // restrict to files under this res:// directory
	Static        *bool
}

// --- Internal Helpers ---

// normalizePathPrefix ensures a path prefix ends with "/" for correct LIKE matching.
// "res://enemies" -> "res://enemies/" to prevent matching "res://enemies_old/".
func normalizePathPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}

// escapeLike escapes the LIKE metacharacters of s with a backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func symbolSortColumn(field SortField) string {
	switch field {
	case SortByKind:
		return "s.kind"
	case SortByFile:
		return "f.path"
	default:
		return "s.name"
	}
}

func sortDirection(order SortOrder) string {
	if order == Desc {
		return "DESC"
	}
	return "ASC"
}

// prefixSymbolCols qualifies every column of SymbolCols with alias.
func prefixSymbolCols(alias string) string {
	cols := strings.Split(store.SymbolCols, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func (q *QueryBuilder) symbolWhere(filter SymbolFilter) (string, []any) {
	var where []string
	var args []any

	if filter.Pattern != "" && filter.Pattern != "*" {
		like := strings.ReplaceAll(escapeLike(filter.Pattern), "*", "%")
		where = append(where, `s.name LIKE ? ESCAPE '\'`)
		args = append(args, like)
	}
	if len(filter.Kinds) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Kinds)-1) + "?"
		where = append(where, "s.kind IN ("+placeholders+")")
		for _, k := range filter.Kinds {
			args = append(args, k)
		}
	}
	if filter.DeclaringType != "" {
		where = append(where, "s.declaring_type = ?")
		args = append(args, filter.DeclaringType)
	}
	if filter.File != "" {
		where = append(where, "f.path = ?")
		args = append(args, ResPath(q.root, filter.File))
	}
	if filter.ParentID != nil {
		where = append(where, "s.parent_symbol_id = ?")
		args = append(args, *filter.ParentID)
	}
	if prefix := normalizePathPrefix(filter.PathPrefix); prefix != "" {
		where = append(where, `f.path LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(prefix)+"%")
	}
	if filter.Static != nil {
		where = append(where, "s.is_static = ?")
		args = append(args, *filter.Static)
	}

	if len(where) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(where, " AND "), args
}

// --- Enumeration Endpoints ---

// Symbols lists stored symbols matching filter.
func (q *QueryBuilder) Symbols(filter SymbolFilter, sort Sort, page Pagination) (*PagedResult[SymbolResult], error) {
	page = page.normalize()
	whereClause, args := q.symbolWhere(filter)

	countSQL := `SELECT COUNT(*) FROM symbols s JOIN files f ON s.file_id = f.id ` + whereClause
	var totalCount int
	if err := q.store.DB().QueryRow(countSQL, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("symbols: count: %w", err)
	}

	dataSQL := fmt.Sprintf(
		`SELECT %s, f.path
		 FROM symbols s
		 JOIN files f ON s.file_id = f.id
		 %s
		 ORDER BY %s %s, f.path, s.line, s.col
		 LIMIT ? OFFSET ?`,
		prefixSymbolCols("s"), whereClause, symbolSortColumn(sort.Field), sortDirection(sort.Order),
	)
	dataArgs := append(append([]any{}, args...), page.Limit, page.Offset)

	rows, err := q.store.DB().Query(dataSQL, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("symbols: query: %w", err)
	}
	defer rows.Close()

	items := []SymbolResult{}
	for rows.Next() {
		sr, err := scanSymbolResult(rows)
		if err != nil {
			return nil, fmt.Errorf("symbols: scan: %w", err)
		}
		items = append(items, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("symbols: rows: %w", err)
	}
	return &PagedResult[SymbolResult]{Items: items, TotalCount: totalCount}, nil
}

// symbolRowScanner adapts a row holding SymbolCols followed by the file
// path to ScanSymbolRow.
type symbolRowScanner struct {
	rows interface{ Scan(...any) error }
	path *string
}

func (s symbolRowScanner) Scan(dest ...any) error {
	return s.rows.Scan(append(dest, s.path)...)
}

func scanSymbolResult(rows interface{ Scan(...any) error }) (SymbolResult, error) {
	var sr SymbolResult
	sym, err := store.ScanSymbolRow(symbolRowScanner{rows: rows, path: &sr.FilePath})
	if err != nil {
		return SymbolResult{}, err
	}
	sr.Symbol = *sym
	return sr, nil
}

// Files lists stored files of a kind (empty for all) under a res:// prefix.
func (q *QueryBuilder) Files(pathPrefix, kind string, page Pagination) (*PagedResult[store.File], error) {
	page = page.normalize()
	all, err := q.store.Files(kind)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	prefix := normalizePathPrefix(pathPrefix)
	var matched []store.File
	for _, f := range all {
		if prefix == "" || strings.HasPrefix(f.Path, prefix) {
			matched = append(matched, *f)
		}
	}
	res := &PagedResult[store.File]{Items: []store.File{}, TotalCount: len(matched)}
	if page.Offset < len(matched) {
		end := min(page.Offset+page.Limit, len(matched))
		res.Items = matched[page.Offset:end]
	}
	return res, nil
}

// Connections lists stored signal connections whose callback is method,
// or every connection when method is empty.
func (q *QueryBuilder) Connections(method string) ([]*store.SignalConnection, error) {
	conns, err := q.store.SignalConnections(method)
	if err != nil {
		return nil, fmt.Errorf("connections: %w", err)
	}
	return conns, nil
}

// ScriptTypes lists the stored type of every script.
func (q *QueryBuilder) ScriptTypes() ([]*store.ScriptType, error) {
	types, err := q.store.ScriptTypes()
	if err != nil {
		return nil, fmt.Errorf("script types: %w", err)
	}
	return types, nil
}

// Dependents returns the res:// paths of the stored scripts extending
// typeName, directly or not, sorted.
func (q *QueryBuilder) Dependents(typeName string) ([]string, error) {
	ids, err := q.store.FilesExtending(typeName)
	if err != nil {
		return nil, fmt.Errorf("dependents: %w", err)
	}
	out := []string{}
	for _, id := range ids {
		f, err := q.store.FileByID(id)
		if err != nil {
			return nil, fmt.Errorf("dependents: %w", err)
		}
		if f != nil {
			out = append(out, f.Path)
		}
	}
	sort.Strings(out)
	return out, nil
}

// StoredDiagnostics returns the diagnostics recorded for a file at the
// last index, or for every file when file is empty.
func (q *QueryBuilder) StoredDiagnostics(file string) ([]*store.Diagnostic, error) {
	if file == "" {
		return q.store.Diagnostics()
	}
	f, err := q.store.FileByPath(ResPath(q.root, file))
	if err != nil {
		return nil, fmt.Errorf("stored diagnostics: %w", err)
	}
	if f == nil {
		return nil, nil
	}
	return q.store.Diagnostics(f.ID)
}
