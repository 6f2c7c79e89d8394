package gdlens

import (
	"database/sql"
	"fmt"
)

// SymbolDetail bundles a stored symbol with its owner and the symbols it
// declares (parameters and locals of a method, members of an inner class).
type SymbolDetail struct {
	Symbol   SymbolResult
	Parent   *SymbolResult
	Children []SymbolResult
}

// SymbolDetail returns the detail of a stored symbol.
// Returns nil with no error if the symbol ID does not exist.
func (q *QueryBuilder) SymbolDetail(symbolID int64) (*SymbolDetail, error) {
	sr, err := q.symbolResultByID(symbolID)
	if err != nil {
		return nil, fmt.Errorf("symbol detail: %w", err)
	}
	if sr == nil {
		return nil, nil
	}
	d := &SymbolDetail{Symbol: *sr, Children: []SymbolResult{}}

	if sr.ParentSymbolID != nil {
		if d.Parent, err = q.symbolResultByID(*sr.ParentSymbolID); err != nil {
			return nil, fmt.Errorf("symbol detail: parent: %w", err)
		}
	}

	children, err := q.store.SymbolChildren(symbolID)
	if err != nil {
		return nil, fmt.Errorf("symbol detail: children: %w", err)
	}
	for _, c := range children {
		d.Children = append(d.Children, SymbolResult{Symbol: *c, FilePath: sr.FilePath})
	}
	return d, nil
}

// SymbolDetailAt returns the detail of the stored symbol declared at
// (file, line, col). The position must fall on the declared name.
// Line and col are 0-based. Returns nil with no error if no symbol exists.
func (q *QueryBuilder) SymbolDetailAt(file string, line, col int) (*SymbolDetail, error) {
	f, err := q.store.FileByPath(ResPath(q.root, file))
	if err != nil {
		return nil, fmt.Errorf("symbol detail at: lookup file: %w", err)
	}
	if f == nil {
		return nil, nil
	}
	syms, err := q.store.SymbolsByFile(f.ID)
	if err != nil {
		return nil, fmt.Errorf("symbol detail at: %w", err)
	}
	for _, sym := range syms {
		if sym.Line == line && col >= sym.Col && col < sym.Col+len(sym.Name) {
			return q.SymbolDetail(sym.ID)
		}
	}
	return nil, nil
}

// symbolResultByID loads a single symbol by its ID. Returns nil with no
// error if not found.
func (q *QueryBuilder) symbolResultByID(symbolID int64) (*SymbolResult, error) {
	row := q.store.DB().QueryRow(
		fmt.Sprintf(
			`SELECT %s, f.path
			 FROM symbols s
			 JOIN files f ON s.file_id = f.id
			 WHERE s.id = ?`,
			prefixSymbolCols("s"),
		),
		symbolID,
	)
	sr, err := scanSymbolResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// membersOf returns the stored class members declared by typeName.
func (q *QueryBuilder) membersOf(typeName string) ([]SymbolResult, error) {
	rows, err := q.store.DB().Query(
		fmt.Sprintf(
			`SELECT %s, f.path
			 FROM symbols s
			 JOIN files f ON s.file_id = f.id
			 WHERE s.declaring_type = ? AND s.parent_symbol_id IS NULL
			 ORDER BY s.line, s.col`,
			prefixSymbolCols("s"),
		),
		typeName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SymbolResult{}
	for rows.Next() {
		sr, err := scanSymbolResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
