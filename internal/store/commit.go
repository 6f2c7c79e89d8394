package store

import "fmt"

// CommitBatch inserts all buffered data from a BatchedStore into SQLite
// within a single transaction. Fake (negative) IDs are remapped to real
// (positive) IDs, and parent_symbol_id references within the batch are
// rewritten using the fakeToReal mapping.
//
// Insert order respects FK dependencies:
//  1. Symbols (parents are buffered before their children)
//  2. Diagnostics (depend on file_id only)
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	fakeToReal := make(map[int64]int64)

	for _, sym := range batch.Symbols {
		if sym.ParentSymbolID != nil && *sym.ParentSymbolID < 0 {
			realID, ok := fakeToReal[*sym.ParentSymbolID]
			if !ok {
				return fmt.Errorf("commit batch: symbol %q has parent_symbol_id=%d not in fakeToReal map", sym.Name, *sym.ParentSymbolID)
			}
			sym.ParentSymbolID = &realID
		}
		realID, err := insertSymbol(tx, &sym)
		if err != nil {
			return fmt.Errorf("commit batch: symbol %q: %w", sym.Name, err)
		}
		fakeToReal[sym.ID] = realID
	}

	for _, d := range batch.Diagnostics {
		if _, err := insertDiagnostic(tx, &d); err != nil {
			return fmt.Errorf("commit batch: diagnostic: %w", err)
		}
	}

	return tx.Commit()
}
