package store

// DataStore is the interface for per-file data access. Both Store (direct
// SQLite) and BatchedStore (in-memory buffering for parallel indexing)
// implement this interface.
type DataStore interface {
	// Inserts return the assigned ID.
	InsertSymbol(sym *Symbol) (int64, error)
	InsertDiagnostic(d *Diagnostic) (int64, error)

	SymbolsByName(name string) ([]*Symbol, error)
	SymbolsByFile(fileID int64) ([]*Symbol, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
