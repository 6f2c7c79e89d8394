package gdlens

import "github.com/jward/gdlens/internal/store"

// Public type aliases for the stored index records returned by the
// QueryBuilder. External consumers use these names; no conversion is
// needed.

type Store = store.Store
type File = store.File
type Symbol = store.Symbol
type Diagnostic = store.Diagnostic
type ScriptType = store.ScriptType
type SignalConnection = store.SignalConnection
