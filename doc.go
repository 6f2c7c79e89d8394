// Package gdlens provides static semantic analysis of Godot GDScript
// projects: per-file symbol tables, confidence-graded type inference,
// container usage profiles, and cross-file reference resolution through
// inheritance, duck typing, signal connections and contract strings.
//
// # Pipeline
//
// An [Engine] runs one batch analysis per index:
//
//  1. Load: discover .gd, .tscn and project.godot files, read and parse
//     them on a bounded worker pool.
//
//  2. Analyse: build the project (script type registry, scenes,
//     autoloads, signal connections) and one frozen semantic model per
//     script.
//
//  3. Persist: replace the SQLite index with the symbols, inferred types,
//     diagnostics, script types and signal connections of the project.
//
// # Usage
//
//	e, err := gdlens.New(".gdlens/index.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	err = e.IndexDirectory(ctx, "path/to/project")
//
//	q := e.Query()
//	res, err := q.References("take_damage", "")
//
// # Query API
//
// Live queries run against the analysed project held by the Engine:
//
//   - [QueryBuilder.References] and [QueryBuilder.ReferencesAt]: every
//     reference to a declaration, graded strict, potential or name_match.
//   - [QueryBuilder.AllReferences]: declarations sharing a name, split
//     into unrelated hierarchies.
//   - [QueryBuilder.SymbolAt], [QueryBuilder.InferAt],
//     [QueryBuilder.Profile] and [QueryBuilder.Diagnostics].
//
// Listing queries read the persisted index and work on a database opened
// without re-indexing: [QueryBuilder.Symbols], [QueryBuilder.Files],
// [QueryBuilder.Connections], [QueryBuilder.ScriptTypes] and
// [QueryBuilder.Dependents].
//
// Positions are 0-based everywhere.
package gdlens
