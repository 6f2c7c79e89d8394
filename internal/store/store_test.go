package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

// insertTestFile inserts a file and returns it with ID set.
func insertTestFile(t *testing.T, s *Store, path, kind string) *File {
	t.Helper()
	f := &File{Path: path, Kind: kind, Hash: "abc123", LineCount: 10, LastIndexed: time.Now().Truncate(time.Second)}
	id, err := s.InsertFile(f)
	require.NoError(t, err)
	require.Positive(t, id)
	return f
}

// insertTestSymbol inserts a symbol with minimal required fields.
func insertTestSymbol(t *testing.T, s *Store, fileID int64, name, kind string) *Symbol {
	t.Helper()
	sym := &Symbol{FileID: fileID, Name: name, Kind: kind, DeclaringType: "Player", Line: 3, Col: 4}
	id, err := s.InsertSymbol(sym)
	require.NoError(t, err)
	require.Positive(t, id)
	return sym
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"files", "symbols", "diagnostics", "script_types", "signal_connections"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestNewStore_BadPath(t *testing.T) {
	t.Parallel()
	_, err := NewStore(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store:")
}

// =============================================================================
// Files
// =============================================================================

func TestFiles_InsertLookupUpdate(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "res://player.gd", KindScript)

	got, err := s.FileByPath("res://player.gd")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, KindScript, got.Kind)
	assert.Equal(t, 10, got.LineCount)
	assert.True(t, f.LastIndexed.Equal(got.LastIndexed))

	got.Hash = "def456"
	got.LineCount = 12
	require.NoError(t, s.UpdateFile(got))
	again, err := s.FileByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, "def456", again.Hash)
	assert.Equal(t, 12, again.LineCount)
}

func TestFiles_MissingReturnsNil(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f, err := s.FileByPath("res://nope.gd")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestFiles_DuplicatePathRejected(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestFile(t, s, "res://a.gd", KindScript)
	_, err := s.InsertFile(&File{Path: "res://a.gd", Kind: KindScript})
	require.Error(t, err)
}

func TestFiles_FilterByKindOrderedByPath(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestFile(t, s, "res://z.gd", KindScript)
	insertTestFile(t, s, "res://main.tscn", KindScene)
	insertTestFile(t, s, "res://a.gd", KindScript)

	scripts, err := s.Files(KindScript)
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, "res://a.gd", scripts[0].Path)
	assert.Equal(t, "res://z.gd", scripts[1].Path)

	all, err := s.Files("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteFilesExcept(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := insertTestFile(t, s, "res://a.gd", KindScript)
	b := insertTestFile(t, s, "res://b.gd", KindScript)
	insertTestSymbol(t, s, b.ID, "hp", "variable")

	n, err := s.DeleteFilesExcept([]string{"res://a.gd"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	files, err := s.Files("")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, a.ID, files[0].ID)

	syms, err := s.SymbolsByName("hp")
	require.NoError(t, err)
	assert.Empty(t, syms)
}

// =============================================================================
// Symbols & Diagnostics
// =============================================================================

func TestSymbols_RoundTripAndParents(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "res://player.gd", KindScript)

	method := insertTestSymbol(t, s, f.ID, "heal", "method")
	local := &Symbol{
		FileID: f.ID, Name: "amount", Kind: "parameter", TypeName: "int",
		InferredType: "int", Confidence: "high", Line: 5, Col: 10,
		ParentSymbolID: ptr(method.ID),
	}
	local.SignatureHash = ComputeSignatureHash(local)
	_, err := s.InsertSymbol(local)
	require.NoError(t, err)

	children, err := s.SymbolChildren(method.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	got := children[0]
	assert.Equal(t, "amount", got.Name)
	assert.Equal(t, "int", got.TypeName)
	assert.Equal(t, "high", got.Confidence)
	assert.Equal(t, local.SignatureHash, got.SignatureHash)
	require.NotNil(t, got.ParentSymbolID)
	assert.Equal(t, method.ID, *got.ParentSymbolID)

	byFile, err := s.SymbolsByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, byFile, 2)
	assert.Equal(t, "heal", byFile[0].Name, "ordered by position")

	methods, err := s.SymbolsByKind("method", "signal")
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "Player", methods[0].DeclaringType)
}

func TestDiagnostics_FilterByFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := insertTestFile(t, s, "res://a.gd", KindScript)
	b := insertTestFile(t, s, "res://b.gd", KindScript)
	_, err := s.InsertDiagnostic(&Diagnostic{FileID: a.ID, Severity: "error", Line: 2, Message: "type mismatch"})
	require.NoError(t, err)
	_, err = s.InsertDiagnostic(&Diagnostic{FileID: b.ID, Severity: "error", Line: 1, Message: "parse error"})
	require.NoError(t, err)

	all, err := s.Diagnostics()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyB, err := s.Diagnostics(b.ID)
	require.NoError(t, err)
	require.Len(t, onlyB, 1)
	assert.Equal(t, "parse error", onlyB[0].Message)
}

func TestDeleteFileData_KeepsFileRow(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "res://a.gd", KindScript)
	parent := insertTestSymbol(t, s, f.ID, "run", "method")
	_, err := s.InsertSymbol(&Symbol{FileID: f.ID, Name: "x", Kind: "variable", ParentSymbolID: ptr(parent.ID)})
	require.NoError(t, err)
	_, err = s.InsertDiagnostic(&Diagnostic{FileID: f.ID, Severity: "error", Message: "m"})
	require.NoError(t, err)
	_, err = s.InsertScriptType(&ScriptType{FileID: f.ID, TypeName: "A", BaseType: "Node"})
	require.NoError(t, err)
	_, err = s.InsertSignalConnection(&SignalConnection{FileID: f.ID, Method: "run"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFileData(f.ID))

	syms, err := s.SymbolsByFile(f.ID)
	require.NoError(t, err)
	assert.Empty(t, syms)
	diags, err := s.Diagnostics(f.ID)
	require.NoError(t, err)
	assert.Empty(t, diags)
	conns, err := s.SignalConnections("")
	require.NoError(t, err)
	assert.Empty(t, conns)

	still, err := s.FileByID(f.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

// =============================================================================
// Project-level data
// =============================================================================

func TestScriptTypes_FilesExtending(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	entity := insertTestFile(t, s, "res://entity.gd", KindScript)
	enemy := insertTestFile(t, s, "res://enemy.gd", KindScript)
	boss := insertTestFile(t, s, "res://boss.gd", KindScript)
	other := insertTestFile(t, s, "res://hud.gd", KindScript)

	for _, st := range []*ScriptType{
		{FileID: entity.ID, TypeName: "Entity", ClassName: "Entity", BaseType: "Node2D"},
		{FileID: enemy.ID, TypeName: "Enemy", ClassName: "Enemy", BaseType: "Entity"},
		{FileID: boss.ID, TypeName: "res://boss.gd", BaseType: "Enemy"},
		{FileID: other.ID, TypeName: "res://hud.gd", BaseType: "Control", ScenePath: "res://hud.tscn"},
	} {
		_, err := s.InsertScriptType(st)
		require.NoError(t, err)
	}

	ids, err := s.FilesExtending("Entity")
	require.NoError(t, err)
	assert.Equal(t, []int64{enemy.ID, boss.ID}, ids)

	hud, err := s.ScriptTypeByName("res://hud.gd")
	require.NoError(t, err)
	require.NotNil(t, hud)
	assert.Equal(t, "res://hud.tscn", hud.ScenePath)

	missing, err := s.ScriptTypeByName("Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	direct, err := s.ScriptTypesByBase("Entity")
	require.NoError(t, err)
	require.Len(t, direct, 1)
	assert.Equal(t, "Enemy", direct[0].TypeName)

	require.NoError(t, s.DeleteProjectData())
	all, err := s.ScriptTypes()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSignalConnections_ByMethod(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	scene := insertTestFile(t, s, "res://hud.tscn", KindScene)
	script := insertTestFile(t, s, "res://hud.gd", KindScript)

	_, err := s.InsertSignalConnection(&SignalConnection{
		FileID: scene.ID, SignalName: "pressed", Method: "_on_start", CallbackClass: "res://hud.gd",
		Line: 9, Confidence: "strict", IsScene: true,
	})
	require.NoError(t, err)
	_, err = s.InsertSignalConnection(&SignalConnection{
		FileID: script.ID, SignalName: "timeout", Method: "_on_tick", Line: 4, Col: 2, Confidence: "potential",
	})
	require.NoError(t, err)

	got, err := s.SignalConnections("_on_start")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsScene)
	assert.Equal(t, 9, got[0].Line)
	assert.Equal(t, "res://hud.gd", got[0].CallbackClass)

	all, err := s.SignalConnections("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// Hashing
// =============================================================================

func TestComputeSignatureHash_IgnoresLocation(t *testing.T) {
	t.Parallel()
	a := &Symbol{Name: "hp", Kind: "variable", TypeName: "int", DeclaringType: "Player", Line: 1}
	b := *a
	b.Line, b.Col = 40, 8
	assert.Equal(t, ComputeSignatureHash(a), ComputeSignatureHash(&b))

	b.TypeName = "float"
	assert.NotEqual(t, ComputeSignatureHash(a), ComputeSignatureHash(&b))
}

func TestContentHash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ContentHash([]byte("extends Node\n")), ContentHash([]byte("extends Node\n")))
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
	assert.Len(t, ContentHash(nil), 64)
}
