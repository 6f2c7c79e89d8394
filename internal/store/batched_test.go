package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchedStore_SymbolsByFile_ReturnsBufferedSymbols(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "res://main.gd", KindScript)

	batch := NewBatchedStore(s)
	id1, err := batch.InsertSymbol(&Symbol{FileID: f.ID, Name: "speed", Kind: "variable"})
	require.NoError(t, err)
	assert.Negative(t, id1, "batched IDs should be negative")

	id2, err := batch.InsertSymbol(&Symbol{FileID: f.ID, Name: "run", Kind: "method"})
	require.NoError(t, err)
	assert.Negative(t, id2)
	assert.NotEqual(t, id1, id2)

	syms, err := batch.SymbolsByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, syms, 2)
	names := []string{syms[0].Name, syms[1].Name}
	assert.Contains(t, names, "speed")
	assert.Contains(t, names, "run")
	for _, sym := range syms {
		assert.Negative(t, sym.ID, "buffered symbols should have negative IDs")
	}
}

func TestBatchedStore_SymbolsByName_MergesWithDatabase(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := insertTestFile(t, s, "res://a.gd", KindScript)
	b := insertTestFile(t, s, "res://b.gd", KindScript)
	insertTestSymbol(t, s, a.ID, "update", "method")

	batch := NewBatchedStore(s)
	_, err := batch.InsertSymbol(&Symbol{FileID: b.ID, Name: "update", Kind: "method"})
	require.NoError(t, err)
	_, err = batch.InsertSymbol(&Symbol{FileID: b.ID, Name: "other", Kind: "method"})
	require.NoError(t, err)

	syms, err := batch.SymbolsByName("update")
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Positive(t, syms[0].ID)
	assert.Negative(t, syms[1].ID)
}

func TestBatchedStore_SymbolsByFile_DoesNotReturnOtherFiles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f1 := insertTestFile(t, s, "res://a.gd", KindScript)
	f2 := insertTestFile(t, s, "res://b.gd", KindScript)

	batch := NewBatchedStore(s)
	_, err := batch.InsertSymbol(&Symbol{FileID: f1.ID, Name: "inA", Kind: "method"})
	require.NoError(t, err)
	_, err = batch.InsertSymbol(&Symbol{FileID: f2.ID, Name: "inB", Kind: "method"})
	require.NoError(t, err)

	syms, err := batch.SymbolsByFile(f1.ID)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "inA", syms[0].Name)
}

func TestCommitBatch_RemapsParents(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "res://player.gd", KindScript)

	batch := NewBatchedStore(s)
	parent := &Symbol{FileID: f.ID, Name: "heal", Kind: "method", Line: 2}
	_, err := batch.InsertSymbol(parent)
	require.NoError(t, err)
	_, err = batch.InsertSymbol(&Symbol{FileID: f.ID, Name: "amount", Kind: "parameter", Line: 2, Col: 9, ParentSymbolID: ptr(parent.ID)})
	require.NoError(t, err)
	_, err = batch.InsertDiagnostic(&Diagnostic{FileID: f.ID, Severity: "error", Line: 4, Message: "type mismatch"})
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Len())

	require.NoError(t, s.CommitBatch(batch))

	syms, err := s.SymbolsByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Positive(t, syms[0].ID)
	require.NotNil(t, syms[1].ParentSymbolID)
	assert.Equal(t, syms[0].ID, *syms[1].ParentSymbolID)

	diags, err := s.Diagnostics(f.ID)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "type mismatch", diags[0].Message)
}

func TestCommitBatch_UnknownParentFails(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "res://a.gd", KindScript)

	batch := NewBatchedStore(s)
	_, err := batch.InsertSymbol(&Symbol{FileID: f.ID, Name: "x", Kind: "variable", ParentSymbolID: ptr(int64(-99))})
	require.NoError(t, err)

	err = s.CommitBatch(batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent_symbol_id")

	syms, err := s.SymbolsByFile(f.ID)
	require.NoError(t, err)
	assert.Empty(t, syms, "failed batch is rolled back")
}
