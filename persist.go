package gdlens

import (
	"context"
	"fmt"
	"time"

	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/project"
	"github.com/jward/gdlens/internal/semantic"
	"github.com/jward/gdlens/internal/store"
	"github.com/jward/gdlens/internal/symbols"
)

// persist replaces the stored index with p. Phases:
//
//	1 (serial):   Drop vanished files, upsert file records.
//	2 (parallel): Build per-script batches of symbols and diagnostics.
//	3 (serial):   Commit batches in path order, then project-level rows.
func (e *Engine) persist(ctx context.Context, p *project.Project, sources []*source) error {
	keep := make([]string, len(sources))
	for i, src := range sources {
		keep[i] = src.res
	}
	removed, err := e.store.DeleteFilesExcept(keep)
	if err != nil {
		return err
	}
	if err := e.store.DeleteProjectData(); err != nil {
		return err
	}

	// ---- Phase 1: file records ----
	ids := make(map[string]int64, len(sources))
	changed := 0
	now := time.Now()
	for _, src := range sources {
		rec := &store.File{Path: src.res, Kind: src.kind, Hash: src.hash, LineCount: src.lines, LastIndexed: now}
		existing, err := e.store.FileByPath(src.res)
		if err != nil {
			return err
		}
		if existing == nil {
			if _, err := e.store.InsertFile(rec); err != nil {
				return err
			}
			changed++
		} else {
			if existing.Hash != src.hash {
				changed++
			}
			if err := e.store.DeleteFileData(existing.ID); err != nil {
				return err
			}
			rec.ID = existing.ID
			if err := e.store.UpdateFile(rec); err != nil {
				return err
			}
		}
		ids[src.res] = rec.ID
	}
	e.logger.Debug("file records updated", "count", len(sources), "changed", changed, "removed", removed)

	// ---- Phase 2: batches ----
	batches, err := e.buildBatches(ctx, p, ids)
	if err != nil {
		return err
	}

	// ---- Phase 3: commit ----
	for i, b := range batches {
		if err := e.store.CommitBatch(b); err != nil {
			return fmt.Errorf("commit %s: %w", p.Paths()[i], err)
		}
	}
	for _, path := range p.Paths() {
		m := p.Model(path)
		scenePath, _ := p.SceneOf(path)
		st := &store.ScriptType{
			FileID:    ids[path],
			TypeName:  m.TypeName(),
			ClassName: m.Table.ClassName(),
			BaseType:  m.BaseType(),
			ScenePath: scenePath,
		}
		if _, err := e.store.InsertScriptType(st); err != nil {
			return err
		}
	}
	for _, c := range p.Signals.Connections() {
		id, ok := ids[c.SourcePath]
		if !ok {
			continue
		}
		row := &store.SignalConnection{
			FileID:        id,
			SignalName:    c.SignalName,
			Method:        c.Method,
			CallbackClass: c.CallbackClass,
			Line:          c.Line,
			Col:           c.Column,
			Confidence:    c.Confidence.String(),
			IsScene:       c.IsSceneConnection,
		}
		if _, err := e.store.InsertSignalConnection(row); err != nil {
			return err
		}
	}
	return nil
}

// buildBatch records the symbols and diagnostics of one script.
func (e *Engine) buildBatch(p *project.Project, path string, fileID int64) (*store.BatchedStore, error) {
	m := p.Model(path)
	b := store.NewBatchedStore(e.store)
	fake := make(map[*symbols.Symbol]int64)
	for _, sym := range m.Table.All() {
		row := symbolRow(m, sym, fileID)
		if owner := ownerOf(m.Table, sym); owner != nil {
			if id, ok := fake[owner]; ok {
				row.ParentSymbolID = &id
			}
		}
		id, err := b.InsertSymbol(row)
		if err != nil {
			return nil, err
		}
		fake[sym] = id
	}
	for _, d := range m.Diagnostics() {
		if _, err := b.InsertDiagnostic(&store.Diagnostic{
			FileID:   fileID,
			Severity: d.Severity.String(),
			Code:     d.Code,
			Line:     d.Line,
			Col:      d.Column,
			Message:  d.Message,
		}); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func symbolRow(m *semantic.Model, sym *symbols.Symbol, fileID int64) *store.Symbol {
	row := &store.Symbol{
		FileID:   fileID,
		Name:     sym.Name,
		Kind:     sym.Kind.String(),
		TypeName: sym.TypeName,
		IsStatic: sym.IsStatic,
		Line:     sym.Pos().Line,
		Col:      sym.Pos().Col,
	}
	if sym.IsClassMember() {
		row.DeclaringType = m.ClassOf(sym)
	}
	var t infer.Type
	switch sym.Kind {
	case symbols.Method:
		t = m.Types.ReturnType(sym)
	case symbols.Signal, symbols.Class, symbols.Enum:
	default:
		t = m.Types.InferDecl(sym)
	}
	if t.Known() {
		row.InferredType = t.Annotation()
	}
	row.Confidence = t.Confidence.String()
	row.SignatureHash = store.ComputeSignatureHash(row)
	return row
}

// ownerOf returns the method or inner class whose scope declares sym.
func ownerOf(t *symbols.Table, sym *symbols.Symbol) *symbols.Symbol {
	for s := sym.Scope; s != nil; s = s.Parent {
		if owner := t.SymbolForDecl(s.Node); owner != nil && owner != sym {
			return owner
		}
	}
	return nil
}
