package gdlens

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/project"
	"github.com/jward/gdlens/internal/refs"
	"github.com/jward/gdlens/internal/semantic"
	"github.com/jward/gdlens/internal/store"
	"github.com/jward/gdlens/internal/symbols"
)

// ErrNotAnalyzed is returned by live queries when no project has been
// indexed in this Engine.
var ErrNotAnalyzed = errors.New("gdlens: project not analyzed")

// QueryBuilder answers questions about an indexed project. Live queries
// (references, inference, diagnostics) run against the analysed project;
// listing queries read the Store.
type QueryBuilder struct {
	store     *store.Store
	root      string
	project   *project.Project
	collector *refs.Collector
	workers   int
}

// Location is a 0-based source position.
type Location struct {
	File   string
	Line   int
	Column int
}

func (q *QueryBuilder) model(file string) (*semantic.Model, error) {
	if q.project == nil {
		return nil, ErrNotAnalyzed
	}
	path := ResPath(q.root, file)
	m := q.project.Model(path)
	if m == nil {
		return nil, fmt.Errorf("gdlens: %s: not a script of the project", path)
	}
	return m, nil
}

// References collects every reference to declarations named name. A
// non-empty file restricts the result to that file.
func (q *QueryBuilder) References(name, file string) (refs.Result, error) {
	if q.collector == nil {
		return refs.Result{}, ErrNotAnalyzed
	}
	filter := ""
	if file != "" {
		filter = ResPath(q.root, file)
	}
	return q.collector.CollectReferences(refs.ByName(name), filter), nil
}

// ReferencesAt collects references to the symbol at a position. The result
// is empty when no symbol is there.
func (q *QueryBuilder) ReferencesAt(file string, line, col int) (refs.Result, error) {
	sym, err := q.SymbolAt(file, line, col)
	if err != nil || sym == nil {
		return refs.Result{}, err
	}
	return q.collector.CollectReferences(refs.BySymbol(sym), ""), nil
}

// AllReferences partitions every declaration named name into unrelated
// hierarchies.
func (q *QueryBuilder) AllReferences(name string) (refs.AllResult, error) {
	if q.collector == nil {
		return refs.AllResult{}, ErrNotAnalyzed
	}
	return q.collector.CollectAllReferences(name), nil
}

// CollectReferencesBatch resolves several names concurrently. Results
// are returned in the order of names.
func (q *QueryBuilder) CollectReferencesBatch(ctx context.Context, names []string) ([]refs.Result, error) {
	if q.collector == nil {
		return nil, ErrNotAnalyzed
	}
	out := make([]refs.Result, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(q.workers, 1))
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = q.collector.CollectReferences(refs.ByName(name), "")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SymbolAt returns the symbol declared or referenced at a 0-based
// position, or nil.
func (q *QueryBuilder) SymbolAt(file string, line, col int) (*symbols.Symbol, error) {
	m, err := q.model(file)
	if err != nil {
		return nil, err
	}
	return m.GetSymbolAtPosition(line, col), nil
}

// InferAt infers the type of the innermost expression at a position.
func (q *QueryBuilder) InferAt(file string, line, col int) (infer.Type, error) {
	m, err := q.model(file)
	if err != nil {
		return infer.Type{}, err
	}
	id := m.Tree.NodeAt(ast.Pos{Line: line, Col: col})
	if !id.Valid() {
		return infer.Type{Reason: "no expression"}, nil
	}
	return m.InferExpressionType(id), nil
}

// Profile returns the container profile of variable in class. An empty
// class names the script's own class. The result is nil when the
// variable has no profile.
func (q *QueryBuilder) Profile(file, class, variable string) (*infer.ContainerProfile, error) {
	m, err := q.model(file)
	if err != nil {
		return nil, err
	}
	return m.GetClassContainerProfile(class, variable), nil
}

// Profiles returns every container profile of a script.
func (q *QueryBuilder) Profiles(file string) ([]*infer.ContainerProfile, error) {
	m, err := q.model(file)
	if err != nil {
		return nil, err
	}
	return m.Types.Profiles(), nil
}

// Diagnostics analyses a script, or the whole project when file is empty.
func (q *QueryBuilder) Diagnostics(file string) ([]semantic.Diagnostic, error) {
	if file == "" {
		if q.project == nil {
			return nil, ErrNotAnalyzed
		}
		return q.project.Diagnostics(), nil
	}
	m, err := q.model(file)
	if err != nil {
		return nil, err
	}
	return m.Diagnostics(), nil
}

// Subtypes lists the script types extending typeName, directly or not.
func (q *QueryBuilder) Subtypes(typeName string) ([]string, error) {
	if q.project == nil {
		return nil, ErrNotAnalyzed
	}
	return q.project.Subtypes(typeName), nil
}
