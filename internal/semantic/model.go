package semantic

import (
	"sort"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/runtime"
	"github.com/jward/gdlens/internal/symbols"
)

// Occurrence is one identifier token in a file, classified by syntax.
type Occurrence struct {
	Node  ast.NodeID
	Token ast.Token
	// Kind is Declaration, Read, Write or Call.
	Kind RefKind
	// Member is set for names written after a dot; Receiver is the
	// expression before it.
	Member   bool
	Receiver ast.NodeID
	// Decl is the declared symbol for Declaration occurrences.
	Decl *symbols.Symbol
}

// Pos returns the start of the token.
func (o Occurrence) Pos() ast.Pos { return o.Token.Span.Start }

// Model is the semantic view of one file. It is read-only once Freeze has
// been called.
type Model struct {
	Path  string
	Tree  *ast.Tree
	Table *symbols.Table
	Types *infer.Engine

	index map[string][]Occurrence
	types map[string][]Occurrence
}

// New analyses tree. opts configure type inference.
func New(tree *ast.Tree, opts ...infer.Option) *Model {
	if tree == nil {
		panic("semantic: nil tree")
	}
	return NewWithTable(symbols.Build(tree), opts...)
}

// NewWithTable analyses the file table was built from. Callers that need
// symbol identity shared with other components build the table first.
func NewWithTable(table *symbols.Table, opts ...infer.Option) *Model {
	if table == nil {
		panic("semantic: nil symbol table")
	}
	tree := table.Tree
	m := &Model{
		Path:  tree.Path,
		Tree:  tree,
		Table: table,
		Types: infer.New(table, opts...),
		index: make(map[string][]Occurrence),
		types: make(map[string][]Occurrence),
	}
	m.buildIndex()
	return m
}

// TypeName returns the type the file declares.
func (m *Model) TypeName() string { return m.Types.SelfType() }

// BaseType returns the base type of the file's top-level class.
func (m *Model) BaseType() string { return m.Types.BaseOf(m.TypeName()) }

// Provider returns the provider chain used for inference.
func (m *Model) Provider() runtime.Provider { return m.Types.Provider() }

// Freeze makes the model read-only.
func (m *Model) Freeze() { m.Types.Freeze() }

// Occurrences returns every identifier token named name, in source order.
func (m *Model) Occurrences(name string) []Occurrence { return m.index[name] }

// TypeOccurrences returns the places name is used as a type: annotations,
// extends clauses, is/as tests.
func (m *Model) TypeOccurrences(name string) []Occurrence { return m.types[name] }

// FindSymbol returns the class member named name, else the first
// declaration of that name in the file.
func (m *Model) FindSymbol(name string) *symbols.Symbol {
	if sym := m.Table.ClassMember(name); sym != nil {
		return sym
	}
	if syms := m.Table.ByName(name); len(syms) > 0 {
		return syms[0]
	}
	return nil
}

// GetSymbolAtPosition returns the symbol declared or referenced at the
// 0-based line and column. Member accesses resolve only to members of
// classes declared in this file.
func (m *Model) GetSymbolAtPosition(line, col int) *symbols.Symbol {
	pos := ast.Pos{Line: line, Col: col}
	if sym := m.Table.DeclaredAt(pos); sym != nil {
		return sym
	}
	id := m.Tree.NodeAt(pos)
	n := m.Tree.Node(id)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KindIdent:
		return m.Table.Lookup(n.Name.Text, n.Span.Start)
	case ast.KindMember:
		if !n.Name.Span.Contains(pos) {
			return nil
		}
		return m.ResolveMember(id)
	}
	return nil
}

// ResolveMember resolves a Member node to a class member declared in this
// file, or nil.
func (m *Model) ResolveMember(id ast.NodeID) *symbols.Symbol {
	n := m.Tree.Node(id)
	if n == nil || n.Kind != ast.KindMember {
		return nil
	}
	var class string
	if m.Tree.Kind(n.Left) == ast.KindSelf {
		class = m.ClassAt(id)
	} else {
		t := m.Types.InferExpr(n.Left)
		if !t.Known() {
			return nil
		}
		class = t.Name
	}
	s := m.classScope(class)
	if s == nil {
		return nil
	}
	return s.Local(n.Name.Text)
}

// ClassAt returns the name of the class enclosing id.
func (m *Model) ClassAt(id ast.NodeID) string {
	if c := m.Tree.Enclosing(id, ast.KindClass); c.Valid() {
		return m.Tree.Nodes[c].Name.Text
	}
	return m.TypeName()
}

func (m *Model) classScope(name string) *symbols.Scope {
	if name == m.TypeName() {
		return m.Table.Root
	}
	return m.Table.InnerClass(name)
}

// ClassOf returns the class name that owns sym: the file type for
// top-level members, the inner class name otherwise.
func (m *Model) ClassOf(sym *symbols.Symbol) string {
	if sym == nil || sym.Scope == nil {
		return ""
	}
	c := sym.Scope.Class()
	if c == nil || c == m.Table.Root {
		return m.TypeName()
	}
	return c.ClassName
}

// InferExpressionType returns the inferred type of expression id.
func (m *Model) InferExpressionType(id ast.NodeID) infer.Type { return m.Types.InferExpr(id) }

// GetClassContainerProfile returns the container profile of an untyped
// class-level variable, or nil.
func (m *Model) GetClassContainerProfile(class, variable string) *infer.ContainerProfile {
	return m.Types.Profile(class, variable)
}

// GetReferencesTo returns the references to sym within this file. The
// declaration is always included.
func (m *Model) GetReferencesTo(sym *symbols.Symbol) []Reference {
	if sym == nil {
		return nil
	}
	var out []Reference
	declared := false
	for _, occ := range m.index[sym.Name] {
		ref, ok := m.classify(sym, occ)
		if !ok {
			continue
		}
		if ref.Kind == Declaration {
			declared = true
		}
		out = append(out, ref)
	}
	if !declared && sym.File == m.Path {
		ref := NewReference(m.Path, sym.Decl, ast.Token{Text: sym.Name, Span: sym.NameSpan}, Declaration, Strict)
		out = append(out, ref)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Pos().Before(out[j].Pos()) })
	}
	return out
}

// classify decides whether occ refers to sym.
func (m *Model) classify(sym *symbols.Symbol, occ Occurrence) (Reference, bool) {
	ref := NewReference(m.Path, occ.Node, occ.Token, occ.Kind, Strict)
	switch {
	case occ.Kind == Declaration:
		return ref, occ.Decl == sym
	case !occ.Member:
		return ref, m.Table.Lookup(occ.Token.Text, occ.Pos()) == sym
	case !sym.IsClassMember():
		return ref, false
	}
	conf, reason, ok := m.MemberMatch(occ, m.ClassOf(sym))
	if !ok {
		return ref, false
	}
	ref.Confidence, ref.Reason = conf, reason
	return ref, true
}

// MemberMatch decides whether a member occurrence can refer to a member
// of class. Access through an indexer is always Potential: the element
// type of a container is checked only at run time.
func (m *Model) MemberMatch(occ Occurrence, class string) (Confidence, string, bool) {
	recv := m.Tree.Node(occ.Receiver)
	if recv == nil {
		return NameMatch, "", false
	}
	switch recv.Kind {
	case ast.KindSelf:
		return Strict, "", m.ClassAt(occ.Node) == class || m.assignable(m.ClassAt(occ.Node), class)
	case ast.KindIndex:
		t := m.Types.InferExpr(occ.Receiver)
		if t.Known() && !t.IsClass && !m.compatible(t.Name, class) {
			return NameMatch, "", false
		}
		return Potential, "accessed through container index", true
	}
	t := m.Types.InferExpr(occ.Receiver)
	if !t.Known() {
		return Potential, "receiver type unknown: " + t.Reason, true
	}
	if t.Name == class || m.assignable(t.Name, class) {
		if t.Confidence == infer.High {
			return Strict, "", true
		}
		return Potential, "receiver inferred as " + t.Name + " with low confidence", true
	}
	if m.assignable(class, t.Name) {
		return Potential, "receiver typed as base " + t.Name, true
	}
	return NameMatch, "", false
}

// compatible reports whether a value of type a may hold an instance of b.
func (m *Model) compatible(a, b string) bool {
	return a == b || m.assignable(a, b) || m.assignable(b, a)
}

func (m *Model) assignable(from, to string) bool {
	if from == "" || to == "" {
		return false
	}
	if runtime.Assignable(from, to) {
		return true
	}
	for t, seen := from, map[string]bool{}; t != "" && !seen[t]; {
		if t == to {
			return true
		}
		seen[t] = true
		if s := m.classScope(t); s != nil {
			t = m.Types.BaseOf(t)
			continue
		}
		return m.Provider().IsAssignableTo(t, to)
	}
	return false
}

// buildIndex records every identifier token by name.
func (m *Model) buildIndex() {
	tree := m.Tree
	add := func(occ Occurrence) {
		if occ.Token.Text == "" {
			return
		}
		m.index[occ.Token.Text] = append(m.index[occ.Token.Text], occ)
	}
	addType := func(id ast.NodeID, tok ast.Token) {
		if tok.Text == "" {
			return
		}
		m.types[tok.Text] = append(m.types[tok.Text], Occurrence{Node: id, Token: tok, Kind: Read, Receiver: ast.NoNode})
	}
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		n := tree.Node(id)
		switch n.Kind {
		case ast.KindVar, ast.KindConst, ast.KindParam, ast.KindFunc, ast.KindSignal,
			ast.KindEnum, ast.KindEnumValue, ast.KindClass, ast.KindFor, ast.KindPatternBind:
			if n.Kind == ast.KindFunc && tree.Kind(n.Parent) == ast.KindVar {
				break
			}
			add(Occurrence{Node: id, Token: n.Name, Kind: Declaration, Receiver: ast.NoNode, Decl: m.Table.SymbolForDecl(id)})
		case ast.KindLambda:
			if n.Name.Valid() {
				add(Occurrence{Node: id, Token: n.Name, Kind: Declaration, Receiver: ast.NoNode})
			}
		case ast.KindIdent:
			add(Occurrence{Node: id, Token: n.Name, Kind: m.usage(id), Receiver: ast.NoNode})
		case ast.KindMember:
			add(Occurrence{Node: id, Token: n.Name, Kind: m.usage(id), Member: true, Receiver: n.Left})
		case ast.KindTypeRef:
			addType(id, firstSegment(n.Name))
		case ast.KindExtends:
			if n.Text == "" {
				addType(id, firstSegment(n.Name))
			}
		}
		return true
	})
	for name, occs := range m.index {
		sort.SliceStable(occs, func(i, j int) bool { return occs[i].Pos().Before(occs[j].Pos()) })
		m.index[name] = occs
	}
}

// usage classifies an identifier or member expression by its parent.
func (m *Model) usage(id ast.NodeID) RefKind {
	p := m.Tree.Node(m.Tree.Parent(id))
	if p == nil {
		return Read
	}
	switch {
	case p.Kind == ast.KindAssign && p.Left == id:
		return Write
	case p.Kind == ast.KindCall && p.Left == id:
		return Call
	}
	return Read
}

// firstSegment trims a dotted type name to its first identifier.
func firstSegment(tok ast.Token) ast.Token {
	for i := 0; i < len(tok.Text); i++ {
		if tok.Text[i] == '.' {
			tok.Text = tok.Text[:i]
			tok.Span.End = ast.Pos{Line: tok.Span.Start.Line, Col: tok.Span.Start.Col + i}
			break
		}
	}
	return tok
}
