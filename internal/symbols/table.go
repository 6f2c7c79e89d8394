package symbols

import (
	"github.com/jward/gdlens/internal/ast"
)

// Table is the symbol table of one file. It is read-only once built.
type Table struct {
	Tree *ast.Tree
	// Root is the file-level class scope.
	Root *Scope

	className   string
	extendsName string
	extendsPath string
	extendsNode ast.NodeID

	byDecl  map[ast.NodeID]*Symbol
	byScope map[ast.NodeID]*Scope
	all     []*Symbol
}

// Build constructs the symbol table for tree.
func Build(tree *ast.Tree) *Table {
	t := &Table{
		Tree:        tree,
		extendsNode: ast.NoNode,
		byDecl:      make(map[ast.NodeID]*Symbol),
		byScope:     make(map[ast.NodeID]*Scope),
	}
	root := tree.Node(tree.Root)
	if root == nil {
		t.Root = newScope(ScopeClass, ast.NoNode, ast.Span{}, nil)
		return t
	}
	for _, id := range root.Children {
		n := tree.Node(id)
		switch n.Kind {
		case ast.KindClassName:
			t.className = n.Name.Text
		case ast.KindExtends:
			t.extendsNode = id
			if n.Text != "" {
				t.extendsPath = n.Text
			} else {
				t.extendsName = n.Name.Text
			}
		}
	}
	t.Root = newScope(ScopeClass, tree.Root, root.Span, nil)
	t.Root.ClassName = t.className
	t.byScope[tree.Root] = t.Root
	b := &builder{t: t}
	b.classBody(t.Root, root.Children)
	return t
}

// ClassName returns the declared class_name, or "" for anonymous scripts.
func (t *Table) ClassName() string { return t.className }

// Extends returns the extends clause: a class name or a resource path.
// Both are empty when the script has no extends clause.
func (t *Table) Extends() (name, path string) { return t.extendsName, t.extendsPath }

// ExtendsNode returns the file-level Extends node, or NoNode.
func (t *Table) ExtendsNode() ast.NodeID { return t.extendsNode }

// All returns every symbol in declaration order.
func (t *Table) All() []*Symbol { return t.all }

// Members returns the file-level class members in declaration order.
func (t *Table) Members() []*Symbol { return t.Root.Symbols() }

// ClassMember returns the file-level class member named name.
func (t *Table) ClassMember(name string) *Symbol { return t.Root.Local(name) }

// SymbolForDecl returns the symbol declared by node id. Method, variable,
// parameter, for and pattern-binding nodes are all declarations.
func (t *Table) SymbolForDecl(id ast.NodeID) *Symbol { return t.byDecl[id] }

// ScopeOf returns the scope opened by node id (File, Class, Func, Lambda,
// Block, For or MatchBranch).
func (t *Table) ScopeOf(id ast.NodeID) *Scope { return t.byScope[id] }

// InnerClass returns the scope of the inner class named name.
func (t *Table) InnerClass(name string) *Scope {
	for _, s := range t.Root.Children {
		if s.Kind == ScopeClass && s.ClassName == name {
			return s
		}
	}
	return nil
}

// ScopeAt returns the innermost scope containing pos.
func (t *Table) ScopeAt(pos ast.Pos) *Scope {
	s := t.Root
	for {
		var next *Scope
		for _, c := range s.Children {
			if c.Span.Contains(pos) {
				next = c
			}
		}
		if next == nil {
			return s
		}
		s = next
	}
}

// Lookup resolves name at pos to its innermost visible declaration.
// Locals are visible from their declaration onwards; class members are
// visible everywhere inside the class and its inner classes.
func (t *Table) Lookup(name string, pos ast.Pos) *Symbol {
	if name == "" {
		return nil
	}
	return t.LookupFrom(t.ScopeAt(pos), name, pos)
}

// LookupFrom resolves name starting at scope s.
func (t *Table) LookupFrom(s *Scope, name string, pos ast.Pos) *Symbol {
	for ; s != nil; s = s.Parent {
		sym := s.Local(name)
		if sym == nil {
			continue
		}
		if s.Kind != ScopeClass && sym.Kind != Parameter {
			if pos.Before(sym.Pos()) || t.inInitializer(sym, pos) {
				continue
			}
		}
		return sym
	}
	return nil
}

// inInitializer reports whether pos lies in the initializer of a local
// declaration, where the name still refers to an outer binding.
func (t *Table) inInitializer(sym *Symbol, pos ast.Pos) bool {
	n := t.Tree.Node(sym.Decl)
	if n == nil || (n.Kind != ast.KindVar && n.Kind != ast.KindConst) {
		return false
	}
	v := t.Tree.Node(n.Value)
	return v != nil && v.Span.Contains(pos)
}

// DeclaredAt returns the symbol whose declared identifier contains pos.
func (t *Table) DeclaredAt(pos ast.Pos) *Symbol {
	for _, sym := range t.all {
		if sym.NameSpan.Contains(pos) {
			return sym
		}
	}
	return nil
}

// ByName returns every symbol named name, in declaration order.
func (t *Table) ByName(name string) []*Symbol {
	var out []*Symbol
	for _, sym := range t.all {
		if sym.Name == name {
			out = append(out, sym)
		}
	}
	return out
}

type builder struct {
	t *Table
}

func (b *builder) declare(s *Scope, sym *Symbol) *Symbol {
	if sym.Name == "" || sym.Name == "_" {
		return nil
	}
	sym.File = b.t.Tree.Path
	if s.Kind == ScopeClass {
		sym.DeclaringType = s.ClassName
	}
	s.declare(sym)
	if sym.Decl.Valid() {
		if _, ok := b.t.byDecl[sym.Decl]; !ok {
			b.t.byDecl[sym.Decl] = sym
		}
	}
	b.t.all = append(b.t.all, sym)
	return sym
}

func (b *builder) open(kind ScopeKind, id ast.NodeID, parent *Scope) *Scope {
	n := b.t.Tree.Node(id)
	s := newScope(kind, id, n.Span, parent)
	b.t.byScope[id] = s
	return s
}

func (b *builder) typeName(id ast.NodeID) string {
	if !id.Valid() {
		return ""
	}
	return b.t.Tree.String(id)
}

func (b *builder) classBody(s *Scope, members []ast.NodeID) {
	tree := b.t.Tree
	for _, id := range members {
		n := tree.Node(id)
		if n == nil {
			continue
		}
		switch n.Kind {
		case ast.KindVar:
			kind := Variable
			if n.Has(ast.FlagAccessors) {
				kind = Property
			}
			b.declare(s, &Symbol{Name: n.Name.Text, Kind: kind, Decl: id, NameSpan: n.Name.Span,
				TypeName: b.typeName(n.Type), IsStatic: n.Has(ast.FlagStatic)})
			b.exprs(s, n.Value)
			for _, acc := range n.Children {
				if tree.Kind(acc) == ast.KindFunc {
					b.method(s, acc, ScopeMethod)
				}
			}
		case ast.KindConst:
			b.declare(s, &Symbol{Name: n.Name.Text, Kind: Constant, Decl: id, NameSpan: n.Name.Span,
				TypeName: b.typeName(n.Type), IsStatic: true})
			b.exprs(s, n.Value)
		case ast.KindSignal:
			b.declare(s, &Symbol{Name: n.Name.Text, Kind: Signal, Decl: id, NameSpan: n.Name.Span})
		case ast.KindEnum:
			if n.Name.Valid() {
				b.declare(s, &Symbol{Name: n.Name.Text, Kind: Enum, Decl: id, NameSpan: n.Name.Span, IsStatic: true})
			}
			for _, v := range n.Children {
				vn := tree.Node(v)
				if vn == nil {
					continue
				}
				typ := "int"
				if n.Name.Valid() {
					typ = n.Name.Text
				}
				b.declare(s, &Symbol{Name: vn.Name.Text, Kind: EnumValue, Decl: v, NameSpan: vn.Name.Span,
					TypeName: typ, IsStatic: true})
			}
		case ast.KindFunc:
			b.declare(s, &Symbol{Name: n.Name.Text, Kind: Method, Decl: id, NameSpan: n.Name.Span,
				TypeName: b.typeName(n.Type), IsStatic: n.Has(ast.FlagStatic)})
			b.method(s, id, ScopeMethod)
		case ast.KindClass:
			b.declare(s, &Symbol{Name: n.Name.Text, Kind: Class, Decl: id, NameSpan: n.Name.Span, IsStatic: true})
			inner := b.open(ScopeClass, id, s)
			inner.ClassName = n.Name.Text
			b.classBody(inner, n.Children)
		}
	}
}

// method opens the scope of a Func or Lambda node, declares its parameters
// and walks its body.
func (b *builder) method(parent *Scope, id ast.NodeID, kind ScopeKind) {
	tree := b.t.Tree
	n := tree.Node(id)
	s := b.open(kind, id, parent)
	for _, p := range n.Children {
		pn := tree.Node(p)
		if pn == nil || pn.Kind != ast.KindParam {
			continue
		}
		b.declare(s, &Symbol{Name: pn.Name.Text, Kind: Parameter, Decl: p, NameSpan: pn.Name.Span,
			TypeName: b.typeName(pn.Type)})
		b.exprs(s, pn.Value)
	}
	b.block(s, n.Body)
}

func (b *builder) block(parent *Scope, id ast.NodeID) {
	n := b.t.Tree.Node(id)
	if n == nil {
		return
	}
	s := b.open(ScopeBlock, id, parent)
	for _, st := range n.Children {
		b.statement(s, st)
	}
}

func (b *builder) statement(s *Scope, id ast.NodeID) {
	tree := b.t.Tree
	n := tree.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindVar, ast.KindConst:
		kind := Variable
		if n.Kind == ast.KindConst {
			kind = Constant
		}
		// The initializer is evaluated before the name is bound.
		b.exprs(s, n.Value)
		b.declare(s, &Symbol{Name: n.Name.Text, Kind: kind, Decl: id, NameSpan: n.Name.Span,
			TypeName: b.typeName(n.Type)})
	case ast.KindIf:
		b.exprs(s, n.Value)
		b.block(s, n.Body)
		if tree.Kind(n.Else) == ast.KindIf {
			b.statement(s, n.Else)
		} else {
			b.block(s, n.Else)
		}
	case ast.KindWhile:
		b.exprs(s, n.Value)
		b.block(s, n.Body)
	case ast.KindFor:
		b.exprs(s, n.Value)
		loop := b.open(ScopeLoop, id, s)
		b.declare(loop, &Symbol{Name: n.Name.Text, Kind: Iterator, Decl: id, NameSpan: n.Name.Span,
			TypeName: b.typeName(n.Type)})
		b.block(loop, n.Body)
	case ast.KindMatch:
		b.exprs(s, n.Value)
		for _, br := range n.Children {
			bn := tree.Node(br)
			if bn == nil {
				continue
			}
			cs := b.open(ScopeMatchCase, br, s)
			for _, pat := range bn.Children {
				tree.Walk(pat, func(pid ast.NodeID) bool {
					if pn := tree.Node(pid); pn.Kind == ast.KindPatternBind {
						b.declare(cs, &Symbol{Name: pn.Name.Text, Kind: MatchCaseBinding, Decl: pid, NameSpan: pn.Name.Span})
					}
					return true
				})
			}
			b.exprs(cs, bn.Value)
			b.block(cs, bn.Body)
		}
	default:
		b.exprs(s, id)
	}
}

// exprs opens scopes for lambdas found inside an expression tree.
func (b *builder) exprs(s *Scope, id ast.NodeID) {
	if !id.Valid() {
		return
	}
	b.t.Tree.Walk(id, func(c ast.NodeID) bool {
		if b.t.Tree.Kind(c) == ast.KindLambda {
			b.method(s, c, ScopeLambda)
			return false
		}
		return true
	})
}
