package infer

import (
	"slices"
	"sort"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/symbols"
)

// ContainerProfile records how an untyped class-level variable is used as
// a container across every method of its class. Profiles exist only for
// variables that are assigned a literal array or dictionary and never
// assigned anything else.
type ContainerProfile struct {
	Class    string
	Variable string
	Symbol   *symbols.Symbol

	IsArray      bool
	IsDictionary bool
	IsUnion      bool
	// ElementTypes and KeyTypes hold distinct observed types in the order
	// they were first seen.
	ElementTypes []string
	KeyTypes     []string
	// Sites are the assignment and mutation nodes that contributed.
	Sites []ast.NodeID
}

// ComputeInferredType folds the observations into a Type. With no element
// observations the confidence is Unknown; one distinct type is reported
// as the element type; two or more form a union.
func (p *ContainerProfile) ComputeInferredType() Type {
	t := Type{Name: "Array", Reason: "container usage"}
	switch {
	case p.IsArray && p.IsDictionary:
		t.Name, t.Reason = "Variant", "assigned both array and dictionary"
	case p.IsDictionary:
		t.Name = "Dictionary"
	}
	switch len(p.ElementTypes) {
	case 0:
		t.Confidence, t.Reason = Unknown, "no element observations"
	case 1:
		t.Confidence = Low
		t.ElementType = p.ElementTypes[0]
		t.Union = Union{Types: []string{p.ElementTypes[0]}}
	default:
		t.Confidence = Low
		t.Union = Union{Types: slices.Clone(p.ElementTypes), IsUnion: true}
	}
	switch len(p.KeyTypes) {
	case 0:
	case 1:
		t.KeyType = p.KeyTypes[0]
		t.KeyUnion = Union{Types: []string{p.KeyTypes[0]}}
	default:
		t.KeyUnion = Union{Types: slices.Clone(p.KeyTypes), IsUnion: true}
	}
	return t
}

// merge overlays the profile's element information on the declared type.
func (p *ContainerProfile) merge(t Type) Type {
	c := p.ComputeInferredType()
	if p.IsArray && p.IsDictionary {
		return Type{Name: "Variant", Confidence: Low, Reason: c.Reason, Union: c.Union, KeyUnion: c.KeyUnion}
	}
	if t.Name == "" {
		t.Name = c.Name
	}
	if c.Confidence == Unknown {
		return t
	}
	t.ElementType, t.KeyType = c.ElementType, c.KeyType
	t.Union, t.KeyUnion = c.Union, c.KeyUnion
	t.Reason = "container usage"
	return t
}

func (p *ContainerProfile) observe(list *[]string, typ string) {
	if typ != "" && !slices.Contains(*list, typ) {
		*list = append(*list, typ)
	}
}

// Profile returns the container profile of variable in class, or nil.
// The top-level class may be named by its type name or by "".
func (e *Engine) Profile(class, variable string) *ContainerProfile {
	if class == "" {
		class = e.selfType
	}
	return e.profiles[class][variable]
}

// Profiles returns every container profile sorted by class and variable.
func (e *Engine) Profiles() []*ContainerProfile {
	var out []*ContainerProfile
	for _, byVar := range e.profiles {
		for _, p := range byVar {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].Variable < out[j].Variable
	})
	return out
}

type profiler struct {
	e        *Engine
	class    *symbols.Scope
	tracked  map[*symbols.Symbol]*ContainerProfile
	excluded map[*symbols.Symbol]bool
	literal  map[*symbols.Symbol]bool
	// index writes are classified once the container's shape is known.
	indexKeys map[*symbols.Symbol][]string
}

// BuildProfiles scans every class of e's file for class-level variables
// without element types that are used as containers.
func BuildProfiles(e *Engine) map[string]map[string]*ContainerProfile {
	out := make(map[string]map[string]*ContainerProfile)
	var visit func(s *symbols.Scope)
	visit = func(s *symbols.Scope) {
		name := s.ClassName
		if s == e.table.Root {
			name = e.selfType
		}
		if byVar := profileClass(e, s, name); len(byVar) > 0 {
			out[name] = byVar
		}
		for _, c := range s.Children {
			if c.Kind == symbols.ScopeClass {
				visit(c)
			}
		}
	}
	visit(e.table.Root)
	return out
}

// bareContainer reports whether an annotation names a container without
// element types.
func bareContainer(typeName string) bool {
	return typeName == "Array" || typeName == "Dictionary"
}

func profileClass(e *Engine, s *symbols.Scope, className string) map[string]*ContainerProfile {
	pr := &profiler{
		e:         e,
		class:     s,
		tracked:   make(map[*symbols.Symbol]*ContainerProfile),
		excluded:  make(map[*symbols.Symbol]bool),
		literal:   make(map[*symbols.Symbol]bool),
		indexKeys: make(map[*symbols.Symbol][]string),
	}
	for _, sym := range s.Symbols() {
		if sym.Kind == symbols.Variable && (sym.TypeName == "" || bareContainer(sym.TypeName)) {
			pr.tracked[sym] = &ContainerProfile{Class: className, Variable: sym.Name, Symbol: sym}
		}
	}
	if len(pr.tracked) == 0 {
		return nil
	}
	tree := e.tree
	for sym := range pr.tracked {
		if n := tree.Node(sym.Decl); n != nil && n.Value.Valid() {
			pr.assign(sym, sym.Decl, n.Value)
		}
	}
	root := s.Node
	tree.Walk(root, func(id ast.NodeID) bool {
		n := tree.Node(id)
		switch n.Kind {
		case ast.KindClass:
			return id == root
		case ast.KindAssign:
			pr.assignment(id, n)
		case ast.KindCall:
			pr.mutation(id, n)
		}
		return true
	})

	out := make(map[string]*ContainerProfile)
	for sym, p := range pr.tracked {
		if pr.excluded[sym] || !pr.literal[sym] {
			continue
		}
		if p.IsDictionary {
			for _, k := range pr.indexKeys[sym] {
				p.observe(&p.KeyTypes, k)
			}
		}
		p.IsUnion = len(p.ElementTypes) > 1
		out[sym.Name] = p
	}
	return out
}

// target returns the tracked variable that id names: a bare identifier
// resolving to the class member, or self.name.
func (pr *profiler) target(id ast.NodeID) *symbols.Symbol {
	tree := pr.e.tree
	n := tree.Node(id)
	if n == nil {
		return nil
	}
	var sym *symbols.Symbol
	switch n.Kind {
	case ast.KindIdent:
		sym = pr.e.table.Lookup(n.Name.Text, n.Span.Start)
	case ast.KindMember:
		if tree.Kind(n.Left) == ast.KindSelf {
			sym = pr.class.Local(n.Name.Text)
		}
	}
	if sym == nil || pr.tracked[sym] == nil {
		return nil
	}
	return sym
}

func (pr *profiler) assignment(id ast.NodeID, n *ast.Node) {
	if sym := pr.target(n.Left); sym != nil {
		switch n.Text {
		case "=":
			pr.assign(sym, id, n.Right)
		case "+=":
			if pr.e.tree.Kind(n.Right) == ast.KindArray {
				pr.elements(sym, id, pr.e.tree.Nodes[n.Right].Children)
			}
		}
		return
	}
	left := pr.e.tree.Node(n.Left)
	if left == nil || left.Kind != ast.KindIndex || n.Text != "=" {
		return
	}
	sym := pr.target(left.Left)
	if sym == nil {
		return
	}
	p := pr.tracked[sym]
	p.Sites = append(p.Sites, id)
	if t := pr.typeOf(left.Right); t != "" {
		pr.indexKeys[sym] = append(pr.indexKeys[sym], t)
	}
	p.observe(&p.ElementTypes, pr.typeOf(n.Right))
}

// assign records a plain assignment. Anything but a literal array or
// dictionary removes the variable from tracking.
func (pr *profiler) assign(sym *symbols.Symbol, site, value ast.NodeID) {
	p := pr.tracked[sym]
	n := pr.e.tree.Node(value)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindArray:
		p.IsArray = true
		pr.literal[sym] = true
		pr.elements(sym, site, n.Children)
	case ast.KindDict:
		p.IsDictionary = true
		pr.literal[sym] = true
		p.Sites = append(p.Sites, site)
		for _, pair := range n.Children {
			if pn := pr.e.tree.Node(pair); pn != nil {
				p.observe(&p.KeyTypes, pr.typeOf(pn.Left))
				p.observe(&p.ElementTypes, pr.typeOf(pn.Right))
			}
		}
	default:
		pr.excluded[sym] = true
	}
}

func (pr *profiler) elements(sym *symbols.Symbol, site ast.NodeID, ids []ast.NodeID) {
	p := pr.tracked[sym]
	p.Sites = append(p.Sites, site)
	for _, el := range ids {
		p.observe(&p.ElementTypes, pr.typeOf(el))
	}
}

func (pr *profiler) mutation(id ast.NodeID, n *ast.Node) {
	tree := pr.e.tree
	callee := tree.Node(n.Left)
	if callee == nil || callee.Kind != ast.KindMember {
		return
	}
	sym := pr.target(callee.Left)
	if sym == nil {
		return
	}
	arg := func(i int) ast.NodeID {
		if i < len(n.Children) {
			return n.Children[i]
		}
		return ast.NoNode
	}
	p := pr.tracked[sym]
	switch callee.Name.Text {
	case "append", "push_back", "push_front":
		p.Sites = append(p.Sites, id)
		p.observe(&p.ElementTypes, pr.typeOf(arg(0)))
	case "insert":
		p.Sites = append(p.Sites, id)
		p.observe(&p.ElementTypes, pr.typeOf(arg(1)))
	case "append_array":
		a := tree.Node(arg(0))
		if a == nil {
			return
		}
		if a.Kind == ast.KindArray {
			pr.elements(sym, id, a.Children)
			return
		}
		p.Sites = append(p.Sites, id)
		t := pr.e.InferExpr(arg(0))
		if el := t.EffectiveElementType(); el != "" && el != "Variant" && t.Known() {
			p.observe(&p.ElementTypes, el)
		}
	}
}

func (pr *profiler) typeOf(id ast.NodeID) string {
	if !id.Valid() {
		return ""
	}
	t := pr.e.InferExpr(id)
	if !t.Known() || t.IsClass {
		return ""
	}
	return t.Name
}
