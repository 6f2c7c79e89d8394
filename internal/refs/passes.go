package refs

import (
	"sort"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/project"
	"github.com/jward/gdlens/internal/semantic"
	"github.com/jward/gdlens/internal/symbols"
)

// query is the state of one CollectReferences call.
type query struct {
	c    *Collector
	m    *semantic.Model
	sym  *symbols.Symbol
	name string
	// class owns sym; root is the outermost script ancestor declaring the
	// same name. family holds root and every script type inheriting it.
	class  string
	root   string
	family map[string]bool
	acc    *accumulator
}

func (c *Collector) newQuery(m *semantic.Model, sym *symbols.Symbol) *query {
	q := &query{
		c:      c,
		m:      m,
		sym:    sym,
		name:   sym.Name,
		class:  m.ClassOf(sym),
		family: make(map[string]bool),
		acc:    newAccumulator(),
	}
	q.root = q.class
	// Inner classes are not visible to other files by type; their members
	// have no cross-file hierarchy.
	if sym.IsClassMember() && q.class == m.TypeName() {
		q.root = c.virtualRoot(q.class, q.name)
		q.family[q.root] = true
		for _, t := range c.project.Subtypes(q.root) {
			q.family[t] = true
		}
	}
	return q
}

func (q *query) project() *project.Project { return q.c.project }

// owns reports whether a receiver of type t dispatches to the target.
func (q *query) owns(t string) bool {
	return t == q.class || q.family[t] || (q.root != "" && q.project().IsSubtype(t, q.root))
}

// perFile adds the declaring file's own references.
func (q *query) perFile() {
	top := q.sym.IsClassMember() && q.class == q.m.TypeName()
	for _, ref := range q.m.GetReferencesTo(q.sym) {
		if top {
			q.markOverride(&ref, q.class)
		}
		q.acc.add(ref)
	}
	q.superCalls(q.m)
}

// overridden returns the nearest ancestor of t that declares the queried
// name: project scripts first, then the runtime provider.
func (q *query) overridden(t string) (string, bool) {
	p := q.project()
	chain := p.InheritanceChain(t)
	for i, anc := range chain {
		if i == 0 {
			continue
		}
		if path, ok := p.FileOf(anc); ok {
			if m := p.Model(path); m != nil && m.Table.ClassMember(q.name) != nil {
				return anc, true
			}
			continue
		}
		if mem, ok := p.Provider().GetMember(anc, q.name); ok {
			if mem.DeclaringType != "" {
				return mem.DeclaringType, true
			}
			return anc, true
		}
		// Engine lookups already walk the rest of the chain.
		return "", false
	}
	return "", false
}

// markOverride turns the declaration of the queried name in class t into
// an override when an ancestor of t declares it too.
func (q *query) markOverride(ref *semantic.Reference, t string) {
	if ref.Kind != semantic.Declaration {
		return
	}
	anc, ok := q.overridden(t)
	if !ok {
		return
	}
	ref.Kind, ref.IsOverride = semantic.Override, true
	ref.Reason = "overrides " + anc + "." + q.name
}

// hierarchy adds overrides and inherited uses in every other file of the
// family.
func (q *query) hierarchy() {
	p := q.project()
	for _, path := range p.Paths() {
		if path == q.m.Path {
			continue
		}
		m := p.Model(path)
		t := m.TypeName()
		if !q.family[t] {
			continue
		}
		if own := m.Table.ClassMember(q.name); own != nil {
			for _, ref := range m.GetReferencesTo(own) {
				ref.CallerType = t
				q.markOverride(&ref, t)
				q.acc.add(ref)
			}
		} else {
			q.inherited(m, t)
		}
		q.superCalls(m)
	}
}

// inherited adds uses of the member in a subclass that does not
// redeclare it.
func (q *query) inherited(m *semantic.Model, t string) {
	for _, occ := range m.Occurrences(q.name) {
		if occ.Kind == semantic.Declaration {
			continue
		}
		switch {
		case !occ.Member:
			if m.Table.Lookup(q.name, occ.Pos()) != nil {
				continue
			}
		case m.Tree.Kind(occ.Receiver) != ast.KindSelf:
			continue
		}
		ref := semantic.NewReference(m.Path, occ.Node, occ.Token, occ.Kind, semantic.Strict)
		ref.IsInherited = true
		ref.CallerType = t
		ref.Reason = "inherited from " + q.root
		q.acc.add(ref)
	}
}

// superCalls adds super.name() calls and bare super() calls made from a
// method of the same name.
func (q *query) superCalls(m *semantic.Model) {
	if q.sym.Kind != symbols.Method {
		return
	}
	for _, occ := range m.Occurrences(q.name) {
		if occ.Member && m.Tree.Kind(occ.Receiver) == ast.KindSuper {
			q.acc.add(semantic.NewReference(m.Path, occ.Node, occ.Token, semantic.SuperCall, semantic.Strict))
		}
	}
	tree := m.Tree
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		n := tree.Node(id)
		if n.Kind != ast.KindCall || tree.Kind(n.Left) != ast.KindSuper {
			return true
		}
		fn := tree.Node(tree.Enclosing(id, ast.KindFunc))
		if fn == nil || fn.Name.Text != q.name {
			return true
		}
		sup := tree.Node(n.Left)
		tok := ast.Token{Text: "super", Span: sup.Span}
		q.acc.add(semantic.NewReference(m.Path, n.Left, tok, semantic.SuperCall, semantic.Strict))
		return true
	})
}

// duckTyped adds member accesses in other files whose receiver may hold
// the target's class.
func (q *query) duckTyped() {
	for _, m := range q.project().Models() {
		if m.Path == q.m.Path {
			continue
		}
		for _, occ := range m.Occurrences(q.name) {
			if !occ.Member {
				continue
			}
			switch m.Tree.Kind(occ.Receiver) {
			case ast.KindSelf, ast.KindSuper:
				continue
			}
			conf, reason, ok := m.MemberMatch(occ, q.root)
			if !ok || (conf != semantic.Strict && !q.c.duck) {
				continue
			}
			ref := semantic.NewReference(m.Path, occ.Node, occ.Token, occ.Kind, conf)
			ref.Reason = reason
			q.acc.add(ref)
		}
	}
}

// signals adds connections whose callback is the target method.
func (q *query) signals() {
	reg := q.project().Signals
	classes := []string{q.class}
	for t := range q.family {
		if t != q.class {
			classes = append(classes, t)
		}
	}
	sort.Strings(classes[1:])

	var conns []project.Connection
	for _, t := range classes {
		conns = append(conns, reg.GetSignalsCallingMethod(t, q.name)...)
	}
	if q.c.duck {
		for _, conn := range reg.GetSignalsCallingMethod(project.AnyClass, q.name) {
			if conn.CallbackClass == "" {
				conns = append(conns, conn)
			}
		}
	}
	for _, conn := range conns {
		kind := semantic.SignalConnection
		if conn.IsSceneConnection {
			kind = semantic.SceneSignalConnection
		}
		ref := semantic.Reference{
			File:          conn.SourcePath,
			Node:          ast.NoNode,
			Token:         ast.Token{Text: q.name},
			Line:          conn.Line,
			Column:        conn.Column,
			Kind:          kind,
			Confidence:    conn.Confidence,
			CallerType:    conn.CallbackClass,
			SignalName:    conn.SignalName,
			IsSceneSignal: conn.IsSceneConnection,
		}
		if conn.CallbackClass == "" {
			ref.Reason = "callback target type unknown"
		}
		q.acc.add(ref)
		// Scene connections sit on their .tscn line, which holds no code
		// references. If they are ever mapped onto script lines they need
		// dropPlain as well.
		if !conn.IsSceneConnection {
			q.acc.dropPlain(keyOf(ref))
		}
	}
}

type contractKind uint8

const (
	contractMethod contractKind = iota
	contractSignal
	contractProperty
)

// contractFuncs maps reflective Object methods to the kind of member
// their first argument names.
var contractFuncs = map[string]contractKind{
	"has_method":    contractMethod,
	"call":          contractMethod,
	"call_deferred": contractMethod,
	"callv":         contractMethod,
	"rpc":           contractMethod,
	"emit_signal":   contractSignal,
	"has_signal":    contractSignal,
	"connect":       contractSignal,
	"disconnect":    contractSignal,
	"is_connected":  contractSignal,
	"get":           contractProperty,
	"set":           contractProperty,
	"set_deferred":  contractProperty,
}

func (k contractKind) matches(s symbols.Kind) bool {
	switch k {
	case contractMethod:
		return s == symbols.Method
	case contractSignal:
		return s == symbols.Signal
	}
	return s == symbols.Variable || s == symbols.Property || s == symbols.Constant
}

// contractStrings adds string literals naming the target in reflective
// calls: obj.call("name"), has_method("name"), Callable(obj, "name"),
// emit_signal("name"), get("name") and the like.
func (q *query) contractStrings() {
	for _, m := range q.project().Models() {
		tree := m.Tree
		tree.Walk(tree.Root, func(id ast.NodeID) bool {
			n := tree.Node(id)
			if n.Kind != ast.KindCall || len(n.Children) == 0 {
				return true
			}
			callee := tree.Node(n.Left)
			if callee == nil {
				return true
			}
			recv, lit, kind := ast.NoNode, n.Children[0], contractMethod
			switch {
			case callee.Kind == ast.KindIdent && callee.Name.Text == "Callable":
				if len(n.Children) != 2 {
					return true
				}
				recv, lit = n.Children[0], n.Children[1]
			case callee.Kind == ast.KindIdent || callee.Kind == ast.KindMember:
				k, ok := contractFuncs[callee.Name.Text]
				if !ok {
					return true
				}
				kind = k
				if callee.Kind == ast.KindMember {
					recv = callee.Left
				}
			default:
				return true
			}
			if !kind.matches(q.sym.Kind) {
				return true
			}
			ln := tree.Node(lit)
			if ln == nil || ln.Kind != ast.KindLiteral || (ln.Lit != ast.LitString && ln.Lit != ast.LitStringName) ||
				ast.Unquote(ln.Text) != q.name {
				return true
			}
			conf, reason, ok := q.receiver(m, id, recv)
			if !ok {
				return true
			}
			ref := semantic.NewReference(m.Path, lit, ast.Token{Text: ln.Text, Span: ln.Span}, semantic.ContractString, conf)
			ref.Reason = reason
			q.acc.add(ref)
			return true
		})
	}
}

// receiver grades the object a string-named call is made on. recv is
// NoNode for calls on self.
func (q *query) receiver(m *semantic.Model, at, recv ast.NodeID) (semantic.Confidence, string, bool) {
	if !recv.Valid() || m.Tree.Kind(recv) == ast.KindSelf {
		if q.owns(m.ClassAt(at)) {
			return semantic.Strict, "", true
		}
		return semantic.NameMatch, "", false
	}
	t := m.InferExpressionType(recv)
	switch {
	case !t.Known():
		if !q.c.duck {
			return semantic.NameMatch, "", false
		}
		return semantic.Potential, "string-named member on untyped receiver", true
	case q.owns(t.Name):
		if t.Confidence == infer.High {
			return semantic.Strict, "", true
		}
		return semantic.Potential, "receiver inferred as " + t.Name + " with low confidence", true
	case q.project().IsSubtype(q.root, t.Name) && q.c.duck:
		return semantic.Potential, "receiver typed as base " + t.Name, true
	}
	return semantic.NameMatch, "", false
}

// typeUsage adds annotations, is/as tests and extends clauses naming the
// target class in m.
func (q *query) typeUsage(m *semantic.Model) {
	for _, occ := range m.TypeOccurrences(q.name) {
		q.acc.add(semantic.NewReference(m.Path, occ.Node, occ.Token, semantic.TypeUsage, semantic.Strict))
	}
}
