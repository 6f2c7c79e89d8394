package infer

import (
	"strings"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/runtime"
	"github.com/jward/gdlens/internal/symbols"
)

// Option configures an Engine.
type Option func(*Engine)

// WithProvider sets the provider used for engine, autoload and
// sibling-script types. Defaults to the engine built-ins.
func WithProvider(p runtime.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithSelfType names the type the file declares. Defaults to the
// class_name, or the file path for anonymous scripts.
func WithSelfType(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.selfType = name
		}
	}
}

// WithScriptTypes resolves res:// paths (extends "...", preload) to the
// type the script declares.
func WithScriptTypes(fn runtime.TypeResolver) Option {
	return func(e *Engine) { e.scriptType = fn }
}

// WithNodeTypes resolves $Path, %Unique and get_node("Path") against the
// scene the script is attached to.
func WithNodeTypes(fn func(path string) (string, bool)) Option {
	return func(e *Engine) { e.nodeType = fn }
}

// Engine infers types within one file. Results are cached per node while
// the owning model is being analysed; after Freeze the cache is read-only
// and the Engine is safe for concurrent use.
type Engine struct {
	table      *symbols.Table
	tree       *ast.Tree
	provider   runtime.Provider
	selfType   string
	scriptType runtime.TypeResolver
	nodeType   func(string) (string, bool)

	profiles map[string]map[string]*ContainerProfile
	cache    map[ast.NodeID]Type
	decls    map[*symbols.Symbol]Type
	caching  bool
	frozen   bool
}

// New returns an Engine for table and builds its container profiles.
// It panics if table is nil.
func New(table *symbols.Table, opts ...Option) *Engine {
	if table == nil {
		panic("infer: nil symbol table")
	}
	e := &Engine{
		table:    table,
		tree:     table.Tree,
		provider: runtime.Builtins(),
		selfType: table.ClassName(),
		cache:    make(map[ast.NodeID]Type),
		decls:    make(map[*symbols.Symbol]Type),
	}
	if e.selfType == "" {
		e.selfType = table.Tree.Path
	}
	for _, opt := range opts {
		opt(e)
	}
	// Profiles are computed without caching so that no cached entry
	// depends on a half-built profile set.
	e.profiles = BuildProfiles(e)
	e.caching = true
	return e
}

// SelfType returns the type name of the file's top-level class.
func (e *Engine) SelfType() string { return e.selfType }

// Provider returns the provider chain the engine resolves through.
func (e *Engine) Provider() runtime.Provider { return e.provider }

// Table returns the symbol table the engine infers over.
func (e *Engine) Table() *symbols.Table { return e.table }

// Freeze stops cache writes. Call it once analysis of the project is
// complete.
func (e *Engine) Freeze() { e.frozen = true }

type state struct {
	nodes map[ast.NodeID]bool
	syms  map[*symbols.Symbol]bool
}

func newState() *state {
	return &state{nodes: make(map[ast.NodeID]bool), syms: make(map[*symbols.Symbol]bool)}
}

func (e *Engine) writable() bool { return e.caching && !e.frozen }

// InferExpr returns the type of the expression id.
func (e *Engine) InferExpr(id ast.NodeID) Type {
	return e.infer(id, newState())
}

// InferDecl returns the type of the value sym names. For methods this is
// Callable; use ReturnType for the value a call produces.
func (e *Engine) InferDecl(sym *symbols.Symbol) Type {
	if sym == nil {
		return unknown("no symbol")
	}
	return e.decl(sym, newState())
}

// ReturnType returns the declared return type of method sym, or the type
// every return statement agrees on.
func (e *Engine) ReturnType(sym *symbols.Symbol) Type {
	if sym == nil || sym.Kind != symbols.Method {
		return unknown("not a method")
	}
	return e.returnType(sym.Decl, sym.TypeName, newState())
}

// IteratorElement returns the type a for loop's iterable yields.
func (e *Engine) IteratorElement(forID ast.NodeID) Type {
	n := e.tree.Node(forID)
	if n == nil || n.Kind != ast.KindFor {
		return unknown("not a for loop")
	}
	st := newState()
	return elementOf(e.infer(n.Value, st))
}

func (e *Engine) infer(id ast.NodeID, st *state) Type {
	n := e.tree.Node(id)
	if n == nil {
		return unknown("missing expression")
	}
	if t, ok := e.cache[id]; ok {
		return t
	}
	if st.nodes[id] {
		return unknown("recursive inference")
	}
	st.nodes[id] = true
	t := e.expr(id, n, st)
	delete(st.nodes, id)
	if e.writable() {
		e.cache[id] = t
	}
	return t
}

func (e *Engine) decl(sym *symbols.Symbol, st *state) Type {
	if t, ok := e.decls[sym]; ok {
		return t
	}
	if st.syms[sym] {
		return unknown("recursive declaration")
	}
	st.syms[sym] = true
	t := e.computeDecl(sym, st)
	delete(st.syms, sym)
	if e.writable() {
		e.decls[sym] = t
	}
	return t
}

func (e *Engine) computeDecl(sym *symbols.Symbol, st *state) Type {
	switch sym.Kind {
	case symbols.Method:
		return high("Callable", "method")
	case symbols.Signal:
		return high("Signal", "signal")
	case symbols.Class, symbols.Enum:
		return Type{Name: sym.Name, Confidence: High, Reason: "type reference", IsClass: true}
	case symbols.EnumValue:
		return high(sym.TypeName, "enum value")
	case symbols.MatchCaseBinding:
		return unknown("match binding")
	case symbols.Iterator:
		if sym.TypeName != "" {
			return fromAnnotation(sym.TypeName)
		}
		n := e.tree.Node(sym.Decl)
		return elementOf(e.infer(n.Value, st))
	}

	var profile *ContainerProfile
	if sym.IsClassMember() {
		profile = e.Profile(e.ownerOf(sym), sym.Name)
	}
	if sym.TypeName != "" {
		t := fromAnnotation(sym.TypeName)
		if profile != nil && !(profile.IsArray && profile.IsDictionary) {
			t = profile.merge(t)
		}
		return t
	}
	n := e.tree.Node(sym.Decl)
	if n == nil || !n.Value.Valid() {
		if profile != nil {
			return profile.merge(Type{Confidence: Low, Reason: "assigned in method"})
		}
		if sym.Kind == symbols.Parameter {
			return unknown("untyped parameter")
		}
		return unknown("no initializer")
	}
	t := e.infer(n.Value, st)
	if t.Confidence == Unknown {
		return t
	}
	switch {
	case sym.Kind == symbols.Parameter:
		t.Confidence, t.Reason = Low, "default value"
	case sym.Kind == symbols.Constant:
		t.Reason = "constant initializer"
	case n.Has(ast.FlagInferred):
		t.Reason = "inferred from initializer"
	default:
		t.Confidence, t.Reason = Low, "initializer of untyped variable"
	}
	if profile != nil {
		t = profile.merge(t)
	}
	return t
}

// ownerOf returns the class that declares a class member.
func (e *Engine) ownerOf(sym *symbols.Symbol) string {
	if sym.DeclaringType == "" || sym.Scope == e.table.Root {
		return e.selfType
	}
	return sym.DeclaringType
}

// returnType infers the value produced by calling the Func or Lambda node.
func (e *Engine) returnType(id ast.NodeID, annotation string, st *state) Type {
	if annotation != "" {
		return fromAnnotation(annotation)
	}
	n := e.tree.Node(id)
	if n == nil {
		return unknown("missing method")
	}
	if n.Kind == ast.KindLambda && n.Type.Valid() {
		return fromAnnotation(e.tree.String(n.Type))
	}
	var found *Type
	agree := true
	e.tree.Walk(n.Body, func(c ast.NodeID) bool {
		rn := e.tree.Node(c)
		switch rn.Kind {
		case ast.KindLambda:
			return false
		case ast.KindReturn:
			if !rn.Value.Valid() {
				agree = false
				return false
			}
			t := e.infer(rn.Value, st)
			if !t.Known() {
				agree = false
			} else if found == nil {
				found = &t
			} else if found.Name != t.Name {
				agree = false
			}
			return false
		}
		return true
	})
	if found == nil || !agree {
		return unknown("untyped return")
	}
	t := *found
	t.Confidence, t.Reason = Low, "inferred from return statements"
	return t
}

// classAt returns the name of the class enclosing id.
func (e *Engine) classAt(id ast.NodeID) string {
	if c := e.tree.Enclosing(id, ast.KindClass); c.Valid() {
		return e.tree.Nodes[c].Name.Text
	}
	return e.selfType
}

// classScope returns the scope of a class declared in this file.
func (e *Engine) classScope(name string) *symbols.Scope {
	if name == e.selfType {
		return e.table.Root
	}
	return e.table.InnerClass(name)
}

// BaseOf returns the base type of a class declared in this file.
func (e *Engine) BaseOf(class string) string {
	s := e.classScope(class)
	if s == nil {
		return ""
	}
	return e.scopeBase(s)
}

func (e *Engine) scopeBase(s *symbols.Scope) string {
	var ext *ast.Node
	if s == e.table.Root {
		ext = e.tree.Node(e.table.ExtendsNode())
	} else if cn := e.tree.Node(s.Node); cn != nil && len(cn.Children) > 0 {
		if first := e.tree.Node(cn.Children[0]); first != nil && first.Kind == ast.KindExtends {
			ext = first
		}
	}
	if ext == nil {
		return runtime.ImplicitBase
	}
	if ext.Text != "" {
		if e.scriptType != nil {
			if t, ok := e.scriptType(ext.Text); ok {
				return t
			}
		}
		return ext.Text
	}
	return ext.Name.Text
}

type member struct {
	kind runtime.MemberKind
	typ  Type
	sym  *symbols.Symbol
}

// lookupMember finds name on typeName, walking this file's classes first
// and then the provider chain.
func (e *Engine) lookupMember(typeName, name string, st *state) (member, bool) {
	seen := make(map[string]bool)
	for t := typeName; t != "" && !seen[t]; {
		seen[t] = true
		s := e.classScope(t)
		if s == nil {
			break
		}
		if sym := s.Local(name); sym != nil {
			return e.memberOf(sym, st), true
		}
		t = e.scopeBase(s)
		typeName = t
	}
	m, ok := e.provider.GetMember(typeName, name)
	if !ok {
		return member{}, false
	}
	return member{kind: m.Kind, typ: providerType(m)}, true
}

func (e *Engine) memberOf(sym *symbols.Symbol, st *state) member {
	switch sym.Kind {
	case symbols.Method:
		return member{kind: runtime.MemberMethod, typ: e.returnType(sym.Decl, sym.TypeName, st), sym: sym}
	case symbols.Signal:
		return member{kind: runtime.MemberSignal, typ: high("Signal", "signal"), sym: sym}
	case symbols.Constant, symbols.EnumValue, symbols.Enum, symbols.Class:
		return member{kind: runtime.MemberConstant, typ: e.decl(sym, st), sym: sym}
	}
	return member{kind: runtime.MemberProperty, typ: e.decl(sym, st), sym: sym}
}

func providerType(m runtime.Member) Type {
	if m.Type == "" || m.Type == "Variant" {
		return unknown("untyped member " + m.DeclaringType + "." + m.Name)
	}
	t := fromAnnotation(m.Type)
	t.Reason = "member of " + m.DeclaringType
	return t
}

// NodePath normalises the text of a $Path or %Unique expression to a
// scene node path.
func NodePath(text string) string {
	text = strings.TrimPrefix(text, "$")
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') {
		return ast.Unquote(text)
	}
	return text
}

func (e *Engine) nodeTypeOf(path string) Type {
	if e.nodeType != nil {
		if t, ok := e.nodeType(path); ok {
			return high(t, "scene node")
		}
	}
	return Type{Name: "Node", Confidence: Low, Reason: "node path not resolved"}
}
