// Package symbols builds per-file symbol tables with lexical scopes.
package symbols

import "github.com/jward/gdlens/internal/ast"

// Kind classifies a declared symbol.
type Kind uint8

const (
	Variable Kind = iota
	Constant
	Parameter
	Method
	Signal
	Class
	Enum
	EnumValue
	Iterator
	Property
	MatchCaseBinding
)

var kindNames = [...]string{
	Variable:         "variable",
	Constant:         "constant",
	Parameter:        "parameter",
	Method:           "method",
	Signal:           "signal",
	Class:            "class",
	Enum:             "enum",
	EnumValue:        "enum_value",
	Iterator:         "iterator",
	Property:         "property",
	MatchCaseBinding: "match_binding",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Symbol is a declared name. Symbols are created once while building a
// Table and never mutated afterwards; callers compare them by pointer.
type Symbol struct {
	Name string
	Kind Kind
	// Decl is the declaring node (Var, Func, Param, For, PatternBind, ...).
	Decl ast.NodeID
	// NameSpan is the range of the declared identifier.
	NameSpan ast.Span
	// TypeName is the explicit static type, empty when undeclared. For
	// methods it is the declared return type.
	TypeName string
	IsStatic bool
	// DeclaringType names the class that owns a class member.
	DeclaringType string
	IsInherited   bool
	Scope         *Scope
	File          string
}

// Pos returns the start of the declared identifier.
func (s *Symbol) Pos() ast.Pos { return s.NameSpan.Start }

// IsClassMember reports whether the symbol is declared at class level.
func (s *Symbol) IsClassMember() bool {
	return s.Scope != nil && s.Scope.Kind == ScopeClass
}

// IsLocal reports whether the symbol's identity is scoped to a method,
// loop or match case.
func (s *Symbol) IsLocal() bool { return !s.IsClassMember() }

// ScopeKind classifies scopes.
type ScopeKind uint8

const (
	ScopeClass ScopeKind = iota
	ScopeMethod
	ScopeLambda
	ScopeBlock
	ScopeLoop
	ScopeMatchCase
)

// Scope is a lexical region holding declarations.
type Scope struct {
	Kind     ScopeKind
	Node     ast.NodeID
	Span     ast.Span
	Parent   *Scope
	Children []*Scope
	// ClassName is set on class scopes.
	ClassName string

	symbols map[string]*Symbol
	order   []*Symbol
}

func newScope(kind ScopeKind, node ast.NodeID, span ast.Span, parent *Scope) *Scope {
	s := &Scope{Kind: kind, Node: node, Span: span, Parent: parent, symbols: make(map[string]*Symbol)}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Symbols returns the scope's declarations in source order.
func (s *Scope) Symbols() []*Symbol { return s.order }

// Local returns the symbol declared directly in this scope.
func (s *Scope) Local(name string) *Symbol { return s.symbols[name] }

// Class returns the nearest enclosing class scope, or s itself.
func (s *Scope) Class() *Scope {
	for c := s; c != nil; c = c.Parent {
		if c.Kind == ScopeClass {
			return c
		}
	}
	return nil
}

// Method returns the nearest enclosing method or lambda scope.
func (s *Scope) Method() *Scope {
	for c := s; c != nil; c = c.Parent {
		switch c.Kind {
		case ScopeMethod, ScopeLambda:
			return c
		case ScopeClass:
			return nil
		}
	}
	return nil
}

func (s *Scope) declare(sym *Symbol) {
	sym.Scope = s
	if _, dup := s.symbols[sym.Name]; !dup {
		s.symbols[sym.Name] = sym
	}
	s.order = append(s.order, sym)
}
