// Package ast defines the arena-allocated syntax tree for GDScript sources.
//
// Nodes live in a single slice owned by a Tree and are addressed by NodeID.
// Parent links are indices into the same slice, so the tree has no ownership
// cycles and can be shared read-only between goroutines once built.
package ast

import "fmt"

// Pos is a 0-based line/column position.
type Pos struct {
	Line int
	Col  int
}

// Before reports whether p comes strictly before q.
func (p Pos) Before(q Pos) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Pos
	End   Pos
}

// Contains reports whether p falls inside the span. The end position is
// inclusive so that a cursor placed right after an identifier still hits it.
func (s Span) Contains(p Pos) bool {
	return !p.Before(s.Start) && !s.End.Before(p)
}

// Token is an identifier or keyword occurrence with its exact source range.
type Token struct {
	Text string
	Span Span
}

// Valid reports whether the token carries text.
func (t Token) Valid() bool { return t.Text != "" }

// NodeID addresses a node inside its Tree.
type NodeID int32

// NoNode marks an empty slot.
const NoNode NodeID = -1

// Valid reports whether id refers to a node.
func (id NodeID) Valid() bool { return id >= 0 }

// LitKind classifies literal nodes.
type LitKind uint8

const (
	LitNone LitKind = iota
	LitInt
	LitFloat
	LitString
	LitStringName
	LitNodePath
	LitBool
	LitNull
)

// Flags carries declaration modifiers.
type Flags uint16

const (
	FlagStatic Flags = 1 << iota
	FlagExport
	FlagOnready
	// FlagInferred marks `var x := value` declarations.
	FlagInferred
	// FlagLuaKey marks dictionary keys written as `{key = value}`.
	FlagLuaKey
	FlagAccessors
)

// Node is a single syntax node. Which slots are populated depends on Kind;
// unused slots hold NoNode.
//
//	Var/Const/Param   Name, Type, Value (initializer / default)
//	Func/Lambda       Name, Children (params), Type (return), Body
//	Class             Name, Children (members, Extends first if present)
//	Signal            Name, Children (params)
//	Enum              Name (may be empty), Children (EnumValue)
//	For               Name (iterator), Type, Value (iterable), Body
//	If                Value (condition), Body, Else (If or Block)
//	While             Value, Body
//	Match             Value (subject), Children (MatchBranch)
//	MatchBranch       Children (patterns), Value (guard), Body
//	Assign            Left (target), Right (value), Text (operator)
//	Member            Left (receiver), Name (member)
//	Call              Left (callee), Children (arguments)
//	Index             Left (receiver), Right (key)
//	Binary            Left, Right, Text (operator)
//	Unary             Left, Text (operator)
//	Ternary           Left (then), Value (condition), Right (else)
//	Is/As             Left, Type
//	Await             Left
//	TypeRef           Name (dotted type name), Children (type arguments)
type Node struct {
	Kind     Kind
	Span     Span
	Parent   NodeID
	Name     Token
	Text     string
	Lit      LitKind
	Flags    Flags
	Left     NodeID
	Right    NodeID
	Type     NodeID
	Value    NodeID
	Body     NodeID
	Else     NodeID
	Children []NodeID
}

// Has reports whether all of the given flags are set.
func (n *Node) Has(f Flags) bool { return n.Flags&f == f }

// Error is a recoverable parse error attached to a tree.
type Error struct {
	Pos Pos
	Msg string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

// Tree owns every node of one source file.
type Tree struct {
	Path   string
	Nodes  []Node
	Root   NodeID
	Errors []Error
}

// NewTree returns an empty tree for path.
func NewTree(path string) *Tree {
	return &Tree{Path: path, Root: NoNode}
}

// Add appends n with all empty slots normalised to NoNode and returns its id.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.Nodes))
	n.Parent = NoNode
	t.Nodes = append(t.Nodes, n)
	return id
}

// Empty returns a node of kind k with every slot set to NoNode.
func Empty(k Kind, span Span) Node {
	return Node{
		Kind:   k,
		Span:   span,
		Parent: NoNode,
		Left:   NoNode,
		Right:  NoNode,
		Type:   NoNode,
		Value:  NoNode,
		Body:   NoNode,
		Else:   NoNode,
	}
}

// Node returns the node for id, or nil when id is out of range.
func (t *Tree) Node(id NodeID) *Node {
	if t == nil || id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

// Kind returns the kind of id, or KindInvalid.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Parent returns the parent of id, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNode
}

// ChildrenOf returns the populated child slots of id in source order.
func (t *Tree) ChildrenOf(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	add := func(ids ...NodeID) {
		for _, c := range ids {
			if c.Valid() {
				out = append(out, c)
			}
		}
	}
	switch n.Kind {
	case KindVar, KindConst, KindParam:
		add(n.Type, n.Value)
		add(n.Children...)
	case KindFunc, KindLambda:
		add(n.Children...)
		add(n.Type, n.Body)
	case KindFor:
		add(n.Type, n.Value, n.Body)
	case KindIf:
		add(n.Value, n.Body, n.Else)
	case KindWhile:
		add(n.Value, n.Body)
	case KindMatch:
		add(n.Value)
		add(n.Children...)
	case KindMatchBranch:
		add(n.Children...)
		add(n.Value, n.Body)
	case KindTernary:
		add(n.Left, n.Value, n.Right)
	case KindIs, KindAs:
		add(n.Left, n.Type)
	case KindCall:
		add(n.Left)
		add(n.Children...)
	default:
		add(n.Left, n.Right, n.Type, n.Value)
		add(n.Children...)
		add(n.Body, n.Else)
	}
	return out
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if t.Node(id) == nil {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range t.ChildrenOf(id) {
		t.Walk(c, fn)
	}
}

// LinkParents sets every node's Parent from the child slots reachable from
// the root. The parser calls it once after building the tree.
func (t *Tree) LinkParents() {
	t.Walk(t.Root, func(id NodeID) bool {
		for _, c := range t.ChildrenOf(id) {
			t.Nodes[c].Parent = id
		}
		return true
	})
}

// Enclosing walks the parent chain of id (excluding id itself) and returns
// the first ancestor whose kind is one of kinds.
func (t *Tree) Enclosing(id NodeID, kinds ...Kind) NodeID {
	for p := t.Parent(id); p.Valid(); p = t.Parent(p) {
		k := t.Nodes[p].Kind
		for _, want := range kinds {
			if k == want {
				return p
			}
		}
	}
	return NoNode
}

// NodeAt returns the innermost node whose span contains pos.
func (t *Tree) NodeAt(pos Pos) NodeID {
	best := NoNode
	t.Walk(t.Root, func(id NodeID) bool {
		n := &t.Nodes[id]
		if n.Kind != KindFile && !n.Span.Contains(pos) {
			return false
		}
		best = id
		return true
	})
	return best
}
