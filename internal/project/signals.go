package project

import (
	"sort"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/scene"
	"github.com/jward/gdlens/internal/semantic"
)

// AnyClass matches every callback class in GetSignalsCallingMethod.
const AnyClass = "*"

// Connection is a signal wired to a callback method, either by a
// connect call in a script or by a [connection] entry in a scene. Line
// and Column are 0-based; scene connections are reported at column 0.
type Connection struct {
	SourcePath    string
	Line          int
	Column        int
	SignalName    string
	Method        string
	CallbackClass string
	Confidence    semantic.Confidence

	IsSceneConnection bool
}

// SignalRegistry indexes every connection in the project by callback
// method.
type SignalRegistry struct {
	all      []Connection
	byMethod map[string][]Connection
}

func newSignalRegistry(p *Project, scenes []*scene.Scene) *SignalRegistry {
	r := &SignalRegistry{byMethod: make(map[string][]Connection)}
	for _, m := range p.Models() {
		r.scanScript(m)
	}
	for _, s := range scenes {
		r.scanScene(p, s)
	}
	sort.SliceStable(r.all, func(i, j int) bool {
		a, b := r.all[i], r.all[j]
		if a.SourcePath != b.SourcePath {
			return a.SourcePath < b.SourcePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	for _, c := range r.all {
		r.byMethod[c.Method] = append(r.byMethod[c.Method], c)
	}
	return r
}

// GetSignalsCallingMethod returns the connections whose callback is
// method on className. AnyClass matches every class, including
// callbacks whose class could not be resolved.
func (r *SignalRegistry) GetSignalsCallingMethod(className, method string) []Connection {
	var out []Connection
	for _, c := range r.byMethod[method] {
		if className == AnyClass || c.CallbackClass == className {
			out = append(out, c)
		}
	}
	return out
}

// Connections returns every connection ordered by source position.
func (r *SignalRegistry) Connections() []Connection { return r.all }

func (r *SignalRegistry) scanScene(p *Project, s *scene.Scene) {
	for _, c := range s.Connections {
		conn := Connection{
			SourcePath:        s.Path,
			Line:              c.Line - 1,
			SignalName:        c.Signal,
			Method:            c.Method,
			Confidence:        semantic.Potential,
			IsSceneConnection: true,
		}
		if t, ok := p.Scenes.NodeType(s.Path, c.To); ok {
			conn.CallbackClass = t
			if n := s.NodeByPath(c.To); n != nil && n.Script != "" {
				conn.Confidence = semantic.Strict
			}
		}
		r.all = append(r.all, conn)
	}
}

// scanScript records connect calls:
//
//	sig.connect(cb)            obj.sig.connect(cb)
//	connect("sig", cb)         obj.connect("sig", cb)
//	connect("sig", target, "method")
//
// where cb is a method name, obj.method, cb.bind(...) or
// Callable(obj, "method").
func (r *SignalRegistry) scanScript(m *semantic.Model) {
	tree := m.Tree
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		n := tree.Node(id)
		if n.Kind != ast.KindCall {
			return true
		}
		callee := tree.Node(n.Left)
		if callee == nil || callee.Name.Text != "connect" {
			return true
		}
		args := n.Children
		var signal string
		switch {
		case len(args) > 1 && isString(tree, args[0]):
			if callee.Kind != ast.KindIdent && callee.Kind != ast.KindMember {
				return true
			}
			signal, args = ast.Unquote(tree.Nodes[args[0]].Text), args[1:]
		case callee.Kind == ast.KindMember && len(args) > 0:
			recv := tree.Node(callee.Left)
			if recv == nil || (recv.Kind != ast.KindIdent && recv.Kind != ast.KindMember) {
				return true
			}
			signal = recv.Name.Text
		default:
			return true
		}
		if conn, ok := callback(m, args); ok {
			conn.SignalName = signal
			r.all = append(r.all, conn)
		}
		return true
	})
}

// callback resolves the callable argument(s) of a connect call.
func callback(m *semantic.Model, args []ast.NodeID) (Connection, bool) {
	tree := m.Tree
	n := tree.Node(args[0])
	if n == nil {
		return Connection{}, false
	}
	if len(args) > 1 && isString(tree, args[1]) {
		return named(m, args[0], args[1])
	}
	switch n.Kind {
	case ast.KindIdent:
		return at(m, n.Name, m.ClassAt(args[0]), semantic.Strict), true
	case ast.KindMember:
		class, conf := receiverClass(m, n.Left)
		return at(m, n.Name, class, conf), true
	case ast.KindCall:
		callee := tree.Node(n.Left)
		if callee == nil {
			return Connection{}, false
		}
		switch {
		case callee.Kind == ast.KindMember && (callee.Name.Text == "bind" || callee.Name.Text == "unbind"):
			return callback(m, []ast.NodeID{callee.Left})
		case callee.Kind == ast.KindIdent && callee.Name.Text == "Callable" && len(n.Children) == 2 &&
			isString(tree, n.Children[1]):
			return named(m, n.Children[0], n.Children[1])
		}
	}
	return Connection{}, false
}

// named builds a connection to the method named by a string literal on
// target.
func named(m *semantic.Model, target, name ast.NodeID) (Connection, bool) {
	lit := m.Tree.Node(name)
	class, conf := receiverClass(m, target)
	tok := ast.Token{Text: ast.Unquote(lit.Text), Span: lit.Span}
	return at(m, tok, class, conf), tok.Text != ""
}

func at(m *semantic.Model, tok ast.Token, class string, conf semantic.Confidence) Connection {
	return Connection{
		SourcePath:    m.Path,
		Line:          tok.Span.Start.Line,
		Column:        tok.Span.Start.Col,
		Method:        tok.Text,
		CallbackClass: class,
		Confidence:    conf,
	}
}

func receiverClass(m *semantic.Model, id ast.NodeID) (string, semantic.Confidence) {
	if m.Tree.Kind(id) == ast.KindSelf {
		return m.ClassAt(id), semantic.Strict
	}
	t := m.InferExpressionType(id)
	switch {
	case !t.Known():
		return "", semantic.Potential
	case t.Confidence == infer.High:
		return t.Name, semantic.Strict
	}
	return t.Name, semantic.Potential
}

func isString(tree *ast.Tree, id ast.NodeID) bool {
	n := tree.Node(id)
	return n != nil && n.Kind == ast.KindLiteral && (n.Lit == ast.LitString || n.Lit == ast.LitStringName)
}
