package infer

import (
	"strings"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/runtime"
	"github.com/jward/gdlens/internal/symbols"
)

func (e *Engine) expr(id ast.NodeID, n *ast.Node, st *state) Type {
	switch n.Kind {
	case ast.KindLiteral:
		return literal(n)
	case ast.KindArray:
		t := high("Array", "array literal")
		if el, ok := e.agree(n.Children, st); ok {
			t.ElementType = el
		}
		return t
	case ast.KindDict:
		t := high("Dictionary", "dictionary literal")
		var keys, vals []ast.NodeID
		for _, p := range n.Children {
			if pn := e.tree.Node(p); pn != nil {
				keys = append(keys, pn.Left)
				vals = append(vals, pn.Right)
			}
		}
		if k, ok := e.agree(keys, st); ok {
			t.KeyType = k
		}
		if v, ok := e.agree(vals, st); ok {
			t.ElementType = v
		}
		return t
	case ast.KindIdent:
		return e.ident(id, n, st)
	case ast.KindSelf:
		return high(e.classAt(id), "self")
	case ast.KindSuper:
		return high(e.BaseOf(e.classAt(id)), "super")
	case ast.KindMember:
		return e.member(id, n, st)
	case ast.KindCall:
		return e.call(id, n, st)
	case ast.KindIndex:
		return e.index(n, st)
	case ast.KindBinary:
		return e.binary(n, st)
	case ast.KindUnary:
		switch n.Text {
		case "not", "!":
			return high("bool", "logical operator")
		case "~":
			return high("int", "bitwise operator")
		}
		t := e.infer(n.Left, st)
		t.Reason = "unary " + n.Text
		return t
	case ast.KindTernary:
		a, b := e.infer(n.Left, st), e.infer(n.Right, st)
		if a.Known() && b.Known() && a.Name == b.Name {
			a.Confidence = minConfidence(a.Confidence, b.Confidence)
			a.Reason = "conditional"
			return a
		}
		return unknown("conditional branches differ")
	case ast.KindIs:
		return high("bool", "type test")
	case ast.KindAs:
		t := fromAnnotation(e.tree.String(n.Type))
		t.Reason = "cast"
		return t
	case ast.KindAwait:
		if e.tree.Kind(n.Left) == ast.KindCall {
			return e.infer(n.Left, st)
		}
		return unknown("awaited signal")
	case ast.KindLambda:
		return high("Callable", "lambda")
	case ast.KindGetNode:
		return e.nodeTypeOf(NodePath(n.Text))
	}
	return unknown("unsupported expression " + n.Kind.String())
}

func literal(n *ast.Node) Type {
	switch n.Lit {
	case ast.LitInt:
		return high("int", "literal")
	case ast.LitFloat:
		return high("float", "literal")
	case ast.LitString:
		return high("String", "literal")
	case ast.LitStringName:
		return high("StringName", "literal")
	case ast.LitNodePath:
		return high("NodePath", "literal")
	case ast.LitBool:
		return high("bool", "literal")
	}
	return unknown("null literal")
}

// agree returns the type every expression in ids infers to.
func (e *Engine) agree(ids []ast.NodeID, st *state) (string, bool) {
	name := ""
	for _, id := range ids {
		t := e.infer(id, st)
		if !t.Known() {
			return "", false
		}
		if name == "" {
			name = t.Name
		} else if name != t.Name {
			return "", false
		}
	}
	return name, name != ""
}

func (e *Engine) ident(id ast.NodeID, n *ast.Node, st *state) Type {
	name := n.Name.Text
	if sym := e.table.Lookup(name, n.Span.Start); sym != nil {
		return e.decl(sym, st)
	}
	if m, ok := e.lookupMember(e.BaseOf(e.classAt(id)), name, st); ok {
		switch m.kind {
		case runtime.MemberMethod:
			return high("Callable", "inherited method")
		case runtime.MemberSignal:
			return high("Signal", "inherited signal")
		}
		return m.typ
	}
	if t, ok := e.provider.GetGlobalClass(name); ok {
		return high(t, "global "+name)
	}
	if e.isType(name) {
		return Type{Name: name, Confidence: High, Reason: "type reference", IsClass: true}
	}
	if fn, ok := e.provider.GetGlobalFunction(name); ok {
		if strings.ToUpper(name) == name {
			return providerType(fn)
		}
		return high("Callable", "global function")
	}
	return unknown("unresolved identifier " + name)
}

func (e *Engine) enumValue(enum, name string) *symbols.Symbol {
	for _, sym := range e.table.ByName(name) {
		if sym.Kind == symbols.EnumValue && sym.TypeName == enum {
			return sym
		}
	}
	return nil
}

func (e *Engine) isType(name string) bool {
	return runtime.IsValueType(name) || e.provider.IsKnownType(name) || e.table.InnerClass(name) != nil
}

func (e *Engine) member(id ast.NodeID, n *ast.Node, st *state) Type {
	name := n.Name.Text
	var recv Type
	if e.tree.Kind(n.Left) == ast.KindSuper {
		recv = high(e.BaseOf(e.classAt(id)), "super")
	} else {
		recv = e.infer(n.Left, st)
	}
	if !recv.Known() {
		return unknown("unknown receiver for ." + name)
	}
	if recv.IsClass {
		if sym := e.enumValue(recv.Name, name); sym != nil {
			return high(sym.TypeName, "enum value")
		}
	}
	m, ok := e.lookupMember(recv.Name, name, st)
	if !ok {
		return unknown("no member " + name + " on " + recv.Name)
	}
	switch m.kind {
	case runtime.MemberMethod:
		return high("Callable", "method reference")
	case runtime.MemberSignal:
		return high("Signal", "signal")
	}
	t := m.typ
	t.Confidence = minConfidence(t.Confidence, recv.Confidence)
	return t
}

func (e *Engine) call(id ast.NodeID, n *ast.Node, st *state) Type {
	callee := e.tree.Node(n.Left)
	if callee == nil {
		return unknown("missing callee")
	}
	switch callee.Kind {
	case ast.KindIdent:
		return e.callIdent(id, callee, n, st)
	case ast.KindSuper:
		fn := e.tree.Enclosing(id, ast.KindFunc)
		if !fn.Valid() {
			return unknown("super call outside method")
		}
		m, ok := e.lookupMember(e.BaseOf(e.classAt(id)), e.tree.Nodes[fn].Name.Text, st)
		if !ok {
			return unknown("no base method")
		}
		return m.typ
	case ast.KindMember:
		return e.callMember(id, callee, n, st)
	}
	return unknown("dynamic call")
}

func (e *Engine) callIdent(id ast.NodeID, callee, call *ast.Node, st *state) Type {
	name := callee.Name.Text
	if sym := e.table.Lookup(name, callee.Span.Start); sym != nil {
		if sym.Kind == symbols.Method {
			return e.returnType(sym.Decl, sym.TypeName, st)
		}
		return unknown("call of non-method " + name)
	}
	switch name {
	case "preload", "load":
		if path, ok := e.stringArg(call, 0); ok {
			return e.resource(path)
		}
		return Type{Name: "Resource", Confidence: Low, Reason: "dynamic load"}
	case "get_node", "get_node_or_null":
		if path, ok := e.stringArg(call, 0); ok {
			return e.nodeTypeOf(path)
		}
	}
	if runtime.IsValueType(name) {
		return high(name, "constructor")
	}
	if m, ok := e.lookupMember(e.BaseOf(e.classAt(id)), name, st); ok && m.kind == runtime.MemberMethod {
		return m.typ
	}
	if fn, ok := e.provider.GetGlobalFunction(name); ok {
		return providerType(fn)
	}
	return unknown("unresolved function " + name)
}

func (e *Engine) resource(path string) Type {
	if e.scriptType != nil && strings.HasSuffix(path, ".gd") {
		if t, ok := e.scriptType(path); ok {
			return Type{Name: t, Confidence: High, Reason: "preloaded " + path, IsClass: true}
		}
	}
	switch {
	case strings.HasSuffix(path, ".tscn"), strings.HasSuffix(path, ".scn"):
		return high("PackedScene", "preloaded scene")
	case strings.HasSuffix(path, ".gd"):
		return high("Script", "preloaded script")
	}
	return Type{Name: "Resource", Confidence: Low, Reason: "preloaded resource"}
}

func (e *Engine) stringArg(call *ast.Node, i int) (string, bool) {
	if i >= len(call.Children) {
		return "", false
	}
	a := e.tree.Node(call.Children[i])
	if a == nil || a.Kind != ast.KindLiteral {
		return "", false
	}
	switch a.Lit {
	case ast.LitString, ast.LitStringName, ast.LitNodePath:
		return ast.Unquote(strings.TrimLeft(a.Text, "&^")), true
	}
	return "", false
}

func (e *Engine) callMember(id ast.NodeID, callee, call *ast.Node, st *state) Type {
	name := callee.Name.Text
	var recv Type
	if e.tree.Kind(callee.Left) == ast.KindSuper {
		recv = high(e.BaseOf(e.classAt(id)), "super")
	} else {
		recv = e.infer(callee.Left, st)
	}
	if !recv.Known() {
		return unknown("unknown receiver for ." + name + "()")
	}
	if name == "new" && recv.IsClass {
		return high(recv.Name, "constructor")
	}
	if t, ok := e.containerCall(recv, name, call, st); ok {
		return t
	}
	if name == "get_node" || name == "get_node_or_null" {
		if path, ok := e.stringArg(call, 0); ok {
			return e.nodeTypeOf(path)
		}
	}
	m, ok := e.lookupMember(recv.Name, name, st)
	if !ok {
		return unknown("no method " + name + " on " + recv.Name)
	}
	if m.kind != runtime.MemberMethod {
		return unknown("call of non-method " + name)
	}
	t := m.typ
	t.Confidence = minConfidence(t.Confidence, recv.Confidence)
	return t
}

// containerCall types the Array and Dictionary methods whose result
// depends on the element type.
func (e *Engine) containerCall(recv Type, name string, call *ast.Node, st *state) (Type, bool) {
	elem := recv.EffectiveElementType()
	elemType := func() Type {
		if elem == "" || elem == "Variant" {
			return unknown("untyped container element")
		}
		t := fromAnnotation(elem)
		t.Confidence, t.Reason = recv.Confidence, "container element"
		return t
	}
	switch {
	case recv.IsArray():
		switch name {
		case "map":
			if len(call.Children) == 0 {
				return high("Array", "map"), true
			}
			ret := e.callableReturn(call.Children[0], st)
			t := high("Array", "mapped array")
			if ret.Known() {
				t.ElementType = ret.Name
				t.Confidence = minConfidence(recv.Confidence, ret.Confidence)
				t.Reason = "mapped through " + e.tree.String(call.Children[0])
			}
			return t, true
		case "filter", "duplicate", "slice":
			return recv, true
		case "front", "back", "pop_back", "pop_front", "pop_at", "pick_random", "get", "max", "min":
			return elemType(), true
		case "size", "count", "find", "rfind", "bsearch":
			return high("int", "array method"), true
		case "has", "is_empty", "all", "any":
			return high("bool", "array method"), true
		}
	case recv.IsDictionary():
		switch name {
		case "keys":
			t := high("Array", "dictionary keys")
			t.ElementType = recv.EffectiveKeyType()
			return t, true
		case "values":
			t := high("Array", "dictionary values")
			t.ElementType = recv.EffectiveElementType()
			return t, true
		case "get", "get_or_add":
			return elemType(), true
		case "duplicate", "merged":
			return recv, true
		case "has", "has_all", "is_empty", "erase":
			return high("bool", "dictionary method"), true
		case "size":
			return high("int", "dictionary method"), true
		}
	}
	return Type{}, false
}

// callableReturn returns the return type of a method reference, a bound
// member reference or a lambda.
func (e *Engine) callableReturn(id ast.NodeID, st *state) Type {
	n := e.tree.Node(id)
	if n == nil {
		return unknown("missing callable")
	}
	switch n.Kind {
	case ast.KindIdent:
		if sym := e.table.Lookup(n.Name.Text, n.Span.Start); sym != nil {
			if sym.Kind == symbols.Method {
				return e.returnType(sym.Decl, sym.TypeName, st)
			}
			return unknown("callable variable")
		}
		if m, ok := e.lookupMember(e.BaseOf(e.classAt(id)), n.Name.Text, st); ok && m.kind == runtime.MemberMethod {
			return m.typ
		}
	case ast.KindMember:
		recv := e.infer(n.Left, st)
		if !recv.Known() {
			return unknown("unknown receiver")
		}
		if m, ok := e.lookupMember(recv.Name, n.Name.Text, st); ok && m.kind == runtime.MemberMethod {
			return m.typ
		}
	case ast.KindLambda:
		return e.returnType(id, "", st)
	}
	return unknown("unresolved callable")
}

func (e *Engine) index(n *ast.Node, st *state) Type {
	recv := e.infer(n.Left, st)
	if !recv.Known() {
		return unknown("unknown indexed value")
	}
	switch {
	case recv.Name == "String" || recv.Name == "StringName":
		return high("String", "string index")
	case strings.HasPrefix(recv.Name, "Vector") && !strings.HasSuffix(recv.Name, "i"):
		return high("float", "vector component")
	case strings.HasPrefix(recv.Name, "Vector"):
		return high("int", "vector component")
	case recv.IsArray(), recv.IsDictionary():
		el := recv.EffectiveElementType()
		if el == "" {
			return unknown("untyped container element")
		}
		if el == "Variant" {
			return unknown("mixed container element types")
		}
		t := fromAnnotation(el)
		t.Confidence, t.Reason = recv.Confidence, "container element"
		return t
	}
	return unknown("not indexable")
}

func (e *Engine) binary(n *ast.Node, st *state) Type {
	switch n.Text {
	case "==", "!=", "<", ">", "<=", ">=", "and", "or", "&&", "||", "in", "not in":
		return high("bool", "comparison")
	}
	l, r := e.infer(n.Left, st), e.infer(n.Right, st)
	if !l.Known() {
		return unknown("unknown operand")
	}
	conf := l.Confidence
	if r.Known() {
		conf = minConfidence(l.Confidence, r.Confidence)
	}
	t := Type{Confidence: conf, Reason: "operator " + n.Text}
	switch {
	case l.Name == "int" && r.Name == "int":
		t.Name = "int"
	case numeric(l.Name) && numeric(r.Name):
		t.Name = "float"
	case l.Name == "String" && (n.Text == "+" || n.Text == "%"):
		t.Name = "String"
	case l.IsArray() && n.Text == "+":
		return l
	case numeric(l.Name) && r.Known():
		t.Name = r.Name
	case !r.Known() && numeric(l.Name):
		return unknown("unknown operand")
	default:
		t.Name = l.Name
	}
	return t
}

func numeric(name string) bool { return name == "int" || name == "float" }

// elementOf returns the type iterating over t yields.
func elementOf(t Type) Type {
	if !t.Known() {
		return unknown("unknown iterable")
	}
	switch {
	case t.Name == "int" || t.Name == "float":
		return Type{Name: "int", Confidence: t.Confidence, Reason: "range iteration"}
	case t.Name == "String" || t.Name == "StringName":
		return Type{Name: "String", Confidence: t.Confidence, Reason: "string iteration"}
	case t.IsDictionary():
		k := t.EffectiveKeyType()
		if k == "" {
			return unknown("untyped dictionary key")
		}
		out := fromAnnotation(k)
		out.Confidence, out.Reason = t.Confidence, "dictionary key"
		return out
	case t.IsArray():
		el := t.EffectiveElementType()
		switch el {
		case "":
			return unknown("untyped array element")
		case "Variant":
			return unknown("mixed array element types")
		}
		out := fromAnnotation(el)
		out.Confidence, out.Reason = t.Confidence, "array element"
		return out
	}
	return unknown("not iterable")
}
