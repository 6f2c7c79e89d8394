package ast

import "strings"

// String regenerates the surface text of the node. Expressions round-trip
// to equivalent source; statements and declarations render their header
// line only, which is what edit services splice back into a file.
func (t *Tree) String(id NodeID) string {
	var b strings.Builder
	t.print(&b, id)
	return b.String()
}

func (t *Tree) print(b *strings.Builder, id NodeID) {
	n := t.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case KindIdent, KindSelf, KindSuper:
		b.WriteString(n.Name.Text)
	case KindLiteral, KindGetNode:
		b.WriteString(n.Text)
	case KindArray:
		b.WriteByte('[')
		t.printList(b, n.Children)
		b.WriteByte(']')
	case KindDict:
		b.WriteByte('{')
		t.printList(b, n.Children)
		b.WriteByte('}')
	case KindPair:
		if k := t.Node(n.Left); k != nil && k.Has(FlagLuaKey) {
			b.WriteString(strings.Trim(k.Text, `"`))
			b.WriteString(" = ")
		} else {
			t.print(b, n.Left)
			b.WriteString(": ")
		}
		t.print(b, n.Right)
	case KindMember:
		t.print(b, n.Left)
		b.WriteByte('.')
		b.WriteString(n.Name.Text)
	case KindCall:
		t.print(b, n.Left)
		b.WriteByte('(')
		t.printList(b, n.Children)
		b.WriteByte(')')
	case KindIndex:
		t.print(b, n.Left)
		b.WriteByte('[')
		t.print(b, n.Right)
		b.WriteByte(']')
	case KindBinary:
		t.print(b, n.Left)
		b.WriteString(" " + n.Text + " ")
		t.print(b, n.Right)
	case KindUnary:
		b.WriteString(n.Text)
		if n.Text == "not" {
			b.WriteByte(' ')
		}
		t.print(b, n.Left)
	case KindTernary:
		t.print(b, n.Left)
		b.WriteString(" if ")
		t.print(b, n.Value)
		b.WriteString(" else ")
		t.print(b, n.Right)
	case KindIs:
		t.print(b, n.Left)
		b.WriteString(" " + n.Text + " ")
		t.print(b, n.Type)
	case KindAs:
		t.print(b, n.Left)
		b.WriteString(" as ")
		t.print(b, n.Type)
	case KindAwait:
		b.WriteString("await ")
		t.print(b, n.Left)
	case KindTypeRef:
		b.WriteString(n.Name.Text)
		if len(n.Children) > 0 {
			b.WriteByte('[')
			t.printList(b, n.Children)
			b.WriteByte(']')
		}
	case KindPatternBind:
		b.WriteString("var " + n.Name.Text)
	case KindLambda, KindFunc:
		b.WriteString("func")
		if n.Name.Valid() {
			b.WriteString(" " + n.Name.Text)
		}
		b.WriteByte('(')
		t.printList(b, n.Children)
		b.WriteByte(')')
		if n.Type.Valid() {
			b.WriteString(" -> ")
			t.print(b, n.Type)
		}
		b.WriteByte(':')
	case KindParam:
		b.WriteString(n.Name.Text)
		t.printTyped(b, n)
	case KindVar, KindConst:
		if n.Has(FlagStatic) {
			b.WriteString("static ")
		}
		if n.Kind == KindVar {
			b.WriteString("var ")
		} else {
			b.WriteString("const ")
		}
		b.WriteString(n.Name.Text)
		t.printTyped(b, n)
	case KindSignal:
		b.WriteString("signal " + n.Name.Text)
		if len(n.Children) > 0 {
			b.WriteByte('(')
			t.printList(b, n.Children)
			b.WriteByte(')')
		}
	case KindEnumValue:
		b.WriteString(n.Name.Text)
		if n.Value.Valid() {
			b.WriteString(" = ")
			t.print(b, n.Value)
		}
	case KindEnum:
		b.WriteString("enum ")
		if n.Name.Valid() {
			b.WriteString(n.Name.Text + " ")
		}
		b.WriteByte('{')
		t.printList(b, n.Children)
		b.WriteByte('}')
	case KindExtends:
		b.WriteString("extends ")
		if n.Text != "" {
			b.WriteString(n.Text)
		} else {
			b.WriteString(n.Name.Text)
		}
	case KindClassName:
		b.WriteString("class_name " + n.Name.Text)
	case KindClass:
		b.WriteString("class " + n.Name.Text + ":")
	case KindAssign:
		t.print(b, n.Left)
		b.WriteString(" " + n.Text + " ")
		t.print(b, n.Right)
	case KindExprStmt:
		t.print(b, n.Value)
	case KindReturn:
		b.WriteString("return")
		if n.Value.Valid() {
			b.WriteByte(' ')
			t.print(b, n.Value)
		}
	case KindFor:
		b.WriteString("for " + n.Name.Text)
		if n.Type.Valid() {
			b.WriteString(": ")
			t.print(b, n.Type)
		}
		b.WriteString(" in ")
		t.print(b, n.Value)
		b.WriteByte(':')
	case KindWhile:
		b.WriteString("while ")
		t.print(b, n.Value)
		b.WriteByte(':')
	case KindIf:
		b.WriteString("if ")
		t.print(b, n.Value)
		b.WriteByte(':')
	case KindMatch:
		b.WriteString("match ")
		t.print(b, n.Value)
		b.WriteByte(':')
	case KindMatchBranch:
		t.printList(b, n.Children)
		if n.Value.Valid() {
			b.WriteString(" when ")
			t.print(b, n.Value)
		}
		b.WriteByte(':')
	case KindPass, KindBreak, KindContinue, KindAnnotation:
		b.WriteString(n.Text)
	}
}

func (t *Tree) printTyped(b *strings.Builder, n *Node) {
	switch {
	case n.Type.Valid():
		b.WriteString(": ")
		t.print(b, n.Type)
		if n.Value.Valid() {
			b.WriteString(" = ")
		}
	case n.Has(FlagInferred):
		b.WriteString(" := ")
	case n.Value.Valid():
		b.WriteString(" = ")
	}
	t.print(b, n.Value)
}

func (t *Tree) printList(b *strings.Builder, ids []NodeID) {
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		t.print(b, id)
	}
}

// Unquote strips the prefix and quotes of a string literal's raw text.
// Escape sequences are kept verbatim; callers only compare identifiers and
// resource paths.
func Unquote(raw string) string {
	s := strings.TrimLeft(raw, "&^r$%")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
