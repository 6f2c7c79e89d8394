// Package parser turns GDScript source into an ast.Tree.
//
// The parser is error tolerant: syntax errors are recorded on the tree and
// parsing resumes at the next statement, so a single malformed declaration
// never hides the rest of the file from analysis.
package parser

import (
	"fmt"

	"github.com/jward/gdlens/internal/ast"
)

// Parse parses src and returns the tree. It never returns nil.
func Parse(path string, src []byte) *ast.Tree {
	toks, lexErrs := lex(string(src))
	p := &parser{toks: toks, tree: ast.NewTree(path)}
	p.tree.Errors = append(p.tree.Errors, lexErrs...)
	p.tree.Root = p.file()
	p.tree.LinkParents()
	return p.tree
}

type parser struct {
	toks []token
	pos  int
	tree *ast.Tree

	// pending annotation flags for the next declaration.
	annot ast.Flags
}

// --- token helpers ---

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekN(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

// prevEnd returns the end of the last consumed token, ignoring layout
// tokens so that spans never run into the following line.
func (p *parser) prevEnd() ast.Pos {
	for i := p.pos - 1; i >= 0; i-- {
		switch p.toks[i].kind {
		case tNewline, tIndent, tDedent:
			continue
		}
		return p.toks[i].span.End
	}
	return ast.Pos{}
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tOp && t.text == text
}

func (p *parser) isKeyword(text string) bool {
	t := p.peek()
	return t.kind == tIdent && t.text == text
}

func (p *parser) acceptOp(text string) bool {
	if p.isOp(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) acceptKeyword(text string) bool {
	if p.isKeyword(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectOp(text string) bool {
	if p.acceptOp(text) {
		return true
	}
	p.errorf("expected %q, found %s", text, describe(p.peek()))
	return false
}

func (p *parser) expectIdent() (ast.Token, bool) {
	t := p.peek()
	if t.kind != tIdent {
		p.errorf("expected identifier, found %s", describe(t))
		return ast.Token{}, false
	}
	p.next()
	return ast.Token{Text: t.text, Span: t.span}, true
}

func (p *parser) errorf(format string, args ...any) {
	p.tree.Errors = append(p.tree.Errors, ast.Error{Pos: p.peek().span.Start, Msg: fmt.Sprintf(format, args...)})
}

// syncLine skips tokens up to and including the next NEWLINE, keeping
// indentation balanced.
func (p *parser) syncLine() {
	depth := 0
	for {
		t := p.peek()
		switch t.kind {
		case tEOF:
			return
		case tIndent:
			depth++
		case tDedent:
			if depth == 0 {
				return
			}
			depth--
		case tNewline:
			if depth == 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}

func (p *parser) endStatement() {
	if p.pos > 0 && p.toks[p.pos-1].kind == tDedent {
		// a block-bodied lambda already consumed the end of the statement
		return
	}
	switch p.peek().kind {
	case tNewline:
		p.next()
	case tEOF, tDedent:
	default:
		p.errorf("unexpected %s after statement", describe(p.peek()))
		p.syncLine()
	}
}

func describe(t token) string {
	switch t.kind {
	case tEOF:
		return "end of file"
	case tNewline:
		return "newline"
	case tIndent:
		return "indent"
	case tDedent:
		return "dedent"
	}
	return fmt.Sprintf("%q", t.text)
}

func (p *parser) add(n ast.Node) ast.NodeID { return p.tree.Add(n) }

func (p *parser) node(id ast.NodeID) *ast.Node { return p.tree.Node(id) }

func (p *parser) spanFrom(start ast.Pos) ast.Span {
	return ast.Span{Start: start, End: p.prevEnd()}
}

func tokenOf(t token) ast.Token { return ast.Token{Text: t.text, Span: t.span} }

// --- file and class bodies ---

func (p *parser) file() ast.NodeID {
	root := p.add(ast.Empty(ast.KindFile, ast.Span{}))
	var members []ast.NodeID
	for p.peek().kind != tEOF {
		start := p.pos
		switch p.peek().kind {
		case tNewline, tIndent, tDedent:
			p.next()
			continue
		}
		members = append(members, p.member()...)
		if p.pos == start {
			p.next()
		}
	}
	n := p.node(root)
	n.Children = members
	n.Span = ast.Span{End: p.peek().span.End}
	return root
}

// member parses one class-body member. It may return several nodes, e.g.
// for `class_name X extends Y`.
func (p *parser) member() []ast.NodeID {
	t := p.peek()
	if t.kind == tAnnotation {
		p.annotation()
		if p.peek().kind == tNewline {
			p.next()
		}
		return nil
	}
	if t.kind != tIdent {
		p.errorf("unexpected %s in class body", describe(t))
		p.syncLine()
		return nil
	}
	switch t.text {
	case "extends":
		id := p.extends()
		p.endStatement()
		return []ast.NodeID{id}
	case "class_name":
		start := p.next().span.Start
		name, _ := p.expectIdent()
		n := ast.Empty(ast.KindClassName, ast.Span{})
		n.Name = name
		n.Span = p.spanFrom(start)
		out := []ast.NodeID{p.add(n)}
		if p.isKeyword("extends") {
			out = append(out, p.extends())
		}
		p.endStatement()
		return out
	case "signal":
		return []ast.NodeID{p.signal()}
	case "const":
		id := p.varDecl(ast.KindConst, 0)
		return []ast.NodeID{id}
	case "var":
		id := p.varDecl(ast.KindVar, 0)
		return []ast.NodeID{id}
	case "static":
		p.next()
		switch {
		case p.isKeyword("func"):
			return []ast.NodeID{p.funcDecl(ast.FlagStatic)}
		case p.isKeyword("var"):
			return []ast.NodeID{p.varDecl(ast.KindVar, ast.FlagStatic)}
		}
		p.errorf("expected func or var after static")
		p.syncLine()
		return nil
	case "enum":
		id := p.enumDecl()
		p.endStatement()
		return []ast.NodeID{id}
	case "func":
		return []ast.NodeID{p.funcDecl(0)}
	case "class":
		return []ast.NodeID{p.classDecl()}
	case "pass":
		p.next()
		p.endStatement()
		return nil
	}
	p.errorf("unexpected %s in class body", describe(t))
	p.syncLine()
	return nil
}

func (p *parser) annotation() {
	t := p.next()
	switch t.text {
	case "export", "export_range", "export_enum", "export_file", "export_dir",
		"export_multiline", "export_node_path", "export_flags", "export_color_no_alpha",
		"export_placeholder", "export_exp_easing", "export_global_file", "export_global_dir",
		"export_storage", "export_custom":
		p.annot |= ast.FlagExport
	case "onready":
		p.annot |= ast.FlagOnready
	case "static_unload", "tool", "icon", "abstract":
	}
	if p.isOp("(") {
		p.next()
		depth := 1
		for depth > 0 && p.peek().kind != tEOF {
			switch {
			case p.isOp("("):
				depth++
			case p.isOp(")"):
				depth--
			}
			p.next()
		}
	}
}

func (p *parser) extends() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindExtends, ast.Span{})
	t := p.peek()
	switch t.kind {
	case tString:
		p.next()
		n.Text = ast.Unquote(t.text)
		n.Name = tokenOf(t)
	case tIdent:
		name := p.dottedName()
		n.Name = name
	default:
		p.errorf("expected class name or path after extends")
	}
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func (p *parser) dottedName() ast.Token {
	first := p.next()
	tok := tokenOf(first)
	for p.isOp(".") && p.peekN(1).kind == tIdent {
		p.next()
		part := p.next()
		tok.Text += "." + part.text
		tok.Span.End = part.span.End
	}
	return tok
}

func (p *parser) signal() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindSignal, ast.Span{})
	n.Name, _ = p.expectIdent()
	if p.acceptOp("(") {
		n.Children = p.params()
		p.expectOp(")")
	}
	n.Span = p.spanFrom(start)
	id := p.add(n)
	p.endStatement()
	return id
}

func (p *parser) varDecl(kind ast.Kind, flags ast.Flags) ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(kind, ast.Span{})
	n.Flags = flags | p.annot
	p.annot = 0
	n.Name, _ = p.expectIdent()
	switch {
	case p.acceptOp(":="):
		n.Flags |= ast.FlagInferred
		n.Value = p.expr()
	case p.isOp(":") && !p.accessorBlockFollows():
		p.next()
		n.Type = p.typeRef()
		if p.acceptOp("=") {
			n.Value = p.expr()
		}
	case p.acceptOp("="):
		n.Value = p.expr()
	}
	n.Span = p.spanFrom(start)
	if kind == ast.KindVar && p.isOp(":") {
		p.next()
		n.Flags |= ast.FlagAccessors
		n.Children = p.accessors()
		return p.add(n)
	}
	id := p.add(n)
	p.endStatement()
	return id
}

// accessorBlockFollows reports whether the ':' at the cursor introduces a
// property accessor block rather than a type annotation.
func (p *parser) accessorBlockFollows() bool {
	return p.isOp(":") && p.peekN(1).kind == tNewline && p.peekN(2).kind == tIndent
}

// accessors parses the `get:` / `set(value):` block of a property, or the
// inline `set = setter, get = getter` form.
func (p *parser) accessors() []ast.NodeID {
	var out []ast.NodeID
	if p.peek().kind != tNewline {
		for p.peek().kind == tIdent {
			out = append(out, p.accessorRef())
			if !p.acceptOp(",") {
				break
			}
		}
		p.endStatement()
		return out
	}
	p.next()
	if p.peek().kind != tIndent {
		p.errorf("expected indented accessor block")
		return out
	}
	p.next()
	for p.peek().kind != tDedent && p.peek().kind != tEOF {
		if p.peek().kind == tNewline {
			p.next()
			continue
		}
		t := p.peek()
		if t.kind != tIdent || (t.text != "get" && t.text != "set") {
			p.errorf("expected get or set, found %s", describe(t))
			p.syncLine()
			continue
		}
		if p.peekN(1).kind == tOp && p.peekN(1).text == "=" {
			out = append(out, p.accessorRef())
			p.acceptOp(",")
			if p.peek().kind == tNewline {
				p.next()
			}
			continue
		}
		p.next()
		fn := ast.Empty(ast.KindFunc, ast.Span{})
		fn.Name = tokenOf(t)
		if p.acceptOp("(") {
			fn.Children = p.params()
			p.expectOp(")")
		}
		p.expectOp(":")
		fn.Body = p.suite()
		fn.Span = p.spanFrom(t.span.Start)
		out = append(out, p.add(fn))
	}
	p.next()
	return out
}

// accessorRef parses `set = method_name` into an Assign node whose right
// side is the referenced method identifier.
func (p *parser) accessorRef() ast.NodeID {
	t := p.next()
	a := ast.Empty(ast.KindAssign, ast.Span{})
	lhs := ast.Empty(ast.KindIdent, t.span)
	lhs.Name = tokenOf(t)
	a.Left = p.add(lhs)
	a.Text = "="
	p.expectOp("=")
	a.Right = p.primary()
	a.Span = p.spanFrom(t.span.Start)
	return p.add(a)
}

func (p *parser) enumDecl() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindEnum, ast.Span{})
	if p.peek().kind == tIdent {
		n.Name = tokenOf(p.next())
	}
	p.expectOp("{")
	for !p.isOp("}") && p.peek().kind != tEOF {
		name, ok := p.expectIdent()
		if !ok {
			p.next()
			continue
		}
		v := ast.Empty(ast.KindEnumValue, name.Span)
		v.Name = name
		if p.acceptOp("=") {
			v.Value = p.expr()
		}
		v.Span = p.spanFrom(name.Span.Start)
		n.Children = append(n.Children, p.add(v))
		if !p.acceptOp(",") {
			break
		}
	}
	p.expectOp("}")
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func (p *parser) funcDecl(flags ast.Flags) ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindFunc, ast.Span{})
	n.Flags = flags | p.annot
	p.annot = 0
	n.Name, _ = p.expectIdent()
	p.expectOp("(")
	n.Children = p.params()
	p.expectOp(")")
	if p.acceptOp("->") {
		n.Type = p.typeRef()
	}
	p.expectOp(":")
	n.Body = p.suite()
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func (p *parser) params() []ast.NodeID {
	var out []ast.NodeID
	for p.peek().kind == tIdent {
		name := tokenOf(p.next())
		n := ast.Empty(ast.KindParam, name.Span)
		n.Name = name
		switch {
		case p.acceptOp(":="):
			n.Flags |= ast.FlagInferred
			n.Value = p.expr()
		case p.acceptOp(":"):
			n.Type = p.typeRef()
			if p.acceptOp("=") {
				n.Value = p.expr()
			}
		case p.acceptOp("="):
			n.Value = p.expr()
		}
		n.Span = p.spanFrom(name.Span.Start)
		out = append(out, p.add(n))
		if !p.acceptOp(",") {
			break
		}
	}
	return out
}

func (p *parser) typeRef() ast.NodeID {
	t := p.peek()
	if t.kind != tIdent {
		p.errorf("expected type, found %s", describe(t))
		return ast.NoNode
	}
	n := ast.Empty(ast.KindTypeRef, ast.Span{})
	n.Name = p.dottedName()
	if p.acceptOp("[") {
		for !p.isOp("]") && p.peek().kind != tEOF {
			arg := p.typeRef()
			if !arg.Valid() {
				break
			}
			n.Children = append(n.Children, arg)
			if !p.acceptOp(",") {
				break
			}
		}
		p.expectOp("]")
	}
	n.Span = p.spanFrom(t.span.Start)
	return p.add(n)
}

func (p *parser) classDecl() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindClass, ast.Span{})
	n.Name, _ = p.expectIdent()
	if p.isKeyword("extends") {
		n.Children = append(n.Children, p.extends())
	}
	p.expectOp(":")
	if p.peek().kind != tNewline {
		n.Children = append(n.Children, p.member()...)
		n.Span = p.spanFrom(start)
		return p.add(n)
	}
	p.next()
	if p.peek().kind == tIndent {
		p.next()
		for p.peek().kind != tDedent && p.peek().kind != tEOF {
			before := p.pos
			if p.peek().kind == tNewline {
				p.next()
				continue
			}
			n.Children = append(n.Children, p.member()...)
			if p.pos == before {
				p.next()
			}
		}
		p.next()
	}
	n.Span = p.spanFrom(start)
	return p.add(n)
}

// --- statements ---

// suite parses the body after a ':'. It is either an indented block or a
// single statement on the same line.
func (p *parser) suite() ast.NodeID {
	start := p.peek().span.Start
	b := ast.Empty(ast.KindBlock, ast.Span{})
	if p.peek().kind != tNewline {
		if s := p.simpleStatement(); s.Valid() {
			b.Children = append(b.Children, s)
		}
		b.Span = p.spanFrom(start)
		if p.peek().kind == tNewline {
			p.next()
		}
		return p.add(b)
	}
	p.next()
	if p.peek().kind != tIndent {
		p.errorf("expected indented block")
		b.Span = p.spanFrom(start)
		return p.add(b)
	}
	start = p.next().span.Start
	for p.peek().kind != tDedent && p.peek().kind != tEOF {
		before := p.pos
		if p.peek().kind == tNewline {
			p.next()
			continue
		}
		if s := p.statement(); s.Valid() {
			b.Children = append(b.Children, s)
		}
		if p.pos == before {
			p.next()
		}
	}
	b.Span = p.spanFrom(start)
	p.next()
	return p.add(b)
}

func (p *parser) statement() ast.NodeID {
	t := p.peek()
	if t.kind == tAnnotation {
		p.annotation()
		if p.peek().kind == tNewline {
			p.next()
		}
		return ast.NoNode
	}
	if t.kind == tIdent {
		switch t.text {
		case "var":
			return p.varDecl(ast.KindVar, 0)
		case "const":
			return p.varDecl(ast.KindConst, 0)
		case "if":
			return p.ifStmt()
		case "while":
			start := p.next().span.Start
			n := ast.Empty(ast.KindWhile, ast.Span{})
			n.Value = p.expr()
			p.expectOp(":")
			n.Body = p.suite()
			n.Span = p.spanFrom(start)
			return p.add(n)
		case "for":
			return p.forStmt()
		case "match":
			return p.matchStmt()
		}
	}
	id := p.simpleStatement()
	p.endStatement()
	return id
}

// simpleStatement parses statements that fit on one line and do not consume
// the trailing newline.
func (p *parser) simpleStatement() ast.NodeID {
	t := p.peek()
	start := t.span.Start
	if t.kind == tIdent {
		switch t.text {
		case "pass", "break", "continue", "breakpoint":
			p.next()
			kind := ast.KindPass
			switch t.text {
			case "break":
				kind = ast.KindBreak
			case "continue":
				kind = ast.KindContinue
			}
			n := ast.Empty(kind, t.span)
			n.Text = t.text
			return p.add(n)
		case "return":
			p.next()
			n := ast.Empty(ast.KindReturn, ast.Span{})
			if k := p.peek().kind; k != tNewline && k != tEOF && k != tDedent && !p.isOp(")") && !p.isOp(",") {
				n.Value = p.expr()
			}
			n.Span = p.spanFrom(start)
			return p.add(n)
		case "var":
			return p.inlineVar()
		}
	}
	lhs := p.expr()
	if !lhs.Valid() {
		return ast.NoNode
	}
	if op := p.peek(); op.kind == tOp && isAssignOp(op.text) {
		p.next()
		n := ast.Empty(ast.KindAssign, ast.Span{})
		n.Left = lhs
		n.Text = op.text
		n.Right = p.expr()
		n.Span = p.spanFrom(start)
		return p.add(n)
	}
	n := ast.Empty(ast.KindExprStmt, ast.Span{})
	n.Value = lhs
	n.Span = p.spanFrom(start)
	return p.add(n)
}

// inlineVar handles `var` inside a same-line suite, where the declaration
// must not consume the newline.
func (p *parser) inlineVar() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindVar, ast.Span{})
	n.Name, _ = p.expectIdent()
	switch {
	case p.acceptOp(":="):
		n.Flags |= ast.FlagInferred
		n.Value = p.expr()
	case p.acceptOp(":"):
		n.Type = p.typeRef()
		if p.acceptOp("=") {
			n.Value = p.expr()
		}
	case p.acceptOp("="):
		n.Value = p.expr()
	}
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func isAssignOp(s string) bool {
	switch s {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "&=", "|=", "^=", "<<=", ">>=":
		return true
	}
	return false
}

func (p *parser) ifStmt() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindIf, ast.Span{})
	n.Value = p.expr()
	p.expectOp(":")
	n.Body = p.suite()
	switch {
	case p.isKeyword("elif"):
		n.Else = p.ifStmt()
	case p.acceptKeyword("else"):
		p.expectOp(":")
		n.Else = p.suite()
	}
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func (p *parser) forStmt() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindFor, ast.Span{})
	n.Name, _ = p.expectIdent()
	if p.acceptOp(":") {
		n.Type = p.typeRef()
	}
	if !p.acceptKeyword("in") {
		p.errorf("expected in")
	}
	n.Value = p.expr()
	p.expectOp(":")
	n.Body = p.suite()
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func (p *parser) matchStmt() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindMatch, ast.Span{})
	n.Value = p.expr()
	p.expectOp(":")
	if p.peek().kind != tNewline {
		p.errorf("expected newline after match")
		n.Span = p.spanFrom(start)
		return p.add(n)
	}
	p.next()
	if p.peek().kind != tIndent {
		p.errorf("expected indented match body")
		n.Span = p.spanFrom(start)
		return p.add(n)
	}
	p.next()
	for p.peek().kind != tDedent && p.peek().kind != tEOF {
		before := p.pos
		if p.peek().kind == tNewline {
			p.next()
			continue
		}
		n.Children = append(n.Children, p.matchBranch())
		if p.pos == before {
			p.next()
		}
	}
	p.next()
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func (p *parser) matchBranch() ast.NodeID {
	start := p.peek().span.Start
	n := ast.Empty(ast.KindMatchBranch, ast.Span{})
	for {
		pat := p.pattern()
		if !pat.Valid() {
			break
		}
		n.Children = append(n.Children, pat)
		if !p.acceptOp(",") {
			break
		}
	}
	if p.acceptKeyword("when") {
		n.Value = p.expr()
	}
	p.expectOp(":")
	n.Body = p.suite()
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func (p *parser) pattern() ast.NodeID {
	t := p.peek()
	switch {
	case t.kind == tIdent && t.text == "var":
		p.next()
		name, _ := p.expectIdent()
		n := ast.Empty(ast.KindPatternBind, ast.Span{})
		n.Name = name
		n.Span = p.spanFrom(t.span.Start)
		return p.add(n)
	case p.isOp(".."):
		p.next()
		n := ast.Empty(ast.KindLiteral, t.span)
		n.Text = ".."
		return p.add(n)
	case p.isOp("["):
		p.next()
		n := ast.Empty(ast.KindArray, ast.Span{})
		for !p.isOp("]") && p.peek().kind != tEOF {
			el := p.pattern()
			if !el.Valid() {
				break
			}
			n.Children = append(n.Children, el)
			if !p.acceptOp(",") {
				break
			}
		}
		p.expectOp("]")
		n.Span = p.spanFrom(t.span.Start)
		return p.add(n)
	case p.isOp("{"):
		p.next()
		n := ast.Empty(ast.KindDict, ast.Span{})
		for !p.isOp("}") && p.peek().kind != tEOF {
			kstart := p.peek().span.Start
			key := p.pattern()
			if !key.Valid() {
				break
			}
			pair := ast.Empty(ast.KindPair, ast.Span{})
			pair.Left = key
			if p.acceptOp(":") {
				pair.Right = p.pattern()
			}
			pair.Span = p.spanFrom(kstart)
			n.Children = append(n.Children, p.add(pair))
			if !p.acceptOp(",") {
				break
			}
		}
		p.expectOp("}")
		n.Span = p.spanFrom(t.span.Start)
		return p.add(n)
	}
	return p.binary(precBitOr)
}
