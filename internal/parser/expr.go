package parser

import "github.com/jward/gdlens/internal/ast"

// Binary operator precedence levels, lowest first.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precIn
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precUnary
	precPower
)

func binaryPrec(t token) (int, string) {
	switch t.kind {
	case tIdent:
		switch t.text {
		case "or":
			return precOr, "or"
		case "and":
			return precAnd, "and"
		case "in":
			return precIn, "in"
		case "is", "as":
			return precCompare, t.text
		}
	case tOp:
		switch t.text {
		case "||":
			return precOr, "or"
		case "&&":
			return precAnd, "and"
		case "==", "!=", "<", ">", "<=", ">=":
			return precCompare, t.text
		case "|":
			return precBitOr, t.text
		case "^":
			return precBitXor, t.text
		case "&":
			return precBitAnd, t.text
		case "<<", ">>":
			return precShift, t.text
		case "+", "-":
			return precAdd, t.text
		case "*", "/", "%":
			return precMul, t.text
		case "**":
			return precPower, t.text
		}
	}
	return precNone, ""
}

// expr parses a full expression including the ternary form.
func (p *parser) expr() ast.NodeID {
	if p.isKeyword("func") {
		return p.lambda()
	}
	start := p.peek().span.Start
	e := p.binary(precOr)
	if !e.Valid() {
		return e
	}
	if p.isKeyword("if") {
		p.next()
		n := ast.Empty(ast.KindTernary, ast.Span{})
		n.Left = e
		n.Value = p.binary(precOr)
		if !p.acceptKeyword("else") {
			p.errorf("expected else in conditional expression")
		}
		n.Right = p.expr()
		n.Span = p.spanFrom(start)
		return p.add(n)
	}
	return e
}

func (p *parser) binary(minPrec int) ast.NodeID {
	start := p.peek().span.Start
	var left ast.NodeID
	switch {
	case minPrec <= precNot && (p.isKeyword("not") || p.isOp("!")):
		p.next()
		n := ast.Empty(ast.KindUnary, ast.Span{})
		n.Text = "not"
		n.Left = p.binary(precNot)
		n.Span = p.spanFrom(start)
		left = p.add(n)
	default:
		left = p.unary()
	}
	if !left.Valid() {
		return left
	}
	for {
		t := p.peek()
		prec, op := binaryPrec(t)
		negIn := false
		if t.kind == tIdent && t.text == "not" && p.peekN(1).kind == tIdent && p.peekN(1).text == "in" {
			prec, op, negIn = precIn, "not in", true
		}
		if prec == precNone || prec < minPrec {
			return left
		}
		p.next()
		if negIn {
			p.next()
		}
		switch op {
		case "is":
			n := ast.Empty(ast.KindIs, ast.Span{})
			n.Text = "is"
			if p.acceptKeyword("not") {
				n.Text = "is not"
			}
			n.Left = left
			n.Type = p.typeRef()
			n.Span = p.spanFrom(start)
			left = p.add(n)
			continue
		case "as":
			n := ast.Empty(ast.KindAs, ast.Span{})
			n.Left = left
			n.Type = p.typeRef()
			n.Span = p.spanFrom(start)
			left = p.add(n)
			continue
		}
		next := prec + 1
		if prec == precPower {
			next = prec
		}
		right := p.binary(next)
		n := ast.Empty(ast.KindBinary, ast.Span{})
		n.Left = left
		n.Right = right
		n.Text = op
		n.Span = p.spanFrom(start)
		left = p.add(n)
	}
}

func (p *parser) unary() ast.NodeID {
	t := p.peek()
	if t.kind == tOp && (t.text == "-" || t.text == "+" || t.text == "~") {
		p.next()
		n := ast.Empty(ast.KindUnary, ast.Span{})
		n.Text = t.text
		n.Left = p.binary(precUnary)
		n.Span = p.spanFrom(t.span.Start)
		return p.add(n)
	}
	if t.kind == tIdent && t.text == "await" {
		p.next()
		n := ast.Empty(ast.KindAwait, ast.Span{})
		n.Left = p.unary()
		n.Span = p.spanFrom(t.span.Start)
		return p.add(n)
	}
	return p.postfix(p.primary())
}

func (p *parser) postfix(e ast.NodeID) ast.NodeID {
	if !e.Valid() {
		return e
	}
	start := p.node(e).Span.Start
	for {
		switch {
		case p.isOp("."):
			p.next()
			name, ok := p.expectIdent()
			if !ok {
				return e
			}
			n := ast.Empty(ast.KindMember, ast.Span{})
			n.Left = e
			n.Name = name
			n.Span = p.spanFrom(start)
			e = p.add(n)
		case p.isOp("("):
			p.next()
			n := ast.Empty(ast.KindCall, ast.Span{})
			n.Left = e
			n.Children = p.exprList(")")
			p.expectOp(")")
			n.Span = p.spanFrom(start)
			e = p.add(n)
		case p.isOp("["):
			p.next()
			n := ast.Empty(ast.KindIndex, ast.Span{})
			n.Left = e
			n.Right = p.expr()
			p.expectOp("]")
			n.Span = p.spanFrom(start)
			e = p.add(n)
		default:
			return e
		}
	}
}

func (p *parser) exprList(closing string) []ast.NodeID {
	var out []ast.NodeID
	for !p.isOp(closing) && p.peek().kind != tEOF {
		e := p.expr()
		if !e.Valid() {
			break
		}
		out = append(out, e)
		if !p.acceptOp(",") {
			break
		}
	}
	return out
}

func (p *parser) primary() ast.NodeID {
	t := p.peek()
	switch t.kind {
	case tInt, tFloat, tString, tStringName, tNodePath:
		p.next()
		n := ast.Empty(ast.KindLiteral, t.span)
		n.Text = t.text
		switch t.kind {
		case tInt:
			n.Lit = ast.LitInt
		case tFloat:
			n.Lit = ast.LitFloat
		case tString:
			n.Lit = ast.LitString
		case tStringName:
			n.Lit = ast.LitStringName
		case tNodePath:
			n.Lit = ast.LitNodePath
		}
		return p.add(n)
	case tGetNode:
		p.next()
		n := ast.Empty(ast.KindGetNode, t.span)
		n.Text = t.text
		return p.add(n)
	case tIdent:
		switch t.text {
		case "true", "false":
			p.next()
			n := ast.Empty(ast.KindLiteral, t.span)
			n.Text, n.Lit = t.text, ast.LitBool
			return p.add(n)
		case "null":
			p.next()
			n := ast.Empty(ast.KindLiteral, t.span)
			n.Text, n.Lit = t.text, ast.LitNull
			return p.add(n)
		case "self":
			p.next()
			n := ast.Empty(ast.KindSelf, t.span)
			n.Name = tokenOf(t)
			return p.add(n)
		case "super":
			p.next()
			n := ast.Empty(ast.KindSuper, t.span)
			n.Name = tokenOf(t)
			return p.add(n)
		case "func":
			return p.lambda()
		}
		p.next()
		n := ast.Empty(ast.KindIdent, t.span)
		n.Name = tokenOf(t)
		return p.add(n)
	case tOp:
		switch t.text {
		case "(":
			p.next()
			e := p.expr()
			p.expectOp(")")
			return e
		case "[":
			p.next()
			n := ast.Empty(ast.KindArray, ast.Span{})
			n.Children = p.exprList("]")
			p.expectOp("]")
			n.Span = p.spanFrom(t.span.Start)
			return p.add(n)
		case "{":
			return p.dict()
		}
	}
	p.errorf("unexpected %s in expression", describe(t))
	return ast.NoNode
}

func (p *parser) dict() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindDict, ast.Span{})
	for !p.isOp("}") && p.peek().kind != tEOF {
		kt := p.peek()
		pair := ast.Empty(ast.KindPair, ast.Span{})
		if kt.kind == tIdent && p.peekN(1).kind == tOp && p.peekN(1).text == "=" {
			p.next()
			p.next()
			key := ast.Empty(ast.KindLiteral, kt.span)
			key.Text = `"` + kt.text + `"`
			key.Lit = ast.LitString
			key.Flags = ast.FlagLuaKey
			pair.Left = p.add(key)
		} else {
			pair.Left = p.expr()
			if !pair.Left.Valid() {
				break
			}
			p.expectOp(":")
		}
		pair.Right = p.expr()
		pair.Span = p.spanFrom(kt.span.Start)
		n.Children = append(n.Children, p.add(pair))
		if !p.acceptOp(",") {
			break
		}
	}
	p.expectOp("}")
	n.Span = p.spanFrom(start)
	return p.add(n)
}

func (p *parser) lambda() ast.NodeID {
	start := p.next().span.Start
	n := ast.Empty(ast.KindLambda, ast.Span{})
	if p.peek().kind == tIdent {
		n.Name = tokenOf(p.next())
	}
	p.expectOp("(")
	n.Children = p.params()
	p.expectOp(")")
	if p.acceptOp("->") {
		n.Type = p.typeRef()
	}
	p.expectOp(":")
	n.Body = p.lambdaBody()
	n.Span = p.spanFrom(start)
	return p.add(n)
}

// lambdaBody parses a lambda suite. A lambda written on one line inside
// brackets cannot use the block form because newlines are suppressed there.
func (p *parser) lambdaBody() ast.NodeID {
	if p.peek().kind == tNewline {
		return p.suite()
	}
	start := p.peek().span.Start
	b := ast.Empty(ast.KindBlock, ast.Span{})
	if s := p.simpleStatement(); s.Valid() {
		b.Children = append(b.Children, s)
	}
	b.Span = p.spanFrom(start)
	return p.add(b)
}

