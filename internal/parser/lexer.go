package parser

import (
	"strings"

	"github.com/jward/gdlens/internal/ast"
)

type tokKind uint8

const (
	tEOF tokKind = iota
	tNewline
	tIndent
	tDedent
	tIdent
	tInt
	tFloat
	tString
	tStringName
	tNodePath
	tGetNode
	tAnnotation
	tOp
)

type token struct {
	kind tokKind
	text string
	span ast.Span
}

// operators ordered longest first so that matching is greedy.
var operators = []string{
	"**=", "<<=", ">>=",
	"->", "**", "==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=",
	"%=", "&=", "|=", "^=", "<<", ">>", ":=", "..",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "~", "&", "|", "^",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";",
}

type lexer struct {
	src    string
	i      int
	line   int
	col    int
	depth  int
	indent []int
	bol    bool
	toks   []token
	errs   []ast.Error
}

func lex(src string) ([]token, []ast.Error) {
	lx := &lexer{src: src, indent: []int{0}, bol: true}
	lx.run()
	return lx.toks, lx.errs
}

func (lx *lexer) pos() ast.Pos { return ast.Pos{Line: lx.line, Col: lx.col} }

func (lx *lexer) peekAt(off int) byte {
	if lx.i+off < len(lx.src) {
		return lx.src[lx.i+off]
	}
	return 0
}

func (lx *lexer) advance(n int) {
	for k := 0; k < n && lx.i < len(lx.src); k++ {
		if lx.src[lx.i] == '\n' {
			lx.line++
			lx.col = 0
		} else {
			lx.col++
		}
		lx.i++
	}
}

func (lx *lexer) emit(kind tokKind, text string, start ast.Pos) {
	lx.toks = append(lx.toks, token{kind: kind, text: text, span: ast.Span{Start: start, End: lx.pos()}})
}

func (lx *lexer) lastKind() tokKind {
	if len(lx.toks) == 0 {
		return tNewline
	}
	return lx.toks[len(lx.toks)-1].kind
}

func (lx *lexer) newline() {
	if k := lx.lastKind(); k != tNewline && k != tIndent && k != tDedent {
		lx.emit(tNewline, "", lx.pos())
	}
}

func (lx *lexer) run() {
	for lx.i < len(lx.src) {
		if lx.bol && lx.depth == 0 {
			lx.bol = false
			if lx.lineIndent() {
				continue
			}
		}
		c := lx.src[lx.i]
		switch {
		case c == '\n':
			if lx.depth == 0 {
				lx.newline()
				lx.bol = true
			}
			lx.advance(1)
		case c == '\\' && (lx.peekAt(1) == '\n' || (lx.peekAt(1) == '\r' && lx.peekAt(2) == '\n')):
			for lx.src[lx.i] != '\n' {
				lx.advance(1)
			}
			lx.advance(1)
		case c == ' ' || c == '\t' || c == '\r':
			lx.advance(1)
		case c == '#':
			for lx.i < len(lx.src) && lx.src[lx.i] != '\n' {
				lx.advance(1)
			}
		case isDigit(c) || (c == '.' && isDigit(lx.peekAt(1))):
			lx.number()
		case isIdentStart(c):
			if c == 'r' && (lx.peekAt(1) == '"' || lx.peekAt(1) == '\'') {
				begin, start := lx.i, lx.pos()
				lx.advance(1)
				lx.str(tString, begin, start)
				continue
			}
			lx.ident()
		case c == '"' || c == '\'':
			lx.str(tString, lx.i, lx.pos())
		case (c == '&' || c == '^') && (lx.peekAt(1) == '"' || lx.peekAt(1) == '\''):
			begin, start := lx.i, lx.pos()
			lx.advance(1)
			if c == '&' {
				lx.str(tStringName, begin, start)
			} else {
				lx.str(tNodePath, begin, start)
			}
		case c == '$':
			lx.getNode()
		case c == '%' && isIdentStart(lx.peekAt(1)) && !lx.afterOperand():
			lx.getNode()
		case c == '@':
			start := lx.pos()
			lx.advance(1)
			j := lx.i
			for lx.i < len(lx.src) && isIdentPart(lx.src[lx.i]) {
				lx.advance(1)
			}
			lx.emit(tAnnotation, lx.src[j:lx.i], start)
		default:
			lx.op()
		}
	}
	lx.newline()
	for len(lx.indent) > 1 {
		lx.indent = lx.indent[:len(lx.indent)-1]
		lx.emit(tDedent, "", lx.pos())
	}
	lx.emit(tEOF, "", lx.pos())
}

// lineIndent measures the indentation at the beginning of a line and emits
// INDENT/DEDENT tokens. Blank and comment-only lines are skipped entirely;
// it returns true when it consumed such a line.
func (lx *lexer) lineIndent() bool {
	width := 0
	j := lx.i
	for j < len(lx.src) && (lx.src[j] == ' ' || lx.src[j] == '\t') {
		if lx.src[j] == '\t' {
			width += 4
		} else {
			width++
		}
		j++
	}
	if j >= len(lx.src) || lx.src[j] == '\n' || lx.src[j] == '#' || lx.src[j] == '\r' {
		for lx.i < len(lx.src) && lx.src[lx.i] != '\n' {
			lx.advance(1)
		}
		if lx.i < len(lx.src) {
			lx.advance(1)
		}
		lx.bol = true
		return true
	}
	lx.advance(j - lx.i)
	top := lx.indent[len(lx.indent)-1]
	switch {
	case width > top:
		lx.indent = append(lx.indent, width)
		lx.emit(tIndent, "", lx.pos())
	case width < top:
		for len(lx.indent) > 1 && width < lx.indent[len(lx.indent)-1] {
			lx.indent = lx.indent[:len(lx.indent)-1]
			lx.emit(tDedent, "", lx.pos())
		}
		if width != lx.indent[len(lx.indent)-1] {
			lx.errs = append(lx.errs, ast.Error{Pos: lx.pos(), Msg: "inconsistent indentation"})
		}
	}
	return false
}

func (lx *lexer) afterOperand() bool {
	if len(lx.toks) == 0 {
		return false
	}
	t := lx.toks[len(lx.toks)-1]
	switch t.kind {
	case tIdent, tInt, tFloat, tString, tStringName, tNodePath, tGetNode:
		return true
	case tOp:
		return t.text == ")" || t.text == "]" || t.text == "}"
	}
	return false
}

func (lx *lexer) number() {
	start := lx.pos()
	j := lx.i
	kind := tInt
	if lx.src[j] == '0' && (lx.peekAt(1) == 'x' || lx.peekAt(1) == 'b') {
		lx.advance(2)
		for lx.i < len(lx.src) && (isHex(lx.src[lx.i]) || lx.src[lx.i] == '_') {
			lx.advance(1)
		}
		lx.emit(kind, lx.src[j:lx.i], start)
		return
	}
	for lx.i < len(lx.src) {
		c := lx.src[lx.i]
		switch {
		case isDigit(c) || c == '_':
			lx.advance(1)
		case c == '.' && kind == tInt && lx.peekAt(1) != '.' && !isIdentStart(lx.peekAt(1)):
			kind = tFloat
			lx.advance(1)
		case (c == 'e' || c == 'E') && (isDigit(lx.peekAt(1)) || ((lx.peekAt(1) == '-' || lx.peekAt(1) == '+') && isDigit(lx.peekAt(2)))):
			kind = tFloat
			lx.advance(2)
		default:
			lx.emit(kind, lx.src[j:lx.i], start)
			return
		}
	}
	lx.emit(kind, lx.src[j:lx.i], start)
}

func (lx *lexer) ident() {
	start := lx.pos()
	j := lx.i
	for lx.i < len(lx.src) && isIdentPart(lx.src[lx.i]) {
		lx.advance(1)
	}
	lx.emit(tIdent, lx.src[j:lx.i], start)
}

// str scans a quoted literal whose first quote is at the current offset.
// begin is the byte offset of the literal including any prefix; the emitted
// token text is the raw source including prefix and quotes.
func (lx *lexer) str(kind tokKind, begin int, start ast.Pos) {
	q := lx.src[lx.i]
	triple := lx.peekAt(1) == q && lx.peekAt(2) == q
	if triple {
		lx.advance(3)
	} else {
		lx.advance(1)
	}
	for lx.i < len(lx.src) {
		c := lx.src[lx.i]
		if c == '\\' {
			lx.advance(2)
			continue
		}
		if c == '\n' && !triple {
			lx.errs = append(lx.errs, ast.Error{Pos: start, Msg: "unterminated string"})
			break
		}
		if c == q {
			if !triple {
				lx.advance(1)
				break
			}
			if lx.peekAt(1) == q && lx.peekAt(2) == q {
				lx.advance(3)
				break
			}
		}
		lx.advance(1)
	}
	lx.emit(kind, lx.src[begin:lx.i], start)
}

func (lx *lexer) getNode() {
	start := lx.pos()
	j := lx.i
	lx.advance(1)
	if c := lx.peekAt(0); c == '"' || c == '\'' {
		lx.str(tGetNode, j, start)
		return
	}
	for lx.i < len(lx.src) {
		c := lx.src[lx.i]
		if isIdentPart(c) || c == '/' || c == '%' {
			lx.advance(1)
			continue
		}
		break
	}
	lx.emit(tGetNode, lx.src[j:lx.i], start)
}

func (lx *lexer) op() {
	start := lx.pos()
	rest := lx.src[lx.i:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			lx.advance(len(op))
			switch op {
			case "(", "[", "{":
				lx.depth++
			case ")", "]", "}":
				if lx.depth > 0 {
					lx.depth--
				}
			case ";":
				if lx.depth == 0 {
					lx.newline()
					return
				}
			}
			lx.emit(tOp, op, start)
			return
		}
	}
	lx.errs = append(lx.errs, ast.Error{Pos: start, Msg: "unexpected character " + string(rest[0])})
	lx.advance(1)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
