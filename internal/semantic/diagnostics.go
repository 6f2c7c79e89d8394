package semantic

import (
	"fmt"
	"sort"

	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/runtime"
	"github.com/jward/gdlens/internal/symbols"
)

// Severity of a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic codes.
const (
	CodeParseError   = "parse-error"
	CodeTypeMismatch = "type-mismatch"
)

// Diagnostic is a problem found in a file. Line and Column are 0-based.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Code     string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line+1, d.Column+1, d.Severity, d.Message)
}

// Diagnostics reports parse errors and type mismatches that inference can
// prove. Unresolved names are not reported: duck typing makes them legal.
func (m *Model) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, e := range m.Tree.Errors {
		out = append(out, Diagnostic{File: m.Path, Line: e.Pos.Line, Column: e.Pos.Col,
			Severity: SeverityError, Code: CodeParseError, Message: e.Msg})
	}
	for _, sym := range m.Table.All() {
		if sym.TypeName == "" {
			continue
		}
		switch sym.Kind {
		case symbols.Iterator:
			el := m.Types.IteratorElement(sym.Decl)
			if m.mismatch(el, sym.TypeName) {
				out = append(out, m.typeMismatch(sym, fmt.Sprintf(
					"iterator %q is declared %s but the iterable yields %s", sym.Name, sym.TypeName, el.Name)))
			}
		case symbols.Variable, symbols.Constant, symbols.Property:
			n := m.Tree.Node(sym.Decl)
			if n == nil || !n.Value.Valid() {
				continue
			}
			v := m.Types.InferExpr(n.Value)
			if v.Confidence == infer.High && m.mismatch(v, sym.TypeName) {
				out = append(out, m.typeMismatch(sym, fmt.Sprintf(
					"cannot assign %s to %q of type %s", v.Name, sym.Name, sym.TypeName)))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}

func (m *Model) typeMismatch(sym *symbols.Symbol, msg string) Diagnostic {
	return Diagnostic{File: m.Path, Line: sym.NameSpan.Start.Line, Column: sym.NameSpan.Start.Col,
		Severity: SeverityError, Code: CodeTypeMismatch, Message: msg}
}

// mismatch reports whether a value of type t provably cannot be stored in
// a slot declared as declared.
func (m *Model) mismatch(t infer.Type, declared string) bool {
	if !t.Known() || t.IsClass {
		return false
	}
	from, to := runtime.ElementBase(t.Name), runtime.ElementBase(declared)
	if to == "Variant" || from == to {
		return false
	}
	switch {
	case from == "float" && to == "int":
		return false
	case from == "String" && to == "NodePath":
		return false
	case from == "Array" && infer.Type{Name: to}.IsArray():
		return false
	}
	if m.isEnum(from) && (to == "int" || to == "float") {
		return false
	}
	if m.isEnum(to) && from == "int" {
		return false
	}
	if !m.knownType(from) || !m.knownType(to) {
		return false
	}
	return !m.assignable(from, to)
}

func (m *Model) knownType(name string) bool {
	return runtime.IsValueType(name) || m.classScope(name) != nil || m.isEnum(name) ||
		m.Provider().IsKnownType(name)
}

func (m *Model) isEnum(name string) bool {
	for _, sym := range m.Table.ByName(name) {
		if sym.Kind == symbols.Enum {
			return true
		}
	}
	return false
}
