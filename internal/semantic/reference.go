// Package semantic combines a file's symbol table, type inference and
// identifier index into a per-file model.
package semantic

import (
	"github.com/jward/gdlens/internal/ast"
)

// RefKind classifies a reference.
type RefKind uint8

const (
	Read RefKind = iota
	Call
	TypeUsage
	ContractString
	SignalConnection
	SceneSignalConnection
	Write
	SuperCall
	Override
	Declaration
)

var refKindNames = [...]string{
	Read:                  "read",
	Call:                  "call",
	TypeUsage:             "type_usage",
	ContractString:        "contract_string",
	SignalConnection:      "signal_connection",
	SceneSignalConnection: "scene_signal_connection",
	Write:                 "write",
	SuperCall:             "super_call",
	Override:              "override",
	Declaration:           "declaration",
}

func (k RefKind) String() string {
	if int(k) < len(refKindNames) {
		return refKindNames[k]
	}
	return "unknown"
}

// Confidence grades how certain a reference is. Higher values are
// stronger.
type Confidence uint8

const (
	NameMatch Confidence = iota
	Potential
	Strict
)

func (c Confidence) String() string {
	switch c {
	case Strict:
		return "strict"
	case Potential:
		return "potential"
	}
	return "name_match"
}

// Reference is one occurrence of a symbol. Line and Column are 0-based.
type Reference struct {
	File       string
	Node       ast.NodeID
	Token      ast.Token
	Line       int
	Column     int
	Kind       RefKind
	Confidence Confidence
	Reason     string
	CallerType string
	SignalName string

	IsInherited   bool
	IsOverride    bool
	IsSceneSignal bool
}

// Pos returns the reference position.
func (r Reference) Pos() ast.Pos { return ast.Pos{Line: r.Line, Col: r.Column} }

// NewReference returns a reference at tok in file.
func NewReference(file string, node ast.NodeID, tok ast.Token, kind RefKind, conf Confidence) Reference {
	return Reference{
		File:       file,
		Node:       node,
		Token:      tok,
		Line:       tok.Span.Start.Line,
		Column:     tok.Span.Start.Col,
		Kind:       kind,
		Confidence: conf,
	}
}
