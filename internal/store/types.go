package store

import "time"

// File kinds.
const (
	KindScript  = "script"
	KindScene   = "scene"
	KindProject = "project"
)

// Per-file types

type File struct {
	ID          int64
	Path        string
	Kind        string
	Hash        string
	LineCount   int
	LastIndexed time.Time
}

// Symbol is a persisted declaration. Line and Col are 0-based.
type Symbol struct {
	ID             int64
	FileID         int64
	Name           string
	Kind           string
	TypeName       string
	InferredType   string
	Confidence     string
	DeclaringType  string
	IsStatic       bool
	Line           int
	Col            int
	ParentSymbolID *int64
	SignatureHash  string
}

type Diagnostic struct {
	ID       int64
	FileID   int64
	Severity string
	Code     string
	Line     int
	Col      int
	Message  string
}

// Project-level types

// ScriptType records the type a script declares and what it extends.
type ScriptType struct {
	ID        int64
	FileID    int64
	TypeName  string
	ClassName string
	BaseType  string
	ScenePath string
}

type SignalConnection struct {
	ID            int64
	FileID        int64
	SignalName    string
	Method        string
	CallbackClass string
	Line          int
	Col           int
	Confidence    string
	IsScene       bool
}
