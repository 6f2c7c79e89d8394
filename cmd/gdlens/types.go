package main

import (
	"github.com/jward/gdlens"
	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/refs"
	"github.com/jward/gdlens/internal/semantic"
	"github.com/jward/gdlens/internal/store"
	"github.com/jward/gdlens/internal/symbols"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLISymbol is a JSON-friendly symbol. ID is zero for symbols of a live
// analysis, which are not rows of the index.
type CLISymbol struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	TypeName      string `json:"type_name,omitempty"`
	InferredType  string `json:"inferred_type,omitempty"`
	Confidence    string `json:"confidence,omitempty"`
	DeclaringType string `json:"declaring_type,omitempty"`
	IsStatic      bool   `json:"is_static,omitempty"`
	File          string `json:"file,omitempty"`
	Line          int    `json:"line"`
	Col           int    `json:"col"`
	ParentID      *int64 `json:"parent_id,omitempty"`
}

type CLIFile struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	LineCount int    `json:"line_count"`
	Hash      string `json:"hash,omitempty"`
}

type CLIConnection struct {
	Signal        string `json:"signal"`
	Method        string `json:"method"`
	CallbackClass string `json:"callback_class,omitempty"`
	File          string `json:"file"`
	Line          int    `json:"line"`
	Col           int    `json:"col"`
	Confidence    string `json:"confidence"`
	IsScene       bool   `json:"is_scene"`
}

type CLIScriptType struct {
	TypeName  string `json:"type_name"`
	ClassName string `json:"class_name,omitempty"`
	BaseType  string `json:"base_type,omitempty"`
	File      string `json:"file"`
	ScenePath string `json:"scene_path,omitempty"`
}

type CLITypeHierarchy struct {
	Type      CLIScriptType   `json:"type"`
	Ancestors []string        `json:"ancestors"`
	Subtypes  []CLIScriptType `json:"subtypes"`
	Members   []CLISymbol     `json:"members"`
}

type CLISymbolDetail struct {
	Symbol   CLISymbol   `json:"symbol"`
	Parent   *CLISymbol  `json:"parent,omitempty"`
	Children []CLISymbol `json:"children"`
}

type CLIDiagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

type CLIReference struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Col         int    `json:"col"`
	Kind        string `json:"kind"`
	Confidence  string `json:"confidence"`
	Reason      string `json:"reason,omitempty"`
	CallerType  string `json:"caller_type,omitempty"`
	Signal      string `json:"signal,omitempty"`
	IsInherited bool   `json:"is_inherited,omitempty"`
	IsOverride  bool   `json:"is_override,omitempty"`
}

// CLIReferences is one reference set: a declaration and its uses.
type CLIReferences struct {
	Name          string         `json:"name"`
	DeclaringFile string         `json:"declaring_file,omitempty"`
	DeclaringType string         `json:"declaring_type,omitempty"`
	References    []CLIReference `json:"references"`
	Warnings      []string       `json:"warnings,omitempty"`
}

type CLIAllReferences struct {
	Primary   CLIReferences   `json:"primary"`
	Unrelated []CLIReferences `json:"unrelated"`
}

type CLIType struct {
	Name        string   `json:"name,omitempty"`
	Confidence  string   `json:"confidence"`
	Reason      string   `json:"reason,omitempty"`
	ElementType string   `json:"element_type,omitempty"`
	KeyType     string   `json:"key_type,omitempty"`
	Union       []string `json:"union,omitempty"`
}

type CLIProfile struct {
	Class        string   `json:"class"`
	Variable     string   `json:"variable"`
	IsArray      bool     `json:"is_array"`
	IsDictionary bool     `json:"is_dictionary"`
	IsUnion      bool     `json:"is_union"`
	ElementTypes []string `json:"element_types"`
	KeyTypes     []string `json:"key_types,omitempty"`
	Inferred     CLIType  `json:"inferred"`
	Sites        int      `json:"sites"`
}

// --- Conversions ---

func symbolResultToCLI(sr gdlens.SymbolResult) CLISymbol {
	return CLISymbol{
		ID:            sr.ID,
		Name:          sr.Name,
		Kind:          sr.Kind,
		TypeName:      sr.TypeName,
		InferredType:  sr.InferredType,
		Confidence:    sr.Confidence,
		DeclaringType: sr.DeclaringType,
		IsStatic:      sr.IsStatic,
		File:          sr.FilePath,
		Line:          sr.Line,
		Col:           sr.Col,
		ParentID:      sr.ParentSymbolID,
	}
}

func symbolResultsToCLI(srs []gdlens.SymbolResult) []CLISymbol {
	out := make([]CLISymbol, len(srs))
	for i, sr := range srs {
		out[i] = symbolResultToCLI(sr)
	}
	return out
}

// liveSymbolToCLI converts a symbol of a live analysis.
func liveSymbolToCLI(sym *symbols.Symbol) CLISymbol {
	return CLISymbol{
		Name:          sym.Name,
		Kind:          sym.Kind.String(),
		TypeName:      sym.TypeName,
		DeclaringType: sym.DeclaringType,
		IsStatic:      sym.IsStatic,
		File:          sym.File,
		Line:          sym.Pos().Line,
		Col:           sym.Pos().Col,
	}
}

func fileToCLI(f store.File) CLIFile {
	return CLIFile{ID: f.ID, Path: f.Path, Kind: f.Kind, LineCount: f.LineCount, Hash: f.Hash}
}

func connectionToCLI(c *store.SignalConnection, file string) CLIConnection {
	return CLIConnection{
		Signal:        c.SignalName,
		Method:        c.Method,
		CallbackClass: c.CallbackClass,
		File:          file,
		Line:          c.Line,
		Col:           c.Col,
		Confidence:    c.Confidence,
		IsScene:       c.IsScene,
	}
}

func scriptTypeToCLI(st *store.ScriptType, file string) CLIScriptType {
	return CLIScriptType{
		TypeName:  st.TypeName,
		ClassName: st.ClassName,
		BaseType:  st.BaseType,
		File:      file,
		ScenePath: st.ScenePath,
	}
}

func storedDiagnosticToCLI(d *store.Diagnostic, file string) CLIDiagnostic {
	return CLIDiagnostic{File: file, Line: d.Line, Col: d.Col, Severity: d.Severity, Code: d.Code, Message: d.Message}
}

func diagnosticsToCLI(diags []semantic.Diagnostic) []CLIDiagnostic {
	out := make([]CLIDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = CLIDiagnostic{
			File:     d.File,
			Line:     d.Line,
			Col:      d.Column,
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
		}
	}
	return out
}

func referencesToCLI(r refs.Result) CLIReferences {
	out := CLIReferences{
		Name:          r.Name,
		DeclaringFile: r.DeclaringFile,
		DeclaringType: r.DeclaringType,
		References:    make([]CLIReference, len(r.References)),
		Warnings:      r.Warnings,
	}
	for i, ref := range r.References {
		out.References[i] = CLIReference{
			File:        ref.File,
			Line:        ref.Line,
			Col:         ref.Column,
			Kind:        ref.Kind.String(),
			Confidence:  ref.Confidence.String(),
			Reason:      ref.Reason,
			CallerType:  ref.CallerType,
			Signal:      ref.SignalName,
			IsInherited: ref.IsInherited,
			IsOverride:  ref.IsOverride,
		}
	}
	return out
}

func allReferencesToCLI(r refs.AllResult) CLIAllReferences {
	out := CLIAllReferences{Primary: referencesToCLI(r.Primary), Unrelated: []CLIReferences{}}
	for _, u := range r.Unrelated {
		out.Unrelated = append(out.Unrelated, referencesToCLI(u))
	}
	return out
}

func typeToCLI(t infer.Type) CLIType {
	out := CLIType{
		Name:        t.Annotation(),
		Confidence:  t.Confidence.String(),
		Reason:      t.Reason,
		ElementType: t.EffectiveElementType(),
		KeyType:     t.EffectiveKeyType(),
	}
	if t.Union.IsUnion {
		out.Union = t.Union.Types
	}
	return out
}

func profileToCLI(p *infer.ContainerProfile) CLIProfile {
	return CLIProfile{
		Class:        p.Class,
		Variable:     p.Variable,
		IsArray:      p.IsArray,
		IsDictionary: p.IsDictionary,
		IsUnion:      p.IsUnion,
		ElementTypes: p.ElementTypes,
		KeyTypes:     p.KeyTypes,
		Inferred:     typeToCLI(p.ComputeInferredType()),
		Sites:        len(p.Sites),
	}
}
