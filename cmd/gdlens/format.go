package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatSymbolsText formats CLISymbol results as aligned columns.
func formatSymbolsText(w io.Writer, syms []CLISymbol) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tTYPE\tCLASS\tFILE\tLINE\tCOL")
	for _, s := range syms {
		typ := s.TypeName
		if typ == "" && s.InferredType != "" {
			typ = s.InferredType + " (" + s.Confidence + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			s.ID, s.Name, s.Kind, typ, s.DeclaringType, s.File, s.Line, s.Col)
	}
	tw.Flush()
}

func formatFilesText(w io.Writer, files []CLIFile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tKIND\tLINES")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", f.ID, f.Path, f.Kind, f.LineCount)
	}
	tw.Flush()
}

func formatConnectionsText(w io.Writer, conns []CLIConnection) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIGNAL\tMETHOD\tSOURCE\tFILE\tLINE\tCONFIDENCE")
	for _, c := range conns {
		source := "code"
		if c.IsScene {
			source = "scene"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			c.Signal, c.Method, source, c.File, c.Line, c.Confidence)
	}
	tw.Flush()
}

func formatScriptTypesText(w io.Writer, types []CLIScriptType) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tBASE\tFILE\tSCENE")
	for _, t := range types {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.TypeName, t.BaseType, t.File, t.ScenePath)
	}
	tw.Flush()
}

func formatHierarchyText(w io.Writer, h CLITypeHierarchy) {
	fmt.Fprintf(w, "Type: %s\n", h.Type.TypeName)
	fmt.Fprintf(w, "File: %s\n", h.Type.File)
	if len(h.Ancestors) > 0 {
		fmt.Fprintf(w, "Extends: %s\n", strings.Join(h.Ancestors, " -> "))
	}
	fmt.Fprintln(w)

	if len(h.Subtypes) > 0 {
		fmt.Fprintln(w, "Subtypes:")
		for _, s := range h.Subtypes {
			fmt.Fprintf(w, "  %s (%s)\n", s.TypeName, s.File)
		}
		fmt.Fprintln(w)
	}
	if len(h.Members) > 0 {
		fmt.Fprintln(w, "Members:")
		formatSymbolsText(w, h.Members)
	}
}

func formatSymbolDetailText(w io.Writer, d CLISymbolDetail) {
	formatSymbolsText(w, []CLISymbol{d.Symbol})
	if d.Parent != nil {
		fmt.Fprintf(w, "\nParent: %s (%s, #%d)\n", d.Parent.Name, d.Parent.Kind, d.Parent.ID)
	}
	if len(d.Children) > 0 {
		fmt.Fprintln(w, "\nChildren:")
		formatSymbolsText(w, d.Children)
	}
}

// formatDiagnosticsText prints compiler-style "file:line:col: severity" lines.
func formatDiagnosticsText(w io.Writer, diags []CLIDiagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n", d.File, d.Line, d.Col, d.Severity, d.Message, d.Code)
	}
}

func formatReferencesText(w io.Writer, r CLIReferences) {
	if r.DeclaringType != "" {
		fmt.Fprintf(w, "%s.%s\n", r.DeclaringType, r.Name)
	} else {
		fmt.Fprintln(w, r.Name)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ref := range r.References {
		fmt.Fprintf(tw, "  %s:%d:%d\t%s\t%s\t%s\n",
			ref.File, ref.Line, ref.Col, ref.Kind, ref.Confidence, ref.Reason)
	}
	tw.Flush()
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

func formatAllReferencesText(w io.Writer, r CLIAllReferences) {
	formatReferencesText(w, r.Primary)
	for _, u := range r.Unrelated {
		fmt.Fprintln(w)
		formatReferencesText(w, u)
	}
}

func formatTypeText(w io.Writer, t CLIType) {
	name := t.Name
	if name == "" {
		name = "?"
	}
	fmt.Fprintf(w, "%s (%s)", name, t.Confidence)
	if len(t.Union) > 0 {
		fmt.Fprintf(w, " elements: %s", strings.Join(t.Union, " | "))
	}
	if t.Reason != "" {
		fmt.Fprintf(w, " - %s", t.Reason)
	}
	fmt.Fprintln(w)
}

func formatProfilesText(w io.Writer, profiles []CLIProfile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tVARIABLE\tINFERRED\tCONFIDENCE\tSITES")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			p.Class, p.Variable, p.Inferred.Name, p.Inferred.Confidence, p.Sites)
	}
	tw.Flush()
}

func formatStringsText(w io.Writer, items []string) {
	for _, s := range items {
		fmt.Fprintln(w, s)
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	return writeResultText(os.Stdout, result)
}

func writeResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLISymbol:
		formatSymbolsText(w, v)
	case CLISymbol:
		formatSymbolsText(w, []CLISymbol{v})
	case []CLIFile:
		formatFilesText(w, v)
	case []CLIConnection:
		formatConnectionsText(w, v)
	case []CLIScriptType:
		formatScriptTypesText(w, v)
	case CLITypeHierarchy:
		formatHierarchyText(w, v)
	case CLISymbolDetail:
		formatSymbolDetailText(w, v)
	case []CLIDiagnostic:
		formatDiagnosticsText(w, v)
	case CLIReferences:
		formatReferencesText(w, v)
	case []CLIReferences:
		for i, r := range v {
			if i > 0 {
				fmt.Fprintln(w)
			}
			formatReferencesText(w, r)
		}
	case CLIAllReferences:
		formatAllReferencesText(w, v)
	case CLIType:
		formatTypeText(w, v)
	case []CLIProfile:
		formatProfilesText(w, v)
	case CLIProfile:
		formatProfilesText(w, []CLIProfile{v})
	case []string:
		formatStringsText(w, v)
	case nil:
		// No output for nil results (e.g., symbol-at with no match).
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	// Pagination footer.
	if result.TotalCount != nil {
		count := *result.TotalCount
		shown := resultLen(result.Results)
		if shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}
	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []CLISymbol:
		return len(r)
	case []CLIFile:
		return len(r)
	case []CLIConnection:
		return len(r)
	case []CLIScriptType:
		return len(r)
	case []CLIDiagnostic:
		return len(r)
	case []CLIProfile:
		return len(r)
	case []CLIReferences:
		return len(r)
	case CLIReferences:
		return len(r.References)
	case CLIAllReferences:
		return 1 + len(r.Unrelated)
	case []string:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
