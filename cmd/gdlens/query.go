package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/gdlens"
	"github.com/jward/gdlens/internal/store"
)

var (
	flagLimit  int
	flagOffset int
	flagSort   string
	flagOrder  string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the stored index",
	Long:  "Run queries against the index written by 'gdlens index'. All line and column numbers are 0-based.",
}

func init() {
	queryCmd.PersistentFlags().IntVar(&flagLimit, "limit", 50, "pagination limit (max 500)")
	queryCmd.PersistentFlags().IntVar(&flagOffset, "offset", 0, "pagination offset")
	queryCmd.PersistentFlags().StringVar(&flagSort, "sort", "", "sort field: name|kind|file")
	queryCmd.PersistentFlags().StringVar(&flagOrder, "order", "asc", "sort order: asc|desc")

	symbolsCmd.Flags().String("kind", "", "comma-separated symbol kinds (e.g. method,signal)")
	symbolsCmd.Flags().String("pattern", "", "name glob, '*' is the wildcard")
	symbolsCmd.Flags().String("type", "", "declaring class of members")
	symbolsCmd.Flags().String("file", "", "restrict to one file")
	symbolsCmd.Flags().String("prefix", "", "restrict to files under a res:// directory")
	filesCmd.Flags().String("kind", "", "file kind: script|scene|project")
	filesCmd.Flags().String("prefix", "", "restrict to files under a res:// directory")

	queryCmd.AddCommand(symbolsCmd)
	queryCmd.AddCommand(filesCmd)
	queryCmd.AddCommand(connectionsCmd)
	queryCmd.AddCommand(typesCmd)
	queryCmd.AddCommand(hierarchyCmd)
	queryCmd.AddCommand(detailCmd)
	queryCmd.AddCommand(dependentsCmd)
	queryCmd.AddCommand(storedDiagnosticsCmd)
}

// --- Helpers ---

// openIndex opens the existing index of the project containing the
// current directory.
func openIndex() (*gdlens.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	cfg, err := loadConfig(cwd)
	if err != nil {
		return nil, err
	}
	dbPath := resolveDBPath(cfg)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'gdlens index' first)", dbPath)
	}
	return gdlens.New(dbPath, gdlens.WithRoot(cfg.Project.Root), gdlens.WithLogger(slog.Default()))
}

// resolveFilePath converts a file argument to an absolute path. res://
// paths and absolute paths are returned as-is.
func resolveFilePath(file string) (string, error) {
	if strings.HasPrefix(file, "res://") || filepath.IsAbs(file) {
		return file, nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	return abs, nil
}

// parseIntArg parses a positional argument as an integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be non-negative", name, value)
	}
	return n, nil
}

// parsePosition parses <file> <line> <col> arguments.
func parsePosition(args []string) (file string, line, col int, err error) {
	if file, err = resolveFilePath(args[0]); err != nil {
		return "", 0, 0, err
	}
	if line, err = parseIntArg(args[1], "line"); err != nil {
		return "", 0, 0, err
	}
	if col, err = parseIntArg(args[2], "col"); err != nil {
		return "", 0, 0, err
	}
	return file, line, col, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// buildPagination creates a Pagination from CLI flags.
func buildPagination() gdlens.Pagination {
	return gdlens.Pagination{
		Limit:  flagLimit,
		Offset: flagOffset,
	}
}

// buildSort creates a Sort from CLI flags.
func buildSort() gdlens.Sort {
	var field gdlens.SortField
	switch flagSort {
	case "kind":
		field = gdlens.SortByKind
	case "file":
		field = gdlens.SortByFile
	default:
		field = gdlens.SortByName
	}

	var order gdlens.SortOrder
	switch flagOrder {
	case "desc":
		order = gdlens.Desc
	default:
		order = gdlens.Asc
	}
	return gdlens.Sort{Field: field, Order: order}
}

// filePaths maps file IDs of the index to their res:// paths.
func filePaths(s *store.Store) (map[int64]string, error) {
	files, err := s.Files("")
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(files))
	for _, f := range files {
		out[f.ID] = f.Path
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// --- Listing Commands ---

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List stored symbols",
	Args:  cobra.NoArgs,
	RunE:  runSymbols,
}

func runSymbols(cmd *cobra.Command, args []string) error {
	e, err := openIndex()
	if err != nil {
		return outputError("symbols", err)
	}
	defer e.Close()

	kind, _ := cmd.Flags().GetString("kind")
	pattern, _ := cmd.Flags().GetString("pattern")
	typ, _ := cmd.Flags().GetString("type")
	file, _ := cmd.Flags().GetString("file")
	prefix, _ := cmd.Flags().GetString("prefix")
	if file != "" {
		if file, err = resolveFilePath(file); err != nil {
			return outputError("symbols", err)
		}
	}

	filter := gdlens.SymbolFilter{
		Pattern:       pattern,
		Kinds:         splitList(kind),
		DeclaringType: typ,
		File:          file,
		PathPrefix:    prefix,
	}
	res, err := e.Query().Symbols(filter, buildSort(), buildPagination())
	if err != nil {
		return outputError("symbols", err)
	}
	return outputResult(CLIResult{
		Command:    "symbols",
		Results:    symbolResultsToCLI(res.Items),
		TotalCount: &res.TotalCount,
	})
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List stored files",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

func runFiles(cmd *cobra.Command, args []string) error {
	e, err := openIndex()
	if err != nil {
		return outputError("files", err)
	}
	defer e.Close()

	kind, _ := cmd.Flags().GetString("kind")
	prefix, _ := cmd.Flags().GetString("prefix")
	res, err := e.Query().Files(prefix, kind, buildPagination())
	if err != nil {
		return outputError("files", err)
	}
	files := make([]CLIFile, len(res.Items))
	for i, f := range res.Items {
		files[i] = fileToCLI(f)
	}
	return outputResult(CLIResult{
		Command:    "files",
		Results:    files,
		TotalCount: &res.TotalCount,
	})
}

var connectionsCmd = &cobra.Command{
	Use:   "connections [method]",
	Short: "List stored signal connections, optionally only those calling method",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConnections,
}

func runConnections(cmd *cobra.Command, args []string) error {
	e, err := openIndex()
	if err != nil {
		return outputError("connections", err)
	}
	defer e.Close()

	method := ""
	if len(args) > 0 {
		method = args[0]
	}
	conns, err := e.Query().Connections(method)
	if err != nil {
		return outputError("connections", err)
	}
	paths, err := filePaths(e.Store())
	if err != nil {
		return outputError("connections", err)
	}
	out := make([]CLIConnection, len(conns))
	for i, c := range conns {
		out[i] = connectionToCLI(c, paths[c.FileID])
	}
	n := len(out)
	return outputResult(CLIResult{Command: "connections", Results: out, TotalCount: &n})
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the type of every stored script",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func runTypes(cmd *cobra.Command, args []string) error {
	e, err := openIndex()
	if err != nil {
		return outputError("types", err)
	}
	defer e.Close()

	types, err := e.Query().ScriptTypes()
	if err != nil {
		return outputError("types", err)
	}
	paths, err := filePaths(e.Store())
	if err != nil {
		return outputError("types", err)
	}
	out := make([]CLIScriptType, len(types))
	for i, st := range types {
		out[i] = scriptTypeToCLI(st, paths[st.FileID])
	}
	n := len(out)
	return outputResult(CLIResult{Command: "types", Results: out, TotalCount: &n})
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy <type>",
	Short: "Show ancestors, subtypes and members of a script type",
	Long:  "The type is a class_name or the res:// path of a script without one.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHierarchy,
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	e, err := openIndex()
	if err != nil {
		return outputError("hierarchy", err)
	}
	defer e.Close()

	th, err := e.Query().TypeHierarchy(args[0])
	if err != nil {
		return outputError("hierarchy", err)
	}
	if th == nil {
		return outputResult(CLIResult{Command: "hierarchy", Results: nil})
	}
	paths, err := filePaths(e.Store())
	if err != nil {
		return outputError("hierarchy", err)
	}
	out := CLITypeHierarchy{
		Type:      scriptTypeToCLI(th.Type, th.File),
		Ancestors: th.Ancestors,
		Subtypes:  []CLIScriptType{},
		Members:   symbolResultsToCLI(th.Members),
	}
	for _, st := range th.Subtypes {
		out.Subtypes = append(out.Subtypes, scriptTypeToCLI(st, paths[st.FileID]))
	}
	one := 1
	return outputResult(CLIResult{Command: "hierarchy", Results: out, TotalCount: &one})
}

var detailCmd = &cobra.Command{
	Use:   "detail [<file> <line> <col>]",
	Short: "Show a stored symbol with its parent and children",
	Long:  "Accepts either <file> <line> <col> positional args or --symbol <id>.",
	Args:  cobra.MaximumNArgs(3),
	RunE:  runDetail,
}

func init() {
	detailCmd.Flags().Int64("symbol", 0, "symbol ID to query")
}

func runDetail(cmd *cobra.Command, args []string) error {
	e, err := openIndex()
	if err != nil {
		return outputError("detail", err)
	}
	defer e.Close()

	q := e.Query()
	var d *gdlens.SymbolDetail
	if id, _ := cmd.Flags().GetInt64("symbol"); id != 0 {
		d, err = q.SymbolDetail(id)
	} else if len(args) == 3 {
		file, line, col, perr := parsePosition(args)
		if perr != nil {
			return outputError("detail", perr)
		}
		d, err = q.SymbolDetailAt(file, line, col)
	} else {
		err = fmt.Errorf("requires either <file> <line> <col> arguments or --symbol flag")
	}
	if err != nil {
		return outputError("detail", err)
	}
	if d == nil {
		return outputResult(CLIResult{Command: "detail", Results: nil})
	}

	out := CLISymbolDetail{
		Symbol:   symbolResultToCLI(d.Symbol),
		Children: symbolResultsToCLI(d.Children),
	}
	if d.Parent != nil {
		p := symbolResultToCLI(*d.Parent)
		out.Parent = &p
	}
	one := 1
	return outputResult(CLIResult{Command: "detail", Results: out, TotalCount: &one})
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <type>",
	Short: "List the scripts extending a type, directly or not",
	Args:  cobra.ExactArgs(1),
	RunE:  runDependents,
}

func runDependents(cmd *cobra.Command, args []string) error {
	e, err := openIndex()
	if err != nil {
		return outputError("dependents", err)
	}
	defer e.Close()

	deps, err := e.Query().Dependents(args[0])
	if err != nil {
		return outputError("dependents", err)
	}
	n := len(deps)
	return outputResult(CLIResult{Command: "dependents", Results: deps, TotalCount: &n})
}

var storedDiagnosticsCmd = &cobra.Command{
	Use:   "diagnostics [file]",
	Short: "List diagnostics recorded at the last index",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoredDiagnostics,
}

func runStoredDiagnostics(cmd *cobra.Command, args []string) error {
	e, err := openIndex()
	if err != nil {
		return outputError("diagnostics", err)
	}
	defer e.Close()

	file := ""
	if len(args) > 0 {
		if file, err = resolveFilePath(args[0]); err != nil {
			return outputError("diagnostics", err)
		}
	}
	diags, err := e.Query().StoredDiagnostics(file)
	if err != nil {
		return outputError("diagnostics", err)
	}
	paths, err := filePaths(e.Store())
	if err != nil {
		return outputError("diagnostics", err)
	}
	out := make([]CLIDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = storedDiagnosticToCLI(d, paths[d.FileID])
	}
	n := len(out)
	return outputResult(CLIResult{Command: "diagnostics", Results: out, TotalCount: &n})
}
