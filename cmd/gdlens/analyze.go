package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/gdlens"
)

// Live commands analyse the project on every run and answer from the
// analysis rather than the stored index. The index is refreshed as a side
// effect.
var analyzeCmds = []*cobra.Command{
	refsCmd,
	refsAllCmd,
	symbolAtCmd,
	inferCmd,
	profileCmd,
	diagnosticsCmd,
}

var (
	flagRefsFile     string
	flagProfileClass string
)

func init() {
	refsCmd.Flags().StringVar(&flagRefsFile, "file", "", "only report references in this file")
	profileCmd.Flags().StringVar(&flagProfileClass, "class", "", "class owning the variable (default: the script's class)")
}

// analyzeProject indexes the project containing the current directory and
// returns the Engine holding the analysis. Per-file errors are logged; the
// project is still returned when it could be built.
func analyzeProject(ctx context.Context) (*gdlens.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	cfg, err := loadConfig(cwd)
	if err != nil {
		return nil, err
	}
	e, err := openEngine(cfg, resolveDBPath(cfg))
	if err != nil {
		return nil, err
	}
	if err := e.IndexDirectory(ctx, cfg.Project.Root); err != nil {
		if e.Project() == nil {
			e.Close()
			return nil, fmt.Errorf("analysing: %w", err)
		}
		slog.Warn("analysis incomplete", "path", cfg.Project.Root, "error", err)
	}
	return e, nil
}

// isPosition reports whether args look like <file> <line> <col>.
func isPosition(args []string) bool {
	if len(args) != 3 {
		return false
	}
	_, errLine := strconv.Atoi(args[1])
	_, errCol := strconv.Atoi(args[2])
	return errLine == nil && errCol == nil
}

var refsCmd = &cobra.Command{
	Use:   "refs <name>... | refs <file> <line> <col>",
	Short: "Find references to a name or to the symbol at a position",
	Long:  "With names, collects references to every declaration of each name. With a position, collects references to the symbol there.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRefs,
}

func runRefs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := analyzeProject(ctx)
	if err != nil {
		return outputError("refs", err)
	}
	defer e.Close()
	q := e.Query()

	if isPosition(args) {
		file, line, col, err := parsePosition(args)
		if err != nil {
			return outputError("refs", err)
		}
		res, err := q.ReferencesAt(file, line, col)
		if err != nil {
			return outputError("refs", err)
		}
		out := referencesToCLI(res)
		n := len(out.References)
		return outputResult(CLIResult{Command: "refs", Results: out, TotalCount: &n})
	}

	if len(args) == 1 {
		file := ""
		if flagRefsFile != "" {
			if file, err = resolveFilePath(flagRefsFile); err != nil {
				return outputError("refs", err)
			}
		}
		res, err := q.References(args[0], file)
		if err != nil {
			return outputError("refs", err)
		}
		out := referencesToCLI(res)
		n := len(out.References)
		return outputResult(CLIResult{Command: "refs", Results: out, TotalCount: &n})
	}

	results, err := q.CollectReferencesBatch(ctx, args)
	if err != nil {
		return outputError("refs", err)
	}
	out := make([]CLIReferences, len(results))
	for i, r := range results {
		out[i] = referencesToCLI(r)
	}
	n := len(out)
	return outputResult(CLIResult{Command: "refs", Results: out, TotalCount: &n})
}

var refsAllCmd = &cobra.Command{
	Use:   "refs-all <name>",
	Short: "Split the declarations of a name into unrelated hierarchies",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefsAll,
}

func runRefsAll(cmd *cobra.Command, args []string) error {
	e, err := analyzeProject(cmd.Context())
	if err != nil {
		return outputError("refs-all", err)
	}
	defer e.Close()

	res, err := e.Query().AllReferences(args[0])
	if err != nil {
		return outputError("refs-all", err)
	}
	out := allReferencesToCLI(res)
	n := 1 + len(out.Unrelated)
	return outputResult(CLIResult{Command: "refs-all", Results: out, TotalCount: &n})
}

var symbolAtCmd = &cobra.Command{
	Use:   "symbol-at <file> <line> <col>",
	Short: "Find the symbol declared or referenced at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runSymbolAt,
}

func runSymbolAt(cmd *cobra.Command, args []string) error {
	file, line, col, err := parsePosition(args)
	if err != nil {
		return outputError("symbol-at", err)
	}
	e, err := analyzeProject(cmd.Context())
	if err != nil {
		return outputError("symbol-at", err)
	}
	defer e.Close()

	sym, err := e.Query().SymbolAt(file, line, col)
	if err != nil {
		return outputError("symbol-at", err)
	}
	if sym == nil {
		return outputResult(CLIResult{Command: "symbol-at", Results: nil})
	}
	one := 1
	return outputResult(CLIResult{Command: "symbol-at", Results: liveSymbolToCLI(sym), TotalCount: &one})
}

var inferCmd = &cobra.Command{
	Use:   "infer <file> <line> <col>",
	Short: "Infer the type of the expression at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runInfer,
}

func runInfer(cmd *cobra.Command, args []string) error {
	file, line, col, err := parsePosition(args)
	if err != nil {
		return outputError("infer", err)
	}
	e, err := analyzeProject(cmd.Context())
	if err != nil {
		return outputError("infer", err)
	}
	defer e.Close()

	t, err := e.Query().InferAt(file, line, col)
	if err != nil {
		return outputError("infer", err)
	}
	one := 1
	return outputResult(CLIResult{Command: "infer", Results: typeToCLI(t), TotalCount: &one})
}

var profileCmd = &cobra.Command{
	Use:   "profile <file> [variable]",
	Short: "Show container usage profiles of a script",
	Long:  "Without a variable, lists every profile of the script. Profiles exist for untyped class-level Array and Dictionary variables.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError("profile", err)
	}
	e, err := analyzeProject(cmd.Context())
	if err != nil {
		return outputError("profile", err)
	}
	defer e.Close()
	q := e.Query()

	if len(args) == 2 {
		p, err := q.Profile(file, flagProfileClass, args[1])
		if err != nil {
			return outputError("profile", err)
		}
		if p == nil {
			return outputResult(CLIResult{Command: "profile", Results: nil})
		}
		one := 1
		return outputResult(CLIResult{Command: "profile", Results: profileToCLI(p), TotalCount: &one})
	}

	profiles, err := q.Profiles(file)
	if err != nil {
		return outputError("profile", err)
	}
	out := make([]CLIProfile, len(profiles))
	for i, p := range profiles {
		out[i] = profileToCLI(p)
	}
	n := len(out)
	return outputResult(CLIResult{Command: "profile", Results: out, TotalCount: &n})
}

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics [file]",
	Short: "Analyse the project and report diagnostics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiagnostics,
}

func runDiagnostics(cmd *cobra.Command, args []string) error {
	file := ""
	if len(args) > 0 {
		var err error
		if file, err = resolveFilePath(args[0]); err != nil {
			return outputError("diagnostics", err)
		}
	}
	e, err := analyzeProject(cmd.Context())
	if err != nil {
		return outputError("diagnostics", err)
	}
	defer e.Close()

	diags, err := e.Query().Diagnostics(file)
	if err != nil {
		return outputError("diagnostics", err)
	}
	out := diagnosticsToCLI(diags)
	n := len(out)
	return outputResult(CLIResult{Command: "diagnostics", Results: out, TotalCount: &n})
}
