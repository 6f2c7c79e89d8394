package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/gdlens"
	"github.com/jward/gdlens/internal/config"
	"github.com/jward/gdlens/internal/refs"
)

var (
	flagDB       string
	flagFormat   string
	flagConfig   string
	flagLogLevel string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "gdlens",
	Short:         "Semantic analysis of Godot GDScript projects",
	Long:          "gdlens analyses GDScript projects (symbols, type inference, cross-file references) and writes the result to a SQLite index for queries.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: store.path from gdlens.toml, .gdlens/index.db)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: gdlens.toml in the project root)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
	for _, c := range analyzeCmds {
		rootCmd.AddCommand(c)
	}
}

var flagForce bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Analyse a Godot project and write the index",
	Long:  "Parses scripts, scenes and project settings, analyses the project, and replaces the SQLite index with the result.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete database and reindex from scratch")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(targetDir)
	if err != nil {
		return err
	}
	dbPath := resolveDBPath(cfg)

	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing database for --force: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared database: %s\n", dbPath)
	}

	engine, err := openEngine(cfg, dbPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.IndexDirectory(cmd.Context(), cfg.Project.Root); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %s in %s\n", cfg.Project.Root, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	return nil
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findProjectRoot walks up from startDir looking for project.godot, then
// for a .git directory. Returns startDir if neither is found.
func findProjectRoot(startDir string) string {
	if dir, ok := findUp(startDir, func(dir string) bool {
		info, err := os.Stat(filepath.Join(dir, "project.godot"))
		return err == nil && !info.IsDir()
	}); ok {
		return dir
	}
	if dir, ok := findUp(startDir, func(dir string) bool {
		info, err := os.Stat(filepath.Join(dir, ".git"))
		return err == nil && info.IsDir()
	}); ok {
		return dir
	}
	return startDir
}

func findUp(startDir string, match func(string) bool) (string, bool) {
	dir := startDir
	for {
		if match(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// loadConfig reads --config, or gdlens.toml from the project root above
// dir, and installs the configured logger as the slog default.
func loadConfig(dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadDir(findProjectRoot(dir))
	}
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

// newLogger builds a stderr logger for the configured level and format.
func newLogger(c config.Log) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// resolveDBPath returns the database path from the --db flag or the config.
func resolveDBPath(cfg *config.Config) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(cfg.Project.Root, flagDB)
	}
	return cfg.Store.Path
}

// engineOptions maps the configuration onto Engine options.
func engineOptions(cfg *config.Config) []gdlens.Option {
	opts := []gdlens.Option{
		gdlens.WithRoot(cfg.Project.Root),
		gdlens.WithParallel(cfg.Analysis.Parallel),
		gdlens.WithWorkers(cfg.Analysis.Workers),
		gdlens.WithLogger(slog.Default()),
		gdlens.WithReferenceOptions(
			refs.WithDuckTyping(cfg.Analysis.DuckTyping),
			refs.WithContractStrings(cfg.Analysis.ContractStrings),
		),
	}
	if len(cfg.Project.Exclude) > 0 {
		opts = append(opts, gdlens.WithExcludes(cfg.Project.Exclude...))
	}
	if cfg.Runtime.TypesScript != "" {
		opts = append(opts, gdlens.WithTypesScript(cfg.Runtime.TypesScript))
	}
	return opts
}

// openEngine creates the database directory and an Engine on dbPath.
func openEngine(cfg *config.Config, dbPath string) (*gdlens.Engine, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	engine, err := gdlens.New(dbPath, engineOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return engine, nil
}
