package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/jward/gdlens"
	"github.com/jward/gdlens/internal/config"
	"github.com/jward/gdlens/internal/watcher"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Index a project and re-index whenever its files change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", watcher.DefaultDebounce, "quiet period before re-indexing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(targetDir)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg, resolveDBPath(cfg))
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	reindex(ctx, engine, cfg.Project.Root)

	excludes, err := compileExcludes(cfg)
	if err != nil {
		return err
	}
	w, err := watcher.New(cfg.Project.Root, func(paths []string) {
		slog.Info("files changed", "count", len(paths))
		reindex(ctx, engine, cfg.Project.Root)
	},
		watcher.WithDebounce(flagDebounce),
		watcher.WithExcludes(excludes...),
		watcher.WithLogger(slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	slog.Info("watching", "path", cfg.Project.Root)
	return w.Run(ctx)
}

// reindex runs a full batch analysis. Failures are logged so the watch
// loop keeps running.
func reindex(ctx context.Context, engine *gdlens.Engine, root string) {
	if err := engine.IndexDirectory(ctx, root); err != nil && ctx.Err() == nil {
		slog.Error("index failed", "path", root, "error", err)
	}
}

func compileExcludes(cfg *config.Config) ([]glob.Glob, error) {
	var out []glob.Glob
	for _, p := range cfg.Project.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}
