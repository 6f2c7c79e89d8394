package gdlens

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/parser"
	"github.com/jward/gdlens/internal/project"
	"github.com/jward/gdlens/internal/refs"
	"github.com/jward/gdlens/internal/runtime"
	"github.com/jward/gdlens/internal/scene"
	"github.com/jward/gdlens/internal/store"
)

// Engine orchestrates the gdlens pipeline: file discovery, parsing,
// project analysis, persistence of the index, and query access.
type Engine struct {
	store  *store.Store
	logger *slog.Logger

	useParallel bool
	workers     int
	patterns    []string
	excludes    []glob.Glob
	typesScript string
	refOpts     []refs.Option

	mu      sync.RWMutex
	root    string
	project *project.Project
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallel controls parallel parsing and persistence. When true
// (default), files are parsed by a bounded worker pool and committed to
// SQLite in path order. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithWorkers bounds the worker pool. Zero or less means one worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithExcludes skips files whose project-relative slash path matches any
// of the glob patterns.
func WithExcludes(patterns ...string) Option {
	return func(e *Engine) {
		e.patterns = append(e.patterns, patterns...)
	}
}

// WithTypesScript loads a Risor script declaring extra engine types
// before analysis.
func WithTypesScript(path string) Option {
	return func(e *Engine) {
		e.typesScript = path
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRoot sets the project root used to map paths in queries before
// the first index. IndexFiles replaces it.
func WithRoot(dir string) Option {
	return func(e *Engine) {
		if abs, err := filepath.Abs(dir); err == nil {
			e.root = abs
		}
	}
}

// WithReferenceOptions configures the reference collector used by queries.
func WithReferenceOptions(opts ...refs.Option) Option {
	return func(e *Engine) {
		e.refOpts = append(e.refOpts, opts...)
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:      slog.Default(),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, p := range e.patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("gdlens: exclude pattern %q: %w", p, err)
		}
		e.excludes = append(e.excludes, g)
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("gdlens: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("gdlens: migrate: %w", err)
	}
	e.store = s
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Project returns the project built by the last successful index, or nil.
func (e *Engine) Project() *project.Project {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.project
}

// Root returns the directory of the last index.
func (e *Engine) Root() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.root
}

// Query returns a new QueryBuilder over the last built project and the Store.
func (e *Engine) Query() *QueryBuilder {
	e.mu.RLock()
	defer e.mu.RUnlock()
	q := &QueryBuilder{store: e.store, root: e.root, project: e.project, workers: e.workerCount(0)}
	if e.project != nil {
		q.collector = refs.NewCollector(e.project, e.refOpts...)
	}
	return q
}

// source is one loaded project file.
type source struct {
	abs   string
	res   string
	kind  string
	hash  string
	lines int

	tree     *ast.Tree
	scene    *scene.Scene
	settings *scene.ProjectFile
}

// ResPath maps a file under root to its res:// path.
func ResPath(root, file string) string {
	if strings.HasPrefix(file, "res://") {
		return file
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = file
	}
	return "res://" + filepath.ToSlash(rel)
}

// fileKind classifies a path, or returns "" for files gdlens ignores.
func fileKind(p string) string {
	switch {
	case strings.HasSuffix(p, ".gd"):
		return store.KindScript
	case strings.HasSuffix(p, ".tscn"):
		return store.KindScene
	case filepath.Base(p) == "project.godot":
		return store.KindProject
	}
	return ""
}

// loadSource reads and parses one file. Script parse errors are kept on
// the tree as diagnostics; scene and project files that fail to parse are
// reported as errors.
func loadSource(root, abs string) (*source, error) {
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	src := &source{
		abs:   abs,
		res:   ResPath(root, abs),
		kind:  fileKind(abs),
		hash:  store.ContentHash(content),
		lines: bytes.Count(content, []byte{'\n'}) + 1,
	}
	switch src.kind {
	case store.KindScript:
		src.tree = parser.Parse(src.res, content)
	case store.KindScene:
		if src.scene, err = scene.Parse(src.res, content); err != nil {
			return nil, fmt.Errorf("parse scene: %w", err)
		}
	case store.KindProject:
		if src.settings, err = scene.ParseProject(content); err != nil {
			return nil, fmt.Errorf("parse project settings: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file type")
	}
	return src, nil
}

// IndexFiles analyses the given files of the project rooted at root and
// replaces the persisted index with the result. The whole project is
// re-analysed on every call.
//
// Errors on individual files are logged and skipped; analysis continues
// with the files that loaded.
func (e *Engine) IndexFiles(ctx context.Context, root string, paths []string) error {
	start := time.Now()
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("gdlens: resolve root: %w", err)
	}

	paths = supported(paths)
	var sources []*source
	var errs []error
	if e.useParallel {
		sources, errs = e.loadSourcesParallel(ctx, root, paths)
	} else {
		sources, errs = e.loadSourcesSerial(ctx, root, paths)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var extra []runtime.Provider
	if e.typesScript != "" {
		rt := runtime.NewRuntime(filepath.Dir(e.typesScript), runtime.WithRuntimeLogger(e.logger))
		db, err := rt.LoadTypes(ctx, e.typesScript)
		if err != nil {
			errs = append(errs, fmt.Errorf("types script: %w", err))
		} else {
			extra = append(extra, db)
			e.logger.Debug("loaded types script", "path", e.typesScript, "count", len(db.Types()))
		}
	}

	p := buildProject(sources, extra)
	for _, w := range p.Warnings() {
		e.logger.Warn("project", "warning", w)
	}

	if err := e.persist(ctx, p, sources); err != nil {
		return fmt.Errorf("gdlens: persist: %w", err)
	}

	e.mu.Lock()
	e.root, e.project = root, p
	e.mu.Unlock()

	e.logger.Info("indexed project",
		"path", root,
		"count", len(sources),
		"scripts", len(p.Paths()),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	for _, err := range errs {
		e.logger.Error("index file", "error", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

// supported drops paths gdlens does not analyse.
func supported(paths []string) []string {
	var out []string
	for _, p := range paths {
		if fileKind(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) loadSourcesSerial(ctx context.Context, root string, paths []string) ([]*source, []error) {
	var sources []*source
	var errs []error
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		src, err := loadSource(root, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", p, err))
			continue
		}
		sources = append(sources, src)
	}
	sortSources(sources)
	return sources, errs
}

func sortSources(sources []*source) {
	sort.Slice(sources, func(i, j int) bool { return sources[i].res < sources[j].res })
}

// buildProject assembles scripts, scenes and settings into a Project.
func buildProject(sources []*source, extra []runtime.Provider) *project.Project {
	var trees []*ast.Tree
	var scenes []*scene.Scene
	var opts []project.Option
	for _, src := range sources {
		switch {
		case src.tree != nil:
			trees = append(trees, src.tree)
		case src.scene != nil:
			scenes = append(scenes, src.scene)
		case src.settings != nil && src.res == "res://project.godot":
			opts = append(opts, project.WithSettings(src.settings))
		}
	}
	opts = append(opts, project.WithScenes(scenes...))
	for _, p := range extra {
		opts = append(opts, project.WithProvider(p))
	}
	return project.Build(trees, opts...)
}

// skipDirs are excluded from the filesystem walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"addons_cache": true,
}

// IndexDirectory discovers the project files under root and indexes them.
// If root is inside a git repository, uses git ls-files to respect
// .gitignore. Falls back to a filesystem walk (skipping hidden dirs such
// as .godot) if git is unavailable.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := e.ListFiles(root)
	if err != nil {
		return err
	}
	return e.IndexFiles(ctx, root, paths)
}

// ListFiles returns the project files under root that IndexDirectory
// would analyse.
func (e *Engine) ListFiles(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("gdlens: resolve root: %w", err)
	}
	paths, err := gitListFiles(root)
	if err != nil {
		e.logger.Debug("git ls-files unavailable, walking directory", "path", root, "error", err)
		paths, err = walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	var out []string
	for _, p := range paths {
		if fileKind(p) == "" || e.excluded(root, p) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (e *Engine) excluded(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range e.excludes {
		if g.Match(rel) || g.Match(path.Base(rel)) {
			return true
		}
	}
	return false
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root.
func gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paths = append(paths, filepath.Join(root, line))
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
