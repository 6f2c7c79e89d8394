package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// Runtime embeds a Risor VM and evaluates type-database scripts. A script
// declares classes, members, global functions and singletons that the
// engine built-ins do not cover (GDExtension classes, C# types, plugins):
//
//	define_class("Inventory", "Node")
//	define_method("Inventory", "add_item", "bool")
//	define_signal("Inventory", "changed")
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithRuntimeLogger routes the scripts' log.info/warn/error calls to l.
func WithRuntimeLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime resolving relative script paths and imports
// against scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadTypes runs the script at scriptPath and returns the types it
// declared.
func (r *Runtime) LoadTypes(ctx context.Context, scriptPath string) (*TypeDB, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	db := NewTypeDB()
	if err := r.eval(ctx, src, scriptPath, db); err != nil {
		return nil, err
	}
	return db, nil
}

// TypesFromSource runs Risor source directly. Useful for tests and for
// inline type declarations in configuration.
func (r *Runtime) TypesFromSource(ctx context.Context, source string) (*TypeDB, error) {
	db := NewTypeDB()
	if err := r.eval(ctx, source, "<inline>", db); err != nil {
		return nil, err
	}
	return db, nil
}

func (r *Runtime) eval(ctx context.Context, source, label string, db *TypeDB) error {
	globals := r.buildGlobals(db)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	_, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the set of globals exposed to type scripts.
func (r *Runtime) buildGlobals(db *TypeDB) map[string]any {
	return map[string]any{
		"define_class":     makeDefineClassFn(db),
		"define_method":    makeDefineMemberFn(db, "define_method", MemberMethod),
		"define_property":  makeDefineMemberFn(db, "define_property", MemberProperty),
		"define_signal":    makeDefineMemberFn(db, "define_signal", MemberSignal),
		"define_constant":  makeDefineMemberFn(db, "define_constant", MemberConstant),
		"define_function":  makeDefineFunctionFn(db),
		"define_singleton": makeDefineSingletonFn(db),
		"is_known_type":    makeIsKnownTypeFn(db),
		"log":              mustProxy(&logObject{logger: r.logger}),
	}
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
