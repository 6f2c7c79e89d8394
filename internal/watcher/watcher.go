// Package watcher reports batches of changed project files, debounced.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultDebounce is the quiet period before a batch is reported.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches a project directory tree and calls onChange with the
// files that changed during each quiet period.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	excludes  []glob.Glob
	logger    *slog.Logger
	onChange  func([]string)

	callbackMu sync.Mutex
	pending    map[string]time.Time
	pendingMu  sync.Mutex
	timer      *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithExcludes skips files and directories whose root-relative slash path
// matches a glob.
func WithExcludes(patterns ...glob.Glob) Option {
	return func(w *Watcher) { w.excludes = append(w.excludes, patterns...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a Watcher for the tree under root.
func New(root string, onChange func([]string), opts ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsWatcher: fsw,
		root:      abs,
		debounce:  DefaultDebounce,
		logger:    slog.Default(),
		onChange:  onChange,
		pending:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is done or the underlying watcher fails to start.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watchRecursive(w.root); err != nil {
		return err
	}
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if !w.shouldExcludeDir(event.Name) {
				if err := w.watchRecursive(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				} else {
					w.enqueueExistingFiles(event.Name)
				}
			}
			return
		}
	}
	if w.shouldExcludeFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.scheduleChange(event.Name)
	}
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.shouldExcludeDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) matches(path string) bool {
	rel := w.rel(path)
	for _, g := range w.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// shouldExcludeDir skips hidden directories such as .godot and .git.
func (w *Watcher) shouldExcludeDir(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	return w.matches(path)
}

// shouldExcludeFile keeps only scripts, scenes and project settings.
func (w *Watcher) shouldExcludeFile(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, ".gd"), strings.HasSuffix(base, ".tscn"), base == "project.godot":
	default:
		return true
	}
	return w.matches(path)
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || w.shouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}

// Close stops the pending timer and the underlying watcher.
func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
