// Package project aggregates per-file semantic models: script types and
// their inheritance, autoload singletons, scenes and signal connections.
//
// A Project is built once from parsed trees and is read-only afterwards.
package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/runtime"
	"github.com/jward/gdlens/internal/scene"
	"github.com/jward/gdlens/internal/semantic"
	"github.com/jward/gdlens/internal/symbols"
)

// Option configures Build.
type Option func(*options)

type options struct {
	scenes    []*scene.Scene
	settings  *scene.ProjectFile
	providers []runtime.Provider
}

// WithScenes adds parsed .tscn files.
func WithScenes(scenes ...*scene.Scene) Option {
	return func(o *options) { o.scenes = append(o.scenes, scenes...) }
}

// WithSettings supplies the parsed project.godot.
func WithSettings(pf *scene.ProjectFile) Option {
	return func(o *options) { o.settings = pf }
}

// WithProvider adds a provider consulted after the project's own scripts,
// autoloads and scenes but before the engine built-ins.
func WithProvider(p runtime.Provider) Option {
	return func(o *options) {
		if p != nil {
			o.providers = append(o.providers, p)
		}
	}
}

type attachment struct {
	scene string
	node  string
}

// Project is the analysed set of scripts.
type Project struct {
	Scripts   *ScriptProvider
	Autoloads *runtime.AutoloadProvider
	Scenes    *runtime.SceneProvider
	Signals   *SignalRegistry

	paths    []string
	tables   map[string]*symbols.Table
	models   map[string]*semantic.Model
	building map[string]bool
	attached map[string]attachment
	provider *runtime.Composite
	warnings []string
}

// Build analyses trees. Nil trees are skipped; when two trees share a
// path the first wins.
func Build(trees []*ast.Tree, opts ...Option) *Project {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	p := &Project{
		tables:   make(map[string]*symbols.Table),
		models:   make(map[string]*semantic.Model),
		building: make(map[string]bool),
		attached: make(map[string]attachment),
	}

	byPath := make(map[string]*ast.Tree, len(trees))
	for _, t := range trees {
		if t == nil {
			continue
		}
		if _, dup := byPath[t.Path]; dup {
			p.warnf("duplicate file %s ignored", t.Path)
			continue
		}
		byPath[t.Path] = t
		p.paths = append(p.paths, t.Path)
	}
	sort.Strings(p.paths)

	byType := make(map[string]string, len(p.paths))
	for _, path := range p.paths {
		table := symbols.Build(byPath[path])
		p.tables[path] = table
		byType[path] = path
		name := table.ClassName()
		if name == "" {
			continue
		}
		if prev, dup := byType[name]; dup {
			p.warnf("class_name %s declared by %s and %s; using %s", name, prev, path, prev)
			continue
		}
		byType[name] = path
	}

	p.Scripts = newScriptProvider(p.tables, byType)
	p.Scripts.model = p.model
	p.Scenes = runtime.NewSceneProvider(o.scenes, p.TypeOf)
	var autoloads []scene.Autoload
	if o.settings != nil {
		autoloads = o.settings.Autoloads
	}
	p.Autoloads = runtime.NewAutoloadProvider(autoloads, p.TypeOf)

	chain := []runtime.Provider{p.Scripts, p.Autoloads, p.Scenes}
	chain = append(chain, o.providers...)
	chain = append(chain, runtime.Builtins())
	p.provider = runtime.NewComposite(chain...)

	p.attach(o.scenes)
	for _, path := range p.paths {
		p.model(path)
	}
	p.Signals = newSignalRegistry(p, o.scenes)

	p.Scripts.seal()
	for _, m := range p.models {
		m.Freeze()
	}
	return p
}

func (p *Project) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// attach records which scene node each script is attached to. The first
// scene in path order wins.
func (p *Project) attach(scenes []*scene.Scene) {
	sorted := append([]*scene.Scene(nil), scenes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	for _, s := range sorted {
		for _, n := range s.Nodes {
			if n.Script == "" {
				continue
			}
			if _, ok := p.attached[n.Script]; ok {
				continue
			}
			p.attached[n.Script] = attachment{scene: s.Path, node: n.Path()}
		}
	}
}

// model returns the model for path, building it on first use. It returns
// nil while the model for path is itself being built.
func (p *Project) model(path string) *semantic.Model {
	if m, ok := p.models[path]; ok {
		return m
	}
	table, ok := p.tables[path]
	if !ok || p.building[path] {
		return nil
	}
	p.building[path] = true
	defer delete(p.building, path)

	selfType, _ := p.Scripts.TypeOf(path)
	opts := []infer.Option{
		infer.WithProvider(p.provider),
		infer.WithSelfType(selfType),
		infer.WithScriptTypes(p.TypeOf),
	}
	if at, ok := p.attached[path]; ok {
		opts = append(opts, infer.WithNodeTypes(func(nodePath string) (string, bool) {
			if at.node != "." && !strings.HasPrefix(nodePath, "%") {
				nodePath = at.node + "/" + nodePath
			}
			return p.Scenes.NodeType(at.scene, nodePath)
		}))
	}
	m := semantic.NewWithTable(table, opts...)
	p.models[path] = m
	return m
}

// Paths returns every script path in sorted order.
func (p *Project) Paths() []string { return p.paths }

// Model returns the model of the script at path, or nil.
func (p *Project) Model(path string) *semantic.Model { return p.models[path] }

// Models returns every model in path order.
func (p *Project) Models() []*semantic.Model {
	out := make([]*semantic.Model, 0, len(p.paths))
	for _, path := range p.paths {
		out = append(out, p.models[path])
	}
	return out
}

// Provider returns the full provider chain.
func (p *Project) Provider() runtime.Provider { return p.provider }

// Warnings returns problems found while assembling the project.
func (p *Project) Warnings() []string { return p.warnings }

// TypeOf resolves a res:// path to the type it declares: the script's
// type, or the scene path for scenes.
func (p *Project) TypeOf(path string) (string, bool) {
	if t, ok := p.Scripts.TypeOf(path); ok {
		return t, true
	}
	if p.Scenes != nil {
		if _, ok := p.Scenes.Scene(path); ok {
			return path, true
		}
	}
	return "", false
}

// FileOf returns the script declaring typeName.
func (p *Project) FileOf(typeName string) (string, bool) { return p.Scripts.Path(typeName) }

// SceneOf returns the scene a script is attached to.
func (p *Project) SceneOf(scriptPath string) (string, bool) {
	at, ok := p.attached[scriptPath]
	return at.scene, ok
}

// InheritanceChain returns typeName followed by its ancestors, nearest
// first. Cycles end the chain.
func (p *Project) InheritanceChain(typeName string) []string {
	var chain []string
	seen := make(map[string]bool)
	for t := typeName; t != "" && !seen[t]; {
		seen[t] = true
		chain = append(chain, t)
		base, ok := p.provider.GetBaseType(t)
		if !ok {
			break
		}
		t = base
	}
	return chain
}

// IsSubtype reports whether from is to or inherits from it.
func (p *Project) IsSubtype(from, to string) bool { return p.provider.IsAssignableTo(from, to) }

// HierarchyRoot returns the outermost ancestor of typeName that is
// declared by a project script.
func (p *Project) HierarchyRoot(typeName string) string {
	root := typeName
	for _, t := range p.InheritanceChain(typeName) {
		if p.Scripts.IsKnownType(t) {
			root = t
		}
	}
	return root
}

// Subtypes returns the script types that inherit from typeName, directly
// or indirectly, in path order.
func (p *Project) Subtypes(typeName string) []string {
	var out []string
	for _, path := range p.paths {
		t, _ := p.Scripts.TypeOf(path)
		if t != typeName && p.IsSubtype(t, typeName) {
			out = append(out, t)
		}
	}
	return out
}

// Diagnostics returns the diagnostics of every file in path order.
func (p *Project) Diagnostics() []semantic.Diagnostic {
	var out []semantic.Diagnostic
	for _, m := range p.Models() {
		out = append(out, m.Diagnostics()...)
	}
	return out
}
