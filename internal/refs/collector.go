// Package refs finds every reference to a symbol across a project:
// per-file references, overrides and inherited uses, duck-typed member
// access, signal connections, string-named calls and type usages.
package refs

import (
	"fmt"
	"sort"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/project"
	"github.com/jward/gdlens/internal/semantic"
	"github.com/jward/gdlens/internal/symbols"
)

// Target is what to search for: a declared symbol, or a bare name
// resolved against every declaration in the project.
type Target struct {
	Name   string
	Symbol *symbols.Symbol
}

// ByName targets every declaration named name.
func ByName(name string) Target { return Target{Name: name} }

// BySymbol targets one declaration.
func BySymbol(sym *symbols.Symbol) Target {
	if sym == nil {
		return Target{}
	}
	return Target{Name: sym.Name, Symbol: sym}
}

// Result is the reference set of one declaration. Symbol is nil when the
// target is a script class named by class_name.
type Result struct {
	Name          string
	Symbol        *symbols.Symbol
	DeclaringFile string
	DeclaringType string
	References    []semantic.Reference
	Warnings      []string
}

// Files returns the distinct files holding references, sorted.
func (r Result) Files() []string {
	seen := make(map[string]bool)
	var out []string
	for _, ref := range r.References {
		if !seen[ref.File] {
			seen[ref.File] = true
			out = append(out, ref.File)
		}
	}
	sort.Strings(out)
	return out
}

func (r Result) filter(file string) Result {
	if file == "" {
		return r
	}
	refs := r.References
	r.References = nil
	for _, ref := range refs {
		if ref.File == file {
			r.References = append(r.References, ref)
		}
	}
	return r
}

// AllResult splits the declarations sharing a name into unrelated
// hierarchies. Each unrelated result is confined to its hierarchy's
// files; the primary never reaches into a file owned only by another.
type AllResult struct {
	Primary   Result
	Unrelated []Result
}

// Option configures a Collector.
type Option func(*Collector)

// WithDuckTyping enables or disables Potential matches on receivers
// whose type is unknown or only loosely related. Enabled by default.
func WithDuckTyping(on bool) Option { return func(c *Collector) { c.duck = on } }

// WithContractStrings enables or disables matching string-named calls
// such as call("name") and has_method("name"). Enabled by default.
func WithContractStrings(on bool) Option { return func(c *Collector) { c.contracts = on } }

// Collector resolves references over a built project. It holds no
// per-query state and may be used concurrently.
type Collector struct {
	project   *project.Project
	duck      bool
	contracts bool
}

// NewCollector returns a Collector over p. It panics if p is nil.
func NewCollector(p *project.Project, opts ...Option) *Collector {
	if p == nil {
		panic("refs: nil project")
	}
	c := &Collector{project: p, duck: true, contracts: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectReferences returns the references to target. A name-only target
// resolves to the primary hierarchy of CollectAllReferences. A non-empty
// fileFilter keeps only references in that file.
func (c *Collector) CollectReferences(target Target, fileFilter string) Result {
	if target.Symbol == nil {
		return c.CollectAllReferences(target.Name).Primary.filter(fileFilter)
	}
	return c.collectSymbol(target.Symbol).filter(fileFilter)
}

// group is one hierarchy of declarations sharing a name. files is its
// file-set: the root file plus every script assignable to the root.
type group struct {
	rootFile string
	files    map[string]bool
	collect  func() Result
	res      Result
}

// CollectAllReferences collects every declaration named name, grouped by
// hierarchy. The primary result is the hierarchy with the largest
// file-set; ties go to the group whose root file path sorts first.
func (c *Collector) CollectAllReferences(name string) AllResult {
	p := c.project
	groups := make(map[string]*group)
	var order []string
	addGroup := func(key, rootFile string, files map[string]bool, collect func() Result) {
		if _, ok := groups[key]; ok {
			return
		}
		groups[key] = &group{rootFile: rootFile, files: files, collect: collect}
		order = append(order, key)
	}

	for _, path := range p.Paths() {
		m := p.Model(path)
		if m.Table.ClassName() == name {
			if file, _ := p.FileOf(name); file == path {
				addGroup("class:"+name, path, c.fileSet(path, name), func() Result { return c.collectClass(path) })
			}
		}
		if sym := m.Table.ClassMember(name); sym != nil {
			root := c.virtualRoot(m.TypeName(), name)
			rootFile, ok := p.FileOf(root)
			if !ok {
				rootFile = path
			}
			rep := sym
			if rm := p.Model(rootFile); rm != nil {
				if rs := rm.Table.ClassMember(name); rs != nil {
					rep = rs
				}
			}
			addGroup("member:"+root, rootFile, c.fileSet(rootFile, root), func() Result { return c.collectSymbol(rep) })
		}
		for _, cls := range m.Table.All() {
			if cls.Kind != symbols.Class {
				continue
			}
			scope := m.Table.InnerClass(cls.Name)
			if scope == nil {
				continue
			}
			if sym := scope.Local(name); sym != nil {
				addGroup("inner:"+path+":"+cls.Name, path, map[string]bool{path: true}, func() Result { return c.collectSymbol(sym) })
			}
		}
	}

	if len(order) == 0 {
		return AllResult{Primary: Result{
			Name:     name,
			Warnings: []string{fmt.Sprintf("no declaration named %q", name)},
		}}
	}

	list := make([]*group, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.res = g.collect()
		list = append(list, g)
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := len(list[i].files), len(list[j].files)
		if a != b {
			return a > b
		}
		return list[i].rootFile < list[j].rootFile
	})
	confine(list)

	out := AllResult{Primary: list[0].res}
	for _, g := range list[1:] {
		out.Unrelated = append(out.Unrelated, g.res)
	}
	return out
}

// fileSet returns rootFile plus every script whose type is assignable to
// root.
func (c *Collector) fileSet(rootFile, root string) map[string]bool {
	set := map[string]bool{rootFile: true}
	for _, path := range c.project.Paths() {
		if t, ok := c.project.TypeOf(path); ok && c.project.IsSubtype(t, root) {
			set[path] = true
		}
	}
	return set
}

// confine drops the primary's references in files that belong only to
// other groups, and restricts every other group to its own file-set.
// list[0] is the primary.
func confine(list []*group) {
	primary := list[0]
	foreign := make(map[string]bool)
	for _, g := range list[1:] {
		for f := range g.files {
			if !primary.files[f] {
				foreign[f] = true
			}
		}
	}
	primary.res.References = keepFiles(primary.res.References, func(f string) bool { return !foreign[f] })
	for _, g := range list[1:] {
		g.res.References = keepFiles(g.res.References, func(f string) bool { return g.files[f] })
	}
}

func keepFiles(refs []semantic.Reference, keep func(file string) bool) []semantic.Reference {
	var out []semantic.Reference
	for _, ref := range refs {
		if keep(ref.File) {
			out = append(out, ref)
		}
	}
	return out
}

// virtualRoot returns the outermost script ancestor of class that
// declares name; overrides of one virtual member share it.
func (c *Collector) virtualRoot(class, name string) string {
	root := class
	chain := c.project.InheritanceChain(class)
	for _, t := range chain[min(1, len(chain)):] {
		path, ok := c.project.FileOf(t)
		if !ok {
			continue
		}
		if m := c.project.Model(path); m != nil && m.Table.ClassMember(name) != nil {
			root = t
		}
	}
	return root
}

func (c *Collector) collectSymbol(sym *symbols.Symbol) Result {
	res := Result{Name: sym.Name, Symbol: sym, DeclaringFile: sym.File}
	m := c.project.Model(sym.File)
	if m == nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s is not part of the project", sym.File))
		return res
	}
	q := c.newQuery(m, sym)
	res.DeclaringType = q.class

	q.perFile()
	if sym.IsClassMember() {
		q.hierarchy()
		q.duckTyped()
		if sym.Kind == symbols.Method {
			q.signals()
		}
		if c.contracts {
			q.contractStrings()
		}
	}
	if sym.Kind == symbols.Class {
		q.typeUsage(m)
	}
	res.References = q.acc.sorted()
	return res
}

// collectClass collects references to the script class declared by
// class_name in path.
func (c *Collector) collectClass(path string) Result {
	m := c.project.Model(path)
	name := m.Table.ClassName()
	res := Result{Name: name, DeclaringFile: path, DeclaringType: name}
	acc := newAccumulator()
	if id, tok, ok := classNameToken(m.Tree); ok {
		acc.add(semantic.NewReference(path, id, tok, semantic.Declaration, semantic.Strict))
	}
	for _, other := range c.project.Models() {
		q := &query{c: c, name: name, acc: acc}
		q.typeUsage(other)
		for _, occ := range other.Occurrences(name) {
			if occ.Member || occ.Kind == semantic.Declaration || other.Table.Lookup(name, occ.Pos()) != nil {
				continue
			}
			acc.add(semantic.NewReference(other.Path, occ.Node, occ.Token, semantic.TypeUsage, semantic.Strict))
		}
	}
	res.References = acc.sorted()
	return res
}

func classNameToken(tree *ast.Tree) (ast.NodeID, ast.Token, bool) {
	root := tree.Node(tree.Root)
	if root == nil {
		return ast.NoNode, ast.Token{}, false
	}
	for _, id := range root.Children {
		if n := tree.Node(id); n != nil && n.Kind == ast.KindClassName {
			return id, n.Name, true
		}
	}
	return ast.NoNode, ast.Token{}, false
}
