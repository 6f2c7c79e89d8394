package refs

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/parser"
	"github.com/jward/gdlens/internal/project"
	"github.com/jward/gdlens/internal/scene"
	"github.com/jward/gdlens/internal/semantic"
)

func newProject(t *testing.T, files map[string]string) *project.Project {
	t.Helper()
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var trees []*ast.Tree
	var opts []project.Option
	for _, path := range paths {
		if strings.HasSuffix(path, ".tscn") {
			s, err := scene.Parse(path, []byte(files[path]))
			require.NoError(t, err)
			opts = append(opts, project.WithScenes(s))
			continue
		}
		trees = append(trees, parser.Parse(path, []byte(files[path])))
	}
	return project.Build(trees, opts...)
}

// site is the comparable projection of a reference.
type site struct {
	File string
	Line int
	Kind string
	Conf string
}

func sites(refs []semantic.Reference) []site {
	out := make([]site, 0, len(refs))
	for _, r := range refs {
		out = append(out, site{File: r.File, Line: r.Line, Kind: r.Kind.String(), Conf: r.Confidence.String()})
	}
	return out
}

func assertUniquePositions(t *testing.T, refs []semantic.Reference) {
	t.Helper()
	seen := make(map[posKey]bool)
	for _, r := range refs {
		k := keyOf(r)
		assert.False(t, seen[k], "duplicate reference at %s:%d:%d", r.File, r.Line, r.Column)
		seen[k] = true
	}
}

var entityFiles = map[string]string{
	"res://entity.gd": `class_name Entity
extends Node

signal died

var health := 10

func update(delta: float) -> void:
	health -= 1

func take_damage(amount: int) -> void:
	health -= amount
	if health <= 0:
		died.emit()
`,
	"res://enemy.gd": `class_name Enemy
extends Entity

func update(delta: float) -> void:
	super.update(delta)
	health += 1

func _ready():
	take_damage(1)
	if has_method("take_damage"):
		call("take_damage", 2)
`,
	"res://game.gd": `extends Node

var enemy: Enemy
var things = []

func _process(delta):
	enemy.update(delta)
	enemy.take_damage(3)
	for t in things:
		t.take_damage(1)
	var e := Entity.new()
	e.health = 5
	if e is Enemy:
		pass
`,
}

func member(t *testing.T, p *project.Project, path, name string) Target {
	t.Helper()
	m := p.Model(path)
	require.NotNil(t, m, path)
	sym := m.Table.ClassMember(name)
	require.NotNil(t, sym, "%s in %s", name, path)
	return BySymbol(sym)
}

func TestCollectReferences_OverrideFamily(t *testing.T) {
	t.Parallel()
	p := newProject(t, entityFiles)
	c := NewCollector(p)

	res := c.CollectReferences(member(t, p, "res://entity.gd", "update"), "")
	want := []site{
		{"res://enemy.gd", 3, "override", "strict"},
		{"res://enemy.gd", 4, "super_call", "strict"},
		{"res://entity.gd", 7, "declaration", "strict"},
		{"res://game.gd", 6, "call", "strict"},
	}
	if diff := cmp.Diff(want, sites(res.References)); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Entity", res.DeclaringType)
	assert.Equal(t, "res://entity.gd", res.DeclaringFile)

	// Starting from the subclass yields the same roles: the subclass
	// declaration overrides, the root stays the declaration.
	res = c.CollectReferences(member(t, p, "res://enemy.gd", "update"), "")
	want = []site{
		{"res://enemy.gd", 3, "override", "strict"},
		{"res://enemy.gd", 4, "super_call", "strict"},
		{"res://entity.gd", 7, "declaration", "strict"},
		{"res://game.gd", 6, "call", "strict"},
	}
	if diff := cmp.Diff(want, sites(res.References)); diff != "" {
		t.Errorf("references from override mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, res.References[0].IsOverride)
	assert.Equal(t, "overrides Entity.update", res.References[0].Reason)
	assert.False(t, res.References[2].IsOverride)
}

func TestCollectReferences_EngineVirtualOverride(t *testing.T) {
	t.Parallel()
	p := newProject(t, map[string]string{
		"res://base.gd": "class_name Base\nextends Node\nfunc _ready():\n\tpass\nfunc helper():\n\tpass\n",
		"res://leaf.gd": "class_name Leaf\nextends Base\nfunc _ready():\n\tpass\n",
	})
	c := NewCollector(p)

	res := c.CollectReferences(member(t, p, "res://base.gd", "_ready"), "")
	want := []site{
		{"res://base.gd", 2, "override", "strict"},
		{"res://leaf.gd", 2, "override", "strict"},
	}
	if diff := cmp.Diff(want, sites(res.References)); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "overrides Node._ready", res.References[0].Reason)
	assert.Equal(t, "overrides Base._ready", res.References[1].Reason)

	// A method no ancestor declares stays a plain declaration.
	res = c.CollectReferences(member(t, p, "res://base.gd", "helper"), "")
	require.Len(t, res.References, 1)
	assert.Equal(t, semantic.Declaration, res.References[0].Kind)
	assert.False(t, res.References[0].IsOverride)
}

func TestCollectReferences_InheritedDuckAndContractStrings(t *testing.T) {
	t.Parallel()
	p := newProject(t, entityFiles)
	res := NewCollector(p).CollectReferences(member(t, p, "res://entity.gd", "take_damage"), "")
	assertUniquePositions(t, res.References)

	want := []site{
		{"res://enemy.gd", 8, "call", "strict"},
		{"res://enemy.gd", 9, "contract_string", "strict"},
		{"res://enemy.gd", 10, "contract_string", "strict"},
		{"res://entity.gd", 10, "declaration", "strict"},
		{"res://game.gd", 7, "call", "strict"},
		{"res://game.gd", 9, "call", "potential"},
	}
	if diff := cmp.Diff(want, sites(res.References)); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, res.References[0].IsInherited)
	assert.Contains(t, res.References[5].Reason, "receiver type unknown")
}

func TestCollectReferences_OptionsDisablePasses(t *testing.T) {
	t.Parallel()
	p := newProject(t, entityFiles)
	c := NewCollector(p, WithDuckTyping(false), WithContractStrings(false))
	res := c.CollectReferences(member(t, p, "res://entity.gd", "take_damage"), "")
	for _, r := range res.References {
		assert.Equal(t, semantic.Strict, r.Confidence)
		assert.NotEqual(t, semantic.ContractString, r.Kind)
	}
	assert.Len(t, res.References, 3)
}

func TestCollectReferences_VariableAcrossFiles(t *testing.T) {
	t.Parallel()
	p := newProject(t, entityFiles)
	res := NewCollector(p).CollectReferences(member(t, p, "res://entity.gd", "health"), "")

	want := []site{
		{"res://enemy.gd", 5, "write", "strict"},
		{"res://entity.gd", 5, "declaration", "strict"},
		{"res://entity.gd", 8, "write", "strict"},
		{"res://entity.gd", 11, "write", "strict"},
		{"res://entity.gd", 12, "read", "strict"},
		{"res://game.gd", 11, "write", "strict"},
	}
	if diff := cmp.Diff(want, sites(res.References)); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}

	var decls int
	for _, r := range res.References {
		if r.Kind == semantic.Declaration {
			decls++
		}
	}
	assert.Equal(t, 1, decls)
}

func TestCollectReferences_FileFilterAndLocals(t *testing.T) {
	t.Parallel()
	p := newProject(t, entityFiles)
	c := NewCollector(p)

	res := c.CollectReferences(ByName("take_damage"), "res://game.gd")
	require.Len(t, res.References, 2)
	for _, r := range res.References {
		assert.Equal(t, "res://game.gd", r.File)
	}

	m := p.Model("res://game.gd")
	local := m.FindSymbol("e")
	require.NotNil(t, local)
	res = c.CollectReferences(BySymbol(local), "")
	require.Len(t, res.References, 3)
	assert.Equal(t, semantic.Declaration, res.References[0].Kind)
	assert.Equal(t, []string{"res://game.gd"}, res.Files())
}

func TestCollectAllReferences_ClassName(t *testing.T) {
	t.Parallel()
	p := newProject(t, entityFiles)
	all := NewCollector(p).CollectAllReferences("Enemy")
	assert.Empty(t, all.Unrelated)

	want := []site{
		{"res://enemy.gd", 0, "declaration", "strict"},
		{"res://game.gd", 2, "type_usage", "strict"},
		{"res://game.gd", 12, "type_usage", "strict"},
	}
	if diff := cmp.Diff(want, sites(all.Primary.References)); diff != "" {
		t.Errorf("type usages mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, all.Primary.Symbol)
}

func TestCollectAllReferences_UnrelatedStayInTheirFileSets(t *testing.T) {
	t.Parallel()
	p := newProject(t, map[string]string{
		"res://a.gd": "class_name A\nextends Node\nfunc update():\n\tpass\n",
		"res://b.gd": "class_name B\nextends Node\nfunc update():\n\tpass\n",
		"res://c.gd": "extends Node\nvar a: A\nfunc f(x):\n\ta.update()\n\tx.update()\n",
		"res://d.gd": "extends Node\nvar b: B\nfunc g():\n\tb.update()\n",
	})
	all := NewCollector(p).CollectAllReferences("update")
	require.Len(t, all.Unrelated, 1)

	assert.Equal(t, "A", all.Primary.DeclaringType, "equal file-sets fall back to the root path")
	assert.Equal(t, []string{"res://a.gd", "res://c.gd"}, all.Primary.Files())
	assert.Equal(t, "B", all.Unrelated[0].DeclaringType)
	assert.Equal(t, []string{"res://b.gd"}, all.Unrelated[0].Files(),
		"callers outside the hierarchy are not reported for an unrelated group")

	seen := make(map[string]string)
	for _, res := range append([]Result{all.Primary}, all.Unrelated...) {
		assertUniquePositions(t, res.References)
		for _, f := range res.Files() {
			prev, dup := seen[f]
			assert.False(t, dup, "%s in both %s and %s", f, prev, res.DeclaringType)
			seen[f] = res.DeclaringType
		}
	}
}

func TestCollectAllReferences_PrimaryHasLargestFileSet(t *testing.T) {
	t.Parallel()
	p := newProject(t, map[string]string{
		"res://a.gd":  "class_name A\nextends Node\nfunc update():\n\tpass\n",
		"res://a1.gd": "class_name A1\nextends A\n",
		"res://a2.gd": "class_name A2\nextends A\n",
		"res://a3.gd": "class_name A3\nextends A1\n",
		"res://b.gd":  "class_name B\nextends Node\nfunc update():\n\tpass\nfunc poke(x):\n\tx.update()\n",
		"res://m1.gd": "extends Node\nvar b: B\nfunc f():\n\tb.update()\n",
		"res://m2.gd": "extends Node\nvar b: B\nfunc g():\n\tb.update()\n",
	})
	all := NewCollector(p).CollectAllReferences("update")
	require.Len(t, all.Unrelated, 1)

	// B has more referencing files, but A's hierarchy spans four scripts.
	assert.Equal(t, "A", all.Primary.DeclaringType)
	assert.NotContains(t, all.Primary.Files(), "res://b.gd", "b.gd belongs to B alone")
	assert.Equal(t, "B", all.Unrelated[0].DeclaringType)
	assert.Equal(t, []string{"res://b.gd"}, all.Unrelated[0].Files())

	// A name-only query follows the primary.
	res := NewCollector(p).CollectReferences(ByName("update"), "")
	assert.Equal(t, "A", res.DeclaringType)
}

func TestCollectAllReferences_TieBreaksOnRootPath(t *testing.T) {
	t.Parallel()
	p := newProject(t, map[string]string{
		"res://z.gd": "class_name Z\nextends Node\nfunc update():\n\tpass\n",
		"res://a.gd": "class_name A\nextends Node\nfunc update():\n\tpass\n",
	})
	all := NewCollector(p).CollectAllReferences("update")
	assert.Equal(t, "res://a.gd", all.Primary.DeclaringFile)
	require.Len(t, all.Unrelated, 1)
	assert.Equal(t, "res://z.gd", all.Unrelated[0].DeclaringFile)
}

func TestCollectAllReferences_UnknownName(t *testing.T) {
	t.Parallel()
	p := newProject(t, entityFiles)
	all := NewCollector(p).CollectAllReferences("does_not_exist")
	assert.Empty(t, all.Primary.References)
	assert.Empty(t, all.Unrelated)
	require.Len(t, all.Primary.Warnings, 1)
	assert.Contains(t, all.Primary.Warnings[0], "does_not_exist")
}

const hudScene = `[gd_scene format=3]

[ext_resource type="Script" path="res://hud.gd" id="1"]

[node name="Hud" type="Control"]
script = ExtResource("1")

[node name="Start" type="Button" parent="."]

[connection signal="pressed" from="Start" to="." method="_on_start_pressed"]
`

func TestCollectReferences_SignalConnections(t *testing.T) {
	t.Parallel()
	p := newProject(t, map[string]string{
		"res://hud.tscn": hudScene,
		"res://hud.gd": `class_name Hud
extends Control

func _ready():
	pass
	pass
	pass
	pass
	pass
	$Start.pressed.connect(_on_start_pressed)

func _on_start_pressed():
	pass
`,
	})
	res := NewCollector(p).CollectReferences(member(t, p, "res://hud.gd", "_on_start_pressed"), "")
	assertUniquePositions(t, res.References)

	want := []site{
		{"res://hud.gd", 9, "signal_connection", "strict"},
		{"res://hud.gd", 11, "declaration", "strict"},
		{"res://hud.tscn", 9, "scene_signal_connection", "strict"},
	}
	if diff := cmp.Diff(want, sites(res.References)); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "pressed", res.References[0].SignalName)
	assert.True(t, res.References[2].IsSceneSignal)
	assert.Equal(t, 0, res.References[2].Column)
}

func TestCollectReferences_SceneConnectionKeepsScriptReads(t *testing.T) {
	t.Parallel()
	p := newProject(t, map[string]string{
		"res://hud.tscn": hudScene,
		"res://hud.gd": `class_name Hud
extends Control

func _ready():
	pass
	pass
	pass
	pass
	pass
	var cb = _on_start_pressed

func _on_start_pressed():
	pass
`,
	})
	res := NewCollector(p).CollectReferences(member(t, p, "res://hud.gd", "_on_start_pressed"), "")

	// The connection shares line 9 with the read but lives in the scene
	// file, so the read stays.
	want := []site{
		{"res://hud.gd", 9, "read", "strict"},
		{"res://hud.gd", 11, "declaration", "strict"},
		{"res://hud.tscn", 9, "scene_signal_connection", "strict"},
	}
	if diff := cmp.Diff(want, sites(res.References)); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectReferences_IndexerAccessIsPotential(t *testing.T) {
	t.Parallel()
	p := newProject(t, map[string]string{
		"res://unit.gd": "class_name Unit\nextends Node\nvar hp := 1\n",
		"res://squad.gd": `extends Node
var units: Array[Unit] = []

func hurt():
	units[0].hp -= 1
`,
	})
	res := NewCollector(p).CollectReferences(member(t, p, "res://unit.gd", "hp"), "res://squad.gd")
	require.Len(t, res.References, 1)
	assert.Equal(t, semantic.Potential, res.References[0].Confidence)
	assert.Equal(t, "accessed through container index", res.References[0].Reason)
}

func TestNewCollector_NilProjectPanics(t *testing.T) {
	t.Parallel()
	assert.PanicsWithValue(t, "refs: nil project", func() { NewCollector(nil) })
}
