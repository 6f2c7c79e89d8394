package gdlens

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/gdlens/internal/store"
)

var demoProject = map[string]string{
	"project.godot": `config_version=5

[application]
config/name="Demo"
`,
	"entity.gd": `class_name Entity
extends Node

signal died

var health := 10

func take_damage(amount: int) -> void:
	health -= amount
	if health <= 0:
		died.emit()
`,
	"enemies/enemy.gd": `class_name Enemy
extends Entity

func _ready():
	take_damage(1)
`,
	"enemies/boss.gd": `class_name Boss
extends Enemy

var bad: int = "text"
`,
	"ui/hud.gd": `class_name Hud
extends Control

func _ready():
	$Start.pressed.connect(_on_start_pressed)

func _on_start_pressed():
	pass
`,
	"ui/hud.tscn": `[gd_scene load_steps=2 format=3]

[ext_resource type="Script" path="res://ui/hud.gd" id="1"]

[node name="Hud" type="Control"]
script = ExtResource("1")

[node name="Start" type="Button" parent="."]

[connection signal="pressed" from="Start" to="." method="_on_start_pressed"]
`,
	"README.md":          "# demo\n",
	".godot/cache.gd":    "extends Node\n",
	"addons/tool/tool.gd": "extends Node\n",
}

// writeProject materializes files under a fresh directory.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	e, err := New(dbPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

// indexDemo indexes demoProject, excluding addons.
func indexDemo(t *testing.T, parallel bool) (*Engine, string) {
	t.Helper()
	root := writeProject(t, demoProject)
	e := newTestEngine(t, WithParallel(parallel), WithExcludes("addons/**"))
	require.NoError(t, e.IndexDirectory(context.Background(), root))
	return e, root
}

func TestNew_CreatesStore(t *testing.T) {
	e := newTestEngine(t)
	require.NotNil(t, e.Store())

	_, err := e.Store().InsertFile(&store.File{
		Path: "res://a.gd", Kind: store.KindScript, Hash: "abc", LastIndexed: time.Now(),
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/dir/db.sqlite")
	require.Error(t, err)
}

func TestNew_InvalidExcludePattern(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "test.db"), WithExcludes("[unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclude pattern")
}

func TestClose(t *testing.T) {
	e, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, e.Close())
}

func TestQuery_BeforeIndex(t *testing.T) {
	e := newTestEngine(t)
	q := e.Query()
	require.NotNil(t, q)
	assert.Nil(t, e.Project())

	_, err := q.References("health", "")
	assert.ErrorIs(t, err, ErrNotAnalyzed)
	_, err = q.SymbolAt("res://a.gd", 0, 0)
	assert.ErrorIs(t, err, ErrNotAnalyzed)
}

func TestResPath(t *testing.T) {
	t.Parallel()
	root := filepath.Join(string(filepath.Separator), "proj")
	assert.Equal(t, "res://a/b.gd", ResPath(root, filepath.Join(root, "a", "b.gd")))
	assert.Equal(t, "res://x.gd", ResPath(root, "res://x.gd"))
}

func TestListFiles_FiltersKindsHiddenAndExcludes(t *testing.T) {
	root := writeProject(t, demoProject)
	e := newTestEngine(t, WithExcludes("addons/**"))

	files, err := e.ListFiles(root)
	require.NoError(t, err)

	var res []string
	for _, f := range files {
		res = append(res, ResPath(root, f))
	}
	assert.Equal(t, []string{
		"res://enemies/boss.gd",
		"res://enemies/enemy.gd",
		"res://entity.gd",
		"res://project.godot",
		"res://ui/hud.gd",
		"res://ui/hud.tscn",
	}, res)
}

func TestIndexDirectory_PersistsProject(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		name := "serial"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			e, root := indexDemo(t, parallel)
			s := e.Store()

			files, err := s.Files("")
			require.NoError(t, err)
			assert.Len(t, files, 6)

			scripts, err := s.Files(store.KindScript)
			require.NoError(t, err)
			assert.Len(t, scripts, 4)

			entity, err := s.FileByPath("res://entity.gd")
			require.NoError(t, err)
			require.NotNil(t, entity)
			content, err := os.ReadFile(filepath.Join(root, "entity.gd"))
			require.NoError(t, err)
			assert.Equal(t, store.ContentHash(content), entity.Hash)
			assert.Equal(t, 12, entity.LineCount)

			health, err := s.SymbolsByName("health")
			require.NoError(t, err)
			require.Len(t, health, 1)
			assert.Equal(t, entity.ID, health[0].FileID)
			assert.Equal(t, "variable", health[0].Kind)
			assert.Equal(t, "Entity", health[0].DeclaringType)
			assert.Equal(t, "int", health[0].InferredType)
			assert.Equal(t, "high", health[0].Confidence)
			assert.Equal(t, 5, health[0].Line)
			assert.Equal(t, 4, health[0].Col)
			assert.NotEmpty(t, health[0].SignatureHash)
			assert.Nil(t, health[0].ParentSymbolID)

			method, err := s.SymbolsByName("take_damage")
			require.NoError(t, err)
			require.Len(t, method, 1)
			amount, err := s.SymbolsByName("amount")
			require.NoError(t, err)
			require.Len(t, amount, 1)
			require.NotNil(t, amount[0].ParentSymbolID)
			assert.Equal(t, method[0].ID, *amount[0].ParentSymbolID)
			assert.Equal(t, "parameter", amount[0].Kind)
			assert.Equal(t, "int", amount[0].TypeName)

			assert.Equal(t, root, e.Root())
			require.NotNil(t, e.Project())
		})
	}
}

func TestIndexDirectory_PersistsProjectLevelRows(t *testing.T) {
	e, _ := indexDemo(t, true)
	s := e.Store()

	enemy, err := s.ScriptTypeByName("Enemy")
	require.NoError(t, err)
	require.NotNil(t, enemy)
	assert.Equal(t, "Entity", enemy.BaseType)
	assert.Equal(t, "Enemy", enemy.ClassName)

	hud, err := s.ScriptTypeByName("Hud")
	require.NoError(t, err)
	require.NotNil(t, hud)
	assert.Equal(t, "res://ui/hud.tscn", hud.ScenePath)

	ids, err := s.FilesExtending("Entity")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	conns, err := s.SignalConnections("_on_start_pressed")
	require.NoError(t, err)
	require.Len(t, conns, 2)
	var scene, code int
	for _, c := range conns {
		assert.Equal(t, "pressed", c.SignalName)
		if c.IsScene {
			scene++
			assert.Equal(t, 9, c.Line)
		} else {
			code++
			assert.Equal(t, 4, c.Line)
		}
	}
	assert.Equal(t, 1, scene)
	assert.Equal(t, 1, code)
}

func TestIndexDirectory_PersistsDiagnostics(t *testing.T) {
	e, _ := indexDemo(t, false)
	s := e.Store()

	boss, err := s.FileByPath("res://enemies/boss.gd")
	require.NoError(t, err)
	require.NotNil(t, boss)
	diags, err := s.Diagnostics(boss.ID)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "type-mismatch", diags[0].Code)
	assert.Equal(t, "error", diags[0].Severity)
	assert.Equal(t, 3, diags[0].Line)
}

func TestIndexDirectory_ReindexReplacesData(t *testing.T) {
	root := writeProject(t, demoProject)
	e := newTestEngine(t, WithExcludes("addons/**"))
	ctx := context.Background()
	require.NoError(t, e.IndexDirectory(ctx, root))

	before, err := e.Store().SymbolsByKind("variable", "method", "parameter", "signal")
	require.NoError(t, err)

	require.NoError(t, e.IndexDirectory(ctx, root))
	after, err := e.Store().SymbolsByKind("variable", "method", "parameter", "signal")
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	require.NoError(t, os.Remove(filepath.Join(root, "enemies", "boss.gd")))
	require.NoError(t, e.IndexDirectory(ctx, root))

	gone, err := e.Store().FileByPath("res://enemies/boss.gd")
	require.NoError(t, err)
	assert.Nil(t, gone)
	boss, err := e.Store().ScriptTypeByName("Boss")
	require.NoError(t, err)
	assert.Nil(t, boss)
	diags, err := e.Store().Diagnostics()
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestIndexFiles_SkipsUnsupportedAndReportsMissing(t *testing.T) {
	root := writeProject(t, demoProject)
	e := newTestEngine(t)

	err := e.IndexFiles(context.Background(), root, []string{
		filepath.Join(root, "entity.gd"),
		filepath.Join(root, "README.md"),
		filepath.Join(root, "missing.gd"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexing had 1 error(s)")

	f, err := e.Store().FileByPath("res://entity.gd")
	require.NoError(t, err)
	assert.NotNil(t, f)
	f, err = e.Store().FileByPath("res://README.md")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestIndexFiles_CancelledContext(t *testing.T) {
	root := writeProject(t, demoProject)
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.IndexFiles(ctx, root, []string{filepath.Join(root, "entity.gd")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, e.Project())
}

func TestIndexFiles_TypesScript(t *testing.T) {
	root := writeProject(t, map[string]string{
		"types.risor": `define_class("Inventory", "RefCounted")
define_property("Inventory", "slots", "int")
`,
		"player.gd": `extends Node

var inv: Inventory
var n := inv.slots
`,
	})
	e := newTestEngine(t, WithTypesScript(filepath.Join(root, "types.risor")))
	require.NoError(t, e.IndexDirectory(context.Background(), root))

	n, err := e.Store().SymbolsByName("n")
	require.NoError(t, err)
	require.Len(t, n, 1)
	assert.Equal(t, "int", n[0].InferredType)
}

func TestIndexFiles_BadTypesScriptIsReported(t *testing.T) {
	root := writeProject(t, map[string]string{"player.gd": "extends Node\n"})
	e := newTestEngine(t, WithTypesScript(filepath.Join(root, "nope.risor")))

	err := e.IndexDirectory(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "types script")

	f, err := e.Store().FileByPath("res://player.gd")
	require.NoError(t, err)
	assert.NotNil(t, f, "analysis continues without the extra types")
}
