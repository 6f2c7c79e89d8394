package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/gdlens/internal/scene"
)

// --- Built-in type database ---

func TestBuiltins_Hierarchy(t *testing.T) {
	t.Parallel()
	db := Builtins()

	base, ok := db.GetBaseType("CharacterBody2D")
	require.True(t, ok)
	assert.Equal(t, "PhysicsBody2D", base)

	_, ok = db.GetBaseType("Object")
	assert.False(t, ok, "Object is a root")

	assert.True(t, db.IsAssignableTo("Sprite2D", "Node"))
	assert.True(t, db.IsAssignableTo("int", "float"))
	assert.True(t, db.IsAssignableTo("Node2D", "Variant"))
	assert.False(t, db.IsAssignableTo("Node", "Node2D"))
	assert.False(t, db.IsAssignableTo("Control", "Node2D"))
}

func TestBuiltins_InheritedMembers(t *testing.T) {
	t.Parallel()
	db := Builtins()

	m, ok := db.GetMember("CharacterBody2D", "move_and_slide")
	require.True(t, ok)
	assert.Equal(t, MemberMethod, m.Kind)
	assert.Equal(t, "bool", m.Type)

	m, ok = db.GetMember("Sprite2D", "queue_free")
	require.True(t, ok)
	assert.Equal(t, "Node", m.DeclaringType)

	m, ok = db.GetMember("Timer", "timeout")
	require.True(t, ok)
	assert.Equal(t, MemberSignal, m.Kind)

	m, ok = db.GetMember("Vector2", "ZERO")
	require.True(t, ok)
	assert.Equal(t, MemberConstant, m.Kind)
	assert.Equal(t, "Vector2", m.Type)

	m, ok = db.GetMember("Array[int]", "map")
	require.True(t, ok, "container type arguments are ignored for lookup")
	assert.Equal(t, "Array", m.Type)

	_, ok = db.GetMember("Node2D", "no_such_member")
	assert.False(t, ok)
}

func TestBuiltins_GlobalsAndSingletons(t *testing.T) {
	t.Parallel()
	db := Builtins()

	fn, ok := db.GetGlobalFunction("range")
	require.True(t, ok)
	assert.Equal(t, "Array[int]", fn.Type)

	typ, ok := db.GetGlobalClass("Input")
	require.True(t, ok)
	assert.Equal(t, "Input", typ)

	m, ok := db.GetMember("Input", "is_action_pressed")
	require.True(t, ok)
	assert.True(t, m.IsStatic)

	assert.True(t, db.IsBuiltIn("print"))
	assert.True(t, db.IsBuiltIn("Node2D"))
	assert.False(t, db.IsBuiltIn("Player"))
}

func TestIsValueType(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"Vector2", "Color", "Transform2D", "Rect2", "Array[int]", "String"} {
		assert.True(t, IsValueType(name), name)
	}
	for _, name := range []string{"Node", "Object", "Player"} {
		assert.False(t, IsValueType(name), name)
	}
}

// --- Composite ---

func TestComposite_ScriptTypeInheritsEngineMembers(t *testing.T) {
	t.Parallel()
	scripts := NewTypeDB()
	scripts.Define("Player", "CharacterBody2D").Method("jump", "void")

	c := NewComposite(scripts, nil, Builtins())

	m, ok := c.GetMember("Player", "jump")
	require.True(t, ok)
	assert.Equal(t, "Player", m.DeclaringType)

	m, ok = c.GetMember("Player", "move_and_slide")
	require.True(t, ok, "member found on engine ancestor")
	assert.Equal(t, "CharacterBody2D", m.DeclaringType)

	assert.True(t, c.IsAssignableTo("Player", "Node2D"))
	assert.False(t, c.IsAssignableTo("Node2D", "Player"))
	assert.True(t, c.IsKnownType("Player"))
	assert.False(t, c.IsBuiltIn("Player"))
	assert.True(t, c.IsBuiltIn("Node2D"))
}

func TestComposite_CycleGuard(t *testing.T) {
	t.Parallel()
	db := NewTypeDB()
	db.Define("A", "B")
	db.Define("B", "A")
	c := NewComposite(db)

	_, ok := c.GetMember("A", "missing")
	assert.False(t, ok)
	assert.False(t, c.IsAssignableTo("A", "C"))
}

func TestComposite_FirstAffirmativeWins(t *testing.T) {
	t.Parallel()
	first := NewTypeDB()
	first.Function("helper", "int")
	second := NewTypeDB()
	second.Function("helper", "String")

	fn, ok := NewComposite(first, second).GetGlobalFunction("helper")
	require.True(t, ok)
	assert.Equal(t, "int", fn.Type)
}

// --- Autoload and scene providers ---

func TestAutoloadProvider(t *testing.T) {
	t.Parallel()
	resolve := func(path string) (string, bool) {
		if path == "res://game_state.gd" {
			return "GameStateScript", true
		}
		return "", false
	}
	p := NewAutoloadProvider([]scene.Autoload{
		{Name: "GameState", Path: "res://game_state.gd", Singleton: true},
		{Name: "NotGlobal", Path: "res://other.gd"},
	}, resolve)

	typ, ok := p.GetGlobalClass("GameState")
	require.True(t, ok)
	assert.Equal(t, "GameStateScript", typ)

	_, ok = p.GetGlobalClass("NotGlobal")
	assert.False(t, ok)
}

func TestSceneProvider_NodeTypes(t *testing.T) {
	t.Parallel()
	level, err := scene.Parse("res://level.tscn", []byte(`[gd_scene format=3]
[ext_resource type="Script" path="res://player.gd" id="1"]
[ext_resource type="PackedScene" path="res://enemy.tscn" id="2"]
[node name="Level" type="Node2D"]
[node name="Player" type="CharacterBody2D" parent="."]
script = ExtResource("1")
[node name="Sprite" type="Sprite2D" parent="Player"]
[node name="Enemy" parent="." instance=ExtResource("2")]
`))
	require.NoError(t, err)
	enemy, err := scene.Parse("res://enemy.tscn", []byte(`[gd_scene format=3]
[node name="Enemy" type="Area2D"]
`))
	require.NoError(t, err)

	scriptType := func(path string) (string, bool) {
		if path == "res://player.gd" {
			return "Player", true
		}
		return "", false
	}
	p := NewSceneProvider([]*scene.Scene{level, enemy}, scriptType)

	tests := []struct {
		path string
		want string
	}{
		{"Player", "Player"},
		{"Player/Sprite", "Sprite2D"},
		{"%Sprite", "Sprite2D"},
		{"Enemy", "Area2D"},
		{".", "Node2D"},
	}
	for _, tt := range tests {
		got, ok := p.NodeType("res://level.tscn", tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	base, ok := p.GetBaseType("res://enemy.tscn")
	require.True(t, ok)
	assert.Equal(t, "Area2D", base)
	assert.True(t, NewComposite(p, Builtins()).IsAssignableTo("res://enemy.tscn", "Node"))
}

// --- Risor type scripts ---

func TestTypesFromSource_DeclaresTypes(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")

	script := `
define_class("Inventory", "Node")
define_method("Inventory", "add_item", "bool")
define_property("Inventory", "capacity", "int")
define_signal("Inventory", "changed")
define_class({
	"name": "Item",
	"base": "Resource",
	"methods": {"use": "void"},
	"properties": {"weight": "float"},
	"signals": ["consumed"],
})
define_function("steam_id", "int")
define_singleton("Steam", "Inventory")
assert(is_known_type("Inventory"), "declared type is known")
assert(is_known_type("Node2D"), "engine types are known")
`
	db, err := rt.TypesFromSource(context.Background(), script)
	require.NoError(t, err)

	m, ok := db.GetMember("Inventory", "add_item")
	require.True(t, ok)
	assert.Equal(t, "bool", m.Type)

	m, ok = db.GetMember("Item", "consumed")
	require.True(t, ok)
	assert.Equal(t, MemberSignal, m.Kind)

	fn, ok := db.GetGlobalFunction("steam_id")
	require.True(t, ok)
	assert.Equal(t, "int", fn.Type)

	typ, ok := db.GetGlobalClass("Steam")
	require.True(t, ok)
	assert.Equal(t, "Inventory", typ)

	assert.Equal(t, []string{"Inventory", "Item"}, db.Types())
	assert.False(t, db.IsBuiltIn("Inventory"))
}

func TestTypesFromSource_UndefinedClassFails(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	_, err := rt.TypesFromSource(context.Background(), `define_method("Nope", "x", "int")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime: script <inline>")
}

func TestLoadTypes_FromFS(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"types/steam.risor": &fstest.MapFile{Data: []byte(`define_class("SteamLobby", "RefCounted")`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	db, err := rt.LoadTypes(context.Background(), "/types/steam.risor")
	require.NoError(t, err)
	assert.True(t, db.IsKnownType("SteamLobby"))
}

func TestLoadScript_FromFSFS_NotFound(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("", WithRuntimeFS(fstest.MapFS{}))

	_, err := rt.LoadScript("nonexistent.risor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")
}

func TestLoadScript_FallsBackToDisk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	content := `define_class("Disk", "Node")`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.risor"), []byte(content), 0644))

	rt := NewRuntime(dir)
	got, err := rt.LoadScript("types.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestImport_LocalImporterSeesHostGlobals(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.risor"), []byte(`
func declare_pickup(name) {
	define_class(name, "Area2D")
	define_signal(name, "picked_up")
	log.Info("declared " + name)
}
`), 0644))

	rt := NewRuntime(dir)
	db, err := rt.TypesFromSource(context.Background(), `
import common
common.declare_pickup("Coin")
`)
	require.NoError(t, err)
	m, ok := db.GetMember("Coin", "picked_up")
	require.True(t, ok)
	assert.Equal(t, "Coin", m.DeclaringType)
}
