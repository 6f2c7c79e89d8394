package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/gdlens/internal/parser"
	"github.com/jward/gdlens/internal/runtime"
	"github.com/jward/gdlens/internal/symbols"
)

func newEngine(t *testing.T, src string, opts ...Option) *Engine {
	t.Helper()
	tree := parser.Parse("res://test.gd", []byte(src))
	require.Empty(t, tree.Errors)
	return New(symbols.Build(tree), opts...)
}

// declType infers the first symbol named name.
func declType(t *testing.T, e *Engine, name string) Type {
	t.Helper()
	syms := e.Table().ByName(name)
	require.NotEmpty(t, syms, "no symbol %q", name)
	return e.InferDecl(syms[0])
}

func TestInferDecl_Literals(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var a := 1
var b := 1.5
var c := 2e3
var d := "s"
var e := &"name"
var f := ^"path"
var g := true
var h := []
var i := {}
var j := Vector2(1, 2)
var k := Color(1, 0, 0)
`)
	tests := []struct {
		name string
		want string
	}{
		{"a", "int"},
		{"b", "float"},
		{"c", "float"},
		{"d", "String"},
		{"e", "StringName"},
		{"f", "NodePath"},
		{"g", "bool"},
		{"h", "Array"},
		{"i", "Dictionary"},
		{"j", "Vector2"},
		{"k", "Color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := declType(t, e, tt.name)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, High, got.Confidence)
		})
	}
}

func TestInferDecl_AnnotationWins(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var speed: float = 10
var names: Array[String] = []
var table: Dictionary[int, Node2D] = {}
`)
	got := declType(t, e, "speed")
	assert.Equal(t, "float", got.Name)
	assert.Equal(t, High, got.Confidence)

	got = declType(t, e, "names")
	assert.Equal(t, "String", got.EffectiveElementType())

	got = declType(t, e, "table")
	assert.Equal(t, "int", got.EffectiveKeyType())
	assert.Equal(t, "Node2D", got.EffectiveElementType())
}

func TestInferDecl_UntypedVariableIsLow(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var count = 5
var nothing
func f(x, y = 2):
	pass
`)
	got := declType(t, e, "count")
	assert.Equal(t, "int", got.Name)
	assert.Equal(t, Low, got.Confidence)

	got = declType(t, e, "nothing")
	assert.Equal(t, Unknown, got.Confidence)
	assert.Equal(t, "no initializer", got.Reason)

	got = declType(t, e, "x")
	assert.Equal(t, Unknown, got.Confidence)
	assert.Equal(t, "untyped parameter", got.Reason)

	got = declType(t, e, "y")
	assert.Equal(t, "int", got.Name)
	assert.Equal(t, Low, got.Confidence)
}

func TestInferDecl_ConstructorsAndEngineMembers(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends CharacterBody2D
var child := Node2D.new()
var pos := position
var moved := move_and_slide()
var pressed := Input.is_action_pressed("jump")
var parent := get_parent()
var here := self
`)
	assert.Equal(t, "Node2D", declType(t, e, "child").Name)
	assert.Equal(t, "Vector2", declType(t, e, "pos").Name)
	assert.Equal(t, "bool", declType(t, e, "moved").Name)
	assert.Equal(t, "bool", declType(t, e, "pressed").Name)
	assert.Equal(t, "Node", declType(t, e, "parent").Name)
	assert.Equal(t, "res://test.gd", declType(t, e, "here").Name, "anonymous scripts are named by path")
}

func TestInferDecl_EnumAndInnerClass(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `class_name Unit
extends Node
enum State { IDLE, RUN }
var state := State.IDLE
var inv := Inventory.new()
var cap := inv.capacity

class Inventory:
	var capacity: int = 4
`)
	assert.Equal(t, "State", declType(t, e, "state").Name)
	assert.Equal(t, "Inventory", declType(t, e, "inv").Name)
	assert.Equal(t, "int", declType(t, e, "cap").Name)
}

func TestInferDecl_ReturnTypes(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
func typed() -> String:
	return ""
func untyped():
	return 1
func mixed(flag):
	if flag:
		return 1
	return "x"
var a := typed()
var b := untyped()
var c := mixed(true)
`)
	got := declType(t, e, "a")
	assert.Equal(t, "String", got.Name)
	assert.Equal(t, High, got.Confidence)

	got = declType(t, e, "b")
	assert.Equal(t, "int", got.Name)
	assert.Equal(t, Low, got.Confidence)

	got = declType(t, e, "c")
	assert.Equal(t, Unknown, got.Confidence)
}

func TestInferDecl_RecursionTerminates(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var a = b
var b = a
`)
	assert.Equal(t, Unknown, declType(t, e, "a").Confidence)
	assert.Equal(t, Unknown, declType(t, e, "b").Confidence)
}

func TestInferDecl_Iterators(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var scores: Dictionary[String, int] = {}
var names: Array[StringName] = []
func f():
	for i in range(3):
		pass
	for key in scores:
		pass
	for n in names:
		pass
	for c in "abc":
		pass
	for j in 10:
		pass
`)
	tests := map[string]string{"i": "int", "key": "String", "n": "StringName", "c": "String", "j": "int"}
	for name, want := range tests {
		got := declType(t, e, name)
		assert.Equal(t, want, got.Name, name)
		assert.NotEqual(t, Unknown, got.Confidence, name)
	}
}

func TestInferExpr_Operators(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var a := 1 + 2
var b := 1 + 2.0
var c := "a" + "b"
var d := 1 < 2
var e := not true
var f := Vector2.ZERO * 2
var g := -3
var h := 1 if true else 2
var i := 1 if true else "x"
var j := self is Node
var k := get_parent() as Node2D
`)
	tests := map[string]string{"a": "int", "b": "float", "c": "String", "d": "bool", "e": "bool",
		"f": "Vector2", "g": "int", "h": "int", "j": "bool", "k": "Node2D"}
	for name, want := range tests {
		assert.Equal(t, want, declType(t, e, name).Name, name)
	}
	assert.Equal(t, Unknown, declType(t, e, "i").Confidence)
}

func TestInferExpr_NodePaths(t *testing.T) {
	t.Parallel()
	nodes := map[string]string{"Sprite": "Sprite2D", "%Health": "ProgressBar"}
	e := newEngine(t, `extends Node2D
@onready var sprite := $Sprite
@onready var bar := %Health
@onready var other := get_node("Sprite")
@onready var missing := $Nope
`, WithNodeTypes(func(path string) (string, bool) {
		typ, ok := nodes[path]
		return typ, ok
	}))
	assert.Equal(t, "Sprite2D", declType(t, e, "sprite").Name)
	assert.Equal(t, "ProgressBar", declType(t, e, "bar").Name)
	assert.Equal(t, "Sprite2D", declType(t, e, "other").Name)

	got := declType(t, e, "missing")
	assert.Equal(t, "Node", got.Name)
	assert.Equal(t, Low, got.Confidence)
}

func TestInferExpr_Preload(t *testing.T) {
	t.Parallel()
	scripts := runtime.NewTypeDB()
	scripts.Define("Enemy", "Node2D").Method("attack", "int")
	e := newEngine(t, `extends Node
const EnemyScript = preload("res://enemy.gd")
var enemy := EnemyScript.new()
var damage := enemy.attack()
var scene := preload("res://level.tscn")
`,
		WithProvider(runtime.NewComposite(scripts, runtime.Builtins())),
		WithScriptTypes(func(path string) (string, bool) {
			return "Enemy", path == "res://enemy.gd"
		}))

	assert.True(t, declType(t, e, "EnemyScript").IsClass)
	assert.Equal(t, "Enemy", declType(t, e, "enemy").Name)
	assert.Equal(t, "int", declType(t, e, "damage").Name)
	assert.Equal(t, "PackedScene", declType(t, e, "scene").Name)
}

func TestInferExpr_MapThroughInheritedMethod(t *testing.T) {
	t.Parallel()
	base := runtime.NewTypeDB()
	base.Define("BaseEntity", "Node").Method("format_name", "String")
	e := newEngine(t, `class_name ChildEntity
extends BaseEntity
var arr: Array[int] = [1, 2]
var names := arr.map(format_name)
var own := arr.map(double)
var lam := arr.map(func(x) -> float: return x * 0.5)
func double(x: int) -> int:
	return x * 2
`, WithProvider(runtime.NewComposite(base, runtime.Builtins())))

	got := declType(t, e, "names")
	assert.Equal(t, "Array", got.Name)
	assert.Equal(t, "String", got.EffectiveElementType())
	assert.Equal(t, High, got.Confidence)

	assert.Equal(t, "int", declType(t, e, "own").EffectiveElementType())
	assert.Equal(t, "float", declType(t, e, "lam").EffectiveElementType())
}

func TestIteratorElement_MappedArray(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var arr: Array[int] = [1]
func label(x: int) -> String:
	return str(x)
func f():
	for s: String in arr.map(label):
		pass
`)
	loops := e.Table().ByName("s")
	require.Len(t, loops, 1)
	got := e.IteratorElement(loops[0].Decl)
	assert.Equal(t, "String", got.Name)
}

func TestFreeze_KeepsResults(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var a := 1
`)
	before := declType(t, e, "a")
	e.Freeze()
	assert.Equal(t, before, declType(t, e, "a"))
}

func TestNew_NilTablePanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { New(nil) })
}

func TestType_ContainerAccessors(t *testing.T) {
	t.Parallel()
	typ := Type{Name: "Dictionary[StringName, Array[int]]", Confidence: High}
	assert.Equal(t, "StringName", typ.EffectiveKeyType())
	assert.Equal(t, "Array[int]", typ.EffectiveElementType())
	assert.Equal(t, "Dictionary", typ.Base())
	assert.True(t, typ.IsDictionary())

	assert.Equal(t, "Vector2", Type{Name: "PackedVector2Array"}.EffectiveElementType())
	assert.Equal(t, []string{"int"}, Type{Name: "Array[int]"}.ElementUnionType().Types)
}
