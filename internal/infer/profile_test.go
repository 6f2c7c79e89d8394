package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_SingleElementType(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `class_name Spawner
extends Node
var items = []

func _ready():
	items.append(Node2D.new())
	items.append(Node2D.new())

func spawn():
	self.items.push_back(Node2D.new())
`)
	p := e.Profile("Spawner", "items")
	require.NotNil(t, p)
	assert.True(t, p.IsArray)
	assert.False(t, p.IsDictionary)
	assert.False(t, p.IsUnion)
	assert.Len(t, p.Sites, 4, "initializer, two appends and a push_back")

	got := p.ComputeInferredType()
	assert.Equal(t, "Node2D", got.EffectiveElementType())
	assert.NotEqual(t, Unknown, got.Confidence)
	assert.False(t, got.ElementUnionType().IsUnion)

	decl := declType(t, e, "items")
	assert.Equal(t, "Array", decl.Name)
	assert.Equal(t, "Node2D", decl.EffectiveElementType())
}

func TestProfile_UnionOfDistinctTypes(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var items = []

func a():
	items.append(Node.new())

func b():
	items.append(Node2D.new())
	items.append(Node.new())
`)
	p := e.Profile("", "items")
	require.NotNil(t, p)
	assert.True(t, p.IsUnion)

	got := p.ComputeInferredType()
	u := got.ElementUnionType()
	assert.True(t, u.IsUnion)
	assert.ElementsMatch(t, []string{"Node", "Node2D"}, u.Types)
}

func TestProfile_NoObservationsIsUnknown(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var items = []
`)
	p := e.Profile("", "items")
	require.NotNil(t, p)
	assert.Equal(t, Unknown, p.ComputeInferredType().Confidence)
}

func TestProfile_TypedAndLocalContainersAreNeverProfiled(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var typed: Dictionary[int, Node2D] = {}
var typed_array: Array[Node] = []

func f():
	var local = []
	local.append(Node2D.new())
	typed[1] = Node2D.new()
	typed_array.append(Node2D.new())
`)
	assert.Nil(t, e.Profile("", "typed"))
	assert.Nil(t, e.Profile("", "typed_array"))
	assert.Nil(t, e.Profile("", "local"))
	assert.Empty(t, e.Profiles())

	decl := declType(t, e, "typed_array")
	assert.Equal(t, "Node", decl.EffectiveElementType(), "explicit element types win")
}

func TestProfile_BareContainerAnnotations(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var items: Array = []
var by_id: Dictionary = {}

func f():
	items.append(Node2D.new())
	by_id[1] = Node2D.new()
`)
	items := e.Profile("", "items")
	require.NotNil(t, items)
	assert.True(t, items.IsArray)
	assert.Equal(t, "Node2D", items.ComputeInferredType().EffectiveElementType())

	by := e.Profile("", "by_id")
	require.NotNil(t, by)
	assert.True(t, by.IsDictionary)
	got := by.ComputeInferredType()
	assert.Equal(t, "Node2D", got.EffectiveElementType())
	assert.Equal(t, "int", got.EffectiveKeyType())

	decl := declType(t, e, "items")
	assert.Equal(t, "Array", decl.Name)
	assert.Equal(t, High, decl.Confidence, "the annotation keeps its confidence")
	assert.Equal(t, "Node2D", decl.EffectiveElementType())
}

func TestProfile_NonLiteralAssignmentExcludes(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var items = []
var cache = {}

func load_items():
	items = get_children()

func reset():
	cache = {}
`)
	assert.Nil(t, e.Profile("", "items"), "a single non-literal assignment poisons the profile")
	assert.NotNil(t, e.Profile("", "cache"))
}

func TestProfile_NeverAssignedLiteralHasNoProfile(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var items

func f():
	items.append(1)
`)
	assert.Nil(t, e.Profile("", "items"))
}

func TestProfile_AssignedInMethodOnly(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var items

func _ready():
	items = []
	items.append("a")
`)
	p := e.Profile("", "items")
	require.NotNil(t, p)
	assert.Equal(t, "String", p.ComputeInferredType().EffectiveElementType())

	decl := declType(t, e, "items")
	assert.Equal(t, "String", decl.EffectiveElementType())
	assert.Equal(t, Low, decl.Confidence)
}

func TestProfile_DictionaryKeysAndValues(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var by_id = {}

func add(n: Node):
	by_id[1] = n
	by_id[2] = Node.new()
`)
	p := e.Profile("", "by_id")
	require.NotNil(t, p)
	assert.True(t, p.IsDictionary)

	got := p.ComputeInferredType()
	assert.Equal(t, "Dictionary", got.Name)
	assert.Equal(t, "Node", got.EffectiveElementType())
	assert.Equal(t, "int", got.EffectiveKeyType())
}

func TestProfile_ShapeUnion(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var data = []

func as_dict():
	data = {"a": 1}
`)
	p := e.Profile("", "data")
	require.NotNil(t, p)
	assert.True(t, p.IsArray)
	assert.True(t, p.IsDictionary)
	assert.Equal(t, "Variant", p.ComputeInferredType().Name)
}

func TestProfile_InnerClassesAreSeparate(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `class_name Outer
extends Node
var items = []

class Bag:
	var items = []
	func fill():
		items.append(1)
`)
	outer := e.Profile("Outer", "items")
	require.NotNil(t, outer)
	assert.Empty(t, outer.ElementTypes)

	bag := e.Profile("Bag", "items")
	require.NotNil(t, bag)
	assert.Equal(t, []string{"int"}, bag.ElementTypes)
}

func TestProfile_AppendArray(t *testing.T) {
	t.Parallel()
	e := newEngine(t, `extends Node
var items = []
var more: Array[float] = []

func f():
	items.append_array([1, 2])
	items.append_array(more)
`)
	p := e.Profile("", "items")
	require.NotNil(t, p)
	assert.Equal(t, []string{"int", "float"}, p.ElementTypes)
}
