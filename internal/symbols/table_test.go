package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/gdlens/internal/ast"
	"github.com/jward/gdlens/internal/parser"
)

func build(t *testing.T, src string) *Table {
	t.Helper()
	tree := parser.Parse("res://test.gd", []byte(src))
	require.Empty(t, tree.Errors)
	return Build(tree)
}

const playerSrc = `class_name Player
extends CharacterBody2D

signal died
const MAX_HP = 100
enum State { IDLE, RUN }
var hp: int = MAX_HP
var items = []

func take_damage(amount: int) -> void:
	var remaining = hp - amount
	for item in items:
		var tmp = item
	match remaining:
		var left when left < 0:
			died.emit()
	hp = remaining

class Inventory:
	var slots = 4
	func count():
		return slots + MAX_HP
`

func TestBuild_ClassHeader(t *testing.T) {
	t.Parallel()
	tbl := build(t, playerSrc)
	assert.Equal(t, "Player", tbl.ClassName())
	name, path := tbl.Extends()
	assert.Equal(t, "CharacterBody2D", name)
	assert.Empty(t, path)
	assert.True(t, tbl.ExtendsNode().Valid())
}

func TestBuild_ClassMembers(t *testing.T) {
	t.Parallel()
	tbl := build(t, playerSrc)

	want := map[string]Kind{
		"died":        Signal,
		"MAX_HP":      Constant,
		"State":       Enum,
		"IDLE":        EnumValue,
		"RUN":         EnumValue,
		"hp":          Variable,
		"items":       Variable,
		"take_damage": Method,
		"Inventory":   Class,
	}
	for name, kind := range want {
		sym := tbl.ClassMember(name)
		require.NotNil(t, sym, name)
		assert.Equal(t, kind, sym.Kind, name)
		assert.True(t, sym.IsClassMember(), name)
		assert.Equal(t, "Player", sym.DeclaringType, name)
	}
	assert.Equal(t, "int", tbl.ClassMember("hp").TypeName)
	assert.Equal(t, "void", tbl.ClassMember("take_damage").TypeName)
	assert.Equal(t, "State", tbl.ClassMember("IDLE").TypeName)
	assert.Nil(t, tbl.ClassMember("remaining"), "locals are not members")
}

// pos finds the position of the nth occurrence (0-based) of needle.
func pos(t *testing.T, src, needle string, nth int) ast.Pos {
	t.Helper()
	line, col, seen := 0, 0, 0
	for i := 0; i < len(src); i++ {
		if len(src)-i >= len(needle) && src[i:i+len(needle)] == needle {
			if seen == nth {
				return ast.Pos{Line: line, Col: col}
			}
			seen++
		}
		if src[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	t.Fatalf("%q occurrence %d not found", needle, nth)
	return ast.Pos{}
}

func TestLookup_LocalsAndParameters(t *testing.T) {
	t.Parallel()
	tbl := build(t, playerSrc)

	amount := tbl.Lookup("amount", pos(t, playerSrc, "amount\n", 0))
	require.NotNil(t, amount)
	assert.Equal(t, Parameter, amount.Kind)
	assert.Equal(t, "int", amount.TypeName)

	remaining := tbl.Lookup("remaining", pos(t, playerSrc, "remaining:", 0))
	require.NotNil(t, remaining)
	assert.Equal(t, Variable, remaining.Kind)
	assert.True(t, remaining.IsLocal())

	assert.Nil(t, tbl.Lookup("remaining", pos(t, playerSrc, "var remaining", 0)), "not visible before its declaration")
}

func TestLookup_IteratorAndMatchBindingAreBodyScoped(t *testing.T) {
	t.Parallel()
	tbl := build(t, playerSrc)

	inBody := tbl.Lookup("item", pos(t, playerSrc, "item\n", 0))
	require.NotNil(t, inBody)
	assert.Equal(t, Iterator, inBody.Kind)

	after := tbl.Lookup("item", pos(t, playerSrc, "hp = remaining", 0))
	assert.Nil(t, after)

	left := tbl.Lookup("left", pos(t, playerSrc, "left < 0", 0))
	require.NotNil(t, left)
	assert.Equal(t, MatchCaseBinding, left.Kind)
	assert.Nil(t, tbl.Lookup("left", pos(t, playerSrc, "hp = remaining", 0)))

	assert.Nil(t, tbl.Lookup("tmp", pos(t, playerSrc, "hp = remaining", 0)), "block locals end with their block")
}

func TestLookup_InnerClassSeesOuterMembers(t *testing.T) {
	t.Parallel()
	tbl := build(t, playerSrc)

	at := pos(t, playerSrc, "slots + MAX_HP", 0)
	slots := tbl.Lookup("slots", at)
	require.NotNil(t, slots)
	assert.Equal(t, "Inventory", slots.DeclaringType)

	outer := tbl.Lookup("MAX_HP", at)
	require.NotNil(t, outer)
	assert.Same(t, tbl.ClassMember("MAX_HP"), outer)
	assert.Nil(t, tbl.ClassMember("slots"))
	require.NotNil(t, tbl.InnerClass("Inventory"))
}

func TestLookup_IdentityIsStable(t *testing.T) {
	t.Parallel()
	tbl := build(t, playerSrc)
	a := tbl.Lookup("hp", pos(t, playerSrc, "hp - amount", 0))
	b := tbl.Lookup("hp", pos(t, playerSrc, "hp = remaining", 0))
	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Same(t, a, tbl.SymbolForDecl(a.Decl))
	assert.Same(t, a, tbl.DeclaredAt(a.Pos()))
}

func TestLookup_InitializerSeesOuterBinding(t *testing.T) {
	t.Parallel()
	src := "var speed = 1\nfunc f():\n\tvar speed = speed * 2\n\treturn speed\n"
	tbl := build(t, src)

	inInit := tbl.Lookup("speed", pos(t, src, "speed * 2", 0))
	require.NotNil(t, inInit)
	assert.True(t, inInit.IsClassMember())

	after := tbl.Lookup("speed", pos(t, src, "speed\n", 0))
	require.NotNil(t, after)
	assert.True(t, after.IsLocal())
}

func TestBuild_LambdaOpensScope(t *testing.T) {
	t.Parallel()
	src := "func f():\n\tvar cb = func(x): return x + 1\n\treturn cb\n"
	tbl := build(t, src)

	x := tbl.Lookup("x", pos(t, src, "x + 1", 0))
	require.NotNil(t, x)
	assert.Equal(t, Parameter, x.Kind)
	assert.Equal(t, ScopeLambda, x.Scope.Kind)
	assert.Nil(t, tbl.Lookup("x", pos(t, src, "return cb", 0)))
}

func TestBuild_PropertyAccessorParameter(t *testing.T) {
	t.Parallel()
	src := "var hp = 0:\n\tset(value):\n\t\thp = value\n"
	tbl := build(t, src)

	hp := tbl.ClassMember("hp")
	require.NotNil(t, hp)
	assert.Equal(t, Property, hp.Kind)

	value := tbl.Lookup("value", pos(t, src, "value\n", 0))
	require.NotNil(t, value)
	assert.Equal(t, Parameter, value.Kind)
}

func TestBuild_UnderscoreIsNotDeclared(t *testing.T) {
	t.Parallel()
	tbl := build(t, "func f(_):\n\tpass\n")
	assert.Empty(t, tbl.ByName("_"))
}

func TestScopeAt_Nesting(t *testing.T) {
	t.Parallel()
	tbl := build(t, playerSrc)
	s := tbl.ScopeAt(pos(t, playerSrc, "var tmp", 0))
	require.NotNil(t, s)
	assert.Equal(t, ScopeBlock, s.Kind)
	assert.Equal(t, ScopeLoop, s.Parent.Kind)
	assert.NotNil(t, s.Method())
	assert.Same(t, tbl.Root, s.Class())
}
