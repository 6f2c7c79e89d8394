package gdlens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolDetailAt_MethodWithParameters(t *testing.T) {
	e, _ := indexDemo(t, true)
	q := e.Query()

	d, err := q.SymbolDetailAt("res://entity.gd", 7, 8)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "take_damage", d.Symbol.Name)
	assert.Equal(t, "res://entity.gd", d.Symbol.FilePath)
	assert.Nil(t, d.Parent)
	require.Len(t, d.Children, 1)
	assert.Equal(t, "amount", d.Children[0].Name)

	child, err := q.SymbolDetail(d.Children[0].ID)
	require.NoError(t, err)
	require.NotNil(t, child.Parent)
	assert.Equal(t, "take_damage", child.Parent.Name)
	assert.Empty(t, child.Children)
}

func TestSymbolDetail_Missing(t *testing.T) {
	e, _ := indexDemo(t, false)
	q := e.Query()

	d, err := q.SymbolDetail(999999)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = q.SymbolDetailAt("res://entity.gd", 2, 0)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = q.SymbolDetailAt("res://nope.gd", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, d)
}
