package gdlens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeHierarchy(t *testing.T) {
	e, _ := indexDemo(t, true)
	q := e.Query()

	h, err := q.TypeHierarchy("Enemy")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "res://enemies/enemy.gd", h.File)
	assert.Equal(t, []string{"Entity", "Node"}, h.Ancestors)
	require.Len(t, h.Subtypes, 1)
	assert.Equal(t, "Boss", h.Subtypes[0].TypeName)
	require.Len(t, h.Members, 1)
	assert.Equal(t, "_ready", h.Members[0].Name)

	h, err = q.TypeHierarchy("Entity")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, []string{"Node"}, h.Ancestors)
	var members []string
	for _, m := range h.Members {
		members = append(members, m.Name)
	}
	assert.Equal(t, []string{"died", "health", "take_damage"}, members)
}

func TestTypeHierarchy_Unknown(t *testing.T) {
	e, _ := indexDemo(t, false)
	h, err := e.Query().TypeHierarchy("Nope")
	require.NoError(t, err)
	assert.Nil(t, h)
}
