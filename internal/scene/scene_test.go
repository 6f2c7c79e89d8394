package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const levelScene = `[gd_scene load_steps=4 format=3 uid="uid://b1x2"]

[ext_resource type="Script" path="res://player.gd" id="1_abc"]
[ext_resource type="PackedScene" path="res://enemy.tscn" id="2_def"]

[sub_resource type="RectangleShape2D" id="RectangleShape2D_x"]
size = Vector2(10, 10)

[node name="Level" type="Node2D"]

[node name="Player" type="CharacterBody2D" parent="." groups=["players", "actors"]]
script = ExtResource("1_abc")
position = Vector2(10, 20)

[node name="Sprite" type="Sprite2D" parent="Player"]

[node name="Enemy" parent="." instance=ExtResource("2_def")]

[connection signal="body_entered" from="Player" to="." method="_on_player_body_entered"]
[connection signal="died" from="Enemy" to="Player" method="_on_enemy_died" flags=3]
`

func TestParse_Nodes(t *testing.T) {
	t.Parallel()
	s, err := Parse("res://level.tscn", []byte(levelScene))
	require.NoError(t, err)

	require.Len(t, s.Nodes, 4)
	root := s.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Level", root.Name)
	assert.Equal(t, "Node2D", root.Type)
	assert.Equal(t, ".", root.Path())

	player := s.NodeByPath("Player")
	require.NotNil(t, player)
	assert.Equal(t, "CharacterBody2D", player.Type)
	assert.Equal(t, "res://player.gd", player.Script)
	assert.Equal(t, []string{"players", "actors"}, player.Groups)
	assert.Equal(t, 11, player.Line)

	sprite := s.NodeByPath("Player/Sprite")
	require.NotNil(t, sprite)
	assert.Equal(t, "Sprite2D", sprite.Type)
	assert.Same(t, sprite, s.NodeByName("Sprite"))

	enemy := s.NodeByPath("./Enemy")
	require.NotNil(t, enemy)
	assert.Empty(t, enemy.Type)
	assert.Equal(t, "res://enemy.tscn", enemy.Instance)
}

func TestParse_ConnectionsKeepFileLines(t *testing.T) {
	t.Parallel()
	s, err := Parse("res://level.tscn", []byte(levelScene))
	require.NoError(t, err)

	require.Len(t, s.Connections, 2)
	c := s.Connections[0]
	assert.Equal(t, "body_entered", c.Signal)
	assert.Equal(t, "Player", c.From)
	assert.Equal(t, ".", c.To)
	assert.Equal(t, "_on_player_body_entered", c.Method)
	assert.Equal(t, 19, c.Line, "1-based line of the [connection] header")
	assert.Equal(t, 3, s.Connections[1].Flags)
}

func TestParse_MalformedHeader(t *testing.T) {
	t.Parallel()
	_, err := Parse("res://bad.tscn", []byte("[node name=\"A\" type=\"Node\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "res://bad.tscn:1")
}

func TestParse_Godot3Format(t *testing.T) {
	t.Parallel()
	src := `[gd_scene load_steps=2 format=2]

[ext_resource path="res://hud.gd" type="Script" id=1]

[node name="HUD" type="CanvasLayer"]
script = ExtResource( 1 )

[connection signal="pressed" from="Button" to="." method="_on_button_pressed" binds=[ 1, 2 ]]
`
	s, err := Parse("res://hud.tscn", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "res://hud.gd", s.Root().Script)
	require.Len(t, s.Connections, 1)
	assert.Equal(t, 8, s.Connections[0].Line)
}

func TestParseProject_Autoloads(t *testing.T) {
	t.Parallel()
	src := `; Engine configuration file.
config_version=5

[application]

config/name="Demo"
run/main_scene="res://main.tscn"

[autoload]

GameState="*res://autoload/game_state.gd"
Helpers="res://autoload/helpers.gd"
`
	pf, err := ParseProject([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "Demo", pf.Name)
	assert.Equal(t, "res://main.tscn", pf.MainScene)
	assert.Equal(t, []Autoload{
		{Name: "GameState", Path: "res://autoload/game_state.gd", Singleton: true},
		{Name: "Helpers", Path: "res://autoload/helpers.gd"},
	}, pf.Autoloads)
}
