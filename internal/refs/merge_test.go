package refs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/jward/gdlens/internal/semantic"
)

func ref(kind semantic.RefKind, conf semantic.Confidence, reason string) semantic.Reference {
	return semantic.Reference{File: "res://a.gd", Line: 3, Column: 4, Kind: kind, Confidence: conf, Reason: reason}
}

func TestMerge(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b semantic.Reference
		want semantic.Reference
	}{
		{
			name: "stronger kind wins",
			a:    ref(semantic.Read, semantic.Strict, ""),
			b:    ref(semantic.SignalConnection, semantic.Strict, ""),
			want: ref(semantic.SignalConnection, semantic.Strict, ""),
		},
		{
			name: "declaration beats everything",
			a:    ref(semantic.Declaration, semantic.Strict, ""),
			b:    ref(semantic.Override, semantic.Strict, ""),
			want: ref(semantic.Declaration, semantic.Strict, ""),
		},
		{
			name: "same kind keeps the stronger confidence",
			a:    ref(semantic.Call, semantic.Potential, "receiver type unknown"),
			b:    ref(semantic.Call, semantic.Strict, ""),
			want: ref(semantic.Call, semantic.Strict, "receiver type unknown"),
		},
		{
			name: "empty reason never overwrites",
			a:    ref(semantic.Read, semantic.Potential, "duck typed"),
			b:    ref(semantic.Write, semantic.Strict, ""),
			want: ref(semantic.Write, semantic.Strict, "duck typed"),
		},
		{
			name: "empty reason is upgraded",
			a:    ref(semantic.Read, semantic.Strict, ""),
			b:    ref(semantic.Read, semantic.Potential, "accessed through container index"),
			want: ref(semantic.Read, semantic.Strict, "accessed through container index"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, merge(tt.a, tt.b)); diff != "" {
				t.Errorf("merge(a, b) (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, merge(tt.b, tt.a)); diff != "" {
				t.Errorf("merge(b, a) (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_WinnerKeepsItsOwnReason(t *testing.T) {
	t.Parallel()
	strict := ref(semantic.Call, semantic.Strict, "overrides Base.run")
	potential := ref(semantic.Call, semantic.Potential, "receiver type unknown")

	assert.Equal(t, "overrides Base.run", merge(strict, potential).Reason)
	assert.Equal(t, "overrides Base.run", merge(potential, strict).Reason)

	first := ref(semantic.Call, semantic.Potential, "receiver type unknown")
	second := ref(semantic.Call, semantic.Potential, "accessed through container index")
	assert.Equal(t, "receiver type unknown", merge(first, second).Reason)
}

func TestMerge_FlagsAreKept(t *testing.T) {
	t.Parallel()
	a := ref(semantic.Read, semantic.Strict, "")
	a.IsInherited = true
	b := ref(semantic.SceneSignalConnection, semantic.Strict, "")
	b.SignalName = "pressed"
	b.IsSceneSignal = true

	got := merge(a, b)
	assert.Equal(t, semantic.SceneSignalConnection, got.Kind)
	assert.True(t, got.IsInherited)
	assert.True(t, got.IsSceneSignal)
	assert.Equal(t, "pressed", got.SignalName)
}

func TestAccumulator_DropPlain(t *testing.T) {
	t.Parallel()
	acc := newAccumulator()
	plain := ref(semantic.Read, semantic.Strict, "")
	plain.Column = 20
	acc.add(plain)
	write := ref(semantic.Write, semantic.Strict, "")
	write.Column = 1
	acc.add(write)
	conn := ref(semantic.SignalConnection, semantic.Strict, "")
	acc.add(conn)
	acc.add(ref(semantic.Read, semantic.Strict, ""))

	acc.dropPlain(keyOf(conn))
	got := acc.sorted()
	assert.Len(t, got, 2)
	assert.Equal(t, semantic.Write, got[0].Kind)
	assert.Equal(t, semantic.SignalConnection, got[1].Kind)
}
