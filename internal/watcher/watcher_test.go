package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, root string, opts ...Option) <-chan []string {
	t.Helper()
	batches := make(chan []string, 8)
	opts = append([]Option{WithDebounce(50 * time.Millisecond)}, opts...)
	w, err := New(root, func(paths []string) { batches <- paths }, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// Give Run time to register the directories.
	time.Sleep(100 * time.Millisecond)
	return batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func TestNew_RequiresCallback(t *testing.T) {
	_, err := New(t.TempDir(), nil)
	require.ErrorIs(t, err, os.ErrInvalid)
}

func TestWatcher_ReportsProjectFiles(t *testing.T) {
	root := t.TempDir()
	batches := start(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "player.gd"), []byte("extends Node\n"), 0o644))

	got := waitBatch(t, batches)
	assert.Equal(t, []string{filepath.Join(root, "player.gd")}, got)
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	root := t.TempDir()
	batches := start(t, root)

	dir := filepath.Join(root, "enemies")
	require.NoError(t, os.Mkdir(dir, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "enemy.gd"), []byte("extends Node\n"), 0o644))

	got := waitBatch(t, batches)
	assert.Contains(t, got, filepath.Join(dir, "enemy.gd"))
}

func TestWatcher_Excludes(t *testing.T) {
	t.Parallel()
	w, err := New(t.TempDir(), func([]string) {}, WithExcludes(glob.MustCompile("addons/**", '/')))
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.shouldExcludeFile(filepath.Join(w.root, "addons", "tool", "tool.gd")))
	assert.True(t, w.shouldExcludeFile(filepath.Join(w.root, "icon.png")))
	assert.False(t, w.shouldExcludeFile(filepath.Join(w.root, "project.godot")))
	assert.False(t, w.shouldExcludeFile(filepath.Join(w.root, "main.tscn")))
	assert.True(t, w.shouldExcludeDir(filepath.Join(w.root, ".godot")))
	assert.False(t, w.shouldExcludeDir(filepath.Join(w.root, "ui")))
}
