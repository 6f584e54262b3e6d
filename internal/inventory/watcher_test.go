package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/photoframe/internal/events"
)

func writeImage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0o644))
}

func TestIsRecognizedExtensions(t *testing.T) {
	assert.True(t, isRecognized("a/b/photo.jpg"))
	assert.True(t, isRecognized("photo.JPEG"))
	assert.True(t, isRecognized("photo.png"))
	assert.True(t, isRecognized("photo.webp"))
	assert.False(t, isRecognized("readme.txt"))
	assert.False(t, isRecognized("photo.jpg.bak"))
}

func TestStartupScanEmitsRecognizedFilesOnly(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "a.jpg"))
	writeImage(t, filepath.Join(root, "b.png"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("nope"), 0o644))

	out := make(chan events.InventoryEvent, 8)
	invalid := make(chan events.InvalidPhoto)
	seed := uint64(42)
	w := New(root, &seed, out, invalid)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.startupScan(ctx))
	close(out)

	var got []string
	for ev := range out {
		require.Equal(t, events.PhotoAdded, ev.Kind)
		got = append(got, ev.Info.Path)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "b.png"),
	}, got)
}

func TestStartupScanIsDeterministicForAGivenSeed(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"} {
		writeImage(t, filepath.Join(root, name))
	}

	order := func(seed uint64) []string {
		out := make(chan events.InventoryEvent, 8)
		invalid := make(chan events.InvalidPhoto)
		w := New(root, &seed, out, invalid)
		require.NoError(t, w.startupScan(context.Background()))
		close(out)
		var got []string
		for ev := range out {
			got = append(got, ev.Info.Path)
		}
		return got
	}

	first := order(7)
	second := order(7)
	assert.Equal(t, first, second)
}

func TestHandleInvalidDeletesFileAndEmitsRemoved(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.jpg")
	writeImage(t, path)

	out := make(chan events.InventoryEvent, 8)
	invalid := make(chan events.InvalidPhoto)
	w := New(root, nil, out, invalid)

	require.NoError(t, w.handleInvalid(context.Background(), path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	select {
	case ev := <-out:
		assert.Equal(t, events.PhotoRemoved, ev.Kind)
		assert.Equal(t, path, ev.Path)
	case <-time.After(time.Second):
		t.Fatal("expected a PhotoRemoved event")
	}
}

func TestHandleInvalidToleratesAlreadyMissingFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "never-existed.jpg")

	out := make(chan events.InventoryEvent, 8)
	invalid := make(chan events.InvalidPhoto)
	w := New(root, nil, out, invalid)

	require.NoError(t, w.handleInvalid(context.Background(), path))

	select {
	case ev := <-out:
		assert.Equal(t, events.PhotoRemoved, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected a PhotoRemoved event even for an already-missing file")
	}
}

func TestRunReactsToFilesystemChanges(t *testing.T) {
	root := t.TempDir()

	out := make(chan events.InventoryEvent, 8)
	invalid := make(chan events.InvalidPhoto)
	w := New(root, nil, out, invalid)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	newPath := filepath.Join(root, "new.jpg")
	require.Eventually(t, func() bool {
		writeImage(t, newPath)
		return true
	}, time.Second, 10*time.Millisecond)

	select {
	case ev := <-out:
		assert.Equal(t, events.PhotoAdded, ev.Kind)
		assert.Equal(t, newPath, ev.Info.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a PhotoAdded event for the newly created file")
	}

	require.NoError(t, os.Remove(newPath))
	select {
	case ev := <-out:
		assert.Equal(t, events.PhotoRemoved, ev.Kind)
		assert.Equal(t, newPath, ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a PhotoRemoved event for the deleted file")
	}
}
