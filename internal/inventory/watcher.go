// Package inventory discovers and tracks the on-disk photo library,
// emitting events.InventoryEvent values to the playlist manager. The
// recursive-scan-then-subscribe shape and the orphan-deletion behavior are
// adapted from the teacher's pkg/wallpaper/file_manager.go (directory
// walking, tolerant delete) and from the fsnotify event-loop idiom used
// across the retrieval pack (e.g. k-kohey/axe's preview watcher).
package inventory

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/util/log"
)

var recognizedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func isRecognized(path string) bool {
	return recognizedExt[strings.ToLower(filepath.Ext(path))]
}

// Watcher maintains an eventually-consistent view of the photo library
// (spec §4.1).
type Watcher struct {
	root    string
	out     chan<- events.InventoryEvent
	invalid <-chan events.InvalidPhoto
	rng     *rand.Rand
}

// New builds a Watcher rooted at root. seed, if non-nil, makes the
// startup-scan shuffle order deterministic (spec §6.1 startup-shuffle-seed).
func New(root string, seed *uint64, out chan<- events.InventoryEvent, invalid <-chan events.InvalidPhoto) *Watcher {
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(int64(*seed)))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Watcher{root: root, out: out, invalid: invalid, rng: rng}
}

// Run performs the startup scan, then subscribes to filesystem changes and
// InvalidPhoto reports until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.startupScan(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTreeRecursive(fw, w.root); err != nil {
		log.Warnf("inventory: watch setup: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(ctx, fw, ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("inventory: notifier error: %v", err)

		case inv, ok := <-w.invalid:
			if !ok {
				w.invalid = nil
				continue
			}
			if err := w.handleInvalid(ctx, inv.Path); err != nil {
				return err
			}
		}
	}
}

// startupScan recursively walks root and emits PhotoAdded for every
// recognized file, in an order shuffled by w.rng. A symlink to a file is
// resolved to its target's info; symlinked directories are not descended
// into.
func (w *Watcher) startupScan(ctx context.Context) error {
	var found []events.PhotoInfo
	err := filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warnf("inventory: scan error at %s: %v", path, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			rInfo, err := os.Stat(resolved)
			if err != nil {
				return nil
			}
			info = rInfo
		}
		if !isRecognized(path) {
			return nil
		}
		found = append(found, events.PhotoInfo{Path: path, CreatedAt: createdAt(path, info)})
		return nil
	})
	if err != nil {
		return err
	}

	w.rng.Shuffle(len(found), func(i, j int) { found[i], found[j] = found[j], found[i] })

	for _, info := range found {
		select {
		case w.out <- events.InventoryEvent{Kind: events.PhotoAdded, Info: info}:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// addTreeRecursive registers every directory under root with the notifier,
// since fsnotify only watches the directories it's explicitly told about.
func (w *Watcher) addTreeRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if addErr := fw.Add(path); addErr != nil {
				log.Warnf("inventory: cannot watch directory %s: %v", path, addErr)
			}
		}
		return nil
	})
}

func (w *Watcher) handleFSEvent(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event) {
	if !isRecognized(ev.Name) {
		// Still watch newly created directories so subtrees stay covered.
		if ev.Has(fsnotify.Create) {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := fw.Add(ev.Name); err != nil {
					log.Warnf("inventory: cannot watch new directory %s: %v", ev.Name, err)
				}
			}
		}
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		w.emitAdded(ctx, ev.Name)
	case ev.Has(fsnotify.Remove):
		w.emitRemoved(ctx, ev.Name)
	case ev.Has(fsnotify.Rename):
		if _, err := os.Stat(ev.Name); err == nil {
			w.emitAdded(ctx, ev.Name)
		} else {
			w.emitRemoved(ctx, ev.Name)
		}
	case ev.Has(fsnotify.Write):
		// Content changes don't affect identity or playback; ignored.
	}
}

func (w *Watcher) emitAdded(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	ev := events.InventoryEvent{
		Kind: events.PhotoAdded,
		Info: events.PhotoInfo{Path: path, CreatedAt: createdAt(path, info)},
	}
	select {
	case w.out <- ev:
	case <-ctx.Done():
	}
}

func (w *Watcher) emitRemoved(ctx context.Context, path string) {
	ev := events.InventoryEvent{Kind: events.PhotoRemoved, Path: path}
	select {
	case w.out <- ev:
	case <-ctx.Done():
	}
}

// handleInvalid deletes a photo the loader could not decode and reports its
// removal. A missing file is not an error (spec §4.1 Failure semantics);
// any other deletion error is fatal.
func (w *Watcher) handleInvalid(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	w.emitRemoved(ctx, path)
	return nil
}

// createdAt returns the file's creation time, falling back to modification
// time, falling back to now (spec §3 PhotoInfo). The Go standard library
// exposes no portable file-birth time on os.FileInfo, so the "creation
// time" tier collapses to ModTime on every platform this runs on; the
// fallback chain is kept explicit so a future platform-specific birth-time
// lookup only needs to fill in the first tier.
func createdAt(path string, info os.FileInfo) time.Time {
	if info != nil && !info.ModTime().IsZero() {
		return info.ModTime()
	}
	return time.Now()
}
