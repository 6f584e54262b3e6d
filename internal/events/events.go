// Package events holds the data model shared across the pipeline stages:
// inventory, playlist, loader, photo-effect, and viewer.
package events

import "time"

// PhotoID is the absolute path of an image file. Path equality is the
// library's sole notion of identity; photos are never content-hashed.
type PhotoID = string

// PhotoInfo describes a single photo known to the inventory.
type PhotoInfo struct {
	Path      PhotoID
	CreatedAt time.Time
}

// InventoryEventKind tags an InventoryEvent.
type InventoryEventKind int

const (
	PhotoAdded InventoryEventKind = iota
	PhotoRemoved
)

// InventoryEvent is the tagged union the watcher emits to the playlist.
type InventoryEvent struct {
	Kind InventoryEventKind
	Info PhotoInfo // valid when Kind == PhotoAdded
	Path PhotoID   // valid when Kind == PhotoRemoved
}

// LoadPhoto is the unit of work handed from the playlist to the loader pool.
type LoadPhoto struct {
	Path     PhotoID
	Priority bool
}

// PreparedImageCPU is a decoded, EXIF-oriented, not-yet-matted photo.
type PreparedImageCPU struct {
	Path   PhotoID
	Width  int
	Height int
	Pixels []byte // RGBA8, row-major, tightly packed: len == Width*Height*4
}

// PhotoLoaded pairs a prepared image with its priority flag as it flows
// loader -> photo-effect -> viewer.
type PhotoLoaded struct {
	Prepared PreparedImageCPU
	Priority bool
}

// Canvas is a screen-sized RGBA image produced by matting.
type Canvas struct {
	Width  int
	Height int
	Pixels []byte
}

// MatResult is a photo composited into the screen-sized mat canvas, ready
// to be uploaded as a GPU texture.
type MatResult struct {
	Path     PhotoID
	Canvas   Canvas
	Priority bool
}

// ScheduledPhoto is a lightweight reference used by the playlist's internal
// bookkeeping; Path is shared, never copied, across the queue.
type ScheduledPhoto struct {
	Path     PhotoID
	Priority bool
}

// InvalidPhoto is reported by the loader (decode failure) back to the
// inventory watcher, which deletes the file and emits PhotoRemoved.
type InvalidPhoto struct {
	Path PhotoID
}

// Displayed is emitted by the viewer once a photo becomes fully visible.
// It is informational: the playlist never re-queues on it.
type Displayed struct {
	Path PhotoID
}

// ViewerState enumerates the presentation state machine's states.
type ViewerState int

const (
	Greeting ViewerState = iota
	Awake
	Asleep
)

func (s ViewerState) String() string {
	switch s {
	case Greeting:
		return "greeting"
	case Awake:
		return "awake"
	case Asleep:
		return "asleep"
	default:
		return "unknown"
	}
}

// ViewerCommandKind tags a ViewerCommand.
type ViewerCommandKind int

const (
	SetState ViewerCommandKind = iota
	ToggleState
)

// ViewerCommand is delivered to the viewer from the schedule driver and the
// control plane.
type ViewerCommand struct {
	Kind         ViewerCommandKind
	DesiredState ViewerState // valid when Kind == SetState
}
