// Package viewer owns the window, the GPU device/surface stand-in, the
// matting worker pool, and the presentation state machine (spec §4.5). The
// worker-pool and channel-relay shapes throughout this package are adapted
// from the teacher's pkg/wallpaper/pipeline.go; the surface lifecycle is
// adapted from ui/ui.go's fyne.Window/canvas.Image usage, generalized from
// a desktop-wallpaper splash window into the always-on photo-frame surface.
package viewer

import (
	"sync"
	"time"

	"github.com/dixieflatline76/photoframe/internal/events"
)

// Machine implements the Greeting/Awake/Asleep presentation state machine
// (spec §4.5.1).
type Machine struct {
	mu                  sync.Mutex
	state               events.ViewerState
	greetingStart       time.Time
	greetingMinDuration time.Duration
	photoReady          bool
	now                 func() time.Time
}

// NewMachine builds a Machine starting in Greeting. now defaults to
// time.Now; tests inject a deterministic clock.
func NewMachine(greetingMinDuration time.Duration, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{
		state:               events.Greeting,
		greetingStart:       now(),
		greetingMinDuration: greetingMinDuration,
		now:                 now,
	}
}

// State reports the current state.
func (m *Machine) State() events.ViewerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// PhotoReady marks that at least one photo is ready to display. It may
// itself trigger the Greeting -> Awake transition if the minimum duration
// has already elapsed.
func (m *Machine) PhotoReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photoReady = true
	m.maybeAdvanceGreeting()
}

// Tick re-evaluates the Greeting -> Awake transition against elapsed time.
// It must be called periodically (the viewer's ~4ms tick) so the
// transition fires even without a new photo arriving exactly when the
// minimum duration elapses.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maybeAdvanceGreeting()
}

func (m *Machine) maybeAdvanceGreeting() {
	if m.state != events.Greeting {
		return
	}
	if !m.photoReady {
		return
	}
	if m.now().Sub(m.greetingStart) < m.greetingMinDuration {
		return
	}
	m.state = events.Awake
}

// Apply applies an external ViewerCommand (spec §4.5.1 transitions).
// Greeting -> Asleep is treated as sleep; re-entering Awake later goes to
// Awake directly, never back to Greeting.
func (m *Machine) Apply(cmd events.ViewerCommand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch cmd.Kind {
	case events.SetState:
		m.setState(cmd.DesiredState)
	case events.ToggleState:
		if m.state == events.Asleep {
			m.setState(events.Awake)
		} else {
			m.setState(events.Asleep)
		}
	}
}

func (m *Machine) setState(desired events.ViewerState) {
	switch desired {
	case events.Asleep, events.Awake:
		m.state = desired
	}
}
