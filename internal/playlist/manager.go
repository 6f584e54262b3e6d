// Package playlist maintains the weighted, age-decayed playing order and
// paces the loader pool by backpressured send (spec §4.2). The rebuild's
// partition-then-shuffle shape is adapted from the teacher's
// pkg/wallpaper/monitor_controller.go rebuildShuffle, generalized from a
// plain shuffle to the priority-segment-plus-weighted-bulk rule this spec
// requires.
package playlist

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/util/log"
)

const idleTickInterval = 50 * time.Millisecond

// Manager implements spec §4.2.
type Manager struct {
	in        <-chan events.InventoryEvent
	displayed <-chan events.Displayed
	out       chan<- events.LoadPhoto
	cfg       config.PlaylistConfig

	known          map[string]events.PhotoInfo
	prioritized    []string
	prioritizedSet map[string]bool
	queue          []events.ScheduledPhoto
	dirty          bool

	rng *rand.Rand
	now func() time.Time
}

// New builds a Manager. seed, if non-nil, makes shuffles deterministic.
func New(cfg config.PlaylistConfig, seed *uint64, in <-chan events.InventoryEvent, displayed <-chan events.Displayed, out chan<- events.LoadPhoto) *Manager {
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(int64(*seed)))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		in:             in,
		displayed:      displayed,
		out:            out,
		cfg:            cfg,
		known:          make(map[string]events.PhotoInfo),
		prioritizedSet: make(map[string]bool),
		rng:            rng,
		now:            time.Now,
	}
}

// Run drives the manager until ctx is cancelled or both inbound channels
// close.
func (m *Manager) Run(ctx context.Context) error {
	idle := time.NewTicker(idleTickInterval)
	defer idle.Stop()

	for {
		if len(m.queue) == 0 || m.dirty {
			m.rebuild()
		}

		var outCh chan<- events.LoadPhoto
		var head events.ScheduledPhoto
		if len(m.queue) > 0 {
			head = m.queue[0]
			outCh = m.out
		}

		select {
		case outCh <- events.LoadPhoto{Path: head.Path, Priority: head.Priority}:
			m.queue = m.queue[1:]

		case ev, ok := <-m.in:
			if !ok {
				m.in = nil
				if m.displayed == nil {
					return nil
				}
				continue
			}
			m.handleInventoryEvent(ev)

		case d, ok := <-m.displayed:
			if !ok {
				m.displayed = nil
				if m.in == nil {
					return nil
				}
				continue
			}
			log.Debugf("playlist: displayed %s", d.Path)

		case <-idle.C:
			// Re-evaluate; covers the empty-library idle-tick case (§4.2
			// edge cases).

		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Manager) handleInventoryEvent(ev events.InventoryEvent) {
	switch ev.Kind {
	case events.PhotoAdded:
		m.known[ev.Info.Path] = ev.Info
		if !m.prioritizedSet[ev.Info.Path] {
			m.prioritized = append(m.prioritized, ev.Info.Path)
			m.prioritizedSet[ev.Info.Path] = true
		}
		m.dirty = true

	case events.PhotoRemoved:
		delete(m.known, ev.Path)
		if m.prioritizedSet[ev.Path] {
			delete(m.prioritizedSet, ev.Path)
			for i, p := range m.prioritized {
				if p == ev.Path {
					m.prioritized = append(m.prioritized[:i], m.prioritized[i+1:]...)
					break
				}
			}
		}
		filtered := m.queue[:0]
		for _, sp := range m.queue {
			if sp.Path != ev.Path {
				filtered = append(filtered, sp)
			}
		}
		m.queue = filtered
		m.dirty = true
	}
}

// rebuild applies spec §4.2's rebuild policy.
func (m *Manager) rebuild() {
	halfLife := m.cfg.HalfLifeDuration()
	now := m.now()

	front := make([]events.ScheduledPhoto, 0, len(m.prioritized))
	rest := make([]events.ScheduledPhoto, 0, len(m.known))

	for _, path := range m.prioritized {
		info, ok := m.known[path]
		if !ok {
			continue
		}
		front = append(front, events.ScheduledPhoto{Path: path, Priority: true})
		mult := multiplicity(info.CreatedAt, now, m.cfg.NewMultiplicity, halfLife)
		for i := 1; i < mult; i++ {
			rest = append(rest, events.ScheduledPhoto{Path: path, Priority: false})
		}
	}

	for path, info := range m.known {
		if m.prioritizedSet[path] {
			continue
		}
		mult := multiplicity(info.CreatedAt, now, m.cfg.NewMultiplicity, halfLife)
		for i := 0; i < mult; i++ {
			rest = append(rest, events.ScheduledPhoto{Path: path, Priority: false})
		}
	}

	m.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	m.queue = append(front, rest...)
	m.prioritized = nil
	m.prioritizedSet = make(map[string]bool)
	m.dirty = false
}

// multiplicity implements spec §4.2's multiplicity rule.
func multiplicity(createdAt, now time.Time, newMultiplicity int, halfLife time.Duration) int {
	age := now.Sub(createdAt)
	if age < 0 {
		age = 0
	}
	if halfLife < time.Second {
		halfLife = time.Second
	}
	ratio := float64(age) / float64(halfLife)
	v := math.Ceil(float64(newMultiplicity) * math.Pow(0.5, ratio))
	if v < 1 {
		v = 1
	}
	return int(v)
}
