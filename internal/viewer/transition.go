package viewer

import (
	"math/rand"
	"time"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/internal/selection"
)

// TransitionKind enumerates the supported transition variants.
type TransitionKind int

const (
	Fade TransitionKind = iota
	Wipe
	Push
	EInk
)

func ParseTransitionKind(s string) TransitionKind {
	switch s {
	case "wipe":
		return Wipe
	case "push":
		return Push
	case "eink":
		return EInk
	default:
		return Fade
	}
}

// TransitionParams is one canonical, selectable transition plus its
// exhaustive per-variant parameters (spec §4.5.5).
type TransitionParams struct {
	Kind       TransitionKind
	DurationMs int

	// fade
	ThroughBlack bool

	// wipe / push
	AngleDeg  float64
	JitterDeg float64
	Softness  float64 // wipe only

	// eink
	FlashCount    int
	RevealPortion float64
	StripeCount   int
	FlashColor    config.Color
}

// BuildTransitions expands a transition configuration block into canonical
// selection entries (spec §4.8): a wipe/push block with N angles yields N
// canonical entries, one per angle.
func BuildTransitions(variants []config.TransitionVariantConfig) []selection.Entry {
	var entries []selection.Entry
	for _, vc := range variants {
		kind := ParseTransitionKind(vc.Type)
		base := TransitionParams{
			Kind:          kind,
			DurationMs:    vc.DurationMs,
			ThroughBlack:  vc.ThroughBlack,
			JitterDeg:     vc.JitterDeg,
			Softness:      clampSoftness(vc.Softness),
			FlashCount:    clampFlashCount(vc.FlashCount),
			RevealPortion: clampRevealPortion(vc.RevealPortion),
			StripeCount:   vc.StripeCount,
			FlashColor:    vc.FlashColor,
		}
		if (kind == Wipe || kind == Push) && len(vc.Angles) > 0 {
			for _, angle := range vc.Angles {
				p := base
				p.AngleDeg = angle
				entries = append(entries, selection.Entry{Index: len(entries), Kind: p})
			}
			continue
		}
		entries = append(entries, selection.Entry{Index: len(entries), Kind: base})
	}
	return entries
}

func clampSoftness(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 0.5 {
		return 0.5
	}
	if v == 0 {
		return 0.05
	}
	return v
}

func clampFlashCount(v int) int {
	if v < 0 {
		return 0
	}
	if v > 6 {
		return 6
	}
	return v
}

func clampRevealPortion(v float64) float64 {
	if v == 0 {
		return 0.55
	}
	if v < 0.05 {
		return 0.05
	}
	if v > 0.95 {
		return 0.95
	}
	return v
}

// smoothstep remaps linear progress p in [0,1] by 3p^2 - 2p^3 (spec §4.5.5).
func smoothstep(p float64) float64 {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p * p * (3 - 2*p)
}

// activeTransition tracks one in-flight transition between current and
// next.
type activeTransition struct {
	params    TransitionParams
	startedAt time.Time
	next      events.MatResult
}

func (a *activeTransition) progress(now time.Time) float64 {
	duration := time.Duration(a.params.DurationMs) * time.Millisecond
	if duration <= 0 {
		return 1
	}
	elapsed := now.Sub(a.startedAt)
	p := float64(elapsed) / float64(duration)
	return smoothstep(p)
}

func (a *activeTransition) complete(now time.Time) bool {
	duration := time.Duration(a.params.DurationMs) * time.Millisecond
	return now.Sub(a.startedAt) >= duration
}

// Scheduler implements the transition scheduler (spec §4.5.5): it starts a
// new transition when no transition is active, dwell has elapsed, and a
// next image is available, then advances and completes it over time,
// reporting Displayed exactly once per completed transition.
type Scheduler struct {
	current     events.MatResult
	displayedAt time.Time
	active      *activeTransition

	dwell     time.Duration
	selector  *selection.Selector
	rng       *rand.Rand
	displayed chan<- events.Displayed
	now       func() time.Time
}

// NewScheduler builds a Scheduler. selector may be nil only if no
// transitions are configured, in which case MaybeStart never starts one
// (photos snap directly).
func NewScheduler(dwell time.Duration, selector *selection.Selector, seed *uint64, displayed chan<- events.Displayed, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(int64(*seed)))
	} else {
		rng = rand.New(rand.NewSource(1))
	}
	return &Scheduler{selector: selector, dwell: dwell, rng: rng, displayed: displayed, now: now}
}

// Current returns the currently displayed mat, if any.
func (s *Scheduler) Current() events.MatResult { return s.current }

// Active reports whether a transition is in flight.
func (s *Scheduler) Active() bool { return s.active != nil }

// SetCurrent installs mr as the currently displayed image without a
// transition (used for the first image shown).
func (s *Scheduler) SetCurrent(mr events.MatResult) {
	s.current = mr
	s.displayedAt = s.now()
}

// Progress reports the current transition's eased progress in [0,1], or 1
// if no transition is active.
func (s *Scheduler) Progress() float64 {
	if s.active == nil {
		return 1
	}
	return s.active.progress(s.now())
}

// Peek returns the in-flight transition's destination mat and its
// parameters, if a transition is active.
func (s *Scheduler) Peek() (events.MatResult, TransitionParams, bool) {
	if s.active == nil {
		return events.MatResult{}, TransitionParams{}, false
	}
	return s.active.next, s.active.params, true
}

// MaybeStart starts a new transition if eligible (spec §4.5.5): no
// transition currently active, dwell elapsed since displayedAt, and pending
// is non-empty. Returns the remaining pending slice.
func (s *Scheduler) MaybeStart(pending []events.MatResult) []events.MatResult {
	if s.active != nil {
		return pending
	}
	if s.now().Sub(s.displayedAt) < s.dwell {
		return pending
	}
	if len(pending) == 0 {
		return pending
	}
	if s.selector == nil {
		// No transitions configured: snap directly to the next image.
		s.current = pending[0]
		s.displayedAt = s.now()
		s.emitDisplayed(s.current.Path)
		return pending[1:]
	}

	next := pending[0]
	params := s.selector.Next().Kind.(TransitionParams)
	if params.Kind == Wipe || params.Kind == Push {
		jitter := (s.rng.Float64()*2 - 1) * params.JitterDeg
		params.AngleDeg += jitter
	}
	s.active = &activeTransition{params: params, startedAt: s.now(), next: next}
	return pending[1:]
}

// Tick advances the active transition, completing it and emitting exactly
// one Displayed event if its duration has elapsed (spec §4.5.5).
func (s *Scheduler) Tick() {
	if s.active == nil {
		return
	}
	now := s.now()
	if !s.active.complete(now) {
		return
	}
	s.current = s.active.next
	s.displayedAt = now
	s.active = nil
	s.emitDisplayed(s.current.Path)
}

func (s *Scheduler) emitDisplayed(path string) {
	if s.displayed == nil {
		return
	}
	select {
	case s.displayed <- events.Displayed{Path: path}:
	default:
	}
}
