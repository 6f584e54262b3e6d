package viewer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/internal/selection"
)

func TestSmoothstepMidpointIsOneHalf(t *testing.T) {
	assert.InDelta(t, 0.5, smoothstep(0.5), 1e-9)
	assert.Equal(t, 0.0, smoothstep(0))
	assert.Equal(t, 1.0, smoothstep(1))
}

func TestBuildTransitionsExpandsAnglesIntoEntries(t *testing.T) {
	variants := []config.TransitionVariantConfig{
		{Type: "wipe", DurationMs: 300, Angles: []float64{0, 90, 180}},
		{Type: "fade", DurationMs: 400},
	}
	entries := BuildTransitions(variants)
	require.Len(t, entries, 4)

	wipeCount := 0
	for _, e := range entries[:3] {
		p := e.Kind.(TransitionParams)
		assert.Equal(t, Wipe, p.Kind)
		wipeCount++
	}
	assert.Equal(t, 3, wipeCount)

	last := entries[3].Kind.(TransitionParams)
	assert.Equal(t, Fade, last.Kind)
	assert.Equal(t, 400, last.DurationMs)
}

func TestSchedulerCompletesTransitionAndEmitsDisplayedOnce(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	entries := []selection.Entry{{Index: 0, Kind: TransitionParams{Kind: Fade, DurationMs: 400}}}
	sel, err := selection.NewSelector(selection.Fixed, true, entries, nil)
	require.NoError(t, err)

	displayed := make(chan events.Displayed, 4)
	sched := NewScheduler(0, sel, nil, displayed, clock)
	sched.SetCurrent(events.MatResult{Path: "first.jpg"})

	next := events.MatResult{Path: "second.jpg"}
	pending := sched.MaybeStart([]events.MatResult{next})
	assert.Empty(t, pending)
	require.True(t, sched.Active())

	// At the midpoint, progress should be smoothstep(0.5) = 0.5.
	now = now.Add(200 * time.Millisecond)
	assert.InDelta(t, 0.5, sched.Progress(), 1e-9)
	sched.Tick()
	assert.True(t, sched.Active(), "should not complete before full duration")

	// Past the full duration, Tick completes the transition exactly once.
	now = now.Add(201 * time.Millisecond)
	sched.Tick()
	assert.False(t, sched.Active())
	assert.Equal(t, "second.jpg", sched.Current().Path)

	sched.Tick() // idempotent: no transition active, no further emission
	require.Len(t, displayed, 1)
	assert.Equal(t, "second.jpg", (<-displayed).Path)
}

func TestSchedulerRespectsDwellBeforeStartingNext(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	entries := []selection.Entry{{Index: 0, Kind: TransitionParams{Kind: Fade, DurationMs: 100}}}
	sel, err := selection.NewSelector(selection.Fixed, true, entries, nil)
	require.NoError(t, err)

	sched := NewScheduler(time.Second, sel, nil, nil, clock)
	sched.SetCurrent(events.MatResult{Path: "first.jpg"})

	pending := sched.MaybeStart([]events.MatResult{{Path: "second.jpg"}})
	assert.Len(t, pending, 1, "dwell not elapsed, should not start")
	assert.False(t, sched.Active())

	now = now.Add(time.Second)
	pending = sched.MaybeStart(pending)
	assert.Empty(t, pending)
	assert.True(t, sched.Active())
}

func TestSchedulerSnapsDirectlyWhenNoSelector(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	sched := NewScheduler(0, nil, nil, nil, clock)
	sched.SetCurrent(events.MatResult{Path: "first.jpg"})

	pending := sched.MaybeStart([]events.MatResult{{Path: "second.jpg"}})
	assert.Empty(t, pending)
	assert.False(t, sched.Active())
	assert.Equal(t, "second.jpg", sched.Current().Path)
}
