package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
)

// jan1_2024 is a Monday, useful as a fixed anchor for weekly-interval math.
var jan1_2024 = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func newDriver(t *testing.T, sched *config.AwakeSchedule) *Driver {
	t.Helper()
	d, err := New(sched, make(chan events.ViewerCommand, 8), 0)
	require.NoError(t, err)
	return d
}

func TestIsAwakeNoIntervalsAlwaysAwake(t *testing.T) {
	d := newDriver(t, &config.AwakeSchedule{Timezone: "UTC"})
	assert.True(t, d.isAwake(jan1_2024))
}

func TestIsAwakeBasicInterval(t *testing.T) {
	d := newDriver(t, &config.AwakeSchedule{
		Timezone:  "UTC",
		Intervals: []config.WeeklyInterval{{Day: "monday", Start: "07:00", End: "22:00"}},
	})

	assert.True(t, d.isAwake(jan1_2024.Add(10*time.Hour)))  // Monday 10:00
	assert.False(t, d.isAwake(jan1_2024.Add(23*time.Hour))) // Monday 23:00
	assert.False(t, d.isAwake(jan1_2024.AddDate(0, 0, 1).Add(10*time.Hour))) // Tuesday 10:00
}

func TestIsAwakeWrapsPastMidnight(t *testing.T) {
	d := newDriver(t, &config.AwakeSchedule{
		Timezone:  "UTC",
		Intervals: []config.WeeklyInterval{{Day: "friday", Start: "22:00", End: "02:00"}},
	})
	friday := jan1_2024.AddDate(0, 0, 4) // Jan 5, 2024 is a Friday

	assert.True(t, d.isAwake(friday.Add(23*time.Hour)))                     // Friday 23:00
	assert.True(t, d.isAwake(friday.AddDate(0, 0, 1).Add(1*time.Hour)))     // Saturday 01:00
	assert.False(t, d.isAwake(friday.AddDate(0, 0, 1).Add(3*time.Hour)))    // Saturday 03:00
}

func TestNextBoundary(t *testing.T) {
	d := newDriver(t, &config.AwakeSchedule{
		Timezone:  "UTC",
		Intervals: []config.WeeklyInterval{{Day: "monday", Start: "07:00", End: "22:00"}},
	})
	now := jan1_2024.Add(10 * time.Hour) // Monday 10:00
	want := jan1_2024.Add(22 * time.Hour)
	assert.Equal(t, want, d.nextBoundary(now))
}

func TestRunSendsImmediateStateWhenNoGreetingDelay(t *testing.T) {
	out := make(chan events.ViewerCommand, 8)
	d, err := New(&config.AwakeSchedule{Timezone: "UTC"}, out, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	select {
	case cmd := <-out:
		assert.Equal(t, events.SetState, cmd.Kind)
		assert.Equal(t, events.Awake, cmd.DesiredState)
	case <-time.After(time.Second):
		t.Fatal("expected an immediate SetState(Awake)")
	}
}

func TestRunDefersInitialAwakeForGreeting(t *testing.T) {
	out := make(chan events.ViewerCommand, 8)
	d, err := New(&config.AwakeSchedule{Timezone: "UTC", GreetingDelayMs: 30}, out, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	select {
	case <-out:
		t.Fatal("did not expect a command before the greeting delay elapses")
	case <-time.After(10 * time.Millisecond):
	}

	select {
	case cmd := <-out:
		assert.Equal(t, events.SetState, cmd.Kind)
		assert.Equal(t, events.Awake, cmd.DesiredState)
	case <-time.After(time.Second):
		t.Fatal("expected the deferred SetState(Awake)")
	}
}

func TestRunDefersToGreetingMinDurationWhenDelayUnset(t *testing.T) {
	out := make(chan events.ViewerCommand, 8)
	d, err := New(&config.AwakeSchedule{Timezone: "UTC"}, out, 30*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	select {
	case <-out:
		t.Fatal("did not expect a command before the greeting min-duration elapses")
	case <-time.After(10 * time.Millisecond):
	}

	select {
	case cmd := <-out:
		assert.Equal(t, events.SetState, cmd.Kind)
		assert.Equal(t, events.Awake, cmd.DesiredState)
	case <-time.After(time.Second):
		t.Fatal("expected the deferred SetState(Awake)")
	}
}

func TestParseHM(t *testing.T) {
	h, m, err := parseHM("07:05")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 5, m)

	_, _, err = parseHM("garbage")
	require.Error(t, err)
}
