// Package schedule turns a wall-clock awake schedule into ViewerCommand
// sends on the control channel (spec §4.6). The sleep-until-next-boundary
// shape mirrors the teacher's pkg/wallpaper/scheduler.go (compute the next
// deadline, sleep, recompute), generalized from a fixed wallpaper-rotation
// interval to the weekly awake/asleep clock this spec requires.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/util/log"
)

// recheckCeiling bounds how long the driver ever sleeps without
// recomputing, even if no scheduled boundary falls sooner (spec §4.6 step 4).
const recheckCeiling = 60 * time.Second

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Driver evaluates a config.AwakeSchedule against wall-clock time and
// emits SetState(Awake|Asleep) commands on boundary crossings.
//
// DST policy (spec §9 Open Question): the driver converts weekly
// day+HH:MM wall-clock values to time.Time via time.Date in the
// schedule's named location, and lets the standard library's normalization
// resolve both edge cases: a spring-forward (nonexistent) wall-clock value
// is read with the pre-transition UTC offset, so it lands one hour earlier
// than written, before the gap (02:30 on a 02:00->03:00 spring-forward day
// resolves to 01:30 standard time), and the driver classifies that instant
// by whatever interval membership it computes to; a fall-back (repeated)
// wall-clock value resolves to its first occurrence (the pre-transition UTC
// offset), so the classification never changes mid-transition.
type Driver struct {
	schedule            *config.AwakeSchedule
	loc                 *time.Location
	out                 chan<- events.ViewerCommand
	now                 func() time.Time
	greetingMinDuration time.Duration
}

// New builds a Driver. The schedule's timezone must already have been
// validated by config.Validate. greetingMinDuration is the greeting
// screen's configured minimum duration; when the schedule's own
// greeting-delay-ms is left at its zero default, the initial awake send is
// deferred by greetingMinDuration instead, so a configured schedule never
// bypasses the greeting gate (spec §4.5.1, §4.6 step 2).
func New(schedule *config.AwakeSchedule, out chan<- events.ViewerCommand, greetingMinDuration time.Duration) (*Driver, error) {
	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule: timezone %q: %w", schedule.Timezone, err)
	}
	return &Driver{schedule: schedule, loc: loc, out: out, now: time.Now, greetingMinDuration: greetingMinDuration}, nil
}

// Run drives the schedule until ctx is cancelled (spec §4.6).
func (d *Driver) Run(ctx context.Context) error {
	now := d.now().In(d.loc)
	awake := d.isAwake(now)

	var deferredDeadline time.Time
	deferredPending := false

	greetingDelay := time.Duration(d.schedule.GreetingDelayMs) * time.Millisecond
	if greetingDelay <= 0 {
		greetingDelay = d.greetingMinDuration
	}

	if awake && greetingDelay > 0 {
		// Defer the initial Awake so the greeting screen has time to
		// render before the schedule immediately re-covers it with the
		// awake content (spec §4.6 step 2).
		deferredDeadline = now.Add(greetingDelay)
		deferredPending = true
		log.Debugf("schedule: deferring initial awake send until %s", deferredDeadline)
	} else {
		if !d.send(ctx, awake) {
			return nil
		}
	}

	lastAwake := awake
	for {
		now = d.now().In(d.loc)
		nextBoundary := d.nextBoundary(now)

		wake := nextBoundary
		if deferredPending && deferredDeadline.Before(wake) {
			wake = deferredDeadline
		}
		if ceiling := now.Add(recheckCeiling); ceiling.Before(wake) {
			wake = ceiling
		}

		delay := wake.Sub(now)
		if delay < 0 {
			delay = 0
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		now = d.now().In(d.loc)
		if deferredPending && !now.Before(deferredDeadline) {
			if !d.send(ctx, true) {
				return nil
			}
			deferredPending = false
			lastAwake = true
			continue
		}

		awake = d.isAwake(now)
		if awake != lastAwake {
			if !d.send(ctx, awake) {
				return nil
			}
			lastAwake = awake
		}
	}
}

// send delivers the SetState command, backpressured, observing
// cancellation at the suspension point (spec §4.6, §5 Ordering guarantees).
// It reports false if ctx was cancelled before the send completed.
func (d *Driver) send(ctx context.Context, awake bool) bool {
	state := events.Asleep
	if awake {
		state = events.Awake
	}
	select {
	case d.out <- events.ViewerCommand{Kind: events.SetState, DesiredState: state}:
		return true
	case <-ctx.Done():
		return false
	}
}

// isAwake reports whether now falls within any configured interval (spec
// §4.6 step 1). An unconfigured schedule (no intervals) is always awake.
func (d *Driver) isAwake(now time.Time) bool {
	if len(d.schedule.Intervals) == 0 {
		return true
	}
	for _, occ := range d.occurrencesNear(now) {
		if !now.Before(occ.start) && now.Before(occ.end) {
			return true
		}
	}
	return false
}

// nextBoundary returns the earliest interval start or end strictly after
// now, across the occurrences anchored yesterday through tomorrow (see
// occurrencesNear). If none of those falls before now+48h, it returns
// now+48h. The 60-second recheck ceiling is applied separately by Run, not
// here.
func (d *Driver) nextBoundary(now time.Time) time.Time {
	best := now.Add(48 * time.Hour) // sentinel: returned when no earlier boundary is found
	for _, occ := range d.occurrencesNear(now) {
		for _, t := range []time.Time{occ.start, occ.end} {
			if t.After(now) && t.Before(best) {
				best = t
			}
		}
	}
	return best
}

type occurrence struct {
	start, end time.Time
}

// occurrencesNear materializes every configured interval's concrete
// start/end instants for the calendar days immediately surrounding now
// (yesterday through tomorrow, covering intervals that wrap past
// midnight), which is sufficient to both classify now and find the next
// boundary within the 60-second recheck ceiling's horizon.
func (d *Driver) occurrencesNear(now time.Time) []occurrence {
	var occs []occurrence
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, d.loc)
	for offset := -1; offset <= 1; offset++ {
		day := base.AddDate(0, 0, offset)
		for _, iv := range d.schedule.Intervals {
			wd, ok := weekdays[strings.ToLower(iv.Day)]
			if !ok || day.Weekday() != wd {
				continue
			}
			startH, startM, err := parseHM(iv.Start)
			if err != nil {
				continue
			}
			endH, endM, err := parseHM(iv.End)
			if err != nil {
				continue
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, d.loc)
			end := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, d.loc)
			if !end.After(start) {
				end = end.AddDate(0, 0, 1) // wraps past midnight (spec §6.1 WeeklyInterval)
			}
			occs = append(occs, occurrence{start: start, end: end})
		}
	}
	return occs
}

func parseHM(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("schedule: invalid HH:MM %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}
