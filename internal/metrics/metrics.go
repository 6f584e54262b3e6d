// Package metrics implements the displayed-event sink (spec §6.3): a
// best-effort observer of each photo as it becomes fully visible. It is
// intentionally decoupled from internal/playlist's own Displayed consumer
// (which is informational bookkeeping, never a re-queue signal) so an
// external observability backend can be swapped in without touching the
// playlist manager.
package metrics

import (
	"context"

	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/util/log"
)

// Sink consumes Displayed events from in and reports them via Record.
type Sink struct {
	in     <-chan events.Displayed
	Record func(events.Displayed)
}

// New builds a Sink that logs each Displayed event at debug level by
// default; assign Record to wire in a different backend.
func New(in <-chan events.Displayed) *Sink {
	return &Sink{in: in, Record: logDisplayed}
}

func logDisplayed(d events.Displayed) {
	log.Debugf("metrics: displayed %s", d.Path)
}

// Run drains in until ctx is cancelled or in closes.
func (s *Sink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-s.in:
			if !ok {
				return nil
			}
			s.Record(d)
		}
	}
}

// Fanout copies every value received on in to each of outs, using a
// non-blocking send per destination so one slow or absent observer (e.g. a
// metrics sink with no backend wired) never stalls another (e.g. the
// playlist's informational Displayed consumer). Run until ctx is cancelled
// or in closes.
func Fanout(ctx context.Context, in <-chan events.Displayed, outs ...chan<- events.Displayed) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-in:
			if !ok {
				return
			}
			for _, out := range outs {
				select {
				case out <- d:
				default:
				}
			}
		}
	}
}
