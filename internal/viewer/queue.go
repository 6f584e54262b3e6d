package viewer

import (
	"sync"

	"github.com/dixieflatline76/photoframe/internal/events"
)

// matQueue manages the bounded pending/in-flight submissions into the
// matting worker pool (spec §4.5.4). At most preloadCount photos may be
// pending or in flight at once; resubmitting a path that is already
// pending or in flight evicts the stale copy (by promotion or generation
// bump) instead of queuing a duplicate, the same de-dup-by-path shape the
// playlist uses for its own scheduled-photo bookkeeping.
type matQueue struct {
	mu           sync.Mutex
	preloadCount int
	generation   uint64

	pending    []matTask
	pendingIdx map[string]int    // path -> index into pending
	inflight   map[string]uint64 // path -> generation submitted to the pool
}

func newMatQueue(preloadCount int) *matQueue {
	if preloadCount < 1 {
		preloadCount = 1
	}
	return &matQueue{
		preloadCount: preloadCount,
		pendingIdx:   map[string]int{},
		inflight:     map[string]uint64{},
	}
}

// Enqueue stages pl for matting. If its path is already pending, the
// existing entry is replaced in place with a bumped generation, and is
// promoted to the front on a priority submission; a non-priority
// resubmission keeps its position.
// If its path is already in flight, the tracked generation is bumped so
// Complete discards the stale in-progress render once it finally arrives.
// A genuinely new path is rejected once pending+inflight has reached
// preloadCount (spec §4.5.4 bound).
func (q *matQueue) Enqueue(pl events.PhotoLoaded) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	path := pl.Prepared.Path
	q.generation++
	gen := q.generation

	if idx, ok := q.pendingIdx[path]; ok {
		q.pending[idx] = matTask{Photo: pl.Prepared, Priority: pl.Priority, Generation: gen}
		if pl.Priority {
			q.promote(idx)
		}
		return true
	}

	if _, ok := q.inflight[path]; ok {
		// The in-flight render is now stale: bump the tracked generation so
		// Complete discards it when it eventually arrives, and stage a
		// fresh pending task so the path still gets rendered.
		q.inflight[path] = gen
		q.pending = append(q.pending, matTask{Photo: pl.Prepared, Priority: pl.Priority, Generation: gen})
		q.pendingIdx[path] = len(q.pending) - 1
		if pl.Priority {
			q.promote(len(q.pending) - 1)
		}
		return true
	}

	if len(q.pending)+len(q.inflight) >= q.preloadCount {
		return false
	}

	q.pending = append(q.pending, matTask{Photo: pl.Prepared, Priority: pl.Priority, Generation: gen})
	q.pendingIdx[path] = len(q.pending) - 1
	if pl.Priority {
		q.promote(len(q.pending) - 1)
	}
	return true
}

// promote moves the pending entry at idx to the front of the queue,
// keeping pendingIdx consistent.
func (q *matQueue) promote(idx int) {
	if idx == 0 {
		return
	}
	task := q.pending[idx]
	copy(q.pending[1:idx+1], q.pending[0:idx])
	q.pending[0] = task
	for i := 0; i <= idx; i++ {
		q.pendingIdx[q.pending[i].Photo.Path] = i
	}
}

// TrySubmit pops the frontmost pending task, if any, and sends it on in,
// marking its path in flight. It never blocks: if in is full the task is
// put back at the front and false is returned.
func (q *matQueue) TrySubmit(in chan<- matTask) bool {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return false
	}
	task := q.pending[0]
	q.mu.Unlock()

	select {
	case in <- task:
	default:
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	// The front entry may have been replaced or promoted away while we were
	// sending; only pop if it is still the same generation at index 0.
	if len(q.pending) > 0 && q.pending[0].Photo.Path == task.Photo.Path && q.pending[0].Generation == task.Generation {
		delete(q.pendingIdx, task.Photo.Path)
		q.pending = q.pending[1:]
		for i, t := range q.pending {
			q.pendingIdx[t.Photo.Path] = i
		}
	}
	q.inflight[task.Photo.Path] = task.Generation
	return true
}

// Complete reports a matting output's result and whether it is still
// current. A stale output (superseded by a later Enqueue for the same
// path while it was in flight) is discarded: ok is false and the caller
// must not present it.
func (q *matQueue) Complete(out matOutput) (result events.MatResult, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	gen, tracked := q.inflight[out.Result.Path]
	if !tracked {
		return events.MatResult{}, false
	}
	if gen != out.Generation {
		// Keep tracking the newer generation so its render is still accepted.
		return events.MatResult{}, false
	}
	delete(q.inflight, out.Result.Path)
	return out.Result, true
}

// Len reports the combined pending+inflight count.
func (q *matQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) + len(q.inflight)
}
