package viewer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/internal/matting"
	"github.com/dixieflatline76/photoframe/internal/selection"
	"github.com/dixieflatline76/photoframe/util/log"
)

// tickInterval is the viewer's ingress-multiplexing cadence (spec §4.5.2).
const tickInterval = 4 * time.Millisecond

// presentationSurface is the subset of Surface the engine drives. Tests
// substitute a recording fake instead of a real fyne-backed Surface.
type presentationSurface interface {
	ShowPhoto(events.Canvas)
	SetState(events.ViewerState)
}

// Config bundles the viewer's construction-time knobs.
type Config struct {
	Matting          matting.Params
	MattingVariants  []selection.Entry
	MattingPolicy    selection.Policy
	MattingExplicit  bool
	Transitions      []selection.Entry
	TransitionPolicy selection.Policy
	TransitionExpl   bool
	Dwell            time.Duration
	GreetingMinDur   time.Duration
	Greeting         config.OverlayConfig
	Sleep            config.OverlayConfig
	Workers          int
	PreloadCount     int
	Seed             *uint64
}

// Engine ties the matting pool, the upload queue, the transition scheduler,
// the presentation state machine, and the surface into the complete viewer
// (spec §4.5).
type Engine struct {
	in        <-chan events.PhotoLoaded
	cmdIn     <-chan events.ViewerCommand
	displayed chan<- events.Displayed

	queue   *matQueue
	pool    *matPool
	poolIn  chan matTask
	poolOut chan matOutput

	machine   *Machine
	scheduler *Scheduler
	surface   presentationSurface
	realSurf  *Surface // non-nil only when built via NewEngine; lets Main block on the real window loop

	preloadCount int
	sawFirstMat  bool
	pendingMat   []events.MatResult
}

// NewEngine wires every viewer collaborator, including a real fyne-backed
// Surface. cfg.MattingVariants must be non-empty (matting.BuildVariants
// output); cfg.Transitions may be empty, in which case photos snap
// directly with no cross-fade (spec §4.5.5).
func NewEngine(cfg Config, in <-chan events.PhotoLoaded, cmdIn <-chan events.ViewerCommand, displayed chan<- events.Displayed) (*Engine, error) {
	canvasW, canvasH := cfg.Matting.CanvasSize()
	surface := NewSurface("photoframe", canvasW, canvasH, cfg.Greeting, cfg.Sleep)
	e, err := newEngine(cfg, in, cmdIn, displayed, surface)
	if err != nil {
		return nil, err
	}
	e.realSurf = surface
	return e, nil
}

// Main blocks on the real window's event loop (fyne requires this run on
// the process's main goroutine on several platforms; spec §5 "the viewer
// event loop runs on its own OS thread (the main thread on platforms that
// require it)"). It is a no-op when the engine was built with a fake
// surface (tests call newEngine directly and drive Run alone).
func (e *Engine) Main() {
	if e.realSurf != nil {
		e.realSurf.Run()
	}
}

// Close releases the real surface, unblocking Main. A no-op over a fake
// surface.
func (e *Engine) Close() {
	if e.realSurf != nil {
		e.realSurf.Close()
	}
}

func newEngine(cfg Config, in <-chan events.PhotoLoaded, cmdIn <-chan events.ViewerCommand, displayed chan<- events.Displayed, surface presentationSurface) (*Engine, error) {
	mattingSel, err := selection.NewSelector(cfg.MattingPolicy, cfg.MattingExplicit, cfg.MattingVariants, nil)
	if err != nil {
		return nil, err
	}

	var transitionSel *selection.Selector
	if len(cfg.Transitions) > 0 {
		transitionSel, err = selection.NewSelector(cfg.TransitionPolicy, cfg.TransitionExpl, cfg.Transitions, nil)
		if err != nil {
			return nil, err
		}
	}

	poolIn := make(chan matTask, cfg.PreloadCount)
	poolOut := make(chan matOutput, cfg.PreloadCount)
	avgCache := matting.NewAverageCache()
	pool := newMatPool(poolIn, poolOut, mattingSel, cfg.Matting, avgCache, cfg.Workers)

	machine := NewMachine(cfg.GreetingMinDur, nil)
	scheduler := NewScheduler(cfg.Dwell, transitionSel, cfg.Seed, displayed, nil)

	return &Engine{
		in:           in,
		cmdIn:        cmdIn,
		displayed:    displayed,
		queue:        newMatQueue(cfg.PreloadCount),
		pool:         pool,
		poolIn:       poolIn,
		poolOut:      poolOut,
		machine:      machine,
		scheduler:    scheduler,
		surface:      surface,
		preloadCount: cfg.PreloadCount,
	}, nil
}

// Run drives the viewer until ctx is canceled. It owns the matting pool's
// lifetime and the ingress multiplexing loop (spec §4.5.2).
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.pool.Run(ctx)
	})
	g.Go(func() error {
		e.dispatch(ctx)
		return nil
	})
	return g.Wait()
}

func (e *Engine) dispatch(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		// e.in is only offered to the select while there is room under
		// preloadCount (spec §4.5.4 step 3, §8 "|pending|+|inflight_mat| <=
		// preload_count at all ticks"): gating the receive, not dropping
		// what it yields, is how this stage applies backpressure upstream
		// instead of shedding load (spec §2, §5).
		var inCh <-chan events.PhotoLoaded
		if e.in != nil && e.hasRoom() {
			inCh = e.in
		}

		select {
		case <-ctx.Done():
			return

		case pl, ok := <-inCh:
			if !ok {
				e.in = nil
				continue
			}
			if !e.queue.Enqueue(pl) {
				log.Warnf("viewer: dropped %s, mat queue full despite capacity gate", pl.Prepared.Path)
			}

		case cmd, ok := <-e.cmdIn:
			if !ok {
				return
			}
			e.machine.Apply(cmd)

		case out, ok := <-e.poolOut:
			if !ok {
				return
			}
			if result, ok := e.queue.Complete(out); ok {
				e.onMatReady(result)
			}

		case <-ticker.C:
			e.tick()
		}
	}
}

// capacity reports how many photos currently occupy the bounded pipeline
// between ingress and display: staged/in-flight matting plus mats that have
// completed but not yet been shown.
func (e *Engine) capacity() int {
	return e.queue.Len() + len(e.pendingMat)
}

// hasRoom reports whether a new photo may be admitted without pushing
// capacity past preloadCount (spec §8).
func (e *Engine) hasRoom() bool {
	return e.capacity() < e.preloadCount
}

func (e *Engine) onMatReady(result events.MatResult) {
	if !e.sawFirstMat {
		e.sawFirstMat = true
		e.scheduler.SetCurrent(result)
		e.machine.PhotoReady()
		return
	}
	e.pendingMat = evictPath(e.pendingMat, result.Path)
	if result.Priority {
		e.pendingMat = append([]events.MatResult{result}, e.pendingMat...)
		return
	}
	e.pendingMat = append(e.pendingMat, result)
}

// evictPath removes any existing entry for path from list, preserving the
// order of the rest. A priority result supersedes a queued non-priority
// copy of the same path at every stage (spec §4.5.4 step 1).
func evictPath(list []events.MatResult, path string) []events.MatResult {
	for i, r := range list {
		if r.Path == path {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (e *Engine) tick() {
	e.machine.Tick()

	for e.queue.TrySubmit(e.poolIn) {
	}

	e.pendingMat = e.scheduler.MaybeStart(e.pendingMat)
	e.scheduler.Tick()

	state := e.machine.State()
	e.surface.SetState(state)
	if state != events.Awake {
		return
	}

	current := e.scheduler.Current()
	if next, params, active := e.scheduler.Peek(); active {
		frame := blendFrame(current.Canvas, next.Canvas, e.scheduler.Progress(), params)
		e.surface.ShowPhoto(frame)
		return
	}
	e.surface.ShowPhoto(current.Canvas)
}
