package viewer

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/internal/matting"
	"github.com/dixieflatline76/photoframe/internal/selection"
	"github.com/dixieflatline76/photoframe/util/log"
)

// rehydrate wraps a PreparedImageCPU's raw RGBA8 buffer as an image.Image
// without copying, mirroring the photo-effect stage's rehydration of the
// same buffer shape.
func rehydrate(p events.PreparedImageCPU) image.Image {
	return &image.NRGBA{
		Pix:    p.Pixels,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// matTask is one unit of matting work. Generation is bumped by the queue
// whenever a task is superseded, letting matQueue.Complete discard a stale
// result instead of racing it onto the surface.
type matTask struct {
	Photo      events.PreparedImageCPU
	Priority   bool
	Generation uint64
}

// matOutput is a matTask's completed render, still tagged with the
// generation it was produced for.
type matOutput struct {
	Result     events.MatResult
	Generation uint64
}

// render is the pure matting step: it is a struct field (not a bound
// method) purely so tests can substitute a deterministic/fast stand-in
// without a real font/crop pipeline.
type matPool struct {
	in       <-chan matTask
	out      chan<- matOutput
	selector *selection.Selector
	params   matting.Params
	avgCache *matting.AverageCache
	render   func(photo events.PreparedImageCPU, variant matting.Variant, params matting.Params, cache *matting.AverageCache) events.Canvas
	workers  int
}

// newMatPool builds a matting worker pool (spec §4.5.4). Worker count
// defaults to the host's hardware parallelism, matching the teacher's
// pipeline worker-count convention in cmd/main wiring.
func newMatPool(in <-chan matTask, out chan<- matOutput, selector *selection.Selector, params matting.Params, avgCache *matting.AverageCache, workers int) *matPool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	return &matPool{
		in:       in,
		out:      out,
		selector: selector,
		params:   params,
		avgCache: avgCache,
		render:   defaultRender,
		workers:  workers,
	}
}

func defaultRender(photo events.PreparedImageCPU, variant matting.Variant, params matting.Params, cache *matting.AverageCache) events.Canvas {
	img := rehydrate(photo)
	return matting.Render(img, photo.Path, variant, params, cache)
}

// Run drives the worker pool until ctx is canceled or in is closed.
func (p *matPool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			return p.worker(ctx)
		})
	}
	return g.Wait()
}

func (p *matPool) worker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task, ok := <-p.in:
			if !ok {
				return nil
			}
			entry := p.selector.Next()
			variant, ok := entry.Kind.(matting.Variant)
			if !ok {
				log.Printf("viewer: matting pool: unexpected selection entry kind %T", entry.Kind)
				continue
			}
			canvas := p.render(task.Photo, variant, p.params, p.avgCache)
			result := events.MatResult{Path: task.Photo.Path, Canvas: canvas, Priority: task.Priority}
			select {
			case p.out <- matOutput{Result: result, Generation: task.Generation}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
