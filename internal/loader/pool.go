// Package loader decodes queued photos into CPU-side pixel buffers under a
// bounded concurrency cap (spec §4.3). The worker-pool shape is adapted from
// the teacher's pkg/wallpaper/pipeline.go (job channel, per-job goroutine,
// single result sink), swapping the teacher's fixed worker-count loop for a
// semaphore.Weighted acquire/release so concurrency tracks the configured
// cap exactly rather than a pre-spawned goroutine count.
package loader

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/util/log"
)

// Pool decodes LoadPhoto jobs into PhotoLoaded results, never running more
// than maxConcurrent decodes at once.
type Pool struct {
	in      <-chan events.LoadPhoto
	out     chan<- events.PhotoLoaded
	invalid chan<- events.InvalidPhoto
	sem     *semaphore.Weighted

	// load performs the actual read+decode+orient for one path. It is a
	// field (not a plain method call) so tests can wrap it to observe
	// concurrency without depending on real decode timing.
	load func(path string) (events.PreparedImageCPU, error)
}

// New builds a Pool. maxConcurrent must be >= 1.
func New(maxConcurrent int, in <-chan events.LoadPhoto, out chan<- events.PhotoLoaded, invalid chan<- events.InvalidPhoto) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	p := &Pool{
		in:      in,
		out:     out,
		invalid: invalid,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
	}
	p.load = p.defaultLoad
	return p
}

// Run consumes jobs from in until ctx is cancelled or in closes, blocking
// new acquisitions once maxConcurrent decodes are already in flight.
func (p *Pool) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil

		case job, ok := <-p.in:
			if !ok {
				return nil
			}
			if err := p.sem.Acquire(ctx, 1); err != nil {
				return nil
			}
			wg.Add(1)
			go func(job events.LoadPhoto) {
				defer wg.Done()
				defer p.sem.Release(1)
				p.process(ctx, job)
			}(job)
		}
	}
}

// process decodes a single job, reporting InvalidPhoto on any failure and
// never emitting PhotoLoaded for a path it could not decode (spec §4.3).
func (p *Pool) process(ctx context.Context, job events.LoadPhoto) {
	prepared, err := p.load(job.Path)
	if err != nil {
		log.Debugf("loader: %s: %v", job.Path, err)
		select {
		case p.invalid <- events.InvalidPhoto{Path: job.Path}:
		case <-ctx.Done():
		}
		return
	}

	select {
	case p.out <- events.PhotoLoaded{Prepared: prepared, Priority: job.Priority}:
	case <-ctx.Done():
	}
}

func (p *Pool) defaultLoad(path string) (events.PreparedImageCPU, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return events.PreparedImageCPU{}, fmt.Errorf("reading: %w", err)
	}

	img, err := Decode(path, data)
	if err != nil {
		return events.PreparedImageCPU{}, err
	}

	img = orient(img, exifOrientation(data))
	width, height, pixels := toRGBA8(img)

	return events.PreparedImageCPU{
		Path:   path,
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}
