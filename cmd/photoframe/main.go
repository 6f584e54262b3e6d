// Command photoframe is the thin entrypoint: load the configuration file,
// wire the inventory/playlist/loader/effect/viewer pipeline plus the
// schedule driver and control plane, and run until a signal cancels it
// (spec §1 "thin command-line entry and config-file loading" is the one
// out-of-scope item this file exists to cover).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/control"
	"github.com/dixieflatline76/photoframe/internal/effect"
	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/internal/inventory"
	"github.com/dixieflatline76/photoframe/internal/loader"
	"github.com/dixieflatline76/photoframe/internal/matting"
	"github.com/dixieflatline76/photoframe/internal/metrics"
	"github.com/dixieflatline76/photoframe/internal/playlist"
	"github.com/dixieflatline76/photoframe/internal/schedule"
	"github.com/dixieflatline76/photoframe/internal/selection"
	"github.com/dixieflatline76/photoframe/internal/viewer"
	"github.com/dixieflatline76/photoframe/util/log"
)

// defaultScreenWidth/Height and maxTextureDimension stand in for the real
// adapter/display query (spec §1 treats GPU rendering as an opaque
// collaborator): the matting canvas is sized off these until a real
// display backend is wired in.
const (
	defaultScreenWidth  = 1920
	defaultScreenHeight = 1080
	maxTextureDimension = 8192
)

func main() {
	configPath := flag.String("config", "photoframe.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("photoframe: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("photoframe: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mattingParams := matting.Params{
		ScreenWidth:          defaultScreenWidth,
		ScreenHeight:         defaultScreenHeight,
		Oversample:           cfg.GlobalPhotoSettings.Oversample,
		MaxUpscale:           cfg.Matting.MaxUpscaleFactor,
		MinimumMatPercentage: cfg.Matting.MinimumMatPercentage,
		MaxTexture:           maxTextureDimension,
	}

	mattingVariants, err := matting.BuildVariants(cfg.Matting.Variants)
	if err != nil {
		return fmt.Errorf("matting config: %w", err)
	}
	mattingPolicy, err := selection.ParsePolicy(cfg.Matting.Policy)
	if err != nil {
		return fmt.Errorf("matting config: %w", err)
	}

	transitionEntries := viewer.BuildTransitions(cfg.Transition.Variants)
	transitionPolicy, err := selection.ParsePolicy(cfg.Transition.Policy)
	if err != nil {
		return fmt.Errorf("transition config: %w", err)
	}

	// Pipeline channels (spec §2 data flow; bounded per stage, per §5
	// "every producer awaits capacity").
	inventoryEvents := make(chan events.InventoryEvent, 64)
	invalidPhoto := make(chan events.InvalidPhoto, 8)
	loadPhoto := make(chan events.LoadPhoto)
	photoLoaded := make(chan events.PhotoLoaded, 1)
	photoLoadedViewer := make(chan events.PhotoLoaded, 1)

	displayedRaw := make(chan events.Displayed, 8)
	playlistDisplayed := make(chan events.Displayed, 8)
	metricsDisplayed := make(chan events.Displayed, 8)

	// Control-plane/schedule commands merge into the viewer's single
	// ingress channel (spec §4.7: bounded 64 slots, backpressured, never
	// dropped).
	controlOut := make(chan events.ViewerCommand, 64)
	scheduleOut := make(chan events.ViewerCommand, 4)
	viewerCmd := make(chan events.ViewerCommand, 64)

	inv := inventory.New(cfg.PhotoLibraryPath, cfg.StartupShuffleSeed, inventoryEvents, invalidPhoto)
	pl := playlist.New(cfg.Playlist, cfg.StartupShuffleSeed, inventoryEvents, playlistDisplayed, loadPhoto)
	ld := loader.New(cfg.LoaderMaxConcurrentDecodes, loadPhoto, photoLoaded, invalidPhoto)

	fx, err := effect.New(cfg.PhotoEffect, cfg.StartupShuffleSeed, photoLoaded, photoLoadedViewer)
	if err != nil {
		return fmt.Errorf("photo-effect config: %w", err)
	}

	engineCfg := viewer.Config{
		Matting:          mattingParams,
		MattingVariants:  mattingVariants,
		MattingPolicy:    mattingPolicy,
		MattingExplicit:  cfg.Matting.Policy != "",
		Transitions:      transitionEntries,
		TransitionPolicy: transitionPolicy,
		TransitionExpl:   cfg.Transition.Policy != "",
		Dwell:            time.Duration(cfg.GlobalPhotoSettings.DwellMs) * time.Millisecond,
		GreetingMinDur:   time.Duration(cfg.GreetingScreen.MinDurationMs) * time.Millisecond,
		Greeting:         cfg.GreetingScreen,
		Sleep:            cfg.SleepScreen,
		PreloadCount:     cfg.ViewerPreloadCount,
		Seed:             cfg.StartupShuffleSeed,
	}
	engine, err := viewer.NewEngine(engineCfg, photoLoadedViewer, viewerCmd, displayedRaw)
	if err != nil {
		return fmt.Errorf("viewer config: %w", err)
	}

	ctrl := control.New(resolveSocketPath(cfg.ControlSocketPath), controlOut)

	var sched *schedule.Driver
	if cfg.AwakeSchedule != nil {
		sched, err = schedule.New(cfg.AwakeSchedule, scheduleOut, engineCfg.GreetingMinDur)
		if err != nil {
			return fmt.Errorf("awake-schedule config: %w", err)
		}
	}

	met := metrics.New(metricsDisplayed)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return inv.Run(gctx) })
	g.Go(func() error { return pl.Run(gctx) })
	g.Go(func() error { return ld.Run(gctx) })
	g.Go(func() error { return fx.Run(gctx) })
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error { return ctrl.Run(gctx) })
	g.Go(func() error { return met.Run(gctx) })
	if sched != nil {
		g.Go(func() error { return sched.Run(gctx) })
	}
	g.Go(func() error {
		metrics.Fanout(gctx, displayedRaw, playlistDisplayed, metricsDisplayed)
		return nil
	})
	g.Go(func() error {
		return forwardCommands(gctx, controlOut, scheduleOut, viewerCmd)
	})

	go func() {
		<-gctx.Done()
		engine.Close()
	}()

	// The window event loop runs on this goroutine (fyne requires it on
	// several platforms); everything else runs on the async tasks above.
	engine.Main()
	cancel()
	return g.Wait()
}

// forwardCommands is the "forwarding task" of spec §4.7: it copies
// commands from both external sources into the viewer's single ingress
// channel, backpressured, never dropping.
func forwardCommands(ctx context.Context, control, schedule <-chan events.ViewerCommand, out chan<- events.ViewerCommand) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd, ok := <-control:
			if !ok {
				control = nil
				continue
			}
			if !forwardOne(ctx, cmd, out) {
				return nil
			}
		case cmd, ok := <-schedule:
			if !ok {
				schedule = nil
				continue
			}
			if !forwardOne(ctx, cmd, out) {
				return nil
			}
		}
	}
}

func forwardOne(ctx context.Context, cmd events.ViewerCommand, out chan<- events.ViewerCommand) bool {
	select {
	case out <- cmd:
		return true
	case <-ctx.Done():
		return false
	}
}

// resolveSocketPath joins a bare filename (spec §6.1's "platform-appropriate
// default") against the OS temp directory; an already-qualified path
// (absolute, or containing a separator) is used as-is.
func resolveSocketPath(configured string) string {
	if filepath.IsAbs(configured) || filepath.Dir(configured) != "." {
		return configured
	}
	return filepath.Join(os.TempDir(), configured)
}
