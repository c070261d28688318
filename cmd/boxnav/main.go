package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/boxnav/internal/bridge"
	"github.com/zeusync/boxnav/internal/core/events/bus"
	"github.com/zeusync/boxnav/internal/core/navigator"
	"github.com/zeusync/boxnav/internal/core/observability/log"
	"github.com/zeusync/boxnav/internal/core/scenario"
	"github.com/zeusync/boxnav/internal/core/simulation"
	"github.com/zeusync/boxnav/internal/server"
)

func main() {
	var (
		scenarioPath    = flag.String("scenario", "", "path to a YAML or JSON scenario file (built-in hallway route when empty)")
		kind            = flag.String("navigator", "", "navigator kind override: perfect or wandering")
		seed            = flag.Int64("seed", 0, "random seed override for the wandering navigator")
		maxActions      = flag.Int("max-actions", 0, "action limit override")
		bridgeAddr      = flag.String("bridge", "", "renderer bridge address (bridge disabled when empty)")
		bridgeTransport = flag.String("bridge-transport", "websocket", "bridge transport: websocket or quic")
		viewerAddr      = flag.String("viewer", "", "viewer listen address (viewer disabled when empty)")
		logLevel        = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := log.New(log.ParseLevel(*logLevel))

	sc, err := loadScenario(*scenarioPath)
	if err != nil {
		fatal(logger, "load scenario", err)
	}
	applyOverrides(sc, *kind, *seed, *maxActions)

	_, nav, err := sc.Build()
	if err != nil {
		fatal(logger, "build scenario", err)
	}
	logger.Info("scenario ready",
		log.String("name", sc.Name),
		log.String("navigator", string(sc.Navigator)),
		log.Int("boxes", len(sc.Boxes)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-stopCh
		cancel()
	}()

	eventBus := bus.New()
	defer eventBus.Close()

	if *bridgeAddr != "" {
		b, err := bridge.New(ctx, bridge.Config{
			Addr:      *bridgeAddr,
			Transport: bridge.Transport(*bridgeTransport),
			Timeout:   5 * time.Second,
			Retries:   2,
		}, logger)
		if err != nil {
			fatal(logger, "connect renderer bridge", err)
		}
		defer b.Close()
		sub := bridge.Attach(b, eventBus, 5*time.Second, logger)
		defer sub.Cancel()
		go drainCaptures(ctx, b, logger)
	}

	g, gctx := errgroup.WithContext(ctx)

	var viewer *server.Viewer
	if *viewerAddr != "" {
		viewer = server.NewViewer(eventBus, logger)
		g.Go(func() error { return viewer.Start(*viewerAddr) })
	}

	var trajectory *simulation.Trajectory
	g.Go(func() error {
		defer cancel()
		loop := simulation.NewLoop(nav, eventBus, logger)
		var runErr error
		trajectory, runErr = loop.Run(gctx)
		return runErr
	})

	if viewer != nil {
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer shutdownCancel()
			return viewer.Stop(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fatal(logger, "simulation", err)
	}

	printSummary(trajectory, nav)
}

func loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Default(), nil
	}
	return scenario.LoadFile(path)
}

// applyOverrides folds the command line flags that were explicitly set
// into the scenario.
func applyOverrides(sc *scenario.Scenario, kind string, seed int64, maxActions int) {
	if kind != "" {
		sc.Navigator = navigator.Kind(kind)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			sc.Motion.Seed = seed
		case "max-actions":
			sc.Motion.ActionLimit = maxActions
		}
	})
}

// drainCaptures logs capture references the renderer sends back.
func drainCaptures(ctx context.Context, b bridge.Bridge, logger log.Log) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				ref, ok := b.TryReceiveCapture()
				if !ok {
					break
				}
				logger.Info("capture received",
					log.Int("step", ref.Step),
					log.String("ref", ref.Ref),
				)
			}
		}
	}
}

func printSummary(trajectory *simulation.Trajectory, nav navigator.Navigator) {
	if trajectory == nil {
		return
	}
	fmt.Print("Simulation complete. ")
	actions := nav.ActionsTaken()
	if trajectory.FinalStatus() == navigator.StatusReached {
		fmt.Printf("Agent reached final target in %d actions.\n", actions)
	} else {
		fmt.Printf("Agent was unable to reach final target within %d actions (%s).\n",
			actions, trajectory.FinalStatus())
	}
}

func fatal(logger log.Log, msg string, err error) {
	logger.Error(msg, log.Error(err))
	os.Exit(1)
}
