package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/holee9/gx10-dashboard/internal/alerter"
	"github.com/holee9/gx10-dashboard/internal/api"
	"github.com/holee9/gx10-dashboard/internal/broadcast"
	"github.com/holee9/gx10-dashboard/internal/collector"
	"github.com/holee9/gx10-dashboard/internal/config"
	"github.com/holee9/gx10-dashboard/internal/store"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// buildInfo returns version, commit, build time, and VCS details from the
// embedded Go build info. ldflags-injected values take priority; VCS info
// from debug.ReadBuildInfo fills in anything left as default.
func buildInfo() (ver, sha, built, dirty string) {
	ver = version
	sha = commit
	built = buildTime
	dirty = "clean"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if sha == "none" {
				sha = s.Value
			}
		case "vcs.time":
			if built == "unknown" {
				built = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "dirty"
			}
		}
	}

	return
}

func setupLogging(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	configPath := flag.String("config", "", "path to gx10.yml config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	ver, sha, built, dirty := buildInfo()

	if *showVersion {
		fmt.Printf("gx10d %s\n  commit:    %s (%s)\n  built:     %s\n  go:        %s\n  platform:  %s/%s\n",
			ver, sha, dirty, built, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigFileNotFound) {
			fmt.Fprintf(os.Stderr, "error: %s\n\n", err)
			fmt.Fprintf(os.Stderr, "Copy the example config to get started:\n")
			fmt.Fprintf(os.Stderr, "  cp gx10.example.yml %s\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "error: loading config (%s): %s\n", *configPath, err)
		}
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting gx10d",
		"version", ver,
		"commit", sha,
		"built", built,
		"dirty", dirty,
		"go", runtime.Version(),
		"listen", cfg.Listen,
	)

	st, err := store.New(cfg.DBPath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	pool := collector.NewWorkerPool(4)
	ollama := collector.NewOllamaClient(cfg.OllamaURL)
	source := collector.NewSystemSource(pool, ollama, cfg.BrainStatePath)

	thresholds := alerter.NewThresholdStore(cfg.EffectiveThresholds())
	hub := broadcast.NewHub()
	b := broadcast.NewBroadcaster(source, collector.SystemDiskSource{}, thresholds, hub,
		cfg.SampleInterval.Duration, cfg.EffectiveAlertsEnabled())
	b.SetRecorder(st)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return b.Run(ctx) })

	pruner := store.NewPruner(st, cfg.EffectiveRetention())
	g.Go(func() error { return pruner.Run(ctx) })

	server := api.NewServer(cfg.Listen, thresholds, hub, b, st)
	g.Go(func() error { return server.Run(ctx) })

	slog.Info("all components started",
		"sample_interval", cfg.SampleInterval.Duration,
		"alerts_enabled", cfg.EffectiveAlertsEnabled(),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal error", "error", err)
	}

	slog.Info("gx10d stopped gracefully")
}
