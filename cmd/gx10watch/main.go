// gx10watch is a headless dashboard client: it subscribes to the gx10d
// metrics stream, maintains the charting window and alert list, records
// samples to a local SQLite buffer and fires notifications for critical
// alerts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/holee9/gx10-dashboard/internal/ingest"
	"github.com/holee9/gx10-dashboard/internal/notify"
	"github.com/holee9/gx10-dashboard/internal/store"
	"github.com/holee9/gx10-dashboard/internal/stream"
)

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gx10watch.json"
	}
	return filepath.Join(dir, "gx10", "settings.json")
}

func main() {
	url := flag.String("url", "ws://127.0.0.1:3900/ws", "gx10d websocket URL")
	dbPath := flag.String("db", "", "local sample buffer path (empty disables recording)")
	settingsPath := flag.String("settings", defaultSettingsPath(), "settings file path")
	reconnect := flag.Duration("reconnect", stream.DefaultReconnectDelay, "reconnect delay")
	ntfyURL := flag.String("ntfy-url", "", "ntfy server URL for critical alerts")
	ntfyTopic := flag.String("ntfy-topic", "", "ntfy topic")
	webhookURL := flag.String("webhook-url", "", "webhook URL for critical alerts")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var buffer *store.Store
	if *dbPath != "" {
		var err error
		buffer, err = store.New(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: opening buffer: %s\n", err)
			os.Exit(1)
		}
	}

	var providers []notify.Provider
	if *ntfyURL != "" && *ntfyTopic != "" {
		providers = append(providers, notify.NewNtfy(*ntfyURL, *ntfyTopic))
	}
	if *webhookURL != "" {
		providers = append(providers, notify.NewWebhook(*webhookURL, "", nil))
	}

	ing := ingest.New(ingest.NewFileSettings(*settingsPath), buffer, providers)
	client := stream.NewClient(*url, ing, *reconnect)

	slog.Info("starting gx10watch",
		"url", *url,
		"recording", *dbPath != "",
		"notifications", len(providers),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(ctx) })

	if buffer != nil {
		pruner := store.NewPruner(buffer, store.DefaultRetention())
		g.Go(func() error { return pruner.Run(ctx) })
	}

	// Periodic window summary so a headless run shows signs of life.
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				slog.Info("window", "samples", ing.Window().Len(), "alerts", len(ing.Alerts()), "state", client.State())
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal error", "error", err)
	}

	if err := ing.Close(); err != nil {
		slog.Error("closing ingest store", "error", err)
	}
	slog.Info("gx10watch stopped gracefully")
}
