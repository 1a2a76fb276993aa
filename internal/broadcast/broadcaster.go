package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/holee9/gx10-dashboard/internal/alerter"
	"github.com/holee9/gx10-dashboard/internal/collector"
	"github.com/holee9/gx10-dashboard/internal/model"
)

// MinInterval is the lowest sampling interval accepted, to prevent runaway
// shell-out sampling.
const MinInterval = 500 * time.Millisecond

// SampleRecorder receives each delivered tick's sample for durable storage.
type SampleRecorder interface {
	AppendSample(sample model.PersistedSample) error
}

// Broadcaster samples the metric source on a fixed interval, evaluates
// alerts and pushes the combined payload to every subscriber.
type Broadcaster struct {
	source        collector.Source
	disk          collector.DiskSource
	thresholds    *alerter.ThresholdStore
	hub           *Hub
	interval      time.Duration
	alertsEnabled bool
	recorder      SampleRecorder

	mu       sync.Mutex
	lastTick time.Time
}

// NewBroadcaster creates a broadcaster. Intervals below MinInterval are
// clamped. disk may be nil, in which case the disk alert category is never
// evaluated.
func NewBroadcaster(src collector.Source, disk collector.DiskSource, th *alerter.ThresholdStore, hub *Hub, interval time.Duration, alertsEnabled bool) *Broadcaster {
	if interval < MinInterval {
		interval = MinInterval
	}
	return &Broadcaster{
		source:        src,
		disk:          disk,
		thresholds:    th,
		hub:           hub,
		interval:      interval,
		alertsEnabled: alertsEnabled,
	}
}

// Run drives the sampling loop until the context is cancelled. The timer is
// re-armed only after a tick's work completes, so a slow capture delays the
// next tick instead of piling up concurrent ones. No tick is observable
// after Run returns.
func (b *Broadcaster) Run(ctx context.Context) error {
	slog.Info("broadcaster started", "interval", b.interval, "alerts_enabled", b.alertsEnabled)

	timer := time.NewTimer(b.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("broadcaster stopped")
			return ctx.Err()
		case <-timer.C:
			b.tick(ctx)
			timer.Reset(b.interval)
		}
	}
}

// SetRecorder attaches a durable sample recorder. Delivered ticks are then
// also appended to it; recording failures are logged and never disturb
// delivery. Must be called before Run.
func (b *Broadcaster) SetRecorder(r SampleRecorder) {
	b.recorder = r
}

// tick performs one capture-evaluate-deliver cycle. With no subscribers it
// does nothing at all — not even the metric source call — to avoid wasted
// shell-outs while nobody is watching.
func (b *Broadcaster) tick(ctx context.Context) {
	if b.hub.Count() == 0 {
		return
	}
	msg := b.collect(ctx)
	b.hub.Broadcast(msg)

	if b.recorder != nil {
		if err := b.recorder.AppendSample(model.NewPersistedSample(msg.Data)); err != nil {
			slog.Warn("recording sample", "error", err)
		}
	}

	b.mu.Lock()
	b.lastTick = time.Now()
	b.mu.Unlock()
}

// collect captures one snapshot and evaluates alerts against the current
// thresholds. Source failures surface as absent snapshot fields and never
// abort the cycle.
func (b *Broadcaster) collect(ctx context.Context) model.WireMessage {
	snap := b.source.Capture(ctx)

	var diskPct *float64
	if b.disk != nil {
		diskPct = b.disk.UsagePercent(ctx)
	}

	alerts := []model.AlertEvent{}
	if b.alertsEnabled {
		if evs := alerter.Evaluate(snap, diskPct, b.thresholds.Get()); evs != nil {
			alerts = evs
		}
	}

	return model.WireMessage{Type: model.MessageTypeMetrics, Data: snap, Alerts: alerts}
}

// Prime pushes one immediate out-of-band cycle to a newly connected
// subscriber so it does not wait a full interval for its first data.
func (b *Broadcaster) Prime(ctx context.Context, sub Subscriber) {
	if err := sub.Send(b.collect(ctx)); err != nil {
		slog.Warn("priming subscriber", "error", err)
		b.hub.Remove(sub)
	}
}

// LastTick reports when the loop last delivered a payload. Zero until the
// first delivery.
func (b *Broadcaster) LastTick() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastTick
}
