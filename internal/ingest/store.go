package ingest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/holee9/gx10-dashboard/internal/alerter"
	"github.com/holee9/gx10-dashboard/internal/model"
	"github.com/holee9/gx10-dashboard/internal/notify"
	"github.com/holee9/gx10-dashboard/internal/store"
)

const (
	// DefaultWindowCapacity is the charting window size — two minutes of
	// history at the default 2s broadcast interval.
	DefaultWindowCapacity = 60

	// maxRetainedAlerts caps the alert list; the oldest entries are dropped
	// first, dismissed or not.
	maxRetainedAlerts = 50
)

// Store is the client-side ingest state holder. It owns the in-memory
// charting window, the de-duplicated alert list and the link to the durable
// sample buffer. All collaborators are injected so the transition logic is
// testable with in-memory fakes.
type Store struct {
	window    *Window
	settings  SettingsStore
	providers []notify.Provider
	buffer    *store.Store // nil disables persistence

	mu            sync.Mutex
	thresholds    model.AlertThresholds
	alertsEnabled bool
	alerts        []model.Alert

	wg sync.WaitGroup // in-flight buffer writes
}

// New creates an ingest store, restoring thresholds, the enabled flag and
// the alert list from settings. buffer may be nil when the durable buffer
// is unavailable; windowing and alerting continue unaffected.
func New(settings SettingsStore, buffer *store.Store, providers []notify.Provider) *Store {
	loaded, err := settings.Load()
	if err != nil {
		slog.Warn("loading settings, falling back to defaults", "error", err)
		loaded = DefaultSettings()
	}
	return &Store{
		window:        NewWindow(DefaultWindowCapacity),
		settings:      settings,
		providers:     providers,
		buffer:        buffer,
		thresholds:    loaded.Thresholds,
		alertsEnabled: loaded.AlertsEnabled,
		alerts:        loaded.Alerts,
	}
}

// OnMessage folds one pushed wire message into client state. The window
// update completes synchronously before return; the durable sample append
// runs asynchronously and its failures are logged, never surfaced.
func (s *Store) OnMessage(ctx context.Context, msg model.WireMessage) {
	s.window.Append(historySample(msg.Data))

	if s.AlertsEnabled() {
		s.processEvents(ctx, msg.Alerts)
	}

	if s.buffer != nil {
		sample := model.NewPersistedSample(msg.Data)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.buffer.AppendSample(sample); err != nil {
				slog.Warn("appending sample to buffer", "error", err)
			}
		}()
	}
}

// processEvents de-duplicates incoming alert events against the current
// alert list. A category with an existing non-dismissed alert is suppressed
// until that alert is dismissed. The check-then-insert runs under one lock
// so two concurrent ticks cannot both pass the active-alert check.
func (s *Store) processEvents(ctx context.Context, events []model.AlertEvent) {
	var created []model.Alert

	s.mu.Lock()
	for _, ev := range events {
		if s.hasActiveLocked(ev.Category) {
			continue
		}
		a := model.Alert{
			ID:        uuid.NewString(),
			Category:  ev.Category,
			Severity:  ev.Severity,
			Message:   ev.Message,
			Value:     ev.Value,
			Threshold: ev.Threshold,
			Timestamp: ev.Timestamp,
		}
		s.alerts = append(s.alerts, a)
		created = append(created, a)
	}
	if len(created) > 0 {
		if over := len(s.alerts) - maxRetainedAlerts; over > 0 {
			s.alerts = append([]model.Alert(nil), s.alerts[over:]...)
		}
		s.persistLocked()
	}
	s.mu.Unlock()

	for _, a := range created {
		if s.buffer != nil {
			if err := s.buffer.InsertAlert(a); err != nil {
				slog.Warn("logging alert to buffer", "error", err)
			}
		}
		if a.Severity == model.SeverityCritical {
			s.sendNotifications(ctx, a)
		}
	}
}

func (s *Store) hasActiveLocked(cat model.AlertCategory) bool {
	for _, a := range s.alerts {
		if a.Category == cat && !a.Dismissed {
			return true
		}
	}
	return false
}

// sendNotifications fires every configured provider for a newly created
// critical alert. Warning alerts never notify.
func (s *Store) sendNotifications(ctx context.Context, a model.Alert) {
	for _, p := range s.providers {
		if err := p.Send(ctx, a); err != nil {
			slog.Error("sending notification", "provider", p.Name(), "category", a.Category, "error", err)
		}
	}
}

// Dismiss marks one alert dismissed by id. The alert stays in the list and
// in storage; other alerts are unaffected. Reports whether the id was found.
func (s *Store) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Dismissed = true
			s.persistLocked()
			return true
		}
	}
	return false
}

// ClearAll empties the alert list and persists the empty list.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = []model.Alert{}
	s.persistLocked()
}

// Alerts returns a copy of the retained alert list, oldest first.
func (s *Store) Alerts() []model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Alert(nil), s.alerts...)
}

// Thresholds returns the client's current alert thresholds.
func (s *Store) Thresholds() model.AlertThresholds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thresholds
}

// SetThresholds merges a partial update, rejecting the whole patch when the
// merged result is invalid. Valid updates write through to settings and take
// effect on the next evaluation.
func (s *Store) SetThresholds(patch model.ThresholdPatch) (model.AlertThresholds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := alerter.NewThresholdStore(s.thresholds).Set(patch)
	if err != nil {
		return model.AlertThresholds{}, err
	}
	s.thresholds = merged
	s.persistLocked()
	return merged, nil
}

// AlertsEnabled reports whether alert processing is on.
func (s *Store) AlertsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alertsEnabled
}

// SetAlertsEnabled toggles alert processing and writes through to settings.
func (s *Store) SetAlertsEnabled(enabled bool) {
	s.mu.Lock()
	s.alertsEnabled = enabled
	s.persistLocked()
	s.mu.Unlock()

	if enabled {
		slog.Info("alerts enabled", "notification_channels", len(s.providers))
	}
}

// Window returns the in-memory charting window.
func (s *Store) Window() *Window {
	return s.window
}

// Close waits for in-flight buffer writes and closes the buffer connection.
// Safe to call with persistence disabled.
func (s *Store) Close() error {
	s.wg.Wait()
	if s.buffer == nil {
		return nil
	}
	return s.buffer.Close()
}

// persistLocked writes current settings through to durable local storage.
// Failures are logged and swallowed: local persistence is best-effort and a
// failed save must not disturb in-memory state.
func (s *Store) persistLocked() {
	snapshot := Settings{
		Thresholds:    s.thresholds,
		AlertsEnabled: s.alertsEnabled,
		Alerts:        append([]model.Alert(nil), s.alerts...),
	}
	if err := s.settings.Save(snapshot); err != nil {
		slog.Warn("persisting settings", "error", err)
	}
}

func historySample(d model.MetricsSnapshot) model.HistorySample {
	h := model.HistorySample{
		Timestamp:     d.Timestamp,
		CPUPercent:    d.CPU.Usage,
		MemoryPercent: d.Memory.Percent,
	}
	if d.GPU != nil {
		v := d.GPU.Utilization
		h.GPUPercent = &v
	}
	return h
}
