package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetentionConfig bounds how much sample history the buffer keeps. Age and
// record count are independent limits; whichever bites first wins.
type RetentionConfig struct {
	MaxAge     time.Duration // default 24h
	MaxRecords int           // default 43200 (24h at 2s sampling)
	AlertLog   time.Duration // default 30d
}

// DefaultRetention returns the default retention limits.
func DefaultRetention() RetentionConfig {
	return RetentionConfig{
		MaxAge:     24 * time.Hour,
		MaxRecords: 43200,
		AlertLog:   30 * 24 * time.Hour,
	}
}

// Pruner periodically evicts old samples from the store. It runs on its own
// timer, decoupled from the append path; both eviction passes are idempotent
// and safe to run concurrently with appends, so capacity is a soft bound —
// an append racing a cleanup is caught on the next pass.
type Pruner struct {
	store     *Store
	retention RetentionConfig
	interval  time.Duration
}

// NewPruner creates a pruner with the given retention config.
func NewPruner(store *Store, retention RetentionConfig) *Pruner {
	return &Pruner{
		store:     store,
		retention: retention,
		interval:  30 * time.Minute,
	}
}

// Run starts the pruner loop. It blocks until the context is cancelled.
func (p *Pruner) Run(ctx context.Context) error {
	slog.Info("pruner started", "interval", p.interval,
		"max_age", p.retention.MaxAge, "max_records", p.retention.MaxRecords)

	// Run once at startup
	p.prune()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("pruner stopped")
			return ctx.Err()
		case <-ticker.C:
			p.prune()
		}
	}
}

func (p *Pruner) prune() {
	if err := p.pruneByAge(); err != nil {
		slog.Error("age-based eviction failed", "error", err)
	}
	if err := p.pruneByCount(); err != nil {
		slog.Error("count-based eviction failed", "error", err)
	}
	if err := p.pruneAlertLog(); err != nil {
		slog.Error("alert log eviction failed", "error", err)
	}
}

// pruneByAge deletes every sample older than the retention window. The
// timestamp index lets the scan stop at the first record inside the window.
func (p *Pruner) pruneByAge() error {
	cutoff := time.Now().Add(-p.retention.MaxAge).Unix()
	result, err := p.store.db.Exec(`DELETE FROM samples WHERE ts < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("deleting aged samples: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		slog.Info("evicted aged samples", "rows", rows)
	}
	return nil
}

// pruneByCount deletes the oldest samples beyond the record cap, oldest
// first via the timestamp index.
func (p *Pruner) pruneByCount() error {
	count, err := p.store.CountSamples()
	if err != nil {
		return err
	}
	excess := count - p.retention.MaxRecords
	if excess <= 0 {
		return nil
	}

	result, err := p.store.db.Exec(`
		DELETE FROM samples WHERE id IN (
			SELECT id FROM samples ORDER BY ts ASC, id ASC LIMIT ?
		)`, excess)
	if err != nil {
		return fmt.Errorf("deleting excess samples: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		slog.Info("evicted excess samples", "rows", rows)
	}
	return nil
}

func (p *Pruner) pruneAlertLog() error {
	cutoff := time.Now().Add(-p.retention.AlertLog).Unix()
	if _, err := p.store.db.Exec(`DELETE FROM alert_log WHERE ts < ?`, cutoff); err != nil {
		return fmt.Errorf("deleting aged alerts: %w", err)
	}
	return nil
}
