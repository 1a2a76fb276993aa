// Package store provides the durable SQLite time-series buffer.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// Store wraps a SQLite database holding persisted samples and the alert log.
// Samples are append-only; retention is enforced by the Pruner.
type Store struct {
	db *sql.DB
}

// New opens or creates a SQLite database at the given path and runs
// migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendSample records one sample. The auto-incrementing key guarantees a
// record is never overwritten.
func (s *Store) AppendSample(sample model.PersistedSample) error {
	_, err := s.db.Exec(`
		INSERT INTO samples (ts, cpu_pct, mem_pct, gpu_pct, gpu_temp, gpu_mem)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sample.Timestamp, sample.CPUPercent, sample.MemoryPercent,
		sample.GPUPercent, sample.GPUTemperature, sample.GPUMemoryUsed,
	)
	if err != nil {
		return fmt.Errorf("appending sample: %w", err)
	}
	return nil
}

// QuerySamplesSince returns all samples with ts >= since, in chronological
// order.
func (s *Store) QuerySamplesSince(since int64) ([]model.PersistedSample, error) {
	rows, err := s.db.Query(`
		SELECT id, ts, cpu_pct, mem_pct, gpu_pct, gpu_temp, gpu_mem
		FROM samples WHERE ts >= ?
		ORDER BY ts ASC, id ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()
	return scanSamples(rows)
}

// QueryRecentSamples returns the n most recent samples in chronological
// order, regardless of the underlying scan direction.
func (s *Store) QueryRecentSamples(n int) ([]model.PersistedSample, error) {
	rows, err := s.db.Query(`
		SELECT id, ts, cpu_pct, mem_pct, gpu_pct, gpu_temp, gpu_mem
		FROM samples
		ORDER BY ts DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying recent samples: %w", err)
	}
	defer rows.Close()

	samples, err := scanSamples(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

func scanSamples(rows *sql.Rows) ([]model.PersistedSample, error) {
	var samples []model.PersistedSample
	for rows.Next() {
		var p model.PersistedSample
		if err := rows.Scan(&p.ID, &p.Timestamp, &p.CPUPercent, &p.MemoryPercent,
			&p.GPUPercent, &p.GPUTemperature, &p.GPUMemoryUsed); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		samples = append(samples, p)
	}
	return samples, rows.Err()
}

// CountSamples returns the number of persisted samples.
func (s *Store) CountSamples() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting samples: %w", err)
	}
	return n, nil
}

// ClearSamples deletes every persisted sample.
func (s *Store) ClearSamples() error {
	if _, err := s.db.Exec(`DELETE FROM samples`); err != nil {
		return fmt.Errorf("clearing samples: %w", err)
	}
	return nil
}

// InsertAlert logs a created alert.
func (s *Store) InsertAlert(a model.Alert) error {
	_, err := s.db.Exec(`
		INSERT INTO alert_log (alert_id, ts, category, severity, message, value, threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Timestamp.Unix(), string(a.Category), string(a.Severity),
		a.Message, a.Value, a.Threshold,
	)
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	return nil
}

// QueryRecentAlerts returns the n most recent logged alerts, newest first.
func (s *Store) QueryRecentAlerts(n int) ([]model.Alert, error) {
	rows, err := s.db.Query(`
		SELECT alert_id, ts, category, severity, message, value, threshold
		FROM alert_log
		ORDER BY ts DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		var ts int64
		var category, severity string
		if err := rows.Scan(&a.ID, &ts, &category, &severity, &a.Message, &a.Value, &a.Threshold); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		a.Timestamp = timeFromUnix(ts)
		a.Category = model.AlertCategory(category)
		a.Severity = model.Severity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
