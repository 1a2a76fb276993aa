package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holee9/gx10-dashboard/internal/alerter"
	"github.com/holee9/gx10-dashboard/internal/model"
)

func TestFileSettings_LoadMissingFile(t *testing.T) {
	f := NewFileSettings(filepath.Join(t.TempDir(), "settings.json"))

	s, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, alerter.DefaultThresholds(), s.Thresholds)
	assert.True(t, s.AlertsEnabled)
	assert.Empty(t, s.Alerts)
}

func TestFileSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	f := NewFileSettings(path)

	in := DefaultSettings()
	in.AlertsEnabled = false
	in.Thresholds.CPU.Warning = 42
	in.Alerts = []model.Alert{{
		ID:        "a1",
		Category:  model.CategoryCPU,
		Severity:  model.SeverityCritical,
		Message:   "CPU usage high",
		Value:     95,
		Threshold: 90,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Dismissed: true,
	}}
	require.NoError(t, f.Save(in))

	out, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFileSettings_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileSettings(path).Load()
	assert.Error(t, err)
}

func TestFileSettings_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, NewFileSettings(path).Save(DefaultSettings()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.json", entries[0].Name())
}
