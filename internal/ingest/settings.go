package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/holee9/gx10-dashboard/internal/alerter"
	"github.com/holee9/gx10-dashboard/internal/model"
)

// Settings is the client's durable local configuration: thresholds, the
// alerts-enabled toggle and the retained alert list.
type Settings struct {
	Thresholds    model.AlertThresholds `json:"thresholds"`
	AlertsEnabled bool                  `json:"alerts_enabled"`
	Alerts        []model.Alert         `json:"alerts"`
}

// DefaultSettings returns settings for a first run.
func DefaultSettings() Settings {
	return Settings{
		Thresholds:    alerter.DefaultThresholds(),
		AlertsEnabled: true,
		Alerts:        []model.Alert{},
	}
}

// SettingsStore persists client settings. Implementations must make Save
// atomic: a crash mid-write leaves the previous settings intact.
type SettingsStore interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileSettings persists settings as a JSON file, written via a temp file
// and rename so a partial write never corrupts the previous state.
type FileSettings struct {
	path string
}

// NewFileSettings creates a file-backed settings store at path.
func NewFileSettings(path string) *FileSettings {
	return &FileSettings{path: path}
}

// Load reads the settings file. A missing file yields defaults.
func (f *FileSettings) Load() (Settings, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings: %w", err)
	}
	if s.Alerts == nil {
		s.Alerts = []model.Alert{}
	}
	return s, nil
}

// Save writes the settings file atomically.
func (f *FileSettings) Save(s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
