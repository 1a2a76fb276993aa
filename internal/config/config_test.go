package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holee9/gx10-dashboard/internal/alerter"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gx10.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3900", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 2*time.Second, cfg.SampleInterval.Duration)
	assert.Equal(t, 24*time.Hour, cfg.Retention.MaxAge.Duration)
	assert.Equal(t, 43200, cfg.Retention.MaxRecords)
	assert.True(t, cfg.EffectiveAlertsEnabled())
	assert.Equal(t, alerter.DefaultThresholds(), cfg.EffectiveThresholds())
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/gx10.yml")
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
listen: ":4000"
db_path: /tmp/gx10.db
log_level: debug
log_format: json
sample_interval: 5s
alerts_enabled: false
thresholds:
  cpu:
    warning: 70
    critical: 85
  gpu_temp:
    warning: 75
    critical: 85
  memory:
    warning: 80
    critical: 90
  disk:
    warning: 85
    critical: 95
retention:
  max_age: 48h
  max_records: 10000
ollama_url: http://localhost:11434
brain_state_path: /tmp/brain
notifications:
  - type: ntfy
    url: https://ntfy.sh
    topic: gx10-alerts
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Listen)
	assert.Equal(t, 5*time.Second, cfg.SampleInterval.Duration)
	assert.False(t, cfg.EffectiveAlertsEnabled())
	assert.Equal(t, 70.0, cfg.EffectiveThresholds().CPU.Warning)
	assert.Equal(t, 48*time.Hour, cfg.Retention.MaxAge.Duration)
	assert.Equal(t, 10000, cfg.EffectiveRetention().MaxRecords)
	require.Len(t, cfg.Notifications, 1)
	assert.Equal(t, "ntfy", cfg.Notifications[0].Type)
}

func TestLoad_SampleIntervalTooLow(t *testing.T) {
	path := writeConfig(t, "sample_interval: 100ms\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_interval")
}

func TestLoad_InvalidThresholds(t *testing.T) {
	path := writeConfig(t, `
thresholds:
  cpu:
    warning: 95
    critical: 90
  gpu_temp:
    warning: 75
    critical: 85
  memory:
    warning: 80
    critical: 90
  disk:
    warning: 85
    critical: 95
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cpu")
}

func TestLoad_InvalidNotification(t *testing.T) {
	path := writeConfig(t, `
notifications:
  - type: ntfy
    url: https://ntfy.sh
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic")
}

func TestLoad_UnknownNotificationType(t *testing.T) {
	path := writeConfig(t, `
notifications:
  - type: pigeon
    url: https://example.com
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GX10_LISTEN", ":9999")
	t.Setenv("GX10_LOG_LEVEL", "debug")
	t.Setenv("GX10_ALERTS_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.EffectiveAlertsEnabled())
}

func TestLoad_EnvSampleInterval(t *testing.T) {
	t.Setenv("GX10_SAMPLE_INTERVAL", "5s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.SampleInterval.Duration)
}

func TestLoad_EnvSampleIntervalMalformed(t *testing.T) {
	t.Setenv("GX10_SAMPLE_INTERVAL", "fast")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GX10_SAMPLE_INTERVAL")
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("GX10_TEST_TOPIC", "expanded-topic")
	path := writeConfig(t, `
notifications:
  - type: ntfy
    url: https://ntfy.sh
    topic: ${GX10_TEST_TOPIC}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Notifications, 1)
	assert.Equal(t, "expanded-topic", cfg.Notifications[0].Topic)
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := defaults()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadRetention(t *testing.T) {
	cfg := defaults()
	cfg.Retention.MaxRecords = 0
	assert.Error(t, cfg.Validate())
}
