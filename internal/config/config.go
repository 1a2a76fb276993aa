// Package config handles loading and validating dashboard configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/holee9/gx10-dashboard/internal/alerter"
	"github.com/holee9/gx10-dashboard/internal/broadcast"
	"github.com/holee9/gx10-dashboard/internal/model"
	"github.com/holee9/gx10-dashboard/internal/store"
)

// envVarPattern matches ${VAR_NAME} placeholders in config values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ErrConfigFileNotFound is returned by Load when the specified config file does not exist.
var ErrConfigFileNotFound = errors.New("config file not found")

// Config is the top-level dashboard configuration.
type Config struct {
	Listen         string                 `yaml:"listen"`
	DBPath         string                 `yaml:"db_path"`
	LogLevel       string                 `yaml:"log_level"`
	LogFormat      string                 `yaml:"log_format"`
	SampleInterval Duration               `yaml:"sample_interval"`
	AlertsEnabled  *bool                  `yaml:"alerts_enabled"`
	Thresholds     *model.AlertThresholds `yaml:"thresholds,omitempty"`
	Retention      RetentionConfig        `yaml:"retention"`
	OllamaURL      string                 `yaml:"ollama_url"`
	BrainStatePath string                 `yaml:"brain_state_path"`
	Notifications  []NotificationConfig   `yaml:"notifications"`
}

// RetentionConfig bounds the durable sample buffer.
type RetentionConfig struct {
	MaxAge     Duration `yaml:"max_age"`
	MaxRecords int      `yaml:"max_records"`
}

// NotificationConfig describes a notification target.
type NotificationConfig struct {
	Type    string            `yaml:"type"` // "ntfy" or "webhook"
	URL     string            `yaml:"url"`
	Topic   string            `yaml:"topic,omitempty"`   // ntfy only
	Method  string            `yaml:"method,omitempty"`  // webhook only
	Headers map[string]string `yaml:"headers,omitempty"` // webhook only
}

// Duration wraps time.Duration with YAML string parsing support.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Load reads configuration from a YAML file, then applies GX10_* environment
// overrides. If a path is given and the file does not exist,
// ErrConfigFileNotFound is returned. An empty path uses defaults plus env
// overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(expandEnvVars(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("log_format must be one of: text, json")
	}
	if c.SampleInterval.Duration < broadcast.MinInterval {
		return fmt.Errorf("sample_interval must be >= %s", broadcast.MinInterval)
	}
	if c.Thresholds != nil {
		if err := alerter.ValidateThresholds(*c.Thresholds); err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
	}
	if c.Retention.MaxAge.Duration <= 0 {
		return fmt.Errorf("retention.max_age must be > 0")
	}
	if c.Retention.MaxRecords < 1 {
		return fmt.Errorf("retention.max_records must be >= 1")
	}
	for i, n := range c.Notifications {
		switch n.Type {
		case "ntfy":
			if n.URL == "" {
				return fmt.Errorf("notifications[%d]: url is required for ntfy", i)
			}
			if n.Topic == "" {
				return fmt.Errorf("notifications[%d]: topic is required for ntfy", i)
			}
		case "webhook":
			if n.URL == "" {
				return fmt.Errorf("notifications[%d]: url is required for webhook", i)
			}
		default:
			return fmt.Errorf("notifications[%d]: unknown type %q (expected ntfy or webhook)", i, n.Type)
		}
	}
	return nil
}

// EffectiveThresholds returns the configured thresholds, or the built-in
// defaults when the config leaves them unset.
func (c *Config) EffectiveThresholds() model.AlertThresholds {
	if c.Thresholds != nil {
		return *c.Thresholds
	}
	return alerter.DefaultThresholds()
}

// EffectiveAlertsEnabled defaults to on when the config leaves it unset.
func (c *Config) EffectiveAlertsEnabled() bool {
	if c.AlertsEnabled != nil {
		return *c.AlertsEnabled
	}
	return true
}

// EffectiveRetention maps config retention onto the pruner's settings,
// keeping the alert-log default.
func (c *Config) EffectiveRetention() store.RetentionConfig {
	r := store.DefaultRetention()
	r.MaxAge = c.Retention.MaxAge.Duration
	r.MaxRecords = c.Retention.MaxRecords
	return r
}

func defaults() *Config {
	return &Config{
		Listen:         ":3900",
		DBPath:         "/data/gx10.db",
		LogLevel:       "info",
		LogFormat:      "text",
		SampleInterval: Duration{2 * time.Second},
		Retention: RetentionConfig{
			MaxAge:     Duration{24 * time.Hour},
			MaxRecords: 43200,
		},
		OllamaURL:      "http://127.0.0.1:11434",
		BrainStatePath: "/var/lib/gx10/brain_state",
	}
}

// expandEnvVars replaces ${VAR_NAME} placeholders in raw YAML with the
// corresponding environment variable values. Unset variables are replaced
// with an empty string, which will then fail validation with a clear error.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		key := string(match[2 : len(match)-1]) // strip ${ and }
		return []byte(os.Getenv(key))
	})
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GX10_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("GX10_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GX10_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GX10_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("GX10_SAMPLE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GX10_SAMPLE_INTERVAL: invalid duration %q: %w", v, err)
		}
		cfg.SampleInterval = Duration{d}
	}
	if v := os.Getenv("GX10_OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("GX10_BRAIN_STATE_PATH"); v != "" {
		cfg.BrainStatePath = v
	}
	if v := os.Getenv("GX10_ALERTS_ENABLED"); v != "" {
		enabled := v == "true" || v == "1"
		cfg.AlertsEnabled = &enabled
	}
	return nil
}
