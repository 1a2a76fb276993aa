// Package model defines all shared domain types for the dashboard.
package model

import "time"

// BrainMode is the operating mode of the workstation's inference stack.
type BrainMode string

// Known brain operating modes.
const (
	BrainIdle      BrainMode = "idle"
	BrainInference BrainMode = "inference"
	BrainTraining  BrainMode = "training"
	BrainStandby   BrainMode = "standby"
)

// CPUMetrics holds CPU usage for one sample.
type CPUMetrics struct {
	Usage       float64  `json:"usage"` // percent 0-100
	Temperature *float64 `json:"temperature"`
}

// MemoryMetrics holds memory usage for one sample.
type MemoryMetrics struct {
	Used    int64   `json:"used"` // bytes
	Percent float64 `json:"percentage"`
}

// GPUMetrics holds GPU telemetry for one sample. The whole struct is absent
// when no GPU is present or nvidia-smi is unavailable.
type GPUMetrics struct {
	Utilization float64 `json:"utilization"` // percent 0-100
	MemoryUsed  *int64  `json:"memory_used"` // bytes
	Temperature float64 `json:"temperature"` // degrees C
	PowerDraw   float64 `json:"power_draw"`  // watts
}

// BrainStatus reports the active operating mode.
type BrainStatus struct {
	Active BrainMode `json:"active"`
}

// OllamaStatus reports which models the local Ollama daemon has loaded.
type OllamaStatus struct {
	ModelsLoaded []string `json:"models_loaded"`
}

// MetricsSnapshot is one point-in-time capture of all subsystems. It is
// constructed fresh on each broadcast tick and never mutated afterwards.
// Subsystems that failed to collect are represented as nil/zero fields.
type MetricsSnapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	CPU       CPUMetrics    `json:"cpu"`
	Memory    MemoryMetrics `json:"memory"`
	GPU       *GPUMetrics   `json:"gpu"`
	Brain     BrainStatus   `json:"brain"`
	Ollama    OllamaStatus  `json:"ollama"`
}

// AlertCategory identifies which subsystem an alert concerns.
type AlertCategory string

// Alert categories, in evaluation order.
const (
	CategoryCPU     AlertCategory = "cpu"
	CategoryGPUTemp AlertCategory = "gpu_temp"
	CategoryMemory  AlertCategory = "memory"
	CategoryDisk    AlertCategory = "disk"
)

// Severity is the alert severity level.
type Severity string

// Alert severities.
const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertEvent is a single threshold breach produced by the evaluator. Events
// are transient; the ingest store decides whether one becomes an Alert.
type AlertEvent struct {
	Category  AlertCategory `json:"type"`
	Severity  Severity      `json:"severity"`
	Message   string        `json:"message"`
	Value     float64       `json:"value"`
	Threshold float64       `json:"threshold"`
	Timestamp time.Time     `json:"timestamp"`
}

// Alert is a persisted, identified alert held by the client ingest store.
// At most one non-dismissed Alert per category exists at any time.
type Alert struct {
	ID        string        `json:"id"`
	Category  AlertCategory `json:"type"`
	Severity  Severity      `json:"severity"`
	Message   string        `json:"message"`
	Value     float64       `json:"value"`
	Threshold float64       `json:"threshold"`
	Timestamp time.Time     `json:"timestamp"`
	Dismissed bool          `json:"dismissed"`
}

// ThresholdBand is a warning/critical pair for one alert category.
// Invariant: 0 <= Warning < Critical <= 100.
type ThresholdBand struct {
	Warning  float64 `json:"warning" yaml:"warning"`
	Critical float64 `json:"critical" yaml:"critical"`
}

// AlertThresholds holds the full set of configurable alert thresholds.
type AlertThresholds struct {
	CPU     ThresholdBand `json:"cpu" yaml:"cpu"`
	GPUTemp ThresholdBand `json:"gpu_temp" yaml:"gpu_temp"`
	Memory  ThresholdBand `json:"memory" yaml:"memory"`
	Disk    ThresholdBand `json:"disk" yaml:"disk"`
}

// ThresholdPatch is a partial threshold update. Nil categories are left
// untouched; within a category, nil fields retain their prior values.
type ThresholdPatch struct {
	CPU     *BandPatch `json:"cpu,omitempty"`
	GPUTemp *BandPatch `json:"gpu_temp,omitempty"`
	Memory  *BandPatch `json:"memory,omitempty"`
	Disk    *BandPatch `json:"disk,omitempty"`
}

// BandPatch is a partial update of one threshold band.
type BandPatch struct {
	Warning  *float64 `json:"warning,omitempty"`
	Critical *float64 `json:"critical,omitempty"`
}

// HistorySample is one entry of the client's in-memory charting window.
// It is derivative data, rebuilt from scratch on reconnect.
type HistorySample struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu"`
	MemoryPercent float64   `json:"memory"`
	GPUPercent    *float64  `json:"gpu"`
}

// PersistedSample is one record of the durable time-series buffer.
type PersistedSample struct {
	ID             int64    `json:"id"`
	Timestamp      int64    `json:"ts"` // unix seconds
	CPUPercent     float64  `json:"cpu_pct"`
	MemoryPercent  float64  `json:"mem_pct"`
	GPUPercent     *float64 `json:"gpu_pct,omitempty"`
	GPUTemperature *float64 `json:"gpu_temp,omitempty"`
	GPUMemoryUsed  *int64   `json:"gpu_mem_used,omitempty"`
}

// NewPersistedSample projects one snapshot onto the durable buffer's record
// shape. GPU fields are absent when the snapshot carries no GPU data.
func NewPersistedSample(snap MetricsSnapshot) PersistedSample {
	p := PersistedSample{
		Timestamp:     snap.Timestamp.Unix(),
		CPUPercent:    snap.CPU.Usage,
		MemoryPercent: snap.Memory.Percent,
	}
	if snap.GPU != nil {
		u := snap.GPU.Utilization
		t := snap.GPU.Temperature
		p.GPUPercent = &u
		p.GPUTemperature = &t
		p.GPUMemoryUsed = snap.GPU.MemoryUsed
	}
	return p
}

// MessageTypeMetrics tags the per-tick broadcast payload.
const MessageTypeMetrics = "metrics"

// WireMessage is the payload pushed to every subscriber on each tick.
type WireMessage struct {
	Type   string          `json:"type"`
	Data   MetricsSnapshot `json:"data"`
	Alerts []AlertEvent    `json:"alerts"`
}
