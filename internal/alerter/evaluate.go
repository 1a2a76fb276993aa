package alerter

import (
	"fmt"
	"time"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// Evaluate maps one metrics snapshot onto zero or more alert events. Each
// category is checked independently; the critical threshold is checked
// strictly before the warning threshold, so a value meeting both yields only
// the critical event. Output order is deterministic: cpu, gpu_temp, memory,
// disk. The GPU temperature category is skipped entirely when no GPU data is
// present. diskPct is the disk usage input collected outside the snapshot;
// nil skips the disk category.
func Evaluate(snap model.MetricsSnapshot, diskPct *float64, t model.AlertThresholds) []model.AlertEvent {
	var events []model.AlertEvent

	if ev := checkPercent(model.CategoryCPU, "CPU usage", snap.CPU.Usage, t.CPU, snap.Timestamp); ev != nil {
		events = append(events, *ev)
	}
	if snap.GPU != nil {
		if ev := checkTemperature(model.CategoryGPUTemp, "GPU temperature", snap.GPU.Temperature, t.GPUTemp, snap.Timestamp); ev != nil {
			events = append(events, *ev)
		}
	}
	if ev := checkPercent(model.CategoryMemory, "Memory usage", snap.Memory.Percent, t.Memory, snap.Timestamp); ev != nil {
		events = append(events, *ev)
	}
	if diskPct != nil {
		if ev := checkPercent(model.CategoryDisk, "Disk usage", *diskPct, t.Disk, snap.Timestamp); ev != nil {
			events = append(events, *ev)
		}
	}

	return events
}

func checkPercent(cat model.AlertCategory, label string, value float64, band model.ThresholdBand, ts time.Time) *model.AlertEvent {
	switch {
	case value >= band.Critical:
		return &model.AlertEvent{
			Category:  cat,
			Severity:  model.SeverityCritical,
			Message:   fmt.Sprintf("%s at %.1f%% (critical threshold %.1f%%)", label, value, band.Critical),
			Value:     value,
			Threshold: band.Critical,
			Timestamp: ts,
		}
	case value >= band.Warning:
		return &model.AlertEvent{
			Category:  cat,
			Severity:  model.SeverityWarning,
			Message:   fmt.Sprintf("%s at %.1f%% (warning threshold %.1f%%)", label, value, band.Warning),
			Value:     value,
			Threshold: band.Warning,
			Timestamp: ts,
		}
	}
	return nil
}

func checkTemperature(cat model.AlertCategory, label string, value float64, band model.ThresholdBand, ts time.Time) *model.AlertEvent {
	switch {
	case value >= band.Critical:
		return &model.AlertEvent{
			Category:  cat,
			Severity:  model.SeverityCritical,
			Message:   fmt.Sprintf("%s at %.0f°C (critical threshold %.0f°C)", label, value, band.Critical),
			Value:     value,
			Threshold: band.Critical,
			Timestamp: ts,
		}
	case value >= band.Warning:
		return &model.AlertEvent{
			Category:  cat,
			Severity:  model.SeverityWarning,
			Message:   fmt.Sprintf("%s at %.0f°C (warning threshold %.0f°C)", label, value, band.Warning),
			Value:     value,
			Threshold: band.Warning,
			Timestamp: ts,
		}
	}
	return nil
}
