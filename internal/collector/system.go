package collector

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// SystemSource captures live telemetry from the local host. CPU and memory
// come from the kernel, GPU from nvidia-smi, loaded models from the Ollama
// HTTP API and the brain mode from a small state file.
type SystemSource struct {
	pool      *WorkerPool
	ollama    *OllamaClient
	brainPath string
}

// NewSystemSource creates the production metric source. ollama may be nil
// when no Ollama daemon is configured.
func NewSystemSource(pool *WorkerPool, ollama *OllamaClient, brainPath string) *SystemSource {
	return &SystemSource{pool: pool, ollama: ollama, brainPath: brainPath}
}

// Capture collects all subsystems concurrently (bounded by the worker pool)
// and waits for every one before returning, so ticks never overlap. Each
// goroutine writes a distinct snapshot field.
func (s *SystemSource) Capture(ctx context.Context) model.MetricsSnapshot {
	snap := model.MetricsSnapshot{
		Timestamp: time.Now().UTC(),
		Brain:     model.BrainStatus{Active: readBrainMode(s.brainPath)},
		Ollama:    model.OllamaStatus{ModelsLoaded: []string{}},
	}

	var wg sync.WaitGroup
	submit := func(fn func()) {
		wg.Add(1)
		if err := s.pool.Submit(ctx, func() {
			defer wg.Done()
			fn()
		}); err != nil {
			wg.Done()
		}
	}

	submit(func() { snap.CPU = captureCPU(ctx) })
	submit(func() { snap.Memory = captureMemory(ctx) })
	submit(func() { snap.GPU = CaptureGPU(ctx) })
	if s.ollama != nil {
		submit(func() { snap.Ollama = model.OllamaStatus{ModelsLoaded: s.ollama.LoadedModels(ctx)} })
	}
	wg.Wait()

	return snap
}

func captureCPU(ctx context.Context) model.CPUMetrics {
	m := model.CPUMetrics{}
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(percents) == 0 {
		slog.Debug("reading CPU usage", "error", err)
	} else {
		m.Usage = percents[0]
	}
	m.Temperature = cpuTemperature(ctx)
	return m
}

// cpuTemperature picks the package sensor when one is exposed. Returns nil
// on hosts without usable thermal sensors.
func cpuTemperature(ctx context.Context) *float64 {
	sensors, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil || len(sensors) == 0 {
		return nil
	}
	for _, s := range sensors {
		key := strings.ToLower(s.SensorKey)
		if strings.Contains(key, "coretemp") || strings.Contains(key, "cpu") || strings.Contains(key, "package") {
			t := s.Temperature
			return &t
		}
	}
	t := sensors[0].Temperature
	return &t
}

func captureMemory(ctx context.Context) model.MemoryMetrics {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		slog.Debug("reading memory usage", "error", err)
		return model.MemoryMetrics{}
	}
	return model.MemoryMetrics{
		Used:    int64(vm.Used),
		Percent: vm.UsedPercent,
	}
}

func readBrainMode(path string) model.BrainMode {
	if path == "" {
		return model.BrainIdle
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.BrainIdle
	}
	switch mode := model.BrainMode(strings.TrimSpace(string(data))); mode {
	case model.BrainIdle, model.BrainInference, model.BrainTraining, model.BrainStandby:
		return mode
	default:
		return model.BrainIdle
	}
}

// SystemDiskSource reports the maximum usage percent across all mounted
// filesystems.
type SystemDiskSource struct{}

// UsagePercent scans physical partitions and returns the highest usage.
// Returns nil when no partition could be read.
func (SystemDiskSource) UsagePercent(ctx context.Context) *float64 {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		slog.Debug("listing partitions", "error", err)
		return nil
	}

	var max *float64
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		if max == nil || usage.UsedPercent > *max {
			v := usage.UsedPercent
			max = &v
		}
	}
	return max
}
