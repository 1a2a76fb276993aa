package collector

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// nvidia-smi query fields, in output order.
const gpuQuery = "--query-gpu=utilization.gpu,memory.used,temperature.gpu,power.draw"

// CaptureGPU shells out to nvidia-smi and parses the first GPU's telemetry.
// Returns nil when the tool is missing, exits non-zero, or produces
// unparseable output — the host simply has no reportable GPU that tick.
func CaptureGPU(ctx context.Context) *model.GPUMetrics {
	out, err := exec.CommandContext(ctx, "nvidia-smi", gpuQuery, "--format=csv,noheader,nounits").Output()
	if err != nil {
		return nil
	}
	return parseGPUCSV(string(out))
}

// parseGPUCSV parses one line of nvidia-smi CSV output:
//
//	utilization.gpu [%], memory.used [MiB], temperature.gpu, power.draw [W]
//
// Fields reported as "[N/A]" degrade to absent/zero rather than failing the
// whole parse, except utilization and temperature which are required.
func parseGPUCSV(out string) *model.GPUMetrics {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return nil
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	util, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	temp, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil
	}

	g := &model.GPUMetrics{Utilization: util, Temperature: temp}

	if mib, err := strconv.ParseFloat(fields[1], 64); err == nil {
		bytes := int64(mib * 1024 * 1024)
		g.MemoryUsed = &bytes
	}
	if watts, err := strconv.ParseFloat(fields[3], 64); err == nil {
		g.PowerDraw = watts
	}
	return g
}
