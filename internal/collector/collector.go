// Package collector gathers raw host telemetry for the broadcast loop.
package collector

import (
	"context"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// Source produces metric snapshots on demand. Capture never fails as a
// whole: subsystems that cannot be read are reported as nil/absent fields
// and the snapshot carries whatever was collected.
type Source interface {
	Capture(ctx context.Context) model.MetricsSnapshot
}

// DiskSource reports overall disk usage for the disk alert category. It is
// collected outside the snapshot because filesystem scans are slower than
// the per-tick subsystems. A nil result means usage could not be determined
// and the disk category is skipped for that tick.
type DiskSource interface {
	UsagePercent(ctx context.Context) *float64
}

// WorkerPool bounds concurrent subsystem captures and shell-outs.
type WorkerPool struct {
	sem chan struct{}
}

// NewWorkerPool creates a worker pool with the given max concurrent workers.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	return &WorkerPool{sem: make(chan struct{}, maxWorkers)}
}

// Submit runs fn in the pool, blocking if all workers are busy.
// Returns ctx.Err() if context is cancelled while waiting.
func (p *WorkerPool) Submit(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
		go func() {
			defer func() { <-p.sem }()
			fn()
		}()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
