// Package alerter evaluates metric snapshots against configurable thresholds.
package alerter

import (
	"fmt"
	"sync"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// DefaultThresholds returns the built-in threshold defaults.
func DefaultThresholds() model.AlertThresholds {
	return model.AlertThresholds{
		CPU:     model.ThresholdBand{Warning: 80, Critical: 90},
		GPUTemp: model.ThresholdBand{Warning: 75, Critical: 85},
		Memory:  model.ThresholdBand{Warning: 80, Critical: 90},
		Disk:    model.ThresholdBand{Warning: 85, Critical: 95},
	}
}

// ThresholdStore holds the current alert thresholds. Reads return copies;
// updates are merged and validated as a whole before they take effect, so a
// rejected update leaves the store unchanged.
type ThresholdStore struct {
	mu      sync.RWMutex
	current model.AlertThresholds
}

// NewThresholdStore creates a store seeded with the given thresholds.
func NewThresholdStore(initial model.AlertThresholds) *ThresholdStore {
	return &ThresholdStore{current: initial}
}

// Get returns the current thresholds.
func (s *ThresholdStore) Get() model.AlertThresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set merges the patch into the current thresholds. Categories not present
// in the patch retain their prior values, as do unset fields within a
// category. The merged result is validated before being applied.
func (s *ThresholdStore) Set(patch model.ThresholdPatch) (model.AlertThresholds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.current
	applyBand(&merged.CPU, patch.CPU)
	applyBand(&merged.GPUTemp, patch.GPUTemp)
	applyBand(&merged.Memory, patch.Memory)
	applyBand(&merged.Disk, patch.Disk)

	if err := ValidateThresholds(merged); err != nil {
		return model.AlertThresholds{}, err
	}

	s.current = merged
	return merged, nil
}

// Reset restores the built-in defaults and returns them.
func (s *ThresholdStore) Reset() model.AlertThresholds {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = DefaultThresholds()
	return s.current
}

func applyBand(dst *model.ThresholdBand, patch *model.BandPatch) {
	if patch == nil {
		return
	}
	if patch.Warning != nil {
		dst.Warning = *patch.Warning
	}
	if patch.Critical != nil {
		dst.Critical = *patch.Critical
	}
}

// ValidateThresholds checks that every category has both values in [0,100]
// and warning strictly below critical. The returned error names the
// offending category.
func ValidateThresholds(t model.AlertThresholds) error {
	bands := []struct {
		category model.AlertCategory
		band     model.ThresholdBand
	}{
		{model.CategoryCPU, t.CPU},
		{model.CategoryGPUTemp, t.GPUTemp},
		{model.CategoryMemory, t.Memory},
		{model.CategoryDisk, t.Disk},
	}
	for _, b := range bands {
		if b.band.Warning < 0 || b.band.Warning > 100 {
			return fmt.Errorf("%s: warning must be in [0,100], got %g", b.category, b.band.Warning)
		}
		if b.band.Critical < 0 || b.band.Critical > 100 {
			return fmt.Errorf("%s: critical must be in [0,100], got %g", b.category, b.band.Critical)
		}
		if b.band.Warning >= b.band.Critical {
			return fmt.Errorf("%s: warning (%g) must be below critical (%g)", b.category, b.band.Warning, b.band.Critical)
		}
	}
	return nil
}
