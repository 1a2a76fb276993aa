package alerter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holee9/gx10-dashboard/internal/model"
)

func TestDefaultThresholds(t *testing.T) {
	d := DefaultThresholds()

	assert.Equal(t, model.ThresholdBand{Warning: 80, Critical: 90}, d.CPU)
	assert.Equal(t, model.ThresholdBand{Warning: 75, Critical: 85}, d.GPUTemp)
	assert.Equal(t, model.ThresholdBand{Warning: 80, Critical: 90}, d.Memory)
	assert.Equal(t, model.ThresholdBand{Warning: 85, Critical: 95}, d.Disk)
	assert.NoError(t, ValidateThresholds(d))
}

func TestThresholdStore_SetPartialMerge(t *testing.T) {
	s := NewThresholdStore(DefaultThresholds())

	merged, err := s.Set(model.ThresholdPatch{
		CPU: &model.BandPatch{Warning: ptr(70.0)},
	})
	require.NoError(t, err)

	// Patched field applied, sibling and other categories untouched.
	assert.Equal(t, 70.0, merged.CPU.Warning)
	assert.Equal(t, 90.0, merged.CPU.Critical)
	assert.Equal(t, DefaultThresholds().Memory, merged.Memory)
	assert.Equal(t, merged, s.Get())
}

func TestThresholdStore_SetRejectsInvalidAtomically(t *testing.T) {
	s := NewThresholdStore(DefaultThresholds())

	_, err := s.Set(model.ThresholdPatch{
		CPU:    &model.BandPatch{Warning: ptr(95.0)}, // above critical 90
		Memory: &model.BandPatch{Warning: ptr(50.0)}, // valid on its own
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cpu")

	// Nothing applied, not even the valid part of the patch.
	assert.Equal(t, DefaultThresholds(), s.Get())
}

func TestThresholdStore_SetRejectsOutOfRange(t *testing.T) {
	s := NewThresholdStore(DefaultThresholds())

	_, err := s.Set(model.ThresholdPatch{
		Disk: &model.BandPatch{Critical: ptr(120.0)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk")
}

func TestThresholdStore_Reset(t *testing.T) {
	s := NewThresholdStore(DefaultThresholds())

	_, err := s.Set(model.ThresholdPatch{CPU: &model.BandPatch{Warning: ptr(50.0)}})
	require.NoError(t, err)

	got := s.Reset()
	assert.Equal(t, DefaultThresholds(), got)
	assert.Equal(t, DefaultThresholds(), s.Get())
}

func TestValidateThresholds_WarningEqualsCritical(t *testing.T) {
	bad := DefaultThresholds()
	bad.Memory.Warning = bad.Memory.Critical

	err := ValidateThresholds(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
}
