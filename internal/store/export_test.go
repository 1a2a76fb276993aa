package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holee9/gx10-dashboard/internal/model"
)

func TestExportJSON_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().Unix()
	want := []model.PersistedSample{
		{
			Timestamp:      base,
			CPUPercent:     10.5,
			MemoryPercent:  20.5,
			GPUPercent:     floatPtr(30),
			GPUTemperature: floatPtr(65.5),
			GPUMemoryUsed:  int64Ptr(2_000_000_000),
		},
		{Timestamp: base + 1, CPUPercent: 11, MemoryPercent: 21},
	}
	for _, p := range want {
		require.NoError(t, s.AppendSample(p))
	}

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(&buf, 0))

	var got []model.PersistedSample
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].Timestamp, got[i].Timestamp)
		assert.Equal(t, want[i].CPUPercent, got[i].CPUPercent)
		assert.Equal(t, want[i].MemoryPercent, got[i].MemoryPercent)
		assert.Equal(t, want[i].GPUPercent, got[i].GPUPercent)
		assert.Equal(t, want[i].GPUTemperature, got[i].GPUTemperature)
		assert.Equal(t, want[i].GPUMemoryUsed, got[i].GPUMemoryUsed)
	}
}

func TestExportJSON_EmptyBuffer(t *testing.T) {
	s := newTestStore(t)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(&buf, 0))
	assert.JSONEq(t, "[]", buf.String())
}

func TestExportCSV_ShapeAndPrecision(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC).Unix()
	require.NoError(t, s.AppendSample(model.PersistedSample{
		Timestamp:      base,
		CPUPercent:     10.55,
		MemoryPercent:  20,
		GPUPercent:     floatPtr(30.25),
		GPUTemperature: floatPtr(65),
		GPUMemoryUsed:  int64Ptr(2048),
	}))
	require.NoError(t, s.AppendSample(model.PersistedSample{
		Timestamp:     base + 1,
		CPUPercent:    11,
		MemoryPercent: 21,
	}))

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(&buf, 0))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// Header plus one row per sample, six fields each.
	require.Len(t, records, 3)
	assert.Equal(t, []string{"timestamp", "cpu", "memory", "gpu", "gpuTemp", "gpuMemory"}, records[0])
	for _, row := range records {
		assert.Len(t, row, 6)
	}

	assert.Equal(t, "2026-08-30T12:00:00Z", records[1][0])
	assert.Equal(t, "10.6", records[1][1])
	assert.Equal(t, "20.0", records[1][2])
	assert.Equal(t, "30.2", records[1][3])
	assert.Equal(t, "65.0", records[1][4])
	assert.Equal(t, "2048", records[1][5])

	// Absent GPU fields render as empty cells.
	assert.Equal(t, "", records[2][3])
	assert.Equal(t, "", records[2][4])
	assert.Equal(t, "", records[2][5])
}

func TestExport_DoesNotMutate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AppendSample(sampleAt(time.Now().Unix(), 1)))

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(&buf, 0))
	require.NoError(t, s.ExportCSV(&buf, 0))

	n, err := s.CountSamples()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
