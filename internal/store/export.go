package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// csvHeader is the fixed column order of the tabular export.
var csvHeader = []string{"timestamp", "cpu", "memory", "gpu", "gpuTemp", "gpuMemory"}

// ExportJSON writes all samples with ts >= since as a 2-space indented JSON
// array. Export is read-only; the buffer is never mutated.
func (s *Store) ExportJSON(w io.Writer, since int64) error {
	samples, err := s.QuerySamplesSince(since)
	if err != nil {
		return err
	}
	if samples == nil {
		samples = []model.PersistedSample{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(samples); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// ExportCSV writes all samples with ts >= since as CSV: a header row
// followed by one row per sample. Percentages and temperatures carry one
// decimal place; absent optional fields are rendered as empty cells.
func (s *Store) ExportCSV(w io.Writer, since int64) error {
	samples, err := s.QuerySamplesSince(since)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range samples {
		row := []string{
			time.Unix(p.Timestamp, 0).UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.CPUPercent, 'f', 1, 64),
			strconv.FormatFloat(p.MemoryPercent, 'f', 1, 64),
			optionalFloat(p.GPUPercent),
			optionalFloat(p.GPUTemperature),
			optionalInt(p.GPUMemoryUsed),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func optionalInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
