// Package snirf loads SNIRF recordings into a single canonical in-memory
// representation. Two independent parser implementations back the loader:
// a schema-addressed reader built on a high-level HDF5 library and a
// low-level walker that traverses the container group by group. Both must
// produce numerically identical records for the same file.
package snirf

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ProbeGeometry holds optode positions and the wavelength table.
// Positions are N x 2 or N x 3 matrices in the file's coordinate units.
type ProbeGeometry struct {
	SourcePos   *mat.Dense // (nSources, 2|3)
	DetectorPos *mat.Dense // (nDetectors, 2|3)
	Wavelengths []float64  // nanometres, strictly positive

	// One label per position row. Auto-generated ("S1", "D1", ...) when the
	// source file carries none.
	SourceLabels   []string
	DetectorLabels []string
}

// SourceCount returns the number of source positions.
func (p *ProbeGeometry) SourceCount() int {
	if p.SourcePos == nil {
		return 0
	}
	r, _ := p.SourcePos.Dims()
	return r
}

// DetectorCount returns the number of detector positions.
func (p *ProbeGeometry) DetectorCount() int {
	if p.DetectorPos == nil {
		return 0
	}
	r, _ := p.DetectorPos.Dims()
	return r
}

// ChannelInfo describes one measured channel. Indices are 1-based, matching
// the on-disk convention. The loader does not range-check source/detector
// indices against the probe; callers must treat out-of-range values as
// malformed input.
type ChannelInfo struct {
	SourceIndex     int
	DetectorIndex   int
	WavelengthIndex int
	DataType        int
	DataTypeLabel   string
}

// Name renders the conventional channel name, e.g. "S1-D2 (wl 1)".
func (c ChannelInfo) Name() string {
	return fmt.Sprintf("S%d-D%d (wl %d)", c.SourceIndex, c.DetectorIndex, c.WavelengthIndex)
}

// StimulusInfo holds one stimulus condition. Onset, Duration and Amplitude
// are always the same length; missing duration/amplitude columns in the
// source default to all-ones.
type StimulusInfo struct {
	Name      string
	Onset     []float64
	Duration  []float64
	Amplitude []float64
}

// Record is the unified in-memory representation of one SNIRF recording.
// It is constructed once per successful load and never mutated afterwards;
// a new load replaces it wholesale.
type Record struct {
	// Intensity is time-major: rows are timepoints, columns are channels in
	// Channels order.
	Intensity *mat.Dense
	// Time holds one strictly increasing timestamp (seconds) per row.
	Time []float64

	Probe    ProbeGeometry
	Channels []ChannelInfo
	Stimuli  []StimulusInfo

	// Metadata maps tag names to scalars or lists as found in the file.
	Metadata map[string]any

	// SourcePath is the path the record was loaded from, stamped by the
	// loader after a successful parse.
	SourcePath string
}

// ChannelCount returns the number of measured channels (intensity columns).
func (r *Record) ChannelCount() int {
	if r.Intensity == nil {
		return 0
	}
	_, c := r.Intensity.Dims()
	return c
}

// TimepointCount returns the number of samples per channel (intensity rows).
func (r *Record) TimepointCount() int {
	if r.Intensity == nil {
		return 0
	}
	rows, _ := r.Intensity.Dims()
	return rows
}

// DurationSeconds returns last minus first time value, or 0 with fewer than
// two samples.
func (r *Record) DurationSeconds() float64 {
	if len(r.Time) < 2 {
		return 0
	}
	return r.Time[len(r.Time)-1] - r.Time[0]
}

// SamplingRate returns the reciprocal of the median time step, or 0 with
// fewer than two samples. The median makes the estimate robust against the
// occasional dropped frame in long recordings.
func (r *Record) SamplingRate() float64 {
	if len(r.Time) < 2 {
		return 0
	}
	steps := make([]float64, len(r.Time)-1)
	for i := 1; i < len(r.Time); i++ {
		steps[i-1] = r.Time[i] - r.Time[i-1]
	}
	sort.Float64s(steps)
	median := stat.Quantile(0.5, stat.Empirical, steps, nil)
	if median == 0 {
		return 0
	}
	return 1 / median
}

// autoLabels generates positional fallback labels: S1..Sn or D1..Dn.
func autoLabels(prefix string, count int) []string {
	labels := make([]string, count)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return labels
}

// onesVector returns an all-ones slice, the default for missing stimulus
// duration/amplitude columns.
func onesVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// colSlice copies column j of m into a fresh slice.
func colSlice(m *mat.Dense, j int) []float64 {
	rows, _ := m.Dims()
	out := make([]float64, rows)
	mat.Col(out, j, m)
	return out
}
