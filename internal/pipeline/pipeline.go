// Package pipeline orchestrates the two numeric stages over one loaded
// recording: intensity -> optical density -> band-limited OD. All derived
// arrays are held simultaneously so the caller can switch views without
// recomputation; a small state tag tracks which view is active.
package pipeline

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cortex-data/nirscope/internal/dsp"
)

// ErrDataUnavailable means a view was requested before its backing array
// was computed.
var ErrDataUnavailable = errors.New("pipeline: view data not computed yet")

// State tags the active view.
type State int

const (
	StateRaw State = iota
	StateOpticalDensity
	StateFiltered
)

// Label returns the display name for the state.
func (s State) Label() string {
	switch s {
	case StateOpticalDensity:
		return "Optical Density"
	case StateFiltered:
		return "Filtered OD"
	default:
		return "Raw Intensity"
	}
}

// FilterParams records the last-used bandpass parameters; zero when unset.
type FilterParams struct {
	Low   float64
	High  float64
	Order int
}

// Result holds the raw matrix and the lazily computed derived arrays.
// The raw matrix is retained for the pipeline's whole lifetime; od and
// filtered are nil until computed and are invalidated when an upstream
// stage is recomputed.
type Result struct {
	raw      *mat.Dense
	od       *mat.Dense
	filtered *mat.Dense
	state    State
	params   FilterParams
}

// Raw returns the retained copy of the seeded intensity matrix.
func (r *Result) Raw() *mat.Dense { return r.raw }

// OpticalDensity returns the OD matrix, or nil if not computed.
func (r *Result) OpticalDensity() *mat.Dense { return r.od }

// Filtered returns the band-limited matrix, or nil if not computed.
func (r *Result) Filtered() *mat.Dense { return r.filtered }

// State returns the active view tag.
func (r *Result) State() State { return r.state }

// StateLabel returns the display name for the active view.
func (r *Result) StateLabel() string { return r.state.Label() }

// Params returns the last-used filter parameters.
func (r *Result) Params() FilterParams { return r.params }

// HasOpticalDensity reports whether the OD array exists.
func (r *Result) HasOpticalDensity() bool { return r.od != nil }

// HasFiltered reports whether the filtered array exists.
func (r *Result) HasFiltered() bool { return r.filtered != nil }

// ActiveData selects the array backing the current view. The selection is
// a pure function of the stored fields, not of call history: Filtered if
// present and active, else OD if present and active, else Raw.
func (r *Result) ActiveData() *mat.Dense {
	if r.state == StateFiltered && r.filtered != nil {
		return r.filtered
	}
	if r.state == StateOpticalDensity && r.od != nil {
		return r.od
	}
	return r.raw
}

// Pipeline owns one Result and the sampling rate it was seeded with. It is
// exclusively held by one session; callers serialise mutating calls.
type Pipeline struct {
	fs     float64
	result *Result
}

// New seeds a pipeline with a copy of the intensity matrix. The copy is
// what every later OD computation reads, so recomputation is idempotent.
func New(intensity *mat.Dense, samplingRate float64) *Pipeline {
	return &Pipeline{
		fs:     samplingRate,
		result: &Result{raw: mat.DenseCopyOf(intensity)},
	}
}

// Result exposes the derived arrays and view selector.
func (p *Pipeline) Result() *Result { return p.result }

// State returns the active view tag.
func (p *Pipeline) State() State { return p.result.state }

// SamplingRate returns the rate the pipeline was seeded with.
func (p *Pipeline) SamplingRate() float64 { return p.fs }

// ConvertToOpticalDensity computes OD from the retained raw matrix over the
// full-recording baseline and makes it the active view. Any existing
// filtered result is discarded: it was derived from a now-superseded OD,
// and keeping it visible would let a stale view outlive its input.
func (p *Pipeline) ConvertToOpticalDensity() *mat.Dense {
	p.result.od = dsp.ToOpticalDensity(p.result.raw, 0, 0)
	p.result.filtered = nil
	p.result.state = StateOpticalDensity
	tracef("computed optical density, filtered view invalidated")
	return p.result.od
}

// ApplyBandpass filters the OD matrix and makes the filtered view active,
// recording the parameters used. If OD has not been computed yet it is
// computed first; that promotion is not rolled back when the filter step
// fails, so a recoverable OD is a legitimate side effect of a failed
// attempt. On failure the state and any prior filtered array are unchanged.
func (p *Pipeline) ApplyBandpass(low, high float64, order int) (*mat.Dense, error) {
	if p.result.od == nil {
		p.ConvertToOpticalDensity()
	}
	filtered, err := dsp.Bandpass(p.result.od, p.fs, low, high, order)
	if err != nil {
		return nil, err
	}
	p.result.filtered = filtered
	p.result.params = FilterParams{Low: low, High: high, Order: order}
	p.result.state = StateFiltered
	tracef("bandpass applied: %g-%g Hz order %d", low, high, order)
	return filtered, nil
}

// SetView switches the active view without recomputation. Raw is always
// available; the other states need their backing array, otherwise the call
// fails with ErrDataUnavailable and the view is unchanged.
func (p *Pipeline) SetView(s State) (*mat.Dense, error) {
	switch s {
	case StateOpticalDensity:
		if p.result.od == nil {
			return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, s.Label())
		}
	case StateFiltered:
		if p.result.filtered == nil {
			return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, s.Label())
		}
	case StateRaw:
	default:
		return nil, fmt.Errorf("%w: unknown state %d", ErrDataUnavailable, s)
	}
	p.result.state = s
	return p.result.ActiveData(), nil
}

// Reset discards the derived arrays and parameters and returns to Raw.
func (p *Pipeline) Reset() {
	p.result.od = nil
	p.result.filtered = nil
	p.result.params = FilterParams{}
	p.result.state = StateRaw
	tracef("pipeline reset to raw")
}
