package dsp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidParameters means the filter cutoffs or the signal length
// violate the design constraints. Validation runs before any filtering, so
// partial results are never produced.
var ErrInvalidParameters = errors.New("dsp: invalid filter parameters")

// Bandpass applies a zero-phase Butterworth bandpass of the given order on
// the normalised band [low, high]/(samplingRate/2), independently per
// channel. The output has the same shape as the input.
//
// Constraints, each a distinct failure wrapping ErrInvalidParameters:
// low > 0, high < Nyquist, low < high, and at least 3*(2*order+1) samples
// per channel (the minimum transient length the forward-backward method
// needs).
func Bandpass(data *mat.Dense, samplingRate, low, high float64, order int) (*mat.Dense, error) {
	if samplingRate <= 0 {
		return nil, fmt.Errorf("%w: sampling rate must be > 0 Hz, got %g", ErrInvalidParameters, samplingRate)
	}
	if order < 1 {
		return nil, fmt.Errorf("%w: filter order must be >= 1, got %d", ErrInvalidParameters, order)
	}
	nyquist := samplingRate / 2
	if low <= 0 {
		return nil, fmt.Errorf("%w: low cutoff must be > 0 Hz, got %g", ErrInvalidParameters, low)
	}
	if high >= nyquist {
		return nil, fmt.Errorf("%w: high cutoff (%g Hz) must be < Nyquist (%g Hz)", ErrInvalidParameters, high, nyquist)
	}
	if low >= high {
		return nil, fmt.Errorf("%w: low cutoff (%g Hz) must be < high cutoff (%g Hz)", ErrInvalidParameters, low, high)
	}

	rows, cols := data.Dims()
	minLen := 3 * (2*order + 1)
	if rows < minLen {
		return nil, fmt.Errorf("%w: signal too short (%d samples, need at least %d for order %d)",
			ErrInvalidParameters, rows, minLen, order)
	}

	b, a := butterBandpass(order, low/nyquist, high/nyquist)
	diagf("bandpass %g-%g Hz order %d over %d channels x %d samples", low, high, order, cols, rows)

	out := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, data)
		filtered, err := filtFilt(b, a, col)
		if err != nil {
			return nil, fmt.Errorf("%w: channel %d: %v", ErrInvalidParameters, j, err)
		}
		out.SetCol(j, filtered)
	}
	return out, nil
}
