// Package dsp holds the pure numeric stages of the processing pipeline:
// intensity to optical density conversion and zero-phase Butterworth
// band-limiting. Both operate on time-major matrices (rows = timepoints,
// columns = channels) and run in one pass per channel.
package dsp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// epsilon floors both the per-channel baseline mean and every intensity
// sample before the log ratio, so the output stays finite when a sensor
// drops out and reports zero or negative intensity. Such samples are capped
// silently rather than flagged.
const epsilon = 1e-10

// ToOpticalDensity converts raw intensity to optical density,
// -log10(I/I0), where I0 is the per-channel mean over the baseline window
// [baselineStart, baselineEnd). baselineEnd <= 0 means the full recording;
// the window is clamped to the matrix extent. The output has the same
// shape as the input.
func ToOpticalDensity(intensity *mat.Dense, baselineStart, baselineEnd int) *mat.Dense {
	rows, cols := intensity.Dims()
	if baselineEnd <= 0 || baselineEnd > rows {
		baselineEnd = rows
	}
	if baselineStart < 0 {
		baselineStart = 0
	}

	od := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		var sum float64
		n := 0
		for i := baselineStart; i < baselineEnd; i++ {
			sum += intensity.At(i, j)
			n++
		}
		i0 := epsilon
		if n > 0 {
			i0 = math.Max(sum/float64(n), epsilon)
		}
		for i := 0; i < rows; i++ {
			od.Set(i, j, -math.Log10(math.Max(intensity.At(i, j), epsilon)/i0))
		}
	}
	return od
}

// ColumnMatrix wraps a one-dimensional sample slice as a single-channel
// matrix, the shape both pipeline stages expect.
func ColumnMatrix(samples []float64) *mat.Dense {
	data := make([]float64, len(samples))
	copy(data, samples)
	return mat.NewDense(len(samples), 1, data)
}
