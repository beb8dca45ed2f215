package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Zero-phase filtering: run the filter forward, reverse, run it again,
// reverse back. Edge transients are suppressed by odd-reflection padding
// and by starting each pass from the filter's step-response steady state.

// lfilter applies the IIR filter (b, a) in direct form II transposed with
// initial state zi (length len(b)-1). a[0] must be 1.
func lfilter(b, a, x, zi []float64) []float64 {
	n := len(b)
	z := make([]float64, n-1)
	copy(z, zi)
	y := make([]float64, len(x))
	for i, xi := range x {
		yi := b[0]*xi + z[0]
		for j := 0; j < n-2; j++ {
			z[j] = b[j+1]*xi + z[j+1] - a[j+1]*yi
		}
		z[n-2] = b[n-1]*xi - a[n-1]*yi
		y[i] = yi
	}
	return y
}

// lfilterZI computes the state for which the filter's step response is
// immediately at steady state, by solving (I - A^T) zi = B over the
// companion form of the denominator.
func lfilterZI(b, a []float64) ([]float64, error) {
	n := len(a)
	m := n - 1
	sys := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			var c float64
			if j == 0 {
				c = -a[i+1]
			} else if j == i+1 {
				c = 1
			}
			v := -c
			if i == j {
				v++
			}
			sys.Set(i, j, v)
		}
	}
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(i, b[i+1]-a[i+1]*b[0])
	}
	var zi mat.VecDense
	if err := zi.SolveVec(sys, rhs); err != nil {
		return nil, fmt.Errorf("singular filter state system: %v", err)
	}
	out := make([]float64, m)
	for i := range out {
		out[i] = zi.AtVec(i)
	}
	return out, nil
}

// filtFilt applies (b, a) forward and backward over x for zero net phase.
// The input is extended at both ends by an odd reflection of up to
// 3*max(len(a), len(b)) samples before filtering; the extension is dropped
// from the result.
func filtFilt(b, a, x []float64) ([]float64, error) {
	ntaps := len(b)
	if len(a) > ntaps {
		ntaps = len(a)
	}
	edge := 3 * ntaps
	if edge >= len(x) {
		edge = len(x) - 1
	}
	if edge < 1 {
		return nil, fmt.Errorf("signal too short to filter (%d samples)", len(x))
	}

	ext := make([]float64, 0, len(x)+2*edge)
	for i := edge; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	last := len(x) - 1
	for i := 1; i <= edge; i++ {
		ext = append(ext, 2*x[last]-x[last-i])
	}

	zi, err := lfilterZI(b, a)
	if err != nil {
		return nil, err
	}

	y := lfilter(b, a, ext, scaled(zi, ext[0]))
	reverse(y)
	y = lfilter(b, a, y, scaled(zi, y[0]))
	reverse(y)

	return y[edge : edge+len(x)], nil
}

func scaled(zi []float64, x0 float64) []float64 {
	out := make([]float64, len(zi))
	for i, z := range zi {
		out[i] = z * x0
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
