package dsp

import (
	"math"
	"math/cmplx"
)

// Digital Butterworth bandpass design via the classic analog-prototype
// route: unit lowpass prototype, lowpass-to-bandpass transform, bilinear
// transform with frequency prewarping. Produces the same transfer-function
// coefficients as the standard scientific implementations, which is what
// the zero-phase filter's conformance tests rely on.

// butterBandpass returns transfer-function coefficients (b, a) for a
// Butterworth bandpass of the given order. lowN and highN are the band
// edges normalised to Nyquist, both in (0, 1). len(b) == len(a) ==
// 2*order+1 and a[0] == 1.
func butterBandpass(order int, lowN, highN float64) (b, a []float64) {
	// Prewarp the band edges onto the analog frequency axis. The sampling
	// rate is fixed at 2 so the Nyquist-normalised edges map directly.
	const fs = 2.0
	w1 := 2 * fs * math.Tan(math.Pi*lowN/fs)
	w2 := 2 * fs * math.Tan(math.Pi*highN/fs)

	// Unit analog lowpass prototype: order poles on the left unit
	// semicircle, no zeros, unit gain.
	poles := make([]complex128, order)
	for k := 0; k < order; k++ {
		theta := math.Pi * float64(2*k+1-order) / float64(2*order)
		poles[k] = -cmplx.Exp(complex(0, theta))
	}
	gain := 1.0

	// Lowpass-to-bandpass: each prototype pole splits into a conjugate
	// pair around the centre frequency; order zeros appear at s = 0.
	bw := w2 - w1
	wo := math.Sqrt(w1 * w2)
	bpPoles := make([]complex128, 0, 2*order)
	for _, p := range poles {
		ps := p * complex(bw/2, 0)
		d := cmplx.Sqrt(ps*ps - complex(wo*wo, 0))
		bpPoles = append(bpPoles, ps+d, ps-d)
	}
	bpZeros := make([]complex128, order) // all at s = 0
	gain *= math.Pow(bw, float64(order))

	// Bilinear transform, s -> (2fs + s)/(2fs - s).
	fs2 := complex(2*fs, 0)
	zPoles := make([]complex128, len(bpPoles))
	zZeros := make([]complex128, 0, len(bpPoles))
	num := complex(1, 0)
	den := complex(1, 0)
	for i, p := range bpPoles {
		zPoles[i] = (fs2 + p) / (fs2 - p)
		den *= fs2 - p
	}
	for _, z := range bpZeros {
		zZeros = append(zZeros, (fs2+z)/(fs2-z))
		num *= fs2 - z
	}
	// The degree deficit of the analog system maps to zeros at z = -1.
	for len(zZeros) < len(zPoles) {
		zZeros = append(zZeros, -1)
	}
	k := gain * real(num/den)

	bc := polyFromRoots(zZeros)
	ac := polyFromRoots(zPoles)
	b = make([]float64, len(bc))
	a = make([]float64, len(ac))
	for i, c := range bc {
		b[i] = k * real(c)
	}
	for i, c := range ac {
		a[i] = real(c)
	}
	return b, a
}

// polyFromRoots expands prod(x - r_i) into monomial coefficients, highest
// order first. Conjugate root pairs cancel the imaginary parts.
func polyFromRoots(roots []complex128) []complex128 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	return coeffs
}
