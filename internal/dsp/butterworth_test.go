package dsp

import (
	"math"
	"testing"
)

// evalPoly evaluates sum(c[i] * z^-i) at z on the unit circle, returning the
// magnitude of the frequency response numerator or denominator.
func evalPoly(c []float64, omega float64) complex128 {
	var acc complex128
	for i, v := range c {
		angle := -omega * float64(i)
		acc += complex(v*math.Cos(angle), v*math.Sin(angle))
	}
	return acc
}

func responseMagnitude(b, a []float64, omega float64) float64 {
	num := evalPoly(b, omega)
	den := evalPoly(a, omega)
	return math.Hypot(real(num), imag(num)) / math.Hypot(real(den), imag(den))
}

func TestButterBandpassShape(t *testing.T) {
	for order := 1; order <= 5; order++ {
		b, a := butterBandpass(order, 0.04, 0.2)
		if len(b) != 2*order+1 || len(a) != 2*order+1 {
			t.Fatalf("order %d: len(b)=%d len(a)=%d, want %d", order, len(b), len(a), 2*order+1)
		}
		if math.Abs(a[0]-1) > 1e-12 {
			t.Fatalf("order %d: a[0] = %g, want 1", order, a[0])
		}
	}
}

func TestButterBandpassZeroAtDCAndNyquist(t *testing.T) {
	b, _ := butterBandpass(3, 0.04, 0.2)

	// z = 1 (DC): numerator is the plain coefficient sum.
	var dc float64
	for _, v := range b {
		dc += v
	}
	if math.Abs(dc) > 1e-10 {
		t.Fatalf("numerator at DC = %g, want 0", dc)
	}

	// z = -1 (Nyquist): alternating sum.
	var ny float64
	for i, v := range b {
		if i%2 == 0 {
			ny += v
		} else {
			ny -= v
		}
	}
	if math.Abs(ny) > 1e-10 {
		t.Fatalf("numerator at Nyquist = %g, want 0", ny)
	}
}

func TestButterBandpassOrderOneCoefficients(t *testing.T) {
	// Reference coefficients for wn = [0.04, 0.2]: prewarp 4*tan(pi*wn/2),
	// lp2bp, bilinear at fs=2 puts the z-poles at 0.76382 +/- 0.08917i, so
	// a = [1, -1.527638, 0.591373] and b = k*[1, 0, -1] with k = (1-a[2])/2.
	b, a := butterBandpass(1, 0.04, 0.2)

	wantA := []float64{1, -1.527638, 0.591373}
	for i := range wantA {
		if math.Abs(a[i]-wantA[i]) > 1e-4 {
			t.Fatalf("a[%d] = %g, want %g", i, a[i], wantA[i])
		}
	}

	k := (1 - a[2]) / 2
	wantB := []float64{k, 0, -k}
	for i := range wantB {
		if math.Abs(b[i]-wantB[i]) > 1e-6 {
			t.Fatalf("b[%d] = %g, want %g", i, b[i], wantB[i])
		}
	}
}

func TestButterBandpassPassbandGain(t *testing.T) {
	low, high := 0.04, 0.2
	b, a := butterBandpass(3, low, high)

	// Geometric band centre should sit near unity gain.
	centre := math.Pi * math.Sqrt(low*high)
	g := responseMagnitude(b, a, centre)
	if g < 0.9 || g > 1.05 {
		t.Fatalf("centre-band gain = %g, want near 1", g)
	}

	// Band edges of a Butterworth design sit at -3 dB.
	for _, wn := range []float64{low, high} {
		g := responseMagnitude(b, a, math.Pi*wn)
		if math.Abs(g-math.Sqrt(0.5)) > 0.02 {
			t.Fatalf("gain at wn=%g is %g, want ~%g", wn, g, math.Sqrt(0.5))
		}
	}
}

func TestPolyFromRoots(t *testing.T) {
	// (z-1)(z-2)(z-3) = z^3 - 6z^2 + 11z - 6
	roots := []complex128{1, 2, 3}
	got := polyFromRoots(roots)
	want := []complex128{1, -6, 11, -6}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(real(got[i])-real(want[i])) > 1e-12 || math.Abs(imag(got[i])) > 1e-12 {
			t.Fatalf("coef %d = %v, want %v", i, got[i], want[i])
		}
	}
}
