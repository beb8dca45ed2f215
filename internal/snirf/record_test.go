package snirf

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRecordDerivedQuantities(t *testing.T) {
	rec := &Record{
		Intensity: mat.NewDense(5, 3, nil),
		Time:      []float64{0, 0.1, 0.2, 0.3, 0.4},
	}

	if got := rec.ChannelCount(); got != 3 {
		t.Fatalf("ChannelCount = %d, want 3", got)
	}
	if got := rec.TimepointCount(); got != 5 {
		t.Fatalf("TimepointCount = %d, want 5", got)
	}
	if got := rec.DurationSeconds(); math.Abs(got-0.4) > 1e-12 {
		t.Fatalf("DurationSeconds = %g, want 0.4", got)
	}
	if got := rec.SamplingRate(); math.Abs(got-10) > 1e-9 {
		t.Fatalf("SamplingRate = %g, want 10", got)
	}
}

func TestRecordEmpty(t *testing.T) {
	rec := &Record{}
	if rec.ChannelCount() != 0 || rec.TimepointCount() != 0 {
		t.Fatal("nil intensity should report zero dims")
	}
	if rec.DurationSeconds() != 0 || rec.SamplingRate() != 0 {
		t.Fatal("empty time axis should report zero duration and rate")
	}

	rec.Time = []float64{1.5}
	if rec.DurationSeconds() != 0 || rec.SamplingRate() != 0 {
		t.Fatal("single sample should report zero duration and rate")
	}
}

func TestSamplingRateIgnoresDroppedFrames(t *testing.T) {
	// 10 Hz with one dropped frame: the single 0.2 s gap must not move the
	// median-based estimate.
	time := []float64{0, 0.1, 0.2, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9}
	rec := &Record{Time: time}

	if got := rec.SamplingRate(); math.Abs(got-10) > 1e-9 {
		t.Fatalf("SamplingRate = %g, want 10 despite gap", got)
	}
}

func TestSamplingRateZeroStep(t *testing.T) {
	rec := &Record{Time: []float64{1, 1, 1}}
	if got := rec.SamplingRate(); got != 0 {
		t.Fatalf("SamplingRate = %g for flat time axis, want 0", got)
	}
}

func TestChannelName(t *testing.T) {
	c := ChannelInfo{SourceIndex: 1, DetectorIndex: 2, WavelengthIndex: 1}
	if got := c.Name(); got != "S1-D2 (wl 1)" {
		t.Fatalf("Name = %q", got)
	}
}

func TestProbeCounts(t *testing.T) {
	p := ProbeGeometry{
		SourcePos:   mat.NewDense(2, 3, nil),
		DetectorPos: mat.NewDense(4, 2, nil),
	}
	if p.SourceCount() != 2 {
		t.Fatalf("SourceCount = %d", p.SourceCount())
	}
	if p.DetectorCount() != 4 {
		t.Fatalf("DetectorCount = %d", p.DetectorCount())
	}

	var empty ProbeGeometry
	if empty.SourceCount() != 0 || empty.DetectorCount() != 0 {
		t.Fatal("nil positions should count zero")
	}
}

func TestAutoLabels(t *testing.T) {
	got := autoLabels("S", 3)
	want := []string{"S1", "S2", "S3"}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(autoLabels("D", 0)) != 0 {
		t.Fatal("zero count should yield empty slice")
	}
}
