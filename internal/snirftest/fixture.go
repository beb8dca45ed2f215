// Package snirftest builds small SNIRF containers on disk for tests.
// Fixtures are written through the low-level HDF5 binding so both loader
// variants read them the same way they read production files.
package snirftest

import (
	"fmt"
	"math"

	"gonum.org/v1/hdf5"
)

// Fixture describes the synthetic recording to write. Zero values fall
// back to a small two-source, one-detector, two-wavelength recording.
type Fixture struct {
	// NumberedGroups selects the "nirs1"/"data1" group spellings instead
	// of "nirs"/"data".
	NumberedGroups bool
	// Positions3D writes sourcePos3D/detectorPos3D instead of the 2-D
	// variants.
	Positions3D bool
	// SourceLabels / DetectorLabels are written only when non-empty.
	SourceLabels   []string
	DetectorLabels []string
	// StimColumns is the width of each stim data table (1, 2 or 3).
	// Zero writes no stim groups.
	StimColumns int
	StimCount   int
	// Timepoints defaults to 120.
	Timepoints int
	// SamplingRate defaults to 10 Hz.
	SamplingRate float64
	// Metadata entries are written into metaDataTags. String and float64
	// values are supported.
	Metadata map[string]any
}

// Channels returns the channel count the fixture produces: one channel per
// source/detector/wavelength combination over 2 sources, 1 detector,
// 2 wavelengths.
func (f Fixture) Channels() int { return 4 }

func (f Fixture) timepoints() int {
	if f.Timepoints > 0 {
		return f.Timepoints
	}
	return 120
}

func (f Fixture) rate() float64 {
	if f.SamplingRate > 0 {
		return f.SamplingRate
	}
	return 10
}

// Write creates the fixture file at path, overwriting any previous file.
func Write(path string, f Fixture) error {
	file, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("create fixture %s: %w", path, err)
	}
	defer file.Close()

	nirsName, dataName := "nirs", "data"
	if f.NumberedGroups {
		nirsName, dataName = "nirs1", "data1"
	}

	nirs, err := file.CreateGroup(nirsName)
	if err != nil {
		return err
	}
	defer nirs.Close()

	if err := writeData(nirs, dataName, f); err != nil {
		return err
	}
	if err := writeProbe(nirs, f); err != nil {
		return err
	}
	if err := writeStims(nirs, f); err != nil {
		return err
	}
	return writeMetadata(nirs, f)
}

func writeData(nirs *hdf5.Group, dataName string, f Fixture) error {
	data, err := nirs.CreateGroup(dataName)
	if err != nil {
		return err
	}
	defer data.Close()

	rows := f.timepoints()
	cols := f.Channels()
	fs := f.rate()

	// Deterministic waveform so conformance checks compare real variation,
	// not constants: baseline plus a slow per-channel sinusoid.
	series := make([]float64, rows*cols)
	timeVec := make([]float64, rows)
	for i := 0; i < rows; i++ {
		t := float64(i) / fs
		timeVec[i] = t
		for j := 0; j < cols; j++ {
			series[i*cols+j] = 1000 + 50*float64(j+1)*math.Sin(2*math.Pi*0.2*t+float64(j))
		}
	}
	if err := writeFloats(&data.CommonFG, "dataTimeSeries", []uint{uint(rows), uint(cols)}, series); err != nil {
		return err
	}
	if err := writeFloats(&data.CommonFG, "time", []uint{uint(rows)}, timeVec); err != nil {
		return err
	}

	type channel struct{ src, det, wl int }
	channels := []channel{{1, 1, 1}, {1, 1, 2}, {2, 1, 1}, {2, 1, 2}}
	for i, ch := range channels {
		ml, err := data.CreateGroup(fmt.Sprintf("measurementList%d", i+1))
		if err != nil {
			return err
		}
		if err := writeInt(&ml.CommonFG, "sourceIndex", ch.src); err != nil {
			ml.Close()
			return err
		}
		if err := writeInt(&ml.CommonFG, "detectorIndex", ch.det); err != nil {
			ml.Close()
			return err
		}
		if err := writeInt(&ml.CommonFG, "wavelengthIndex", ch.wl); err != nil {
			ml.Close()
			return err
		}
		if err := writeInt(&ml.CommonFG, "dataType", 1); err != nil {
			ml.Close()
			return err
		}
		ml.Close()
	}
	return nil
}

func writeProbe(nirs *hdf5.Group, f Fixture) error {
	probe, err := nirs.CreateGroup("probe")
	if err != nil {
		return err
	}
	defer probe.Close()
	pg := &probe.CommonFG

	if f.Positions3D {
		if err := writeFloats(pg, "sourcePos3D", []uint{2, 3}, []float64{0, 0, 0, 30, 0, 5}); err != nil {
			return err
		}
		if err := writeFloats(pg, "detectorPos3D", []uint{1, 3}, []float64{15, 10, 2}); err != nil {
			return err
		}
	} else {
		if err := writeFloats(pg, "sourcePos2D", []uint{2, 2}, []float64{0, 0, 30, 0}); err != nil {
			return err
		}
		if err := writeFloats(pg, "detectorPos2D", []uint{1, 2}, []float64{15, 10}); err != nil {
			return err
		}
	}
	if err := writeFloats(pg, "wavelengths", []uint{2}, []float64{760, 850}); err != nil {
		return err
	}
	if len(f.SourceLabels) > 0 {
		if err := writeStrings(pg, "sourceLabels", f.SourceLabels); err != nil {
			return err
		}
	}
	if len(f.DetectorLabels) > 0 {
		if err := writeStrings(pg, "detectorLabels", f.DetectorLabels); err != nil {
			return err
		}
	}
	return nil
}

func writeStims(nirs *hdf5.Group, f Fixture) error {
	for i := 0; i < f.StimCount; i++ {
		grp, err := nirs.CreateGroup(fmt.Sprintf("stim%d", i+1))
		if err != nil {
			return err
		}
		cols := f.StimColumns
		if cols < 1 {
			cols = 3
		}
		table := make([]float64, 2*cols)
		for row := 0; row < 2; row++ {
			table[row*cols] = float64(5 + 10*row + i) // onset
			if cols > 1 {
				table[row*cols+1] = 2 // duration
			}
			if cols > 2 {
				table[row*cols+2] = 0.5 // amplitude
			}
		}
		if err := writeStrings(&grp.CommonFG, "name", []string{fmt.Sprintf("cond%d", i+1)}); err != nil {
			grp.Close()
			return err
		}
		if err := writeFloats(&grp.CommonFG, "data", []uint{2, uint(cols)}, table); err != nil {
			grp.Close()
			return err
		}
		grp.Close()
	}
	return nil
}

func writeMetadata(nirs *hdf5.Group, f Fixture) error {
	if len(f.Metadata) == 0 {
		return nil
	}
	mdt, err := nirs.CreateGroup("metaDataTags")
	if err != nil {
		return err
	}
	defer mdt.Close()
	for key, val := range f.Metadata {
		switch v := val.(type) {
		case string:
			if err := writeStrings(&mdt.CommonFG, key, []string{v}); err != nil {
				return err
			}
		case float64:
			if err := writeFloats(&mdt.CommonFG, key, []uint{1}, []float64{v}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported metadata type %T for %q", val, key)
		}
	}
	return nil
}

func writeFloats(g *hdf5.CommonFG, name string, dims []uint, values []float64) error {
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := g.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("create dataset %q: %w", name, err)
	}
	defer dset.Close()
	return dset.Write(&values)
}

func writeInt(g *hdf5.CommonFG, name string, value int) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{1}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := g.CreateDataset(name, hdf5.T_NATIVE_INT32, space)
	if err != nil {
		return fmt.Errorf("create dataset %q: %w", name, err)
	}
	defer dset.Close()
	v := []int32{int32(value)}
	return dset.Write(&v)
}

func writeStrings(g *hdf5.CommonFG, name string, values []string) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(values))}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := g.CreateDataset(name, hdf5.T_GO_STRING, space)
	if err != nil {
		return fmt.Errorf("create dataset %q: %w", name, err)
	}
	defer dset.Close()
	return dset.Write(&values)
}
