package snirf

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"
)

// Generic dataset readers for the low-level walker. Numeric reads rely on
// the HDF5 library's in-flight type conversion, so integer datasets can be
// read straight into float64 buffers.

// openFirstGroup opens the first group that exists among the given names.
// SNIRF files in the wild use both canonical and numbered group names
// (e.g. "nirs" vs "nirs1"), so most lookups carry an alternate.
func openFirstGroup(g *hdf5.CommonFG, names ...string) (*hdf5.Group, error) {
	for _, name := range names {
		if g.LinkExists(name) {
			return g.OpenGroup(name)
		}
	}
	return nil, fmt.Errorf("none of %v present", names)
}

// datasetDims returns the dataset's extent, normalised to (rows, cols).
// Scalar and 1-D extents report cols == 1.
func datasetDims(dset *hdf5.Dataset) (rows, cols int, err error) {
	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return 0, 0, err
	}
	switch len(dims) {
	case 0:
		return 1, 1, nil
	case 1:
		return int(dims[0]), 1, nil
	default:
		return int(dims[0]), int(dims[1]), nil
	}
}

// readMatrix reads a 2-D (or 1-D, treated as single-column) float dataset.
func readMatrix(g *hdf5.CommonFG, name string) (*mat.Dense, error) {
	dset, err := g.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %v", name, err)
	}
	defer dset.Close()

	rows, cols, err := datasetDims(dset)
	if err != nil {
		return nil, fmt.Errorf("dataset %q extent: %v", name, err)
	}
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("dataset %q is empty", name)
	}
	buf := make([]float64, rows*cols)
	if err := dset.Read(&buf); err != nil {
		return nil, fmt.Errorf("dataset %q read: %v", name, err)
	}
	return mat.NewDense(rows, cols, buf), nil
}

// readVector reads a dataset of any extent as a flat float64 slice.
func readVector(g *hdf5.CommonFG, name string) ([]float64, error) {
	dset, err := g.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %v", name, err)
	}
	defer dset.Close()

	rows, cols, err := datasetDims(dset)
	if err != nil {
		return nil, fmt.Errorf("dataset %q extent: %v", name, err)
	}
	buf := make([]float64, rows*cols)
	if err := dset.Read(&buf); err != nil {
		return nil, fmt.Errorf("dataset %q read: %v", name, err)
	}
	return buf, nil
}

// readScalarInt reads an optional scalar numeric dataset, returning def when
// the dataset is absent.
func readScalarInt(g *hdf5.CommonFG, name string, def int) (int, error) {
	if !g.LinkExists(name) {
		return def, nil
	}
	v, err := readVector(g, name)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return def, nil
	}
	return int(v[0]), nil
}

// readStrings reads a string dataset in any of the encodings SNIRF writers
// produce: a single string, a list of variable-length strings, or
// fixed-length byte arrays. Fixed-length entries are NUL-trimmed.
func readStrings(g *hdf5.CommonFG, name string) ([]string, error) {
	dset, err := g.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %v", name, err)
	}
	defer dset.Close()

	rows, cols, err := datasetDims(dset)
	if err != nil {
		return nil, fmt.Errorf("dataset %q extent: %v", name, err)
	}
	n := rows * cols
	if n == 0 {
		return nil, nil
	}

	// Variable-length strings read directly into a Go slice.
	strs := make([]string, n)
	if err := dset.Read(&strs); err == nil {
		for i, s := range strs {
			strs[i] = strings.TrimRight(s, "\x00")
		}
		return strs, nil
	}

	// Fixed-length byte arrays: read the raw buffer and split on the
	// datatype size.
	dt, err := dset.Datatype()
	if err != nil {
		return nil, fmt.Errorf("dataset %q type: %v", name, err)
	}
	defer dt.Close()
	size := int(dt.Size())
	if size <= 0 {
		return nil, fmt.Errorf("dataset %q: unreadable string encoding", name)
	}
	raw := make([]byte, n*size)
	if err := dset.Read(&raw); err != nil {
		return nil, fmt.Errorf("dataset %q read: %v", name, err)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = strings.TrimRight(string(raw[i*size:(i+1)*size]), "\x00")
	}
	return out, nil
}

// readOptionalString reads the first entry of an optional string dataset.
func readOptionalString(g *hdf5.CommonFG, name, def string) string {
	if !g.LinkExists(name) {
		return def
	}
	strs, err := readStrings(g, name)
	if err != nil || len(strs) == 0 {
		return def
	}
	return strs[0]
}

// readMetaValue reads one metadata-tags entry, unwrapping singleton arrays
// and decoding byte strings to text. String entries come back as string or
// []string, numeric entries as float64 or []float64.
func readMetaValue(g *hdf5.CommonFG, name string) (any, error) {
	dset, err := g.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	dt, err := dset.Datatype()
	dset.Close()
	if err != nil {
		return nil, err
	}
	class := dt.Class()
	dt.Close()

	if class == hdf5.T_STRING {
		strs, err := readStrings(g, name)
		if err != nil {
			return nil, err
		}
		if len(strs) == 1 {
			return strs[0], nil
		}
		return strs, nil
	}

	vals, err := readVector(g, name)
	if err != nil {
		return nil, err
	}
	if len(vals) == 1 {
		return vals[0], nil
	}
	return vals, nil
}
