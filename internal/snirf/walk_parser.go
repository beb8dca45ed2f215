package snirf

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// walkParser traverses the low-level HDF5 container directly, probing the
// conventional group-name alternates instead of trusting a fixed schema.
type walkParser struct{}

func (walkParser) Name() string { return VariantWalk }

func (walkParser) Parse(path string) (*Record, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	defer f.Close()

	nirs, err := openFirstGroup(&f.CommonFG, "nirs", "nirs1")
	if err != nil {
		return nil, fmt.Errorf("%w: no nirs group in %s", ErrInvalidFormat, path)
	}
	defer nirs.Close()

	data, err := openFirstGroup(&nirs.CommonFG, "data", "data1")
	if err != nil {
		return nil, fmt.Errorf("%w: no data group in %s", ErrParse, path)
	}
	defer data.Close()

	intensity, err := readMatrix(&data.CommonFG, "dataTimeSeries")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	timeVec, err := readVector(&data.CommonFG, "time")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	probe, err := readProbe(nirs)
	if err != nil {
		return nil, err
	}

	channels, err := readMeasurementList(data)
	if err != nil {
		return nil, err
	}

	stimuli, err := readStimuli(nirs)
	if err != nil {
		return nil, err
	}

	metadata, err := readMetadataTags(nirs)
	if err != nil {
		return nil, err
	}

	return &Record{
		Intensity: intensity,
		Time:      timeVec,
		Probe:     probe,
		Channels:  channels,
		Stimuli:   stimuli,
		Metadata:  metadata,
	}, nil
}

// readProbe reads positions (3-D preferred over 2-D), wavelengths, and
// labels. Source-provided labels are used only when their count matches the
// position count; a mismatch is logged and falls back to auto-generation
// rather than failing the load.
func readProbe(nirs *hdf5.Group) (ProbeGeometry, error) {
	grp, err := openFirstGroup(&nirs.CommonFG, "probe")
	if err != nil {
		return ProbeGeometry{}, fmt.Errorf("%w: no probe group", ErrParse)
	}
	defer grp.Close()
	pg := &grp.CommonFG

	srcPos, err := readMatrix(pg, pickDataset(pg, "sourcePos3D", "sourcePos2D"))
	if err != nil {
		return ProbeGeometry{}, fmt.Errorf("%w: source positions: %v", ErrParse, err)
	}
	detPos, err := readMatrix(pg, pickDataset(pg, "detectorPos3D", "detectorPos2D"))
	if err != nil {
		return ProbeGeometry{}, fmt.Errorf("%w: detector positions: %v", ErrParse, err)
	}
	wavelengths, err := readVector(pg, "wavelengths")
	if err != nil {
		return ProbeGeometry{}, fmt.Errorf("%w: wavelengths: %v", ErrParse, err)
	}

	nSrc, _ := srcPos.Dims()
	nDet, _ := detPos.Dims()

	return ProbeGeometry{
		SourcePos:      srcPos,
		DetectorPos:    detPos,
		Wavelengths:    wavelengths,
		SourceLabels:   readLabels(pg, "sourceLabels", "S", nSrc),
		DetectorLabels: readLabels(pg, "detectorLabels", "D", nDet),
	}, nil
}

// pickDataset returns the first of the candidate dataset names that exists,
// or the last candidate (whose absence the subsequent read will report).
func pickDataset(g *hdf5.CommonFG, names ...string) string {
	for _, name := range names {
		if g.LinkExists(name) {
			return name
		}
	}
	return names[len(names)-1]
}

func readLabels(pg *hdf5.CommonFG, dataset, prefix string, count int) []string {
	if !pg.LinkExists(dataset) {
		return autoLabels(prefix, count)
	}
	labels, err := readStrings(pg, dataset)
	if err != nil {
		opsf("unreadable %s, falling back to auto-generated labels: %v", dataset, err)
		return autoLabels(prefix, count)
	}
	if len(labels) != count {
		opsf("%s has %d entries for %d positions, falling back to auto-generated labels",
			dataset, len(labels), count)
		return autoLabels(prefix, count)
	}
	return labels
}

// readMeasurementList enumerates measurementList1, measurementList2, ...
// until the first missing sibling. The probe is the termination rule; the
// file carries no channel count.
func readMeasurementList(data *hdf5.Group) ([]ChannelInfo, error) {
	var channels []ChannelInfo
	for idx := 1; ; idx++ {
		key := fmt.Sprintf("measurementList%d", idx)
		if !data.LinkExists(key) {
			break
		}
		ml, err := data.OpenGroup(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, key, err)
		}
		ch, err := readChannel(&ml.CommonFG)
		ml.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, key, err)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func readChannel(ml *hdf5.CommonFG) (ChannelInfo, error) {
	src, err := readScalarInt(ml, "sourceIndex", 0)
	if err != nil {
		return ChannelInfo{}, err
	}
	det, err := readScalarInt(ml, "detectorIndex", 0)
	if err != nil {
		return ChannelInfo{}, err
	}
	wl, err := readScalarInt(ml, "wavelengthIndex", 0)
	if err != nil {
		return ChannelInfo{}, err
	}
	dt, err := readScalarInt(ml, "dataType", 0)
	if err != nil {
		return ChannelInfo{}, err
	}
	return ChannelInfo{
		SourceIndex:     src,
		DetectorIndex:   det,
		WavelengthIndex: wl,
		DataType:        dt,
		DataTypeLabel:   readOptionalString(ml, "dataTypeLabel", ""),
	}, nil
}

// readStimuli enumerates stim1, stim2, ... by the same probing rule as the
// measurement list. A stim group without a usable N x {1,2,3} data table is
// skipped. Missing duration/amplitude columns default to all-ones.
func readStimuli(nirs *hdf5.Group) ([]StimulusInfo, error) {
	var stimuli []StimulusInfo
	for idx := 1; ; idx++ {
		key := fmt.Sprintf("stim%d", idx)
		if !nirs.LinkExists(key) {
			break
		}
		grp, err := nirs.OpenGroup(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, key, err)
		}
		sg := &grp.CommonFG
		name := readOptionalString(sg, "name", key)
		if !sg.LinkExists("data") {
			grp.Close()
			continue
		}
		table, err := readMatrix(sg, "data")
		grp.Close()
		if err != nil {
			opsf("stim group %s has unreadable data table, skipping: %v", key, err)
			continue
		}
		rows, cols := table.Dims()
		if rows == 0 || cols == 0 {
			continue
		}
		st := StimulusInfo{Name: name, Onset: colSlice(table, 0)}
		if cols > 1 {
			st.Duration = colSlice(table, 1)
		} else {
			st.Duration = onesVector(rows)
		}
		if cols > 2 {
			st.Amplitude = colSlice(table, 2)
		} else {
			st.Amplitude = onesVector(rows)
		}
		stimuli = append(stimuli, st)
	}
	return stimuli, nil
}

// readMetadataTags reads every entry of the metaDataTags group into the
// metadata map. The group is optional.
func readMetadataTags(nirs *hdf5.Group) (map[string]any, error) {
	metadata := make(map[string]any)
	if !nirs.LinkExists("metaDataTags") {
		return metadata, nil
	}
	mdt, err := nirs.OpenGroup("metaDataTags")
	if err != nil {
		return nil, fmt.Errorf("%w: metaDataTags: %v", ErrParse, err)
	}
	defer mdt.Close()

	n, err := mdt.NumObjects()
	if err != nil {
		return nil, fmt.Errorf("%w: metaDataTags: %v", ErrParse, err)
	}
	for i := uint(0); i < n; i++ {
		name, err := mdt.ObjectNameByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("%w: metaDataTags entry %d: %v", ErrParse, i, err)
		}
		val, err := readMetaValue(&mdt.CommonFG, name)
		if err != nil {
			opsf("metaDataTags entry %q unreadable, skipping: %v", name, err)
			continue
		}
		metadata[name] = val
	}
	return metadata, nil
}
