package snirf

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"gonum.org/v1/gonum/mat"
)

// schemaParser delegates container access to the go-native-netcdf reader
// and addresses the SNIRF schema directly: first recording group, its first
// data block, the probe group, measurement list, stimulus tables and the
// metadata tag collection. Labels are not read from the source in this
// variant; they are always auto-generated.
type schemaParser struct{}

func (schemaParser) Name() string { return VariantSchema }

func (schemaParser) Parse(path string) (*Record, error) {
	root, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	defer root.Close()

	nirs, err := subgroup(root, "nirs", "nirs1")
	if err != nil {
		return nil, fmt.Errorf("%w: no nirs group in %s", ErrInvalidFormat, path)
	}
	defer nirs.Close()

	data, err := subgroup(nirs, "data", "data1")
	if err != nil {
		return nil, fmt.Errorf("%w: no data group in %s", ErrParse, path)
	}
	defer data.Close()

	intensity, err := variableMatrix(data, "dataTimeSeries")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	timeVec, err := variableVector(data, "time")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	probe, err := subgroup(nirs, "probe")
	if err != nil {
		return nil, fmt.Errorf("%w: no probe group", ErrParse)
	}
	defer probe.Close()

	srcPos, err := variableMatrixFirst(probe, "sourcePos3D", "sourcePos2D")
	if err != nil {
		return nil, fmt.Errorf("%w: source positions: %v", ErrParse, err)
	}
	detPos, err := variableMatrixFirst(probe, "detectorPos3D", "detectorPos2D")
	if err != nil {
		return nil, fmt.Errorf("%w: detector positions: %v", ErrParse, err)
	}
	wavelengths, err := variableVector(probe, "wavelengths")
	if err != nil {
		return nil, fmt.Errorf("%w: wavelengths: %v", ErrParse, err)
	}

	channels, err := schemaChannels(data)
	if err != nil {
		return nil, err
	}
	stimuli, err := schemaStimuli(nirs)
	if err != nil {
		return nil, err
	}

	nSrc, _ := srcPos.Dims()
	nDet, _ := detPos.Dims()

	return &Record{
		Intensity: intensity,
		Time:      timeVec,
		Probe: ProbeGeometry{
			SourcePos:      srcPos,
			DetectorPos:    detPos,
			Wavelengths:    wavelengths,
			SourceLabels:   autoLabels("S", nSrc),
			DetectorLabels: autoLabels("D", nDet),
		},
		Channels: channels,
		Stimuli:  stimuli,
		Metadata: schemaMetadata(nirs),
	}, nil
}

func schemaChannels(data api.Group) ([]ChannelInfo, error) {
	var channels []ChannelInfo
	for idx := 1; ; idx++ {
		ml, err := data.GetGroup(fmt.Sprintf("measurementList%d", idx))
		if err != nil {
			break
		}
		ch := ChannelInfo{
			SourceIndex:     variableInt(ml, "sourceIndex", 0),
			DetectorIndex:   variableInt(ml, "detectorIndex", 0),
			WavelengthIndex: variableInt(ml, "wavelengthIndex", 0),
			DataType:        variableInt(ml, "dataType", 0),
			DataTypeLabel:   variableString(ml, "dataTypeLabel", ""),
		}
		ml.Close()
		channels = append(channels, ch)
	}
	return channels, nil
}

func schemaStimuli(nirs api.Group) ([]StimulusInfo, error) {
	var stimuli []StimulusInfo
	for idx := 1; ; idx++ {
		key := fmt.Sprintf("stim%d", idx)
		grp, err := nirs.GetGroup(key)
		if err != nil {
			break
		}
		name := variableString(grp, "name", key)
		table, err := variableMatrix(grp, "data")
		grp.Close()
		if err != nil {
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

// schemaMetadata reads every named entry of the metadata tag collection.
// Unreadable entries are skipped; the tag group itself is optional.
func schemaMetadata(nirs api.Group) map[string]any {
	metadata := make(map[string]any)
	mdt, err := nirs.GetGroup("metaDataTags")
	if err != nil {
		return metadata
	}
	defer mdt.Close()
	for _, name := range mdt.ListVariables() {
		v, err := mdt.GetVariable(name)
		if err != nil {
			opsf("metaDataTags entry %q unreadable, skipping: %v", name, err)
			continue
		}
		metadata[name] = unwrapValue(v.Values)
	}
	return metadata
}

// subgroup opens the first existing subgroup among the given names.
func subgroup(g api.Group, names ...string) (api.Group, error) {
	var err error
	for _, name := range names {
		var sub api.Group
		sub, err = g.GetGroup(name)
		if err == nil {
			return sub, nil
		}
	}
	return nil, err
}

func variableMatrixFirst(g api.Group, names ...string) (*mat.Dense, error) {
	var err error
	for _, name := range names {
		var m *mat.Dense
		m, err = variableMatrix(g, name)
		if err == nil {
			return m, nil
		}
	}
	return nil, err
}

func variableMatrix(g api.Group, name string) (*mat.Dense, error) {
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %v", name, err)
	}
	return valueMatrix(v.Values, name)
}

func variableVector(g api.Group, name string) ([]float64, error) {
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %v", name, err)
	}
	vec, ok := valueFloats(v.Values)
	if !ok {
		return nil, fmt.Errorf("variable %q: unsupported type %T", name, v.Values)
	}
	return vec, nil
}

func variableInt(g api.Group, name string, def int) int {
	v, err := g.GetVariable(name)
	if err != nil {
		return def
	}
	vec, ok := valueFloats(v.Values)
	if !ok || len(vec) == 0 {
		return def
	}
	return int(vec[0])
}

func variableString(g api.Group, name, def string) string {
	v, err := g.GetVariable(name)
	if err != nil {
		return def
	}
	switch s := v.Values.(type) {
	case string:
		return s
	case []string:
		if len(s) > 0 {
			return s[0]
		}
	}
	return def
}

// valueMatrix converts a decoded variable into a dense matrix. 1-D values
// become a single column.
func valueMatrix(values any, name string) (*mat.Dense, error) {
	switch v := values.(type) {
	case [][]float64:
		if len(v) == 0 || len(v[0]) == 0 {
			return nil, fmt.Errorf("variable %q is empty", name)
		}
		m := mat.NewDense(len(v), len(v[0]), nil)
		for i, row := range v {
			m.SetRow(i, row)
		}
		return m, nil
	case [][]float32:
		if len(v) == 0 || len(v[0]) == 0 {
			return nil, fmt.Errorf("variable %q is empty", name)
		}
		m := mat.NewDense(len(v), len(v[0]), nil)
		for i, row := range v {
			for j, x := range row {
				m.Set(i, j, float64(x))
			}
		}
		return m, nil
	default:
		vec, ok := valueFloats(values)
		if !ok || len(vec) == 0 {
			return nil, fmt.Errorf("variable %q: unsupported type %T", name, values)
		}
		return mat.NewDense(len(vec), 1, vec), nil
	}
}

// valueFloats flattens scalar or 1-D numeric values of any width into a
// float64 slice.
func valueFloats(values any) ([]float64, bool) {
	switch v := values.(type) {
	case []float64:
		return v, true
	case float64:
		return []float64{v}, true
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case float32:
		return []float64{float64(v)}, true
	case []int32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case int32:
		return []float64{float64(v)}, true
	case []int64:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case int64:
		return []float64{float64(v)}, true
	case []int16:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case []int8:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	default:
		return nil, false
	}
}

// unwrapValue reduces singleton slices to scalars for the metadata map.
func unwrapValue(values any) any {
	switch v := values.(type) {
	case []string:
		if len(v) == 1 {
			return v[0]
		}
	case []float64:
		if len(v) == 1 {
			return v[0]
		}
	case []int32:
		if len(v) == 1 {
			return v[0]
		}
	}
	return values
}
