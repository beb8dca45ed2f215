package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortex-data/nirscope/internal/pipeline"
	"github.com/cortex-data/nirscope/internal/snirf"
	"github.com/cortex-data/nirscope/internal/snirftest"
)

func fixturePath(t *testing.T, f snirftest.Fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rec.snirf")
	require.NoError(t, snirftest.Write(path, f))
	return path
}

func TestManagerLoad(t *testing.T) {
	m, err := NewManager(snirf.VariantWalk)
	require.NoError(t, err)
	assert.False(t, m.HasData())

	var views []string
	m.SetEvents(Events{ViewChanged: func(label string) { views = append(views, label) }})

	path := fixturePath(t, snirftest.Fixture{})
	require.NoError(t, m.Load(path))

	assert.True(t, m.HasData())
	require.NotNil(t, m.Record())
	assert.Equal(t, path, m.Record().SourcePath)
	require.NotNil(t, m.Pipeline())
	assert.Equal(t, pipeline.StateRaw, m.Pipeline().State())
	assert.Equal(t, []string{"Raw Intensity"}, views)
}

func TestManagerLoadFailureKeepsRecord(t *testing.T) {
	m, err := NewManager(snirf.VariantWalk)
	require.NoError(t, err)

	path := fixturePath(t, snirftest.Fixture{})
	require.NoError(t, m.Load(path))
	prev := m.Record()

	var failedPath string
	var failedErr error
	m.SetEvents(Events{LoadFailed: func(p string, e error) {
		failedPath = p
		failedErr = e
	}})

	missing := filepath.Join(t.TempDir(), "absent.snirf")
	require.Error(t, m.Load(missing))

	assert.Same(t, prev, m.Record(), "failed load must not disturb the current record")
	assert.Equal(t, missing, failedPath)
	assert.Error(t, failedErr)
}

func TestManagerLoadReplacesRecord(t *testing.T) {
	m, err := NewManager(snirf.VariantWalk)
	require.NoError(t, err)

	first := fixturePath(t, snirftest.Fixture{})
	require.NoError(t, m.Load(first))

	// Process the first record, then load another: all derived state must
	// be reseeded.
	_, err = m.ApplyBandpass(0.5, 3, 3)
	require.NoError(t, err)

	second := fixturePath(t, snirftest.Fixture{NumberedGroups: true})
	require.NoError(t, m.Load(second))

	assert.Equal(t, second, m.Record().SourcePath)
	assert.Equal(t, pipeline.StateRaw, m.Pipeline().State())
	assert.False(t, m.Pipeline().Result().HasOpticalDensity())
}

func TestManagerPipelineDelegation(t *testing.T) {
	m, err := NewManager(snirf.VariantWalk)
	require.NoError(t, err)

	var views []string
	m.SetEvents(Events{ViewChanged: func(label string) { views = append(views, label) }})

	require.NoError(t, m.Load(fixturePath(t, snirftest.Fixture{})))

	od, err := m.ConvertToOpticalDensity()
	require.NoError(t, err)
	require.NotNil(t, od)

	filtered, err := m.ApplyBandpass(0.5, 3, 3)
	require.NoError(t, err)
	require.NotNil(t, filtered)

	_, err = m.SetView(pipeline.StateRaw)
	require.NoError(t, err)

	m.Reset()

	assert.Equal(t, []string{
		"Raw Intensity",
		"Optical Density",
		"Filtered OD",
		"Raw Intensity",
		"Raw Intensity",
	}, views)
}

func TestManagerNoFileLoaded(t *testing.T) {
	m, err := NewManager(snirf.VariantSchema)
	require.NoError(t, err)

	_, err = m.ConvertToOpticalDensity()
	assert.Error(t, err)
	_, err = m.ApplyBandpass(0.5, 3, 3)
	assert.Error(t, err)
	_, err = m.SetView(pipeline.StateRaw)
	assert.Error(t, err)
	m.Reset() // must not panic
}

func TestManagerUseLoader(t *testing.T) {
	m, err := NewManager(snirf.VariantSchema)
	require.NoError(t, err)
	assert.Equal(t, snirf.VariantSchema, m.LoaderName())

	require.NoError(t, m.UseLoader(snirf.VariantWalk))
	assert.Equal(t, snirf.VariantWalk, m.LoaderName())

	assert.Error(t, m.UseLoader("bogus"))
	assert.Equal(t, snirf.VariantWalk, m.LoaderName(), "failed switch keeps current loader")
}

func TestManagerClose(t *testing.T) {
	m, err := NewManager(snirf.VariantWalk)
	require.NoError(t, err)
	require.NoError(t, m.Load(fixturePath(t, snirftest.Fixture{})))

	m.Close()
	assert.False(t, m.HasData())
	assert.Nil(t, m.Pipeline())
}

func TestManagerRecordsHistory(t *testing.T) {
	m, err := NewManager(snirf.VariantWalk)
	require.NoError(t, err)

	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()
	m.SetHistory(h)

	path := fixturePath(t, snirftest.Fixture{})
	require.NoError(t, m.Load(path))

	entries, err := h.Recent(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].Path)
	assert.Equal(t, snirf.VariantWalk, entries[0].Loader)
	assert.Equal(t, 4, entries[0].Channels)
	assert.InDelta(t, 10, entries[0].SamplingRate, 1e-6)
}
