package session

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func entry(path string, at time.Time) LoadEntry {
	return LoadEntry{
		ID:              uuid.NewString(),
		Path:            path,
		Loader:          "walk",
		Channels:        4,
		DurationSeconds: 12,
		SamplingRate:    10,
		LoadedAt:        at,
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	h := openTestHistory(t)
	now := time.Now()

	e := entry("/data/run1.snirf", now)
	require.NoError(t, h.RecordLoad(e))

	got, err := h.Recent(5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
	assert.Equal(t, e.Path, got[0].Path)
	assert.Equal(t, e.Loader, got[0].Loader)
	assert.Equal(t, e.Channels, got[0].Channels)
	assert.Equal(t, e.DurationSeconds, got[0].DurationSeconds)
	assert.Equal(t, e.SamplingRate, got[0].SamplingRate)
	assert.Equal(t, now.UnixNano(), got[0].LoadedAt.UnixNano())
}

func TestHistoryDedupesByPath(t *testing.T) {
	h := openTestHistory(t)
	base := time.Now()

	require.NoError(t, h.RecordLoad(entry("/data/run1.snirf", base)))
	newer := entry("/data/run1.snirf", base.Add(time.Minute))
	require.NoError(t, h.RecordLoad(newer))

	got, err := h.Recent(0)
	require.NoError(t, err)
	require.Len(t, got, 1, "reloading the same path must not duplicate")
	assert.Equal(t, newer.ID, got[0].ID)
}

func TestHistoryPrunes(t *testing.T) {
	h := openTestHistory(t)
	base := time.Now()

	for i := 0; i < maxRecent+5; i++ {
		e := entry(fmt.Sprintf("/data/run%d.snirf", i), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, h.RecordLoad(e))
	}

	got, err := h.Recent(0)
	require.NoError(t, err)
	require.Len(t, got, maxRecent)

	// Most recent first; the oldest five must be gone.
	assert.Equal(t, fmt.Sprintf("/data/run%d.snirf", maxRecent+4), got[0].Path)
	assert.Equal(t, "/data/run5.snirf", got[len(got)-1].Path)
}

func TestHistoryRecentLimit(t *testing.T) {
	h := openTestHistory(t)
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, h.RecordLoad(entry(fmt.Sprintf("/data/run%d.snirf", i), base.Add(time.Duration(i)*time.Second))))
	}

	got, err := h.Recent(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPreferredLoader(t *testing.T) {
	h := openTestHistory(t)

	v, err := h.PreferredLoader("schema")
	require.NoError(t, err)
	assert.Equal(t, "schema", v, "default when unset")

	require.NoError(t, h.SetPreferredLoader("walk"))
	v, err = h.PreferredLoader("schema")
	require.NoError(t, err)
	assert.Equal(t, "walk", v)

	// Overwrites, not append.
	require.NoError(t, h.SetPreferredLoader("schema"))
	v, err = h.PreferredLoader("walk")
	require.NoError(t, err)
	assert.Equal(t, "schema", v)
}

func TestHistoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(path)
	require.NoError(t, err)
	require.NoError(t, h.RecordLoad(entry("/data/run1.snirf", time.Now())))
	require.NoError(t, h.Close())

	// Migrations must tolerate an already-current schema.
	h2, err := OpenHistory(path)
	require.NoError(t, err)
	defer h2.Close()

	got, err := h2.Recent(0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
