// Package session owns the mutable state of one viewing session: the
// currently loaded record, its processing pipeline, and the loader variant
// used for subsequent loads. It also persists load history and preferences
// to a small sqlite database.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/cortex-data/nirscope/internal/pipeline"
	"github.com/cortex-data/nirscope/internal/snirf"
)

// Events carries the two notifications the core emits to its shell.
// Either callback may be nil.
type Events struct {
	// ViewChanged fires after the active view changes (load, pipeline
	// transition, view switch, reset, close).
	ViewChanged func(label string)
	// LoadFailed fires when Load fails; the previous record stays intact.
	LoadFailed func(path string, err error)
}

// Manager is the single owner of the loaded record and its pipeline.
// It is not safe for concurrent use; one session drives it at a time.
type Manager struct {
	loader  *snirf.Loader
	record  *snirf.Record
	pipe    *pipeline.Pipeline
	events  Events
	history *HistoryStore
}

// NewManager creates a session using the named loader variant.
func NewManager(variant string) (*Manager, error) {
	loader, err := snirf.NewLoader(variant)
	if err != nil {
		return nil, err
	}
	return &Manager{loader: loader}, nil
}

// SetEvents installs the shell's notification callbacks.
func (m *Manager) SetEvents(ev Events) { m.events = ev }

// SetHistory attaches a history store; each successful load is recorded.
func (m *Manager) SetHistory(h *HistoryStore) { m.history = h }

// UseLoader switches the variant backing subsequent loads. The current
// record, if any, is unaffected.
func (m *Manager) UseLoader(variant string) error {
	loader, err := snirf.NewLoader(variant)
	if err != nil {
		return err
	}
	m.loader = loader
	return nil
}

// LoaderName returns the active variant name.
func (m *Manager) LoaderName() string { return m.loader.Name() }

// Record returns the loaded record, or nil.
func (m *Manager) Record() *snirf.Record { return m.record }

// HasData reports whether a record is loaded.
func (m *Manager) HasData() bool { return m.record != nil }

// Pipeline returns the pipeline for the loaded record, or nil.
func (m *Manager) Pipeline() *pipeline.Pipeline { return m.pipe }

// Load reads the file at path, replacing the current record wholesale and
// reseeding the pipeline with the new intensity and sampling rate. On
// failure the previous record and pipeline remain active and LoadFailed
// fires.
func (m *Manager) Load(path string) error {
	rec, err := m.loader.Load(path)
	if err != nil {
		opsf("load %s failed: %v", path, err)
		if m.events.LoadFailed != nil {
			m.events.LoadFailed(path, err)
		}
		return err
	}

	m.record = rec
	m.pipe = pipeline.New(rec.Intensity, rec.SamplingRate())

	if m.history != nil {
		entry := LoadEntry{
			ID:              uuid.NewString(),
			Path:            path,
			Loader:          m.loader.Name(),
			Channels:        rec.ChannelCount(),
			DurationSeconds: rec.DurationSeconds(),
			SamplingRate:    rec.SamplingRate(),
			LoadedAt:        time.Now(),
		}
		if err := m.history.RecordLoad(entry); err != nil {
			opsf("history record for %s failed: %v", path, err)
		}
	}

	m.notifyView()
	return nil
}

// Close clears the record and pipeline.
func (m *Manager) Close() {
	m.record = nil
	m.pipe = nil
	if m.events.ViewChanged != nil {
		m.events.ViewChanged("")
	}
}

// ConvertToOpticalDensity runs the OD stage on the loaded record.
func (m *Manager) ConvertToOpticalDensity() (*mat.Dense, error) {
	if m.pipe == nil {
		return nil, fmt.Errorf("no file loaded")
	}
	od := m.pipe.ConvertToOpticalDensity()
	m.notifyView()
	return od, nil
}

// ApplyBandpass runs the band-limiting stage on the loaded record.
func (m *Manager) ApplyBandpass(low, high float64, order int) (*mat.Dense, error) {
	if m.pipe == nil {
		return nil, fmt.Errorf("no file loaded")
	}
	filtered, err := m.pipe.ApplyBandpass(low, high, order)
	if err != nil {
		return nil, err
	}
	m.notifyView()
	return filtered, nil
}

// SetView switches the active view of the loaded record.
func (m *Manager) SetView(s pipeline.State) (*mat.Dense, error) {
	if m.pipe == nil {
		return nil, fmt.Errorf("no file loaded")
	}
	data, err := m.pipe.SetView(s)
	if err != nil {
		return nil, err
	}
	m.notifyView()
	return data, nil
}

// Reset returns the pipeline to the raw view.
func (m *Manager) Reset() {
	if m.pipe == nil {
		return
	}
	m.pipe.Reset()
	m.notifyView()
}

func (m *Manager) notifyView() {
	if m.events.ViewChanged == nil || m.pipe == nil {
		return
	}
	m.events.ViewChanged(m.pipe.Result().StateLabel())
}
