package snirf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Parser is the variant-specific traversal step. Implementations read an
// already-validated container path and build a Record; they do not stamp
// SourcePath and they hold no state between calls.
type Parser interface {
	// Name identifies the variant ("schema" or "walk").
	Name() string
	// Parse reads the container and returns the unified record.
	Parse(path string) (*Record, error)
}

// Loader variant names accepted by NewLoader.
const (
	// VariantSchema delegates to the high-level, schema-addressed reader.
	VariantSchema = "schema"
	// VariantWalk traverses the low-level HDF5 container directly.
	VariantWalk = "walk"
)

// Ext is the only accepted container suffix.
const Ext = ".snirf"

// Loader wraps a Parser with the base responsibilities common to both
// variants: existence and extension checks before parsing, source-path
// stamping after.
type Loader struct {
	parser Parser
}

// NewLoader returns a Loader backed by the named variant.
func NewLoader(variant string) (*Loader, error) {
	switch variant {
	case VariantSchema:
		return &Loader{parser: &schemaParser{}}, nil
	case VariantWalk:
		return &Loader{parser: &walkParser{}}, nil
	default:
		return nil, fmt.Errorf("unknown loader variant %q (want %q or %q)", variant, VariantSchema, VariantWalk)
	}
}

// NewLoaderWithParser wraps an arbitrary Parser. Used by tests to exercise
// the base checks independently of the container libraries.
func NewLoaderWithParser(p Parser) *Loader {
	return &Loader{parser: p}
}

// Name returns the backing variant name.
func (l *Loader) Name() string { return l.parser.Name() }

// Load reads the SNIRF container at path into a Record.
//
// Failure modes, in check order: ErrNotFound when path is not an existing
// regular file, ErrInvalidFormat when the extension is not .snirf, and
// whatever the parser reports (ErrInvalidFormat or ErrParse) for container
// content problems. On success the record's SourcePath is set to path.
func (l *Loader) Load(path string) (*Record, error) {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !strings.EqualFold(filepath.Ext(path), Ext) {
		return nil, fmt.Errorf("%w: %s (expected %s extension)", ErrInvalidFormat, path, Ext)
	}

	diagf("loading %s via %s parser", path, l.parser.Name())
	rec, err := l.parser.Parse(path)
	if err != nil {
		return nil, err
	}
	rec.SourcePath = path
	diagf("loaded %s: %d channels x %d samples, %.2f Hz",
		filepath.Base(path), rec.ChannelCount(), rec.TimepointCount(), rec.SamplingRate())
	return rec, nil
}
