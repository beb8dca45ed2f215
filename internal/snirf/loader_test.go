package snirf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// fakeParser satisfies Parser without touching any container library, so
// the base checks can be exercised in isolation.
type fakeParser struct {
	rec   *Record
	err   error
	calls int
}

func (f *fakeParser) Name() string { return "fake" }

func (f *fakeParser) Parse(path string) (*Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func writeTemp(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	l := NewLoaderWithParser(&fakeParser{})
	_, err := l.Load(filepath.Join(t.TempDir(), "absent.snirf"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dir.snirf")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	l := NewLoaderWithParser(&fakeParser{})
	if _, err := l.Load(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for directory", err)
	}
}

func TestLoadWrongExtension(t *testing.T) {
	p := &fakeParser{}
	l := NewLoaderWithParser(p)
	_, err := l.Load(writeTemp(t, "data.nirs"))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
	if p.calls != 0 {
		t.Fatal("parser must not run on rejected extension")
	}
}

func TestLoadExtensionCaseInsensitive(t *testing.T) {
	p := &fakeParser{rec: &Record{}}
	l := NewLoaderWithParser(p)
	if _, err := l.Load(writeTemp(t, "data.SNIRF")); err != nil {
		t.Fatalf("uppercase extension rejected: %v", err)
	}
}

func TestLoadStampsSourcePath(t *testing.T) {
	rec := &Record{
		Intensity: mat.NewDense(3, 1, nil),
		Time:      []float64{0, 1, 2},
	}
	l := NewLoaderWithParser(&fakeParser{rec: rec})

	path := writeTemp(t, "data.snirf")
	got, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SourcePath != path {
		t.Fatalf("SourcePath = %q, want %q", got.SourcePath, path)
	}
}

func TestLoadPropagatesParserError(t *testing.T) {
	wrapped := errors.New("truncated container")
	l := NewLoaderWithParser(&fakeParser{err: wrapped})

	_, err := l.Load(writeTemp(t, "data.snirf"))
	if !errors.Is(err, wrapped) {
		t.Fatalf("err = %v, want wrapped parser error", err)
	}
}

func TestNewLoaderVariants(t *testing.T) {
	for _, variant := range []string{VariantSchema, VariantWalk} {
		l, err := NewLoader(variant)
		if err != nil {
			t.Fatalf("NewLoader(%q): %v", variant, err)
		}
		if l.Name() != variant {
			t.Fatalf("Name = %q, want %q", l.Name(), variant)
		}
	}
	if _, err := NewLoader("bogus"); err == nil {
		t.Fatal("unknown variant should be rejected")
	}
}
