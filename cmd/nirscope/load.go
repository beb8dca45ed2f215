package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cortex-data/nirscope/internal/session"
	"github.com/cortex-data/nirscope/internal/snirf"
)

// loadFlags are the flags shared by every file-consuming subcommand.
type loadFlags struct {
	loader  string
	stage   string
	low     float64
	high    float64
	order   int
	dbPath  string
	verbose bool
}

func (lf *loadFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&lf.loader, "loader", "", "loader variant: schema or walk (default: stored preference, else schema)")
	fs.StringVar(&lf.stage, "stage", "raw", "processing view: raw, od or filtered")
	fs.Float64Var(&lf.low, "low", 0.01, "bandpass low cutoff in Hz (filtered stage)")
	fs.Float64Var(&lf.high, "high", 0.5, "bandpass high cutoff in Hz (filtered stage)")
	fs.IntVar(&lf.order, "order", 3, "bandpass filter order (filtered stage)")
	fs.StringVar(&lf.dbPath, "db", defaultHistoryPath(), "history database path (empty disables history)")
	fs.BoolVar(&lf.verbose, "verbose", false, "enable diagnostic logging")
}

// defaultHistoryPath keeps the history database alongside the user's other
// state files.
func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "nirscope", "history.db")
}

// openSession builds a session manager from the flags, attaching history
// when a database path is configured, and loads path into it. The returned
// cleanup closes the history store.
func openSession(lf loadFlags, path string) (*session.Manager, func(), error) {
	if lf.verbose {
		enableVerbose()
	} else {
		quietLogs()
	}

	cleanup := func() {}
	var history *session.HistoryStore
	if lf.dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(lf.dbPath), 0o755); err == nil {
			if h, err := session.OpenHistory(lf.dbPath); err == nil {
				history = h
				cleanup = func() { h.Close() }
			}
		}
		// History is best-effort: a broken database must not block reads.
	}

	variant := lf.loader
	if variant == "" {
		variant = snirf.VariantSchema
		if history != nil {
			if v, err := history.PreferredLoader(variant); err == nil {
				variant = v
			}
		}
	}

	m, err := session.NewManager(variant)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if history != nil {
		m.SetHistory(history)
	}
	if err := m.Load(path); err != nil {
		cleanup()
		return nil, nil, err
	}
	return m, cleanup, nil
}

// applyStage advances the loaded pipeline to the requested view.
func applyStage(m *session.Manager, lf loadFlags) error {
	switch strings.ToLower(lf.stage) {
	case "raw", "":
		return nil
	case "od":
		_, err := m.ConvertToOpticalDensity()
		return err
	case "filtered":
		_, err := m.ApplyBandpass(lf.low, lf.high, lf.order)
		return err
	default:
		return fmt.Errorf("unknown stage %q (want raw, od or filtered)", lf.stage)
	}
}

// singleArg returns the one positional argument or an error.
func singleArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one SNIRF file argument, got %d", fs.NArg())
	}
	return fs.Arg(0), nil
}

// parseChannelList parses a comma-separated list of 1-based channel
// numbers, returning 0-based column indices. Empty means all channels.
func parseChannelList(s string, channelCount int) ([]int, error) {
	if s == "" {
		out := make([]int, channelCount)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid channel number %q: %w", p, err)
		}
		if n < 1 || n > channelCount {
			return nil, fmt.Errorf("channel %d out of range 1..%d", n, channelCount)
		}
		out = append(out, n-1)
	}
	return out, nil
}

// viewLabel names the active view for titles and status lines.
func viewLabel(m *session.Manager) string {
	return m.Pipeline().Result().StateLabel()
}
