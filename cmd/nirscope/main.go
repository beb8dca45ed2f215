// Command nirscope inspects and processes SNIRF recordings from the
// command line: summary tables, CSV export, static and interactive channel
// plots, and a recent-file history.
package main

import (
	"fmt"
	"os"

	"github.com/cortex-data/nirscope/internal/dsp"
	"github.com/cortex-data/nirscope/internal/pipeline"
	"github.com/cortex-data/nirscope/internal/session"
	"github.com/cortex-data/nirscope/internal/snirf"
	"github.com/cortex-data/nirscope/internal/version"
)

const usageText = `Usage: nirscope <command> [flags] <file.snirf>

Commands:
  info      Print a summary of the recording (probe, channels, stimuli, metadata)
  convert   Export the selected processing view as CSV
  plot      Render selected channels of the view to a PNG
  report    Render an interactive HTML channel report
  history   Show or manage the recent-file history
  version   Print build identification

Run 'nirscope <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "convert":
		err = runConvert(os.Args[2:])
	case "plot":
		err = runPlot(os.Args[2:])
	case "report":
		err = runReport(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	case "version", "-version", "--version":
		fmt.Println(version.String())
	case "-h", "--help", "help":
		fmt.Print(usageText)
	default:
		fmt.Fprintf(os.Stderr, "nirscope: unknown command %q\n\n%s", os.Args[1], usageText)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "nirscope: %v\n", err)
		os.Exit(1)
	}
}

// enableVerbose routes every package's diagnostic streams to stderr.
func enableVerbose() {
	snirf.SetLogWriters(os.Stderr, os.Stderr)
	dsp.SetLogWriters(os.Stderr)
	pipeline.SetLogWriters(os.Stderr)
	session.SetLogWriters(os.Stderr)
}

func quietLogs() {
	// Ops warnings always reach the user; diag and trace stay off.
	snirf.SetLogWriters(os.Stderr, nil)
	session.SetLogWriters(os.Stderr)
}
