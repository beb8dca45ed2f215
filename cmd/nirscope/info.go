package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/cortex-data/nirscope/internal/snirf"
)

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var lf loadFlags
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleArg(fs)
	if err != nil {
		return err
	}

	m, cleanup, err := openSession(lf, path)
	if err != nil {
		return err
	}
	defer cleanup()

	rec := m.Record()
	printSummary(rec, m.LoaderName())
	printChannelTable(rec)
	printStimulusTable(rec)
	printMetadata(rec)
	return nil
}

func printSummary(rec *snirf.Record, loader string) {
	heading := color.New(color.FgCyan, color.Bold)
	heading.Println(rec.SourcePath)

	fmt.Printf("  loader:        %s\n", loader)
	fmt.Printf("  channels:      %d\n", rec.ChannelCount())
	fmt.Printf("  timepoints:    %d\n", rec.TimepointCount())
	fmt.Printf("  duration:      %.2f s\n", rec.DurationSeconds())
	fmt.Printf("  sampling rate: %.2f Hz\n", rec.SamplingRate())
	fmt.Printf("  sources:       %d\n", rec.Probe.SourceCount())
	fmt.Printf("  detectors:     %d\n", rec.Probe.DetectorCount())
	fmt.Printf("  wavelengths:   %v nm\n", rec.Probe.Wavelengths)
	fmt.Println()
}

func printChannelTable(rec *snirf.Record) {
	if len(rec.Channels) == 0 {
		return
	}
	color.New(color.Bold).Println("Channels")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"#", "Name", "Source", "Detector", "Wavelength", "Data Type"})
	rows := make([][]string, 0, len(rec.Channels))
	for i, ch := range rec.Channels {
		wl := strconv.Itoa(ch.WavelengthIndex)
		if ch.WavelengthIndex >= 1 && ch.WavelengthIndex <= len(rec.Probe.Wavelengths) {
			wl = fmt.Sprintf("%g nm", rec.Probe.Wavelengths[ch.WavelengthIndex-1])
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			ch.Name(),
			strconv.Itoa(ch.SourceIndex),
			strconv.Itoa(ch.DetectorIndex),
			wl,
			strconv.Itoa(ch.DataType),
		})
	}
	if err := table.Bulk(rows); err != nil {
		fmt.Fprintf(os.Stderr, "channel table: %v\n", err)
		return
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(os.Stderr, "channel table: %v\n", err)
	}
	fmt.Println()
}

func printStimulusTable(rec *snirf.Record) {
	if len(rec.Stimuli) == 0 {
		return
	}
	color.New(color.Bold).Println("Stimuli")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Condition", "Events", "First Onset", "Mean Duration"})
	rows := make([][]string, 0, len(rec.Stimuli))
	for _, s := range rec.Stimuli {
		first := "-"
		if len(s.Onset) > 0 {
			first = fmt.Sprintf("%.2f s", s.Onset[0])
		}
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(len(s.Onset)),
			first,
			fmt.Sprintf("%.2f s", mean(s.Duration)),
		})
	}
	if err := table.Bulk(rows); err != nil {
		fmt.Fprintf(os.Stderr, "stimulus table: %v\n", err)
		return
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(os.Stderr, "stimulus table: %v\n", err)
	}
	fmt.Println()
}

func printMetadata(rec *snirf.Record) {
	if len(rec.Metadata) == 0 {
		return
	}
	color.New(color.Bold).Println("Metadata")

	keys := make([]string, 0, len(rec.Metadata))
	for k := range rec.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-24s %v\n", k, rec.Metadata[k])
	}
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
