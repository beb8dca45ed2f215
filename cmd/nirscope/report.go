package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	var lf loadFlags
	lf.register(fs)
	out := fs.String("o", "report.html", "output HTML path")
	channels := fs.String("channels", "", "comma-separated 1-based channel numbers (default: all)")
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

	if err := applyStage(m, lf); err != nil {
		return err
	}

	rec := m.Record()
	data := m.Pipeline().Result().ActiveData()
	rows, cols := data.Dims()

	selected, err := parseChannelList(*channels, cols)
	if err != nil {
		return err
	}

	xAxis := make([]string, rows)
	for i := 0; i < rows; i++ {
		t := float64(i)
		if i < len(rec.Time) {
			t = rec.Time[i]
		}
		xAxis[i] = fmt.Sprintf("%.2f", t)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: filepath.Base(rec.SourcePath),
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    viewLabel(m),
			Subtitle: fmt.Sprintf("%s - %d channels, %.1f s @ %.2f Hz", rec.SourcePath, rec.ChannelCount(), rec.DurationSeconds(), rec.SamplingRate()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: viewLabel(m)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	line.SetXAxis(xAxis)
	for _, j := range selected {
		series := make([]opts.LineData, rows)
		for i := 0; i < rows; i++ {
			series[i] = opts.LineData{Value: data.At(i, j)}
		}
		label := fmt.Sprintf("ch%d", j+1)
		if j < len(rec.Channels) {
			label = rec.Channels[j].Name()
		}
		line.AddSeries(label, series)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d channels, %s)\n", *out, len(selected), viewLabel(m))
	return nil
}
