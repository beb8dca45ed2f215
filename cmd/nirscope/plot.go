package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// palette cycles per channel trace.
var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

func runPlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	var lf loadFlags
	lf.register(fs)
	out := fs.String("o", "channels.png", "output PNG path")
	channels := fs.String("channels", "", "comma-separated 1-based channel numbers (default: all)")
	width := fs.Float64("width", 10, "plot width in inches")
	height := fs.Float64("height", 6, "plot height in inches")
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

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %s", rec.SourcePath, viewLabel(m))
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = viewLabel(m)

	for n, j := range selected {
		pts := make(plotter.XYs, 0, rows)
		for i := 0; i < rows; i++ {
			t := float64(i)
			if i < len(rec.Time) {
				t = rec.Time[i]
			}
			pts = append(pts, plotter.XY{X: t, Y: data.At(i, j)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("channel %d line: %w", j+1, err)
		}
		line.Width = vg.Points(1)
		line.Color = palette[n%len(palette)]
		p.Add(line)

		label := fmt.Sprintf("ch%d", j+1)
		if j < len(rec.Channels) {
			label = rec.Channels[j].Name()
		}
		p.Legend.Add(label, line)
	}
	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(vg.Length(*width)*vg.Inch, vg.Length(*height)*vg.Inch, *out); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d channels, %s)\n", *out, len(selected), viewLabel(m))
	return nil
}
