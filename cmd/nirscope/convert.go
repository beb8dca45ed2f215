package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
)

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var lf loadFlags
	lf.register(fs)
	out := fs.String("o", "", "output CSV path (default: stdout)")
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

	dst := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close()
		dst = f
	}

	rec := m.Record()
	data := m.Pipeline().Result().ActiveData()
	rows, cols := data.Dims()

	w := csv.NewWriter(dst)
	header := make([]string, 0, cols+1)
	header = append(header, "time_s")
	for j := 0; j < cols; j++ {
		name := fmt.Sprintf("ch%d", j+1)
		if j < len(rec.Channels) {
			name = rec.Channels[j].Name()
		}
		header = append(header, name)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		t := 0.0
		if i < len(rec.Time) {
			t = rec.Time[i]
		}
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j := 0; j < cols; j++ {
			row[j+1] = strconv.FormatFloat(data.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if *out != "" {
		fmt.Fprintf(os.Stderr, "wrote %s (%s, %d rows x %d channels)\n",
			*out, viewLabel(m), rows, cols)
	}
	return nil
}
