package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/cortex-data/nirscope/internal/session"
	"github.com/cortex-data/nirscope/internal/snirf"
)

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dbPath := fs.String("db", defaultHistoryPath(), "history database path")
	setLoader := fs.String("set-loader", "", "store the preferred loader variant (schema or walk)")
	limit := fs.Int("n", 10, "number of entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return fmt.Errorf("no history database path configured")
	}

	h, err := session.OpenHistory(*dbPath)
	if err != nil {
		return err
	}
	defer h.Close()

	if *setLoader != "" {
		if *setLoader != snirf.VariantSchema && *setLoader != snirf.VariantWalk {
			return fmt.Errorf("unknown loader variant %q (want %q or %q)", *setLoader, snirf.VariantSchema, snirf.VariantWalk)
		}
		if err := h.SetPreferredLoader(*setLoader); err != nil {
			return err
		}
		fmt.Printf("preferred loader set to %s\n", *setLoader)
		return nil
	}

	pref, err := h.PreferredLoader(snirf.VariantSchema)
	if err != nil {
		return err
	}
	fmt.Printf("preferred loader: %s\n\n", pref)

	entries, err := h.Recent(*limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no recent files")
		return nil
	}

	color.New(color.Bold).Println("Recent files")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Loaded", "Path", "Loader", "Channels", "Duration", "Rate"})
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.LoadedAt.Format("2006-01-02 15:04"),
			e.Path,
			e.Loader,
			strconv.Itoa(e.Channels),
			fmt.Sprintf("%.1f s", e.DurationSeconds),
			fmt.Sprintf("%.1f Hz", e.SamplingRate),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
