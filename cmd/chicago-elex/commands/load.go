package commands

import (
	"context"
	"errors"
	"log/slog"

	"chicago-openelex/internal/loader"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	loadDir      *string
	loadContests *bool
)

func init() {
	loadDir = loadCmd.Flags().String("dir", "", "The directory of election json to load, overrides output_dir.")
	loadContests = loadCmd.Flags().Bool("contests", false, "Print every contest instead of one line per file.")
	rootCmd.AddCommand(loadCmd)
}

// runLoad loads `paths`, or every document in `dir` when none are given.
func runLoad(ctx context.Context, l loader.Loader, dir string, paths []string) ([]loader.Summary, error) {
	if len(paths) == 0 {
		return l.LoadDir(ctx, dir)
	}

	var summaries []loader.Summary
	var errs []error
	for _, path := range paths {
		summary, err := l.LoadFile(ctx, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, errors.Join(errs...)
}

func renderLoadSummaries(summaries []loader.Summary, contests bool) {
	t := newTable()
	if !contests {
		t.AppendHeader(table.Row{"File", "Election", "Batch", "Contests", "Loaded", "Results"})
		for _, s := range summaries {
			t.AppendRow(table.Row{s.File, s.ElectionID, s.BatchID, len(s.Contests), s.Loaded(), s.Results()})
		}
		t.Render()
		return
	}

	t.AppendHeader(table.Row{"Election", "Contest", "Kind", "Office", "District", "Candidates", "Results", "Not loaded"})
	for _, s := range summaries {
		for _, c := range s.Contests {
			t.AppendRow(table.Row{s.ElectionID, c.Label, c.Kind, c.Office, c.District, c.Candidates, c.Results, c.Reason})
		}
		t.AppendSeparator()
	}
	t.Render()
}

var loadCmd = &cobra.Command{
	Use:   "load [--dir <dir>] [files...]",
	Short: "Loads election json into the results store.",
	Run: func(cmd *cobra.Command, args []string) {
		g := getGlobals(cmd.Context())

		dir := g.Config.OutputDir
		if *loadDir != "" {
			dir = *loadDir
		}

		sqldb, _, l := openStore(cmd.Context(), g)
		defer sqldb.Close()

		summaries, err := runLoad(cmd.Context(), l, dir, args)
		renderLoadSummaries(summaries, *loadContests)
		if err != nil {
			fatal("some files failed to load", err)
		}
		slog.Info("loaded elections", "count", len(summaries))
	},
}
