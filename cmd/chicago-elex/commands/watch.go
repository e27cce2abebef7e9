package commands

import (
	"log/slog"
	"os"

	"chicago-openelex/internal/components/chrono"
	"chicago-openelex/internal/scrapers/chicago"

	"github.com/spf13/cobra"
)

var watchSchedule *string

func init() {
	watchSchedule = watchCmd.Flags().String("schedule", "", "The cron schedule to run on, overrides watch.schedule.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--schedule <cron spec>]",
	Short: "Scrapes new elections and loads them on a schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		g := getGlobals(cmd.Context())
		ctx := cmd.Context()

		schedule := g.Config.Watch.Schedule
		if *watchSchedule != "" {
			schedule = *watchSchedule
		}

		err := os.MkdirAll(g.Config.OutputDir, 0755)
		if err != nil {
			fatal("failed to create output dir", err)
		}

		sqldb, _, l := openStore(ctx, g)
		defer sqldb.Close()

		run := func() {
			results := runScrape(ctx, g, scrapeOptions{
				walk:      chicago.WalkOptions{},
				outputDir: g.Config.OutputDir,
			})
			written := 0
			for _, r := range results {
				if r.err != nil {
					slog.Warn("failed to scrape election", "election", r.election, "err", r.err)
				}
				if r.written {
					written++
				}
			}
			if written == 0 {
				slog.Info("no new elections")
				return
			}

			summaries, err := runLoad(ctx, l, g.Config.OutputDir, nil)
			if err != nil {
				slog.Warn("some files failed to load", "err", err)
			}
			slog.Info("loaded elections", "written", written, "loaded", len(summaries))
		}

		cron := chrono.NewStandardCron(g.Clock, g.Tel)
		err = cron.Cron(schedule, run)
		if err != nil {
			fatal("invalid schedule", err)
		}
		slog.Info("watching for new elections", "schedule", schedule)

		<-ctx.Done()
		slog.Info("waiting for the running scrape to finish")
		<-cron.Stop().Done()
	},
}
