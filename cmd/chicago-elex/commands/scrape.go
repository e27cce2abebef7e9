package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"chicago-openelex/internal/elections"
	"chicago-openelex/internal/scrapers/chicago"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeElections *[]string
	scrapeContests  *[]string
	scrapeOut       *string
)

func init() {
	scrapeElections = scrapeCmd.Flags().StringSlice("election", nil, "Only scrape elections whose name contains one of these (case-insensitive).")
	scrapeContests = scrapeCmd.Flags().StringSlice("contest", nil, "Only scrape contests whose label contains one of these, the result is printed instead of written.")
	scrapeOut = scrapeCmd.Flags().String("out", "", "The directory to write election json to, overrides output_dir.")
	rootCmd.AddCommand(scrapeCmd)
}

type scrapeOptions struct {
	walk      chicago.WalkOptions
	outputDir string
}

type scrapeResult struct {
	election string
	path     string
	written  bool
	contests int
	skipped  int
	err      error
}

// runScrape scrapes every election that does not have a document in the
// output directory yet. A document is only written when the whole election
// was walked, a contest filter prints the document instead.
func runScrape(ctx context.Context, g *Globals, opts scrapeOptions) []scrapeResult {
	client, closeCache := openClient(ctx, g)
	defer closeCache()

	partial := len(opts.walk.Contests) > 0

	scraper := chicago.NewScraper(client, g.Config.BaseUrl, opts.walk, g.Tel)
	scraper.Skip = func(meta elections.Metadata) bool {
		return !partial && elections.DocumentExists(opts.outputDir, meta)
	}

	var results []scrapeResult
	for scraped, err := range scraper.Elections(ctx) {
		if err != nil {
			results = append(results, scrapeResult{err: err})
			continue
		}

		result := scrapeResult{
			election: scraped.Document.ElectionName,
			contests: len(scraped.Document.Contests),
			skipped:  len(scraped.Skipped),
		}

		if partial {
			out, err := json.MarshalIndent(scraped.Document, "", "    ")
			if err != nil {
				result.err = err
			} else {
				fmt.Println(string(out))
			}
			results = append(results, result)
			continue
		}

		result.path, result.written, result.err = elections.WriteDocument(opts.outputDir, scraped.Meta, scraped.Document)
		if result.err == nil && !result.written {
			slog.Info("election already written, leaving it as is", "path", result.path)
		}
		results = append(results, result)
	}
	return results
}

func renderScrapeResults(results []scrapeResult) {
	t := newTable()
	t.AppendHeader(table.Row{"Election", "File", "Contests", "Skipped", "Error"})
	for _, r := range results {
		errText := ""
		if r.err != nil {
			errText = r.err.Error()
		}
		file := r.path
		if file != "" && !r.written {
			file += " (exists)"
		}
		t.AppendRow(table.Row{r.election, file, r.contests, r.skipped, errText})
	}
	t.Render()
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--election <name>] [--contest <label>] [--out <dir>]",
	Short: "Walks the results site and writes one json document per election.",
	Run: func(cmd *cobra.Command, args []string) {
		g := getGlobals(cmd.Context())

		outputDir := g.Config.OutputDir
		if *scrapeOut != "" {
			outputDir = *scrapeOut
		}
		err := os.MkdirAll(outputDir, 0755)
		if err != nil {
			fatal("failed to create output dir", err)
		}

		t1 := time.Now()
		results := runScrape(cmd.Context(), g, scrapeOptions{
			walk: chicago.WalkOptions{
				Elections: *scrapeElections,
				Contests:  *scrapeContests,
			},
			outputDir: outputDir,
		})
		t2 := time.Now()

		renderScrapeResults(results)
		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())
	},
}
