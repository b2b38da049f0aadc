// Package crawl implements the crawl command: a single incremental pass over
// the configured sources.
package crawl

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/north-cloud/signal-crawler/cmd/common"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/pipeline"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

// Command returns the crawl command for use in the root command.
func Command() *cobra.Command {
	var fetchLimit int

	cmd := &cobra.Command{
		Use:   "crawl [source-id]",
		Short: "Run one crawl pass over the configured sources",
		Long: `This command runs a single incremental crawl pass: each source lists its
newest items, items not seen before are fetched and matched against the
configured keywords and URL patterns, and match records are appended to the
output file.

Specify a source ID as an argument to crawl only that source; without an
argument every enabled source is crawled. The --fetch-limit flag can be used
to override the fetch_limit setting from the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get dependencies
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			var sourceID string
			if len(args) > 0 {
				sourceID = args[0]
			}

			set, err := cmdcommon.BuildRunners(deps, cmdcommon.BuildOptions{
				SourceID:   sourceID,
				FetchLimit: fetchLimit,
			})
			if err != nil {
				if errors.Is(err, sources.ErrNoSources) {
					deps.Logger.Info("No sources found in configuration. Please add sources to your sources file.")
					deps.Logger.Info("You can use the 'sources list' command to view configured sources.")
					return nil
				}
				return fmt.Errorf("failed to build runners: %w", err)
			}
			defer set.Close()

			summaries := set.RunAll(cmd.Context())
			renderSummaries(summaries)

			return firstFailure(summaries)
		},
	}

	// Add --fetch-limit flag
	cmd.Flags().IntVar(&fetchLimit, "fetch-limit", 0,
		"Override the fetch_limit setting from configuration (0 means use configured value)")

	return cmd
}

// renderSummaries prints one table row per crawl summary.
func renderSummaries(summaries []pipeline.Summary) {
	// Initialize table writer with stdout as output
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	// Add table headers
	t.AppendHeader(table.Row{
		"Source", "Phase", "Listed", "New", "Fetched", "Failed", "Limited", "Matched", "Written", "Duration",
	})

	for i := range summaries {
		s := &summaries[i]
		t.AppendRow(table.Row{
			s.Source,
			string(s.Phase),
			s.CandidatesListed,
			s.NewItems,
			s.Fetched,
			s.FetchFailures,
			s.RateLimited,
			s.Matched,
			s.RecordsWritten,
			s.Duration.Round(time.Millisecond),
		})
	}

	// Render the table
	t.Render()
}

// firstFailure returns the first fatal summary's error, so a partially failed
// pass exits non-zero while the table still shows every source.
func firstFailure(summaries []pipeline.Summary) error {
	for i := range summaries {
		if summaries[i].Failed() {
			return fmt.Errorf("crawl failed for source %s: %w", summaries[i].Source, summaries[i].Err)
		}
	}
	return nil
}
