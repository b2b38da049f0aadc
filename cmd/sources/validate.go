// Package sources provides the sources command implementation.
package sources

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/signal-crawler/cmd/common"
	internalsources "github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

// NewValidateCommand creates a new validate subcommand for sources.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the sources file",
		Long: `Checks every entry in the sources file and reports the ones crawl runs
would skip, with the reason.

Example:
  signal-crawler sources validate

  # Validate a sources file before deploying it
  MONITOR_SOURCES_FILE=new-sources.yml signal-crawler sources validate`,
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	// Get dependencies
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to get dependencies: %w", err)
	}

	sourcesFile := deps.Config.GetMonitorConfig().SourcesFile
	loader := internalsources.NewLoader(sourcesFile)

	entries, err := loader.LoadEntries()
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	invalid := printValidationResults(os.Stdout, sourcesFile, entries)
	if invalid > 0 {
		return fmt.Errorf("%d invalid source(s) in %s", invalid, sourcesFile)
	}

	return nil
}

// printValidationResults prints per-entry results in a user-friendly format
// and returns the number of invalid entries.
func printValidationResults(w io.Writer, path string, entries []internalsources.Entry) int {
	fmt.Fprintf(w, "Validation results for %s:\n\n", path)

	valid := 0
	invalid := 0
	disabled := 0
	seenIDs := make(map[string]bool, len(entries))

	for i := range entries {
		entry := &entries[i]
		name := entry.Config.ID
		if name == "" {
			name = fmt.Sprintf("entry %d", entry.Index+1)
		}

		switch {
		case entry.Err != nil:
			invalid++
			fmt.Fprintf(w, "❌ %s: %v\n", name, entry.Err)
		case seenIDs[entry.Config.ID]:
			// Crawl runs reject duplicate IDs, so flag them here first.
			invalid++
			fmt.Fprintf(w, "❌ %s: duplicate source id\n", name)
		case !entry.Config.IsEnabled():
			disabled++
			fmt.Fprintf(w, "⚠️  %s: valid (disabled)\n", name)
		default:
			valid++
			fmt.Fprintf(w, "✅ %s: valid\n", name)
		}

		if entry.Err == nil {
			seenIDs[entry.Config.ID] = true
		}
	}

	fmt.Fprintf(w, "\n%d source(s): %d valid, %d disabled, %d invalid\n",
		len(entries), valid, disabled, invalid)

	return invalid
}
