// Package checkpoint implements the command-line interface for managing the
// per-source crawl progress kept under the state directory. It provides
// commands for showing and resetting watermark checkpoints and seen-item
// history.
package checkpoint

import (
	"github.com/spf13/cobra"
)

var (
	forceReset bool
)

// Command returns the checkpoint command for use in the root command
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage per-source crawl progress",
		Long:  `Inspect and reset the crawl progress state kept under the state directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(createShowCmd(), createResetCmd())
	return cmd
}

// createShowCmd creates the show command
func createShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [source-id]",
		Short: "Show crawl progress for configured sources",
		Long: `Show each source's saved crawl progress: the watermark position for channel
sources and the seen-item count for archive sources. Naming a source narrows
the output to that source and lists its most recently recorded items.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShowCmd,
	}
}

// createResetCmd creates the reset command
func createResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset [source-id]",
		Short: "Reset a source's crawl progress",
		Long: `Discard the saved crawl progress for a source. The next run starts from the
zero baseline and re-processes everything the source still lists, which may
append duplicate match records.`,
		Args: cobra.ExactArgs(1),
		RunE: runResetCmd,
	}
	cmd.Flags().BoolVarP(&forceReset, "force", "f", false, "Force reset without confirmation")
	return cmd
}
