// Package sources provides the sources command implementation.
package sources

import (
	"github.com/spf13/cobra"
)

// NewSourcesCommand creates a new sources command.
func NewSourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage monitored sources",
		Long:  `Manage the sources the crawler monitors`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Add subcommands
	cmd.AddCommand(
		NewListCommand(),
		NewGenerateCommand(),
		NewValidateCommand(),
	)

	return cmd
}
