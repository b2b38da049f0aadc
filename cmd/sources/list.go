// Package sources implements the command-line interface for managing
// monitored sources. This file contains the implementation of the list
// command that displays all configured sources in a formatted table.
package sources

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/signal-crawler/cmd/common"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/constants"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/logger"
	internalsources "github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

// TableRenderer handles the display of source data in a table format
type TableRenderer struct {
	logger logger.Interface
}

// NewTableRenderer creates a new TableRenderer instance
func NewTableRenderer(log logger.Interface) *TableRenderer {
	return &TableRenderer{
		logger: log,
	}
}

// RenderTable formats and displays the sources in a table format
func (r *TableRenderer) RenderTable(configs []internalsources.Config) error {
	// Initialize table writer with stdout as output
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	// Add table headers
	t.AppendHeader(table.Row{"ID", "Name", "Kind", "Target", "Enabled", "Keywords"})

	// Process each source
	for i := range configs {
		cfg := &configs[i]
		t.AppendRow(table.Row{
			cfg.ID,
			cfg.Name,
			cfg.Kind,
			sourceTarget(cfg),
			cfg.IsEnabled(),
			keywordsCell(cfg),
		})
	}

	// Render the table
	t.Render()
	return nil
}

// sourceTarget returns what the source points at: the archive URL or the
// channel handle.
func sourceTarget(cfg *internalsources.Config) string {
	if cfg.Kind == constants.SourceKindChannel {
		return cfg.Channel
	}
	return cfg.URL
}

// keywordsCell describes the source's match criteria origin.
func keywordsCell(cfg *internalsources.Config) string {
	if len(cfg.Keywords) == 0 {
		return "global"
	}
	return fmt.Sprintf("%d custom", len(cfg.Keywords))
}

// Lister handles listing sources
type Lister struct {
	loader   *internalsources.Loader
	logger   logger.Interface
	renderer *TableRenderer
}

// NewLister creates a new Lister instance
func NewLister(
	loader *internalsources.Loader,
	log logger.Interface,
	renderer *TableRenderer,
) *Lister {
	return &Lister{
		loader:   loader,
		logger:   log,
		renderer: renderer,
	}
}

// Start begins the list operation
func (l *Lister) Start(_ context.Context) error {
	l.logger.Info("Listing sources")

	configs, err := l.loader.Load()
	if err != nil {
		if errors.Is(err, internalsources.ErrNoSources) {
			l.logger.Info("No sources configured")
			return nil
		}
		return fmt.Errorf("failed to load sources: %w", err)
	}

	// Render the table
	return l.renderer.RenderTable(configs)
}

// NewListCommand creates a new list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configured sources",
		Long:  `List all sources configured in the sources file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get dependencies
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}

			// Construct dependencies
			loader := internalsources.NewLoader(deps.Config.GetMonitorConfig().SourcesFile)
			renderer := NewTableRenderer(deps.Logger)
			lister := NewLister(loader, deps.Logger, renderer)

			// Execute the list command
			return lister.Start(cmd.Context())
		},
	}

	return cmd
}
