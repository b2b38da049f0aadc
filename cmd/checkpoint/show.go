// Package checkpoint implements the command-line interface for managing the
// per-source crawl progress. This file contains the implementation of the show
// command that displays each source's saved progress in a formatted table.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/north-cloud/signal-crawler/cmd/common"
	internalcheckpoint "github.com/jonesrussell/north-cloud/signal-crawler/internal/checkpoint"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/constants"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/logger"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/seenstore"
	internalsources "github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

const (
	// timeFormat is the display format for seen-at timestamps
	timeFormat = "2006-01-02 15:04:05"

	// recentItemLimit is how many recent items the detail view lists
	recentItemLimit = 10
)

// ProgressRow is one rendered line of per-source progress.
type ProgressRow struct {
	SourceID string
	Tracking string
	Position string
	Items    string
	LastSeen string
}

// TableRenderer handles the display of progress data in a table format
type TableRenderer struct {
	logger logger.Interface
}

// NewTableRenderer creates a new TableRenderer instance
func NewTableRenderer(log logger.Interface) *TableRenderer {
	return &TableRenderer{
		logger: log,
	}
}

// RenderTable formats and displays per-source progress in a table format
func (r *TableRenderer) RenderTable(rows []ProgressRow) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Source", "Tracking", "Position", "Items", "Last Seen"})

	for _, row := range rows {
		t.AppendRow(table.Row{
			row.SourceID,
			row.Tracking,
			row.Position,
			row.Items,
			row.LastSeen,
		})
	}

	t.Render()
	return nil
}

// RenderRecentItems displays the most recently recorded items for one source.
func (r *TableRenderer) RenderRecentItems(sourceID string, items []domain.SeenItem) error {
	if len(items) == 0 {
		r.logger.Info("No recorded items for source", "source", sourceID)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Recent items for %s", sourceID)

	t.AppendHeader(table.Row{"Item", "Seen At"})

	for _, item := range items {
		t.AppendRow(table.Row{
			item.ItemID,
			item.SeenAt.Format(timeFormat),
		})
	}

	t.Render()
	return nil
}

// Inspector gathers saved crawl progress for configured sources.
type Inspector struct {
	logger   logger.Interface
	stateDir string
	renderer *TableRenderer
}

// NewInspector creates a new Inspector instance
func NewInspector(log logger.Interface, stateDir string, renderer *TableRenderer) *Inspector {
	return &Inspector{
		logger:   log,
		stateDir: stateDir,
		renderer: renderer,
	}
}

// Start gathers and renders progress for the given sources. When showRecent
// is set, archive sources additionally list their most recent items.
func (i *Inspector) Start(ctx context.Context, configs []internalsources.Config, showRecent bool) error {
	var db *sqlx.DB
	defer func() {
		if db == nil {
			return
		}
		if closeErr := db.Close(); closeErr != nil {
			i.logger.Error("Failed to close seen database", "error", closeErr)
		}
	}()

	rows := make([]ProgressRow, 0, len(configs))
	for _, cfg := range configs {
		switch cfg.Kind {
		case constants.SourceKindChannel:
			rows = append(rows, i.watermarkRow(cfg))
		case constants.SourceKindArchive:
			if db == nil {
				conn, err := i.openSeenDB()
				if err != nil {
					return err
				}
				db = conn
			}

			row, err := i.seenRow(ctx, seenstore.NewRepository(db), cfg)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
	}

	if err := i.renderer.RenderTable(rows); err != nil {
		return err
	}

	if !showRecent {
		return nil
	}

	for _, cfg := range configs {
		if cfg.Kind != constants.SourceKindArchive {
			continue
		}

		items, err := seenstore.NewRepository(db).ListRecent(ctx, cfg.ID, recentItemLimit)
		if err != nil {
			i.logger.Error("Failed to list seen items", "source", cfg.ID, "error", err)
			return fmt.Errorf("failed to list seen items for source %s: %w", cfg.ID, err)
		}
		if renderErr := i.renderer.RenderRecentItems(cfg.ID, items); renderErr != nil {
			return renderErr
		}
	}

	return nil
}

// openSeenDB opens the shared seen-item database under the state directory.
func (i *Inspector) openSeenDB() (*sqlx.DB, error) {
	db, err := seenstore.NewConnection(filepath.Join(i.stateDir, constants.SeenDBFileName))
	if err != nil {
		i.logger.Error("Failed to open seen database", "error", err)
		return nil, fmt.Errorf("failed to open seen database: %w", err)
	}
	return db, nil
}

// watermarkRow reads the source's checkpoint file. A missing file reads as
// the zero baseline.
func (i *Inspector) watermarkRow(cfg internalsources.Config) ProgressRow {
	store := internalcheckpoint.NewStore(
		filepath.Join(i.stateDir, cfg.ID+constants.CheckpointFileSuffix),
		i.logger,
	)

	return ProgressRow{
		SourceID: cfg.ID,
		Tracking: "watermark",
		Position: strconv.FormatInt(store.Load(), 10),
		Items:    "-",
		LastSeen: "-",
	}
}

// seenRow summarizes the source's rows in the seen-item store.
func (i *Inspector) seenRow(
	ctx context.Context,
	repo *seenstore.Repository,
	cfg internalsources.Config,
) (ProgressRow, error) {
	count, err := repo.CountBySource(ctx, cfg.ID)
	if err != nil {
		i.logger.Error("Failed to count seen items", "source", cfg.ID, "error", err)
		return ProgressRow{}, fmt.Errorf("failed to count seen items for source %s: %w", cfg.ID, err)
	}

	lastSeen := "-"
	recent, err := repo.ListRecent(ctx, cfg.ID, 1)
	if err != nil {
		i.logger.Error("Failed to list seen items", "source", cfg.ID, "error", err)
		return ProgressRow{}, fmt.Errorf("failed to list seen items for source %s: %w", cfg.ID, err)
	}
	if len(recent) > 0 {
		lastSeen = recent[0].SeenAt.Format(timeFormat)
	}

	return ProgressRow{
		SourceID: cfg.ID,
		Tracking: "seen-set",
		Position: "-",
		Items:    strconv.Itoa(count),
		LastSeen: lastSeen,
	}, nil
}

// runShowCmd executes the show command
func runShowCmd(cmd *cobra.Command, args []string) error {
	deps, err := cmdcommon.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	monitorCfg := deps.Config.GetMonitorConfig()

	loader := internalsources.NewLoader(monitorCfg.SourcesFile)
	configs, err := loader.Load()
	if err != nil {
		if errors.Is(err, internalsources.ErrNoSources) {
			deps.Logger.Info("No sources configured", "file", monitorCfg.SourcesFile)
			return nil
		}
		return fmt.Errorf("failed to load sources: %w", err)
	}

	showRecent := false
	if len(args) == 1 {
		configs, err = filterSource(configs, args[0])
		if err != nil {
			return err
		}
		showRecent = true
	}

	renderer := NewTableRenderer(deps.Logger)
	inspector := NewInspector(deps.Logger, monitorCfg.StateDir, renderer)

	return inspector.Start(cmd.Context(), configs, showRecent)
}

// filterSource narrows the loaded configurations to one source by ID.
func filterSource(configs []internalsources.Config, sourceID string) ([]internalsources.Config, error) {
	for _, cfg := range configs {
		if cfg.ID == sourceID {
			return []internalsources.Config{cfg}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", internalsources.ErrUnknownSource, sourceID)
}
