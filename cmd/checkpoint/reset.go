// Package checkpoint implements the command-line interface for managing the
// per-source crawl progress. This file contains the implementation of the
// reset command that discards a source's saved progress so the next run
// starts from the zero baseline.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/north-cloud/signal-crawler/cmd/common"
	internalcheckpoint "github.com/jonesrussell/north-cloud/signal-crawler/internal/checkpoint"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/constants"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/logger"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/seenstore"
	internalsources "github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

var (
	// ErrResetCancelled is returned when the user cancels the reset
	ErrResetCancelled = errors.New("reset cancelled by user")
)

// Resetter implements the checkpoint reset command
type Resetter struct {
	logger   logger.Interface
	stateDir string
	source   internalsources.Config
	force    bool
}

// NewResetter creates a new resetter instance
func NewResetter(
	log logger.Interface,
	stateDir string,
	source internalsources.Config,
	force bool,
) *Resetter {
	return &Resetter{
		logger:   log,
		stateDir: stateDir,
		source:   source,
		force:    force,
	}
}

// Start executes the reset operation. Both tracking flavors are cleared so a
// source whose kind changed in configuration leaves no stale progress behind.
func (r *Resetter) Start(ctx context.Context) error {
	if err := r.confirmReset(); err != nil {
		return err
	}

	if err := r.resetWatermark(); err != nil {
		return err
	}

	return r.resetSeenItems(ctx)
}

// confirmReset asks for user confirmation before discarding progress
func (r *Resetter) confirmReset() error {
	if _, err := fmt.Fprintf(os.Stdout,
		"Crawl progress for source %s will be reset.\n", r.source.ID); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := os.Stdout.WriteString(
		"The next run re-processes everything the source still lists and may " +
			"append duplicate match records.\n"); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	// If force flag is set or stdin is not a terminal, skip confirmation
	if r.force || !isatty.IsTerminal(os.Stdin.Fd()) {
		return nil
	}

	if _, err := os.Stdout.WriteString("Are you sure you want to continue? (y/N): "); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		// If we get an EOF or empty input, treat it as 'N'
		if errors.Is(err, io.EOF) || response == "" {
			return ErrResetCancelled
		}
		return fmt.Errorf("failed to read user input: %w", err)
	}

	if !strings.EqualFold(response, "y") {
		return ErrResetCancelled
	}

	return nil
}

// resetWatermark removes the source's checkpoint file.
func (r *Resetter) resetWatermark() error {
	store := internalcheckpoint.NewStore(
		filepath.Join(r.stateDir, r.source.ID+constants.CheckpointFileSuffix),
		r.logger,
	)

	if err := store.Reset(); err != nil {
		r.logger.Error("Failed to reset checkpoint",
			"source", r.source.ID,
			"path", store.Path(),
			"error", err,
		)
		return fmt.Errorf("failed to reset checkpoint for source %s: %w", r.source.ID, err)
	}

	r.logger.Info("Checkpoint reset", "source", r.source.ID, "path", store.Path())
	return nil
}

// resetSeenItems deletes the source's rows from the seen-item store.
func (r *Resetter) resetSeenItems(ctx context.Context) error {
	db, err := seenstore.NewConnection(filepath.Join(r.stateDir, constants.SeenDBFileName))
	if err != nil {
		return fmt.Errorf("failed to open seen database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			r.logger.Error("Failed to close seen database", "error", closeErr)
		}
	}()

	removed, err := seenstore.NewRepository(db).DeleteBySource(ctx, r.source.ID)
	if err != nil {
		r.logger.Error("Failed to reset seen items", "source", r.source.ID, "error", err)
		return fmt.Errorf("failed to reset seen items for source %s: %w", r.source.ID, err)
	}

	r.logger.Info("Seen items reset", "source", r.source.ID, "removed", removed)
	return nil
}

// runResetCmd executes the reset command
func runResetCmd(cmd *cobra.Command, args []string) error {
	deps, err := cmdcommon.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	monitorCfg := deps.Config.GetMonitorConfig()

	loader := internalsources.NewLoader(monitorCfg.SourcesFile)
	configs, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	matched, err := filterSource(configs, args[0])
	if err != nil {
		return err
	}

	resetter := NewResetter(deps.Logger, monitorCfg.StateDir, matched[0], forceReset)
	return resetter.Start(cmd.Context())
}
