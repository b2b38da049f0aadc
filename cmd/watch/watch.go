// Package watch implements the watch command: crawl passes on a cron
// schedule until interrupted.
package watch

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/north-cloud/signal-crawler/cmd/common"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/constants"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

// Command returns the watch command for use in the root command.
func Command() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run crawl passes on a schedule",
		Long: `Start the watcher to run incremental crawl passes on the configured cron
schedule. The first pass runs immediately; the watcher then runs continuously
until interrupted with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Get dependencies
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			if schedule == "" {
				schedule = deps.Config.GetMonitorConfig().WatchSchedule
			}

			set, err := cmdcommon.BuildRunners(deps, cmdcommon.BuildOptions{})
			if err != nil {
				if errors.Is(err, sources.ErrNoSources) {
					deps.Logger.Info("No sources found in configuration. Please add sources to your sources file.")
					deps.Logger.Info("You can use the 'sources list' command to view configured sources.")
					return nil
				}
				return fmt.Errorf("failed to build runners: %w", err)
			}
			defer set.Close()

			done := make(chan struct{})
			service := NewService(deps.Logger, set, schedule, done)

			// Start the watch service
			deps.Logger.Info("Starting watch service")
			if startErr := service.Start(cmd.Context()); startErr != nil {
				deps.Logger.Error("Failed to start watch service", "error", startErr)
				return fmt.Errorf("failed to start watch service: %w", startErr)
			}

			// Wait for interrupt signal or service completion
			deps.Logger.Info("Waiting for interrupt signal")
			select {
			case <-done:
				deps.Logger.Info("Watch service completed")
			case <-cmd.Context().Done():
				// Interrupt signal received - graceful shutdown
				deps.Logger.Info("Shutdown signal received")
			}

			// Graceful shutdown with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
			defer cancel()

			// Stop the watch service
			if stopErr := service.Stop(shutdownCtx); stopErr != nil {
				deps.Logger.Error("Failed to stop watch service", "error", stopErr)
				return fmt.Errorf("failed to stop watch service: %w", stopErr)
			}

			deps.Logger.Info("Watch service stopped successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "",
		"Cron schedule override (default is the watch_schedule setting from configuration)")

	return cmd
}
