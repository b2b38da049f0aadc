// Package cmd implements the command-line interface for the signal crawler.
// It provides the root command and subcommands for running crawl passes and
// managing monitoring state.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/signal-crawler/cmd/checkpoint"
	"github.com/jonesrussell/north-cloud/signal-crawler/cmd/crawl"
	cmdsources "github.com/jonesrussell/north-cloud/signal-crawler/cmd/sources"
	"github.com/jonesrussell/north-cloud/signal-crawler/cmd/watch"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config"
)

// version is the release version reported by the version command.
const version = "1.0.0"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands
	Debug bool

	// rootCmd represents the root command for the signal-crawler CLI.
	rootCmd = &cobra.Command{
		Use:   "signal-crawler",
		Short: "An incremental keyword monitor for external content sources",
		Long: `An incremental keyword monitor for external content sources.
Each crawl pass lists the newest items per source, fetches the ones not seen
before, matches them against the configured keywords and URL patterns, and
appends match records to a JSONL output file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Parse flags early to get config path and debug flag before Viper loads
	_ = rootCmd.ParseFlags(os.Args[1:])

	// Bind flags before configuration loads so --debug reaches the logger setup
	if err := bindCommandLineFlags(); err != nil {
		return err
	}

	// Initialize configuration
	if err := config.InitializeViper(cfgFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	// Synchronize global Debug variable with Viper's value
	Debug = Debug || viper.GetBool("app.debug")

	// Cancel the command context on interrupt so runs shut down cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// init initializes the root command and its subcommands.
func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("signal-crawler version %s\n", version)
		},
	})

	// Add subcommands
	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(watch.Command())
	rootCmd.AddCommand(cmdsources.NewSourcesCommand())
	rootCmd.AddCommand(checkpoint.Command())
}

// bindCommandLineFlags binds command-line flags to Viper.
func bindCommandLineFlags() error {
	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("failed to bind config flag: %w", err)
	}
	return nil
}
