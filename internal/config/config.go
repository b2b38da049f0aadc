// Package config provides configuration management for the signal-crawler
// application. It handles loading, validation, and access to configuration
// values from YAML files and environment variables using Viper.
package config

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config/app"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config/logging"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config/monitor"
)

// Interface defines the interface for configuration management.
type Interface interface {
	// GetAppConfig returns the application configuration.
	GetAppConfig() *app.Config
	// GetLogConfig returns the logging configuration.
	GetLogConfig() *logging.Config
	// GetMonitorConfig returns the monitor configuration.
	GetMonitorConfig() *monitor.Config
	// Validate validates the configuration.
	Validate() error
}

// Ensure Config implements Interface
var _ Interface = (*Config)(nil)

// Config represents the application configuration.
type Config struct {
	// App holds application-level configuration
	App *app.Config `yaml:"app"`
	// Logger holds logging configuration
	Logger *logging.Config `yaml:"logger"`
	// Monitor holds monitor-specific configuration
	Monitor *monitor.Config `yaml:"monitor"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.GetAppConfig().Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.GetLogConfig().Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if err := c.GetMonitorConfig().Validate(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}

// GetAppConfig returns the application configuration.
func (c *Config) GetAppConfig() *app.Config {
	if c.App == nil {
		// Return default config if not initialized
		return app.NewConfig()
	}
	return c.App
}

// GetLogConfig returns the logging configuration.
func (c *Config) GetLogConfig() *logging.Config {
	if c.Logger == nil {
		// Return default config if not initialized
		return logging.New()
	}
	return c.Logger
}

// GetMonitorConfig returns the monitor configuration.
func (c *Config) GetMonitorConfig() *monitor.Config {
	if c.Monitor == nil {
		// Return default config if not initialized
		return monitor.New()
	}
	return c.Monitor
}
