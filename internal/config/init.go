package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config/monitor"
	"github.com/spf13/viper"
)

// InitializeViper initializes Viper configuration from environment variables and
// config files. This must be called before LoadConfig() to ensure Viper is
// properly configured. An empty cfgFile means the default search paths are used.
func InitializeViper(cfgFile string) error {
	loadEnvFile()
	setupViper(cfgFile)
	setViperDefaults()
	readConfigFile()

	if err := bindEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}

	setupDevelopmentLogging()
	return nil
}

// loadEnvFile loads .env file (ignores error if file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures Viper for environment variable and config file reading.
func setupViper(cfgFile string) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
}

// readConfigFile reads config file (ignores error if file doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// setViperDefaults sets default configuration values.
func setViperDefaults() {
	// App defaults - production safe
	viper.SetDefault("app", map[string]any{
		"name":        "signal-crawler",
		"version":     "1.0.0",
		"environment": "production",
		"debug":       false,
	})

	// Logger defaults - production safe
	viper.SetDefault("logger", map[string]any{
		"level":        "info",
		"development":  false,
		"encoding":     "json",
		"output":       "stdout",
		"output_paths": []string{"stdout"},
		"enable_color": false,
		"caller":       false,
		"stacktrace":   false,
		"max_size":     DefaultLogMaxSize,
		"max_backups":  DefaultLogMaxBackups,
		"max_age":      DefaultLogMaxAge,
		"compress":     true,
	})

	// Monitor defaults - production safe
	viper.SetDefault("monitor", map[string]any{
		"keywords":            monitor.DefaultKeywords,
		"url_patterns":        []string{},
		"output_path":         monitor.DefaultOutputPath,
		"state_dir":           monitor.DefaultStateDir,
		"sources_file":        monitor.DefaultSourcesFile,
		"max_concurrency":     monitor.DefaultMaxConcurrency,
		"fetch_limit":         monitor.DefaultFetchLimit,
		"random_delay_min":    "1s",
		"random_delay_max":    "3s",
		"request_timeout":     "30s",
		"user_agent":          monitor.DefaultUserAgent,
		"requests_per_second": monitor.DefaultRequestsPerSecond,
		"seen_capacity":       monitor.DefaultSeenCapacity,
		"max_body_size":       monitor.DefaultMaxBodySize,
		"max_retries":         monitor.DefaultMaxRetries,
		"retry_delay":         "1s",
		"watch_schedule":      monitor.DefaultWatchSchedule,
	})
}

// bindEnvironmentVariables binds all environment variables to config keys.
func bindEnvironmentVariables() error {
	if err := bindAppEnvVars(); err != nil {
		return fmt.Errorf("failed to bind app env vars: %w", err)
	}
	if err := bindMonitorEnvVars(); err != nil {
		return fmt.Errorf("failed to bind monitor env vars: %w", err)
	}
	return nil
}

// bindAppEnvVars binds application and logger environment variables to config keys.
func bindAppEnvVars() error {
	if err := viper.BindEnv("app.environment", "APP_ENV"); err != nil {
		return fmt.Errorf("failed to bind APP_ENV: %w", err)
	}
	if err := viper.BindEnv("app.debug", "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	if err := viper.BindEnv("logger.level", "LOG_LEVEL"); err != nil {
		return fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}
	if err := viper.BindEnv("logger.encoding", "LOG_FORMAT"); err != nil {
		return fmt.Errorf("failed to bind LOG_FORMAT: %w", err)
	}
	return nil
}

// bindMonitorEnvVars binds monitor environment variables to config keys.
// Note: AutomaticEnv with the key replacer already covers MONITOR_* variables;
// the explicit binds document the variables operators are expected to set.
func bindMonitorEnvVars() error {
	if err := viper.BindEnv("monitor.sources_file", "MONITOR_SOURCES_FILE"); err != nil {
		return fmt.Errorf("failed to bind MONITOR_SOURCES_FILE: %w", err)
	}
	if err := viper.BindEnv("monitor.output_path", "MONITOR_OUTPUT_PATH"); err != nil {
		return fmt.Errorf("failed to bind MONITOR_OUTPUT_PATH: %w", err)
	}
	if err := viper.BindEnv("monitor.state_dir", "MONITOR_STATE_DIR"); err != nil {
		return fmt.Errorf("failed to bind MONITOR_STATE_DIR: %w", err)
	}
	if err := viper.BindEnv("monitor.watch_schedule", "MONITOR_WATCH_SCHEDULE"); err != nil {
		return fmt.Errorf("failed to bind MONITOR_WATCH_SCHEDULE: %w", err)
	}
	return nil
}

// setupDevelopmentLogging configures logging settings based on environment variables.
// It separates concerns: debug level (controlled by APP_DEBUG) vs development formatting (controlled by APP_ENV).
func setupDevelopmentLogging() {
	debugFlag := viper.GetBool("app.debug")
	isDev := viper.GetString("app.environment") == "development"

	// Always set debug level when APP_DEBUG=true, regardless of environment (production, staging, development)
	// This allows enabling debug logs in production for troubleshooting
	if debugFlag {
		viper.Set("logger.level", "debug")
	}

	// Set development mode features (formatting, colors, console encoding, etc.) only in development environment
	// These formatting options are separate from log level - you can have debug logs with production formatting
	if isDev {
		viper.Set("logger.development", true)
		viper.Set("logger.enable_color", true)
		viper.Set("logger.caller", true)
		viper.Set("logger.stacktrace", true)
		viper.Set("logger.encoding", "console")
	}
}
