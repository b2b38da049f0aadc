package config

import (
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config/app"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config/logging"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config/monitor"
	"github.com/spf13/viper"
)

// LoadConfig builds the application configuration from Viper.
// InitializeViper must be called first so defaults, environment variables,
// and the optional config file have been merged.
func LoadConfig() (*Config, error) {
	monitorCfg, err := buildMonitorConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: &app.Config{
			Name:        viper.GetString("app.name"),
			Version:     viper.GetString("app.version"),
			Environment: viper.GetString("app.environment"),
			Debug:       viper.GetBool("app.debug"),
		},
		Logger: &logging.Config{
			Level:      viper.GetString("logger.level"),
			Encoding:   viper.GetString("logger.encoding"),
			Output:     viper.GetString("logger.output"),
			File:       viper.GetString("logger.file"),
			Debug:      viper.GetBool("app.debug"),
			Caller:     viper.GetBool("logger.caller"),
			Stacktrace: viper.GetBool("logger.stacktrace"),
			MaxSize:    viper.GetInt("logger.max_size"),
			MaxBackups: viper.GetInt("logger.max_backups"),
			MaxAge:     viper.GetInt("logger.max_age"),
			Compress:   viper.GetBool("logger.compress"),
		},
		Monitor: monitorCfg,
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInvalid, validateErr)
	}

	return cfg, nil
}

// buildMonitorConfig reads the monitor section from Viper on top of the
// package defaults. Delay values accept Go duration strings or bare seconds.
func buildMonitorConfig() (*monitor.Config, error) {
	cfg := monitor.New()

	if viper.IsSet("monitor.keywords") {
		cfg.Keywords = viper.GetStringSlice("monitor.keywords")
	}
	if viper.IsSet("monitor.url_patterns") {
		cfg.URLPatterns = viper.GetStringSlice("monitor.url_patterns")
	}
	cfg.OutputPath = viper.GetString("monitor.output_path")
	cfg.StateDir = viper.GetString("monitor.state_dir")
	cfg.SourcesFile = viper.GetString("monitor.sources_file")
	cfg.MaxConcurrency = viper.GetInt("monitor.max_concurrency")
	cfg.FetchLimit = viper.GetInt("monitor.fetch_limit")
	cfg.UserAgent = viper.GetString("monitor.user_agent")
	cfg.RequestsPerSecond = viper.GetFloat64("monitor.requests_per_second")
	cfg.SeenCapacity = viper.GetInt("monitor.seen_capacity")
	cfg.MaxBodySize = viper.GetInt("monitor.max_body_size")
	cfg.MaxRetries = viper.GetInt("monitor.max_retries")
	cfg.WatchSchedule = viper.GetString("monitor.watch_schedule")
	cfg.Debug = viper.GetBool("app.debug")

	delayMin, err := parseDelayKey("monitor.random_delay_min")
	if err != nil {
		return nil, err
	}
	cfg.RandomDelayMin = delayMin

	delayMax, err := parseDelayKey("monitor.random_delay_max")
	if err != nil {
		return nil, err
	}
	cfg.RandomDelayMax = delayMax

	timeout, err := parseDelayKey("monitor.request_timeout")
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	retryDelay, err := parseDelayKey("monitor.retry_delay")
	if err != nil {
		return nil, err
	}
	cfg.RetryDelay = retryDelay

	return cfg, nil
}

// parseDelayKey parses a Viper key holding a duration string or bare seconds.
func parseDelayKey(key string) (time.Duration, error) {
	value := viper.GetString(key)
	parsed, err := monitor.ParseDelay(value)
	if err != nil {
		return 0, &ParseError{Field: key, Value: value, Err: err}
	}
	return parsed, nil
}
