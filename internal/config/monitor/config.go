// Package monitor provides configuration management for the source monitor component.
// It handles loading, validation, and access to monitor-specific settings
// such as match criteria, concurrency, politeness delays, and state locations.
package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default configuration values
const (
	DefaultMaxConcurrency    = 5
	DefaultFetchLimit        = 100
	DefaultRandomDelayMin    = 1 * time.Second
	DefaultRandomDelayMax    = 3 * time.Second
	DefaultRequestTimeout    = 30 * time.Second
	DefaultUserAgent         = "signal-crawler/1.0"
	DefaultRequestsPerSecond = 2.0
	DefaultSeenCapacity      = 10000
	DefaultMaxBodySize       = 10 * 1024 * 1024 // 10MB
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = 1 * time.Second
	DefaultOutputPath        = "data/matches.jsonl"
	DefaultStateDir          = "data/state"
	DefaultSourcesFile       = "sources.yml"
	// DefaultWatchSchedule runs a crawl every fifteen minutes in watch mode
	DefaultWatchSchedule = "*/15 * * * *"
)

// DefaultKeywords is the default keyword set for sources that configure none.
var DefaultKeywords = []string{
	"crypto", "bitcoin", "ethereum", "blockchain", "t.me",
	"btc", "eth", "nft", "defi", "wallet", "binance", "coinbase",
}

// Config represents the monitor configuration.
type Config struct {
	// Keywords is the list of keywords matched case-insensitively in fetched bodies
	Keywords []string `env:"MONITOR_KEYWORDS" yaml:"keywords"`
	// URLPatterns is the list of URL regular expressions extracted from fetched bodies
	URLPatterns []string `env:"MONITOR_URL_PATTERNS" yaml:"url_patterns"`
	// OutputPath is the JSONL file match records are appended to
	OutputPath string `env:"MONITOR_OUTPUT_PATH" yaml:"output_path"`
	// StateDir is the directory holding checkpoint files and the seen database
	StateDir string `env:"MONITOR_STATE_DIR" yaml:"state_dir"`
	// SourcesFile is the sources configuration file
	SourcesFile string `env:"MONITOR_SOURCES_FILE" yaml:"sources_file"`
	// MaxConcurrency is the maximum number of concurrent fetch requests
	MaxConcurrency int `env:"MONITOR_MAX_CONCURRENCY" yaml:"max_concurrency"`
	// FetchLimit caps the number of new items fetched per run
	FetchLimit int `env:"MONITOR_FETCH_LIMIT" yaml:"fetch_limit"`
	// RandomDelayMin is the lower bound of the randomized per-request delay
	RandomDelayMin time.Duration `env:"MONITOR_RANDOM_DELAY_MIN" yaml:"random_delay_min"`
	// RandomDelayMax is the upper bound of the randomized per-request delay
	RandomDelayMax time.Duration `env:"MONITOR_RANDOM_DELAY_MAX" yaml:"random_delay_max"`
	// RequestTimeout is the timeout for each request
	RequestTimeout time.Duration `env:"MONITOR_REQUEST_TIMEOUT" yaml:"request_timeout"`
	// UserAgent is the user agent to use for requests
	UserAgent string `env:"MONITOR_USER_AGENT" yaml:"user_agent"`
	// RequestsPerSecond is the request rate shared across fetch workers
	RequestsPerSecond float64 `env:"MONITOR_REQUESTS_PER_SECOND" yaml:"requests_per_second"`
	// SeenCapacity is the per-source capacity of the seen-item store
	SeenCapacity int `env:"MONITOR_SEEN_CAPACITY" yaml:"seen_capacity"`
	// MaxBodySize is the maximum response body size in bytes
	MaxBodySize int `env:"MONITOR_MAX_BODY_SIZE" yaml:"max_body_size"`
	// MaxRetries is the maximum number of retries for transient request failures
	MaxRetries int `env:"MONITOR_MAX_RETRIES" yaml:"max_retries"`
	// RetryDelay is the initial delay between retries
	RetryDelay time.Duration `env:"MONITOR_RETRY_DELAY" yaml:"retry_delay"`
	// WatchSchedule is the cron expression for watch mode
	WatchSchedule string `env:"MONITOR_WATCH_SCHEDULE" yaml:"watch_schedule"`
	// Debug enables debug logging
	Debug bool `env:"APP_DEBUG" yaml:"debug"`
}

// Validate validates the monitor configuration.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 1 {
		return errors.New("max_concurrency must be positive")
	}
	if c.FetchLimit < 1 {
		return errors.New("fetch_limit must be positive")
	}
	if c.RandomDelayMin < 0 {
		return errors.New("random_delay_min must be non-negative")
	}
	if c.RandomDelayMax < c.RandomDelayMin {
		return errors.New("random_delay_max must not be less than random_delay_min")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.RequestsPerSecond <= 0 {
		return errors.New("requests_per_second must be positive")
	}
	if c.SeenCapacity < 1 {
		return errors.New("seen_capacity must be positive")
	}
	if c.MaxBodySize < 0 {
		return errors.New("max_body_size must be non-negative")
	}
	if c.OutputPath == "" {
		return errors.New("output_path must be specified")
	}
	if c.StateDir == "" {
		return errors.New("state_dir must be specified")
	}
	return nil
}

// New creates a new monitor configuration with the given options.
func New(opts ...Option) *Config {
	cfg := &Config{
		Keywords:          append([]string(nil), DefaultKeywords...),
		URLPatterns:       []string{},
		OutputPath:        DefaultOutputPath,
		StateDir:          DefaultStateDir,
		SourcesFile:       DefaultSourcesFile,
		MaxConcurrency:    DefaultMaxConcurrency,
		FetchLimit:        DefaultFetchLimit,
		RandomDelayMin:    DefaultRandomDelayMin,
		RandomDelayMax:    DefaultRandomDelayMax,
		RequestTimeout:    DefaultRequestTimeout,
		UserAgent:         DefaultUserAgent,
		RequestsPerSecond: DefaultRequestsPerSecond,
		SeenCapacity:      DefaultSeenCapacity,
		MaxBodySize:       DefaultMaxBodySize,
		MaxRetries:        DefaultMaxRetries,
		RetryDelay:        DefaultRetryDelay,
		WatchSchedule:     DefaultWatchSchedule,
		Debug:             false,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option is a function that configures a monitor configuration.
type Option func(*Config)

// WithKeywords sets the keyword list.
func WithKeywords(keywords []string) Option {
	return func(c *Config) {
		c.Keywords = keywords
	}
}

// WithURLPatterns sets the URL pattern list.
func WithURLPatterns(patterns []string) Option {
	return func(c *Config) {
		c.URLPatterns = patterns
	}
}

// WithOutputPath sets the match output file.
func WithOutputPath(path string) Option {
	return func(c *Config) {
		c.OutputPath = path
	}
}

// WithStateDir sets the state directory.
func WithStateDir(dir string) Option {
	return func(c *Config) {
		c.StateDir = dir
	}
}

// WithMaxConcurrency sets the maximum concurrency.
func WithMaxConcurrency(concurrency int) Option {
	return func(c *Config) {
		c.MaxConcurrency = concurrency
	}
}

// WithFetchLimit sets the per-run fetch limit.
func WithFetchLimit(limit int) Option {
	return func(c *Config) {
		c.FetchLimit = limit
	}
}

// WithRandomDelay sets the per-request delay bounds.
func WithRandomDelay(minDelay, maxDelay time.Duration) Option {
	return func(c *Config) {
		c.RandomDelayMin = minDelay
		c.RandomDelayMax = maxDelay
	}
}

// WithRequestTimeout sets the request timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// WithUserAgent sets the user agent.
func WithUserAgent(agent string) Option {
	return func(c *Config) {
		c.UserAgent = agent
	}
}

// WithSeenCapacity sets the seen-item store capacity.
func WithSeenCapacity(capacity int) Option {
	return func(c *Config) {
		c.SeenCapacity = capacity
	}
}

// ParseDelay parses a delay string into a time.Duration.
// Accepts Go duration strings ("10s", "1m") or bare numbers as seconds ("10", "1.5").
func ParseDelay(delay string) (time.Duration, error) {
	delay = strings.TrimSpace(delay)
	if delay == "" {
		return 0, errors.New("delay cannot be empty")
	}

	duration, err := time.ParseDuration(delay)
	if err != nil {
		// Bare integer as seconds (e.g. "10")
		if n, parseErr := strconv.Atoi(delay); parseErr == nil && n >= 0 {
			return time.Duration(n) * time.Second, nil
		}
		// Bare float as seconds (e.g. "1.5")
		if f, parseErr := strconv.ParseFloat(delay, 64); parseErr == nil && f >= 0 {
			return time.Duration(f * float64(time.Second)), nil
		}
		return 0, fmt.Errorf("error parsing duration: %w", err)
	}

	if duration < 0 {
		return 0, errors.New("delay must be non-negative")
	}

	return duration, nil
}
