package sources

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/constants"
)

var (
	// ErrNoSources indicates no usable sources were found in the configuration.
	ErrNoSources = errors.New("no sources found in configuration")
	// ErrMissingRequiredField indicates a required field is missing.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrInvalidSourceKind indicates a kind outside archive|channel.
	ErrInvalidSourceKind = errors.New("invalid source kind")
)

// Config represents one source entry loaded from the sources file.
type Config struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Kind     string `mapstructure:"kind"`
	URL      string `mapstructure:"url"`
	Channel  string `mapstructure:"channel"`
	TokenEnv string `mapstructure:"token_env"`
	Enabled  *bool  `mapstructure:"enabled"`

	// FetchLimit overrides the global per-run fetch cap for this source when
	// set. Zero means inherit the monitor configuration's fetch_limit.
	FetchLimit int `mapstructure:"fetch_limit"`

	// Keywords and URLPatterns override the global matching criteria for
	// this source when set.
	Keywords    []string `mapstructure:"keywords"`
	URLPatterns []string `mapstructure:"url_patterns"`
}

// IsEnabled reports whether the source takes part in crawl runs. Entries
// without an explicit enabled flag are active.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Entry pairs a parsed sources-file entry with its validation result.
type Entry struct {
	Index  int
	Config Config
	Err    error
}

// sourcesFile represents the structure of a sources YAML file.
type sourcesFile struct {
	Sources []map[string]any `yaml:"sources"`
}

// Loader handles loading and validating source configurations.
type Loader struct {
	configPath string
}

// NewLoader creates a new Loader for the given sources file.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load returns the valid, enabled-or-not source configurations. Invalid
// entries are skipped; ErrNoSources is returned when nothing usable remains.
func (l *Loader) Load() ([]Config, error) {
	entries, err := l.LoadEntries()
	if err != nil {
		return nil, err
	}

	configs := make([]Config, 0, len(entries))
	for _, entry := range entries {
		if entry.Err != nil {
			continue
		}
		configs = append(configs, entry.Config)
	}

	if len(configs) == 0 {
		return nil, ErrNoSources
	}

	return configs, nil
}

// LoadEntries returns every sources-file entry with its per-entry validation
// error, for validation reporting.
func (l *Loader) LoadEntries() ([]Entry, error) {
	raw, err := l.loadRawSources()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for i, src := range raw {
		entry := Entry{Index: i}

		cfg, convertErr := l.convertToConfig(src)
		if convertErr != nil {
			entry.Err = convertErr
			entries = append(entries, entry)
			continue
		}

		entry.Config = cfg
		entry.Err = l.validateConfig(&entry.Config)
		entries = append(entries, entry)
	}

	return entries, nil
}

// loadRawSources loads the raw source data from the configuration file.
func (l *Loader) loadRawSources() ([]map[string]any, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Sources) == 0 {
		return nil, ErrNoSources
	}

	return file.Sources, nil
}

// convertToConfig converts a raw source map to a Config struct.
func (l *Loader) convertToConfig(src map[string]any) (Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create decoder: %w", err)
	}

	if decodeErr := decoder.Decode(src); decodeErr != nil {
		return Config{}, fmt.Errorf("failed to decode source: %w", decodeErr)
	}

	return cfg, nil
}

// validateConfig validates one source configuration, normalizing defaults.
func (l *Loader) validateConfig(cfg *Config) error {
	if cfg.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingRequiredField)
	}

	if cfg.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequiredField)
	}

	if !constants.ValidSourceKinds[cfg.Kind] {
		return fmt.Errorf("%w: %q", ErrInvalidSourceKind, cfg.Kind)
	}

	switch cfg.Kind {
	case constants.SourceKindArchive:
		if cfg.URL == "" {
			return fmt.Errorf("%w: url", ErrMissingRequiredField)
		}
		if err := l.validateURL(cfg.URL); err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
	case constants.SourceKindChannel:
		if cfg.Channel == "" {
			return fmt.Errorf("%w: channel", ErrMissingRequiredField)
		}
		if cfg.TokenEnv == "" {
			return fmt.Errorf("%w: token_env", ErrMissingRequiredField)
		}
	}

	if cfg.FetchLimit < 0 {
		return fmt.Errorf("fetch_limit must not be negative, got %d", cfg.FetchLimit)
	}

	return nil
}

// validateURL validates the URL format.
func (l *Loader) validateURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be a valid HTTP(S) URL")
	}
	return nil
}
