// Package logging provides configuration management for application logging.
package logging

import (
	"errors"
	"fmt"
)

// Default configuration values
const (
	DefaultLevel      = "info"
	DefaultEncoding   = "json"
	DefaultOutput     = "stdout"
	DefaultDebug      = false
	DefaultCaller     = false
	DefaultStacktrace = false
	DefaultMaxSize    = 100 // MB before rotation
	DefaultMaxBackups = 3   // old log files to retain
	DefaultMaxAge     = 30  // days to retain old files
	DefaultCompress   = true
)

// validLevels defines the accepted logging levels.
var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validEncodings defines the accepted log encodings.
var validEncodings = map[string]bool{
	"json":    true,
	"console": true,
}

// validOutputs defines the accepted log output destinations.
var validOutputs = map[string]bool{
	"stdout": true,
	"stderr": true,
	"file":   true,
}

// Config holds logging-specific configuration settings.
type Config struct {
	// Level is the logging level (debug, info, warn, error)
	Level string `yaml:"level"`
	// Encoding is the log encoding format (json, console)
	Encoding string `yaml:"encoding"`
	// Output is the log output destination (stdout, stderr, file)
	Output string `yaml:"output"`
	// File is the log file path (only used when output is file)
	File string `yaml:"file"`
	// Debug enables debug mode for additional logging
	Debug bool `yaml:"debug"`
	// Caller enables caller information in logs
	Caller bool `yaml:"caller"`
	// Stacktrace enables stacktrace in error logs
	Stacktrace bool `yaml:"stacktrace"`
	// MaxSize is the maximum size of the log file in megabytes
	MaxSize int `yaml:"max_size"`
	// MaxBackups is the maximum number of old log files to retain
	MaxBackups int `yaml:"max_backups"`
	// MaxAge is the maximum number of days to retain old log files
	MaxAge int `yaml:"max_age"`
	// Compress determines if the rotated log files should be compressed
	Compress bool `yaml:"compress"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Level == "" {
		return errors.New("log level must be specified")
	}
	if !validLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s", c.Level)
	}

	if c.Encoding == "" {
		return errors.New("log encoding must be specified")
	}
	if !validEncodings[c.Encoding] {
		return fmt.Errorf("invalid log encoding: %s", c.Encoding)
	}

	if c.Output == "" {
		return errors.New("log output must be specified")
	}
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid log output: %s", c.Output)
	}
	if c.Output == "file" && c.File == "" {
		return errors.New("log file must be specified when output is file")
	}

	if c.MaxSize < 0 {
		return errors.New("max_size must be non-negative")
	}
	if c.MaxBackups < 0 {
		return errors.New("max_backups must be non-negative")
	}
	if c.MaxAge < 0 {
		return errors.New("max_age must be non-negative")
	}

	return nil
}

// New creates a new logging configuration with the given options.
func New(opts ...Option) *Config {
	cfg := &Config{
		Level:      DefaultLevel,
		Encoding:   DefaultEncoding,
		Output:     DefaultOutput,
		Debug:      DefaultDebug,
		Caller:     DefaultCaller,
		Stacktrace: DefaultStacktrace,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option is a function that configures a logging configuration.
type Option func(*Config)

// WithLevel sets the logging level.
func WithLevel(level string) Option {
	return func(c *Config) {
		c.Level = level
	}
}

// WithEncoding sets the log encoding.
func WithEncoding(encoding string) Option {
	return func(c *Config) {
		c.Encoding = encoding
	}
}

// WithOutput sets the log output destination.
func WithOutput(output string) Option {
	return func(c *Config) {
		c.Output = output
	}
}

// WithFile sets the log file path.
func WithFile(file string) Option {
	return func(c *Config) {
		c.File = file
	}
}

// WithDebug sets the debug mode.
func WithDebug(debug bool) Option {
	return func(c *Config) {
		c.Debug = debug
	}
}

// WithCaller sets whether caller information is logged.
func WithCaller(caller bool) Option {
	return func(c *Config) {
		c.Caller = caller
	}
}

// WithStacktrace sets whether stacktraces are logged on errors.
func WithStacktrace(stacktrace bool) Option {
	return func(c *Config) {
		c.Stacktrace = stacktrace
	}
}

// WithMaxSize sets the maximum log file size in megabytes.
func WithMaxSize(size int) Option {
	return func(c *Config) {
		c.MaxSize = size
	}
}

// WithMaxBackups sets the maximum number of old log files to retain.
func WithMaxBackups(backups int) Option {
	return func(c *Config) {
		c.MaxBackups = backups
	}
}

// WithMaxAge sets the maximum number of days to retain old log files.
func WithMaxAge(age int) Option {
	return func(c *Config) {
		c.MaxAge = age
	}
}

// WithCompress sets whether rotated log files are compressed.
func WithCompress(compress bool) Option {
	return func(c *Config) {
		c.Compress = compress
	}
}
