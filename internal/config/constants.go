// Package config provides configuration management for the signal-crawler application.
package config

import (
	"time"
)

// ValidLogLevels defines the valid logging levels
var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidEnvironments defines the valid environment types
var ValidEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
	"test":        true,
}

// Default configuration values
const (
	// DefaultLogLevel is the default logging level
	DefaultLogLevel = "info"

	// DefaultEnvironment is the default application environment
	DefaultEnvironment = "development"

	// DefaultLogFormat is the default logging format
	DefaultLogFormat = "json"

	// DefaultLogOutput is the default logging output
	DefaultLogOutput = "stdout"

	// DefaultLogMaxSize is the default maximum size in megabytes of the log file before it gets rotated
	DefaultLogMaxSize = 100

	// DefaultLogMaxBackups is the default maximum number of old log files to retain
	DefaultLogMaxBackups = 3

	// DefaultLogMaxAge is the default maximum number of days to retain old log files
	DefaultLogMaxAge = 30

	// DefaultLogCompress determines if the rotated log files should be compressed
	DefaultLogCompress = true

	// DefaultRetryMaxWait is the default maximum wait time between retries
	DefaultRetryMaxWait = 30 * time.Second

	// DefaultRetryInitialWait is the default initial wait time between retries
	DefaultRetryInitialWait = 1 * time.Second

	// DefaultMaxRetries is the default number of retries for failed requests
	DefaultMaxRetries = 3

	// DefaultAppName is the default application name
	DefaultAppName = "signal-crawler"

	// DefaultAppVersion is the default application version
	DefaultAppVersion = "1.0.0"

	// DefaultAppEnv is the default application environment
	DefaultAppEnv = "development"
)

// Environment types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTest        = "test"
)
