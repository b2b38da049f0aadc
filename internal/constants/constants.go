// Package constants provides all shared constants used across the signal-crawler
// application. Constants are organized by domain (HTTP, Monitor, State, Logger, General).
package constants

import (
	"time"
)

// HTTP Constants
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultMaxBodySize is the default maximum response body size (10MB)
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultUserAgent is the User-Agent header sent on outbound requests
	DefaultUserAgent = "signal-crawler/1.0"

	// Transport constants
	DefaultMaxIdleConns          = 100
	DefaultMaxIdleConnsPerHost   = 10
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second
)

// Monitor Constants
const (
	// DefaultMaxConcurrency is the default number of concurrent fetch workers
	DefaultMaxConcurrency = 5

	// DefaultFetchLimit is the default maximum number of candidates fetched per run
	DefaultFetchLimit = 100

	// DefaultRandomDelayMin is the default lower bound of the per-request delay
	DefaultRandomDelayMin = 1 * time.Second

	// DefaultRandomDelayMax is the default upper bound of the per-request delay
	DefaultRandomDelayMax = 3 * time.Second

	// DefaultRequestsPerSecond is the default shared request rate across workers
	DefaultRequestsPerSecond = 2.0

	// DefaultWatchSchedule is the default cron expression for watch mode
	DefaultWatchSchedule = "*/15 * * * *"
)

// State Constants
const (
	// DefaultOutputPath is the default JSONL match output file
	DefaultOutputPath = "data/matches.jsonl"

	// DefaultStateDir is the default directory for checkpoint files and the seen database
	DefaultStateDir = "data/state"

	// DefaultSourcesFile is the default sources configuration file
	DefaultSourcesFile = "sources.yml"

	// DefaultSeenCapacity is the default per-source capacity of the seen-item store
	DefaultSeenCapacity = 10000

	// CheckpointFileSuffix is appended to a source ID to form its checkpoint file name
	CheckpointFileSuffix = ".checkpoint"

	// SeenDBFileName is the seen-item database file name inside the state directory
	SeenDBFileName = "seen.db"
)

// Logger Constants
const (
	// DefaultLogLevel is the default logging level
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging format
	DefaultLogFormat = "json"

	// DefaultLogOutput is the default logging output
	DefaultLogOutput = "stdout"
)

// General/Common Constants
const (
	// DefaultOperationTimeout is the default timeout for general operations.
	// This duration is used for common operations like listing requests or
	// state commits that should complete in a reasonable time.
	DefaultOperationTimeout = 30 * time.Second

	// DefaultRunTimeout is the maximum time to wait for a single crawl run to complete.
	DefaultRunTimeout = 30 * time.Minute

	// DefaultShutdownTimeout is the maximum time to wait for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultTestSleepDuration is the default sleep duration for tests
	DefaultTestSleepDuration = 100 * time.Millisecond

	// DefaultMaxRetries is the default number of retries for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryMaxWait is the default maximum wait time between retries
	DefaultRetryMaxWait = 30 * time.Second

	// DefaultRetryInitialWait is the default initial wait time between retries
	DefaultRetryInitialWait = 1 * time.Second

	// DefaultEnvironment is the default application environment
	DefaultEnvironment = "development"

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

// Source kinds
const (
	// SourceKindArchive is a source listed from a public archive page without ordered IDs
	SourceKindArchive = "archive"
	// SourceKindChannel is a source with monotonically increasing message IDs
	SourceKindChannel = "channel"
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

// ValidSourceKinds defines the valid source kinds
var ValidSourceKinds = map[string]bool{
	SourceKindArchive: true,
	SourceKindChannel: true,
}
