// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"

	"github.com/ashik5757/Minio-Private-Bucket/internal/constants"
)

// Config holds all service settings. Values come from environment
// variables; every tunable has a default except the bucket connection
// settings, which are deployment-specific.
type Config struct {
	// Endpoint is the S3-compatible endpoint URL (e.g. http://minio:9000).
	// Empty means the AWS default endpoint resolution applies.
	Endpoint string `env:"ENDPOINT_URL"`

	// Bucket is the single bucket this service exposes.
	Bucket string `env:"BUCKET_NAME"`

	// AccessKey and SecretKey are the static credentials for the bucket.
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`

	// Region is required by the SDK even when MinIO ignores it.
	Region string `env:"AWS_REGION" envDefault:"us-east-1"`

	// Title is shown by the presentation layer.
	Title string `env:"APP_TITLE" envDefault:"MinIO Browser"`

	// ListenAddr is the HTTP listen address.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":5000"`

	// ArchiveDir is the scratch directory for archive files, named by
	// task id. Created on startup if missing.
	ArchiveDir string `env:"ARCHIVE_DIR" envDefault:"archives"`

	// MaxConcurrentDownloads caps folder-download tasks running at once.
	// Requests beyond the cap are rejected, not queued.
	MaxConcurrentDownloads int `env:"MAX_CONCURRENT_DOWNLOADS" envDefault:"4"`

	// ArchiveRetention is how long a finished task and its archive are
	// kept before eviction.
	ArchiveRetention time.Duration `env:"ARCHIVE_RETENTION" envDefault:"10m"`

	// SweepInterval is how often expired tasks and stale scratch files
	// are swept.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`

	// MaxRetries bounds retries of transient listing/fetch errors before
	// the task fails.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"5"`

	// RetryInitialDelay is the base delay for exponential backoff.
	RetryInitialDelay time.Duration `env:"RETRY_INITIAL_DELAY" envDefault:"200ms"`

	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration `env:"RETRY_MAX_DELAY" envDefault:"15s"`

	// FetchTimeout bounds a single object fetch. Cancellation is only
	// observed between objects, so this also bounds cancel latency.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"5m"`

	// EventBuffer is the per-subscriber progress channel buffer.
	EventBuffer int `env:"EVENT_BUFFER" envDefault:"64"`

	// Verbose enables debug logging.
	Verbose bool `env:"VERBOSE" envDefault:"false"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and clamps out-of-range tunables.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("BUCKET_NAME is required")
	}
	if c.MaxConcurrentDownloads <= 0 {
		c.MaxConcurrentDownloads = constants.DefaultMaxConcurrentDownloads
	}
	if c.ArchiveRetention <= 0 {
		c.ArchiveRetention = constants.DefaultArchiveRetention
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = constants.DefaultSweepInterval
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = constants.MaxRetries
	}
	if c.RetryInitialDelay <= 0 {
		c.RetryInitialDelay = constants.RetryInitialDelay
	}
	if c.RetryMaxDelay < c.RetryInitialDelay {
		c.RetryMaxDelay = constants.RetryMaxDelay
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = constants.DefaultFetchTimeout
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = constants.EventBusDefaultBuffer
	}
	if c.EventBuffer > constants.EventBusMaxBuffer {
		c.EventBuffer = constants.EventBusMaxBuffer
	}
	return nil
}

// Default returns a config with all defaults applied and no connection
// settings. Used by tests and the CLI when wiring components directly.
func Default() *Config {
	return &Config{
		Region:                 "us-east-1",
		Title:                  "MinIO Browser",
		ListenAddr:             ":5000",
		ArchiveDir:             "archives",
		MaxConcurrentDownloads: constants.DefaultMaxConcurrentDownloads,
		ArchiveRetention:       constants.DefaultArchiveRetention,
		SweepInterval:          constants.DefaultSweepInterval,
		MaxRetries:             constants.MaxRetries,
		RetryInitialDelay:      constants.RetryInitialDelay,
		RetryMaxDelay:          constants.RetryMaxDelay,
		FetchTimeout:           constants.DefaultFetchTimeout,
		EventBuffer:            constants.EventBusDefaultBuffer,
	}
}
