// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load(ctx) layers an optional YAML file and ENCORE_-prefixed env vars
//   on top of the defaults and validates the result.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DefaultK is the result size used when a request omits k.
	DefaultK int `koanf:"default_k"`

	// MaxK caps the per-request result size accepted at the boundary.
	MaxK int `koanf:"max_k"`

	// BlendAlpha is the default online-signal weight, in [0,1].
	BlendAlpha float64 `koanf:"blend_alpha"`

	// BlendOversample inflates the offline request size before blending.
	BlendOversample int `koanf:"blend_oversample"`

	// RefreshQueueSize bounds the pending refresh job queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// LoaderWorkers sets the number of table refresh workers.
	LoaderWorkers int `koanf:"loader_workers"`

	// RefreshSchedule is a standard 5-field cron spec for periodic
	// table reloads. Empty disables scheduled refresh.
	RefreshSchedule string `koanf:"refresh_schedule"`

	// Object store settings for the published artifacts.
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3Region    string `koanf:"s3_region"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`
	S3Secure    bool   `koanf:"s3_secure"`

	// ArtifactPrefix is the object key prefix the offline pipeline
	// publishes tables under.
	ArtifactPrefix string `koanf:"artifact_prefix"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use
// and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		DefaultK:         20,
		MaxK:             1000,
		BlendAlpha:       0.3,
		BlendOversample:  5,
		RefreshQueueSize: 64,
		LoaderWorkers:    2,
		RefreshSchedule:  "",
		S3Endpoint:       "storage.yandexcloud.net",
		S3Secure:         true,
		ArtifactPrefix:   "recsys/recommendations",
	}
}
