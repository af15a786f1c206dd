package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if ENCORE_CONFIG is set
//  3. env (prefix ENCORE_)
//
// S3 credentials and the bucket additionally fall back to the names the
// offline pipeline already uses: AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY, and student_s3_bucket.
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ENCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ENCORE_ADDR, ENCORE_MAX_K, ...
	// Map env keys like ENCORE_MAX_K -> max_k (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ENCORE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "encore_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Pipeline-compatible fallbacks for the object store settings.
	if cfg.S3AccessKey == "" {
		cfg.S3AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if cfg.S3SecretKey == "" {
		cfg.S3SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if cfg.S3Bucket == "" {
		cfg.S3Bucket = os.Getenv("student_s3_bucket")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot serve correctly.
// The blend weight is rejected rather than clamped so operators get
// explicit feedback instead of silently wrong rankings.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultK <= 0:
		return fmt.Errorf("%w: default_k must be positive", ErrInvalidConfig)
	case c.MaxK < c.DefaultK:
		return fmt.Errorf("%w: max_k must be >= default_k", ErrInvalidConfig)
	case c.BlendAlpha < 0 || c.BlendAlpha > 1:
		return fmt.Errorf("%w: blend_alpha must be in [0,1]", ErrInvalidConfig)
	case c.BlendOversample < 1:
		return fmt.Errorf("%w: blend_oversample must be >= 1", ErrInvalidConfig)
	case c.RefreshQueueSize <= 0:
		return fmt.Errorf("%w: refresh_queue_size must be positive", ErrInvalidConfig)
	case c.LoaderWorkers <= 0:
		return fmt.Errorf("%w: loader_workers must be positive", ErrInvalidConfig)
	case c.S3Bucket == "":
		return fmt.Errorf("%w: s3_bucket (or student_s3_bucket) is required", ErrInvalidConfig)
	case c.S3AccessKey == "" || c.S3SecretKey == "":
		return fmt.Errorf("%w: s3 credentials are required", ErrInvalidConfig)
	}
	return nil
}
