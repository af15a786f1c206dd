package service

import (
	"github.com/okian/encore/internal/adapters/objstore"
	"github.com/okian/encore/internal/adapters/repository"
	"github.com/okian/encore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets a pre-built table store. Mainly a test seam.
func WithStore(store *repository.TableStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFetcher sets a custom artifact fetcher, bypassing the object
// store client construction. Mainly a test seam.
func WithFetcher(fetcher objstore.Fetcher) Option {
	return func(s *Service) {
		if fetcher != nil {
			s.fetcher = fetcher
		}
	}
}

// WithOversample sets the blending oversampling factor.
func WithOversample(factor int) Option {
	return func(s *Service) {
		if factor >= 1 {
			s.oversample = factor
		}
	}
}

// WithLoaderWorkers sets the number of refresh workers.
func WithLoaderWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.loaderWorkers = count
		}
	}
}

// WithRefreshQueueSize bounds the pending refresh job queue.
func WithRefreshQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRefreshSchedule sets the cron spec for periodic table reloads.
func WithRefreshSchedule(spec string) Option {
	return func(s *Service) {
		s.refreshSchedule = spec
	}
}

// WithArtifactPrefix sets the object key prefix of the published tables.
func WithArtifactPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.artifactPrefix = prefix
		}
	}
}

// WithObjectStore sets the S3-compatible endpoint and bucket settings.
func WithObjectStore(endpoint, region, bucket, accessKey, secretKey string, secure bool) Option {
	return func(s *Service) {
		if endpoint != "" {
			s.s3Endpoint = endpoint
		}
		s.s3Region = region
		s.s3Bucket = bucket
		s.s3AccessKey = accessKey
		s.s3SecretKey = secretKey
		s.s3Secure = secure
	}
}
