package resolve

import (
	"github.com/okian/encore/pkg/logger"
)

// Default resolver configuration constants.
const (
	defaultOversample = 5
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithOversample sets the factor by which the offline request size is
// inflated before blending.
func WithOversample(factor int) Option {
	return func(r *Resolver) {
		if factor >= 1 {
			r.oversample = factor
		}
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(logger logger.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}
