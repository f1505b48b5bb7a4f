package reconciler

import (
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
)

// Options configures a reconciler.
type options struct {
	duplicateNeighbors int
	policy             AmbiguityPolicy
}

func defaultOptions() *options {
	return &options{
		duplicateNeighbors: constants.DefaultDuplicateNeighbors,
		policy:             PolicyKeepFirst,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithDuplicateNeighbors sets how many nearest records are inspected
// when looking for duplicates.
func WithDuplicateNeighbors(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{
				Field:   "duplicateNeighbors",
				Value:   n,
				Message: "must be positive",
			}
		}
		o.duplicateNeighbors = n
		return nil
	}
}

// WithAmbiguityPolicy sets how multi-record name collisions are resolved.
func WithAmbiguityPolicy(policy AmbiguityPolicy) Option {
	return func(o *options) error {
		p, err := ParseAmbiguityPolicy(string(policy))
		if err != nil {
			return err
		}
		o.policy = p
		return nil
	}
}
