package membership

import (
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
)

// Options configures a pipeline.
type options struct {
	workers     int
	neighbors   int
	maxMag      float64
	selection   Selection
	globulars   []Globular
	artifactDir string
}

func defaultOptions() *options {
	return &options{
		workers:   constants.DefaultWorkers,
		neighbors: constants.DefaultNeighborClusters,
		maxMag:    constants.DefaultMaxMagnitude,
	}
}

// Option is a function that configures a Pipeline.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// WithWorkers sets how many clusters are processed concurrently.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{Field: "workers", Value: n, Message: "must be positive"}
		}
		o.workers = n
		return nil
	}
}

// WithNeighborClusters sets how many nearby catalogue clusters are
// considered as contaminants.
func WithNeighborClusters(k int) Option {
	return func(o *options) error {
		if k < 0 {
			return &errors.ValidationError{Field: "neighbors", Value: k, Message: "cannot be negative"}
		}
		o.neighbors = k
		return nil
	}
}

// WithMaxMagnitude sets the faintest magnitude requested from the frame source.
func WithMaxMagnitude(m float64) Option {
	return func(o *options) error {
		if m <= 0 {
			return &errors.ValidationError{Field: "maxMag", Value: m, Message: "must be positive"}
		}
		o.maxMag = m
		return nil
	}
}

// WithSelection restricts the run to part of the catalogue.
func WithSelection(s Selection) Option {
	return func(o *options) error {
		if err := s.Validate(); err != nil {
			return err
		}
		o.selection = s
		return nil
	}
}

// WithGlobulars sets the globular clusters used as extra contaminants.
func WithGlobulars(gcs []Globular) Option {
	return func(o *options) error {
		o.globulars = gcs
		return nil
	}
}

// WithArtifactDir enables writing per-cluster star files under dir.
func WithArtifactDir(dir string) Option {
	return func(o *options) error {
		o.artifactDir = dir
		return nil
	}
}
