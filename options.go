package ucc

import (
	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/reconciler"
	"github.com/ucc-astro/ucc/pkg/store/sqlite"
)

// config holds the client configuration
type config struct {
	initialCatalog    *catalogs.Catalog
	catalogFile       string
	reconcilerOptions []reconciler.Option
	store             *sqlite.Store
}

func defaultConfig() *config {
	return &config{}
}

func (c *config) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	if c.initialCatalog != nil && c.catalogFile != "" {
		return &errors.ValidationError{Field: "catalog", Message: "initial catalog and catalog file are exclusive"}
	}
	return nil
}

// Option is a function that configures a Client instance
type Option func(*config) error

// WithInitialCatalog starts the client from a copy of cat
func WithInitialCatalog(cat *catalogs.Catalog) Option {
	return func(c *config) error {
		if cat == nil {
			return &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
		}
		c.initialCatalog = cat
		return nil
	}
}

// WithCatalogFile starts the client from a catalogue CSV file
func WithCatalogFile(path string) Option {
	return func(c *config) error {
		c.catalogFile = path
		return nil
	}
}

// WithReconcilerOptions configures ingestion
func WithReconcilerOptions(opts ...reconciler.Option) Option {
	return func(c *config) error {
		c.reconcilerOptions = append(c.reconcilerOptions, opts...)
		return nil
	}
}

// WithSnapshotStore saves a snapshot after every ingestion pass and
// membership run
func WithSnapshotStore(store *sqlite.Store) Option {
	return func(c *config) error {
		c.store = store
		return nil
	}
}
