// Package ucc maintains the Unified Cluster Catalogue: a combined
// catalogue of open clusters built by ingesting published source
// catalogues one at a time, then validated by a membership pipeline.
//
// A Client holds the current catalogue. Ingest merges a source into it,
// Process runs membership validation over it, and hooks report which
// clusters were added, merged or processed.
package ucc

import (
	"context"
	"sync"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/membership"
	"github.com/ucc-astro/ucc/pkg/reconciler"
	"github.com/ucc-astro/ucc/pkg/sources"
)

// Client manages a catalogue with event hooks.
type Client interface {
	// Catalog returns a copy of the current catalogue
	Catalog() *catalogs.Catalog

	// Ingest merges a source catalogue into the current catalogue
	Ingest(ctx context.Context, src *sources.Catalog) (*reconciler.Result, error)

	// IngestSource loads the source tag described by cfg from dataDir and ingests it
	IngestSource(ctx context.Context, cfg *sources.Config, dataDir, tag string) (*reconciler.Result, error)

	// Process validates the membership of the selected clusters
	Process(ctx context.Context, classifier membership.Classifier, frames membership.FrameSource, opts ...membership.Option) (*membership.Report, error)

	// Save writes the current catalogue as CSV
	Save(path string) error

	// OnClusterAdded registers a callback for clusters created by an ingestion pass
	OnClusterAdded(ClusterAddedHook)

	// OnClusterMerged registers a callback for existing clusters that absorbed entries
	OnClusterMerged(ClusterMergedHook)

	// OnClusterProcessed registers a callback for each successfully validated cluster
	OnClusterProcessed(ClusterProcessedHook)
}

// client is the internal implementation of the Client interface
type client struct {
	mu      sync.RWMutex
	catalog *catalogs.Catalog

	// writes serialises Ingest and Process so neither works on a stale base
	writes sync.Mutex

	config     *config
	reconciler reconciler.Reconciler

	// Event hooks
	hooks *hooks
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	c := &client{
		config: defaultConfig(),
		hooks:  newHooks(),
	}
	if err := c.config.apply(opts...); err != nil {
		return nil, err
	}

	switch {
	case c.config.initialCatalog != nil:
		c.catalog = c.config.initialCatalog.Clone()
	case c.config.catalogFile != "":
		cat, err := catalogs.Load(c.config.catalogFile)
		if err != nil {
			return nil, err
		}
		c.catalog = cat
	default:
		c.catalog = catalogs.New()
	}

	rec, err := reconciler.New(c.config.reconcilerOptions...)
	if err != nil {
		return nil, err
	}
	c.reconciler = rec
	return c, nil
}

// Catalog returns a copy of the current catalogue.
func (c *client) Catalog() *catalogs.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog.Clone()
}

// Ingest merges src into the current catalogue. On error the catalogue
// is left unchanged.
func (c *client) Ingest(ctx context.Context, src *sources.Catalog) (*reconciler.Result, error) {
	if src == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "cannot be nil"}
	}
	c.writes.Lock()
	defer c.writes.Unlock()

	// Step 1: Reconcile against the current snapshot
	c.mu.RLock()
	base := c.catalog
	c.mu.RUnlock()

	result, err := c.reconciler.Ingest(ctx, base, src)
	if err != nil {
		return nil, err
	}

	// Step 2: Persist the snapshot before publishing it
	if c.config.store != nil {
		if _, err := c.config.store.Save(ctx, src.Tag, result.Catalog); err != nil {
			return nil, err
		}
	}

	// Step 3: Publish and notify
	c.setCatalog(result.Catalog)
	c.hooks.triggerIngest(result)

	logging.FromContext(ctx).Info().Msg(result.Summary())
	return result, nil
}

// IngestSource resolves tag in cfg, loads its file and ingests it.
func (c *client) IngestSource(ctx context.Context, cfg *sources.Config, dataDir, tag string) (*reconciler.Result, error) {
	spec, err := cfg.Lookup(tag)
	if err != nil {
		return nil, err
	}
	src, err := sources.Load(ctx, dataDir, tag, spec)
	if err != nil {
		return nil, err
	}
	return c.Ingest(ctx, src)
}

// Process runs the membership pipeline over the current catalogue and
// replaces it with the validated copy.
func (c *client) Process(ctx context.Context, classifier membership.Classifier, frames membership.FrameSource, opts ...membership.Option) (*membership.Report, error) {
	pipeline, err := membership.NewPipeline(classifier, frames, opts...)
	if err != nil {
		return nil, err
	}
	c.writes.Lock()
	defer c.writes.Unlock()

	c.mu.RLock()
	base := c.catalog
	c.mu.RUnlock()

	report, err := pipeline.Run(ctx, base)
	if err != nil {
		return nil, err
	}
	if c.config.store != nil {
		if _, err := c.config.store.Save(ctx, "members:"+report.RunID, report.Catalog); err != nil {
			return nil, err
		}
	}

	c.setCatalog(report.Catalog)
	c.hooks.triggerProcess(report)
	return report, nil
}

// Save writes the current catalogue to path.
func (c *client) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return catalogs.Save(path, c.catalog)
}

// OnClusterAdded registers a callback for clusters created by an ingestion pass.
func (c *client) OnClusterAdded(fn ClusterAddedHook) { c.hooks.OnClusterAdded(fn) }

// OnClusterMerged registers a callback for clusters that absorbed entries.
func (c *client) OnClusterMerged(fn ClusterMergedHook) { c.hooks.OnClusterMerged(fn) }

// OnClusterProcessed registers a callback for validated clusters.
func (c *client) OnClusterProcessed(fn ClusterProcessedHook) { c.hooks.OnClusterProcessed(fn) }

func (c *client) setCatalog(cat *catalogs.Catalog) {
	c.mu.Lock()
	c.catalog = cat
	c.mu.Unlock()
}
