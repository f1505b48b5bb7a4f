package ucc

import (
	"sync"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/membership"
	"github.com/ucc-astro/ucc/pkg/reconciler"
)

// Hook function types for cluster events
type (
	// ClusterAddedHook is called when an ingestion pass creates a cluster
	ClusterAddedHook func(record catalogs.Record)

	// ClusterMergedHook is called when an existing cluster absorbs source entries
	ClusterMergedHook func(record catalogs.Record)

	// ClusterProcessedHook is called when a cluster's membership is validated
	ClusterProcessedHook func(record catalogs.Record, result membership.ClusterResult)
)

// hooks manages event callbacks for catalogue changes
type hooks struct {
	mu                 sync.RWMutex
	onClusterAdded     []ClusterAddedHook
	onClusterMerged    []ClusterMergedHook
	onClusterProcessed []ClusterProcessedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnClusterAdded registers a callback for when clusters are added
func (h *hooks) OnClusterAdded(fn ClusterAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClusterAdded = append(h.onClusterAdded, fn)
}

// OnClusterMerged registers a callback for when clusters are merged
func (h *hooks) OnClusterMerged(fn ClusterMergedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClusterMerged = append(h.onClusterMerged, fn)
}

// OnClusterProcessed registers a callback for when clusters are processed
func (h *hooks) OnClusterProcessed(fn ClusterProcessedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClusterProcessed = append(h.onClusterProcessed, fn)
}

// triggerIngest calls the added and merged hooks with copies of the
// affected records, in first-creation order.
func (h *hooks) triggerIngest(res *reconciler.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, row := range res.Added {
		rec := *res.Catalog.Records[row].Clone()
		for _, hook := range h.onClusterAdded {
			hook(rec)
		}
	}
	for _, row := range res.Merged {
		rec := *res.Catalog.Records[row].Clone()
		for _, hook := range h.onClusterMerged {
			hook(rec)
		}
	}
}

// triggerProcess calls the processed hooks once per validated cluster.
func (h *hooks) triggerProcess(report *membership.Report) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, res := range report.Results {
		rec := *report.Catalog.Records[res.Row].Clone()
		for _, hook := range h.onClusterProcessed {
			hook(rec, res)
		}
	}
}
