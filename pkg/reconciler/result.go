package reconciler

import (
	"fmt"
	"time"

	"github.com/ucc-astro/ucc/pkg/catalogs"
)

// Result represents the outcome of an ingestion pass.
type Result struct {
	// Core data
	Catalog *catalogs.Catalog

	// Catalog rows of records created and of records that absorbed
	// at least one entry, in first-creation order.
	Added  []int
	Merged []int

	// Issues
	Ambiguities []Ambiguity
	IDWarnings  []string

	// Metadata
	Metadata ResultMetadata
}

// Ambiguity describes a source entry whose names hit several records.
type Ambiguity struct {
	Entry    int
	Fnames   []string
	Records  []string // primary fnames of the records hit, first hit first
	Resolved AmbiguityPolicy
}

// ResultMetadata contains metadata about the ingestion pass.
type ResultMetadata struct {
	// StartTime when ingestion started
	StartTime time.Time

	// EndTime when ingestion completed
	EndTime time.Time

	// Duration of the ingestion
	Duration time.Duration

	// Source is the tag of the ingested catalogue
	Source string

	// Policy used for ambiguous name collisions
	Policy AmbiguityPolicy

	// Statistics about the pass
	Stats ResultStatistics
}

// ResultStatistics contains counters for one ingestion pass.
type ResultStatistics struct {
	Entries         int
	RecordsBefore   int
	RecordsAfter    int
	Added           int
	Merged          int
	Absorbed        int
	IDsAssigned     int
	DuplicateGroups int
}

// HasWarnings reports whether the pass produced anything needing follow-up.
func (r *Result) HasWarnings() bool {
	return len(r.Ambiguities) > 0 || len(r.IDWarnings) > 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	msg := fmt.Sprintf("Ingested %s: %d entries, %d new clusters, %d merged, %d records total",
		r.Metadata.Source, s.Entries, s.Added, s.Merged, s.RecordsAfter)
	if len(r.Ambiguities) > 0 {
		msg += fmt.Sprintf(", %d ambiguous matches", len(r.Ambiguities))
	}
	if len(r.IDWarnings) > 0 {
		msg += fmt.Sprintf(", %d identifier errors", len(r.IDWarnings))
	}
	return msg
}

// newResult creates a new result with defaults.
func newResult(source string, policy AmbiguityPolicy) *Result {
	return &Result{
		Added:  []int{},
		Merged: []int{},
		Metadata: ResultMetadata{
			StartTime: time.Now(),
			Source:    source,
			Policy:    policy,
		},
	}
}
