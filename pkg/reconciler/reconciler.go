// Package reconciler merges a source catalogue into the combined open
// cluster catalogue. An ingestion pass matches source entries to existing
// records by normalised name, merges or creates records, assigns
// positional identifiers to new records and recomputes the duplicate
// candidates of every record.
package reconciler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/sources"
)

// Reconciler ingests source catalogues into a combined catalogue.
type Reconciler interface {
	// Ingest merges src into base and returns the next catalogue
	// snapshot. base is not modified.
	Ingest(ctx context.Context, base *catalogs.Catalog, src *sources.Catalog) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	duplicateNeighbors int
	policy             AmbiguityPolicy
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		duplicateNeighbors: options.duplicateNeighbors,
		policy:             options.policy,
	}, nil
}

// slot is a record being worked on during a pass.
type slot struct {
	rec     *catalogs.Record
	prior   bool // taken from the base catalogue
	touched bool // absorbed at least one entry, or created in this pass
	removed bool // folded into another record
}

// ingestContext holds shared state for one pass.
type ingestContext struct {
	tag     string
	slots   []*slot
	order   []int // touched slots in first-creation order
	matcher *matcher
	logger  *zerolog.Logger
	result  *Result
}

// Ingest performs one ingestion pass.
func (r *reconciler) Ingest(ctx context.Context, base *catalogs.Catalog, src *sources.Catalog) (*Result, error) {
	if src == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "cannot be nil"}
	}

	// Step 1: Index the base catalogue
	ictx := r.initialize(ctx, base, src)

	// Step 2: Match and merge every entry
	for _, e := range src.Entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled(err)
		}
		if err := r.ingestEntry(ictx, e); err != nil {
			return nil, err
		}
	}

	// Step 3: Assemble the next snapshot
	cat := ictx.snapshot()

	// Step 4: Assign positional identifiers to records without one
	set := NewIDSet(cat.PositionalIDs()...)
	assigned, warnings := AssignIDs(cat.Records, set)
	for _, id := range warnings {
		ictx.logger.Error().
			Str("positional_id", id).
			Msg("Positional identifier collision letters exhausted")
	}

	// Step 5: Recompute duplicates over the whole catalogue
	groups := markDuplicates(cat, r.duplicateNeighbors)

	return r.result(ictx, cat, base.Len(), len(src.Entries), assigned, warnings, groups), nil
}

// initialize clones the base catalogue into working slots and indexes
// their fnames.
func (r *reconciler) initialize(ctx context.Context, base *catalogs.Catalog, src *sources.Catalog) *ingestContext {
	logger := logging.FromContext(logging.WithSource(ctx, src.Tag))

	ictx := &ingestContext{
		tag:     src.Tag,
		slots:   make([]*slot, 0, base.Len()+len(src.Entries)),
		matcher: newMatcher(base.Len() * 2),
		logger:  logger,
		result:  newResult(src.Tag, r.policy),
	}
	for i := 0; i < base.Len(); i++ {
		rec := base.Records[i].Clone()
		ictx.slots = append(ictx.slots, &slot{rec: rec, prior: true})
		ictx.matcher.claim(rec.Fnames, i)
	}

	logger.Debug().
		Int("records", base.Len()).
		Int("entries", len(src.Entries)).
		Str("policy", r.policy.String()).
		Msg("Starting ingestion")
	return ictx
}

// ingestEntry merges one source entry into the working set.
func (r *reconciler) ingestEntry(ictx *ingestContext, e sources.Entry) error {
	first, hits := ictx.matcher.match(e.Fnames)

	if len(hits) > 1 {
		if err := r.resolveAmbiguity(ictx, e, first, hits); err != nil {
			return err
		}
	}

	if first < 0 {
		s := len(ictx.slots)
		ictx.slots = append(ictx.slots, &slot{rec: newRecord(ictx.tag, e), touched: true})
		ictx.order = append(ictx.order, s)
		ictx.matcher.claim(e.Fnames, s)
		ictx.result.Metadata.Stats.Added++
		return nil
	}

	target := ictx.slots[first]
	mergeEntry(target.rec, ictx.tag, e)
	ictx.matcher.claim(e.Fnames, first)
	if !target.touched {
		target.touched = true
		ictx.order = append(ictx.order, first)
	}
	ictx.result.Metadata.Stats.Merged++
	return nil
}

// resolveAmbiguity applies the configured policy to an entry whose names
// hit several records.
func (r *reconciler) resolveAmbiguity(ictx *ingestContext, e sources.Entry, first int, hits []int) error {
	if r.policy == PolicyReject {
		return errors.NewMergeError(ictx.tag, e.Index, e.Fnames, hits)
	}

	amb := Ambiguity{Entry: e.Index, Fnames: e.Fnames, Resolved: r.policy}
	for _, h := range hits {
		amb.Records = append(amb.Records, ictx.slots[h].rec.PrimaryFname())
	}
	ictx.result.Ambiguities = append(ictx.result.Ambiguities, amb)

	ictx.logger.Warn().
		Int("entry", e.Index).
		Strs("fnames", e.Fnames).
		Strs("records", amb.Records).
		Str("policy", r.policy.String()).
		Msg("Source entry matches several catalogue records")

	if r.policy != PolicyMergeAll {
		return nil
	}

	target := ictx.slots[first]
	for _, h := range hits {
		if h == first {
			continue
		}
		other := ictx.slots[h]
		mergeRecords(target.rec, other.rec)
		other.removed = true
		ictx.matcher.reassign(h, first)
		ictx.result.Metadata.Stats.Absorbed++
	}
	if !target.touched {
		target.touched = true
		ictx.order = append(ictx.order, first)
	}
	return nil
}

// snapshot returns the untouched prior records in their original order
// followed by the records touched in this pass in first-creation order.
func (ictx *ingestContext) snapshot() *catalogs.Catalog {
	cat := catalogs.New()
	for _, s := range ictx.slots {
		if s.prior && !s.touched && !s.removed {
			cat.Records = append(cat.Records, s.rec)
		}
	}
	for _, i := range ictx.order {
		s := ictx.slots[i]
		if s.removed {
			continue
		}
		row := len(cat.Records)
		cat.Records = append(cat.Records, s.rec)
		if s.prior {
			ictx.result.Merged = append(ictx.result.Merged, row)
		} else {
			ictx.result.Added = append(ictx.result.Added, row)
		}
	}
	return cat
}

// result builds the final result.
func (r *reconciler) result(ictx *ingestContext, cat *catalogs.Catalog, before, entries, assigned int, warnings []string, groups int) *Result {
	res := ictx.result
	res.Catalog = cat
	res.IDWarnings = warnings

	stats := &res.Metadata.Stats
	stats.Entries = entries
	stats.RecordsBefore = before
	stats.RecordsAfter = cat.Len()
	stats.IDsAssigned = assigned
	stats.DuplicateGroups = groups

	res.Metadata.EndTime = time.Now()
	res.Metadata.Duration = res.Metadata.EndTime.Sub(res.Metadata.StartTime)

	ictx.logger.Info().
		Int("added", stats.Added).
		Int("merged", stats.Merged).
		Int("records", stats.RecordsAfter).
		Int("ids_assigned", assigned).
		Int("ambiguities", len(res.Ambiguities)).
		Dur("duration", res.Metadata.Duration).
		Msg("Ingestion complete")
	return res
}
