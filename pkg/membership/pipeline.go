// Package membership validates the stellar membership of catalogue
// clusters. For every selected cluster it retrieves a frame of candidate
// stars, runs the external classifier under the centre validation state
// machine, splits members from field, grades the split and buffers the
// result; results are written back to a copy of the catalogue once every
// cluster has been processed.
package membership

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
)

// Pipeline processes the clusters of a catalogue.
type Pipeline struct {
	validator *CenterValidator
	frames    FrameSource
	options   *options
}

// NewPipeline returns a pipeline using classifier and frames.
func NewPipeline(classifier Classifier, frames FrameSource, opts ...Option) (*Pipeline, error) {
	if classifier == nil {
		return nil, &errors.ValidationError{Field: "classifier", Message: "cannot be nil"}
	}
	if frames == nil {
		return nil, &errors.ValidationError{Field: "frames", Message: "cannot be nil"}
	}
	options, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		validator: NewCenterValidator(classifier),
		frames:    frames,
		options:   options,
	}, nil
}

// ClusterResult is the buffered outcome of one cluster.
type ClusterResult struct {
	Row        int
	Fname      string
	Membership catalogs.Membership
	Validation *Validation
	Grade      Grade
	Artifact   string
	Duration   time.Duration
}

// Report summarises a run.
type Report struct {
	RunID string

	// Catalog is a copy of the input with the membership fields of every
	// successfully processed cluster replaced.
	Catalog *catalogs.Catalog

	Selected  int
	Processed int
	Results   []ClusterResult
	Errors    []error

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Run processes the selected clusters of cat. Per-cluster failures are
// collected in the report; only cancellation aborts the run.
func (p *Pipeline) Run(ctx context.Context, cat *catalogs.Catalog) (*Report, error) {
	report := &Report{RunID: ulid.Make().String(), StartTime: time.Now()}
	ctx = logging.WithRun(ctx, report.RunID)
	logger := logging.FromContext(ctx)

	rows := p.options.selection.Rows(cat)
	report.Selected = len(rows)
	neighbors := NewNeighbors(cat, p.options.globulars, p.options.neighbors)

	logger.Info().
		Int("selected", len(rows)).
		Int("workers", p.options.workers).
		Msg("Starting membership run")

	results := make([]*ClusterResult, len(rows))
	failures := make([]error, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.options.workers)
	for k, row := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.processCluster(gctx, cat, neighbors, row)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logging.FromContext(gctx).Error().
					Err(err).
					Str("cluster", cat.PrimaryFname(row)).
					Msg("Cluster failed")
				failures[k] = err
				return nil
			}
			results[k] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.WrapCanceled(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled(err)
	}

	// Write back only after every cluster is done
	out := cat.Clone()
	for _, res := range results {
		if res == nil {
			continue
		}
		m := res.Membership
		out.Records[res.Row].Membership = &m
		report.Results = append(report.Results, *res)
	}
	for _, err := range failures {
		if err != nil {
			report.Errors = append(report.Errors, err)
		}
	}
	report.Catalog = out
	report.Processed = len(report.Results)
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	logger.Info().
		Int("processed", report.Processed).
		Int("failed", len(report.Errors)).
		Dur("duration", report.Duration).
		Msg("Membership run complete")
	return report, nil
}

// processCluster runs every stage for one record.
func (p *Pipeline) processCluster(ctx context.Context, cat *catalogs.Catalog, neighbors *Neighbors, row int) (*ClusterResult, error) {
	start := time.Now()
	rec := cat.Records[row]
	fname := rec.PrimaryFname()
	ctx = logging.WithCluster(ctx, fname)

	// Step 1: Contaminants and frame
	excluded := neighbors.Excluded(row)
	frame, err := p.frames.Frame(ctx, rec, QueryFor(rec, p.options.maxMag))
	if err != nil {
		return nil, errors.NewClusterError(fname, "frame", err)
	}

	// Step 2: Classifier under centre validation
	val, err := p.validator.Validate(ctx, frame, CenterOf(rec), excluded)
	if err != nil {
		return nil, errors.NewClusterError(fname, "classifier", err)
	}

	// Step 3: Members, field and grades
	split, err := SplitMembers(frame, val.Probs)
	if err != nil {
		return nil, errors.NewClusterError(fname, "split", err)
	}
	grade := GradeSplit(split)

	res := &ClusterResult{
		Row:        row,
		Fname:      fname,
		Validation: val,
		Grade:      grade,
		Membership: catalogs.Membership{
			R50:          split.R50,
			NMembers:     val.NSurvived,
			FixedCenters: val.FixedCenters,
			CenterFlags:  val.Flags.String(),
			ClassA:       grade.ClassA,
			ClassB:       grade.ClassB,
		},
	}

	// Step 4: Artifact
	if p.options.artifactDir != "" {
		if res.Artifact, err = WriteArtifact(p.options.artifactDir, rec, split); err != nil {
			return nil, errors.NewClusterError(fname, "artifact", err)
		}
	}

	res.Duration = time.Since(start)
	logging.FromContext(ctx).Debug().
		Int("members", len(split.Members)).
		Str("class", grade.ClassA).
		Float64("r50", split.R50).
		Dur("duration", res.Duration).
		Msg("Cluster processed")
	return res, nil
}
