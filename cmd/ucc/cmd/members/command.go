// Package members provides the command that validates cluster membership.
package members

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ucc-astro/ucc"
	"github.com/ucc-astro/ucc/cmd/application"
	"github.com/ucc-astro/ucc/internal/classifier"
	"github.com/ucc-astro/ucc/internal/frames"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/membership"
	"github.com/ucc-astro/ucc/pkg/store/sqlite"
)

// flags holds the command line flags of the members command.
type flags struct {
	classifier string
	frames     string
	globulars  string
	out        string
	artifacts  string
	store      string
	source     string
	job        int
	jobs       int
	workers    int
	timeout    time.Duration
}

// NewCommand creates the members command.
func NewCommand(app application.Application) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:     "members",
		GroupID: "core",
		Short:   "Validate cluster membership with an external classifier",
		Long: `Members runs the membership pipeline over the combined catalogue.

For every selected cluster the star frame is read from the frames
directory, the classifier command is run with the cluster and neighbour
centres, the probabilities are split into members and field and graded.
The catalogue is rewritten with the membership fields of every cluster
that was processed. A job of a split run (--job/--jobs) writes its own
file next to the catalogue instead, e.g. UCC_cat.job03of10.csv, so
concurrent jobs never overwrite each other.

The classifier command receives a JSON request on stdin and must print
{"probs": [...], "n_survived": N} on stdout.`,
		Example: `  ucc members --classifier "python fastmp.py"
  ucc members --classifier ./fit --job 3 --jobs 10
  ucc members --classifier ./fit --source HUNT23 --artifacts out/members`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, f)
		},
	}

	cmd.Flags().StringVar(&f.classifier, "classifier", "", "classifier command line (default classifier_cmd setting)")
	cmd.Flags().StringVar(&f.frames, "frames", "", "directory of per-cluster star frames (default frames_dir setting)")
	cmd.Flags().StringVar(&f.globulars, "gcs", "", "globular cluster table used as extra contaminants")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output catalogue file (default rewrites the input catalogue, or a per-job file with --jobs)")
	cmd.Flags().StringVar(&f.artifacts, "artifacts", "", "directory for per-cluster member files")
	cmd.Flags().StringVar(&f.store, "store", "", "sqlite snapshot database")
	cmd.Flags().StringVar(&f.source, "source", "", "only process clusters contributed by this source")
	cmd.Flags().IntVar(&f.job, "job", 0, "index of this job when the catalogue is split across jobs")
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "number of jobs the catalogue is split across")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "clusters processed concurrently (default workers setting)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "time limit of one classifier call")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, f *flags) error {
	ctx := cmd.Context()
	settings := app.Settings()
	f.defaults(settings)

	if settings.CatalogFile == "" {
		return errors.NewValidationError("catalog", "", "a catalogue file is required")
	}
	if f.classifier == "" {
		return errors.NewValidationError("classifier", "", "a classifier command is required")
	}

	// Step 1: external collaborators
	fit, err := classifier.New(f.classifier, classifier.WithTimeout(f.timeout))
	if err != nil {
		return err
	}
	source, err := frames.New(f.frames)
	if err != nil {
		return err
	}

	// Step 2: pipeline options
	opts := []membership.Option{
		membership.WithWorkers(f.workers),
		membership.WithNeighborClusters(settings.NeighborClusters),
		membership.WithMaxMagnitude(settings.MaxMagnitude),
		membership.WithSelection(membership.Selection{
			JobIndex:  f.job,
			JobCount:  f.jobs,
			SourceTag: f.source,
		}),
	}
	if f.globulars != "" {
		gcs, err := membership.LoadGlobulars(f.globulars)
		if err != nil {
			return err
		}
		opts = append(opts, membership.WithGlobulars(gcs))
	}
	if f.artifacts != "" {
		opts = append(opts, membership.WithArtifactDir(f.artifacts))
	}

	// Step 3: client with the optional snapshot store
	var clientOpts []ucc.Option
	if f.store != "" {
		st, err := sqlite.Open(ctx, f.store)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		clientOpts = append(clientOpts, ucc.WithSnapshotStore(st))
	}
	client, err := app.Client(clientOpts...)
	if err != nil {
		return err
	}
	if client.Catalog().Len() == 0 {
		return errors.NewValidationError("catalog", settings.CatalogFile, "catalogue is empty")
	}

	// Step 4: run and persist
	report, err := client.Process(ctx, fit, source, opts...)
	if err != nil {
		return err
	}
	for _, e := range report.Errors {
		logging.FromContext(ctx).Warn().Err(e).Msg("Cluster skipped")
	}
	printReport(cmd.OutOrStdout(), report)

	out := f.out
	if out == "" {
		out = settings.CatalogFile
		if f.jobs > 0 {
			out = ShardPath(settings.CatalogFile, f.job, f.jobs)
		}
	}
	if err := client.Save(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}

// defaults fills unset flags from the resolved settings.
func (f *flags) defaults(s application.Settings) {
	if f.classifier == "" {
		f.classifier = s.ClassifierCommand
	}
	if f.frames == "" {
		f.frames = s.FramesDir
	}
	if f.globulars == "" {
		f.globulars = s.GlobularsFile
	}
	if f.store == "" {
		f.store = s.StoreFile
	}
	if f.workers == 0 {
		f.workers = s.Workers
	}
	if f.artifacts != "" && !filepath.IsAbs(f.artifacts) && s.OutDir != "" {
		f.artifacts = filepath.Join(s.OutDir, f.artifacts)
	}
}

// ShardPath returns the default output file of job index of count jobs,
// derived from the catalogue file name.
func ShardPath(catalog string, index, count int) string {
	ext := filepath.Ext(catalog)
	return fmt.Sprintf("%s.job%02dof%02d%s", strings.TrimSuffix(catalog, ext), index, count, ext)
}

func printReport(w io.Writer, report *membership.Report) {
	fmt.Fprintf(w, "Run %s: %d selected, %d processed, %d failed in %s\n",
		report.RunID, report.Selected, report.Processed, len(report.Errors),
		report.Duration.Round(time.Millisecond))
	for _, r := range report.Results {
		fmt.Fprintf(w, "  %-24s N=%-5d %s %.2f\n", r.Fname, r.Membership.NMembers, r.Membership.ClassA, r.Membership.ClassB)
	}
}
