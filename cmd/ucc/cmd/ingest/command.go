// Package ingest provides the command that merges one source catalogue
// into the combined catalogue.
package ingest

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ucc-astro/ucc"
	"github.com/ucc-astro/ucc/cmd/application"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/sources"
	"github.com/ucc-astro/ucc/pkg/store/sqlite"
)

// now is replaced in tests to pin the dated output name.
var now = time.Now

// NewCommand creates the ingest command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		outFlag   string
		storeFlag string
		dryFlag   bool
	)

	cmd := &cobra.Command{
		Use:     "ingest <tag>",
		GroupID: "core",
		Short:   "Merge a source catalogue into the combined catalogue",
		Long: `Ingest reads the source catalogue registered under <tag> in the
sources file, matches its entries to existing clusters by name, merges
or adds them, assigns positional identifiers and flags nearby duplicates.

The updated catalogue is written as UCC_cat_<YYYYMMDD>.csv in the output
directory unless --out names a file.`,
		Example: `  ucc ingest CANTAT20
  ucc ingest HUNT23 --out catalogue.csv
  ucc ingest KHARCHENKO12 --dry`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tag := args[0]
			settings := app.Settings()
			if storeFlag == "" {
				storeFlag = settings.StoreFile
			}

			cfg, err := sources.LoadConfig(settings.SourcesFile)
			if err != nil {
				return err
			}

			var opts []ucc.Option
			if storeFlag != "" && !dryFlag {
				st, err := sqlite.Open(ctx, storeFlag)
				if err != nil {
					return err
				}
				defer func() { _ = st.Close() }()
				opts = append(opts, ucc.WithSnapshotStore(st))
			}

			client, err := app.Client(opts...)
			if err != nil {
				return err
			}

			res, err := client.IngestSource(ctx, cfg, settings.DataDir, tag)
			if err != nil {
				return err
			}
			for _, a := range res.Ambiguities {
				logging.FromContext(ctx).Warn().
					Int("entry", a.Entry).
					Strs("fnames", a.Fnames).
					Strs("records", a.Records).
					Msg("Ambiguous match")
			}
			for _, w := range res.IDWarnings {
				logging.FromContext(ctx).Warn().Str("positional_id", w).Msg("Identifier could not be made unique")
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Summary())

			if dryFlag {
				return nil
			}
			path := outFlag
			if path == "" {
				path = OutputPath(settings.OutDir, now())
			}
			if err := client.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "output catalogue file (default <out_dir>/UCC_cat_<YYYYMMDD>.csv)")
	cmd.Flags().StringVar(&storeFlag, "store", "", "sqlite snapshot database")
	cmd.Flags().BoolVar(&dryFlag, "dry", false, "ingest without writing the catalogue or a snapshot")

	return cmd
}

// OutputPath returns the dated catalogue file name in dir.
func OutputPath(dir string, t time.Time) string {
	return filepath.Join(dir, "UCC_cat_"+t.Format("20060102")+".csv")
}
