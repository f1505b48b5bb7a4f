package reconciler

import (
	"github.com/ucc-astro/ucc/internal/stats"
	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/names"
	"github.com/ucc-astro/ucc/pkg/sky"
	"github.com/ucc-astro/ucc/pkg/sources"
)

// newRecord builds a fresh record from an unmatched source entry. Its
// positional ID and duplicate list stay undefined.
func newRecord(tag string, e sources.Entry) *catalogs.Record {
	r := catalogs.NewRecord()
	r.SourceDBs = []string{tag}
	r.SourceIndices = []int{e.Index}
	r.Names = names.PreferSpaced(names.Unique(e.Names))
	r.Fnames = names.Unique(e.Fnames)
	r.RA, r.Dec = e.RA, e.Dec
	r.Plx, r.PMRA, r.PMDE = e.Plx, e.PMRA, e.PMDE
	place(r, e.RA, e.Dec)
	return r
}

// mergeEntry folds a source entry into an existing record. The record
// keeps its positional ID and duplicate list.
func mergeEntry(r *catalogs.Record, tag string, e sources.Entry) {
	ra := stats.PairMedian(r.RA, e.RA)
	dec := stats.PairMedian(r.Dec, e.Dec)
	r.Plx = stats.PairMedian(r.Plx, e.Plx)
	r.PMRA = stats.PairMedian(r.PMRA, e.PMRA)
	r.PMDE = stats.PairMedian(r.PMDE, e.PMDE)

	r.SourceDBs = append(r.SourceDBs, tag)
	r.SourceIndices = append(r.SourceIndices, e.Index)
	r.Names = names.PreferSpaced(names.Unique(append(r.Names, e.Names...)))
	r.Fnames = names.Unique(append(r.Fnames, e.Fnames...))
	place(r, ra, dec)
}

// mergeRecords folds src into dst, used when one entry bridges records.
func mergeRecords(dst, src *catalogs.Record) {
	ra := stats.PairMedian(dst.RA, src.RA)
	dec := stats.PairMedian(dst.Dec, src.Dec)
	dst.Plx = stats.PairMedian(dst.Plx, src.Plx)
	dst.PMRA = stats.PairMedian(dst.PMRA, src.PMRA)
	dst.PMDE = stats.PairMedian(dst.PMDE, src.PMDE)

	dst.SourceDBs = append(dst.SourceDBs, src.SourceDBs...)
	dst.SourceIndices = append(dst.SourceIndices, src.SourceIndices...)
	dst.Names = names.PreferSpaced(names.Unique(append(dst.Names, src.Names...)))
	dst.Fnames = names.Unique(append(dst.Fnames, src.Fnames...))
	if dst.PositionalID == "" {
		dst.PositionalID = src.PositionalID
	}
	place(dst, ra, dec)
}

// place sets the rounded equatorial position and the galactic position
// derived from the unrounded one.
func place(r *catalogs.Record, ra, dec float64) {
	lon, lat := sky.ToGalactic(ra, dec)
	r.RA = sky.Round(ra, constants.CoordinateDecimals)
	r.Dec = sky.Round(dec, constants.CoordinateDecimals)
	r.GLON = sky.Round(lon, constants.CoordinateDecimals)
	if r.GLON >= 360 {
		r.GLON -= 360
	}
	r.GLAT = sky.Round(lat, constants.CoordinateDecimals)
}
