package reconciler

import (
	"math"

	"github.com/ucc-astro/ucc/internal/stats"
	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/sky"
)

// tolerance is the largest separation still counted as the same cluster.
type tolerance struct {
	arcmin float64
	plx    float64
	pm     float64
}

// Fallback limits when the parallax difference is undefined.
var noParallax = tolerance{arcmin: 5, pm: 0.5}

// toleranceFor returns the limits that apply to a record of parallax plx.
// Nearby clusters are large on the sky and get wider limits.
func toleranceFor(plx float64) tolerance {
	switch {
	case plx >= 4:
		return tolerance{arcmin: 15, plx: 0.5, pm: 1}
	case plx >= 3:
		return tolerance{arcmin: 10, plx: 0.25, pm: 0.5}
	case plx >= 2:
		return tolerance{arcmin: 5, plx: 0.15, pm: 0.25}
	case plx >= 1:
		return tolerance{arcmin: 2.5, plx: 0.10, pm: 0.15}
	default:
		return tolerance{arcmin: 1, plx: 0.05, pm: 0.10}
	}
}

// isDuplicate applies the tiered decision rule to one neighbour.
func isDuplicate(arcmin, pmDist, plxDist, ownPlx float64) bool {
	tol := toleranceFor(ownPlx)
	pmOK := !math.IsNaN(pmDist)
	plxOK := !math.IsNaN(plxDist)

	switch {
	case plxOK && pmOK:
		return arcmin < tol.arcmin && pmDist < tol.pm && plxDist < tol.plx
	case plxOK:
		return arcmin < tol.arcmin && plxDist < tol.plx
	case pmOK:
		return arcmin < noParallax.arcmin && pmDist < noParallax.pm
	default:
		return arcmin < noParallax.arcmin
	}
}

// FindDuplicates returns, for every record, the primary fnames of the
// nearby records that look like the same cluster, nearest first. Only
// the k records closest in (glon, glat) are inspected. Entries are nil
// when nothing qualifies.
func FindDuplicates(cat *catalogs.Catalog, k int) [][]string {
	out := make([][]string, cat.Len())
	index := sky.NewIndex(cat.Positions())

	for i, r := range cat.Records {
		for _, n := range index.Neighbors(i, k) {
			o := cat.Records[n.Row]
			arcmin := sky.Round(sky.SeparationArcmin(r.GLON, r.GLAT, o.GLON, o.GLAT), 2)
			pmDist := stats.Distance([]float64{r.PMRA, r.PMDE}, []float64{o.PMRA, o.PMDE})
			plxDist := math.Abs(r.Plx - o.Plx)

			if isDuplicate(arcmin, pmDist, plxDist, r.Plx) {
				out[i] = append(out[i], o.PrimaryFname())
			}
		}
	}
	return out
}

// markDuplicates recomputes DuplicateFnames for the whole catalogue and
// returns how many records have at least one duplicate.
func markDuplicates(cat *catalogs.Catalog, k int) int {
	flagged := 0
	for i, dups := range FindDuplicates(cat, k) {
		cat.Records[i].DuplicateFnames = dups
		if len(dups) > 0 {
			flagged++
		}
	}
	return flagged
}
