package membership

import (
	"math"
	"sort"

	"github.com/ucc-astro/ucc/internal/stats"
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/sky"
)

// Candidate is a star with its membership probability.
type Candidate struct {
	Star
	Prob float64
}

// Split is the final partition of a frame into members and field.
type Split struct {
	// Combined holds every star kept by the spatial window, in frame order.
	Combined []Candidate
	Members  []Candidate
	Field    []Candidate

	// Center is the median centre of the members.
	Center Center
	// R50 is the member half-number radius in arc-minutes.
	R50 float64
}

// SplitMembers separates members from field stars. A provisional member
// set fixes a square window of half-width twice the 95th percentile of
// member distances; stars outside it are dropped unless their
// probability is at least one half. The members of the kept set are then
// selected again from the rounded probabilities.
func SplitMembers(frame *Frame, probs []float64) (*Split, error) {
	n := frame.Len()
	if n == 0 {
		return nil, errors.NewValidationError("frame", 0, "no candidate stars")
	}
	if len(probs) != n {
		return nil, errors.NewValidationError("probs", len(probs), "length does not match the frame")
	}

	// Provisional members and their centre
	provisional := stats.TopMask(probs, constants.MemberProbability, constants.MinMembers)
	lon, lat := frameColumns(frame.Stars)
	cx := stats.Median(stats.Select(lon, provisional))
	cy := stats.Median(stats.Select(lat, provisional))

	dist := make([]float64, n)
	for i := range frame.Stars {
		dist[i] = math.Hypot(lon[i]-cx, lat[i]-cy)
	}
	half := constants.WindowScale * stats.Percentile(stats.Select(dist, provisional), constants.WindowPercentile)

	// Spatial window, never dropping a likely member
	split := &Split{}
	var kept []float64
	for i, s := range frame.Stars {
		inWindow := math.Abs(lon[i]-cx) <= half && math.Abs(lat[i]-cy) <= half
		if !inWindow && !(probs[i] >= constants.MemberProbability) {
			continue
		}
		p := sky.Round(probs[i], constants.ProbabilityDecimals)
		split.Combined = append(split.Combined, Candidate{Star: s, Prob: p})
		kept = append(kept, p)
	}

	// Final members within the kept set
	final := stats.TopMask(kept, constants.MemberProbability, constants.MinMembers)
	for i, c := range split.Combined {
		if final[i] {
			split.Members = append(split.Members, c)
		} else {
			split.Field = append(split.Field, c)
		}
	}

	split.Center, split.R50 = memberCenter(split.Members)
	return split, nil
}

// memberCenter returns the median centre of the members and the
// distance, in arc-minutes, of the member at the middle rank.
func memberCenter(members []Candidate) (Center, float64) {
	stars := make([]Star, len(members))
	for i, m := range members {
		stars[i] = m.Star
	}
	lon, lat := frameColumns(stars)
	pmra, pmde, plx := kinematicColumns(stars)

	c := Center{
		GLON: stats.Median(lon),
		GLAT: stats.Median(lat),
		PMRA: stats.Median(pmra),
		PMDE: stats.Median(pmde),
		Plx:  stats.Median(plx),
	}
	if len(members) == 0 {
		return c, math.NaN()
	}

	dist := make([]float64, len(members))
	for i := range members {
		dist[i] = math.Hypot(lon[i]-c.GLON, lat[i]-c.GLAT)
	}
	sortNaNLast(dist)
	return c, sky.Round(dist[len(dist)/2]*60, 1)
}

// sortNaNLast sorts xs ascending with undefined values at the end.
func sortNaNLast(xs []float64) {
	sort.Slice(xs, func(i, j int) bool {
		if math.IsNaN(xs[j]) {
			return !math.IsNaN(xs[i])
		}
		return xs[i] < xs[j]
	})
}

func frameColumns(stars []Star) (lon, lat []float64) {
	lon = make([]float64, len(stars))
	lat = make([]float64, len(stars))
	for i, s := range stars {
		lon[i], lat[i] = s.GLON, s.GLAT
	}
	return lon, lat
}

func kinematicColumns(stars []Star) (pmra, pmde, plx []float64) {
	pmra = make([]float64, len(stars))
	pmde = make([]float64, len(stars))
	plx = make([]float64, len(stars))
	for i, s := range stars {
		pmra[i], pmde[i], plx[i] = s.PMRA, s.PMDE, s.Plx
	}
	return pmra, pmde, plx
}
