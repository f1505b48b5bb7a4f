package membership

import (
	"math"

	"github.com/ucc-astro/ucc/internal/stats"
	"github.com/ucc-astro/ucc/pkg/sky"
)

// Domain is one observable space a split is graded in.
type Domain int

const (
	DomainXY Domain = iota
	DomainPM
	DomainPlx
)

// Grade is the quality assessment of a split.
type Grade struct {
	// ClassA concatenates the letters of the xy, pm and plx domains.
	ClassA string
	// ClassB sums the capped member/field ratios of the three domains.
	ClassB float64

	Letters [3]string
	Ratios  [3]float64
	Members [3]int
	Field   [3]int
}

// GradeSplit grades each domain by comparing how many members and field
// stars fall within the median member distance from the member centre.
func GradeSplit(s *Split) Grade {
	var g Grade
	sum := 0.0
	for d := DomainXY; d <= DomainPlx; d++ {
		md := distances(s.Members, s.Center, d)
		fd := distances(s.Field, s.Center, d)
		radius := stats.Median(md)

		g.Members[d] = countBelow(md, radius)
		g.Field[d] = countBelow(fd, radius)
		g.Letters[d], g.Ratios[d] = classify(g.Members[d], g.Field[d])
		g.ClassA += g.Letters[d]
		sum += g.Ratios[d]
	}
	g.ClassB = sky.Round(sum, 2)
	return g
}

// classify turns a member and field count into a letter and a ratio
// capped at one.
func classify(nm, nf int) (string, float64) {
	if nm == 0 {
		return "D", 0
	}
	if nf == 0 {
		return "A", 1
	}
	ratio := float64(nm) / float64(nf)
	switch {
	case ratio >= 1:
		return "A", 1
	case ratio >= 0.5:
		return "B", ratio
	case ratio > 0.1:
		return "C", ratio
	}
	return "D", ratio
}

func distances(cs []Candidate, c Center, d Domain) []float64 {
	out := make([]float64, len(cs))
	for i, s := range cs {
		switch d {
		case DomainXY:
			out[i] = math.Hypot(s.GLON-c.GLON, s.GLAT-c.GLAT)
		case DomainPM:
			out[i] = math.Hypot(s.PMRA-c.PMRA, s.PMDE-c.PMDE)
		case DomainPlx:
			out[i] = math.Abs(s.Plx - c.Plx)
		}
	}
	return out
}

// countBelow counts values strictly below limit; undefined values never count.
func countBelow(xs []float64, limit float64) int {
	n := 0
	for _, x := range xs {
		if x < limit {
			n++
		}
	}
	return n
}
