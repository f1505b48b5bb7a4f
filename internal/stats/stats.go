// Package stats holds the NaN-aware reductions shared by catalogue
// merging and membership validation.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Defined returns the values of xs that are not NaN, in order.
func Defined(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Median is the median of the defined values of xs, NaN when none are.
func Median(xs []float64) float64 {
	v := Defined(xs)
	n := len(v)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

// Percentile is the p-th percentile (0..100) of the defined values of xs
// using linear interpolation between closest ranks at position
// p/100*(n-1).
func Percentile(xs []float64, p float64) float64 {
	v := Defined(xs)
	n := len(v)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(v)
	pos := p / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	frac := pos - float64(lo)
	return v[lo] + (v[hi]-v[lo])*frac
}

// Rank returns the indices of xs ordered by descending value. NaN ranks
// last; ties keep their original order.
func Rank(xs []float64) []int {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		xa, xb := xs[idx[a]], xs[idx[b]]
		if math.IsNaN(xb) {
			return !math.IsNaN(xa)
		}
		return xa > xb
	})
	return idx
}

// TopMask marks every value above threshold. When fewer than min values
// qualify, the min highest values are marked instead.
func TopMask(xs []float64, threshold float64, min int) []bool {
	mask := make([]bool, len(xs))
	count := 0
	for i, x := range xs {
		if x > threshold {
			mask[i] = true
			count++
		}
	}
	if count >= min {
		return mask
	}
	for i := range mask {
		mask[i] = false
	}
	for _, i := range Rank(xs)[:minInt(min, len(xs))] {
		mask[i] = true
	}
	return mask
}

// Count reports how many entries of mask are set.
func Count(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}

// Select returns xs[i] for every set mask[i].
func Select(xs []float64, mask []bool) []float64 {
	out := make([]float64, 0, Count(mask))
	for i, m := range mask {
		if m {
			out = append(out, xs[i])
		}
	}
	return out
}

// Distance is the Euclidean distance between a and b; NaN if any
// coordinate is undefined.
func Distance(a, b []float64) float64 {
	if floats.HasNaN(a) || floats.HasNaN(b) {
		return math.NaN()
	}
	return floats.Distance(a, b, 2)
}

// PairMedian combines two measurements of the same quantity: their mean
// when both are defined, otherwise whichever is.
func PairMedian(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return (a + b) / 2
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
