package sky

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(ns []Neighbor) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Row
	}
	return out
}

func TestIndexNeighbors(t *testing.T) {
	lon := []float64{0, 1, 3, 6, 10}
	lat := []float64{0, 0, 0, 0, 0}
	idx := NewIndex(lon, lat)
	require.Equal(t, 5, idx.Len())

	t.Run("excludes self and orders nearest first", func(t *testing.T) {
		got := idx.Neighbors(0, 3)
		assert.Equal(t, []int{1, 2, 3}, rows(got))
		assert.InDelta(t, 1.0, got[0].Distance, 1e-12)
		assert.InDelta(t, 6.0, got[2].Distance, 1e-12)
	})

	t.Run("k larger than catalogue", func(t *testing.T) {
		got := idx.Neighbors(2, 10)
		assert.Len(t, got, 4)
		assert.Equal(t, 1, got[0].Row)
	})

	t.Run("out of range row", func(t *testing.T) {
		assert.Nil(t, idx.Neighbors(9, 3))
		assert.Nil(t, idx.Neighbors(0, 0))
	})
}

func TestIndexCoincidentRowsKept(t *testing.T) {
	idx := NewIndex([]float64{5, 5, 8}, []float64{1, 1, 1})

	got := idx.Neighbors(0, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Row)
	assert.Zero(t, got[0].Distance)
	assert.Equal(t, 2, got[1].Row)
}

func TestIndexSkipsUndefined(t *testing.T) {
	idx := NewIndex([]float64{0, math.NaN(), 2}, []float64{0, 0, 0})
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []int{2}, rows(idx.Neighbors(0, 5)))
	assert.Nil(t, idx.Neighbors(1, 5))
}

func TestIndexNearest(t *testing.T) {
	idx := NewIndex([]float64{0, 10, 20}, []float64{0, 0, 0})
	got := idx.Nearest(12, 1, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Row)

	empty := NewIndex(nil, nil)
	assert.Nil(t, empty.Nearest(0, 0, 3))
}
