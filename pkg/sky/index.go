package sky

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// point is a galactic position tagged with the row it came from.
type point struct {
	lon, lat float64
	row      int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	if d == 0 {
		return p.lon - q.lon
	}
	return p.lat - q.lat
}

func (p point) Dims() int { return 2 }

// Distance is the squared planar distance in degree space.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	dx, dy := p.lon-q.lon, p.lat-q.lat
	return dx*dx + dy*dy
}

type points []point

func (p points) Index(i int) kdtree.Comparable { return p[i] }
func (p points) Len() int                      { return len(p) }
func (p points) Pivot(d kdtree.Dim) int {
	return plane{points: p, dim: d}.pivot()
}
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

type plane struct {
	points
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	if p.dim == 0 {
		return p.points[i].lon < p.points[j].lon
	}
	return p.points[i].lat < p.points[j].lat
}
func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

// Neighbor is one result of a nearest-neighbour query.
type Neighbor struct {
	Row      int
	Distance float64 // planar, degrees
}

// Index answers k-nearest queries over galactic (lon, lat) positions
// using planar distance in degree space. Rows with an undefined
// coordinate are left out of the tree.
type Index struct {
	tree *kdtree.Tree
	pos  []point
	size int
}

// NewIndex builds an index; row i of the result refers to lon[i], lat[i].
func NewIndex(lon, lat []float64) *Index {
	idx := &Index{pos: make([]point, len(lon))}
	pts := make(points, 0, len(lon))
	for i := range lon {
		p := point{lon: lon[i], lat: lat[i], row: i}
		idx.pos[i] = p
		if math.IsNaN(p.lon) || math.IsNaN(p.lat) {
			continue
		}
		pts = append(pts, p)
	}
	idx.size = len(pts)
	if len(pts) > 0 {
		idx.tree = kdtree.New(pts, false)
	}
	return idx
}

// Len reports the number of indexed positions.
func (x *Index) Len() int { return x.size }

// Neighbors returns the k rows nearest to row i, nearest first. Row i
// itself is excluded; other rows at zero distance are not.
func (x *Index) Neighbors(i, k int) []Neighbor {
	if i < 0 || i >= len(x.pos) || k <= 0 {
		return nil
	}
	p := x.pos[i]
	found := x.query(p, k+1)

	out := make([]Neighbor, 0, k)
	for _, n := range found {
		if n.Row == i {
			continue
		}
		out = append(out, n)
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Nearest returns the k rows nearest to an arbitrary position.
func (x *Index) Nearest(lon, lat float64, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	return x.query(point{lon: lon, lat: lat, row: -1}, k)
}

func (x *Index) query(q point, k int) []Neighbor {
	if x.tree == nil || math.IsNaN(q.lon) || math.IsNaN(q.lat) {
		return nil
	}
	keep := kdtree.NewNKeeper(k)
	x.tree.NearestSet(keep, q)

	out := make([]Neighbor, 0, len(keep.Heap))
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		out = append(out, Neighbor{Row: c.Comparable.(point).row, Distance: math.Sqrt(c.Dist)})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Distance != out[b].Distance {
			return out[a].Distance < out[b].Distance
		}
		return out[a].Row < out[b].Row
	})
	return out
}
