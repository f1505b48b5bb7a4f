package membership

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/sky"
)

// Globular is a globular cluster, always passed to the classifier as a
// contaminant when it is the nearest one to the cluster being processed.
type Globular struct {
	Name string
	Center
}

// Neighbors finds the known clusters near a record that the classifier
// should treat as contaminants.
type Neighbors struct {
	cat       *catalogs.Catalog
	index     *sky.Index
	globulars []Globular
	gcIndex   *sky.Index
	k         int
}

// NewNeighbors indexes the catalogue and the globular clusters once so
// every cluster of a run shares the same lookup.
func NewNeighbors(cat *catalogs.Catalog, globulars []Globular, k int) *Neighbors {
	lon := make([]float64, len(globulars))
	lat := make([]float64, len(globulars))
	for i, g := range globulars {
		lon[i], lat[i] = g.GLON, g.GLAT
	}
	return &Neighbors{
		cat:       cat,
		index:     sky.NewIndex(cat.Positions()),
		globulars: globulars,
		gcIndex:   sky.NewIndex(lon, lat),
		k:         k,
	}
}

// Excluded returns the contaminant centres for record row: its k nearest
// catalogue neighbours that are neither flagged duplicates nor lacking
// kinematics, then the nearest globular cluster.
func (n *Neighbors) Excluded(row int) []Center {
	rec := n.cat.Records[row]
	dups := make(map[string]struct{}, len(rec.DuplicateFnames))
	for _, d := range rec.DuplicateFnames {
		dups[d] = struct{}{}
	}

	var out []Center
	for _, nb := range n.index.Neighbors(row, n.k) {
		other := n.cat.Records[nb.Row]
		if sharesName(other.Fnames, dups) {
			continue
		}
		if math.IsNaN(other.PMRA) || math.IsNaN(other.Plx) {
			continue
		}
		out = append(out, CenterOf(other))
	}

	if gc := n.gcIndex.Nearest(rec.GLON, rec.GLAT, 1); len(gc) > 0 {
		out = append(out, n.globulars[gc[0].Row].Center)
	}
	return out
}

func sharesName(fnames []string, set map[string]struct{}) bool {
	for _, f := range fnames {
		if _, ok := set[f]; ok {
			return true
		}
	}
	return false
}

// LoadGlobulars reads a globular cluster table with the columns Name,
// GLON, GLAT, pmRA, pmDE and plx.
func LoadGlobulars(path string) ([]Globular, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	gcs, err := ReadGlobulars(f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return gcs, nil
}

// ReadGlobulars decodes a globular cluster table.
func ReadGlobulars(r io.Reader) ([]Globular, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, errors.NewParseError("csv", "", "reading header", err)
	}

	cols := []string{"Name", "GLON", "GLAT", "pmRA", "pmDE", "plx"}
	pos := map[string]int{}
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	idx := make([]int, len(cols))
	for k, c := range cols {
		i, ok := pos[c]
		if !ok {
			pe := errors.NewParseError("csv", "", "missing column", nil)
			pe.Column = c
			return nil, pe
		}
		idx[k] = i
	}

	var out []Globular
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			pe := errors.NewParseError("csv", "", err.Error(), err)
			pe.Line = line
			return nil, pe
		}
		var v [5]float64
		for k := range v {
			s := ""
			if idx[k+1] < len(row) {
				s = strings.TrimSpace(row[idx[k+1]])
			}
			if s == "" || strings.EqualFold(s, "nan") {
				v[k] = math.NaN()
				continue
			}
			if v[k], err = strconv.ParseFloat(s, 64); err != nil {
				pe := errors.NewParseError("csv", "", err.Error(), err)
				pe.Line = line
				pe.Column = cols[k+1]
				return nil, pe
			}
		}
		name := ""
		if idx[0] < len(row) {
			name = strings.TrimSpace(row[idx[0]])
		}
		out = append(out, Globular{
			Name:   name,
			Center: Center{GLON: v[0], GLAT: v[1], PMRA: v[2], PMDE: v[3], Plx: v[4]},
		})
	}
	return out, nil
}
