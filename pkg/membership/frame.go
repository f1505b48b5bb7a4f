package membership

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
)

// Star is one candidate star of a sky frame.
type Star struct {
	Source string

	GLON float64
	GLAT float64
	PMRA float64
	PMDE float64
	Plx  float64

	EPMRA float64
	EPMDE float64
	EPlx  float64
}

// Frame is the set of candidate stars retrieved around a cluster.
type Frame struct {
	Stars []Star
}

// Features is the number of columns of the classifier input matrix.
const Features = 8

// FeatureColumns names the columns of Matrix, in order.
var FeatureColumns = []string{"GLON", "GLAT", "pmRA", "pmDE", "Plx", "e_pmRA", "e_pmDE", "e_Plx"}

// Len returns the number of stars.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Stars)
}

// Matrix returns the classifier input: one row per star with the
// columns of FeatureColumns.
func (f *Frame) Matrix() *mat.Dense {
	if f.Len() == 0 {
		return nil
	}
	X := mat.NewDense(len(f.Stars), Features, nil)
	for i, s := range f.Stars {
		X.SetRow(i, []float64{s.GLON, s.GLAT, s.PMRA, s.PMDE, s.Plx, s.EPMRA, s.EPMDE, s.EPlx})
	}
	return X
}

// FrameQuery describes the region and depth of a frame request.
type FrameQuery struct {
	RA, Dec    float64
	GLON, GLAT float64

	// BoxSize is the side of the equatorial box, in degrees.
	BoxSize float64
	// PlxMin drops stars with a smaller parallax.
	PlxMin float64
	// MaxMag is the faintest magnitude retrieved.
	MaxMag float64
}

// FrameSource retrieves the candidate stars of a cluster.
type FrameSource interface {
	Frame(ctx context.Context, rec *catalogs.Record, q FrameQuery) (*Frame, error)
}

// QueryFor sizes the frame of a record from its parallax: nearby
// clusters cover more sky and need a looser parallax cut.
func QueryFor(rec *catalogs.Record, maxMag float64) FrameQuery {
	if maxMag <= 0 {
		maxMag = constants.DefaultMaxMagnitude
	}
	q := FrameQuery{
		RA: rec.RA, Dec: rec.Dec, GLON: rec.GLON, GLAT: rec.GLAT,
		BoxSize: boxSize(rec.Plx),
		PlxMin:  -2,
		MaxMag:  maxMag,
	}
	if !math.IsNaN(rec.Plx) {
		q.PlxMin = rec.Plx - plxMargin(rec.Plx)
	}
	for _, n := range rec.Names {
		if strings.Contains(n, "Ryu") {
			q.BoxSize = 10.0 / 60
			break
		}
	}
	return q
}

func boxSize(plx float64) float64 {
	switch {
	case math.IsNaN(plx):
		return 1
	case plx > 15:
		return 30
	case plx > 4:
		return 20
	case plx > 2:
		return 6
	case plx > 1.5:
		return 5
	case plx > 1:
		return 4
	case plx > 0.75:
		return 3
	case plx > 0.5:
		return 2
	case plx > 0.25:
		return 1.5
	case plx > 0.1:
		return 1
	}
	return 0.5
}

func plxMargin(plx float64) float64 {
	switch {
	case plx > 15:
		return 5
	case plx > 4:
		return 2
	case plx > 2:
		return 1
	case plx > 1:
		return 0.7
	}
	return 0.6
}

// ReadStars decodes a star table with a header row. The feature columns
// are required; Source is optional.
func ReadStars(r io.Reader) ([]Star, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, errors.NewParseError("csv", "", "reading header", err)
	}
	pos := map[string]int{}
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	idx := make([]int, len(FeatureColumns))
	for k, c := range FeatureColumns {
		i, ok := pos[c]
		if !ok {
			pe := errors.NewParseError("csv", "", "missing column", nil)
			pe.Column = c
			return nil, pe
		}
		idx[k] = i
	}
	src, hasSource := pos["Source"]

	var stars []Star
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

		var v [Features]float64
		for k, i := range idx {
			if v[k], err = parseValue(row, i); err != nil {
				pe := errors.NewParseError("csv", "", err.Error(), err)
				pe.Line = line
				pe.Column = FeatureColumns[k]
				return nil, pe
			}
		}
		s := Star{GLON: v[0], GLAT: v[1], PMRA: v[2], PMDE: v[3], Plx: v[4], EPMRA: v[5], EPMDE: v[6], EPlx: v[7]}
		if hasSource && src < len(row) {
			s.Source = row[src]
		}
		stars = append(stars, s)
	}
	return stars, nil
}

func parseValue(row []string, i int) (float64, error) {
	if i >= len(row) {
		return math.NaN(), nil
	}
	s := strings.TrimSpace(row[i])
	if s == "" || strings.EqualFold(s, constants.NaNToken) {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
