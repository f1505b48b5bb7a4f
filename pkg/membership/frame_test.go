package membership

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
)

func TestQueryFor(t *testing.T) {
	tests := []struct {
		name   string
		plx    float64
		names  []string
		box    float64
		plxMin float64
	}{
		{"unknown parallax", nan, nil, 1, -2},
		{"very near", 20, nil, 30, 15},
		{"near", 5, nil, 20, 3},
		{"intermediate", 3, nil, 6, 2},
		{"one and a half", 1.8, nil, 5, 1.1},
		{"just over one", 1.2, nil, 4, 0.5},
		{"sub kpc", 0.8, nil, 3, 0.2},
		{"two kpc", 0.6, nil, 2, 0},
		{"three kpc", 0.3, nil, 1.5, -0.3},
		{"far", 0.2, nil, 1, -0.4},
		{"very far", 0.05, nil, 0.5, -0.55},
		{"compact survey", 0.05, []string{"Ryu 12"}, 10.0 / 60, -0.55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := catalogs.NewRecord()
			rec.Plx = tt.plx
			rec.Names = tt.names
			rec.RA, rec.Dec, rec.GLON, rec.GLAT = 1, 2, 3, 4

			q := QueryFor(rec, 0)
			assert.InDelta(t, tt.box, q.BoxSize, 1e-12)
			assert.InDelta(t, tt.plxMin, q.PlxMin, 1e-12)
			assert.Equal(t, constants.DefaultMaxMagnitude, q.MaxMag)
			assert.Equal(t, 1.0, q.RA)
			assert.Equal(t, 4.0, q.GLAT)
		})
	}

	q := QueryFor(catalogs.NewRecord(), 18)
	assert.Equal(t, 18.0, q.MaxMag)
}

func TestFrameMatrix(t *testing.T) {
	var empty *Frame
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Matrix())

	f := &Frame{Stars: []Star{
		{GLON: 1, GLAT: 2, PMRA: 3, PMDE: 4, Plx: 5, EPMRA: 6, EPMDE: 7, EPlx: 8},
		{GLON: 9},
	}}
	X := f.Matrix()
	r, c := X.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, Features, c)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, X.RawRowView(0))
	assert.Equal(t, 9.0, X.At(1, 0))
}

func TestReadStars(t *testing.T) {
	data := "Source,GLON,GLAT,pmRA,pmDE,Plx,e_pmRA,e_pmDE,e_Plx,Gmag\n" +
		"123,10.5,-1.25,2,3,0.4,0.1,0.1,0.05,17\n" +
		"456,10.6,-1.20,nan,3,,0.1,0.1,0.05,18\n"

	stars, err := ReadStars(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, stars, 2)
	assert.Equal(t, "123", stars[0].Source)
	assert.Equal(t, -1.25, stars[0].GLAT)
	assert.Equal(t, 0.05, stars[0].EPlx)
	assert.True(t, stars[1].PMRA != stars[1].PMRA)
	assert.True(t, stars[1].Plx != stars[1].Plx)
}

func TestReadStarsErrors(t *testing.T) {
	_, err := ReadStars(strings.NewReader("GLON,GLAT\n1,2\n"))
	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "pmRA", pe.Column)

	_, err = ReadStars(strings.NewReader("GLON,GLAT,pmRA,pmDE,Plx,e_pmRA,e_pmDE,e_Plx\n1,2,x,4,5,6,7,8\n"))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "pmRA", pe.Column)
}
