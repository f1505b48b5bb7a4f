package membership

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
)

func placed(fname string, glon, glat, pm, plx float64) *catalogs.Record {
	r := catalogs.NewRecord()
	r.Fnames = []string{fname}
	r.GLON, r.GLAT = glon, glat
	r.PMRA, r.PMDE, r.Plx = pm, pm, plx
	return r
}

func TestNeighborsExcluded(t *testing.T) {
	target := placed("target", 10, 0, 1, 1)
	target.DuplicateFnames = []string{"dup"}
	cat := catalogs.New(
		target,
		placed("dup", 10.1, 0, 1, 1),
		placed("nokin", 10.2, 0, 1, nan),
		placed("good", 10.3, 0, -3, 0.7),
		placed("far", 50, 0, 1, 1),
	)
	gcs := []Globular{
		{Name: "NGC 104", Center: Center{GLON: 12, GLAT: 1, PMRA: 5, PMDE: -2, Plx: 0.2}},
		{Name: "NGC 6397", Center: Center{GLON: 100, GLAT: 0, PMRA: 3, PMDE: -17, Plx: 0.4}},
	}

	got := NewNeighbors(cat, gcs, 3).Excluded(0)
	require.Len(t, got, 2)
	assert.Equal(t, 10.3, got[0].GLON)
	assert.Equal(t, -3.0, got[0].PMRA)
	assert.Equal(t, gcs[0].Center, got[1])

	t.Run("no catalogue neighbours", func(t *testing.T) {
		got := NewNeighbors(cat, gcs, 0).Excluded(0)
		require.Len(t, got, 1)
		assert.Equal(t, 12.0, got[0].GLON)
	})

	t.Run("no globulars", func(t *testing.T) {
		got := NewNeighbors(cat, nil, 4).Excluded(0)
		require.Len(t, got, 2)
		assert.Equal(t, 10.3, got[0].GLON)
		assert.Equal(t, 50.0, got[1].GLON)
	})
}

func TestReadGlobulars(t *testing.T) {
	data := "Name,GLON,GLAT,pmRA,pmDE,plx,rh\n" +
		"NGC 104,305.89,-44.89,5.25,-2.53,0.22,3.2\n" +
		"Pal 1,130.06,19.03,-0.25,0.01,nan,1.1\n"

	gcs, err := ReadGlobulars(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, gcs, 2)
	assert.Equal(t, "NGC 104", gcs[0].Name)
	assert.Equal(t, 305.89, gcs[0].GLON)
	assert.Equal(t, -2.53, gcs[0].PMDE)
	assert.False(t, gcs[1].HasPlx())

	_, err = ReadGlobulars(strings.NewReader("Name,GLON\nx,1\n"))
	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "GLAT", pe.Column)

	_, err = ReadGlobulars(strings.NewReader("Name,GLON,GLAT,pmRA,pmDE,plx\nx,1,2,3,four,5\n"))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "pmDE", pe.Column)
}

func TestLoadGlobularsMissingFile(t *testing.T) {
	_, err := LoadGlobulars(t.TempDir() + "/missing.csv")
	var ioe *errors.IOError
	assert.ErrorAs(t, err, &ioe)
}
