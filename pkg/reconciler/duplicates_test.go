package reconciler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ucc-astro/ucc/pkg/catalogs"
)

var nan = math.NaN()

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name                    string
		arcmin, pm, plx, ownPlx float64
		want                    bool
	}{
		{"nearby all inside", 14.99, 0.9, 0.4, 4.5, true},
		{"nearby angle on boundary", 15, 0.9, 0.4, 4.5, false},
		{"nearby pm on boundary", 1, 1, 0.1, 4.5, false},
		{"nearby plx on boundary", 1, 0.1, 0.5, 4, false},
		{"tier 3-4", 9.9, 0.4, 0.2, 3, true},
		{"tier 2-3 angle too wide", 5, 0.1, 0.1, 2.5, false},
		{"tier 1-2", 2.4, 0.14, 0.09, 1, true},
		{"distant", 0.9, 0.09, 0.04, 0.3, true},
		{"distant angle too wide", 1.0, 0.09, 0.04, 0.3, false},
		{"undefined own parallax uses distant tier", 1.5, 0.05, 0.01, nan, false},
		{"plx only inside", 2, nan, 0.09, 1.5, true},
		{"plx only outside", 2, nan, 0.2, 1.5, false},
		{"no plx with pm", 4.9, 0.49, nan, 1.5, true},
		{"no plx pm too large", 4.9, 0.5, nan, 1.5, false},
		{"no plx no pm", 4.99, nan, nan, nan, true},
		{"no plx no pm boundary", 5, nan, nan, nan, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicate(tt.arcmin, tt.pm, tt.plx, tt.ownPlx))
		})
	}
}

func record(fname string, glon, glat, plx, pmra, pmde float64) *catalogs.Record {
	r := catalogs.NewRecord()
	r.Fnames = []string{fname}
	r.GLON, r.GLAT = glon, glat
	r.Plx, r.PMRA, r.PMDE = plx, pmra, pmde
	return r
}

func TestFindDuplicatesBoundary(t *testing.T) {
	cat := catalogs.New(
		record("a", 100, 0, 5, 1, 1),
		record("b", 100, 0.25, 5, 1, 1),   // exactly 15 arcmin from a
		record("c", 100, 0.4998, 5, 1, 1), // 14.99 arcmin from b
	)

	dups := FindDuplicates(cat, 10)
	assert.Nil(t, dups[0])
	assert.Equal(t, []string{"c"}, dups[1])
	assert.Equal(t, []string{"b"}, dups[2])
}

func TestFindDuplicatesOrderAndLimit(t *testing.T) {
	cat := catalogs.New(
		record("target", 10, 10, nan, nan, nan),
		record("far", 10.06, 10, nan, nan, nan),
		record("near", 10.01, 10, nan, nan, nan),
		record("mid", 10.03, 10, nan, nan, nan),
		record("out", 10.2, 10, nan, nan, nan),
	)

	dups := FindDuplicates(cat, 10)
	assert.Equal(t, []string{"near", "mid", "far"}, dups[0])

	limited := FindDuplicates(cat, 2)
	assert.Equal(t, []string{"near", "mid"}, limited[0])
}

func TestFindDuplicatesCoincidentRecords(t *testing.T) {
	cat := catalogs.New(
		record("x", 50, 5, 0.5, 0, 0),
		record("y", 50, 5, 0.5, 0, 0),
	)
	dups := FindDuplicates(cat, 10)
	assert.Equal(t, []string{"y"}, dups[0])
	assert.Equal(t, []string{"x"}, dups[1])
}

func TestMarkDuplicatesClearsStale(t *testing.T) {
	lone := record("lone", 200, 30, 1, 0, 0)
	lone.DuplicateFnames = []string{"gone"}
	cat := catalogs.New(lone, record("other", 20, -30, 1, 0, 0))

	assert.Equal(t, 0, markDuplicates(cat, 10))
	assert.Nil(t, cat.Records[0].DuplicateFnames)
}
