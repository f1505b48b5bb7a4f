package reconciler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucc-astro/ucc/pkg/catalogs"
)

func TestFormatID(t *testing.T) {
	tests := []struct {
		lon, lat float64
		want     string
	}{
		{12.34, 5.27, "G012.3+05.2"},
		{12.3, 5.2, "G012.3+05.2"},
		{113.0066, -4.8205, "G113.0-04.8"},
		{5.0, -12.34, "G005.0-12.3"},
		{359.99, -0.05, "G359.9+00.0"},
		{0.0, 0.0, "G000.0+00.0"},
		{270.19, 45.99, "G270.1+45.9"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatID(tt.lon, tt.lat))
		})
	}
}

func TestIDSetAssignCollisions(t *testing.T) {
	set := NewIDSet("", "G010.0+01.0")

	id, exhausted := set.Assign(10.05, 1.09)
	assert.Equal(t, "G010.0+01.0a", id)
	assert.False(t, exhausted)

	id, _ = set.Assign(10.0, 1.0)
	assert.Equal(t, "G010.0+01.0b", id)

	id, _ = set.Assign(20.0, 1.0)
	assert.Equal(t, "G020.0+01.0", id)

	assert.Equal(t, []string{"G010.0+01.0", "G010.0+01.0a", "G010.0+01.0b", "G020.0+01.0"}, set.IDs())
}

func TestIDSetAssignExhaustion(t *testing.T) {
	set := NewIDSet("G050.0-02.0")
	for c := 'a'; c <= 'z'; c++ {
		set.Add(fmt.Sprintf("G050.0-02.0%c", c))
	}
	require.Equal(t, 27, set.Len())

	id, exhausted := set.Assign(50.0, -2.0)
	assert.True(t, exhausted)
	assert.Equal(t, "G050.0-02.0zERROR", id)

	id, exhausted = set.Assign(50.0, -2.0)
	assert.True(t, exhausted)
	assert.Equal(t, "G050.0-02.0zERROR2", id)
}

func TestAssignIDsUnique(t *testing.T) {
	var recs []*catalogs.Record
	for i := 0; i < 40; i++ {
		r := catalogs.NewRecord()
		r.GLON, r.GLAT = 100.01, -3.33
		recs = append(recs, r)
	}
	kept := catalogs.NewRecord()
	kept.GLON, kept.GLAT = 100.01, -3.33
	kept.PositionalID = "G100.0-03.3"
	recs = append([]*catalogs.Record{kept}, recs...)

	set := NewIDSet(kept.PositionalID)
	assigned, warnings := AssignIDs(recs, set)
	assert.Equal(t, 40, assigned)
	assert.Len(t, warnings, 14)

	seen := map[string]bool{}
	for _, r := range recs {
		require.NotEmpty(t, r.PositionalID)
		assert.False(t, seen[r.PositionalID], "duplicate id %s", r.PositionalID)
		seen[r.PositionalID] = true
	}
	assert.Equal(t, "G100.0-03.3", recs[0].PositionalID)
	assert.Equal(t, "G100.0-03.3a", recs[1].PositionalID)
}
