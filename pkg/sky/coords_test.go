package sky

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToGalactic(t *testing.T) {
	tests := []struct {
		name     string
		ra, dec  float64
		lon, lat float64
	}{
		{name: "galactic centre", ra: 266.40499, dec: -28.93617, lon: 0.0, lat: 0.0},
		{name: "north galactic pole", ra: 192.85948, dec: 27.12825, lat: 90.0},
		{name: "cassiopeia field", ra: 354.6583, dec: 56.6417, lon: 113.007, lat: -4.821},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat := ToGalactic(tt.ra, tt.dec)
			assert.InDelta(t, tt.lat, lat, 0.02)
			if tt.lat < 89 {
				d := math.Mod(lon-tt.lon+540, 360) - 180
				assert.InDelta(t, 0, d, 0.02)
			}
			assert.GreaterOrEqual(t, lon, 0.0)
			assert.Less(t, lon, 360.0)
		})
	}

	t.Run("undefined input", func(t *testing.T) {
		lon, lat := ToGalactic(math.NaN(), 10)
		assert.True(t, math.IsNaN(lon))
		assert.True(t, math.IsNaN(lat))
	})
}

func TestSeparation(t *testing.T) {
	assert.InDelta(t, 0, Separation(10, 20, 10, 20), 1e-12)
	assert.InDelta(t, 90, Separation(0, 0, 90, 0), 1e-9)
	assert.InDelta(t, 180, Separation(0, 0, 180, 0), 1e-9)
	assert.InDelta(t, 90, Separation(0, 0, 0, 90), 1e-9)

	// One degree of latitude is sixty arc-minutes anywhere.
	assert.InDelta(t, 60, SeparationArcmin(123, 40, 123, 41), 1e-9)

	// Longitude offsets shrink with cos(lat).
	assert.InDelta(t, 30, SeparationArcmin(0, 60, 1, 60), 0.01)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.2345, 2))
	assert.Equal(t, 12.3457, Round(12.345678, 4))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}

func TestQuadrantFolder(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"G012.3+05.2", "Q1P"},
		{"G089.9-00.1", "Q1N"},
		{"G090.0+00.0", "Q2P"},
		{"G114.6-04.9a", "Q2N"},
		{"G180.0-10.0", "Q3N"},
		{"G269.9+30.1", "Q3P"},
		{"G270.0-01.0", "Q4N"},
		{"G359.9+00.0ERROR", "Q4P"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := QuadrantFolder(tt.id)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "X012.3+05.2", "G12+5", "Gabc.d+05.2"} {
		_, err := QuadrantFolder(bad)
		assert.Error(t, err, bad)
	}
}
