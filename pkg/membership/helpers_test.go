package membership

import (
	"math"
)

var nan = math.NaN()

// ring places n stars on a circle of radius r (degrees) around (lon, lat)
// sharing the given kinematics.
func ring(n int, lon, lat, r, pmra, pmde, plx float64) []Star {
	stars := make([]Star, n)
	for i := range stars {
		theta := 2 * math.Pi * float64(i) / float64(n)
		stars[i] = Star{
			GLON: lon + r*math.Cos(theta), GLAT: lat + r*math.Sin(theta),
			PMRA: pmra, PMDE: pmde, Plx: plx,
			EPMRA: 0.05, EPMDE: 0.05, EPlx: 0.02,
		}
	}
	return stars
}

func constant(n int, p float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p
	}
	return out
}
