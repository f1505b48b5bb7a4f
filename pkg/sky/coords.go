// Package sky holds the celestial geometry used by the catalogue:
// equatorial to galactic conversion, great-circle separations, the
// quadrant folder scheme for artefacts and a nearest-neighbour index
// over galactic positions.
package sky

import "math"

// ICRS to galactic rotation (Hipparcos definition of the galactic frame).
var icrsToGalactic = [3][3]float64{
	{-0.0548755604162154, -0.8734370902348850, -0.4838350155487132},
	{+0.4941094278755837, -0.4448296299600112, +0.7469822444972189},
	{-0.8676661490190047, -0.1980763734312015, +0.4559837761750669},
}

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// ToGalactic converts equatorial (ra, dec) in degrees to galactic
// (lon, lat) in degrees, lon in [0, 360).
func ToGalactic(ra, dec float64) (lon, lat float64) {
	if math.IsNaN(ra) || math.IsNaN(dec) {
		return math.NaN(), math.NaN()
	}
	a, d := ra*deg2rad, dec*deg2rad
	v := [3]float64{math.Cos(d) * math.Cos(a), math.Cos(d) * math.Sin(a), math.Sin(d)}

	var g [3]float64
	for i := range icrsToGalactic {
		for j := range v {
			g[i] += icrsToGalactic[i][j] * v[j]
		}
	}

	lon = math.Atan2(g[1], g[0]) * rad2deg
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 {
		lon -= 360
	}
	lat = math.Asin(math.Max(-1, math.Min(1, g[2]))) * rad2deg
	return lon, lat
}

// Separation returns the great-circle distance in degrees between two
// points given in degrees (Vincenty formula, stable at all distances).
func Separation(lon1, lat1, lon2, lat2 float64) float64 {
	l1, b1 := lon1*deg2rad, lat1*deg2rad
	l2, b2 := lon2*deg2rad, lat2*deg2rad
	dl := l2 - l1

	sdl, cdl := math.Sincos(dl)
	sb1, cb1 := math.Sincos(b1)
	sb2, cb2 := math.Sincos(b2)

	num1 := cb2 * sdl
	num2 := cb1*sb2 - sb1*cb2*cdl
	denom := sb1*sb2 + cb1*cb2*cdl
	return math.Atan2(math.Hypot(num1, num2), denom) * rad2deg
}

// SeparationArcmin is Separation expressed in arc-minutes.
func SeparationArcmin(lon1, lat1, lon2, lat2 float64) float64 {
	return Separation(lon1, lat1, lon2, lat2) * 60
}

// Round rounds v to the given number of decimals. NaN stays NaN.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
