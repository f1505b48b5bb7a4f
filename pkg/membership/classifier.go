package membership

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ucc-astro/ucc/pkg/catalogs"
)

// Center is a cluster centre in position, proper motion and parallax.
// Kinematic components are NaN when unknown.
type Center struct {
	GLON float64
	GLAT float64
	PMRA float64
	PMDE float64
	Plx  float64
}

// CenterOf returns the catalogued centre of a record.
func CenterOf(rec *catalogs.Record) Center {
	c := Center{GLON: rec.GLON, GLAT: rec.GLAT, PMRA: rec.PMRA, PMDE: rec.PMDE, Plx: rec.Plx}
	if math.IsNaN(c.PMRA) || math.IsNaN(c.PMDE) {
		c.PMRA, c.PMDE = math.NaN(), math.NaN()
	}
	return c
}

// HasPM reports whether the proper-motion centre is known.
func (c Center) HasPM() bool { return !math.IsNaN(c.PMRA) && !math.IsNaN(c.PMDE) }

// HasPlx reports whether the parallax centre is known.
func (c Center) HasPlx() bool { return !math.IsNaN(c.Plx) }

// FitRequest carries the hints passed to the classifier with the star matrix.
type FitRequest struct {
	Center       Center
	Excluded     []Center
	FixedCenters bool
}

// FitResult is the classifier output: one probability per matrix row
// and the number of stars that survived its internal filtering.
type FitResult struct {
	Probs     []float64
	NSurvived int
}

// Classifier assigns membership probabilities to the rows of X.
type Classifier interface {
	Fit(ctx context.Context, X *mat.Dense, req FitRequest) (FitResult, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, X *mat.Dense, req FitRequest) (FitResult, error)

// Fit calls f.
func (f ClassifierFunc) Fit(ctx context.Context, X *mat.Dense, req FitRequest) (FitResult, error) {
	return f(ctx, X, req)
}
