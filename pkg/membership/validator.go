package membership

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ucc-astro/ucc/internal/stats"
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
)

// State is a step of the centre validation state machine.
type State int

const (
	// StateFree runs the classifier with the centres it was configured for.
	StateFree State = iota
	// StateFixedRetry reruns the classifier once with the centres fixed.
	StateFixedRetry
	// StateDone is terminal.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateFixedRetry:
		return "fixed-retry"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Flags marks the axes along which the realised centre drifted from
// the catalogued one.
type Flags struct {
	XY  bool
	PM  bool
	Plx bool
}

// Any reports whether any axis is flagged.
func (f Flags) Any() bool { return f.XY || f.PM || f.Plx }

// String renders the flags as three digits, '1' meaning drifted.
func (f Flags) String() string {
	b := []byte("000")
	for i, v := range []bool{f.XY, f.PM, f.Plx} {
		if v {
			b[i] = '1'
		}
	}
	return string(b)
}

// Validation is the outcome of a validated classifier run.
type Validation struct {
	Probs        []float64
	NSurvived    int
	FixedCenters bool
	Flags        Flags
	Attempts     int
}

// CenterValidator runs a classifier and checks that the centre it
// converged to agrees with the catalogued one, retrying once with fixed
// centres when it does not.
type CenterValidator struct {
	classifier Classifier
}

// NewCenterValidator returns a validator around classifier.
func NewCenterValidator(classifier Classifier) *CenterValidator {
	return &CenterValidator{classifier: classifier}
}

// Validate classifies the frame. The classifier runs at most twice.
func (v *CenterValidator) Validate(ctx context.Context, frame *Frame, guess Center, excluded []Center) (*Validation, error) {
	if frame.Len() == 0 {
		return nil, errors.NewValidationError("frame", 0, "no candidate stars")
	}
	logger := logging.FromContext(ctx)
	X := frame.Matrix()

	val := &Validation{FixedCenters: !guess.HasPM() && !guess.HasPlx()}
	state := StateFree
	for state != StateDone {
		res, err := v.classifier.Fit(ctx, X, FitRequest{
			Center:       guess,
			Excluded:     excluded,
			FixedCenters: val.FixedCenters,
		})
		if err != nil {
			return nil, err
		}
		if len(res.Probs) != frame.Len() {
			return nil, errors.NewValidationError("probs", len(res.Probs),
				fmt.Sprintf("classifier returned %d probabilities for %d stars", len(res.Probs), frame.Len()))
		}
		val.Attempts++
		val.Probs, val.NSurvived = res.Probs, res.NSurvived
		val.Flags = CheckCenters(X, res.Probs, guess)

		logger.Debug().
			Str("state", state.String()).
			Bool("fixed_centers", val.FixedCenters).
			Str("flags", val.Flags.String()).
			Int("survived", res.NSurvived).
			Msg("Classifier run")

		state = next(state, val)
	}
	return val, nil
}

// next is the transition function. A flagged free run moves to a single
// fixed retry; anything else is done.
func next(state State, val *Validation) State {
	if state == StateFree && val.Flags.Any() && !val.FixedCenters {
		val.FixedCenters = true
		return StateFixedRetry
	}
	return StateDone
}

// CheckCenters compares the centre of the likely members of X with guess.
func CheckCenters(X *mat.Dense, probs []float64, guess Center) Flags {
	mask := stats.TopMask(probs, constants.MemberProbability, constants.MinMembers)
	col := func(j int) float64 {
		return stats.Median(stats.Select(mat.Col(nil, j, X), mask))
	}
	lon, lat := col(0), col(1)
	pmra, pmde := col(2), col(3)
	plx := col(4)

	var f Flags
	if d := math.Hypot(lon-guess.GLON, lat-guess.GLAT) * 60; d > constants.MaxCenterOffsetArcmin {
		f.XY = true
	}
	if guess.HasPM() {
		f.PM = relativeDiff(pmra, guess.PMRA) > pmTolerance(guess.PMRA) ||
			relativeDiff(pmde, guess.PMDE) > pmTolerance(guess.PMDE)
	}
	if guess.HasPlx() {
		f.Plx = relativeDiff(plx, guess.Plx) > plxTolerance(guess.Plx)
	}
	return f
}

// relativeDiff is the percent difference of got from want. The small
// offset keeps it finite for a zero guess.
func relativeDiff(got, want float64) float64 {
	return 100 * math.Abs(got-want) / (math.Abs(want) + 0.001)
}

// pmTolerance is the allowed percent drift of one proper-motion axis.
func pmTolerance(guess float64) float64 {
	switch g := math.Abs(guess); {
	case g > 10:
		return 20
	case g > 1:
		return 25
	case g > 0.1:
		return 35
	case g > 0.01:
		return 50
	}
	return 70
}

// plxTolerance is the allowed percent drift of the parallax.
func plxTolerance(guess float64) float64 {
	switch {
	case guess > 0.2:
		return 25
	case guess > 0.1:
		return 30
	case guess > 0.05:
		return 35
	case guess > 0.01:
		return 50
	}
	return 70
}
