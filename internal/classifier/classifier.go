// Package classifier runs the membership classifier as an external
// process. The request is written to the command's stdin as one JSON
// document and the probabilities are read back from its stdout.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/membership"
)

// Exec is a membership.Classifier backed by an external command.
type Exec struct {
	command string
	args    []string
	timeout time.Duration
	env     []string
}

// Option configures an Exec classifier.
type Option func(*Exec) error

// WithTimeout bounds each classifier run.
func WithTimeout(d time.Duration) Option {
	return func(e *Exec) error {
		if d < 0 {
			return &errors.ValidationError{Field: "timeout", Value: d, Message: "cannot be negative"}
		}
		e.timeout = d
		return nil
	}
}

// WithEnv appends KEY=VALUE pairs to the command environment.
func WithEnv(env ...string) Option {
	return func(e *Exec) error {
		e.env = append(e.env, env...)
		return nil
	}
}

// New parses cmdline into a command and its arguments.
func New(cmdline string, opts ...Option) (*Exec, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, &errors.ValidationError{Field: "classifier_cmd", Value: cmdline, Message: "cannot be empty"}
	}
	e := &Exec{command: fields[0], args: fields[1:]}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// String returns the command line.
func (e *Exec) String() string {
	return strings.Join(append([]string{e.command}, e.args...), " ")
}

// Fit implements membership.Classifier.
func (e *Exec) Fit(ctx context.Context, X *mat.Dense, req membership.FitRequest) (membership.FitResult, error) {
	if X == nil {
		return membership.FitResult{}, &errors.ValidationError{Field: "X", Message: "cannot be nil"}
	}
	rows, _ := X.Dims()

	body, err := json.Marshal(NewRequest(X, req))
	if err != nil {
		return membership.FitResult{}, errors.WrapParse("json", "", err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...) //nolint:gosec // command comes from configuration
	cmd.Stdin = bytes.NewReader(body)
	if len(e.env) > 0 {
		cmd.Env = append(cmd.Environ(), e.env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return membership.FitResult{}, ctx.Err()
		}
		pe := errors.NewProcessError("fit", e.String(), strings.TrimSpace(stderr.String()), err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			pe.ExitCode = exitErr.ExitCode()
		}
		return membership.FitResult{}, pe
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return membership.FitResult{}, errors.NewProcessError("decode output", e.String(), "", err)
	}
	if len(resp.Probs) != rows {
		return membership.FitResult{}, errors.NewProcessError("decode output", e.String(), "",
			errors.NewValidationError("probs", len(resp.Probs), "one probability per star expected"))
	}

	logging.FromContext(ctx).Debug().
		Int("stars", rows).
		Int("survived", resp.NSurvived).
		Bool("fixed_centers", req.FixedCenters).
		Dur("duration", time.Since(start)).
		Msg("Classifier finished")

	return membership.FitResult{Probs: resp.probs(), NSurvived: resp.NSurvived}, nil
}

// Request is the document sent to the classifier. Undefined values are
// encoded as null.
type Request struct {
	XYCenter     []*float64       `json:"xy_c"`
	VPDCenter    []*float64       `json:"vpd_c"`
	PlxCenter    *float64         `json:"plx_c"`
	Excluded     []ExcludedCenter `json:"centers_ex"`
	FixedCenters bool             `json:"fixed_centers"`
	// X holds one row per feature and one column per star.
	X [][]*float64 `json:"X"`
}

// ExcludedCenter is a contaminant centre.
type ExcludedCenter struct {
	XY  []*float64 `json:"xy"`
	PMs []*float64 `json:"pms"`
	Plx *float64   `json:"plx"`
}

// Response is the classifier output.
type Response struct {
	Probs     []*float64 `json:"probs"`
	NSurvived int        `json:"n_survived"`
}

func (r Response) probs() []float64 {
	out := make([]float64, len(r.Probs))
	for i, p := range r.Probs {
		out[i] = math.NaN()
		if p != nil {
			out[i] = *p
		}
	}
	return out
}

// NewRequest builds the classifier request for X. The matrix is sent
// transposed, as features by stars.
func NewRequest(X *mat.Dense, req membership.FitRequest) Request {
	c := req.Center
	r := Request{
		XYCenter:     values(c.GLON, c.GLAT),
		PlxCenter:    value(c.Plx),
		FixedCenters: req.FixedCenters,
		Excluded:     make([]ExcludedCenter, 0, len(req.Excluded)),
	}
	if c.HasPM() {
		r.VPDCenter = values(c.PMRA, c.PMDE)
	}
	for _, ex := range req.Excluded {
		r.Excluded = append(r.Excluded, ExcludedCenter{
			XY:  values(ex.GLON, ex.GLAT),
			PMs: values(ex.PMRA, ex.PMDE),
			Plx: value(ex.Plx),
		})
	}

	T := mat.DenseCopyOf(X.T())
	rows, _ := T.Dims()
	r.X = make([][]*float64, rows)
	for i := range r.X {
		r.X[i] = values(T.RawRowView(i)...)
	}
	return r
}

func value(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func values(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = value(v)
	}
	return out
}
