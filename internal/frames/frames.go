// Package frames serves pre-extracted sky frames from a directory of
// star tables named after each cluster's primary fname.
package frames

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/membership"
)

// Extensions are tried in order.
var Extensions = []string{".csv.gz", ".csv"}

// FileSource is a membership.FrameSource reading <Dir>/<fname>.csv[.gz].
type FileSource struct {
	Dir string
}

// New returns a FileSource rooted at dir.
func New(dir string) (*FileSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.WrapIO("stat", dir, err)
	}
	if !info.IsDir() {
		return nil, &errors.ValidationError{Field: "frames_dir", Value: dir, Message: "not a directory"}
	}
	return &FileSource{Dir: dir}, nil
}

// Path returns the first existing frame file of fname.
func (s *FileSource) Path(fname string) (string, error) {
	for _, ext := range Extensions {
		p := filepath.Join(s.Dir, fname+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", &errors.NotFoundError{Resource: "frame", ID: fname}
}

// Frame implements membership.FrameSource. Stars with a parallax below
// q.PlxMin, or none at all, are left out.
func (s *FileSource) Frame(ctx context.Context, rec *catalogs.Record, q membership.FrameQuery) (*membership.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(rec.PrimaryFname())
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	stars, err := membership.ReadStars(r)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}

	kept := stars[:0]
	for _, st := range stars {
		if math.IsNaN(st.Plx) || st.Plx < q.PlxMin {
			continue
		}
		kept = append(kept, st)
	}

	logging.FromContext(ctx).Debug().
		Str("path", path).
		Int("read", len(stars)).
		Int("kept", len(kept)).
		Float64("plx_min", q.PlxMin).
		Msg("Loaded frame")
	return &membership.Frame{Stars: kept}, nil
}
