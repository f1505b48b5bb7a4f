package sources

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/names"
)

// Entry is one row of a source catalogue.
type Entry struct {
	Index  int
	Names  []string
	Fnames []string

	RA   float64
	Dec  float64
	Plx  float64
	PMRA float64
	PMDE float64
}

// Catalog is a loaded source catalogue.
type Catalog struct {
	Tag     string
	Entries []Entry
}

// Path returns the data file of a source, <dataDir>/<TAG>.csv unless the
// spec names a file.
func Path(dataDir, tag string, spec Spec) string {
	file := spec.File
	if file == "" {
		file = tag + ".csv"
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dataDir, file)
}

// Load reads the data file of source tag. A missing file or a missing
// column aborts the load.
func Load(ctx context.Context, dataDir, tag string, spec Spec) (*Catalog, error) {
	if err := spec.Validate(); err != nil {
		return nil, errors.NewConfigError("source "+tag, "unresolvable column spec", err)
	}
	path := Path(dataDir, tag, spec)

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

	cat, err := Read(ctx, r, tag, spec)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Str("source", tag).
		Str("path", path).
		Int("entries", len(cat.Entries)).
		Msg("Loaded source catalogue")
	return cat, nil
}

// Read decodes a source catalogue in CSV form.
func Read(ctx context.Context, r io.Reader, tag string, spec Spec) (*Catalog, error) {
	cols := spec.Columns()
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, errors.NewParseError("csv", "", "reading header", err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	column := func(name string) (int, error) {
		if name == "" {
			return -1, nil
		}
		i, ok := pos[name]
		if !ok {
			return -1, errors.NewConfigError("source "+tag, "column "+name+" not found", errors.ErrNotFound)
		}
		return i, nil
	}

	var idx [6]int
	for k, name := range []string{cols.Names, cols.RA, cols.Dec, cols.Plx, cols.PMRA, cols.PMDE} {
		if idx[k], err = column(name); err != nil {
			return nil, err
		}
	}

	cat := &Catalog{Tag: tag}
	for row := 0; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled(err)
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			pe := errors.NewParseError("csv", "", err.Error(), err)
			pe.Line = row + 2
			return nil, pe
		}

		raw := names.Split(field(rec, idx[0]), cols.Separator)
		e := Entry{
			Index:  row,
			Names:  raw,
			Fnames: names.NormalizeAll(raw),
		}
		for k, dst := range []*float64{&e.RA, &e.Dec, &e.Plx, &e.PMRA, &e.PMDE} {
			v, err := parseNumber(field(rec, idx[k+1]))
			if err != nil {
				pe := errors.NewParseError("csv", "", err.Error(), err)
				pe.Line = row + 2
				pe.Column = header[idx[k+1]]
				return nil, pe
			}
			*dst = v
		}
		cat.Entries = append(cat.Entries, e)
	}
	return cat, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
