package catalogs

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
)

// Columns is the header of the combined catalogue file.
var Columns = []string{
	"sourceDBs", "sourceIndices", "names", "ra", "dec", "glon", "glat",
	"plx", "pmRA", "pmDE", "positionalID", "fnames", "duplicateFnames",
	"r50", "nMembers", "fixedCenters", "centerFlags", "classA", "classB",
}

const (
	colSourceDBs = iota
	colSourceIndices
	colNames
	colRA
	colDec
	colGLON
	colGLAT
	colPlx
	colPMRA
	colPMDE
	colPositionalID
	colFnames
	colDuplicateFnames
	colR50
	colNMembers
	colFixedCenters
	colCenterFlags
	colClassA
	colClassB
)

// Load reads a combined catalogue file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	cat, err := ReadCSV(f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return cat, nil
}

// Save writes the catalogue to path. The file is written next to its
// destination and renamed into place, so a failed write never leaves a
// partial catalogue behind.
func Save(path string, cat *Catalog) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := WriteCSV(tmp, cat); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// WriteCSV encodes the catalogue with a header row.
func WriteCSV(w io.Writer, cat *Catalog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return errors.WrapIO("write", "", err)
	}
	for _, r := range cat.Records {
		if err := cw.Write(encodeRecord(r)); err != nil {
			return errors.WrapIO("write", "", err)
		}
	}
	cw.Flush()
	return errors.WrapIO("write", "", cw.Error())
}

// ReadCSV decodes a catalogue written by WriteCSV. Columns are located
// by header name, so their order in the file is free.
func ReadCSV(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, errors.NewParseError("csv", "", "reading header", err)
	}

	pos := make([]int, len(Columns))
	for i := range pos {
		pos[i] = -1
	}
	for i, h := range header {
		for j, c := range Columns {
			if strings.TrimSpace(h) == c {
				pos[j] = i
			}
		}
	}
	for j, p := range pos {
		if p < 0 {
			pe := errors.NewParseError("csv", "", "missing column", nil)
			pe.Column = Columns[j]
			return nil, pe
		}
	}

	cat := New()
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			pe := errors.NewParseError("csv", "", err.Error(), err)
			pe.Line = line
			return nil, pe
		}

		fields := make([]string, len(Columns))
		for j, p := range pos {
			if p < len(row) {
				fields[j] = row[p]
			}
		}
		rec, col, err := decodeRecord(fields)
		if err != nil {
			pe := errors.NewParseError("csv", "", err.Error(), err)
			pe.Line = line
			pe.Column = col
			return nil, pe
		}
		cat.Records = append(cat.Records, rec)
	}
	return cat, nil
}

func encodeRecord(r *Record) []string {
	row := make([]string, len(Columns))
	row[colSourceDBs] = joinList(r.SourceDBs)
	idx := make([]string, len(r.SourceIndices))
	for i, v := range r.SourceIndices {
		idx[i] = strconv.Itoa(v)
	}
	row[colSourceIndices] = joinList(idx)
	row[colNames] = joinList(r.Names)
	row[colRA] = formatFloat(r.RA)
	row[colDec] = formatFloat(r.Dec)
	row[colGLON] = formatFloat(r.GLON)
	row[colGLAT] = formatFloat(r.GLAT)
	row[colPlx] = formatFloat(r.Plx)
	row[colPMRA] = formatFloat(r.PMRA)
	row[colPMDE] = formatFloat(r.PMDE)
	row[colPositionalID] = formatString(r.PositionalID)
	row[colFnames] = joinList(r.Fnames)
	row[colDuplicateFnames] = joinList(r.DuplicateFnames)

	m := r.Membership
	if m == nil {
		for _, c := range []int{colR50, colNMembers, colFixedCenters, colCenterFlags, colClassA, colClassB} {
			row[c] = constants.NaNToken
		}
		return row
	}
	row[colR50] = formatFloat(m.R50)
	row[colNMembers] = strconv.Itoa(m.NMembers)
	row[colFixedCenters] = strconv.FormatBool(m.FixedCenters)
	row[colCenterFlags] = formatString(m.CenterFlags)
	row[colClassA] = formatString(m.ClassA)
	row[colClassB] = formatFloat(m.ClassB)
	return row
}

func decodeRecord(f []string) (*Record, string, error) {
	r := NewRecord()
	r.SourceDBs = splitList(f[colSourceDBs])
	for _, s := range splitList(f[colSourceIndices]) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, Columns[colSourceIndices], fmt.Errorf("bad index %q", s)
		}
		r.SourceIndices = append(r.SourceIndices, v)
	}
	r.Names = splitList(f[colNames])
	r.Fnames = splitList(f[colFnames])
	r.DuplicateFnames = splitList(f[colDuplicateFnames])
	r.PositionalID = parseString(f[colPositionalID])

	floatsAt := []struct {
		col int
		dst *float64
	}{
		{colRA, &r.RA}, {colDec, &r.Dec}, {colGLON, &r.GLON}, {colGLAT, &r.GLAT},
		{colPlx, &r.Plx}, {colPMRA, &r.PMRA}, {colPMDE, &r.PMDE},
	}
	for _, fa := range floatsAt {
		v, err := parseFloat(f[fa.col])
		if err != nil {
			return nil, Columns[fa.col], err
		}
		*fa.dst = v
	}

	if undefined(f[colR50]) && undefined(f[colNMembers]) && undefined(f[colClassA]) {
		return r, "", nil
	}
	m := &Membership{CenterFlags: parseString(f[colCenterFlags]), ClassA: parseString(f[colClassA])}
	var err error
	if m.R50, err = parseFloat(f[colR50]); err != nil {
		return nil, Columns[colR50], err
	}
	if m.ClassB, err = parseFloat(f[colClassB]); err != nil {
		return nil, Columns[colClassB], err
	}
	if !undefined(f[colNMembers]) {
		n, err := strconv.ParseFloat(strings.TrimSpace(f[colNMembers]), 64)
		if err != nil {
			return nil, Columns[colNMembers], err
		}
		m.NMembers = int(n)
	}
	if !undefined(f[colFixedCenters]) {
		if m.FixedCenters, err = strconv.ParseBool(strings.TrimSpace(f[colFixedCenters])); err != nil {
			return nil, Columns[colFixedCenters], err
		}
	}
	r.Membership = m
	return r, "", nil
}

func undefined(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, constants.NaNToken)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return constants.NaNToken
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) (float64, error) {
	if undefined(s) {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func formatString(s string) string {
	if s == "" {
		return constants.NaNToken
	}
	return s
}

func parseString(s string) string {
	if undefined(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

func joinList(items []string) string {
	if len(items) == 0 {
		return constants.NaNToken
	}
	return strings.Join(items, constants.ListSeparator)
}

func splitList(s string) []string {
	if undefined(s) {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, constants.ListSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
