package membership

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/sky"
)

// ArtifactPath returns <dir>/<quadrant>/datafiles/<fname>.csv.gz for a record.
func ArtifactPath(dir string, rec *catalogs.Record) (string, error) {
	folder, err := sky.QuadrantFolder(rec.PositionalID)
	if err != nil {
		return "", err
	}
	fname := rec.PrimaryFname()
	if fname == "" {
		return "", errors.NewValidationError("fnames", rec.Fnames, "record has no fname")
	}
	return filepath.Join(dir, folder, "datafiles", fname+".csv.gz"), nil
}

// WriteArtifact stores the kept stars of a split with their
// probabilities, most likely members first, as a gzip-compressed CSV.
func WriteArtifact(dir string, rec *catalogs.Record, s *Split) (string, error) {
	path, err := ArtifactPath(dir, rec)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", filepath.Dir(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return "", errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	zw := gzip.NewWriter(tmp)
	if err := WriteCandidates(zw, s.Combined); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return "", errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		return "", errors.WrapIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", errors.WrapIO("rename", path, err)
	}
	return path, nil
}

// WriteCandidates writes candidates as CSV sorted by descending probability.
func WriteCandidates(w io.Writer, cs []Candidate) error {
	sorted := append([]Candidate(nil), cs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Prob > sorted[j].Prob })

	cw := csv.NewWriter(w)
	header := append([]string{"Source"}, FeatureColumns...)
	if err := cw.Write(append(header, "probs")); err != nil {
		return errors.WrapIO("write", "", err)
	}
	for _, c := range sorted {
		row := []string{
			c.Source,
			formatValue(c.GLON), formatValue(c.GLAT),
			formatValue(c.PMRA), formatValue(c.PMDE), formatValue(c.Plx),
			formatValue(c.EPMRA), formatValue(c.EPMDE), formatValue(c.EPlx),
			formatValue(c.Prob),
		}
		if err := cw.Write(row); err != nil {
			return errors.WrapIO("write", "", err)
		}
	}
	cw.Flush()
	return errors.WrapIO("write", "", cw.Error())
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return constants.NaNToken
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
