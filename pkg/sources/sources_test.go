package sources

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucc-astro/ucc/pkg/errors"
)

const keyedConfig = `
sources:
  CANTAT20:
    names: Name
    ra: RA_ICRS
    dec: DE_ICRS
    plx: plx
    pmra: pmRA
    pmde: pmDE
  KHARCHENKO12:
    file: mwsc.csv
    names: Names
    separator: ";"
    ra: RA
    dec: DEC
`

const bareConfig = `{
  "PERREN22": {"names": "ID", "pos": "RA,DE,Plx,None,None,None", "ref": "ignored"}
}`

func TestParseConfig(t *testing.T) {
	t.Run("keyed yaml", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(keyedConfig))
		require.NoError(t, err)
		assert.Equal(t, []string{"CANTAT20", "KHARCHENKO12"}, cfg.Tags())

		spec, err := cfg.Lookup("KHARCHENKO12")
		require.NoError(t, err)
		assert.Equal(t, "mwsc.csv", spec.File)
		assert.Equal(t, ";", spec.Columns().Separator)
		assert.Empty(t, spec.Columns().Plx)
	})

	t.Run("bare json with compact positions", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(bareConfig))
		require.NoError(t, err)

		spec, err := cfg.Lookup("PERREN22")
		require.NoError(t, err)
		cols := spec.Columns()
		assert.Equal(t, "RA", cols.RA)
		assert.Equal(t, "DE", cols.Dec)
		assert.Equal(t, "Plx", cols.Plx)
		assert.Empty(t, cols.PMRA)
		assert.Empty(t, cols.PMDE)
		assert.Equal(t, ",", cols.Separator)
	})

	t.Run("unknown tag", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(keyedConfig))
		require.NoError(t, err)
		_, err = cfg.Lookup("NOPE")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("unresolvable spec", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("sources:\n  BAD:\n    names: N\n"))
		require.NoError(t, err)
		_, err = cfg.Lookup("BAD")
		var ce *errors.ConfigError
		assert.True(t, errors.As(err, &ce))
	})

	t.Run("marshal round trip", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(keyedConfig))
		require.NoError(t, err)
		data, err := cfg.Marshal()
		require.NoError(t, err)
		again, err := ParseConfig(data)
		require.NoError(t, err)
		assert.Equal(t, cfg.Sources, again.Sources)
	})
}

const cantatCSV = `Name,RA_ICRS,DE_ICRS,plx,pmRA,pmDE
"Berkeley 102, FSR 450",354.66,56.64,0.2,-2.1,-1.4
Berkeley_102,354.65,56.65,,nan,-1.5
`

func TestRead(t *testing.T) {
	spec := Spec{Names: "Name", RA: "RA_ICRS", Dec: "DE_ICRS", Plx: "plx", PMRA: "pmRA", PMDE: "pmDE"}
	cat, err := Read(context.Background(), strings.NewReader(cantatCSV), "CANTAT20", spec)
	require.NoError(t, err)
	require.Len(t, cat.Entries, 2)

	e := cat.Entries[0]
	assert.Equal(t, 0, e.Index)
	assert.Equal(t, []string{"Berkeley 102", "FSR 450"}, e.Names)
	assert.Equal(t, []string{"berkeley102", "fsr0450"}, e.Fnames)
	assert.Equal(t, 354.66, e.RA)
	assert.Equal(t, -1.4, e.PMDE)

	e = cat.Entries[1]
	assert.Equal(t, 1, e.Index)
	assert.Equal(t, []string{"berkeley102"}, e.Fnames)
	assert.True(t, math.IsNaN(e.Plx))
	assert.True(t, math.IsNaN(e.PMRA))
}

func TestReadMissingColumn(t *testing.T) {
	spec := Spec{Names: "Name", RA: "RA_ICRS", Dec: "DE_ICRS", Plx: "Parallax"}
	_, err := Read(context.Background(), strings.NewReader(cantatCSV), "CANTAT20", spec)
	var ce *errors.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Message, "Parallax")
}

func TestReadBadNumber(t *testing.T) {
	spec := Spec{Names: "Name", RA: "RA_ICRS", Dec: "DE_ICRS"}
	data := "Name,RA_ICRS,DE_ICRS\nNGC 188,twelve,85.2\n"
	_, err := Read(context.Background(), strings.NewReader(data), "X", spec)
	var pe *errors.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "RA_ICRS", pe.Column)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	spec := Spec{Names: "Name", RA: "RA_ICRS", Dec: "DE_ICRS", Plx: "plx", PMRA: "pmRA", PMDE: "pmDE"}

	t.Run("plain file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "CANTAT20.csv"), []byte(cantatCSV), 0o644))
		cat, err := Load(context.Background(), dir, "CANTAT20", spec)
		require.NoError(t, err)
		assert.Equal(t, "CANTAT20", cat.Tag)
		assert.Len(t, cat.Entries, 2)
	})

	t.Run("gzip file", func(t *testing.T) {
		f, err := os.Create(filepath.Join(dir, "zipped.csv.gz"))
		require.NoError(t, err)
		zw := gzip.NewWriter(f)
		_, err = zw.Write([]byte(cantatCSV))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())

		gzSpec := spec
		gzSpec.File = "zipped.csv.gz"
		cat, err := Load(context.Background(), dir, "Z", gzSpec)
		require.NoError(t, err)
		assert.Len(t, cat.Entries, 2)
	})

	t.Run("missing file is fatal", func(t *testing.T) {
		_, err := Load(context.Background(), dir, "ABSENT", spec)
		var ioErr *errors.IOError
		assert.True(t, errors.As(err, &ioErr))
	})
}
