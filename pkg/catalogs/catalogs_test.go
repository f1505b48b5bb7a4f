package catalogs

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucc-astro/ucc/pkg/errors"
)

func sampleCatalog() *Catalog {
	a := NewRecord()
	a.SourceDBs = []string{"KHARCHENKO12", "CANTAT20"}
	a.SourceIndices = []int{4, 17}
	a.Names = []string{"Berkeley 102"}
	a.Fnames = []string{"berkeley102"}
	a.RA, a.Dec = 354.6583, 56.6417
	a.GLON, a.GLAT = 113.0066, -4.8205
	a.Plx, a.PMRA, a.PMDE = 0.2, -2.1, -1.4
	a.PositionalID = "G113.0-04.8"
	a.DuplicateFnames = []string{"fsr0450"}
	a.Membership = &Membership{R50: 1.7, NMembers: 88, FixedCenters: true, CenterFlags: "010", ClassA: "ABD", ClassB: 1.56}

	b := NewRecord()
	b.SourceDBs = []string{"CANTAT20"}
	b.SourceIndices = []int{18}
	b.Names = []string{"FSR 450"}
	b.Fnames = []string{"fsr0450"}
	b.RA, b.Dec = 10, -5
	return New(a, b)
}

func TestCSVRoundTrip(t *testing.T) {
	cat := sampleCatalog()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cat))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	assert.Contains(t, lines[1], "KHARCHENKO12;CANTAT20,4;17,Berkeley 102,")
	assert.True(t, strings.HasSuffix(lines[2], "nan,nan,nan,nan,nan,nan"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())

	assert.Equal(t, cat.Records[0], got.Records[0])

	b := got.Records[1]
	assert.True(t, math.IsNaN(b.Plx))
	assert.True(t, math.IsNaN(b.GLON))
	assert.Empty(t, b.PositionalID)
	assert.Nil(t, b.DuplicateFnames)
	assert.Nil(t, b.Membership)
}

func TestReadCSVErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("sourceDBs,names\nA,b\n"))
		var pe *errors.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "sourceIndices", pe.Column)
	})

	t.Run("bad number", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sampleCatalog()))
		data := strings.Replace(buf.String(), "354.6583", "abc", 1)

		_, err := ReadCSV(strings.NewReader(data))
		var pe *errors.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, 2, pe.Line)
		assert.Equal(t, "ra", pe.Column)
	})

	t.Run("empty input", func(t *testing.T) {
		cat, err := ReadCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Zero(t, cat.Len())
	})
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "UCC_cat_20261016.csv")

	require.NoError(t, Save(path, sampleCatalog()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not survive")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, "G113.0-04.8", got.Records[0].PositionalID)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestCatalogHelpers(t *testing.T) {
	cat := sampleCatalog()

	i, ok := cat.Find("fsr0450")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = cat.Find("nope")
	assert.False(t, ok)

	assert.Equal(t, []string{"G113.0-04.8"}, cat.PositionalIDs())
	assert.Equal(t, "berkeley102", cat.PrimaryFname(0))

	lon, _ := cat.Positions()
	assert.Equal(t, 113.0066, lon[0])
	assert.True(t, cat.Records[0].HasKinematics())
	assert.False(t, cat.Records[1].HasKinematics())
}

func TestCloneIsDeep(t *testing.T) {
	cat := sampleCatalog()
	cp := cat.Clone()

	cp.Records[0].Names[0] = "changed"
	cp.Records[0].Membership.ClassA = "DDD"
	cp.Records[0].SourceIndices[0] = 99

	assert.Equal(t, "Berkeley 102", cat.Records[0].Names[0])
	assert.Equal(t, "ABD", cat.Records[0].Membership.ClassA)
	assert.Equal(t, 4, cat.Records[0].SourceIndices[0])
	assert.Zero(t, (*Catalog)(nil).Len())
}
