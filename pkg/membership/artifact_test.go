package membership

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucc-astro/ucc/pkg/catalogs"
)

func TestArtifactPath(t *testing.T) {
	rec := catalogs.NewRecord()
	rec.PositionalID = "G215.3-12.9b"
	rec.Fnames = []string{"collinder69", "cr69"}

	path, err := ArtifactPath("/data", rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "Q3N", "datafiles", "collinder69.csv.gz"), path)

	rec.PositionalID = "nope"
	_, err = ArtifactPath("/data", rec)
	assert.Error(t, err)

	rec.PositionalID = "G215.3-12.9"
	rec.Fnames = nil
	_, err = ArtifactPath("/data", rec)
	assert.Error(t, err)
}

func TestWriteCandidatesOrder(t *testing.T) {
	cs := []Candidate{
		{Star: Star{Source: "a", GLON: 1, Plx: nan}, Prob: 0.2},
		{Star: Star{Source: "b", GLON: 2}, Prob: 0.9},
		{Star: Star{Source: "c", GLON: 3}, Prob: 0.2},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCandidates(&buf, cs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Source", "GLON", "GLAT", "pmRA", "pmDE", "Plx", "e_pmRA", "e_pmDE", "e_Plx", "probs"}, rows[0])
	assert.Equal(t, "b", rows[1][0])
	assert.Equal(t, "a", rows[2][0])
	assert.Equal(t, "c", rows[3][0])
	assert.Equal(t, "nan", rows[2][5])
	assert.Equal(t, "0.9", rows[1][9])
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	rec := catalogs.NewRecord()
	rec.PositionalID = "G010.0+00.0"
	rec.Fnames = []string{"alpha"}

	split := &Split{Combined: []Candidate{
		{Star: Star{Source: "1", GLON: 10}, Prob: 0.3},
		{Star: Star{Source: "2", GLON: 10.1}, Prob: 0.8},
	}}
	path, err := WriteArtifact(dir, rec, split)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Q1P", "datafiles", "alpha.csv.gz"), path)

	rows := readArtifact(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "2", rows[1][0])

	// No temporary files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func readArtifact(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	rows, err := csv.NewReader(zr).ReadAll()
	require.NoError(t, err)
	return rows
}
