package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucc-astro/ucc/cmd/application"
	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/store/sqlite"
)

func setup(t *testing.T) application.Settings {
	t.Helper()
	logging.DisableLoggingForTest(t)

	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "TEST.csv"),
		[]byte("Name,RA,DEC\nNGC 2516,119.5,-60.75\nBerkeley 102,354.66,56.64\n"), 0o644))
	sourcesFile := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(sourcesFile,
		[]byte("sources:\n  TEST:\n    names: Name\n    ra: RA\n    dec: DEC\n"), 0o644))

	prev := now
	now = func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })

	return application.Settings{
		SourcesFile:        sourcesFile,
		DataDir:            data,
		OutDir:             dir,
		DuplicateNeighbors: 10,
	}
}

func execute(app application.Application, args ...string) (string, error) {
	cmd := NewCommand(app)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestIngest(t *testing.T) {
	settings := setup(t)
	settings.StoreFile = filepath.Join(settings.OutDir, "ucc.db")
	app := &application.Mock{SettingsValue: settings}

	out, err := execute(app, "TEST")
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested TEST")

	path := filepath.Join(settings.OutDir, "UCC_cat_20260102.csv")
	assert.Contains(t, out, path)
	cat, err := catalogs.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	st, err := sqlite.Open(context.Background(), settings.StoreFile)
	require.NoError(t, err)
	defer st.Close()
	snaps, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "TEST", snaps[0].Source)
}

func TestIngestOutAndDry(t *testing.T) {
	settings := setup(t)
	app := &application.Mock{SettingsValue: settings}

	out := filepath.Join(t.TempDir(), "cat.csv")
	_, err := execute(app, "TEST", "--out", out)
	require.NoError(t, err)
	assert.FileExists(t, out)

	_, err = execute(app, "TEST", "--dry")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(settings.OutDir, "UCC_cat_20260102.csv"))
}

func TestIngestErrors(t *testing.T) {
	settings := setup(t)
	app := &application.Mock{SettingsValue: settings}

	_, err := execute(app)
	assert.Error(t, err)

	_, err = execute(app, "MISSING")
	assert.Error(t, err)

	settings.SourcesFile = filepath.Join(settings.OutDir, "nope.yaml")
	_, err = execute(&application.Mock{SettingsValue: settings}, "TEST")
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("out", time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, filepath.Join("out", "UCC_cat_20251105.csv"), got)
}
