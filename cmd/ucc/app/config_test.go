package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/ucc-astro/ucc/pkg/constants"
)

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.SourcesFile != "sources.yaml" {
		t.Errorf("SourcesFile = %q, want sources.yaml", config.SourcesFile)
	}
	if config.Workers != constants.DefaultWorkers {
		t.Errorf("Workers = %d, want %d", config.Workers, constants.DefaultWorkers)
	}
	if config.AmbiguityPolicy != "keep-first" {
		t.Errorf("AmbiguityPolicy = %q, want keep-first", config.AmbiguityPolicy)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies UCC_* variables override defaults.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("UCC_VERBOSE", "true")
	t.Setenv("UCC_WORKERS", "3")
	t.Setenv("UCC_MAX_MAG", "18.5")
	t.Setenv("UCC_CLASSIFIER_CMD", "python fit.py")
	t.Setenv("UCC_AMBIGUITY", "reject")

	config, err := loadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}

	if !config.Verbose {
		t.Error("UCC_VERBOSE not loaded")
	}
	if config.Workers != 3 {
		t.Errorf("Workers = %d, want 3", config.Workers)
	}
	if config.MaxMagnitude != 18.5 {
		t.Errorf("MaxMagnitude = %v, want 18.5", config.MaxMagnitude)
	}
	if config.ClassifierCommand != "python fit.py" {
		t.Errorf("ClassifierCommand = %q", config.ClassifierCommand)
	}
	if config.AmbiguityPolicy != "reject" {
		t.Errorf("AmbiguityPolicy = %q, want reject", config.AmbiguityPolicy)
	}
}

// TestConfig_File verifies an explicit YAML config file is read.
func TestConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ucc.yaml")
	data := "catalog: cat.csv\nframes_dir: /data/frames\nn_dups: 5\nn_neighbors: 7\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile() failed: %v", err)
	}

	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
	settings := config.Settings()
	if settings.CatalogFile != "cat.csv" {
		t.Errorf("CatalogFile = %q, want cat.csv", settings.CatalogFile)
	}
	if settings.FramesDir != "/data/frames" {
		t.Errorf("FramesDir = %q", settings.FramesDir)
	}
	if settings.DuplicateNeighbors != 5 || settings.NeighborClusters != 7 {
		t.Errorf("neighbours = %d/%d, want 5/7", settings.DuplicateNeighbors, settings.NeighborClusters)
	}
}

// TestConfig_MissingFile verifies an explicit config file must exist.
func TestConfig_MissingFile(t *testing.T) {
	if _, err := loadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

// TestConfig_UpdateFromFlags verifies flag precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{LogLevel: "info"}

	config.UpdateFromFlags(true, false, true, "")
	if !config.Verbose || config.Quiet || !config.NoColor {
		t.Errorf("flags not applied: %+v", config)
	}
	if config.LogLevel != "info" {
		t.Errorf("empty log level flag replaced LogLevel: %q", config.LogLevel)
	}

	config.UpdateFromFlags(false, false, false, "debug")
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
	if !config.Verbose {
		t.Error("unset flag cleared Verbose")
	}
}
