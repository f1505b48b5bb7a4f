package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ucc-astro/ucc/cmd/application"
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Catalogue and source locations
	CatalogFile string
	SourcesFile string
	DataDir     string
	StoreFile   string
	OutDir      string

	// Membership inputs
	FramesDir         string
	GlobularsFile     string
	ClassifierCommand string

	// Tuning
	Workers            int
	DuplicateNeighbors int
	NeighborClusters   int
	MaxMagnitude       float64
	AmbiguityPolicy    string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (UCC_*)
// 3. .env files
// 4. Config file (./.ucc.yaml or ~/.ucc.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), os.Getenv("UCC_CONFIG"))
}

func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v.SetEnvPrefix("UCC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".ucc")
	}

	// Read config file (a missing default file is not an error)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading "+configFile, err)
		}
	}

	return &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no_color"),
		ConfigFile: v.ConfigFileUsed(),

		CatalogFile: v.GetString("catalog"),
		SourcesFile: v.GetString("sources_file"),
		DataDir:     v.GetString("data_dir"),
		StoreFile:   v.GetString("store"),
		OutDir:      v.GetString("out_dir"),

		FramesDir:         v.GetString("frames_dir"),
		GlobularsFile:     v.GetString("gcs"),
		ClassifierCommand: v.GetString("classifier_cmd"),

		Workers:            v.GetInt("workers"),
		DuplicateNeighbors: v.GetInt("n_dups"),
		NeighborClusters:   v.GetInt("n_neighbors"),
		MaxMagnitude:       v.GetFloat64("max_mag"),
		AmbiguityPolicy:    v.GetString("ambiguity"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources_file", "sources.yaml")
	v.SetDefault("data_dir", "data")
	v.SetDefault("out_dir", ".")
	v.SetDefault("frames_dir", "frames")
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("n_dups", constants.DefaultDuplicateNeighbors)
	v.SetDefault("n_neighbors", constants.DefaultNeighborClusters)
	v.SetDefault("max_mag", constants.DefaultMaxMagnitude)
	v.SetDefault("ambiguity", "keep-first")
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Settings returns the part of the configuration commands consume.
func (c *Config) Settings() application.Settings {
	return application.Settings{
		CatalogFile:        c.CatalogFile,
		SourcesFile:        c.SourcesFile,
		DataDir:            c.DataDir,
		StoreFile:          c.StoreFile,
		OutDir:             c.OutDir,
		FramesDir:          c.FramesDir,
		GlobularsFile:      c.GlobularsFile,
		ClassifierCommand:  c.ClassifierCommand,
		Workers:            c.Workers,
		DuplicateNeighbors: c.DuplicateNeighbors,
		NeighborClusters:   c.NeighborClusters,
		MaxMagnitude:       c.MaxMagnitude,
		AmbiguityPolicy:    c.AmbiguityPolicy,
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")
}

// loadConfigFile loads configuration from an explicit config file.
func loadConfigFile(path string) (*Config, error) {
	return loadConfig(viper.New(), path)
}
