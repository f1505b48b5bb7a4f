// Package app provides the application context and dependency management
// for the ucc CLI. It centralizes configuration, logging and client
// construction so subcommands only see the application.Application
// interface.
package app

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/ucc-astro/ucc"
	"github.com/ucc-astro/ucc/cmd/application"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
	"github.com/ucc-astro/ucc/pkg/reconciler"
)

// App represents the ucc application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("config", "loading configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Settings returns the resolved settings for commands.
func (a *App) Settings() application.Settings { return a.config.Settings() }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Client creates a client from the configured catalogue. A configured
// catalogue file that does not exist yet starts an empty catalogue.
func (a *App) Client(opts ...ucc.Option) (ucc.Client, error) {
	policy, err := reconciler.ParseAmbiguityPolicy(a.config.AmbiguityPolicy)
	if err != nil {
		return nil, err
	}
	base := []ucc.Option{
		ucc.WithReconcilerOptions(
			reconciler.WithDuplicateNeighbors(a.config.DuplicateNeighbors),
			reconciler.WithAmbiguityPolicy(policy),
		),
	}
	if path := a.config.CatalogFile; path != "" {
		if _, err := os.Stat(path); err == nil {
			base = append(base, ucc.WithCatalogFile(path))
		} else {
			a.logger.Warn().Str("path", path).Msg("Catalogue file not found, starting empty")
		}
	}
	return ucc.New(append(base, opts...)...)
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		logging.SetDefault(*logger)
		return nil
	}
}
