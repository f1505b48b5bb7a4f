// Package application provides the application interface for ucc commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            // ... use client
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/ucc-astro/ucc"
)

// Settings is the resolved configuration commands work from.
type Settings struct {
	// CatalogFile is the combined catalogue CSV; empty starts from nothing
	CatalogFile string
	// SourcesFile is the YAML column-mapping of the source catalogues
	SourcesFile string
	// DataDir holds the source catalogue files
	DataDir string
	// StoreFile is the optional sqlite snapshot database
	StoreFile string
	// OutDir receives dated catalogues and membership artefacts
	OutDir string
	// FramesDir holds the per-cluster star frames
	FramesDir string
	// GlobularsFile is the optional globular cluster table
	GlobularsFile string
	// ClassifierCommand is the external classifier command line
	ClassifierCommand string

	Workers            int
	DuplicateNeighbors int
	NeighborClusters   int
	MaxMagnitude       float64
	AmbiguityPolicy    string
}

// Application provides the application interface that commands need.
// The App struct from cmd/ucc/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Settings returns the resolved configuration.
	Settings() Settings

	// Client creates a client loaded from the configured catalogue, with
	// ingestion configured from Settings. opts are applied last.
	Client(opts ...ucc.Option) (ucc.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
