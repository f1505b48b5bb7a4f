// Package constants provides shared constants used throughout the ucc codebase.
// This includes catalogue tolerances, membership thresholds, file permissions
// and other values that must be consistent across ingestion and validation.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Catalogue serialisation constants
const (
	// ListSeparator joins list-valued catalogue fields
	ListSeparator = ";"

	// NaNToken is written for undefined numeric values
	NaNToken = "nan"

	// DefaultNameSeparator splits the names column of a source catalogue
	DefaultNameSeparator = ","

	// CatalogFilePrefix prefixes dated catalogue files (UCC_cat_YYYYMMDD.csv)
	CatalogFilePrefix = "UCC_cat_"

	// CatalogDateLayout is the date layout used in catalogue file names
	CatalogDateLayout = "20060102"
)

// Ingestion constants
const (
	// DefaultDuplicateNeighbors is the number of nearest records inspected for duplicates
	DefaultDuplicateNeighbors = 10

	// CoordinateDecimals is the rounding applied to merged ra/dec and derived glon/glat
	CoordinateDecimals = 4

	// MaxIDSuffixes is the number of collision letters tried before an identifier is marked
	MaxIDSuffixes = 26

	// IDErrorSuffix marks an identifier whose collision letters were exhausted
	IDErrorSuffix = "ERROR"
)

// Membership constants
const (
	// MemberProbability is the probability above which a star is a member
	MemberProbability = 0.5

	// MinMembers is the number of top-probability stars used when too few pass MemberProbability
	MinMembers = 25

	// MaxCenterOffsetArcmin is the largest accepted positional centroid shift
	MaxCenterOffsetArcmin = 5.0

	// WindowPercentile is the radial percentile of provisional members used for the spatial window
	WindowPercentile = 95.0

	// WindowScale multiplies the percentile radius to get the window half-width
	WindowScale = 2.0

	// ProbabilityDecimals is the rounding applied to probabilities in artefacts and the final split
	ProbabilityDecimals = 5

	// DefaultNeighborClusters is the number of nearby clusters considered as contaminants
	DefaultNeighborClusters = 10

	// DefaultMaxMagnitude is the faintest magnitude requested from the frame source
	DefaultMaxMagnitude = 20.0

	// DefaultWorkers is the default number of clusters processed concurrently
	DefaultWorkers = 4
)
