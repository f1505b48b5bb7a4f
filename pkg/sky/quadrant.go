package sky

import (
	"strconv"
	"strings"

	"github.com/ucc-astro/ucc/pkg/errors"
)

// QuadrantFolder maps a positional identifier such as "G123.4-05.6b" to
// its artefact folder: Q1..Q4 by galactic longitude quarter followed by
// P (lat >= 0) or N.
func QuadrantFolder(positionalID string) (string, error) {
	lon, lat, err := ParseID(positionalID)
	if err != nil {
		return "", err
	}

	folder := "Q"
	switch {
	case lon < 90:
		folder += "1"
	case lon < 180:
		folder += "2"
	case lon < 270:
		folder += "3"
	default:
		folder += "4"
	}
	if lat >= 0 {
		folder += "P"
	} else {
		folder += "N"
	}
	return folder, nil
}

// ParseID extracts the truncated galactic coordinates from a positional
// identifier, ignoring any collision suffix.
func ParseID(positionalID string) (lon, lat float64, err error) {
	if !strings.HasPrefix(positionalID, "G") || len(positionalID) < 11 {
		return 0, 0, errors.NewValidationError("positionalID", positionalID, "expected G<lon><sign><lat>")
	}
	body := positionalID[1:11]

	lon, err = strconv.ParseFloat(body[:5], 64)
	if err != nil {
		return 0, 0, errors.NewValidationError("positionalID", positionalID, "bad longitude")
	}
	lat, err = strconv.ParseFloat(body[5:], 64)
	if err != nil {
		return 0, 0, errors.NewValidationError("positionalID", positionalID, "bad latitude")
	}
	return lon, lat, nil
}
