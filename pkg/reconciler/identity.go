package reconciler

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/sky"
)

const suffixLetters = "abcdefghijklmnopqrstuvwxyz"

// IDSet is the ordered set of positional identifiers in use during one
// ingestion pass.
type IDSet struct {
	ids  []string
	seen map[string]struct{}
}

// NewIDSet returns a set seeded with ids; empty strings are skipped.
func NewIDSet(ids ...string) *IDSet {
	s := &IDSet{seen: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was new.
func (s *IDSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Contains reports whether id is in use.
func (s *IDSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s *IDSet) Len() int { return len(s.ids) }

// IDs returns the identifiers in insertion order.
func (s *IDSet) IDs() []string {
	return append([]string(nil), s.ids...)
}

// FormatID renders the positional identifier of a galactic position,
// truncating both coordinates toward zero to one decimal:
// G<lon:3>.<d><sign><lat:2>.<d>.
func FormatID(glon, glat float64) string {
	lon := tenths(glon)
	lat := tenths(glat)
	sign := "+"
	if lat < 0 {
		sign = "-"
		lat = -lat
	}
	return fmt.Sprintf("G%03d.%d%s%02d.%d", lon/10, lon%10, sign, lat/10, lat%10)
}

// tenths truncates v*10 toward zero. The product is rounded first so
// that representation noise (12.3*10 = 122.99999...) cannot drop a digit.
func tenths(v float64) int {
	return int(math.Trunc(sky.Round(v*10, 9)))
}

// Assign returns an unused identifier for the position and adds it to
// the set. On collision a letter a..z is appended (then replaced); once
// every letter is taken the identifier is marked with the error suffix
// and exhausted is true.
func (s *IDSet) Assign(glon, glat float64) (id string, exhausted bool) {
	base := FormatID(glon, glat)
	id = base
	for i := 0; s.Contains(id); i++ {
		if i >= constants.MaxIDSuffixes {
			id += constants.IDErrorSuffix
			exhausted = true
			break
		}
		id = base + suffixLetters[i:i+1]
	}

	if exhausted {
		marked := id
		for n := 2; s.Contains(id); n++ {
			id = marked + strconv.Itoa(n)
		}
	}
	s.Add(id)
	return id, exhausted
}

// AssignIDs gives every record without a positional ID a new one, in
// catalogue order, and returns the identifiers that exhausted their
// collision letters.
func AssignIDs(records []*catalogs.Record, set *IDSet) (assigned int, warnings []string) {
	for _, r := range records {
		if r.PositionalID != "" {
			continue
		}
		if math.IsNaN(r.GLON) || math.IsNaN(r.GLAT) {
			continue
		}
		id, exhausted := set.Assign(r.GLON, r.GLAT)
		r.PositionalID = id
		assigned++
		if exhausted {
			warnings = append(warnings, id)
		}
	}
	return assigned, warnings
}
