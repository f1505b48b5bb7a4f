// Package catalogs holds the combined open-cluster catalogue: the record
// model, the ordered catalogue container and its tabular codec.
//
// A Catalog is a plain ordered slice of records. It is not safe for
// concurrent mutation; pipelines that fan out work over a catalogue read
// a snapshot and write results back into a Clone once they are done.
package catalogs

// Catalog is an ordered collection of cluster records.
type Catalog struct {
	Records []*Record
}

// New returns a catalogue holding the given records.
func New(records ...*Record) *Catalog {
	return &Catalog{Records: records}
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Clone returns a deep copy of the catalogue.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return New()
	}
	out := &Catalog{Records: make([]*Record, len(c.Records))}
	for i, r := range c.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// PrimaryFname returns the first fname of record i.
func (c *Catalog) PrimaryFname(i int) string {
	return c.Records[i].PrimaryFname()
}

// PositionalIDs returns the assigned identifiers in catalogue order,
// skipping records that have none.
func (c *Catalog) PositionalIDs() []string {
	ids := make([]string, 0, c.Len())
	for _, r := range c.Records {
		if r.PositionalID != "" {
			ids = append(ids, r.PositionalID)
		}
	}
	return ids
}

// Find returns the index of the record owning fname.
func (c *Catalog) Find(fname string) (int, bool) {
	for i, r := range c.Records {
		for _, f := range r.Fnames {
			if f == fname {
				return i, true
			}
		}
	}
	return -1, false
}

// Positions returns the galactic coordinate columns.
func (c *Catalog) Positions() (lon, lat []float64) {
	lon = make([]float64, c.Len())
	lat = make([]float64, c.Len())
	for i, r := range c.Records {
		lon[i], lat[i] = r.GLON, r.GLAT
	}
	return lon, lat
}
