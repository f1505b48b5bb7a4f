package catalogs

import "math"

// Record is one physical cluster in the combined catalogue. Numeric
// fields hold NaN when undefined; PositionalID is empty until assigned.
type Record struct {
	SourceDBs     []string `json:"sourceDBs"`
	SourceIndices []int    `json:"sourceIndices"`
	Names         []string `json:"names"`

	RA   float64 `json:"ra"`
	Dec  float64 `json:"dec"`
	GLON float64 `json:"glon"`
	GLAT float64 `json:"glat"`
	Plx  float64 `json:"plx"`
	PMRA float64 `json:"pmRA"`
	PMDE float64 `json:"pmDE"`

	PositionalID    string   `json:"positionalID,omitempty"`
	Fnames          []string `json:"fnames"`
	DuplicateFnames []string `json:"duplicateFnames,omitempty"`

	Membership *Membership `json:"membership,omitempty"`
}

// Membership holds the outcome of the last membership validation run.
type Membership struct {
	R50          float64 `json:"r50"`
	NMembers     int     `json:"nMembers"`
	FixedCenters bool    `json:"fixedCenters"`
	CenterFlags  string  `json:"centerFlags"`
	ClassA       string  `json:"classA"`
	ClassB       float64 `json:"classB"`
}

// NewRecord returns a record with every numeric field undefined.
func NewRecord() *Record {
	nan := math.NaN()
	return &Record{RA: nan, Dec: nan, GLON: nan, GLAT: nan, Plx: nan, PMRA: nan, PMDE: nan}
}

// PrimaryFname is the first matching key of the record, or "".
func (r *Record) PrimaryFname() string {
	if len(r.Fnames) == 0 {
		return ""
	}
	return r.Fnames[0]
}

// HasKinematics reports whether both proper motion and parallax are defined.
func (r *Record) HasKinematics() bool {
	return !math.IsNaN(r.PMRA) && !math.IsNaN(r.PMDE) && !math.IsNaN(r.Plx)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.SourceDBs = cloneStrings(r.SourceDBs)
	c.SourceIndices = append([]int(nil), r.SourceIndices...)
	c.Names = cloneStrings(r.Names)
	c.Fnames = cloneStrings(r.Fnames)
	c.DuplicateFnames = cloneStrings(r.DuplicateFnames)
	if r.Membership != nil {
		m := *r.Membership
		c.Membership = &m
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
