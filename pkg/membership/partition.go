package membership

import (
	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
)

// Selection picks the records a run processes. A job pair selects a
// contiguous slice of the catalogue; otherwise a source tag selects the
// records that source contributed to; otherwise every record is taken.
type Selection struct {
	JobIndex  int
	JobCount  int
	SourceTag string
}

// Validate checks the job pair.
func (s Selection) Validate() error {
	if s.JobCount < 0 {
		return errors.NewValidationError("jobCount", s.JobCount, "cannot be negative")
	}
	if s.JobCount > 0 && (s.JobIndex < 0 || s.JobIndex >= s.JobCount) {
		return errors.NewValidationError("jobIndex", s.JobIndex, "must be in [0, jobCount)")
	}
	return nil
}

// Rows returns the selected record indices in catalogue order. Shards
// have len/JobCount records each and the last shard also takes the
// remainder, so the shards of a job count cover the catalogue exactly once.
func (s Selection) Rows(cat *catalogs.Catalog) []int {
	n := cat.Len()
	switch {
	case s.JobCount > 0:
		size := n / s.JobCount
		start := s.JobIndex * size
		end := start + size
		if s.JobIndex == s.JobCount-1 {
			end = n
		}
		return span(start, end)
	case s.SourceTag != "":
		var rows []int
		for i, r := range cat.Records {
			for _, db := range r.SourceDBs {
				if db == s.SourceTag {
					rows = append(rows, i)
					break
				}
			}
		}
		return rows
	}
	return span(0, n)
}

func span(start, end int) []int {
	rows := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, i)
	}
	return rows
}
