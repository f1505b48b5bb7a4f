package reconciler

import (
	"strings"

	"github.com/ucc-astro/ucc/pkg/errors"
)

// AmbiguityPolicy decides what happens when one source entry shares
// names with more than one catalogue record.
type AmbiguityPolicy string

const (
	// PolicyKeepFirst merges the entry into the first record hit by the
	// entry's names and reports the ambiguity.
	PolicyKeepFirst AmbiguityPolicy = "keep-first"
	// PolicyReject aborts the ingestion pass with a MergeError.
	PolicyReject AmbiguityPolicy = "reject"
	// PolicyMergeAll folds every record hit, and the entry, into the first.
	PolicyMergeAll AmbiguityPolicy = "merge-all"
)

// String returns the string representation of a policy.
func (p AmbiguityPolicy) String() string {
	return string(p)
}

// Name returns the policy in title case with spaces.
func (p AmbiguityPolicy) Name() string {
	words := strings.Split(p.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// Description returns a human-readable description.
func (p AmbiguityPolicy) Description() string {
	switch p {
	case PolicyKeepFirst:
		return "Merge into the first matching record and report the collision"
	case PolicyReject:
		return "Fail the ingestion pass on any ambiguous name collision"
	case PolicyMergeAll:
		return "Fold every matching record into the first one"
	}
	return "Unknown policy"
}

// ParseAmbiguityPolicy resolves a policy name; the empty string selects
// PolicyKeepFirst.
func ParseAmbiguityPolicy(s string) (AmbiguityPolicy, error) {
	switch p := AmbiguityPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyKeepFirst, nil
	case PolicyKeepFirst, PolicyReject, PolicyMergeAll:
		return p, nil
	}
	return "", &errors.ValidationError{
		Field:   "ambiguity",
		Value:   s,
		Message: "must be one of keep-first, reject, merge-all",
	}
}
