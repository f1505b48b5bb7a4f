// Package names turns the free-form cluster identifiers found in source
// catalogues into matchable keys (fnames) and keeps the human-readable
// name lists of catalogue records tidy.
package names

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// FSR 5, FSR_0005, FSR-005., FSR'7, fsr0005
	fsrPattern = regexp.MustCompile(`(?i)^FSR[\s_\-.']*(\d+)[\s_\-.']*$`)

	// ESO 129-15, ESO_129_15, ESO129_15, ESO_129-15.
	esoPattern = regexp.MustCompile(`(?i)^ESO[\s_\-.']*(\d+)[\s_\-.']+(\d+)[\s_\-.']*$`)

	// folded FSR key; punctuation such as F.S.R. only disappears on folding
	fsrKey = regexp.MustCompile(`^fsr(\d+)$`)

	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	separators = strings.NewReplacer(
		" ", "",
		"_", "",
		"-", "",
		".", "",
		"'", "",
		"+", "p",
	)
)

// Normalize returns the matching key (fname) for a raw cluster name.
// Applying it to its own output returns the same key.
func Normalize(name string) string {
	key := Fold(RenameFamilies(strings.TrimSpace(name)))
	if m := fsrKey.FindStringSubmatch(key); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return fmt.Sprintf("fsr%04d", n)
		}
	}
	return key
}

// NormalizeAll normalises every name, keeping order and dropping repeats.
func NormalizeAll(names []string) []string {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, Normalize(name))
	}
	return Unique(keys)
}

// RenameFamilies rewrites the FSR and ESO naming families to a single
// spelling each: FSR_nnnn and ESO_nnn_nn. Anything else is returned as is.
func RenameFamilies(name string) string {
	if m := fsrPattern.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return fmt.Sprintf("FSR_%04d", n)
		}
	}
	if m := esoPattern.FindStringSubmatch(name); m != nil {
		n1, err1 := strconv.Atoi(m[1])
		n2, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			return fmt.Sprintf("ESO_%03d_%02d", n1, n2)
		}
	}
	return name
}

// Fold lowercases a name and removes separators. A '+' becomes the letter
// 'p' so that J0644.8-0925 and J0644.8+0925 stay distinct.
func Fold(name string) string {
	folded, _, err := transform.String(stripAccents, name)
	if err != nil {
		folded = name
	}
	return separators.Replace(strings.ToLower(folded))
}

// Split breaks a raw names cell on sep, trimming blanks and dropping empty tokens.
func Split(raw, sep string) []string {
	if sep == "" {
		sep = ","
	}
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Unique removes repeated strings, keeping the first occurrence of each.
func Unique(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// PreferSpaced collapses spelling variants of the same name, keeping the
// spaced form: "Berkeley 102" replaces "Berkeley102" and "Berkeley_102".
func PreferSpaced(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	for _, n := range list {
		if !strings.Contains(n, " ") {
			continue
		}
		joined := strings.ReplaceAll(n, " ", "")
		underscored := strings.ReplaceAll(n, " ", "_")
		for j, other := range out {
			if other == joined || other == underscored {
				out[j] = n
			}
		}
	}
	return Unique(out)
}
