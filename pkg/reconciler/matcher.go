package reconciler

// matcher is a hash index from fname to the working record that owns it.
// It is built once per ingestion pass and extended as records are created,
// so later entries see records introduced earlier in the same pass.
type matcher struct {
	owner map[string]int
}

func newMatcher(capacity int) *matcher {
	return &matcher{owner: make(map[string]int, capacity)}
}

// claim records slot as the owner of every key not owned yet.
func (m *matcher) claim(keys []string, slot int) {
	for _, k := range keys {
		if _, ok := m.owner[k]; !ok {
			m.owner[k] = slot
		}
	}
}

// reassign moves every key owned by from over to to.
func (m *matcher) reassign(from, to int) {
	for k, s := range m.owner {
		if s == from {
			m.owner[k] = to
		}
	}
}

// match returns the owner of the first key that has one, following the
// order of keys, and every distinct owner hit. first is -1 on no match.
func (m *matcher) match(keys []string) (first int, hits []int) {
	first = -1
	for _, k := range keys {
		s, ok := m.owner[k]
		if !ok {
			continue
		}
		if first < 0 {
			first = s
		}
		if !containsInt(hits, s) {
			hits = append(hits, s)
		}
	}
	return first, hits
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
