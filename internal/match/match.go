// Package match maps raw spreadsheet headers to configured field names.
//
// Operators rarely reproduce field names exactly: "Studnt Name" for
// "Student Name", "roll_no" for "Roll No". The matcher tries an exact match
// on a punctuation-insensitive key first and falls back to a bounded edit
// distance. Matches consume the field from the pool, so two headers can
// never claim the same field within one import.
package match

import "strings"

// Edit-distance thresholds. A candidate whose normalized form is shorter
// than shortNameLen tolerates at most shortNameMax edits; longer candidates
// tolerate longNameMax. These are policy constants; changing them changes
// which operator typos are accepted.
const (
	shortNameLen = 5
	shortNameMax = 1
	longNameMax  = 2
)

// Matcher resolves headers against a shrinking pool of field names.
// It is request-scoped: create one per import and discard it.
type Matcher struct {
	pool []string // remaining candidates, in schema order
}

// NewMatcher creates a matcher over the given field names. The slice is
// copied; input order is preserved for deterministic tie-breaking.
func NewMatcher(fields []string) *Matcher {
	pool := make([]string, len(fields))
	copy(pool, fields)
	return &Matcher{pool: pool}
}

// Remaining returns the field names not yet consumed by a match.
func (m *Matcher) Remaining() []string {
	out := make([]string, len(m.pool))
	copy(out, m.pool)
	return out
}

// Match resolves header to one of the remaining field names. An exact match
// on the normalized key wins immediately; otherwise the closest candidate
// within the edit-distance threshold wins, earlier candidates breaking ties.
// A successful match removes the field from the pool.
func (m *Matcher) Match(header string) (string, bool) {
	key := Key(header)
	if key == "" {
		return "", false
	}

	for i, field := range m.pool {
		if Key(field) == key {
			m.consume(i)
			return field, true
		}
	}

	bestIdx := -1
	bestDist := 0
	for i, field := range m.pool {
		fieldKey := Key(field)
		dist := levenshtein(key, fieldKey)

		max := longNameMax
		if len(fieldKey) < shortNameLen {
			max = shortNameMax
		}
		if dist > max {
			continue
		}
		if bestIdx < 0 || dist < bestDist {
			bestIdx = i
			bestDist = dist
		}
	}

	if bestIdx < 0 {
		return "", false
	}
	field := m.pool[bestIdx]
	m.consume(bestIdx)
	return field, true
}

func (m *Matcher) consume(i int) {
	m.pool = append(m.pool[:i], m.pool[i+1:]...)
}

// Key reduces a name to its comparable form: lowercase with every
// non-alphanumeric character removed. "Roll No" and "roll_no" share a key.
func Key(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// levenshtein computes the edit distance between two strings using a
// single-row dynamic programming table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min(prev[j+1]+1, min(curr[j]+1, prev[j]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
