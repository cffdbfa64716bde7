// internal/knowledge/matcher.go
package knowledge

import "strings"

// Normalize lowercases and trims a query for pattern matching.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Match iterates the table in declared order and returns the first entry
// one of whose patterns is a substring of the normalized query. Exact
// substring containment only; fuzzy matching would raise the
// false-positive risk on a closed-domain table.
func (t *Table) Match(normalizedQuery string) (*Entry, bool) {
	for i := range t.entries {
		e := &t.entries[i]
		for _, p := range e.MatchPatterns {
			if strings.Contains(normalizedQuery, p) {
				return e, true
			}
		}
	}
	return nil, false
}

// MatchQuery normalizes and matches in one step.
func (t *Table) MatchQuery(query string) (*Entry, bool) {
	return t.Match(Normalize(query))
}
