// internal/knowledge/table.go
package knowledge

import (
	"fmt"

	"pcaf-advisor/internal/models"
)

// Entry is one curated answer in the knowledge table. Entries are loaded
// once at process start and never mutated.
type Entry struct {
	ID            string
	MatchPatterns []string // declared order matters: first containment wins
	Confidence    models.Confidence
	Body          string
	Sources       []string
	FollowUps     []string
}

// Table is the immutable, declared-order knowledge table.
type Table struct {
	entries []Entry
	byID    map[string]*Entry
}

// NewTable builds the table from the given entries and enforces the
// load-time invariants: unique ids, non-empty sources, 2-4 follow-ups.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: entries,
		byID:    make(map[string]*Entry, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			return nil, fmt.Errorf("knowledge entry %d has no id", i)
		}
		if _, dup := t.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate knowledge entry id %q", e.ID)
		}
		if len(e.MatchPatterns) == 0 {
			return nil, fmt.Errorf("knowledge entry %q has no match patterns", e.ID)
		}
		if len(e.Sources) == 0 {
			return nil, fmt.Errorf("knowledge entry %q has no sources", e.ID)
		}
		if len(e.FollowUps) < 2 || len(e.FollowUps) > 4 {
			return nil, fmt.Errorf("knowledge entry %q must carry 2-4 follow-ups, has %d", e.ID, len(e.FollowUps))
		}
		t.byID[e.ID] = e
	}
	return t, nil
}

// MustNewTable is NewTable for the static default table, where a violation
// is a programming error.
func MustNewTable(entries []Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Get returns the entry with the given id.
func (t *Table) Get(id string) (*Entry, bool) {
	e, ok := t.byID[id]
	return e, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}
