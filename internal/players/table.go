package players

import (
	"sort"
	"strings"

	"github.com/joslsmit/ratm-app/internal/models"
)

// Table is an immutable lookup from normalized player name to reference data.
// It is safe for concurrent reads.
type Table struct {
	byKey  map[string]models.PlayerRecord
	labels []string
}

// NewTable builds a table from records. Records without a name are skipped;
// for duplicate keys the first record wins.
func NewTable(records []models.PlayerRecord) *Table {
	t := &Table{
		byKey:  make(map[string]models.PlayerRecord, len(records)),
		labels: make([]string, 0, len(records)),
	}
	for _, r := range records {
		key := Normalize(r.Name)
		if key == "" {
			continue
		}
		if _, exists := t.byKey[key]; exists {
			continue
		}
		t.byKey[key] = r
		t.labels = append(t.labels, r.Label())

		// Display names can differ from the canonical name (e.g. suffixes)
		if alt := Normalize(r.DisplayName); alt != "" && alt != key {
			if _, exists := t.byKey[alt]; !exists {
				t.byKey[alt] = r
			}
		}
	}
	sort.Strings(t.labels)
	return t
}

// Lookup resolves a free-text player name. A nil table resolves nothing.
func (t *Table) Lookup(name string) (models.PlayerRecord, bool) {
	if t == nil {
		return models.PlayerRecord{}, false
	}
	r, ok := t.byKey[Normalize(name)]
	return r, ok
}

// Len returns the number of distinct players
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.labels)
}

// Names returns the sorted autocomplete labels for every player
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Suggest returns up to limit labels matching query, prefix matches first,
// then substring matches. Matching is case-insensitive.
func (t *Table) Suggest(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if t == nil || q == "" || limit <= 0 {
		return []string{}
	}

	prefix := []string{}
	contains := []string{}
	for _, label := range t.labels {
		l := strings.ToLower(label)
		switch {
		case strings.HasPrefix(l, q):
			prefix = append(prefix, label)
		case strings.Contains(l, q):
			contains = append(contains, label)
		}
	}

	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ConsensusLabel describes how much experts agree on a rank given its standard deviation
func ConsensusLabel(sd float64) string {
	switch {
	case sd < 2:
		return "High Consensus"
	case sd < 5:
		return "Moderate"
	default:
		return "Low Consensus"
	}
}
