package core

import "strings"

// Taxonomy is the closed, externally configured set of category labels.
// Membership is exact (after trimming): unrecognized categories are
// rejected at ingestion, never coerced.
type Taxonomy struct {
	names []string
	set   map[string]struct{}
}

// NewTaxonomy builds a taxonomy from the configured labels, trimming
// whitespace and dropping empties and duplicates while preserving order.
func NewTaxonomy(names []string) *Taxonomy {
	t := &Taxonomy{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := t.set[n]; ok {
			continue
		}
		t.set[n] = struct{}{}
		t.names = append(t.names, n)
	}
	return t
}

// Contains reports whether category is a member of the set.
func (t *Taxonomy) Contains(category string) bool {
	_, ok := t.set[strings.TrimSpace(category)]
	return ok
}

// Names returns the category labels in configured order.
func (t *Taxonomy) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *Taxonomy) Len() int {
	return len(t.names)
}
