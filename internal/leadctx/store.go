// Package leadctx resolves campaign context ids against a read-only store
// loaded once at startup.
package leadctx

import (
	"maps"
	"slices"

	"github.com/sells-group/briefing-service/internal/model"
)

// Store is an immutable map of context id to LeadContext. It is safe for
// concurrent use because nothing writes to it after construction.
type Store struct {
	source   string
	contexts map[string]model.LeadContext
}

// NewStore indexes entries by context id. Entries without an id are
// dropped; for duplicate ids the last entry wins.
func NewStore(source string, entries []model.LeadContext) *Store {
	m := make(map[string]model.LeadContext, len(entries))
	for _, e := range entries {
		if e.ContextID == "" {
			continue
		}
		e.Found = true
		e.PainPoints = slices.Clone(e.PainPoints)
		m[e.ContextID] = e
	}
	return &Store{source: source, contexts: m}
}

// Empty returns a store with no contexts. Every lookup reports not found.
func Empty(source string) *Store {
	return NewStore(source, nil)
}

// Lookup returns the context for id. An unknown id yields Found=false and
// zero fields; it is not an error.
func (s *Store) Lookup(id string) model.LeadContext {
	lc, ok := s.contexts[id]
	if !ok {
		return model.NotFoundContext(id)
	}
	lc.PainPoints = slices.Clone(lc.PainPoints)
	return lc
}

// Len returns the number of contexts.
func (s *Store) Len() int {
	return len(s.contexts)
}

// IDs returns every context id in sorted order.
func (s *Store) IDs() []string {
	return slices.Sorted(maps.Keys(s.contexts))
}

// Source describes where the store was loaded from.
func (s *Store) Source() string {
	return s.source
}
