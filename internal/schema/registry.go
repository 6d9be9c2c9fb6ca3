package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the table schemas known to the server, keyed by table ID.
// It is the process-local form of the schema provider; a deployment backed
// by a settings database populates it at startup.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]Table
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]Table)}
}

// Register adds a table schema. It returns an error if the schema is
// invalid or the ID is already taken.
func (r *Registry) Register(t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[t.ID]; exists {
		return fmt.Errorf("table already registered: %s", t.ID)
	}
	r.tables[t.ID] = t
	return nil
}

// Get returns a table schema by ID.
func (r *Registry) Get(id string) (Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[id]
	return t, ok
}

// All returns every registered table, sorted by ID for stable listings.
func (r *Registry) All() []Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
