package mapping

import (
	"sort"
	"sync"
)

// Registry is a read-mostly catalog over a mapping Table. Lookups take a read
// lock so the table can be swapped atomically when an external mapping file
// changes on disk.
type Registry struct {
	mu    sync.RWMutex
	table Table
}

// NewRegistry creates a registry over the given table.
func NewRegistry(t Table) *Registry {
	return &Registry{table: t}
}

// Lookup returns the entry for a dataset identifier.
// Returns false if the dataset is not in the catalog.
func (r *Registry) Lookup(key string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.table[key]
	return entry, ok
}

// Keys returns all dataset identifiers, sorted for consistent ordering.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.Keys()
}

// Inputs returns the identifiers of datasets that originate as model inputs.
// Sorted by key for consistent ordering.
func (r *Registry) Inputs() []string {
	return r.selectKeys(func(e Entry) bool { return e.Input })
}

// Outputs returns the identifiers of datasets produced by the model run.
// Sorted by key for consistent ordering.
func (r *Registry) Outputs() []string {
	return r.selectKeys(func(e Entry) bool { return !e.Input })
}

// RequiredKeys returns the identifiers of datasets a translation cannot
// proceed without.
func (r *Registry) RequiredKeys() []string {
	return r.selectKeys(Entry.IsRequired)
}

// Count returns the number of datasets in the catalog.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table)
}

// Replace swaps the catalog contents. Used for hot reload when the backing
// mapping file changes.
func (r *Registry) Replace(t Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = t
}

// Snapshot returns a copy of the current table. Mutating the copy does not
// affect the registry.
func (r *Registry) Snapshot() Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(Table, len(r.table))
	for k, v := range r.table {
		out[k] = v
	}
	return out
}

func (r *Registry) selectKeys(keep func(Entry) bool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for k, e := range r.table {
		if keep(e) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
