package catalog

import "sort"

// Index describes one secondary index over a collection.
type Index struct {
	// Name is unique within the collection.
	Name string

	// Collection is the owning collection.
	Collection string

	// Fields are the indexed attribute paths, in index order.
	// Dotted paths address nested attributes ("address.city").
	Fields []string

	// Unique marks a uniqueness constraint.
	Unique bool

	// Sparse indexes skip documents missing the indexed attributes.
	Sparse bool
}

// Collection describes one document collection and its indexes.
type Collection struct {
	Name    string
	Indexes []Index
}

// Catalog answers index lookups for the optimizer.
type Catalog interface {
	// UsableIndexes returns the indexes on collection whose first field is
	// among the given attribute paths. An index can serve a range scan only
	// when its leading field is constrained; further fields tighten the scan
	// but are not required. Results are ordered by index name.
	UsableIndexes(collection string, attributePaths []string) []Index
}

// MemoryCatalog is an in-process Catalog backed by a map.
type MemoryCatalog struct {
	collections map[string]*Collection
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{collections: make(map[string]*Collection)}
}

// AddCollection registers a collection, replacing any previous definition.
func (c *MemoryCatalog) AddCollection(coll Collection) {
	stored := coll
	c.collections[coll.Name] = &stored
}

// AddIndex registers an index, creating its collection if needed.
func (c *MemoryCatalog) AddIndex(idx Index) {
	coll, ok := c.collections[idx.Collection]
	if !ok {
		coll = &Collection{Name: idx.Collection}
		c.collections[idx.Collection] = coll
	}
	coll.Indexes = append(coll.Indexes, idx)
}

// Collections returns all collection names in ascending order.
func (c *MemoryCatalog) Collections() []string {
	names := make([]string, 0, len(c.collections))
	for name := range c.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UsableIndexes implements Catalog.
func (c *MemoryCatalog) UsableIndexes(collection string, attributePaths []string) []Index {
	coll, ok := c.collections[collection]
	if !ok {
		return nil
	}
	return selectUsable(coll.Indexes, attributePaths)
}

// selectUsable filters indexes by leading-field coverage and orders the
// result by name. Shared by the memory and SQLite catalogs.
func selectUsable(indexes []Index, attributePaths []string) []Index {
	paths := make(map[string]bool, len(attributePaths))
	for _, p := range attributePaths {
		paths[p] = true
	}

	var out []Index
	for _, idx := range indexes {
		if len(idx.Fields) == 0 {
			continue
		}
		if paths[idx.Fields[0]] {
			out = append(out, idx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
