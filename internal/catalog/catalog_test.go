package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestUsableIndexesLeadingField tests that only indexes whose first field is
// constrained are usable.
func TestUsableIndexesLeadingField(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.AddCollection(Collection{
		Name: "users",
		Indexes: []Index{
			{Name: "idx_a", Collection: "users", Fields: []string{"a"}},
			{Name: "idx_b_a", Collection: "users", Fields: []string{"b", "a"}},
			{Name: "idx_a_c", Collection: "users", Fields: []string{"a", "c"}},
		},
	})

	tests := []struct {
		name     string
		paths    []string
		expected []string
	}{
		{name: "leading match", paths: []string{"a"}, expected: []string{"idx_a", "idx_a_c"}},
		{name: "second field only", paths: []string{"c"}, expected: nil},
		{name: "both leads", paths: []string{"a", "b"}, expected: []string{"idx_a", "idx_a_c", "idx_b_a"}},
		{name: "no match", paths: []string{"z"}, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cat.UsableIndexes("users", tt.paths)
			var names []string
			for _, idx := range got {
				names = append(names, idx.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

// TestUsableIndexesUnknownCollection tests the empty result for an unknown
// collection.
func TestUsableIndexesUnknownCollection(t *testing.T) {
	cat := NewMemoryCatalog()
	assert.Nil(t, cat.UsableIndexes("nope", []string{"a"}))
}

// TestAddIndexCreatesCollection tests that AddIndex registers the collection
// implicitly.
func TestAddIndexCreatesCollection(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.AddIndex(Index{Name: "idx_a", Collection: "orders", Fields: []string{"a"}})

	assert.Equal(t, []string{"orders"}, cat.Collections())
	got := cat.UsableIndexes("orders", []string{"a"})
	assert.Len(t, got, 1)
}

// TestCollectionsSorted tests deterministic collection listing.
func TestCollectionsSorted(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.AddCollection(Collection{Name: "zebra"})
	cat.AddCollection(Collection{Name: "alpha"})
	cat.AddCollection(Collection{Name: "mango"})

	assert.Equal(t, []string{"alpha", "mango", "zebra"}, cat.Collections())
}
