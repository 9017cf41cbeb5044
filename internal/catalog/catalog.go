// Package catalog holds the long-lived in-memory view of every tradable
// item and its retained price history. One catalog is owned by the cycle
// loop; it is read-only during an extraction batch and mutated only between
// batches (single-writer, many-reader per cycle).
package catalog

import (
	"sort"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/timestamp"
)

// Catalog maps item IDs to items with history.
type Catalog struct {
	items map[int]*domain.Item
	ids   []int // sorted, for deterministic traversal
}

// New builds a catalog from a map of items. The map is adopted, not copied.
func New(items map[int]*domain.Item) *Catalog {
	ids := make([]int, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return &Catalog{items: items, ids: ids}
}

// IDs returns all item IDs in ascending order.
func (c *Catalog) IDs() []int {
	return c.ids
}

// Get returns the item with the given ID, or nil.
func (c *Catalog) Get(id int) *domain.Item {
	return c.items[id]
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// AddCurrentState appends each snapshot observation to its item's history as
// the most recent state. Items absent from the catalog are ignored.
func (c *Catalog) AddCurrentState(snap domain.Snapshot) {
	for _, o := range snap.All() {
		if it, ok := c.items[o.ItemID]; ok {
			it.Append(o)
		}
	}
}

// Prune drops observations strictly older than cutoff from every item.
func (c *Catalog) Prune(cutoff timestamp.Timestamp) {
	for _, id := range c.ids {
		c.items[id].Prune(cutoff)
	}
}

// PruneDays prunes to a horizon of n days before the current time.
func (c *Catalog) PruneDays(n int) {
	c.Prune(timestamp.DaysBack(n))
}

// MockSnapshot builds a snapshot from each item's most recent observation.
// Items without history are omitted. Useful for running the filter engine
// against stored data without waiting on the upstream API.
func (c *Catalog) MockSnapshot() domain.Snapshot {
	state := make(map[int]domain.Observation)
	for _, id := range c.ids {
		if newest, ok := c.items[id].Newest(); ok {
			state[id] = newest
		}
	}
	return domain.NewSnapshot(state)
}
