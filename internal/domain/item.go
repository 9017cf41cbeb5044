package domain

import (
	"fmt"
	"sort"

	"github.com/rpindulic/Quaggy/internal/timestamp"
)

// Item holds the static attributes of one tradable item together with its
// retained price history, sorted by descending timestamp (newest first).
type Item struct {
	ID          int    // upstream item ID
	Name        string // display name
	Type        ItemType
	Rarity      int    // rarity/color tier
	Level       int    // minimum level required to use the item
	VendorValue int    // NPC vendor price, -1 if unknown
	IconRef     string // icon image reference

	// History is newest-first. Mutate only through SetHistory, Append
	// and Prune, which preserve the ordering invariant.
	History []Observation
}

func (it *Item) String() string {
	return fmt.Sprintf("%s (%d)", it.Name, it.ID)
}

// Newest returns the most recent observation, if any.
func (it *Item) Newest() (Observation, bool) {
	if len(it.History) == 0 {
		return Observation{}, false
	}
	return it.History[0], true
}

// SetHistory replaces the history and re-establishes newest-first order.
func (it *Item) SetHistory(obs []Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Time.Compare(obs[j].Time) > 0
	})
	it.History = obs
}

// Append adds a fresh observation at the head of the history. The caller is
// expected to append in chronological order (each new observation at least
// as recent as the current newest), which holds for cycle-by-cycle
// ingestion; out-of-order input should go through SetHistory instead.
func (it *Item) Append(o Observation) {
	it.History = append([]Observation{o}, it.History...)
}

// Prune drops every observation strictly older than cutoff. Pruning only
// affects retained in-memory history, never the backing store.
func (it *Item) Prune(cutoff timestamp.Timestamp) {
	kept := it.History[:0]
	for _, o := range it.History {
		if o.Time.Compare(cutoff) >= 0 {
			kept = append(kept, o)
		}
	}
	it.History = kept
}

// Clone returns a deep copy: static attributes plus a cloned history slice.
func (it *Item) Clone() *Item {
	dup := *it
	dup.History = make([]Observation, len(it.History))
	copy(dup.History, it.History)
	return &dup
}
