package filter

import (
	"math"
	"sort"

	"github.com/rpindulic/Quaggy/internal/catalog"
	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/features"
)

// sortTolerance is the absolute difference below which two sort-key values
// are treated as equal; vectors that close keep their pre-sort order.
const sortTolerance = 1e-4

// Matches reports whether a vector satisfies the spec: its item type is one
// of the allowed types and every bounded feature lies within [min, max].
func (s *Spec) Matches(v *domain.FeatureVector) bool {
	if _, ok := s.Types[domain.ItemType(int(v.ItemType))]; !ok {
		return false
	}
	for f, min := range s.Min {
		if v.Get(f) < min {
			return false
		}
	}
	for f, max := range s.Max {
		if v.Get(f) > max {
			return false
		}
	}
	return true
}

// FilterAll extracts one feature vector per item using the spec's window and
// trade modes, keeps those that match, and returns them sorted by the spec's
// sort feature. Items with no history, or absent from the snapshot, are
// skipped. Inputs are not mutated.
func FilterAll(cat *catalog.Catalog, snap domain.Snapshot, s *Spec) []*domain.FeatureVector {
	var matched []*domain.FeatureVector
	for _, id := range cat.IDs() {
		item := cat.Get(id)
		if len(item.History) == 0 {
			continue
		}
		live, ok := snap.Get(id)
		if !ok {
			continue
		}
		v, err := features.Extract(item, live, s.HistoryDays, s.BuyMode, s.SellMode)
		if err != nil {
			// Empty or too-short history: skip the item, not the batch.
			continue
		}
		if s.Matches(v) {
			matched = append(matched, v)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].Get(s.SortBy), matched[j].Get(s.SortBy)
		if math.Abs(a-b) < sortTolerance {
			return false
		}
		if s.SortAscending {
			return a < b
		}
		return a > b
	})
	return matched
}
