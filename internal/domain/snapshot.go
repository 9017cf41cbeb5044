package domain

import "sort"

// Snapshot is the state of the trading post at one point in time: a mapping
// from item IDs to their current observation. Immutable once built.
type Snapshot struct {
	state map[int]Observation
}

// NewSnapshot builds a snapshot from per-item observations.
func NewSnapshot(state map[int]Observation) Snapshot {
	dup := make(map[int]Observation, len(state))
	for id, o := range state {
		dup[id] = o
	}
	return Snapshot{state: dup}
}

// Get returns the observation for an item, if present.
func (s Snapshot) Get(id int) (Observation, bool) {
	o, ok := s.state[id]
	return o, ok
}

// IDs returns the item IDs present in the snapshot, ascending.
func (s Snapshot) IDs() []int {
	ids := make([]int, 0, len(s.state))
	for id := range s.state {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// All returns every observation in the snapshot, in ascending item-ID order.
func (s Snapshot) All() []Observation {
	ids := s.IDs()
	out := make([]Observation, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.state[id])
	}
	return out
}

// Len returns the number of items in the snapshot.
func (s Snapshot) Len() int {
	return len(s.state)
}
