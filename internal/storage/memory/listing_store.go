package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/storage"
)

// ListingStore is an in-memory implementation of storage.ListingStore.
type ListingStore struct {
	mu     sync.RWMutex
	byItem map[int][]domain.Observation
	keys   map[string]struct{}
}

// NewListingStore creates a new in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{
		byItem: make(map[int][]domain.Observation),
		keys:   make(map[string]struct{}),
	}
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

func listingKey(o domain.Observation) string {
	return fmt.Sprintf("%d|%s", o.ItemID, o.Time.String())
}

// Insert adds one observation. Re-inserting the same (item, time) pair
// returns storage.ErrDuplicateKey.
func (s *ListingStore) Insert(_ context.Context, o domain.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := listingKey(o)
	if _, exists := s.keys[key]; exists {
		return storage.ErrDuplicateKey
	}
	s.keys[key] = struct{}{}
	s.byItem[o.ItemID] = append(s.byItem[o.ItemID], o)
	return nil
}

// InsertBulk adds many observations, silently skipping duplicates. Upstream
// only advances an observation's timestamp when prices change, so a cycle
// that re-persists an unchanged snapshot is a no-op.
func (s *ListingStore) InsertBulk(_ context.Context, obs []domain.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range obs {
		key := listingKey(o)
		if _, exists := s.keys[key]; exists {
			continue
		}
		s.keys[key] = struct{}{}
		s.byItem[o.ItemID] = append(s.byItem[o.ItemID], o)
	}
	return nil
}

// GetByItemID retrieves all observations for one item, newest first.
func (s *ListingStore) GetByItemID(_ context.Context, itemID int) ([]domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obs := s.byItem[itemID]
	out := make([]domain.Observation, len(obs))
	copy(out, obs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Compare(out[j].Time) > 0
	})
	return out, nil
}

// Truncate removes every stored observation.
func (s *ListingStore) Truncate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byItem = make(map[int][]domain.Observation)
	s.keys = make(map[string]struct{})
	return nil
}
