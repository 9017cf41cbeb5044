// Package memory provides in-memory storage back ends, used by unit tests
// and one-shot tools that need no durable store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/storage"
)

// ItemStore is an in-memory implementation of storage.ItemStore.
type ItemStore struct {
	mu   sync.RWMutex
	data map[int]*domain.Item
}

// NewItemStore creates a new in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{data: make(map[int]*domain.Item)}
}

// Compile-time interface check.
var _ storage.ItemStore = (*ItemStore)(nil)

// Insert adds one item's static attributes.
func (s *ItemStore) Insert(_ context.Context, item *domain.Item) error {
	if item == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[item.ID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[item.ID] = stripHistory(item)
	return nil
}

// InsertBulk adds many items, skipping ones whose ID already exists.
func (s *ItemStore) InsertBulk(_ context.Context, items []*domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if item == nil {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[item.ID]; exists {
			continue
		}
		s.data[item.ID] = stripHistory(item)
	}
	return nil
}

// GetByID retrieves one item without history.
func (s *ItemStore) GetByID(_ context.Context, id int) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return stripHistory(item), nil
}

// GetAll retrieves every item without history, ordered by ID.
func (s *ItemStore) GetAll(_ context.Context) ([]*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, stripHistory(s.data[id]))
	}
	return out, nil
}

// stripHistory copies static attributes only; the store never holds or
// returns shared history slices.
func stripHistory(item *domain.Item) *domain.Item {
	dup := *item
	dup.History = nil
	return &dup
}
