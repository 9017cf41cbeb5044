// Package storage defines the persistence seams for items and their
// historical trading-post listings, plus the shared error vocabulary. Back
// ends live in subpackages (memory, postgres, clickhouse).
package storage

import (
	"context"

	"github.com/rpindulic/Quaggy/internal/domain"
)

// ItemStore persists static item attributes. History is persisted
// separately through a ListingStore.
type ItemStore interface {
	// Insert adds one item's static attributes.
	// Returns ErrDuplicateKey if the item ID exists.
	Insert(ctx context.Context, item *domain.Item) error

	// InsertBulk adds many items, skipping ones whose ID already exists.
	InsertBulk(ctx context.Context, items []*domain.Item) error

	// GetByID retrieves one item without history.
	// Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int) (*domain.Item, error)

	// GetAll retrieves every item without history, ordered by ID.
	GetAll(ctx context.Context) ([]*domain.Item, error)
}

// ListingStore persists historical price observations, keyed by
// (item ID, timestamp).
type ListingStore interface {
	// Insert adds one observation.
	// Returns ErrDuplicateKey if the (item, timestamp) pair exists.
	Insert(ctx context.Context, o domain.Observation) error

	// InsertBulk adds many observations, skipping duplicates. Upstream
	// timestamps only advance when a price changes, so re-persisting an
	// unchanged listing across cycles is a harmless no-op.
	InsertBulk(ctx context.Context, obs []domain.Observation) error

	// GetByItemID retrieves an item's observations, newest first.
	GetByItemID(ctx context.Context, itemID int) ([]domain.Observation, error)

	// Truncate removes every stored observation. Used by a fresh
	// history resync.
	Truncate(ctx context.Context) error
}

// LoadItems reads every item from the item store and, if withHistory is
// set, attaches each item's stored observations newest-first.
func LoadItems(ctx context.Context, items ItemStore, listings ListingStore, withHistory bool) (map[int]*domain.Item, error) {
	all, err := items.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]*domain.Item, len(all))
	for _, item := range all {
		if withHistory {
			obs, err := listings.GetByItemID(ctx, item.ID)
			if err != nil {
				return nil, err
			}
			item.SetHistory(obs)
		}
		out[item.ID] = item
	}
	return out, nil
}
