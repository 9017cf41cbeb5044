// Package source fetches catalog and price data from an upstream trading
// post API.
package source

import (
	"context"
	"errors"

	"github.com/rpindulic/Quaggy/internal/domain"
)

// ErrTransient indicates an upstream failure that may succeed on retry
// (network error, non-200 status, malformed payload).
var ErrTransient = errors.New("transient upstream error")

// Source provides catalog and price data from an upstream API.
type Source interface {
	// FetchCatalog retrieves every known item's static attributes,
	// without history.
	FetchCatalog(ctx context.Context) (map[int]*domain.Item, error)

	// FetchSnapshot retrieves the current market state for every item.
	FetchSnapshot(ctx context.Context) (domain.Snapshot, error)

	// FetchItemHistory retrieves one item's full stored price history,
	// newest first.
	FetchItemHistory(ctx context.Context, itemID int) ([]domain.Observation, error)
}
