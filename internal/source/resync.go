package source

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rpindulic/Quaggy/internal/storage"
	"github.com/rpindulic/Quaggy/internal/timestamp"
)

// ResyncOptions controls a history resync.
type ResyncOptions struct {
	// Fresh wipes the listing store before syncing.
	Fresh bool
	// HorizonDays bounds how far back synced observations may reach.
	HorizonDays int
	// StartID skips items with a smaller ID, allowing an interrupted sync
	// to resume where it left off.
	StartID int
}

// ResyncHistory pulls the full listing history for every catalog item from
// the upstream source and persists the observations that fall within the
// horizon. Items with no history are skipped.
func ResyncHistory(ctx context.Context, src Source, listings storage.ListingStore, opts ResyncOptions, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	cutoff := timestamp.DaysBack(opts.HorizonDays)

	if opts.Fresh {
		if err := listings.Truncate(ctx); err != nil {
			return fmt.Errorf("truncate listings: %w", err)
		}
	}

	catalog, err := src.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}

	ids := make([]int, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for i, id := range ids {
		if id < opts.StartID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Info("syncing item history",
			"item_id", id, "done", i, "total", len(ids))

		history, err := src.FetchItemHistory(ctx, id)
		if err != nil {
			return fmt.Errorf("fetch history for item %d: %w", id, err)
		}
		if len(history) == 0 {
			continue
		}

		kept := history[:0]
		for _, o := range history {
			if o.Time.Compare(cutoff) >= 0 {
				kept = append(kept, o)
			}
		}
		if len(kept) == 0 {
			continue
		}

		if err := listings.InsertBulk(ctx, kept); err != nil {
			return fmt.Errorf("persist history for item %d: %w", id, err)
		}
	}

	return nil
}
