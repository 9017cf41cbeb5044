// predict is a one-shot deal finder: it loads stored history, takes a live
// market snapshot, and prints the items matching a filter spec, ranked.
// Mostly useful for testing; ranking normally happens at the edge tier.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rpindulic/Quaggy/internal/catalog"
	"github.com/rpindulic/Quaggy/internal/config"
	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/filter"
	"github.com/rpindulic/Quaggy/internal/source"
	"github.com/rpindulic/Quaggy/internal/storage"
	pgstore "github.com/rpindulic/Quaggy/internal/storage/postgres"
)

func main() {
	specPath := flag.String("spec", "", "Path to the filter JSON file (required)")
	mock := flag.Bool("mock", false, "Rank against each item's newest stored observation instead of a live snapshot")
	limit := flag.Int("limit", 0, "Print at most this many matches (0 = all)")
	flag.Parse()

	logger := log.New(os.Stderr, "[predict] ", log.LstdFlags)

	if *specPath == "" {
		logger.Fatal("-spec is required")
	}

	spec, err := filter.Load(*specPath)
	if err != nil {
		logger.Fatalf("load filter: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	items := pgstore.NewItemStore(pool)
	listings := pgstore.NewListingStore(pool)

	loaded, err := storage.LoadItems(ctx, items, listings, true)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}
	cat := catalog.New(loaded)
	cat.PruneDays(cfg.HistoryHorizonDays)

	var snap domain.Snapshot
	if *mock {
		snap = cat.MockSnapshot()
	} else {
		client := source.NewSpidyClient(cfg.SpidyURL(), nil)
		snap, err = client.FetchSnapshot(ctx)
		if err != nil {
			logger.Fatalf("fetch snapshot: %v", err)
		}
	}

	matches := filter.FilterAll(cat, snap, spec)
	if *limit > 0 && len(matches) > *limit {
		matches = matches[:*limit]
	}

	fmt.Println()
	for _, fv := range matches {
		fmt.Println(fv)
	}
	fmt.Printf("\n%d match(es)\n", len(matches))
}
