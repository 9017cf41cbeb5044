// historysync backfills the listings table from the upstream API's stored
// price history. Interrupted runs can resume with -start-id.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpindulic/Quaggy/internal/config"
	"github.com/rpindulic/Quaggy/internal/source"
	pgstore "github.com/rpindulic/Quaggy/internal/storage/postgres"
)

func main() {
	fresh := flag.Bool("fresh", false, "Wipe the listings table before syncing")
	startID := flag.Int("start-id", 0, "Skip items with a smaller ID (resume point)")
	horizonDays := flag.Int("horizon-days", 0, "History horizon override in days (default: configured horizon)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	horizon := cfg.HistoryHorizonDays
	if *horizonDays > 0 {
		horizon = *horizonDays
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig.String())
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	client := source.NewSpidyClient(cfg.SpidyURL(), logger)
	listings := pgstore.NewListingStore(pool)

	err = source.ResyncHistory(ctx, client, listings, source.ResyncOptions{
		Fresh:       *fresh,
		HorizonDays: horizon,
		StartID:     *startID,
	}, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("sync interrupted; resume with -start-id")
			return
		}
		logger.Error("history sync failed", "error", err)
		os.Exit(1)
	}

	logger.Info("history sync complete")
}
