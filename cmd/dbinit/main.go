// dbinit creates the database schema and seeds the items table from the
// upstream catalog.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpindulic/Quaggy/internal/config"
	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/source"
	"github.com/rpindulic/Quaggy/internal/storage/migrations"
	pgstore "github.com/rpindulic/Quaggy/internal/storage/postgres"
)

func main() {
	skipItems := flag.Bool("skip-items", false, "Create schema only, without syncing the item catalog")
	flag.Parse()

	logger := log.New(os.Stderr, "[dbinit] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	logger.Println("Applying postgres migrations...")
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("postgres migrations: %v", err)
	}

	if cfg.ClickhouseDSN != "" {
		logger.Println("Applying clickhouse migrations...")
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse migrations: %v", err)
		}
		conn.Close()
	}

	if *skipItems {
		logger.Println("Schema ready.")
		return
	}

	logger.Println("Syncing item catalog from upstream...")
	client := source.NewSpidyClient(cfg.SpidyURL(), nil)
	fetched, err := client.FetchCatalog(ctx)
	if err != nil {
		logger.Fatalf("fetch catalog: %v", err)
	}

	items := make([]*domain.Item, 0, len(fetched))
	for _, item := range fetched {
		items = append(items, item)
	}

	store := pgstore.NewItemStore(pool)
	if err := store.InsertBulk(ctx, items); err != nil {
		logger.Fatalf("persist catalog: %v", err)
	}

	logger.Printf("Schema ready, %d items synced.", len(items))
}
