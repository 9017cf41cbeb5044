// The engine daemon: polls the trading post, persists observations,
// broadcasts feature digests to the edge tier, and maintains retained
// history.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpindulic/Quaggy/internal/catalog"
	"github.com/rpindulic/Quaggy/internal/config"
	"github.com/rpindulic/Quaggy/internal/engine"
	"github.com/rpindulic/Quaggy/internal/export"
	"github.com/rpindulic/Quaggy/internal/observability"
	"github.com/rpindulic/Quaggy/internal/source"
	"github.com/rpindulic/Quaggy/internal/storage"
	chstore "github.com/rpindulic/Quaggy/internal/storage/clickhouse"
	pgstore "github.com/rpindulic/Quaggy/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

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

	items := pgstore.NewItemStore(pool)
	listings := pgstore.NewListingStore(pool)

	var archive storage.ListingStore
	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Error("connect to clickhouse", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		archive = chstore.NewListingStore(conn)
	}

	logger.Info("loading catalog with history")
	loaded, err := storage.LoadItems(ctx, items, listings, true)
	if err != nil {
		logger.Error("load catalog", "error", err)
		os.Exit(1)
	}
	cat := catalog.New(loaded)
	cat.PruneDays(cfg.HistoryHorizonDays)
	logger.Info("catalog loaded", "items", cat.Len())

	metrics := observability.NewMetrics("")
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	eng := engine.New(engine.Options{
		Source:      source.NewSpidyClient(cfg.SpidyURL(), logger),
		Listings:    listings,
		Archive:     archive,
		Sink:        export.NewBroadcaster(cfg.DigestEndpoint),
		Catalog:     cat,
		Interval:    cfg.CycleInterval,
		HorizonDays: cfg.HistoryHorizonDays,
		Parallelism: cfg.ExtractParallelism,
		Metrics:     metrics,
		Logger:      logger,
	})

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("engine stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "error", err)
	}
}
