// Package engine runs the update cycle: poll the upstream market, persist
// observations, broadcast feature digests, and maintain retained history.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpindulic/Quaggy/internal/catalog"
	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/features"
	"github.com/rpindulic/Quaggy/internal/observability"
	"github.com/rpindulic/Quaggy/internal/source"
	"github.com/rpindulic/Quaggy/internal/storage"
)

// DigestSink receives per-item feature digests.
type DigestSink interface {
	Send(ctx context.Context, digest features.Digest) error
}

// Options for creating an Engine.
type Options struct {
	Source   source.Source
	Listings storage.ListingStore
	// Archive is an optional second listing store (the analytical
	// archive); nil disables archiving.
	Archive storage.ListingStore
	Sink    DigestSink
	Catalog *catalog.Catalog

	// Interval is the pause between cycles.
	Interval time.Duration
	// HorizonDays bounds retained in-memory history.
	HorizonDays int
	// Parallelism caps concurrent per-item extraction; zero means
	// GOMAXPROCS.
	Parallelism int

	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Engine owns the catalog and drives the update cycle.
type Engine struct {
	src      source.Source
	listings storage.ListingStore
	archive  storage.ListingStore
	sink     DigestSink
	catalog  *catalog.Catalog

	interval    time.Duration
	horizonDays int
	parallelism int

	metrics *observability.Metrics
	logger  *slog.Logger
}

// CycleResult summarizes one update cycle.
type CycleResult struct {
	SnapshotSize int
	Persisted    int
	Broadcast    int
	Skipped      int
}

// New creates a new Engine.
func New(opts Options) *Engine {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics("")
	}

	return &Engine{
		src:         opts.Source,
		listings:    opts.Listings,
		archive:     opts.Archive,
		sink:        opts.Sink,
		catalog:     opts.Catalog,
		interval:    opts.Interval,
		horizonDays: opts.HorizonDays,
		parallelism: parallelism,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run drives cycles until the context is cancelled. A failed cycle is
// logged and the loop continues; upstream hiccups are expected.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		result, err := e.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.metrics.RecordCycle("error", time.Since(start).Seconds())
			e.logger.Error("cycle failed", "error", err)
		} else {
			e.metrics.RecordCycle("ok", time.Since(start).Seconds())
			e.metrics.LastSuccessfulCycle.Set(float64(time.Now().Unix()))
			e.logger.Info("cycle complete",
				"snapshot_size", result.SnapshotSize,
				"persisted", result.Persisted,
				"broadcast", result.Broadcast,
				"skipped", result.Skipped,
				"elapsed", time.Since(start))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle performs one update cycle: fetch a live snapshot, persist it,
// broadcast digests for every item, then fold the snapshot into retained
// history and prune to the horizon. The catalog is read-only while the
// extraction batch runs; it is mutated only after the batch completes.
func (e *Engine) RunCycle(ctx context.Context) (*CycleResult, error) {
	snap, err := e.src.FetchSnapshot(ctx)
	if err != nil {
		e.metrics.RecordUpstreamError("snapshot")
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	e.metrics.SnapshotSize.Set(float64(snap.Len()))

	obs := snap.All()
	if err := e.listings.InsertBulk(ctx, obs); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	if e.archive != nil {
		if err := e.archive.InsertBulk(ctx, obs); err != nil {
			return nil, fmt.Errorf("archive snapshot: %w", err)
		}
	}
	e.metrics.ObservationsSaved.Add(float64(len(obs)))

	broadcast, skipped, err := e.broadcastDigests(ctx, snap)
	if err != nil {
		return nil, err
	}

	e.catalog.AddCurrentState(snap)
	e.catalog.PruneDays(e.horizonDays)
	e.metrics.RetainedHistorySize.Set(float64(e.retainedObservations()))

	return &CycleResult{
		SnapshotSize: snap.Len(),
		Persisted:    len(obs),
		Broadcast:    broadcast,
		Skipped:      skipped,
	}, nil
}

// broadcastDigests extracts and sends a digest for every catalog item, in
// parallel across items. Items that cannot be predicted are skipped; a
// failing sink aborts the batch.
func (e *Engine) broadcastDigests(ctx context.Context, snap domain.Snapshot) (broadcast, skipped int, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	results := make(chan bool)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for sent := range results {
			if sent {
				broadcast++
			} else {
				skipped++
			}
		}
	}()

	for _, id := range e.catalog.IDs() {
		item := e.catalog.Get(id)
		g.Go(func() error {
			live, ok := snap.Get(item.ID)
			if !ok {
				e.metrics.RecordSkip("absent_from_snapshot")
				results <- false
				return nil
			}

			start := time.Now()
			digest, ok, err := features.BuildDigest(item, live)
			e.metrics.ExtractionLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				// A single item with unusable history must not
				// take the batch down.
				e.metrics.ExtractionErrors.Inc()
				e.logger.Warn("extraction failed", "item_id", item.ID, "error", err)
				results <- false
				return nil
			}
			if !ok {
				e.metrics.RecordSkip("not_predictable")
				results <- false
				return nil
			}

			if err := e.sink.Send(gctx, digest); err != nil {
				return fmt.Errorf("broadcast item %d: %w", item.ID, err)
			}
			e.metrics.DigestsBroadcast.Inc()
			results <- true
			return nil
		})
	}

	err = g.Wait()
	close(results)
	<-done
	if err != nil {
		return 0, 0, err
	}
	return broadcast, skipped, nil
}

func (e *Engine) retainedObservations() int {
	total := 0
	for _, id := range e.catalog.IDs() {
		total += len(e.catalog.Get(id).History)
	}
	return total
}
