package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpindulic/Quaggy/internal/catalog"
	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/features"
	"github.com/rpindulic/Quaggy/internal/observability"
	"github.com/rpindulic/Quaggy/internal/storage/memory"
	"github.com/rpindulic/Quaggy/internal/timestamp"
)

type fakeSource struct {
	snapshot domain.Snapshot
	err      error
}

func (f *fakeSource) FetchCatalog(context.Context) (map[int]*domain.Item, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSource) FetchSnapshot(context.Context) (domain.Snapshot, error) {
	if f.err != nil {
		return domain.Snapshot{}, f.err
	}
	return f.snapshot, nil
}

func (f *fakeSource) FetchItemHistory(context.Context, int) ([]domain.Observation, error) {
	return nil, errors.New("not implemented")
}

type captureSink struct {
	mu      sync.Mutex
	digests []features.Digest
	err     error
}

func (s *captureSink) Send(_ context.Context, d features.Digest) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests = append(s.digests, d)
	return nil
}

func observation(itemID, daysAgo int, buy, sell float64) domain.Observation {
	return domain.Observation{
		ItemID:        itemID,
		Time:          timestamp.DaysBack(daysAgo),
		NumBuyOffers:  10,
		BuyPrice:      buy,
		NumSellOffers: 12,
		SellPrice:     sell,
	}
}

func testEngine(t *testing.T, src *fakeSource, sink DigestSink, cat *catalog.Catalog) (*Engine, *memory.ListingStore) {
	t.Helper()
	listings := memory.NewListingStore()
	metrics := observability.NewMetricsWithRegistry("", prometheus.NewRegistry())
	return New(Options{
		Source:      src,
		Listings:    listings,
		Sink:        sink,
		Catalog:     cat,
		Interval:    time.Minute,
		HorizonDays: 30,
		Parallelism: 4,
		Metrics:     metrics,
	}), listings
}

func TestRunCycleBroadcastsAndPersists(t *testing.T) {
	tradable := &domain.Item{ID: 1, Name: "Tradable", Type: domain.Weapon}
	tradable.SetHistory([]domain.Observation{
		observation(1, 2, 100, 120),
		observation(1, 1, 102, 122),
	})

	noHistory := &domain.Item{ID: 2, Name: "No History", Type: domain.Armor}

	noBuyers := &domain.Item{ID: 3, Name: "No Buyers", Type: domain.Trophy}
	noBuyers.SetHistory([]domain.Observation{observation(3, 1, 5, 6)})

	cat := catalog.New(map[int]*domain.Item{1: tradable, 2: noHistory, 3: noBuyers})

	liveNoBuyers := observation(3, 0, 5, 6)
	liveNoBuyers.NumBuyOffers = 0
	src := &fakeSource{snapshot: domain.NewSnapshot(map[int]domain.Observation{
		1: observation(1, 0, 105, 125),
		2: observation(2, 0, 50, 60),
		3: liveNoBuyers,
	})}

	sink := &captureSink{}
	eng, listings := testEngine(t, src, sink, cat)

	result, err := eng.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.SnapshotSize)
	assert.Equal(t, 3, result.Persisted)
	assert.Equal(t, 1, result.Broadcast)
	assert.Equal(t, 2, result.Skipped)

	// only the tradable item produced a digest, covering the full
	// window-mode cross product
	require.Len(t, sink.digests, 1)
	wantSize := len(features.WindowDays) * 4 * len(domain.AllFeatures())
	assert.Len(t, sink.digests[0], wantSize)

	// the snapshot was persisted for every item
	for id := 1; id <= 3; id++ {
		obs, err := listings.GetByItemID(context.Background(), id)
		require.NoError(t, err)
		assert.Len(t, obs, 1)
	}

	// the snapshot was folded into retained history after the batch
	assert.Len(t, tradable.History, 3)
	newest, ok := tradable.Newest()
	require.True(t, ok)
	assert.InDelta(t, 105.0, newest.BuyPrice, 0.0001)
	assert.Len(t, noHistory.History, 1)
}

func TestRunCyclePrunesToHorizon(t *testing.T) {
	item := &domain.Item{ID: 1, Name: "Old History", Type: domain.Bag}
	item.SetHistory([]domain.Observation{
		observation(1, 1, 100, 120),
		observation(1, 90, 10, 12), // beyond the 30-day horizon
	})
	cat := catalog.New(map[int]*domain.Item{1: item})

	src := &fakeSource{snapshot: domain.NewSnapshot(map[int]domain.Observation{
		1: observation(1, 0, 105, 125),
	})}

	eng, _ := testEngine(t, src, &captureSink{}, cat)

	_, err := eng.RunCycle(context.Background())
	require.NoError(t, err)

	// live + 1-day-old rows survive, the 90-day-old row is pruned
	require.Len(t, item.History, 2)
	for _, o := range item.History {
		assert.True(t, o.Time.Compare(timestamp.DaysBack(30)) >= 0)
	}
}

func TestRunCycleSnapshotError(t *testing.T) {
	cat := catalog.New(map[int]*domain.Item{})
	src := &fakeSource{err: errors.New("upstream down")}

	eng, _ := testEngine(t, src, &captureSink{}, cat)

	_, err := eng.RunCycle(context.Background())
	assert.Error(t, err)
}

func TestRunCycleSinkErrorAborts(t *testing.T) {
	item := &domain.Item{ID: 1, Name: "Tradable", Type: domain.Weapon}
	item.SetHistory([]domain.Observation{observation(1, 1, 100, 120)})
	cat := catalog.New(map[int]*domain.Item{1: item})

	src := &fakeSource{snapshot: domain.NewSnapshot(map[int]domain.Observation{
		1: observation(1, 0, 105, 125),
	})}

	sink := &captureSink{err: errors.New("edge down")}
	eng, _ := testEngine(t, src, sink, cat)

	_, err := eng.RunCycle(context.Background())
	assert.Error(t, err)

	// history untouched on a failed cycle
	assert.Len(t, item.History, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	cat := catalog.New(map[int]*domain.Item{})
	src := &fakeSource{snapshot: domain.NewSnapshot(nil)}

	eng, _ := testEngine(t, src, &captureSink{}, cat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
