package clickhouse

import (
	"context"
	"fmt"
	"sort"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/storage"
	"github.com/rpindulic/Quaggy/internal/timestamp"
)

// ListingStore implements storage.ListingStore using ClickHouse. MergeTree
// does not enforce uniqueness at insert time, so duplicate detection is done
// with explicit existence checks before writing.
type ListingStore struct {
	conn *Conn
}

// NewListingStore creates a new ListingStore.
func NewListingStore(conn *Conn) *ListingStore {
	return &ListingStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

// Insert adds one observation. Returns ErrDuplicateKey if the
// (item, timestamp) pair already exists.
func (s *ListingStore) Insert(ctx context.Context, o domain.Observation) error {
	exists, err := s.exists(ctx, o.ItemID, o.Time.String())
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}
	return s.sendBatch(ctx, []domain.Observation{o})
}

// InsertBulk adds multiple observations, skipping (item, timestamp) pairs
// already present in the archive or repeated within the batch.
func (s *ListingStore) InsertBulk(ctx context.Context, obs []domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	type key struct {
		itemID int
		ts     string
	}
	seen := make(map[key]struct{})

	var fresh []domain.Observation
	for _, o := range obs {
		k := key{o.ItemID, o.Time.String()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		exists, err := s.exists(ctx, k.itemID, k.ts)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			continue
		}
		fresh = append(fresh, o)
	}
	if len(fresh) == 0 {
		return nil
	}

	return s.sendBatch(ctx, fresh)
}

// GetByItemID retrieves all observations for one item, newest first.
// Timestamps are archived in the unpadded calendar format, so ordering is
// done on the parsed values rather than the raw text.
func (s *ListingStore) GetByItemID(ctx context.Context, itemID int) ([]domain.Observation, error) {
	query := `
		SELECT item_id, ts, num_buy_offers, buy_price, num_sell_offers, sell_price,
		       buy_listing_count, sell_listing_count
		FROM listings
		WHERE item_id = ?
	`

	rows, err := s.conn.Query(ctx, query, int64(itemID))
	if err != nil {
		return nil, fmt.Errorf("query listings by item id: %w", err)
	}
	defer rows.Close()

	obs, err := scanListings(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Time.Compare(obs[j].Time) > 0
	})
	return obs, nil
}

// Truncate removes every archived observation.
func (s *ListingStore) Truncate(ctx context.Context) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE listings`); err != nil {
		return fmt.Errorf("truncate listings: %w", err)
	}
	return nil
}

func (s *ListingStore) sendBatch(ctx context.Context, obs []domain.Observation) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO listings (
			item_id, ts, num_buy_offers, buy_price, num_sell_offers, sell_price,
			buy_listing_count, sell_listing_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range obs {
		err = batch.Append(
			int64(o.ItemID), o.Time.String(),
			uint32(o.NumBuyOffers), o.BuyPrice,
			uint32(o.NumSellOffers), o.SellPrice,
			uint32(o.BuyListingCount), uint32(o.SellListingCount),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// exists checks if an observation with the given key is already archived.
func (s *ListingStore) exists(ctx context.Context, itemID int, ts string) (bool, error) {
	query := `
		SELECT count(*) FROM listings
		WHERE item_id = ? AND ts = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, int64(itemID), ts).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows needed by scanners.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanListings(rows chRows) ([]domain.Observation, error) {
	var obs []domain.Observation

	for rows.Next() {
		var (
			o                         domain.Observation
			itemID                    int64
			ts                        string
			numBuy, numSell           uint32
			buyListings, sellListings uint32
		)

		err := rows.Scan(
			&itemID, &ts,
			&numBuy, &o.BuyPrice,
			&numSell, &o.SellPrice,
			&buyListings, &sellListings,
		)
		if err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}

		o.ItemID = int(itemID)
		o.NumBuyOffers = int(numBuy)
		o.NumSellOffers = int(numSell)
		o.BuyListingCount = int(buyListings)
		o.SellListingCount = int(sellListings)

		o.Time, err = timestamp.Parse(ts)
		if err != nil {
			return nil, fmt.Errorf("parse archived timestamp: %w", err)
		}

		obs = append(obs, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}

	return obs, nil
}
