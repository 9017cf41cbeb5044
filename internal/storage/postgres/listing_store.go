package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/storage"
	"github.com/rpindulic/Quaggy/internal/timestamp"
)

// ListingStore implements storage.ListingStore using PostgreSQL.
type ListingStore struct {
	pool *Pool
}

// NewListingStore creates a new ListingStore.
func NewListingStore(pool *Pool) *ListingStore {
	return &ListingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

// Insert adds one price observation. Returns ErrDuplicateKey if the
// (item, timestamp) pair already exists.
func (s *ListingStore) Insert(ctx context.Context, o domain.Observation) error {
	query := `
		INSERT INTO listings (
			item_id, ts, num_buy_offers, buy_price, num_sell_offers, sell_price,
			buy_listing_count, sell_listing_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		o.ItemID,
		o.Time.String(),
		o.NumBuyOffers,
		o.BuyPrice,
		o.NumSellOffers,
		o.SellPrice,
		o.BuyListingCount,
		o.SellListingCount,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// InsertBulk adds multiple observations, skipping (item, timestamp) pairs
// that already exist. The upstream feed only advances a timestamp when
// prices move, so re-persisting an unchanged snapshot is a no-op.
func (s *ListingStore) InsertBulk(ctx context.Context, obs []domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO listings (
			item_id, ts, num_buy_offers, buy_price, num_sell_offers, sell_price,
			buy_listing_count, sell_listing_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (item_id, ts) DO NOTHING
	`

	for _, o := range obs {
		_, err := tx.Exec(ctx, query,
			o.ItemID,
			o.Time.String(),
			o.NumBuyOffers,
			o.BuyPrice,
			o.NumSellOffers,
			o.SellPrice,
			o.BuyListingCount,
			o.SellListingCount,
		)
		if err != nil {
			return fmt.Errorf("insert listing in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByItemID retrieves all observations for one item, newest first.
// Timestamps are stored in the unpadded calendar format, so ordering is
// done on the parsed values rather than the raw text.
func (s *ListingStore) GetByItemID(ctx context.Context, itemID int) ([]domain.Observation, error) {
	query := `
		SELECT item_id, ts, num_buy_offers, buy_price, num_sell_offers, sell_price,
		       buy_listing_count, sell_listing_count
		FROM listings
		WHERE item_id = $1
	`

	rows, err := s.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("get listings by item id: %w", err)
	}
	defer rows.Close()

	obs, err := scanObservations(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Time.Compare(obs[j].Time) > 0
	})
	return obs, nil
}

// Truncate removes every stored observation.
func (s *ListingStore) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE TABLE listings`); err != nil {
		return fmt.Errorf("truncate listings: %w", err)
	}
	return nil
}

func scanObservations(rows pgx.Rows) ([]domain.Observation, error) {
	var obs []domain.Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return obs, nil
}

func scanObservation(row pgx.Row) (domain.Observation, error) {
	var (
		o  domain.Observation
		ts string
	)

	err := row.Scan(
		&o.ItemID,
		&ts,
		&o.NumBuyOffers,
		&o.BuyPrice,
		&o.NumSellOffers,
		&o.SellPrice,
		&o.BuyListingCount,
		&o.SellListingCount,
	)
	if err != nil {
		return domain.Observation{}, err
	}

	o.Time, err = timestamp.Parse(ts)
	if err != nil {
		return domain.Observation{}, err
	}

	return o, nil
}
