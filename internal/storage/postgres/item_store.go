package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/storage"
)

// ItemStore implements storage.ItemStore using PostgreSQL.
type ItemStore struct {
	pool *Pool
}

// NewItemStore creates a new ItemStore.
func NewItemStore(pool *Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ItemStore = (*ItemStore)(nil)

// Insert adds one item's static attributes. Returns ErrDuplicateKey if the
// item ID already exists.
func (s *ItemStore) Insert(ctx context.Context, item *domain.Item) error {
	if item == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO items (
			id, name, type, rarity, level, vendor_value, icon_ref
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		item.ID,
		item.Name,
		item.Type.String(),
		item.Rarity,
		item.Level,
		item.VendorValue,
		item.IconRef,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// InsertBulk adds multiple items, skipping IDs that already exist. Catalog
// refreshes re-submit every known item, so existing rows are left untouched.
func (s *ItemStore) InsertBulk(ctx context.Context, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO items (
			id, name, type, rarity, level, vendor_value, icon_ref
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	for _, item := range items {
		if item == nil {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			item.ID,
			item.Name,
			item.Type.String(),
			item.Rarity,
			item.Level,
			item.VendorValue,
			item.IconRef,
		)
		if err != nil {
			return fmt.Errorf("insert item in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves one item without history. Returns ErrNotFound if not exists.
func (s *ItemStore) GetByID(ctx context.Context, id int) (*domain.Item, error) {
	query := `
		SELECT id, name, type, rarity, level, vendor_value, icon_ref
		FROM items
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	item, err := scanItem(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get item by id: %w", err)
	}
	return item, nil
}

// GetAll retrieves every item without history, ordered by ID.
func (s *ItemStore) GetAll(ctx context.Context) ([]*domain.Item, error) {
	query := `
		SELECT id, name, type, rarity, level, vendor_value, icon_ref
		FROM items
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// scanItem scans a single row into Item. Type names are stored in their
// canonical space-free form, so parsing cannot fail for rows we wrote.
func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		item     domain.Item
		typeName string
	)

	err := row.Scan(
		&item.ID,
		&item.Name,
		&typeName,
		&item.Rarity,
		&item.Level,
		&item.VendorValue,
		&item.IconRef,
	)
	if err != nil {
		return nil, err
	}

	item.Type, err = domain.ParseItemType(typeName)
	if err != nil {
		return nil, err
	}

	return &item, nil
}
