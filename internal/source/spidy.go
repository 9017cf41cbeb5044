package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/timestamp"
)

// DefaultSpidyBaseURL is the public GW2 Spidy REST endpoint.
const DefaultSpidyBaseURL = "http://www.gw2spidy.com/api/v0.9/json/"

// SpidyClient implements Source against the GW2 Spidy API. Spidy refers to
// item types by numeric index; the client resolves them through the API's
// type-name index, fetched once and cached.
type SpidyClient struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger

	typesMu   sync.Mutex
	typeNames map[int]string
}

// Compile-time interface check.
var _ Source = (*SpidyClient)(nil)

// NewSpidyClient creates a client for the given base URL. An empty base URL
// selects the public endpoint.
func NewSpidyClient(baseURL string, logger *slog.Logger) *SpidyClient {
	if baseURL == "" {
		baseURL = DefaultSpidyBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &SpidyClient{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

type spidyTypesResponse struct {
	Results []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

type spidyItem struct {
	DataID           int    `json:"data_id"`
	Name             string `json:"name"`
	TypeID           int    `json:"type_id"`
	Rarity           int    `json:"rarity"`
	RestrictionLevel int    `json:"restriction_level"`
	Img              string `json:"img"`

	MinSaleUnitPrice  int    `json:"min_sale_unit_price"`
	SaleAvailability  int    `json:"sale_availability"`
	MaxOfferUnitPrice int    `json:"max_offer_unit_price"`
	OfferAvailability int    `json:"offer_availability"`
	PriceLastChanged  string `json:"price_last_changed"`
}

type spidyItemsResponse struct {
	Results []spidyItem `json:"results"`
}

type spidyListing struct {
	UnitPrice       int    `json:"unit_price"`
	Quantity        int    `json:"quantity"`
	Listings        int    `json:"listings"`
	ListingDatetime string `json:"listing_datetime"`
}

type spidyListingsPage struct {
	Page     int            `json:"page"`
	LastPage int            `json:"last_page"`
	Results  []spidyListing `json:"results"`
}

// FetchCatalog retrieves every item's static attributes from the all-items
// index. Items whose type is missing from the type index or outside the
// known type vocabulary are skipped.
func (c *SpidyClient) FetchCatalog(ctx context.Context) (map[int]*domain.Item, error) {
	typeNames, err := c.loadTypeNames(ctx)
	if err != nil {
		return nil, err
	}

	var payload spidyItemsResponse
	if err := c.getJSON(ctx, "all-items/all", &payload); err != nil {
		return nil, err
	}

	catalog := make(map[int]*domain.Item, len(payload.Results))
	for _, raw := range payload.Results {
		typeName, ok := typeNames[raw.TypeID]
		if !ok {
			return nil, fmt.Errorf("item %d references type id %d missing from type index", raw.DataID, raw.TypeID)
		}
		itemType, err := domain.ParseItemType(typeName)
		if err != nil {
			c.logger.Debug("skipping item with unknown type",
				"item_id", raw.DataID, "type", typeName)
			continue
		}
		catalog[raw.DataID] = &domain.Item{
			ID:          raw.DataID,
			Name:        raw.Name,
			Type:        itemType,
			Rarity:      raw.Rarity,
			Level:       raw.RestrictionLevel,
			VendorValue: -1, // not exposed by this API
			IconRef:     raw.Img,
		}
	}
	return catalog, nil
}

// FetchSnapshot retrieves the current market state for every item from the
// all-items index.
func (c *SpidyClient) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var payload spidyItemsResponse
	if err := c.getJSON(ctx, "all-items/all", &payload); err != nil {
		return domain.Snapshot{}, err
	}

	state := make(map[int]domain.Observation, len(payload.Results))
	for _, raw := range payload.Results {
		ts, err := timestamp.Parse(raw.PriceLastChanged)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("item %d: %w", raw.DataID, err)
		}
		state[raw.DataID] = domain.Observation{
			ItemID:        raw.DataID,
			Time:          ts,
			NumBuyOffers:  raw.OfferAvailability,
			BuyPrice:      float64(raw.MaxOfferUnitPrice),
			NumSellOffers: raw.SaleAvailability,
			SellPrice:     float64(raw.MinSaleUnitPrice),
		}
	}
	return domain.NewSnapshot(state), nil
}

// FetchItemHistory retrieves one item's full listing history. The API stores
// buy and sell listings as separate paged feeds; entries sharing a timestamp
// describe the same market state, so sell listings are loaded first and buy
// listings merged into them by timestamp.
func (c *SpidyClient) FetchItemHistory(ctx context.Context, itemID int) ([]domain.Observation, error) {
	merged := make(map[string]domain.Observation)

	err := c.walkListings(ctx, itemID, "sell", func(l spidyListing, ts timestamp.Timestamp) {
		merged[l.ListingDatetime] = domain.Observation{
			ItemID:           itemID,
			Time:             ts,
			NumSellOffers:    l.Quantity,
			SellPrice:        float64(l.UnitPrice),
			SellListingCount: l.Listings,
		}
	})
	if err != nil {
		return nil, err
	}

	err = c.walkListings(ctx, itemID, "buy", func(l spidyListing, ts timestamp.Timestamp) {
		o, ok := merged[l.ListingDatetime]
		if !ok {
			o = domain.Observation{ItemID: itemID, Time: ts}
		}
		o.NumBuyOffers = l.Quantity
		o.BuyPrice = float64(l.UnitPrice)
		o.BuyListingCount = l.Listings
		merged[l.ListingDatetime] = o
	})
	if err != nil {
		return nil, err
	}

	history := make([]domain.Observation, 0, len(merged))
	for _, o := range merged {
		history = append(history, o)
	}

	item := &domain.Item{ID: itemID}
	item.SetHistory(history)
	return item.History, nil
}

// walkListings pages through one side of an item's listing feed.
func (c *SpidyClient) walkListings(ctx context.Context, itemID int, side string, visit func(spidyListing, timestamp.Timestamp)) error {
	for page, lastPage := 1, 1; page <= lastPage; page++ {
		var payload spidyListingsPage
		path := fmt.Sprintf("listings/%d/%s/%d", itemID, side, page)
		if err := c.getJSON(ctx, path, &payload); err != nil {
			return err
		}
		lastPage = payload.LastPage

		for _, l := range payload.Results {
			ts, err := timestamp.Parse(l.ListingDatetime)
			if err != nil {
				return fmt.Errorf("item %d %s listing: %w", itemID, side, err)
			}
			visit(l, ts)
		}
	}
	return nil
}

// loadTypeNames fetches and caches the type-name index. A failed fetch is
// not cached, so the next call retries.
func (c *SpidyClient) loadTypeNames(ctx context.Context) (map[int]string, error) {
	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	if c.typeNames != nil {
		return c.typeNames, nil
	}

	var payload spidyTypesResponse
	if err := c.getJSON(ctx, "types", &payload); err != nil {
		return nil, err
	}
	names := make(map[int]string, len(payload.Results))
	for _, t := range payload.Results {
		names[t.ID] = t.Name
	}
	c.typeNames = names
	return names, nil
}

func (c *SpidyClient) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("%w: get %s: %v", ErrTransient, path, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: get %s: status %d", ErrTransient, path, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrTransient, path, err)
	}
	return nil
}
