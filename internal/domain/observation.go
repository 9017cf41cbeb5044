// Package domain defines the trading-post entities shared across the engine:
// items and their static attributes, timestamped price observations, trading
// post snapshots, and the feature schema derived from them.
package domain

import (
	"fmt"

	"github.com/rpindulic/Quaggy/internal/timestamp"
)

// Observation is one timestamped market reading for a single item.
// Canonical storage order is by descending timestamp, newest first.
// Listing counts are only available from the historical listings API,
// not from live snapshots, and default to zero there.
type Observation struct {
	ItemID           int                 // item this reading belongs to
	Time             timestamp.Timestamp // when the reading was taken
	NumBuyOffers     int                 // number of this item offered to buy
	BuyPrice         float64             // current price offered by buyers
	NumSellOffers    int                 // number of this item offered for sale
	SellPrice        float64             // current price offered by sellers
	BuyListingCount  int                 // distinct buy listings, if known
	SellListingCount int                 // distinct sell listings, if known
}

func (o Observation) String() string {
	return fmt.Sprintf("item %d at %s: %d buy offers at %g per, %d sell offers at %g per",
		o.ItemID, o.Time, o.NumBuyOffers, o.BuyPrice, o.NumSellOffers, o.SellPrice)
}

// Trading-post tax rates. A sale pays a listing tax plus a selling tax;
// TaxFactor is the fraction of the sale price the seller keeps.
const (
	ListingTax = 0.05
	SellingTax = 0.10
	TaxFactor  = 1.0 - ListingTax - SellingTax
)
