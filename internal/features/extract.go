// Package features builds the fixed-schema feature vectors that summarize
// recent market behavior for each item, and the flat digests exported to
// downstream consumers.
package features

import (
	"fmt"
	"math"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/stats"
	"github.com/rpindulic/Quaggy/internal/timestamp"
)

// Extract builds one feature vector for an item given its retained history,
// the live snapshot observation for that item, a window of calendar days and
// the buy/sell trade modes.
//
// The window counts leading (newest) observations within days calendar-days
// of the single newest observation, not of the current wall clock: an item
// whose data ends on July 5th asked for the last 5 days gets July 1-5. It is
// a prefix count, not a fixed size, so sparse histories yield fewer points.
//
// Returns stats.ErrRange if the history is empty.
func Extract(item *domain.Item, live domain.Observation, days int, buyMode, sellMode domain.TradeMode) (*domain.FeatureVector, error) {
	newest, ok := item.Newest()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no history", stats.ErrRange, item.Name)
	}

	cutoff := newest.Time.Add(timestamp.Days(days).Invert())
	considered := 0
	for considered < len(item.History) && item.History[considered].Time.Compare(cutoff) >= 0 {
		considered++
	}

	v := &domain.FeatureVector{
		ItemName:      item.Name,
		ItemID:        float64(item.ID),
		ItemType:      float64(item.Type),
		ItemRarity:    float64(item.Rarity),
		ItemLevel:     float64(item.Level),
		NumBuyOrders:  float64(live.NumBuyOffers),
		NumSellOrders: float64(live.NumSellOffers),
		BuyPrice:      live.BuyPrice,
		SellPrice:     live.SellPrice,
		NumConsidered: float64(considered),
	}

	// Windowed price statistics. The window is never empty: the newest
	// observation always falls within its own cutoff.
	var err error
	if v.MeanBuyPrice, err = stats.Mean(item.History, stats.BuyPrice, considered, nil); err != nil {
		return nil, err
	}
	if v.MeanSellPrice, err = stats.Mean(item.History, stats.SellPrice, considered, nil); err != nil {
		return nil, err
	}
	if v.VarBuyPrice, err = stats.Variance(item.History, stats.BuyPrice, considered, nil); err != nil {
		return nil, err
	}
	if v.VarSellPrice, err = stats.Variance(item.History, stats.SellPrice, considered, nil); err != nil {
		return nil, err
	}
	if v.MedianBuyPrice, err = stats.Median(item.History, stats.BuyPrice, considered, nil); err != nil {
		return nil, err
	}
	if v.MedianSellPrice, err = stats.Median(item.History, stats.SellPrice, considered, nil); err != nil {
		return nil, err
	}
	if v.SlopeBuyPrice, err = stats.MeanSlope(item.History, stats.BuyPrice, considered); err != nil {
		return nil, err
	}
	if v.SlopeSellPrice, err = stats.MeanSlope(item.History, stats.SellPrice, considered); err != nil {
		return nil, err
	}
	v.ZScoreBuyPrice = zScore(v.BuyPrice, v.MeanBuyPrice, v.VarBuyPrice)
	v.ZScoreSellPrice = zScore(v.SellPrice, v.MeanSellPrice, v.VarSellPrice)

	// Buying instantly means matching an existing sell offer; a bid sits at
	// the buy price.
	ourBuy := v.BuyPrice
	if buyMode == domain.Instant {
		ourBuy = v.SellPrice
	}
	v.OurBuyPrice = ourBuy
	v.CurrentFlipProfit = ProfitFraction(v.BuyPrice, v.SellPrice)

	// The historical selling leg: selling instantly matches a buy offer,
	// a sell bid sits at the sell price.
	sellingLeg := stats.SellPrice
	if sellMode == domain.Instant {
		sellingLeg = stats.BuyPrice
	}
	profit := func(sell float64) float64 { return ProfitFraction(ourBuy, sell) }

	if v.MeanProfit, err = stats.Mean(item.History, sellingLeg, considered, profit); err != nil {
		return nil, err
	}
	if v.VarProfit, err = stats.Variance(item.History, sellingLeg, considered, profit); err != nil {
		return nil, err
	}
	if v.MedianProfit, err = stats.Median(item.History, sellingLeg, considered, profit); err != nil {
		return nil, err
	}

	return v, nil
}

// ProfitFraction is the fraction of the buy price made in profit when buying
// at buy and selling at sell, net of trading-post tax. A "free" item
// (buy == 0) yields 0.
func ProfitFraction(buy, sell float64) float64 {
	if buy == 0 {
		return 0
	}
	return (sell*domain.TaxFactor - buy) / buy
}

// zScore of a value against a window's mean and variance; 0 when the window
// has zero variance.
func zScore(val, mean, variance float64) float64 {
	if variance == 0 {
		return 0
	}
	return (val - mean) / math.Sqrt(variance)
}
