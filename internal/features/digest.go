package features

import (
	"fmt"

	"github.com/rpindulic/Quaggy/internal/domain"
)

// WindowDays is the fixed list of window sizes (in calendar days) digests
// are precomputed for. Downstream clients pick a window from this set, so
// the backend must cover every entry each cycle.
var WindowDays = []int{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 15, 20, 25, 30, 35, 40, 45,
	50, 75, 100, 125, 150, 175, 200, 250, 300, 350,
}

// Digest is a flat mapping from "<itemId>:<windowDays>:<buyMode>:<sellMode>:<featureName>"
// to the feature value, covering the full window-size × trade-mode cross
// product for one item.
type Digest map[string]float64

// DigestKey formats one digest map key.
func DigestKey(itemID, days int, buyMode, sellMode domain.TradeMode, f domain.Feature) string {
	return fmt.Sprintf("%d:%d:%s:%s:%s", itemID, days, buyMode, sellMode, f)
}

// BuildDigest computes the digest for one item across every allowed window
// size and both trade modes for buy and sell. Items with no retained history
// or no live buy orders cannot be predicted and are skipped: the second
// return is false and no error is raised, so a batch over many items
// proceeds.
func BuildDigest(item *domain.Item, live domain.Observation) (Digest, bool, error) {
	if len(item.History) == 0 || live.NumBuyOffers == 0 {
		return nil, false, nil
	}
	digest := make(Digest, len(WindowDays)*4*len(domain.AllFeatures()))
	for _, days := range WindowDays {
		for _, buyMode := range domain.AllTradeModes() {
			for _, sellMode := range domain.AllTradeModes() {
				v, err := Extract(item, live, days, buyMode, sellMode)
				if err != nil {
					return nil, false, fmt.Errorf("extract item %d window %d: %w", item.ID, days, err)
				}
				for _, f := range domain.AllFeatures() {
					digest[DigestKey(item.ID, days, buyMode, sellMode, f)] = v.Get(f)
				}
			}
		}
	}
	return digest, true, nil
}
