package domain

import "fmt"

// Feature names one field of the feature schema. The set is closed; bounds
// and sort keys in filter configuration refer to features by these names.
type Feature string

const (
	FeatureItemID            Feature = "ItemID"            // item's unique ID
	FeatureItemType          Feature = "ItemType"          // item's type, as item-type tag ordinal
	FeatureItemRarity        Feature = "ItemRarity"        // item's rarity tier
	FeatureItemLevel         Feature = "ItemLevel"         // minimum level required to use item
	FeatureNumBuyOrders      Feature = "NumBuyOrders"      // buy orders currently placed
	FeatureNumSellOrders     Feature = "NumSellOrders"     // sell orders currently placed
	FeatureBuyPrice          Feature = "BuyPrice"          // current buy price
	FeatureSellPrice         Feature = "SellPrice"         // current sell price
	FeatureZScoreBuyPrice    Feature = "ZScoreBuyPrice"    // z-score of buy price over the window
	FeatureZScoreSellPrice   Feature = "ZScoreSellPrice"   // z-score of sell price over the window
	FeatureMeanBuyPrice      Feature = "MeanBuyPrice"      // mean buy price over the window
	FeatureMeanSellPrice     Feature = "MeanSellPrice"     // mean sell price over the window
	FeatureVarBuyPrice       Feature = "VarBuyPrice"       // variance in buy price over the window
	FeatureVarSellPrice      Feature = "VarSellPrice"      // variance in sell price over the window
	FeatureMedianBuyPrice    Feature = "MedianBuyPrice"    // median buy price over the window
	FeatureMedianSellPrice   Feature = "MedianSellPrice"   // median sell price over the window
	FeatureSlopeBuyPrice     Feature = "SlopeBuyPrice"     // average change per step in buy price
	FeatureSlopeSellPrice    Feature = "SlopeSellPrice"    // average change per step in sell price
	FeatureCurrentFlipProfit Feature = "CurrentFlipProfit" // profit fraction if flipped right now
	FeatureMeanProfit        Feature = "MeanProfit"        // mean hypothetical flip profit over the window
	FeatureVarProfit         Feature = "VarProfit"         // variance in hypothetical flip profit
	FeatureMedianProfit      Feature = "MedianProfit"      // median hypothetical flip profit
	FeatureOurBuyPrice       Feature = "OurBuyPrice"       // effective acquisition price under the buy mode
	FeatureNumConsidered     Feature = "NumConsidered"     // historical observations actually considered
)

// allFeatures is the schema in its fixed order.
var allFeatures = []Feature{
	FeatureItemID, FeatureItemType, FeatureItemRarity, FeatureItemLevel,
	FeatureNumBuyOrders, FeatureNumSellOrders, FeatureBuyPrice, FeatureSellPrice,
	FeatureZScoreBuyPrice, FeatureZScoreSellPrice,
	FeatureMeanBuyPrice, FeatureMeanSellPrice,
	FeatureVarBuyPrice, FeatureVarSellPrice,
	FeatureMedianBuyPrice, FeatureMedianSellPrice,
	FeatureSlopeBuyPrice, FeatureSlopeSellPrice,
	FeatureCurrentFlipProfit, FeatureMeanProfit, FeatureVarProfit, FeatureMedianProfit,
	FeatureOurBuyPrice, FeatureNumConsidered,
}

// AllFeatures lists the schema in fixed order.
func AllFeatures() []Feature {
	out := make([]Feature, len(allFeatures))
	copy(out, allFeatures)
	return out
}

// ParseFeature validates a feature name from configuration.
func ParseFeature(name string) (Feature, error) {
	for _, f := range allFeatures {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: feature %q", ErrUnknownType, name)
}

// FeatureVector is the fixed-schema numeric summary of one item's recent
// market behavior. Produced fresh per extraction; never mutated afterward.
type FeatureVector struct {
	ItemName string // carried for display, not part of the numeric schema

	ItemID            float64
	ItemType          float64
	ItemRarity        float64
	ItemLevel         float64
	NumBuyOrders      float64
	NumSellOrders     float64
	BuyPrice          float64
	SellPrice         float64
	ZScoreBuyPrice    float64
	ZScoreSellPrice   float64
	MeanBuyPrice      float64
	MeanSellPrice     float64
	VarBuyPrice       float64
	VarSellPrice      float64
	MedianBuyPrice    float64
	MedianSellPrice   float64
	SlopeBuyPrice     float64
	SlopeSellPrice    float64
	CurrentFlipProfit float64
	MeanProfit        float64
	VarProfit         float64
	MedianProfit      float64
	OurBuyPrice       float64
	NumConsidered     float64
}

// Get returns the value of the named feature.
func (v *FeatureVector) Get(f Feature) float64 {
	switch f {
	case FeatureItemID:
		return v.ItemID
	case FeatureItemType:
		return v.ItemType
	case FeatureItemRarity:
		return v.ItemRarity
	case FeatureItemLevel:
		return v.ItemLevel
	case FeatureNumBuyOrders:
		return v.NumBuyOrders
	case FeatureNumSellOrders:
		return v.NumSellOrders
	case FeatureBuyPrice:
		return v.BuyPrice
	case FeatureSellPrice:
		return v.SellPrice
	case FeatureZScoreBuyPrice:
		return v.ZScoreBuyPrice
	case FeatureZScoreSellPrice:
		return v.ZScoreSellPrice
	case FeatureMeanBuyPrice:
		return v.MeanBuyPrice
	case FeatureMeanSellPrice:
		return v.MeanSellPrice
	case FeatureVarBuyPrice:
		return v.VarBuyPrice
	case FeatureVarSellPrice:
		return v.VarSellPrice
	case FeatureMedianBuyPrice:
		return v.MedianBuyPrice
	case FeatureMedianSellPrice:
		return v.MedianSellPrice
	case FeatureSlopeBuyPrice:
		return v.SlopeBuyPrice
	case FeatureSlopeSellPrice:
		return v.SlopeSellPrice
	case FeatureCurrentFlipProfit:
		return v.CurrentFlipProfit
	case FeatureMeanProfit:
		return v.MeanProfit
	case FeatureVarProfit:
		return v.VarProfit
	case FeatureMedianProfit:
		return v.MedianProfit
	case FeatureOurBuyPrice:
		return v.OurBuyPrice
	case FeatureNumConsidered:
		return v.NumConsidered
	default:
		return 0
	}
}

func (v *FeatureVector) String() string {
	out := fmt.Sprintf("Features: %s\n", v.ItemName)
	for _, f := range allFeatures {
		out += fmt.Sprintf("%s : %g\n", f, v.Get(f))
	}
	return out
}
