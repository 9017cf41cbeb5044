package features

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rpindulic/Quaggy/internal/domain"
	"github.com/rpindulic/Quaggy/internal/stats"
	"github.com/rpindulic/Quaggy/internal/timestamp"
)

func ts(t *testing.T, s string) timestamp.Timestamp {
	t.Helper()
	v, err := timestamp.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

// testItem has one observation per day: newest 2016-01-10, going backward,
// with buy prices 100, 90, 80, ... and sell prices buy+20.
func testItem(t *testing.T, numDays int) *domain.Item {
	t.Helper()
	it := &domain.Item{ID: 19697, Name: "Copper Ore", Type: domain.CraftingMaterial, Rarity: 1, Level: 0}
	newest := ts(t, "2016-01-10 08:00:00")
	obs := make([]domain.Observation, numDays)
	for i := 0; i < numDays; i++ {
		buy := float64(100 - 10*i)
		obs[i] = domain.Observation{
			ItemID:        it.ID,
			Time:          newest.Add(timestamp.Days(-i)),
			NumBuyOffers:  50,
			BuyPrice:      buy,
			NumSellOffers: 60,
			SellPrice:     buy + 20,
		}
	}
	it.SetHistory(obs)
	return it
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestExtract_WindowIsPrefixCount(t *testing.T) {
	it := testItem(t, 6)
	live := it.History[0]

	// 3 calendar days back from the newest observation covers 4 points
	// (the newest plus the three preceding days, cutoff inclusive).
	v, err := Extract(it, live, 3, domain.Bid, domain.Bid)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if v.NumConsidered != 4 {
		t.Errorf("NumConsidered = %v, want 4", v.NumConsidered)
	}

	// A window larger than the retained history considers everything.
	v, err = Extract(it, live, 50, domain.Bid, domain.Bid)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if v.NumConsidered != 6 {
		t.Errorf("NumConsidered = %v, want 6", v.NumConsidered)
	}
}

func TestExtract_LiveAndStaticFields(t *testing.T) {
	it := testItem(t, 3)
	live := it.History[0]

	v, err := Extract(it, live, 1, domain.Bid, domain.Bid)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if v.ItemID != 19697 || v.ItemName != "Copper Ore" {
		t.Errorf("identity fields wrong: %v %q", v.ItemID, v.ItemName)
	}
	if v.ItemType != float64(domain.CraftingMaterial) || v.ItemRarity != 1 {
		t.Errorf("classification fields wrong: %v %v", v.ItemType, v.ItemRarity)
	}
	if v.BuyPrice != 100 || v.SellPrice != 120 || v.NumBuyOrders != 50 || v.NumSellOrders != 60 {
		t.Errorf("live fields wrong: %+v", v)
	}
}

func TestExtract_ModeSemantics(t *testing.T) {
	it := testItem(t, 4)
	live := it.History[0]

	// Buying instantly matches an existing sell offer.
	v, err := Extract(it, live, 10, domain.Instant, domain.Bid)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if v.OurBuyPrice != v.SellPrice {
		t.Errorf("Instant buy: OurBuyPrice = %v, want live sell price %v", v.OurBuyPrice, v.SellPrice)
	}

	// A buy bid sits at the buy price.
	v, err = Extract(it, live, 10, domain.Bid, domain.Bid)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if v.OurBuyPrice != v.BuyPrice {
		t.Errorf("Bid buy: OurBuyPrice = %v, want live buy price %v", v.OurBuyPrice, v.BuyPrice)
	}

	// Selling instantly values history at its buy prices; a sell bid at
	// its sell prices. With sell price = buy price + 20 everywhere the two
	// mean profits must differ by exactly 20*TaxFactor/ourBuy.
	instant, err := Extract(it, live, 10, domain.Bid, domain.Instant)
	if err != nil {
		t.Fatal(err)
	}
	bid, err := Extract(it, live, 10, domain.Bid, domain.Bid)
	if err != nil {
		t.Fatal(err)
	}
	wantDelta := 20 * domain.TaxFactor / v.OurBuyPrice
	if !approx(bid.MeanProfit-instant.MeanProfit, wantDelta) {
		t.Errorf("selling-leg delta = %v, want %v", bid.MeanProfit-instant.MeanProfit, wantDelta)
	}
}

func TestProfitFraction(t *testing.T) {
	if ProfitFraction(0, 1000) != 0 {
		t.Error("free item must yield zero profit fraction")
	}
	got := ProfitFraction(100, 200)
	want := (200*domain.TaxFactor - 100) / 100
	if !approx(got, want) {
		t.Errorf("ProfitFraction = %v, want %v", got, want)
	}
	// 15% total tax.
	if !approx(domain.TaxFactor, 0.85) {
		t.Errorf("TaxFactor = %v, want 0.85", domain.TaxFactor)
	}
}

func TestExtract_ZScoreZeroVariance(t *testing.T) {
	it := &domain.Item{ID: 1, Name: "Static", Type: domain.Trophy}
	newest := ts(t, "2016-01-10 00:00:00")
	obs := make([]domain.Observation, 5)
	for i := range obs {
		obs[i] = domain.Observation{
			ItemID: 1, Time: newest.Add(timestamp.Days(-i)),
			NumBuyOffers: 1, BuyPrice: 50, NumSellOffers: 1, SellPrice: 70,
		}
	}
	it.SetHistory(obs)

	v, err := Extract(it, it.History[0], 10, domain.Bid, domain.Bid)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if v.VarBuyPrice != 0 || v.ZScoreBuyPrice != 0 || v.ZScoreSellPrice != 0 {
		t.Errorf("zero-variance window: var=%v zbuy=%v zsell=%v", v.VarBuyPrice, v.ZScoreBuyPrice, v.ZScoreSellPrice)
	}
}

func TestExtract_EmptyHistory(t *testing.T) {
	it := &domain.Item{ID: 2, Name: "Ghost", Type: domain.Trophy}
	_, err := Extract(it, domain.Observation{}, 5, domain.Bid, domain.Bid)
	if !errors.Is(err, stats.ErrRange) {
		t.Errorf("empty history: got %v, want ErrRange", err)
	}
}

func TestBuildDigest(t *testing.T) {
	it := testItem(t, 5)
	live := it.History[0]

	digest, ok, err := BuildDigest(it, live)
	if err != nil {
		t.Fatalf("BuildDigest failed: %v", err)
	}
	if !ok {
		t.Fatal("BuildDigest skipped an item with history and live buy orders")
	}

	wantLen := len(WindowDays) * 2 * 2 * len(domain.AllFeatures())
	if len(digest) != wantLen {
		t.Errorf("digest has %d entries, want %d", len(digest), wantLen)
	}

	key := DigestKey(it.ID, 30, domain.Instant, domain.Bid, domain.FeatureNumConsidered)
	if key != "19697:30:Instant:Bid:NumConsidered" {
		t.Errorf("DigestKey = %q", key)
	}
	if v, present := digest[key]; !present || v != 5 {
		t.Errorf("digest[%q] = %v, %v", key, v, present)
	}
	for k := range digest {
		if !strings.HasPrefix(k, "19697:") {
			t.Errorf("foreign key in digest: %q", k)
		}
	}
}

func TestBuildDigest_SkipRules(t *testing.T) {
	// No history: skip silently.
	bare := &domain.Item{ID: 3, Name: "Bare", Type: domain.Trophy}
	if _, ok, err := BuildDigest(bare, domain.Observation{NumBuyOffers: 5}); ok || err != nil {
		t.Errorf("no history: ok=%v err=%v, want skip", ok, err)
	}

	// No live buy orders: skip silently.
	it := testItem(t, 3)
	live := it.History[0]
	live.NumBuyOffers = 0
	if _, ok, err := BuildDigest(it, live); ok || err != nil {
		t.Errorf("no buy orders: ok=%v err=%v, want skip", ok, err)
	}
}
