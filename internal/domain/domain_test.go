package domain

import (
	"errors"
	"testing"

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

func TestParseItemType(t *testing.T) {
	tests := []struct {
		in   string
		want ItemType
	}{
		{"Weapon", Weapon},
		{"CraftingMaterial", CraftingMaterial},
		{"Crafting Material", CraftingMaterial}, // spaces insignificant
		{"Upgrade Component", UpgradeComponent},
	}
	for _, tc := range tests {
		got, err := ParseItemType(tc.in)
		if err != nil {
			t.Errorf("ParseItemType(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseItemType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseItemType("Spaceship"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type: got %v, want ErrUnknownType", err)
	}
}

func TestParseTradeMode(t *testing.T) {
	for _, s := range []string{"bid", "BID", "Bid"} {
		m, err := ParseTradeMode(s)
		if err != nil || m != Bid {
			t.Errorf("ParseTradeMode(%q) = %v, %v", s, m, err)
		}
	}
	m, err := ParseTradeMode("instant")
	if err != nil || m != Instant {
		t.Errorf("ParseTradeMode(instant) = %v, %v", m, err)
	}
	if _, err := ParseTradeMode("limit"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("bad mode: got %v, want ErrUnknownType", err)
	}
	if Instant.String() != "Instant" || Bid.String() != "Bid" {
		t.Error("mode serialization must be capitalized words")
	}
}

func TestItemHistoryOrdering(t *testing.T) {
	it := &Item{ID: 42, Name: "Copper Ore", Type: CraftingMaterial}

	// SetHistory sorts newest-first regardless of input order.
	it.SetHistory([]Observation{
		{ItemID: 42, Time: ts(t, "2016-01-01 00:00:00"), BuyPrice: 10},
		{ItemID: 42, Time: ts(t, "2016-01-03 00:00:00"), BuyPrice: 12},
		{ItemID: 42, Time: ts(t, "2016-01-02 00:00:00"), BuyPrice: 11},
	})
	if it.History[0].BuyPrice != 12 || it.History[2].BuyPrice != 10 {
		t.Fatalf("SetHistory did not sort newest-first: %+v", it.History)
	}

	// Append puts the fresh observation at the head.
	it.Append(Observation{ItemID: 42, Time: ts(t, "2016-01-04 00:00:00"), BuyPrice: 13})
	newest, ok := it.Newest()
	if !ok || newest.BuyPrice != 13 {
		t.Fatalf("Newest = %+v, %v", newest, ok)
	}

	// Prune drops everything strictly older than the cutoff.
	it.Prune(ts(t, "2016-01-03 00:00:00"))
	if len(it.History) != 2 {
		t.Fatalf("Prune kept %d observations, want 2", len(it.History))
	}
	for _, o := range it.History {
		if o.Time.Compare(ts(t, "2016-01-03 00:00:00")) < 0 {
			t.Errorf("observation %s survived prune", o.Time)
		}
	}
}

func TestItemClone(t *testing.T) {
	it := &Item{ID: 7, Name: "Omnomberry", Type: Consumable}
	it.SetHistory([]Observation{
		{ItemID: 7, Time: ts(t, "2016-01-01 00:00:00"), SellPrice: 5},
	})

	dup := it.Clone()
	dup.History[0].SellPrice = 99
	dup.Name = "changed"

	if it.History[0].SellPrice != 5 {
		t.Error("Clone shares history storage with the original")
	}
	if it.Name != "Omnomberry" {
		t.Error("Clone shares static attributes with the original")
	}
}

func TestFeatureSchema(t *testing.T) {
	if len(AllFeatures()) != 24 {
		t.Fatalf("schema has %d features, want 24", len(AllFeatures()))
	}

	f, err := ParseFeature("MeanProfit")
	if err != nil || f != FeatureMeanProfit {
		t.Errorf("ParseFeature(MeanProfit) = %v, %v", f, err)
	}
	if _, err := ParseFeature("Sharpe"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown feature: got %v, want ErrUnknownType", err)
	}

	v := &FeatureVector{MeanProfit: 0.25, NumConsidered: 9}
	if v.Get(FeatureMeanProfit) != 0.25 || v.Get(FeatureNumConsidered) != 9 {
		t.Error("Get returned wrong field values")
	}
}

func TestSnapshot(t *testing.T) {
	s := NewSnapshot(map[int]Observation{
		3: {ItemID: 3, BuyPrice: 30},
		1: {ItemID: 1, BuyPrice: 10},
		2: {ItemID: 2, BuyPrice: 20},
	})
	ids := s.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("IDs = %v, want ascending [1 2 3]", ids)
	}
	if o, ok := s.Get(2); !ok || o.BuyPrice != 20 {
		t.Errorf("Get(2) = %+v, %v", o, ok)
	}
	if _, ok := s.Get(99); ok {
		t.Error("Get of absent item should report !ok")
	}
	all := s.All()
	if len(all) != 3 || all[0].ItemID != 1 {
		t.Errorf("All = %+v", all)
	}
}
