package portfolio

import (
	"math"
	"testing"
)

func TestAggregate_Scenario(t *testing.T) {
	holdings := []RawHolding{
		{Name: "Beta", Symbol: "B", Shares: 0.0, AverageCost: 0.0, CurrentPrice: 0.0},
		{Name: "Alpha", Symbol: "A", Shares: 10.0, AverageCost: 5.0, CurrentPrice: 6.0},
	}

	got := Aggregate(holdings, nil)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "Alpha" || got[1].Name != "Beta" {
		t.Fatalf("order = [%s %s], want [Alpha Beta]", got[0].Name, got[1].Name)
	}

	alpha := got[0]
	if alpha.Value != 60 {
		t.Errorf("Alpha value = %v, want 60", alpha.Value)
	}
	if alpha.PnL != 10 {
		t.Errorf("Alpha pnl = %v, want 10", alpha.PnL)
	}
	if math.Abs(alpha.PnLPercent-20) > 1e-9 {
		t.Errorf("Alpha pnlPercent = %v, want 20", alpha.PnLPercent)
	}
	if got[1].PnLPercent != 0 {
		t.Errorf("Beta pnlPercent = %v, want 0", got[1].PnLPercent)
	}

	totals := Summarise(got, MarketValue(got))
	if totals.MarketValue != 60 {
		t.Errorf("marketValue = %v, want 60", totals.MarketValue)
	}
	if totals.TotalPnL != 10 {
		t.Errorf("totalPnl = %v, want 10", totals.TotalPnL)
	}
}

func TestEnrich_Invariants(t *testing.T) {
	holdings := []RawHolding{
		{Name: "A", Shares: "3", AverageCost: "10.5", CurrentPrice: "12.25"},
		{Name: "B", Shares: 2.5, AverageCost: 0.0, CurrentPrice: 4.0},
		{Name: "C", Shares: "x", AverageCost: "y", CurrentPrice: "z"},
		{Name: "D", Shares: 7.0, AverageCost: 3.0},
		{Name: "E", Shares: -1.0, AverageCost: 8.0, CurrentPrice: 2.0},
	}

	for _, raw := range holdings {
		h := Enrich(raw, nil)
		if h.Value != h.Shares*h.Price {
			t.Errorf("%s: value = %v, want shares*price = %v", h.Name, h.Value, h.Shares*h.Price)
		}
		if h.PnL != h.Shares*(h.Price-h.Avg) {
			t.Errorf("%s: pnl = %v, want %v", h.Name, h.PnL, h.Shares*(h.Price-h.Avg))
		}
		if h.Avg == 0 && h.PnLPercent != 0 {
			t.Errorf("%s: pnlPercent = %v with zero avg", h.Name, h.PnLPercent)
		}
	}
}

func TestEnrich_PriceResolution(t *testing.T) {
	fallback := Prices{"FB": 50, "BOTH": 70}

	tests := []struct {
		name       string
		raw        RawHolding
		wantPrice  float64
		wantSource PriceSource
	}{
		{
			name:       "explicit current price wins",
			raw:        RawHolding{Symbol: "BOTH", AverageCost: 1.0, CurrentPrice: 9.0, Price: 8.0},
			wantPrice:  9,
			wantSource: PriceCurrent,
		},
		{
			name:       "explicit zero current price is still explicit",
			raw:        RawHolding{Symbol: "BOTH", AverageCost: 1.0, CurrentPrice: 0.0},
			wantPrice:  0,
			wantSource: PriceCurrent,
		},
		{
			name:       "fallback map by symbol",
			raw:        RawHolding{Symbol: "FB", AverageCost: 1.0, Price: 8.0},
			wantPrice:  50,
			wantSource: PriceFallback,
		},
		{
			name:       "legacy price field",
			raw:        RawHolding{Symbol: "NONE", AverageCost: 1.0, Price: "8"},
			wantPrice:  8,
			wantSource: PriceLegacy,
		},
		{
			name:       "average cost last",
			raw:        RawHolding{Symbol: "NONE", AverageCost: "4.5"},
			wantPrice:  4.5,
			wantSource: PriceCost,
		},
		{
			name:       "unparsable current price becomes zero",
			raw:        RawHolding{Symbol: "FB", AverageCost: 1.0, CurrentPrice: "n/a"},
			wantPrice:  0,
			wantSource: PriceCurrent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Enrich(tt.raw, fallback)
			if h.Price != tt.wantPrice {
				t.Errorf("price = %v, want %v", h.Price, tt.wantPrice)
			}
			if h.PriceSource != tt.wantSource {
				t.Errorf("source = %v, want %v", h.PriceSource, tt.wantSource)
			}
		})
	}
}

func TestSortHoldings(t *testing.T) {
	hs := []EnrichedHolding{
		{Name: "delta"},
		{Symbol: "CHARLIE"},
		{Name: "Bravo"},
		{Name: "alpha"},
	}

	SortHoldings(hs)

	want := []string{"alpha", "bravo", "charlie", "delta"}
	for i, h := range hs {
		if SortKey(h) != want[i] {
			t.Errorf("position %d = %q, want %q", i, SortKey(h), want[i])
		}
	}

	before := make([]EnrichedHolding, len(hs))
	copy(before, hs)
	SortHoldings(hs)
	for i := range hs {
		if hs[i] != before[i] {
			t.Errorf("re-sorting changed position %d", i)
		}
	}
}

func TestAggregate_DoesNotModifyInput(t *testing.T) {
	holdings := []RawHolding{{Name: "Z"}, {Name: "A"}}
	Aggregate(holdings, nil)
	if holdings[0].Name != "Z" {
		t.Error("Aggregate should not reorder its input")
	}
}

func TestSummarise_NegativeCash(t *testing.T) {
	hs := []EnrichedHolding{{Value: 100, PnL: 5}, {Value: 50, PnL: -2}}

	totals := Summarise(hs, 120)

	if totals.MarketValue != 150 {
		t.Errorf("MarketValue = %v, want 150", totals.MarketValue)
	}
	if totals.Cash != -30 {
		t.Errorf("Cash = %v, want -30", totals.Cash)
	}
	if totals.TotalPnL != 3 {
		t.Errorf("TotalPnL = %v, want 3", totals.TotalPnL)
	}
}
