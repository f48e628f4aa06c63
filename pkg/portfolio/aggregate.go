package portfolio

import (
	"slices"
	"strings"

	"github.com/Rohianon/equishare-dashboard/pkg/numeric"
)

// Enrich derives the numeric fields of a single holding.
//
// The price is the first of: the holding's own current_price, the fallback
// price for its symbol, the legacy price field, and finally its average cost.
func Enrich(h RawHolding, fallback Prices) EnrichedHolding {
	shares := numeric.Float(h.Shares)
	avg := numeric.Float(h.AverageCost)
	price, source := resolvePrice(h, avg, fallback)

	pnlPercent := 0.0
	if avg != 0 {
		pnlPercent = (price - avg) / avg * 100
	}

	return EnrichedHolding{
		Name:        h.Name,
		Symbol:      h.Symbol,
		Shares:      shares,
		Avg:         avg,
		Price:       price,
		PriceSource: source,
		Value:       shares * price,
		PnL:         shares * (price - avg),
		PnLPercent:  pnlPercent,
	}
}

func resolvePrice(h RawHolding, avg float64, fallback Prices) (float64, PriceSource) {
	if numeric.Present(h.CurrentPrice) {
		return numeric.Float(h.CurrentPrice), PriceCurrent
	}
	if p, ok := fallback[h.Symbol]; ok {
		return numeric.Float(p), PriceFallback
	}
	if numeric.Present(h.Price) {
		return numeric.Float(h.Price), PriceLegacy
	}
	return avg, PriceCost
}

// Aggregate enriches every holding and returns them sorted. The input is not
// modified.
func Aggregate(holdings []RawHolding, fallback Prices) []EnrichedHolding {
	out := make([]EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, Enrich(h, fallback))
	}
	SortHoldings(out)
	return out
}

// SortKey is the case-insensitive name of a holding, or its symbol when it
// has no name.
func SortKey(h EnrichedHolding) string {
	if h.Name != "" {
		return strings.ToLower(h.Name)
	}
	return strings.ToLower(h.Symbol)
}

// SortHoldings orders holdings by SortKey. Holdings with equal keys keep no
// guaranteed relative order.
func SortHoldings(hs []EnrichedHolding) {
	slices.SortStableFunc(hs, func(a, b EnrichedHolding) int {
		return strings.Compare(SortKey(a), SortKey(b))
	})
}

// Summarise computes the totals for a set of holdings given the reconciled
// total value. Cash is whatever the total holds beyond the holdings and may be
// negative.
func Summarise(hs []EnrichedHolding, totalValue float64) Totals {
	var t Totals
	for _, h := range hs {
		t.MarketValue += h.Value
		t.TotalPnL += h.PnL
	}
	t.TotalValue = totalValue
	t.Cash = totalValue - t.MarketValue
	return t
}

// MarketValue sums the value of all holdings
func MarketValue(hs []EnrichedHolding) float64 {
	var total float64
	for _, h := range hs {
		total += h.Value
	}
	return total
}

// Build derives the full view model of a snapshot
func Build(s *Snapshot, fallback Prices) *ViewModel {
	holdings := Aggregate(s.Equities, fallback)
	marketValue := MarketValue(holdings)
	totalValue, source := ReconcileBalance(s, marketValue)

	return &ViewModel{
		Version:       s.Version,
		FetchedAt:     s.FetchedAt,
		Holdings:      holdings,
		Totals:        Summarise(holdings, totalValue),
		BalanceSource: source,
	}
}
