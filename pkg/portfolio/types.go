package portfolio

import "time"

// Snapshot is one complete portfolio document as returned by the backend.
// A Snapshot is never modified after it has been decoded; a newer document
// replaces it as a whole.
type Snapshot struct {
	Version   uint64
	FetchedAt time.Time
	Equities  []RawHolding
	// Doc is the decoded document, kept for the balance accessors.
	Doc map[string]any
}

// RawHolding is a holding record as it appears in the snapshot. Numeric
// fields keep their decoded JSON value and may be numbers, strings or nil.
type RawHolding struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Shares       any    `json:"shares"`
	AverageCost  any    `json:"average_cost"`
	CurrentPrice any    `json:"current_price,omitempty"`
	Price        any    `json:"price,omitempty"`
}

// PriceSource tells where a holding's price came from
type PriceSource string

const (
	PriceCurrent  PriceSource = "current_price"
	PriceFallback PriceSource = "fallback"
	PriceLegacy   PriceSource = "price"
	PriceCost     PriceSource = "average_cost"
)

// EnrichedHolding is a raw holding with its derived numbers
type EnrichedHolding struct {
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Shares      float64     `json:"shares"`
	Avg         float64     `json:"avg"`
	Price       float64     `json:"price"`
	PriceSource PriceSource `json:"price_source"`
	Value       float64     `json:"value"`
	PnL         float64     `json:"pnl"`
	PnLPercent  float64     `json:"pnl_percent"`
}

// Totals summarises the whole portfolio
type Totals struct {
	MarketValue float64 `json:"market_value"`
	TotalValue  float64 `json:"total_value"`
	Cash        float64 `json:"cash"`
	TotalPnL    float64 `json:"total_pnl"`
}

// BalanceSource names the snapshot field the total value was read from
type BalanceSource string

// SourceComputed means no snapshot field held a number and the market value
// was used instead.
const SourceComputed BalanceSource = "computed"

// ViewModel is everything the dashboard renders, derived from one Snapshot
type ViewModel struct {
	Version       uint64            `json:"version"`
	FetchedAt     time.Time         `json:"fetched_at"`
	Holdings      []EnrichedHolding `json:"holdings"`
	Totals        Totals            `json:"totals"`
	BalanceSource BalanceSource     `json:"balance_source"`
}

// Prices maps a symbol to a price used when a holding carries no
// current_price of its own.
type Prices map[string]float64
